package repository

import (
	"context"
	"regexp"
	"testing"
	"thywilluche/internal/domain/order/model"
	"thywilluche/pkg/testutil"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrder_StockConflictRollsBack(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	repo := NewOrderRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "book_variants" SET .*stock.* WHERE \(?id = \$\d+ AND stock >= \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.CreateOrder(context.Background(), &model.Order{OrderNo: "n-1"}, []StockChange{
		{ProductType: model.ProductBook, VariantID: "v-1", Quantity: 2},
	})
	assert.ErrorIs(t, err, ErrInsufficientStock)
}

func TestCreateOrder_UnknownProductType(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	repo := NewOrderRepository(db)

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := repo.CreateOrder(context.Background(), &model.Order{}, []StockChange{
		{ProductType: "course", VariantID: "v-1", Quantity: 1},
	})
	assert.Error(t, err)
}

func TestMarkPaid_AlreadyPaid(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	repo := NewOrderRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "orders" SET`) + `.*` + regexp.QuoteMeta(`WHERE (order_no = $`) + `.*payment_status <> \$`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	updated, err := repo.MarkPaid(context.Background(), "n-1", time.Now(), nil)
	require.NoError(t, err)
	assert.False(t, updated)
}

func TestMarkPaid_SkipsCancelledOrders(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	repo := NewOrderRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "orders" SET .* WHERE \(order_no = \$\d+ AND payment_status <> \$\d+ AND status <> \$\d+\)`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	updated, err := repo.MarkPaid(context.Background(), "n-1", time.Now(), nil)
	require.NoError(t, err)
	assert.False(t, updated)
}

func TestExpireUnpaid_Nothing(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	repo := NewOrderRepository(db)
	before := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "orders" WHERE .*payment_status IN \(\$2,\$3\) AND created_at < \$4.* FOR UPDATE SKIP LOCKED`).
		WithArgs(model.StatusPending, model.PaymentUnpaid, model.PaymentFailed, before).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_no"}))
	mock.ExpectCommit()

	expired, err := repo.ExpireUnpaid(context.Background(), before)
	require.NoError(t, err)
	assert.Empty(t, expired)
}
