package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (DashboardRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewDashboardRepository(sqlx.NewDb(db, "pgx")), mock
}

func TestCounters(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(`SELECT\s+\(SELECT COUNT\(\*\) FROM users WHERE deleted_at IS NULL\) AS users,.*role = \$1.*payment_status = \$5`).
		WithArgs("ADMIN", "pending", "pending", "pending", "paid").
		WillReturnRows(sqlmock.NewRows([]string{
			"users", "admins", "pending_reports", "pending_registrations", "pending_reviews", "paid_revenue", "active_games",
		}).AddRow(42, 2, 3, 4, 5, 199.5, 1))

	c, err := repo.Counters(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &Counters{
		Users: 42, Admins: 2, PendingReports: 3, PendingRegistrations: 4, PendingReviews: 5, PaidRevenue: 199.5, ActiveGames: 1,
	}, c)
}

func TestCountByStatus(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(`SELECT status, COUNT\(\*\) AS n FROM posts WHERE deleted_at IS NULL GROUP BY status`).
		WillReturnRows(sqlmock.NewRows([]string{"status", "n"}).AddRow("pending", 7).AddRow("approved", 30))

	counts, err := repo.CountByStatus(context.Background(), "posts")
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"pending": 7, "approved": 30}, counts)

	_, err = repo.CountByStatus(context.Background(), "users; DROP TABLE users")
	assert.Error(t, err)
}
