package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"testing"
	"thywilluche/internal/domain/order/model"
	"thywilluche/internal/domain/order/repository"
	"thywilluche/internal/domain/order/strategy"
	shopmodel "thywilluche/internal/domain/shop/model"
	usermodel "thywilluche/internal/domain/user/model"
	"thywilluche/internal/pkg/config"
	"thywilluche/internal/pkg/notify"
	pkgmodel "thywilluche/pkg/model"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindSellable(ctx context.Context, productType, variantID string) (*repository.Sellable, error) {
	args := m.Called(productType, variantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Sellable), args.Error(1)
}

func (m *MockOrderRepository) CreateOrder(ctx context.Context, order *model.Order, changes []repository.StockChange) error {
	return m.Called(order, changes).Error(0)
}

func (m *MockOrderRepository) GetOrderByNo(ctx context.Context, orderNo string) (*model.Order, error) {
	args := m.Called(orderNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) ListOrders(ctx context.Context, f repository.OrderFilter) ([]model.Order, int64, error) {
	args := m.Called(f)
	return args.Get(0).([]model.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) UpdateOrder(ctx context.Context, orderNo string, u repository.OrderUpdate) error {
	return m.Called(orderNo, u).Error(0)
}

func (m *MockOrderRepository) SetPaymentChannel(ctx context.Context, orderNo, channel string) error {
	return m.Called(orderNo, channel).Error(0)
}

func (m *MockOrderRepository) MarkPaid(ctx context.Context, orderNo string, paidAt time.Time, extra json.RawMessage) (bool, error) {
	args := m.Called(orderNo)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) MarkPaymentFailed(ctx context.Context, orderNo string) (bool, error) {
	args := m.Called(orderNo)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) ExpireUnpaid(ctx context.Context, before time.Time) ([]model.Order, error) {
	args := m.Called(before)
	return args.Get(0).([]model.Order), args.Error(1)
}

type MockUserLookup struct {
	mock.Mock
}

func (m *MockUserLookup) GetByID(ctx context.Context, id string) (*usermodel.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usermodel.User), args.Error(1)
}

type MockStrategy struct {
	mock.Mock
}

func (m *MockStrategy) Pay(ctx context.Context, orderNo string, amount float64, subject string) (string, error) {
	args := m.Called(orderNo, amount)
	return args.String(0), args.Error(1)
}

func (m *MockStrategy) Notify(ctx context.Context, params interface{}) (*strategy.NotifyResult, error) {
	args := m.Called(params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*strategy.NotifyResult), args.Error(1)
}

var orderNow = time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

type orderFixture struct {
	repo     *MockOrderRepository
	users    *MockUserLookup
	notifier *notify.Recorder
	svc      *orderService
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		repo:     new(MockOrderRepository),
		users:    new(MockUserLookup),
		notifier: &notify.Recorder{},
	}
	f.svc = NewOrderService(f.repo, f.users, f.notifier, config.ShopConfig{Currency: "USD", ShippingFee: 5}).(*orderService)
	f.svc.now = func() time.Time { return orderNow }
	return f
}

func paperback(stock int) *repository.Sellable {
	return &repository.Sellable{
		ProductID: "b-1", ProductName: "River", ProductActive: true,
		VariantID: "v-paper", VariantType: shopmodel.VariantPaperback,
		Price: 12.5, Stock: stock, Status: shopmodel.StatusAvailable,
	}
}

func ebook() *repository.Sellable {
	return &repository.Sellable{
		ProductID: "b-1", ProductName: "River", ProductActive: true,
		VariantID: "v-ebook", VariantType: shopmodel.VariantEbook,
		Price: 4.99, Status: shopmodel.StatusAvailable,
	}
}

var shipping = model.ShippingAddress{Name: "Ada", Email: "ada@example.com", AddressLine: "1 Main St", City: "Lagos", Country: "NG"}

func TestCreateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("Snapshots prices and decrements physical stock", func(t *testing.T) {
		f := newOrderFixture()
		f.repo.On("FindSellable", model.ProductBook, "v-paper").Return(paperback(10), nil)
		f.repo.On("FindSellable", model.ProductBook, "v-ebook").Return(ebook(), nil)
		f.repo.On("CreateOrder",
			mock.MatchedBy(func(o *model.Order) bool {
				return len(o.Items) == 2 && o.Subtotal == 29.99 && o.ShippingFee == 5 && o.Total == 34.99 &&
					o.Status == model.StatusPending && o.PaymentStatus == model.PaymentUnpaid && len(o.OrderNo) == 22
			}),
			[]repository.StockChange{{ProductType: model.ProductBook, VariantID: "v-paper", Quantity: 2}},
		).Return(nil)

		result, err := f.svc.CreateOrder(ctx, "u-1", CreateOrderInput{
			Items: []ItemInput{
				{ProductType: model.ProductBook, VariantID: "v-paper", Quantity: 2},
				{ProductType: model.ProductBook, VariantID: "v-ebook", Quantity: 1},
			},
			Shipping: shipping,
		})

		require.NoError(t, err)
		assert.Equal(t, "20240601093000", result.Order.OrderNo[:14])
		assert.Equal(t, 25.0, result.Order.Items[0].LineTotal)
		assert.True(t, result.Order.Items[0].StockTracked)
		assert.False(t, result.Order.Items[1].StockTracked)
		assert.Empty(t, result.PayParam)

		sent := f.notifier.All()
		require.Len(t, sent, 1)
		assert.Equal(t, notify.TemplateOrderPlaced, sent[0].Template)
		assert.Equal(t, "ada@example.com", sent[0].To)
	})

	t.Run("Digital only orders ship free", func(t *testing.T) {
		f := newOrderFixture()
		f.repo.On("FindSellable", model.ProductBook, "v-ebook").Return(ebook(), nil)
		f.repo.On("CreateOrder", mock.MatchedBy(func(o *model.Order) bool {
			return o.ShippingFee == 0 && o.Total == 4.99
		}), []repository.StockChange(nil)).Return(nil)

		_, err := f.svc.CreateOrder(ctx, "u-1", CreateOrderInput{
			Items:    []ItemInput{{ProductType: model.ProductBook, VariantID: "v-ebook", Quantity: 1}},
			Shipping: shipping,
		})
		require.NoError(t, err)
	})

	t.Run("Not enough stock before writing", func(t *testing.T) {
		f := newOrderFixture()
		f.repo.On("FindSellable", model.ProductBook, "v-paper").Return(paperback(1), nil)

		_, err := f.svc.CreateOrder(ctx, "u-1", CreateOrderInput{
			Items:    []ItemInput{{ProductType: model.ProductBook, VariantID: "v-paper", Quantity: 2}},
			Shipping: shipping,
		})
		assert.ErrorIs(t, err, ErrOutOfStock)
		f.repo.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
	})

	t.Run("Stock taken by a concurrent order", func(t *testing.T) {
		f := newOrderFixture()
		f.repo.On("FindSellable", model.ProductBook, "v-paper").Return(paperback(5), nil)
		f.repo.On("CreateOrder", mock.Anything, mock.Anything).Return(repository.ErrInsufficientStock)

		_, err := f.svc.CreateOrder(ctx, "u-1", CreateOrderInput{
			Items:    []ItemInput{{ProductType: model.ProductBook, VariantID: "v-paper", Quantity: 2}},
			Shipping: shipping,
		})
		assert.ErrorIs(t, err, ErrOutOfStock)
		assert.Empty(t, f.notifier.All())
	})

	t.Run("Discontinued variant", func(t *testing.T) {
		f := newOrderFixture()
		v := paperback(5)
		v.Status = shopmodel.StatusDiscontinued
		f.repo.On("FindSellable", model.ProductBook, "v-paper").Return(v, nil)

		_, err := f.svc.CreateOrder(ctx, "u-1", CreateOrderInput{
			Items:    []ItemInput{{ProductType: model.ProductBook, VariantID: "v-paper", Quantity: 1}},
			Shipping: shipping,
		})
		assert.ErrorIs(t, err, ErrVariantNotForSale)
	})

	t.Run("Preorder does not reserve stock", func(t *testing.T) {
		f := newOrderFixture()
		v := paperback(0)
		v.Status = shopmodel.StatusPreorder
		f.repo.On("FindSellable", model.ProductBook, "v-paper").Return(v, nil)
		f.repo.On("CreateOrder", mock.Anything, []repository.StockChange(nil)).Return(nil)

		_, err := f.svc.CreateOrder(ctx, "u-1", CreateOrderInput{
			Items:    []ItemInput{{ProductType: model.ProductBook, VariantID: "v-paper", Quantity: 3}},
			Shipping: shipping,
		})
		assert.NoError(t, err)
	})

	t.Run("Missing variant", func(t *testing.T) {
		f := newOrderFixture()
		f.repo.On("FindSellable", model.ProductMerch, "v-x").Return(nil, gorm.ErrRecordNotFound)

		_, err := f.svc.CreateOrder(ctx, "u-1", CreateOrderInput{
			Items:    []ItemInput{{ProductType: model.ProductMerch, VariantID: "v-x", Quantity: 1}},
			Shipping: shipping,
		})
		assert.ErrorIs(t, err, ErrVariantNotFound)
	})

	t.Run("Line limits", func(t *testing.T) {
		f := newOrderFixture()
		_, err := f.svc.CreateOrder(ctx, "u-1", CreateOrderInput{Shipping: shipping})
		assert.ErrorIs(t, err, ErrInvalidItems)

		_, err = f.svc.CreateOrder(ctx, "u-1", CreateOrderInput{
			Items:    []ItemInput{{ProductType: model.ProductBook, VariantID: "v-paper", Quantity: 100}},
			Shipping: shipping,
		})
		assert.ErrorIs(t, err, ErrInvalidItems)
	})

	t.Run("Unregistered channel", func(t *testing.T) {
		f := newOrderFixture()
		_, err := f.svc.CreateOrder(ctx, "u-1", CreateOrderInput{
			Items:    []ItemInput{{ProductType: model.ProductBook, VariantID: "v-paper", Quantity: 1}},
			Shipping: shipping,
			Channel:  model.ChannelAlipay,
		})
		assert.ErrorIs(t, err, ErrPaymentChannel)
	})

	t.Run("Registered channel returns pay param", func(t *testing.T) {
		f := newOrderFixture()
		payer := new(MockStrategy)
		f.svc.RegisterStrategy(model.ChannelAlipay, payer)
		f.repo.On("FindSellable", model.ProductBook, "v-paper").Return(paperback(5), nil)
		f.repo.On("CreateOrder", mock.Anything, mock.Anything).Return(nil)
		payer.On("Pay", mock.AnythingOfType("string"), 17.5).Return("https://pay.example/redirect", nil)

		result, err := f.svc.CreateOrder(ctx, "u-1", CreateOrderInput{
			Items:    []ItemInput{{ProductType: model.ProductBook, VariantID: "v-paper", Quantity: 1}},
			Shipping: shipping,
			Channel:  model.ChannelAlipay,
		})
		require.NoError(t, err)
		assert.Equal(t, "https://pay.example/redirect", result.PayParam)
		assert.Equal(t, model.ChannelAlipay, result.Order.PaymentChannel)
	})
}

func pendingOrder() *model.Order {
	return &model.Order{
		BaseModel:     pkgmodel.BaseModel{ID: "o-1"},
		OrderNo:       "20240601093000abcd1234",
		UserID:        "u-1",
		Status:        model.StatusPending,
		PaymentStatus: model.PaymentUnpaid,
		Total:         17.5,
		Shipping:      shipping,
	}
}

func TestUpdateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("Paid sets paid at", func(t *testing.T) {
		f := newOrderFixture()
		paid := model.PaymentPaid
		f.repo.On("GetOrderByNo", "n-1").Return(pendingOrder(), nil)
		f.repo.On("UpdateOrder", "n-1", mock.MatchedBy(func(u repository.OrderUpdate) bool {
			return u.PaidAt != nil && u.PaidAt.Equal(orderNow) && u.Status == nil
		})).Return(nil)

		order, err := f.svc.UpdateOrder(ctx, "n-1", UpdateOrderInput{PaymentStatus: &paid})
		require.NoError(t, err)
		assert.Equal(t, model.PaymentPaid, order.PaymentStatus)
		assert.Empty(t, f.notifier.All())
	})

	t.Run("Status change emails the customer", func(t *testing.T) {
		f := newOrderFixture()
		shipped := model.StatusShipped
		f.repo.On("GetOrderByNo", "n-1").Return(pendingOrder(), nil)
		f.repo.On("UpdateOrder", "n-1", mock.Anything).Return(nil)

		order, err := f.svc.UpdateOrder(ctx, "n-1", UpdateOrderInput{Status: &shipped})
		require.NoError(t, err)
		assert.Equal(t, model.StatusShipped, order.Status)
		sent := f.notifier.All()
		require.Len(t, sent, 1)
		assert.Equal(t, notify.TemplateOrderStatus, sent[0].Template)
	})

	t.Run("Rejects unknown values", func(t *testing.T) {
		f := newOrderFixture()
		bogus := "lost"
		_, err := f.svc.UpdateOrder(ctx, "n-1", UpdateOrderInput{Status: &bogus})
		assert.ErrorIs(t, err, ErrInvalidOrderStatus)

		_, err = f.svc.UpdateOrder(ctx, "n-1", UpdateOrderInput{PaymentStatus: &bogus})
		assert.ErrorIs(t, err, ErrInvalidPayment)

		_, err = f.svc.UpdateOrder(ctx, "n-1", UpdateOrderInput{})
		assert.ErrorIs(t, err, ErrEmptyUpdate)
	})
}

func TestGetMyOrder_OwnerOnly(t *testing.T) {
	f := newOrderFixture()
	f.repo.On("GetOrderByNo", "n-1").Return(pendingOrder(), nil)

	_, err := f.svc.GetMyOrder(context.Background(), "someone-else", "n-1")
	assert.ErrorIs(t, err, ErrOrderNotFound)

	order, err := f.svc.GetMyOrder(context.Background(), "u-1", "n-1")
	require.NoError(t, err)
	assert.Equal(t, "o-1", order.ID)
}

func TestHandleNotify(t *testing.T) {
	ctx := context.Background()
	form := url.Values{"out_trade_no": {"n-1"}}

	setup := func() (*orderFixture, *MockStrategy) {
		f := newOrderFixture()
		payer := new(MockStrategy)
		f.svc.RegisterStrategy(model.ChannelAlipay, payer)
		f.repo.On("GetOrderByNo", "n-1").Return(pendingOrder(), nil)
		return f, payer
	}

	t.Run("Success marks paid", func(t *testing.T) {
		f, payer := setup()
		payer.On("Notify", form).Return(&strategy.NotifyResult{OrderNo: "n-1", Amount: 17.5, Success: true}, nil)
		f.repo.On("MarkPaid", "20240601093000abcd1234").Return(true, nil)

		require.NoError(t, f.svc.HandleNotify(ctx, model.ChannelAlipay, form))
		sent := f.notifier.All()
		require.Len(t, sent, 1)
		assert.Equal(t, model.StatusProcessing, sent[0].Data["Status"])
		assert.Equal(t, model.PaymentPaid, sent[0].Data["PaymentStatus"])
	})

	t.Run("Duplicate callback is ignored", func(t *testing.T) {
		f, payer := setup()
		payer.On("Notify", form).Return(&strategy.NotifyResult{OrderNo: "n-1", Amount: 17.5, Success: true}, nil)
		f.repo.On("MarkPaid", "20240601093000abcd1234").Return(false, nil)

		require.NoError(t, f.svc.HandleNotify(ctx, model.ChannelAlipay, form))
		assert.Empty(t, f.notifier.All())
	})

	t.Run("Late payment for cancelled order", func(t *testing.T) {
		f := newOrderFixture()
		payer := new(MockStrategy)
		f.svc.RegisterStrategy(model.ChannelAlipay, payer)
		cancelled := pendingOrder()
		cancelled.Status = model.StatusCancelled
		f.repo.On("GetOrderByNo", "n-1").Return(cancelled, nil)
		payer.On("Notify", form).Return(&strategy.NotifyResult{OrderNo: "n-1", Amount: 17.5, Success: true}, nil)

		err := f.svc.HandleNotify(ctx, model.ChannelAlipay, form)
		assert.Equal(t, ErrPaidAfterCancel, err)
		f.repo.AssertNotCalled(t, "MarkPaid", mock.Anything)
		assert.Empty(t, f.notifier.All())
	})

	t.Run("Order cancelled while callback runs", func(t *testing.T) {
		f := newOrderFixture()
		payer := new(MockStrategy)
		f.svc.RegisterStrategy(model.ChannelAlipay, payer)
		cancelled := pendingOrder()
		cancelled.Status = model.StatusCancelled
		f.repo.On("GetOrderByNo", "n-1").Return(pendingOrder(), nil).Once()
		f.repo.On("GetOrderByNo", "n-1").Return(cancelled, nil).Once()
		payer.On("Notify", form).Return(&strategy.NotifyResult{OrderNo: "n-1", Amount: 17.5, Success: true}, nil)
		f.repo.On("MarkPaid", "20240601093000abcd1234").Return(false, nil)

		err := f.svc.HandleNotify(ctx, model.ChannelAlipay, form)
		assert.Equal(t, ErrPaidAfterCancel, err)
		assert.Empty(t, f.notifier.All())
	})

	t.Run("Failure marks payment failed", func(t *testing.T) {
		f, payer := setup()
		payer.On("Notify", form).Return(&strategy.NotifyResult{OrderNo: "n-1", Amount: 17.5}, nil)
		f.repo.On("MarkPaymentFailed", "20240601093000abcd1234").Return(true, nil)

		require.NoError(t, f.svc.HandleNotify(ctx, model.ChannelAlipay, form))
		f.repo.AssertNotCalled(t, "MarkPaid", mock.Anything)
	})

	t.Run("Amount mismatch", func(t *testing.T) {
		f, payer := setup()
		payer.On("Notify", form).Return(&strategy.NotifyResult{OrderNo: "n-1", Amount: 1, Success: true}, nil)

		err := f.svc.HandleNotify(ctx, model.ChannelAlipay, form)
		assert.ErrorIs(t, err, ErrPaymentAmount)
		f.repo.AssertNotCalled(t, "MarkPaid", mock.Anything)
	})

	t.Run("Bad signature", func(t *testing.T) {
		f, payer := setup()
		payer.On("Notify", form).Return(nil, errors.New("bad sign"))

		assert.Error(t, f.svc.HandleNotify(ctx, model.ChannelAlipay, form))
	})

	t.Run("Unknown channel", func(t *testing.T) {
		f := newOrderFixture()
		assert.ErrorIs(t, f.svc.HandleNotify(ctx, model.ChannelWechat, nil), ErrPaymentChannel)
	})
}

func TestPayOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("Switches channel and issues pay param", func(t *testing.T) {
		f := newOrderFixture()
		payer := new(MockStrategy)
		f.svc.RegisterStrategy(model.ChannelWechat, payer)
		f.repo.On("GetOrderByNo", "n-1").Return(pendingOrder(), nil)
		f.repo.On("SetPaymentChannel", "n-1", model.ChannelWechat).Return(nil)
		payer.On("Pay", "20240601093000abcd1234", 17.5).Return("weixin://wxpay/bizpayurl?pr=abc", nil)

		param, err := f.svc.PayOrder(ctx, "u-1", "n-1", model.ChannelWechat)
		require.NoError(t, err)
		assert.Equal(t, "weixin://wxpay/bizpayurl?pr=abc", param)
	})

	t.Run("Paid order", func(t *testing.T) {
		f := newOrderFixture()
		f.svc.RegisterStrategy(model.ChannelWechat, new(MockStrategy))
		o := pendingOrder()
		o.PaymentStatus = model.PaymentPaid
		f.repo.On("GetOrderByNo", "n-1").Return(o, nil)

		_, err := f.svc.PayOrder(ctx, "u-1", "n-1", model.ChannelWechat)
		assert.ErrorIs(t, err, ErrOrderNotPayable)
	})
}

func TestExpireUnpaid(t *testing.T) {
	f := newOrderFixture()
	cancelled := pendingOrder()
	cancelled.Status = model.StatusCancelled
	f.repo.On("ExpireUnpaid", orderNow.Add(-24*time.Hour)).Return([]model.Order{*cancelled}, nil)

	n, err := f.svc.ExpireUnpaid(context.Background(), 24*time.Hour)

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	sent := f.notifier.All()
	require.Len(t, sent, 1)
	assert.Equal(t, model.StatusCancelled, sent[0].Data["Status"])
}
