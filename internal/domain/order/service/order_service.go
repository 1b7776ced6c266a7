package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"thywilluche/internal/domain/order/model"
	"thywilluche/internal/domain/order/repository"
	"thywilluche/internal/domain/order/strategy"
	shopmodel "thywilluche/internal/domain/shop/model"
	usermodel "thywilluche/internal/domain/user/model"
	"thywilluche/internal/pkg/config"
	"thywilluche/internal/pkg/notify"
	"thywilluche/pkg/database"
	"thywilluche/pkg/logger"
	"thywilluche/pkg/metrics"
	"thywilluche/pkg/utils"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxOrderLines   = 20
	maxLineQuantity = 99
)

// UserLookup 订单通知需要的用户信息
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*usermodel.User, error)
}

type ItemInput struct {
	ProductType string
	VariantID   string
	Quantity    int
}

type CreateOrderInput struct {
	Items    []ItemInput
	Shipping model.ShippingAddress
	Channel  string
	Note     string
}

type CreateOrderResult struct {
	Order    *model.Order `json:"order"`
	PayParam string       `json:"payParam,omitempty"`
}

type AdminQuery struct {
	Status        string
	PaymentStatus string
	utils.Pagination
}

type UpdateOrderInput struct {
	Status        *string
	PaymentStatus *string
}

type OrderService interface {
	CreateOrder(ctx context.Context, userID string, in CreateOrderInput) (*CreateOrderResult, error)
	PayOrder(ctx context.Context, userID, orderNo, channel string) (string, error)
	ListMyOrders(ctx context.Context, userID string, p utils.Pagination) ([]model.Order, int64, error)
	GetMyOrder(ctx context.Context, userID, orderNo string) (*model.Order, error)

	ListOrders(ctx context.Context, q AdminQuery) ([]model.Order, int64, error)
	GetOrder(ctx context.Context, orderNo string) (*model.Order, error)
	UpdateOrder(ctx context.Context, orderNo string, in UpdateOrderInput) (*model.Order, error)

	HandleNotify(ctx context.Context, channel string, params interface{}) error
	ExpireUnpaid(ctx context.Context, olderThan time.Duration) (int, error)
	RegisterStrategy(channel string, s strategy.PaymentStrategy)
}

type orderService struct {
	repo     repository.OrderRepository
	users    UserLookup
	notifier notify.Notifier
	shop     config.ShopConfig
	now      func() time.Time

	mu         sync.RWMutex
	strategies map[string]strategy.PaymentStrategy
}

func NewOrderService(repo repository.OrderRepository, users UserLookup, notifier notify.Notifier, shop config.ShopConfig) OrderService {
	return &orderService{
		repo:       repo,
		users:      users,
		notifier:   notifier,
		shop:       shop,
		now:        time.Now,
		strategies: make(map[string]strategy.PaymentStrategy),
	}
}

// RegisterStrategy 注册支付策略
func (s *orderService) RegisterStrategy(channel string, st strategy.PaymentStrategy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.strategies[channel] = st
}

func (s *orderService) strategy(channel string) (strategy.PaymentStrategy, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.strategies[channel]
	return st, ok
}

func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

// newOrderNo 时间戳 + 8 位十六进制
func newOrderNo(now time.Time) string {
	return fmt.Sprintf("%s%s", now.Format("20060102150405"), uuid.New().String()[:8])
}

// CreateOrder 价格取自当前规格，库存在同一事务内条件扣减
func (s *orderService) CreateOrder(ctx context.Context, userID string, in CreateOrderInput) (*CreateOrderResult, error) {
	if len(in.Items) == 0 || len(in.Items) > maxOrderLines {
		return nil, ErrInvalidItems
	}
	var payer strategy.PaymentStrategy
	if in.Channel != "" {
		st, ok := s.strategy(in.Channel)
		if !ok {
			return nil, ErrPaymentChannel
		}
		payer = st
	}

	now := s.now()
	order := &model.Order{
		OrderNo:        newOrderNo(now),
		UserID:         userID,
		Status:         model.StatusPending,
		PaymentStatus:  model.PaymentUnpaid,
		PaymentChannel: in.Channel,
		Currency:       s.shop.Currency,
		Shipping:       in.Shipping,
		Note:           strings.TrimSpace(in.Note),
	}

	var changes []repository.StockChange
	physical := false
	for _, line := range in.Items {
		if line.Quantity < 1 || line.Quantity > maxLineQuantity {
			return nil, ErrInvalidItems
		}
		if line.ProductType != model.ProductBook && line.ProductType != model.ProductMerch {
			return nil, ErrInvalidProductType
		}

		v, err := s.repo.FindSellable(ctx, line.ProductType, line.VariantID)
		if err != nil {
			if database.IsNotFound(err) {
				return nil, ErrVariantNotFound
			}
			return nil, err
		}
		if !v.ProductActive || !shopmodel.IsSellable(v.Status) {
			return nil, ErrVariantNotForSale
		}

		digital := line.ProductType == model.ProductBook && shopmodel.IsDigital(v.VariantType)
		if !digital {
			physical = true
		}
		// 预售不占现货库存
		tracked := !digital && v.Status == shopmodel.StatusAvailable
		if tracked {
			if v.Stock < line.Quantity {
				return nil, ErrOutOfStock
			}
			changes = append(changes, repository.StockChange{
				ProductType: line.ProductType,
				VariantID:   v.VariantID,
				Quantity:    line.Quantity,
			})
		}

		lineTotal := roundMoney(v.Price * float64(line.Quantity))
		order.Items = append(order.Items, model.OrderItem{
			ProductType:  line.ProductType,
			ProductID:    v.ProductID,
			VariantID:    v.VariantID,
			Name:         v.ProductName,
			VariantLabel: v.VariantType,
			UnitPrice:    v.Price,
			Quantity:     line.Quantity,
			LineTotal:    lineTotal,
			StockTracked: tracked,
		})
		order.Subtotal += lineTotal
	}

	order.Subtotal = roundMoney(order.Subtotal)
	if physical {
		order.ShippingFee = roundMoney(s.shop.ShippingFee)
	}
	order.Total = roundMoney(order.Subtotal + order.ShippingFee)

	if err := s.repo.CreateOrder(ctx, order, changes); err != nil {
		if errors.Is(err, repository.ErrInsufficientStock) {
			return nil, ErrOutOfStock
		}
		return nil, err
	}
	metrics.GetGlobalCollector().RecordOrderCreated()

	result := &CreateOrderResult{Order: order}
	if payer != nil {
		param, err := payer.Pay(ctx, order.OrderNo, order.Total, s.subject(order))
		if err != nil {
			// 订单已创建，客户端可以通过 PayOrder 重新发起
			logger.Log.Warn("payment init failed", zap.String("order_no", order.OrderNo), zap.String("channel", in.Channel), zap.Error(err))
		} else {
			result.PayParam = param
		}
	}

	s.notifyPlaced(ctx, order)
	return result, nil
}

func (s *orderService) subject(order *model.Order) string {
	return fmt.Sprintf("%s order %s", config.GlobalConfig.App.Name, order.OrderNo)
}

// PayOrder 为未支付订单重新生成支付参数
func (s *orderService) PayOrder(ctx context.Context, userID, orderNo, channel string) (string, error) {
	st, ok := s.strategy(channel)
	if !ok {
		return "", ErrPaymentChannel
	}
	order, err := s.GetMyOrder(ctx, userID, orderNo)
	if err != nil {
		return "", err
	}
	if order.Status != model.StatusPending || order.PaymentStatus == model.PaymentPaid || order.PaymentStatus == model.PaymentRefunded {
		return "", ErrOrderNotPayable
	}

	if order.PaymentChannel != channel {
		if err := s.repo.SetPaymentChannel(ctx, orderNo, channel); err != nil {
			return "", err
		}
	}
	return st.Pay(ctx, order.OrderNo, order.Total, s.subject(order))
}

func (s *orderService) ListMyOrders(ctx context.Context, userID string, p utils.Pagination) ([]model.Order, int64, error) {
	offset, limit := p.GetPageOffset()
	return s.repo.ListOrders(ctx, repository.OrderFilter{UserID: userID, Offset: offset, Limit: limit})
}

// GetMyOrder 非本人订单按不存在处理
func (s *orderService) GetMyOrder(ctx context.Context, userID, orderNo string) (*model.Order, error) {
	order, err := s.GetOrder(ctx, orderNo)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, q AdminQuery) ([]model.Order, int64, error) {
	if q.Status != "" && !model.IsValidStatus(q.Status) {
		return nil, 0, ErrInvalidOrderStatus
	}
	if q.PaymentStatus != "" && !model.IsValidPaymentStatus(q.PaymentStatus) {
		return nil, 0, ErrInvalidPayment
	}
	offset, limit := q.GetPageOffset()
	return s.repo.ListOrders(ctx, repository.OrderFilter{
		Status:        q.Status,
		PaymentStatus: q.PaymentStatus,
		Offset:        offset,
		Limit:         limit,
	})
}

func (s *orderService) GetOrder(ctx context.Context, orderNo string) (*model.Order, error) {
	order, err := s.repo.GetOrderByNo(ctx, orderNo)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

// UpdateOrder 管理员直接修改状态，枚举之间不做流转限制
func (s *orderService) UpdateOrder(ctx context.Context, orderNo string, in UpdateOrderInput) (*model.Order, error) {
	if in.Status == nil && in.PaymentStatus == nil {
		return nil, ErrEmptyUpdate
	}
	if in.Status != nil && !model.IsValidStatus(*in.Status) {
		return nil, ErrInvalidOrderStatus
	}
	if in.PaymentStatus != nil && !model.IsValidPaymentStatus(*in.PaymentStatus) {
		return nil, ErrInvalidPayment
	}

	order, err := s.GetOrder(ctx, orderNo)
	if err != nil {
		return nil, err
	}

	u := repository.OrderUpdate{Status: in.Status, PaymentStatus: in.PaymentStatus}
	if in.PaymentStatus != nil && *in.PaymentStatus == model.PaymentPaid && order.PaidAt == nil {
		now := s.now()
		u.PaidAt = &now
	}
	if err := s.repo.UpdateOrder(ctx, orderNo, u); err != nil {
		return nil, err
	}

	statusChanged := in.Status != nil && *in.Status != order.Status
	if in.Status != nil {
		order.Status = *in.Status
	}
	if in.PaymentStatus != nil {
		order.PaymentStatus = *in.PaymentStatus
	}
	if u.PaidAt != nil {
		order.PaidAt = u.PaidAt
	}
	if statusChanged {
		s.notifyStatus(ctx, order)
	}
	return order, nil
}

// HandleNotify 支付回调：成功置为已支付并进入处理中，失败只记录支付失败
func (s *orderService) HandleNotify(ctx context.Context, channel string, params interface{}) error {
	st, ok := s.strategy(channel)
	if !ok {
		return ErrPaymentChannel
	}

	res, err := st.Notify(ctx, params)
	if err != nil {
		return err
	}

	order, err := s.GetOrder(ctx, res.OrderNo)
	if err != nil {
		return err
	}

	if !res.Success {
		_, err := s.repo.MarkPaymentFailed(ctx, order.OrderNo)
		return err
	}
	if order.Status == model.StatusCancelled && order.PaymentStatus != model.PaymentPaid {
		return paidAfterCancel(order, res)
	}
	if math.Abs(res.Amount-order.Total) >= 0.005 {
		logger.Log.Error("payment amount mismatch",
			zap.String("order_no", order.OrderNo),
			zap.Float64("paid", res.Amount),
			zap.Float64("total", order.Total),
		)
		return ErrPaymentAmount
	}

	// 保存原始回调参数便于对账，*http.Request 无法序列化时不保存
	extra, err := json.Marshal(params)
	if err != nil {
		extra = nil
	}
	updated, err := s.repo.MarkPaid(ctx, order.OrderNo, s.now(), extra)
	if err != nil {
		return err
	}
	if !updated {
		// 渠道重复回调，或者查询之后订单刚被超时取消
		latest, err := s.GetOrder(ctx, res.OrderNo)
		if err == nil && latest.Status == model.StatusCancelled && latest.PaymentStatus != model.PaymentPaid {
			return paidAfterCancel(latest, res)
		}
		return nil
	}

	order.PaymentStatus = model.PaymentPaid
	if order.Status == model.StatusPending {
		order.Status = model.StatusProcessing
	}
	s.notifyStatus(ctx, order)
	return nil
}

// paidAfterCancel 钱已经到账但订单已取消，需要人工退款
func paidAfterCancel(order *model.Order, res *strategy.NotifyResult) error {
	logger.Log.Error("payment received for cancelled order, refund required",
		zap.String("order_no", order.OrderNo),
		zap.String("channel", order.PaymentChannel),
		zap.Float64("paid", res.Amount),
	)
	return ErrPaidAfterCancel
}

// ExpireUnpaid 取消超时未支付订单，返回取消数量
func (s *orderService) ExpireUnpaid(ctx context.Context, olderThan time.Duration) (int, error) {
	expired, err := s.repo.ExpireUnpaid(ctx, s.now().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	for i := range expired {
		s.notifyStatus(ctx, &expired[i])
	}
	if len(expired) > 0 {
		logger.Log.Info("unpaid orders expired", zap.Int("count", len(expired)))
	}
	return len(expired), nil
}

func (s *orderService) notifyPlaced(ctx context.Context, order *model.Order) {
	items := make([]map[string]any, len(order.Items))
	for i, it := range order.Items {
		items[i] = map[string]any{
			"Name":      it.Name,
			"Variant":   it.VariantLabel,
			"Quantity":  it.Quantity,
			"LineTotal": fmt.Sprintf("%.2f", it.LineTotal),
		}
	}
	s.send(ctx, order, "Order "+order.OrderNo+" received", notify.TemplateOrderPlaced, map[string]any{
		"OrderNo":  order.OrderNo,
		"Items":    items,
		"Currency": order.Currency,
		"Total":    fmt.Sprintf("%.2f", order.Total),
	})
}

func (s *orderService) notifyStatus(ctx context.Context, order *model.Order) {
	s.send(ctx, order, "Order "+order.OrderNo+" is "+order.Status, notify.TemplateOrderStatus, map[string]any{
		"OrderNo":       order.OrderNo,
		"Status":        order.Status,
		"PaymentStatus": order.PaymentStatus,
	})
}

// send 优先使用收货邮箱，为空时用账户邮箱
func (s *orderService) send(ctx context.Context, order *model.Order, subject, template string, data map[string]any) {
	to := order.Shipping.Email
	if to == "" {
		user, err := s.users.GetByID(ctx, order.UserID)
		if err != nil {
			logger.Log.Warn("order notice skipped", zap.String("order_no", order.OrderNo), zap.Error(err))
			return
		}
		to = user.Email
	}
	s.notifier.Notify(notify.Notification{
		To:        to,
		Subject:   subject,
		Template:  template,
		Data:      data,
		UserID:    order.UserID,
		PushTitle: subject,
		PushBody:  fmt.Sprintf("Order %s: %s / %s", order.OrderNo, order.Status, order.PaymentStatus),
		PushExt:   map[string]string{"type": "order", "orderNo": order.OrderNo},
	})
}
