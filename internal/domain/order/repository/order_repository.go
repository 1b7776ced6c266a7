package repository

import (
	"context"
	"encoding/json"
	"errors"
	"thywilluche/internal/domain/order/model"
	shopmodel "thywilluche/internal/domain/shop/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrInsufficientStock 条件扣减未命中，库存已被其它订单占用
var ErrInsufficientStock = errors.New("insufficient stock")

// Sellable 下单时读取的规格快照
type Sellable struct {
	ProductID     string
	ProductName   string
	ProductActive bool
	VariantID     string
	VariantType   string
	Price         float64
	Stock         int
	Status        string
}

// StockChange 扣减/回补库存的一行
type StockChange struct {
	ProductType string
	VariantID   string
	Quantity    int
}

type OrderFilter struct {
	UserID        string
	Status        string
	PaymentStatus string
	Offset        int
	Limit         int
}

// OrderUpdate 管理员修改，nil 字段不更新
type OrderUpdate struct {
	Status        *string
	PaymentStatus *string
	PaidAt        *time.Time
}

type OrderRepository interface {
	FindSellable(ctx context.Context, productType, variantID string) (*Sellable, error)
	// CreateOrder 一个事务内写订单、明细并条件扣减库存
	CreateOrder(ctx context.Context, order *model.Order, changes []StockChange) error
	GetOrderByNo(ctx context.Context, orderNo string) (*model.Order, error)
	ListOrders(ctx context.Context, f OrderFilter) ([]model.Order, int64, error)
	UpdateOrder(ctx context.Context, orderNo string, u OrderUpdate) error
	SetPaymentChannel(ctx context.Context, orderNo, channel string) error
	// MarkPaid 已支付的订单不重复处理，返回是否更新
	MarkPaid(ctx context.Context, orderNo string, paidAt time.Time, extra json.RawMessage) (bool, error)
	MarkPaymentFailed(ctx context.Context, orderNo string) (bool, error)
	// ExpireUnpaid 取消 before 之前创建且仍未支付的订单并回补库存
	ExpireUnpaid(ctx context.Context, before time.Time) ([]model.Order, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func variantTable(productType string) (string, error) {
	switch productType {
	case model.ProductBook:
		return "book_variants", nil
	case model.ProductMerch:
		return "merch_variants", nil
	}
	return "", errors.New("unknown product type " + productType)
}

func (r *orderRepository) FindSellable(ctx context.Context, productType, variantID string) (*Sellable, error) {
	var s Sellable
	db := r.db.WithContext(ctx)

	var query *gorm.DB
	switch productType {
	case model.ProductBook:
		query = db.Model(&shopmodel.BookVariant{}).
			Select("books.id AS product_id, books.title AS product_name, books.is_active AS product_active, " +
				"book_variants.id AS variant_id, book_variants.variant_type, book_variants.price, book_variants.stock, book_variants.status").
			Joins("JOIN books ON books.id = book_variants.book_id AND books.deleted_at IS NULL").
			Where("book_variants.id = ?", variantID)
	case model.ProductMerch:
		query = db.Model(&shopmodel.MerchVariant{}).
			Select("merch.id AS product_id, merch.name AS product_name, merch.is_active AS product_active, " +
				"merch_variants.id AS variant_id, merch_variants.variant_type, merch_variants.price, merch_variants.stock, merch_variants.status").
			Joins("JOIN merch ON merch.id = merch_variants.merch_id AND merch.deleted_at IS NULL").
			Where("merch_variants.id = ?", variantID)
	default:
		return nil, gorm.ErrRecordNotFound
	}

	if err := query.Take(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *orderRepository) CreateOrder(ctx context.Context, order *model.Order, changes []StockChange) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, c := range changes {
			table, err := variantTable(c.ProductType)
			if err != nil {
				return err
			}
			res := tx.Table(table).
				Where("id = ? AND stock >= ?", c.VariantID, c.Quantity).
				Updates(map[string]interface{}{
					"stock":      gorm.Expr("stock - ?", c.Quantity),
					"updated_at": time.Now(),
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrInsufficientStock
			}
		}
		return tx.Create(order).Error
	})
}

func (r *orderRepository) GetOrderByNo(ctx context.Context, orderNo string) (*model.Order, error) {
	var order model.Order
	if err := r.db.WithContext(ctx).Preload("Items").Where("order_no = ?", orderNo).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) ListOrders(ctx context.Context, f OrderFilter) ([]model.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Order{})
	if f.UserID != "" {
		query = query.Where("user_id = ?", f.UserID)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.PaymentStatus != "" {
		query = query.Where("payment_status = ?", f.PaymentStatus)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []model.Order
	if err := query.Preload("Items").Order("created_at DESC").
		Offset(f.Offset).Limit(f.Limit).Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *orderRepository) UpdateOrder(ctx context.Context, orderNo string, u OrderUpdate) error {
	updates := map[string]interface{}{}
	if u.Status != nil {
		updates["status"] = *u.Status
	}
	if u.PaymentStatus != nil {
		updates["payment_status"] = *u.PaymentStatus
	}
	if u.PaidAt != nil {
		updates["paid_at"] = u.PaidAt
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.Order{}).Where("order_no = ?", orderNo).Updates(updates).Error
}

func (r *orderRepository) SetPaymentChannel(ctx context.Context, orderNo, channel string) error {
	return r.db.WithContext(ctx).Model(&model.Order{}).
		Where("order_no = ?", orderNo).
		Update("payment_channel", channel).Error
}

func (r *orderRepository) MarkPaid(ctx context.Context, orderNo string, paidAt time.Time, extra json.RawMessage) (bool, error) {
	updates := map[string]interface{}{
		"payment_status": model.PaymentPaid,
		"status":         gorm.Expr("CASE WHEN status = ? THEN ? ELSE status END", model.StatusPending, model.StatusProcessing),
		"paid_at":        paidAt,
	}
	if extra != nil {
		updates["extra_params"] = extra
	}
	// 已取消的订单库存已回补，迟到的支付不能再把它标记为已支付
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("order_no = ? AND payment_status <> ? AND status <> ?", orderNo, model.PaymentPaid, model.StatusCancelled).
		Updates(updates)
	return res.RowsAffected > 0, res.Error
}

func (r *orderRepository) MarkPaymentFailed(ctx context.Context, orderNo string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("order_no = ? AND payment_status = ?", orderNo, model.PaymentUnpaid).
		Update("payment_status", model.PaymentFailed)
	return res.RowsAffected > 0, res.Error
}

// 支付失败的订单同样占着库存，超时一并取消
var expirablePayments = []string{model.PaymentUnpaid, model.PaymentFailed}

func (r *orderRepository) ExpireUnpaid(ctx context.Context, before time.Time) ([]model.Order, error) {
	var expired []model.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// SKIP LOCKED：多实例同时跑定时任务时互不阻塞
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("status = ? AND payment_status IN ? AND created_at < ?", model.StatusPending, expirablePayments, before).
			Find(&expired).Error; err != nil {
			return err
		}
		if len(expired) == 0 {
			return nil
		}

		ids := make([]string, len(expired))
		for i := range expired {
			ids[i] = expired[i].ID
		}
		var items []model.OrderItem
		if err := tx.Where("order_id IN ? AND stock_tracked = ?", ids, true).Find(&items).Error; err != nil {
			return err
		}
		for _, item := range items {
			table, err := variantTable(item.ProductType)
			if err != nil {
				return err
			}
			if err := tx.Table(table).Where("id = ?", item.VariantID).
				Update("stock", gorm.Expr("stock + ?", item.Quantity)).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&model.Order{}).Where("id IN ?", ids).
			Update("status", model.StatusCancelled).Error; err != nil {
			return err
		}
		for i := range expired {
			expired[i].Status = model.StatusCancelled
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return expired, nil
}
