package model

import (
	"encoding/json"
	"thywilluche/pkg/model"
	"time"
)

// 订单状态
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

// 支付状态
const (
	PaymentUnpaid   = "unpaid"
	PaymentPaid     = "paid"
	PaymentFailed   = "failed"
	PaymentRefunded = "refunded"
)

const (
	ChannelAlipay = "alipay"
	ChannelWechat = "wechat"

	ProductBook  = "book"
	ProductMerch = "merch"
)

func IsValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

func IsValidPaymentStatus(s string) bool {
	switch s {
	case PaymentUnpaid, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

// ShippingAddress 收货信息，内嵌在订单表 shipping_ 前缀列
type ShippingAddress struct {
	Name        string `gorm:"size:120" json:"name"`
	Email       string `gorm:"size:255" json:"email"`
	Phone       string `gorm:"size:40" json:"phone"`
	AddressLine string `gorm:"size:255" json:"addressLine"`
	City        string `gorm:"size:100" json:"city"`
	State       string `gorm:"size:100" json:"state"`
	Country     string `gorm:"size:100" json:"country"`
	PostalCode  string `gorm:"size:20" json:"postalCode"`
}

// Order 订单
type Order struct {
	model.BaseModel
	OrderNo        string          `gorm:"size:32;uniqueIndex;not null" json:"orderNo"`
	UserID         string          `gorm:"type:uuid;index;not null" json:"userId"`
	Status         string          `gorm:"size:20;not null;default:'pending'" json:"status"`
	PaymentStatus  string          `gorm:"size:20;not null;default:'unpaid'" json:"paymentStatus"`
	PaymentChannel string          `gorm:"size:20" json:"paymentChannel,omitempty"`
	Currency       string          `gorm:"size:3" json:"currency"`
	Subtotal       float64         `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	ShippingFee    float64         `gorm:"type:numeric(12,2);not null" json:"shippingFee"`
	Total          float64         `gorm:"type:numeric(12,2);not null" json:"total"`
	Shipping       ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping"`
	Note           string          `gorm:"size:500" json:"note,omitempty"`
	PaidAt         *time.Time      `json:"paidAt,omitempty"`
	ExtraParams    json.RawMessage `gorm:"type:jsonb" json:"-"` // 支付回调原始参数
	Items          []OrderItem     `gorm:"foreignKey:OrderID" json:"items"`
}

// OrderItem 下单时的快照，商品后续改价不影响订单
type OrderItem struct {
	ID           string    `gorm:"primaryKey;type:uuid" json:"id"`
	OrderID      string    `gorm:"type:uuid;index;not null" json:"orderId"`
	ProductType  string    `gorm:"size:10;not null" json:"productType"`
	ProductID    string    `gorm:"type:uuid;not null" json:"productId"`
	VariantID    string    `gorm:"type:uuid;not null" json:"variantId"`
	Name         string    `gorm:"size:200;not null" json:"name"`
	VariantLabel string    `gorm:"size:60" json:"variantLabel"`
	UnitPrice    float64   `gorm:"type:numeric(12,2);not null" json:"unitPrice"`
	Quantity     int       `gorm:"not null" json:"quantity"`
	LineTotal    float64   `gorm:"type:numeric(12,2);not null" json:"lineTotal"`
	StockTracked bool      `gorm:"not null;default:false" json:"-"` // 下单时扣过库存，取消时回补
	CreatedAt    time.Time `json:"createdAt"`
}
