package handler

import (
	"net/http"
	"thywilluche/internal/domain/order/model"
	"thywilluche/internal/domain/order/service"
	"thywilluche/internal/pkg/middleware"
	"thywilluche/pkg/logger"
	"thywilluche/pkg/response"
	"thywilluche/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type OrderHandler struct {
	service service.OrderService
}

func NewOrderHandler(s service.OrderService) *OrderHandler {
	return &OrderHandler{service: s}
}

type OrderItemInput struct {
	ProductType string `json:"productType" binding:"required,oneof=book merch"`
	VariantID   string `json:"variantId" binding:"required,uuid"`
	Quantity    int    `json:"quantity" binding:"required,min=1,max=99"`
}

type ShippingInput struct {
	Name        string `json:"name" binding:"required,max=120"`
	Email       string `json:"email" binding:"required,email"`
	Phone       string `json:"phone" binding:"max=40"`
	AddressLine string `json:"addressLine" binding:"required,max=255"`
	City        string `json:"city" binding:"required,max=100"`
	State       string `json:"state" binding:"max=100"`
	Country     string `json:"country" binding:"required,max=100"`
	PostalCode  string `json:"postalCode" binding:"max=20"`
}

// CreateOrderInput 下单
type CreateOrderInput struct {
	Items    []OrderItemInput `json:"items" binding:"required,min=1,max=20,dive"`
	Shipping ShippingInput    `json:"shipping" binding:"required"`
	Channel  string           `json:"channel" binding:"omitempty,oneof=alipay wechat"`
	Note     string           `json:"note" binding:"max=500"`
}

type PayInput struct {
	Channel string `json:"channel" binding:"required,oneof=alipay wechat"`
}

// UpdateOrderInput 管理员修改状态
type UpdateOrderInput struct {
	Status        *string `json:"status" binding:"omitempty,oneof=pending processing shipped delivered cancelled"`
	PaymentStatus *string `json:"paymentStatus" binding:"omitempty,oneof=unpaid paid failed refunded"`
}

type AdminOrderQuery struct {
	Status        string `form:"status"`
	PaymentStatus string `form:"paymentStatus"`
	utils.Pagination
}

// CreateOrder 创建订单
// @Summary 创建订单
// @Tags Order
// @Security Bearer
// @Accept json
// @Produce json
// @Param input body CreateOrderInput true "购物车"
// @Success 200 {object} service.CreateOrderResult
// @Failure 409 {object} response.Response "not enough stock"
// @Router /orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var input CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err)
		return
	}

	items := make([]service.ItemInput, len(input.Items))
	for i, it := range input.Items {
		items[i] = service.ItemInput{ProductType: it.ProductType, VariantID: it.VariantID, Quantity: it.Quantity}
	}
	result, err := h.service.CreateOrder(c.Request.Context(), middleware.GetUserID(c), service.CreateOrderInput{
		Items: items,
		Shipping: model.ShippingAddress{
			Name:        input.Shipping.Name,
			Email:       input.Shipping.Email,
			Phone:       input.Shipping.Phone,
			AddressLine: input.Shipping.AddressLine,
			City:        input.Shipping.City,
			State:       input.Shipping.State,
			Country:     input.Shipping.Country,
			PostalCode:  input.Shipping.PostalCode,
		},
		Channel: input.Channel,
		Note:    input.Note,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, result)
}

// PayOrder 重新发起支付
// @Summary 发起支付
// @Tags Order
// @Security Bearer
// @Param orderNo path string true "订单号"
// @Param input body PayInput true "支付渠道"
// @Success 200 {object} response.Response{data=string} "Pay Param"
// @Router /orders/{orderNo}/pay [post]
func (h *OrderHandler) PayOrder(c *gin.Context) {
	var input PayInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err)
		return
	}

	param, err := h.service.PayOrder(c.Request.Context(), middleware.GetUserID(c), c.Param("orderNo"), input.Channel)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, gin.H{"payParam": param})
}

// ListMyOrders 我的订单
func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.BadRequest(c, err)
		return
	}

	orders, total, err := h.service.ListMyOrders(c.Request.Context(), middleware.GetUserID(c), p)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, utils.NewPageResult(orders, total, p))
}

// GetMyOrder 订单详情 (本人)
// @Summary 订单详情
// @Tags Order
// @Security Bearer
// @Param orderNo path string true "订单号"
// @Success 200 {object} model.Order
// @Router /orders/{orderNo} [get]
func (h *OrderHandler) GetMyOrder(c *gin.Context) {
	order, err := h.service.GetMyOrder(c.Request.Context(), middleware.GetUserID(c), c.Param("orderNo"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, order)
}

// ListOrders 订单列表 (管理员)
// @Summary 订单列表
// @Tags Admin
// @Security Bearer
// @Param status query string false "订单状态"
// @Param paymentStatus query string false "支付状态"
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} utils.PageResult
// @Router /admin/orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	var q AdminOrderQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err)
		return
	}

	orders, total, err := h.service.ListOrders(c.Request.Context(), service.AdminQuery{
		Status:        q.Status,
		PaymentStatus: q.PaymentStatus,
		Pagination:    q.Pagination,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, utils.NewPageResult(orders, total, q.Pagination))
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.service.GetOrder(c.Request.Context(), c.Param("orderNo"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, order)
}

// UpdateOrder 修改订单状态 (管理员)
// @Summary 修改订单状态
// @Tags Admin
// @Security Bearer
// @Param orderNo path string true "订单号"
// @Param input body UpdateOrderInput true "状态"
// @Success 200 {object} model.Order
// @Router /admin/orders/{orderNo} [patch]
func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	var input UpdateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err)
		return
	}

	order, err := h.service.UpdateOrder(c.Request.Context(), c.Param("orderNo"), service.UpdateOrderInput{
		Status:        input.Status,
		PaymentStatus: input.PaymentStatus,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, order)
}

// AlipayNotify 支付宝回调
// @Summary 支付宝回调
// @Tags Payment
// @Router /payment/notify/alipay [post]
func (h *OrderHandler) AlipayNotify(c *gin.Context) {
	// 支付宝回调是 POST 表单
	if err := c.Request.ParseForm(); err != nil {
		c.String(http.StatusOK, "fail")
		return
	}
	if err := h.service.HandleNotify(c.Request.Context(), model.ChannelAlipay, c.Request.Form); err != nil {
		logger.Log.Warn("alipay notify failed", zap.Error(err))
		c.String(http.StatusOK, "fail") // 支付宝收到非 success 会重试
		return
	}
	c.String(http.StatusOK, "success")
}

// WechatNotify 微信支付回调
// @Summary 微信支付回调
// @Tags Payment
// @Router /payment/notify/wechat [post]
func (h *OrderHandler) WechatNotify(c *gin.Context) {
	// 验签需要原始请求头和 body
	if err := h.service.HandleNotify(c.Request.Context(), model.ChannelWechat, c.Request); err != nil {
		logger.Log.Warn("wechat notify failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"code": "FAIL", "message": err.Error()})
		return
	}
	c.Status(http.StatusOK)
}
