package order

import (
	"context"
	"thywilluche/internal/domain/order/handler"
	"thywilluche/internal/domain/order/model"
	"thywilluche/internal/domain/order/repository"
	"thywilluche/internal/domain/order/service"
	"thywilluche/internal/domain/order/strategy"
	userRepo "thywilluche/internal/domain/user/repository"
	"thywilluche/internal/pkg/config"
	"thywilluche/internal/pkg/middleware"
	"thywilluche/internal/pkg/registry"
	"thywilluche/pkg/logger"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ExpireSchedule 超时未支付订单清理频率
const ExpireSchedule = "@every 15m"

// OrderModule 订单与支付
type OrderModule struct{}

func init() {
	registry.Register(&OrderModule{})
}

func (m *OrderModule) Name() string {
	return "order"
}

func (m *OrderModule) Priority() int {
	// 依赖用户和商城的表
	return 30
}

func (m *OrderModule) Init(ctx *registry.ModuleContext) error {
	svc := NewService(ctx)

	if ctx.Cron != nil {
		ttl := UnpaidTTL(config.GlobalConfig.Shop)
		if _, err := ctx.Cron.AddFunc(ExpireSchedule, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if _, err := svc.ExpireUnpaid(jobCtx, ttl); err != nil {
				logger.Log.Error("expire unpaid orders failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	setupRoutes(ctx.Router, handler.NewOrderHandler(svc))
	return nil
}

// NewService 组装订单服务并注册已配置的支付渠道，siteadmin 也复用
func NewService(ctx *registry.ModuleContext) service.OrderService {
	svc := service.NewOrderService(
		repository.NewOrderRepository(ctx.DB),
		userRepo.NewUserRepository(ctx.DB),
		ctx.Notifier,
		config.GlobalConfig.Shop,
	)

	if config.GlobalConfig.Alipay.AppID != "" {
		alipayStrategy, err := strategy.NewAlipayStrategy(config.GlobalConfig.Alipay)
		if err != nil {
			logger.Log.Error("Failed to init Alipay strategy", zap.Error(err))
		} else {
			svc.RegisterStrategy(model.ChannelAlipay, alipayStrategy)
		}
	}

	if config.GlobalConfig.Wechat.MchID != "" {
		wechatStrategy, err := strategy.NewWechatStrategy(config.GlobalConfig.Wechat)
		if err != nil {
			logger.Log.Error("Failed to init Wechat strategy", zap.Error(err))
		} else {
			svc.RegisterStrategy(model.ChannelWechat, wechatStrategy)
		}
	}
	return svc
}

// UnpaidTTL 未支付订单保留时长，默认 24 小时
func UnpaidTTL(cfg config.ShopConfig) time.Duration {
	if cfg.UnpaidOrderTTL <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(cfg.UnpaidOrderTTL) * time.Minute
}

func setupRoutes(r *gin.Engine, h *handler.OrderHandler) {
	// 支付回调 (无需鉴权，由策略验签)
	notify := r.Group("/payment/notify")
	{
		notify.POST("/alipay", h.AlipayNotify)
		notify.POST("/wechat", h.WechatNotify)
	}

	orders := r.Group("/orders")
	orders.Use(middleware.AuthMiddleware())
	{
		orders.POST("", h.CreateOrder)
		orders.GET("", h.ListMyOrders)
		orders.GET("/:orderNo", h.GetMyOrder)
		orders.POST("/:orderNo/pay", h.PayOrder)
	}

	admin := r.Group("/admin/orders")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.GET("", h.ListOrders)
		admin.GET("/:orderNo", h.GetOrder)
		admin.PATCH("/:orderNo", h.UpdateOrder)
	}
}
