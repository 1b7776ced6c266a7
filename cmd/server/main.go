package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"thywilluche/docs"
	"thywilluche/internal/pkg/config"
	"thywilluche/internal/pkg/mailer"
	"thywilluche/internal/pkg/middleware"
	"thywilluche/internal/pkg/notify"
	"thywilluche/internal/pkg/push"
	"thywilluche/internal/pkg/registry"
	"thywilluche/internal/pkg/uploader"
	"thywilluche/pkg/cache"
	"thywilluche/pkg/database"
	"thywilluche/pkg/logger"
	"thywilluche/pkg/metrics"
	"time"

	// 各业务模块通过 init() 注册
	_ "thywilluche/internal/domain/championship"
	_ "thywilluche/internal/domain/common"
	_ "thywilluche/internal/domain/community"
	_ "thywilluche/internal/domain/dashboard"
	_ "thywilluche/internal/domain/game"
	_ "thywilluche/internal/domain/order"
	_ "thywilluche/internal/domain/shop"
	_ "thywilluche/internal/domain/user"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	notifyWorkers = 4
	notifyBuffer  = 256
)

// @title Thywill Uche API
// @version 1.0
// @BasePath /
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
func main() {
	config.LoadConfig()
	cfg := config.GlobalConfig

	if err := logger.Init(cfg.App.Env); err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db := database.InitDatabase()
	rdb := database.InitRedis()
	defer rdb.Close()

	collector := metrics.GetGlobalCollector()
	go database.MonitorPool(ctx, db, 15*time.Second)

	var pusher push.PushService = push.NoopPush{}
	if cfg.Push.AccessKeyID != "" {
		p, err := push.NewAliyunPushService(cfg.Push)
		if err != nil {
			logger.Log.Warn("push disabled", zap.Error(err))
		} else {
			pusher = p
		}
	}

	renderer, err := notify.NewRenderer(cfg.App.Name)
	if err != nil {
		logger.Log.Fatal("load notification templates", zap.Error(err))
	}
	dispatcher := notify.NewDispatcher(mailer.New(cfg.Mail), pusher, renderer, notifyWorkers, notifyBuffer)
	dispatcher.Start()
	defer dispatcher.Stop()

	var up uploader.Uploader
	if cfg.OSS.Endpoint != "" {
		oss, err := uploader.NewAliyunOSSUploader(cfg.OSS)
		if err != nil {
			logger.Log.Warn("OSS uploader disabled", zap.Error(err))
		} else {
			up = oss
		}
	}

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	limiter := middleware.NewIPRateLimiter(rate.Limit(cfg.Server.RateLimit), cfg.Server.RateBurst)
	r.Use(middleware.RateLimitMiddleware(limiter))
	r.Use(middleware.MetricsMiddleware(collector))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(collector.Handler()))
	if cfg.App.Debug {
		docs.SwaggerInfo.Title = cfg.App.Name + " API"
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	c := cron.New()
	// 清理长时间不活跃的 IP 限流器
	if _, err := c.AddFunc("@every 10m", func() {
		if n := limiter.Cleanup(); n > 0 {
			logger.Log.Debug("rate limiters evicted", zap.Int("count", n))
		}
	}); err != nil {
		logger.Log.Fatal("schedule limiter cleanup", zap.Error(err))
	}

	moduleCtx := &registry.ModuleContext{
		DB:       db,
		Redis:    rdb,
		Router:   r,
		Cache:    cache.NewRedisCache(rdb, "thywilluche:"),
		Notifier: dispatcher,
		Uploader: up,
		Cron:     c,
	}
	if err := registry.InitModules(moduleCtx); err != nil {
		logger.Log.Fatal("init modules", zap.Error(err))
	}

	c.Start()
	defer c.Stop()

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("listen", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("server shutdown", zap.Error(err))
		os.Exit(1)
	}
}
