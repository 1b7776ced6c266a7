package dashboard

import (
	"thywilluche/internal/domain/dashboard/handler"
	"thywilluche/internal/domain/dashboard/repository"
	"thywilluche/internal/domain/dashboard/service"
	"thywilluche/internal/pkg/middleware"
	"thywilluche/internal/pkg/registry"

	"github.com/jmoiron/sqlx"
)

// DashboardModule 管理后台统计，聚合 SQL 走 sqlx
type DashboardModule struct{}

func init() {
	registry.Register(&DashboardModule{})
}

func (m *DashboardModule) Name() string {
	return "dashboard"
}

func (m *DashboardModule) Priority() int {
	return 90
}

func (m *DashboardModule) Init(ctx *registry.ModuleContext) error {
	sqlDB, err := ctx.DB.DB()
	if err != nil {
		return err
	}
	h := handler.NewDashboardHandler(service.NewDashboardService(
		repository.NewDashboardRepository(sqlx.NewDb(sqlDB, "pgx")),
	))

	admin := ctx.Router.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	admin.GET("/dashboard", h.Overview)
	return nil
}
