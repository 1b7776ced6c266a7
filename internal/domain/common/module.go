package common

import (
	commonHandler "thywilluche/internal/pkg/common"
	"thywilluche/internal/pkg/config"
	"thywilluche/internal/pkg/geo"
	"thywilluche/internal/pkg/middleware"
	"thywilluche/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// CommonModule 通用功能模块：上传、地区查询
type CommonModule struct{}

func init() {
	registry.Register(&CommonModule{})
}

func (m *CommonModule) Name() string {
	return "common"
}

func (m *CommonModule) Priority() int {
	return 100 // 最后初始化
}

func (m *CommonModule) Init(ctx *registry.ModuleContext) error {
	h := commonHandler.NewHandler(ctx.Uploader, geo.NewClient(config.GlobalConfig.Geo, ctx.Cache))
	setupRoutes(ctx.Router, h)
	return nil
}

func setupRoutes(r *gin.Engine, h *commonHandler.Handler) {
	// 文件上传接口
	r.POST("/upload", middleware.AuthMiddleware(), h.UploadFile)

	g := r.Group("/geo")
	{
		g.GET("/countries", h.Countries)
		g.GET("/countries/:country/states", h.States)
		g.GET("/countries/:country/states/:state/cities", h.Cities)
	}
}
