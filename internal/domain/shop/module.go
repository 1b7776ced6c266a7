package shop

import (
	"thywilluche/internal/domain/shop/handler"
	"thywilluche/internal/domain/shop/repository"
	"thywilluche/internal/domain/shop/service"
	"thywilluche/internal/pkg/middleware"
	"thywilluche/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// ShopModule 商城模块：图书、周边、标签
type ShopModule struct{}

func init() {
	registry.Register(&ShopModule{})
}

func (m *ShopModule) Name() string {
	return "shop"
}

func (m *ShopModule) Priority() int {
	return 20
}

func (m *ShopModule) Init(ctx *registry.ModuleContext) error {
	bookHandler := handler.NewBookHandler(service.NewBookService(repository.NewBookRepository(ctx.DB)))
	merchHandler := handler.NewMerchHandler(service.NewMerchService(repository.NewMerchRepository(ctx.DB)))

	setupRoutes(ctx.Router, bookHandler, merchHandler)
	return nil
}

func setupRoutes(r *gin.Engine, books *handler.BookHandler, merch *handler.MerchHandler) {
	shop := r.Group("/shop")
	{
		shop.GET("/books", books.ListBooks)
		shop.GET("/books/:slug", books.GetBook)
		shop.GET("/merch", merch.ListMerch)
		shop.GET("/merch/:slug", merch.GetMerch)
		shop.GET("/tags", books.ListTags)
	}

	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.GET("/books", books.AdminListBooks)
		admin.POST("/books", books.CreateBook)
		admin.PUT("/books/:id", middleware.UUIDParams("id"), books.UpdateBook)
		admin.DELETE("/books/:id", middleware.UUIDParams("id"), books.DeleteBook)
		admin.POST("/books/:id/variants", middleware.UUIDParams("id"), books.AddVariant)
		admin.PUT("/book-variants/:id", middleware.UUIDParams("id"), books.UpdateVariant)
		admin.DELETE("/book-variants/:id", middleware.UUIDParams("id"), books.DeleteVariant)

		admin.GET("/merch", merch.AdminListMerch)
		admin.POST("/merch", merch.CreateMerch)
		admin.PUT("/merch/:id", middleware.UUIDParams("id"), merch.UpdateMerch)
		admin.DELETE("/merch/:id", middleware.UUIDParams("id"), merch.DeleteMerch)
		admin.POST("/merch/:id/variants", middleware.UUIDParams("id"), merch.AddVariant)
		admin.PUT("/merch-variants/:id", middleware.UUIDParams("id"), merch.UpdateVariant)
		admin.DELETE("/merch-variants/:id", middleware.UUIDParams("id"), merch.DeleteVariant)
	}
}
