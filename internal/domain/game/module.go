package game

import (
	"thywilluche/internal/domain/game/handler"
	"thywilluche/internal/domain/game/repository"
	"thywilluche/internal/domain/game/service"
	"thywilluche/internal/pkg/middleware"
	"thywilluche/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// GameModule 答题、写作、谜题游戏和徽章
type GameModule struct{}

func init() {
	registry.Register(&GameModule{})
}

func (m *GameModule) Name() string {
	return "game"
}

func (m *GameModule) Priority() int {
	return 50
}

func (m *GameModule) Init(ctx *registry.ModuleContext) error {
	h := handler.NewGameHandler(service.NewGameService(repository.NewGameRepository(ctx.DB)))
	setupRoutes(ctx.Router, h)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.GameHandler) {
	id := middleware.UUIDParams("id")

	public := r.Group("/games")
	public.Use(middleware.OptionalAuthMiddleware())
	{
		public.GET("", h.ListGames)
		public.GET("/badges", h.ListBadges)
		public.GET("/:slug", h.GetGame)
	}

	auth := r.Group("")
	auth.Use(middleware.AuthMiddleware())
	{
		auth.POST("/games/:id/submissions", id, h.Submit)
		auth.GET("/users/me/badges", h.ListMyBadges)
	}

	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.GET("/games", h.AdminListGames)
		admin.POST("/games", h.CreateGame)
		admin.PUT("/games/:id", id, h.UpdateGame)
		admin.GET("/games/:id/submissions", id, h.ListSubmissions)
		admin.POST("/games/:id/winners", id, h.SelectWinners)
		admin.PATCH("/game-submissions/:id", id, h.ScoreSubmission)
		admin.GET("/badges", h.ListBadges)
		admin.POST("/badges", h.CreateBadge)
	}
}
