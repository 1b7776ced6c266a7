package championship

import (
	"thywilluche/internal/domain/championship/handler"
	"thywilluche/internal/domain/championship/repository"
	"thywilluche/internal/domain/championship/service"
	userRepo "thywilluche/internal/domain/user/repository"
	"thywilluche/internal/pkg/middleware"
	"thywilluche/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// ChampionshipModule 书评锦标赛：报名、书评、审核
type ChampionshipModule struct{}

func init() {
	registry.Register(&ChampionshipModule{})
}

func (m *ChampionshipModule) Name() string {
	return "championship"
}

func (m *ChampionshipModule) Priority() int {
	return 40
}

func (m *ChampionshipModule) Init(ctx *registry.ModuleContext) error {
	repo := repository.NewChampionshipRepository(ctx.DB)
	users := userRepo.NewUserRepository(ctx.DB)
	h := handler.NewChampionshipHandler(service.NewChampionshipService(repo, users, ctx.Notifier))

	setupRoutes(ctx.Router, h)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.ChampionshipHandler) {
	id := middleware.UUIDParams("id")

	public := r.Group("/championships")
	{
		public.GET("", h.ListChampionships)
		public.GET("/:slug", h.GetChampionship)
	}

	auth := r.Group("/championships")
	auth.Use(middleware.AuthMiddleware())
	{
		auth.GET("/registrations/mine", h.ListMyRegistrations)
		auth.GET("/reviews/mine", h.ListMyReviews)
		auth.POST("/:id/registrations", id, h.Register)
		auth.POST("/:id/reviews", id, h.SubmitReview)
	}

	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.GET("/championships", h.ListChampionships)
		admin.POST("/championships", h.CreateChampionship)
		admin.PUT("/championships/:id", id, h.UpdateChampionship)
		admin.GET("/championship-registrations", h.ListRegistrations)
		admin.PATCH("/championship-registrations/:id", id, h.ReviewRegistration)
		admin.GET("/championship-reviews", h.ListReviews)
		admin.PATCH("/championship-reviews/:id", id, h.ReviewSubmission)
	}
}
