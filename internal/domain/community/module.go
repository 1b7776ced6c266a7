package community

import (
	"thywilluche/internal/domain/community/handler"
	"thywilluche/internal/domain/community/repository"
	"thywilluche/internal/domain/community/service"
	userRepo "thywilluche/internal/domain/user/repository"
	"thywilluche/internal/pkg/middleware"
	"thywilluche/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// CommunityModule 社区模块：帖子、评论、点赞、分享、举报、小组
type CommunityModule struct{}

func init() {
	registry.Register(&CommunityModule{})
}

func (m *CommunityModule) Name() string {
	return "community"
}

func (m *CommunityModule) Priority() int {
	return 10
}

func (m *CommunityModule) Init(ctx *registry.ModuleContext) error {
	// 1. 依赖注入
	postRepo := repository.NewPostRepository(ctx.DB)
	groupRepo := repository.NewGroupRepository(ctx.DB)
	reportRepo := repository.NewReportRepository(ctx.DB)
	users := userRepo.NewUserRepository(ctx.DB)

	postHandler := handler.NewPostHandler(service.NewPostService(postRepo, groupRepo, users, ctx.Notifier))
	groupHandler := handler.NewGroupHandler(service.NewGroupService(groupRepo, users))
	reportHandler := handler.NewReportHandler(service.NewReportService(reportRepo, postRepo))

	// 2. 路由注册
	setupRoutes(ctx.Router, postHandler, groupHandler, reportHandler)

	return nil
}

func setupRoutes(r *gin.Engine, p *handler.PostHandler, g *handler.GroupHandler, rp *handler.ReportHandler) {
	id := middleware.UUIDParams("id")

	// 公开接口，带 token 时识别身份 (点赞状态、小组帖子)
	public := r.Group("/community")
	public.Use(middleware.OptionalAuthMiddleware())
	{
		public.GET("/feed", p.GetFeed)
		public.GET("/posts/:id", id, p.GetPost)
		public.GET("/posts/:id/comments", id, p.ListComments)
		public.GET("/comments/:id/replies", id, p.ListReplies)
		public.GET("/groups", g.ListGroups)
		public.GET("/groups/:slug", g.GetGroup)
	}

	// 需要登录
	auth := r.Group("/community")
	auth.Use(middleware.AuthMiddleware())
	{
		auth.POST("/posts", p.CreatePost)
		auth.GET("/me/posts", p.ListMyPosts)
		auth.DELETE("/posts/:id", id, p.DeletePost)
		auth.POST("/posts/:id/comments", id, p.AddComment)
		auth.POST("/posts/:id/share", id, p.ToggleShare)
		auth.DELETE("/comments/:id", id, p.DeleteComment)
		auth.POST("/likes", p.ToggleLike)
		auth.POST("/reports", rp.ReportContent)
		auth.GET("/me/groups", g.ListMyGroups)
		auth.POST("/groups/:slug/membership", g.JoinGroup)
		auth.DELETE("/groups/:slug/membership", g.LeaveGroup)
		auth.GET("/groups/:slug/members", g.ListGroupMembers)
	}

	// 管理员
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.GET("/posts", p.ListPosts)
		admin.POST("/posts/:id/moderate", id, p.ModeratePost)
		admin.GET("/reports", rp.ListReports)
		admin.PATCH("/reports/:id", id, rp.ResolveReport)
		admin.GET("/groups", g.AdminListGroups)
		admin.POST("/groups", g.CreateGroup)
		admin.PUT("/groups/:id", id, g.UpdateGroup)
		admin.DELETE("/groups/:id", id, g.DeleteGroup)
	}
}
