package handler

import (
	"thywilluche/internal/domain/community/service"
	"thywilluche/internal/pkg/middleware"
	"thywilluche/pkg/response"
	"thywilluche/pkg/utils"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	service service.PostService
}

func NewPostHandler(s service.PostService) *PostHandler {
	return &PostHandler{service: s}
}

// CreatePostInput 发帖输入
type CreatePostInput struct {
	Content string   `json:"content" binding:"required"`
	Images  []string `json:"images" binding:"omitempty,max=4,dive,url"`
	GroupID string   `json:"groupId" binding:"omitempty,uuid"`
}

// ModerateInput 审核输入
type ModerateInput struct {
	Decision string `json:"decision" binding:"required,oneof=approved rejected"`
	Reason   string `json:"reason" binding:"max=500"`
}

// CommentInput 评论输入
type CommentInput struct {
	Content  string `json:"content" binding:"required"`
	ParentID string `json:"parentId" binding:"omitempty,uuid"`
}

// LikeInput 点赞输入
type LikeInput struct {
	TargetID   string `json:"targetId" binding:"required,uuid"`
	TargetType string `json:"targetType" binding:"required,oneof=post comment"`
}

// FeedQuery 动态流查询
type FeedQuery struct {
	GroupID string `form:"groupId" binding:"omitempty,uuid"`
	utils.Pagination
}

// StatusQuery 按状态筛选
type StatusQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=pending approved rejected"`
	utils.Pagination
}

func viewer(c *gin.Context) service.Viewer {
	return service.Viewer{UserID: middleware.GetUserID(c), IsAdmin: middleware.IsAdmin(c)}
}

// CreatePost 发布帖子，进入待审核
// @Summary 发布帖子
// @Tags Community
// @Security Bearer
// @Accept json
// @Produce json
// @Param input body CreatePostInput true "帖子内容"
// @Success 200 {object} model.Post
// @Router /community/posts [post]
func (h *PostHandler) CreatePost(c *gin.Context) {
	var input CreatePostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err)
		return
	}

	post, err := h.service.CreatePost(c.Request.Context(), middleware.GetUserID(c), service.CreatePostInput{
		Content: input.Content,
		Images:  input.Images,
		GroupID: input.GroupID,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.SuccessWithMessage(c, "post submitted for review", post)
}

// GetFeed 获取动态流
// @Summary 获取已审核帖子
// @Tags Community
// @Param groupId query string false "小组ID"
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {object} utils.PageResult
// @Router /community/feed [get]
func (h *PostHandler) GetFeed(c *gin.Context) {
	var q FeedQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err)
		return
	}

	posts, total, err := h.service.GetFeed(c.Request.Context(), middleware.GetUserID(c), q.GroupID, q.Pagination)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, utils.NewPageResult(posts, total, q.Pagination))
}

// GetPost 帖子详情
// @Summary 帖子详情
// @Tags Community
// @Param id path string true "帖子ID"
// @Success 200 {object} model.Post
// @Router /community/posts/{id} [get]
func (h *PostHandler) GetPost(c *gin.Context) {
	post, err := h.service.GetPost(c.Request.Context(), viewer(c), c.Param("id"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, post)
}

// ListMyPosts 我的帖子
func (h *PostHandler) ListMyPosts(c *gin.Context) {
	var q StatusQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err)
		return
	}

	posts, total, err := h.service.ListMyPosts(c.Request.Context(), middleware.GetUserID(c), q.Status, q.Pagination)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, utils.NewPageResult(posts, total, q.Pagination))
}

// DeletePost 删除帖子 (作者或管理员)
func (h *PostHandler) DeletePost(c *gin.Context) {
	if err := h.service.DeletePost(c.Request.Context(), viewer(c), c.Param("id")); err != nil {
		response.HandleError(c, err)
		return
	}
	response.SuccessWithMessage(c, "post deleted", nil)
}

// ListPosts 管理端帖子列表
// @Summary 帖子列表 (管理员)
// @Tags Admin
// @Security Bearer
// @Param status query string false "pending | approved | rejected"
// @Success 200 {object} utils.PageResult
// @Router /admin/posts [get]
func (h *PostHandler) ListPosts(c *gin.Context) {
	var q StatusQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err)
		return
	}

	posts, total, err := h.service.ListPosts(c.Request.Context(), q.Status, q.Pagination)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, utils.NewPageResult(posts, total, q.Pagination))
}

// ModeratePost 审核帖子 (管理员)
// @Summary 审核帖子
// @Tags Admin
// @Security Bearer
// @Accept json
// @Param id path string true "帖子ID"
// @Param input body ModerateInput true "审核结果"
// @Success 200 {object} model.Post
// @Router /admin/posts/{id}/moderate [post]
func (h *PostHandler) ModeratePost(c *gin.Context) {
	var input ModerateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err)
		return
	}

	post, err := h.service.ModeratePost(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), input.Decision, input.Reason)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.SuccessWithMessage(c, "post "+post.Status, post)
}

// AddComment 发表评论
func (h *PostHandler) AddComment(c *gin.Context) {
	var input CommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err)
		return
	}

	comment, err := h.service.AddComment(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), input.Content, input.ParentID)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, comment)
}

// ListComments 一级评论
// @Summary 帖子评论
// @Tags Community
// @Param id path string true "帖子ID"
// @Success 200 {object} utils.PageResult
// @Router /community/posts/{id}/comments [get]
func (h *PostHandler) ListComments(c *gin.Context) {
	var p utils.Pagination
	_ = c.ShouldBindQuery(&p)

	comments, total, err := h.service.ListComments(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), p)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, utils.NewPageResult(comments, total, p))
}

// ListReplies 评论回复
func (h *PostHandler) ListReplies(c *gin.Context) {
	var p utils.Pagination
	_ = c.ShouldBindQuery(&p)

	replies, total, err := h.service.ListReplies(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), p)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, utils.NewPageResult(replies, total, p))
}

// DeleteComment 删除评论 (作者或管理员)，内容保留
func (h *PostHandler) DeleteComment(c *gin.Context) {
	if err := h.service.DeleteComment(c.Request.Context(), viewer(c), c.Param("id")); err != nil {
		response.HandleError(c, err)
		return
	}
	response.SuccessWithMessage(c, "comment deleted", nil)
}

// ToggleLike 点赞/取消点赞
// @Summary 点赞切换
// @Tags Community
// @Security Bearer
// @Accept json
// @Param input body LikeInput true "目标"
// @Success 200 {object} service.LikeResult
// @Router /community/likes [post]
func (h *PostHandler) ToggleLike(c *gin.Context) {
	var input LikeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err)
		return
	}

	result, err := h.service.ToggleLike(c.Request.Context(), middleware.GetUserID(c), input.TargetType, input.TargetID)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, result)
}

// ToggleShare 分享/取消分享
func (h *PostHandler) ToggleShare(c *gin.Context) {
	result, err := h.service.ToggleShare(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, result)
}
