package handler

import (
	"thywilluche/internal/domain/community/service"
	"thywilluche/internal/pkg/middleware"
	"thywilluche/pkg/response"
	"thywilluche/pkg/utils"

	"github.com/gin-gonic/gin"
)

type GroupHandler struct {
	service service.GroupService
}

func NewGroupHandler(s service.GroupService) *GroupHandler {
	return &GroupHandler{service: s}
}

// GroupInput 创建/更新小组，更新时没传的可选字段保持不变
type GroupInput struct {
	Name        string  `json:"name" binding:"required,max=100"`
	Slug        string  `json:"slug" binding:"max=120"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	Type        string  `json:"type" binding:"omitempty,oneof=general book_club writers poetry"`
	Image       *string `json:"image" binding:"omitempty,url"`
	IsActive    *bool   `json:"isActive"`
}

func (in GroupInput) toService() service.GroupInput {
	return service.GroupInput{
		Name:        in.Name,
		Slug:        in.Slug,
		Description: in.Description,
		Type:        in.Type,
		Image:       in.Image,
		IsActive:    in.IsActive,
	}
}

// ListGroups 小组列表 (公开，只含活跃小组)
// @Summary 小组列表
// @Tags Community
// @Success 200 {array} model.Group
// @Router /community/groups [get]
func (h *GroupHandler) ListGroups(c *gin.Context) {
	groups, err := h.service.ListGroups(c.Request.Context(), true)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, groups)
}

// AdminListGroups 包含停用小组
func (h *GroupHandler) AdminListGroups(c *gin.Context) {
	groups, err := h.service.ListGroups(c.Request.Context(), false)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, groups)
}

// GetGroup 小组详情
// @Summary 小组详情
// @Tags Community
// @Param slug path string true "小组 slug"
// @Success 200 {object} model.Group
// @Router /community/groups/{slug} [get]
func (h *GroupHandler) GetGroup(c *gin.Context) {
	group, err := h.service.GetGroup(c.Request.Context(), c.Param("slug"), middleware.IsAdmin(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, group)
}

// CreateGroup 创建小组 (管理员)
// @Summary 创建小组
// @Tags Admin
// @Security Bearer
// @Accept json
// @Param input body GroupInput true "小组"
// @Success 200 {object} model.Group
// @Router /admin/groups [post]
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var input GroupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err)
		return
	}

	group, err := h.service.CreateGroup(c.Request.Context(), middleware.GetUserID(c), input.toService())
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, group)
}

// UpdateGroup 更新小组 (管理员)
func (h *GroupHandler) UpdateGroup(c *gin.Context) {
	var input GroupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err)
		return
	}

	group, err := h.service.UpdateGroup(c.Request.Context(), c.Param("id"), input.toService())
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, group)
}

// DeleteGroup 删除小组 (管理员)，有帖子时拒绝
// @Summary 删除小组
// @Tags Admin
// @Security Bearer
// @Param id path string true "小组ID"
// @Success 200 {string} string "success"
// @Failure 409 {object} response.Response
// @Router /admin/groups/{id} [delete]
func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	if err := h.service.DeleteGroup(c.Request.Context(), c.Param("id")); err != nil {
		response.HandleError(c, err)
		return
	}
	response.SuccessWithMessage(c, "group deleted", nil)
}

// JoinGroup 加入小组
func (h *GroupHandler) JoinGroup(c *gin.Context) {
	member, err := h.service.JoinGroup(c.Request.Context(), middleware.GetUserID(c), c.Param("slug"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, member)
}

// LeaveGroup 退出小组
func (h *GroupHandler) LeaveGroup(c *gin.Context) {
	if err := h.service.LeaveGroup(c.Request.Context(), middleware.GetUserID(c), c.Param("slug")); err != nil {
		response.HandleError(c, err)
		return
	}
	response.SuccessWithMessage(c, "left group", nil)
}

func (h *GroupHandler) ListMyGroups(c *gin.Context) {
	groups, err := h.service.ListMyGroups(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, groups)
}

func (h *GroupHandler) ListGroupMembers(c *gin.Context) {
	var p utils.Pagination
	_ = c.ShouldBindQuery(&p)

	members, total, err := h.service.ListGroupMembers(c.Request.Context(), c.Param("slug"), p)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, utils.NewPageResult(members, total, p))
}
