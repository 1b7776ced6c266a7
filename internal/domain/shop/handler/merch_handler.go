package handler

import (
	"thywilluche/internal/domain/shop/service"
	"thywilluche/pkg/response"
	"thywilluche/pkg/utils"

	"github.com/gin-gonic/gin"
)

type MerchHandler struct {
	service service.MerchService
}

func NewMerchHandler(s service.MerchService) *MerchHandler {
	return &MerchHandler{service: s}
}

type MerchInput struct {
	Name        string   `json:"name" binding:"required,max=200"`
	Slug        string   `json:"slug" binding:"max=220"`
	Description *string  `json:"description"`
	Category    *string  `json:"category" binding:"omitempty,max=60"`
	Images      []string `json:"images" binding:"omitempty,max=10,dive,url"`
	IsActive    *bool    `json:"isActive"`
}

func (in MerchInput) toService() service.MerchInput {
	return service.MerchInput{
		Name:        in.Name,
		Slug:        in.Slug,
		Description: in.Description,
		Category:    in.Category,
		Images:      in.Images,
		IsActive:    in.IsActive,
	}
}

type CreateMerchInput struct {
	MerchInput
	Variant VariantInput `json:"variant" binding:"required"`
}

type MerchListQuery struct {
	Search   string `form:"search"`
	Category string `form:"category"`
	utils.Pagination
}

// ListMerch 周边列表
// @Summary 周边列表
// @Tags Shop
// @Param search query string false "名称"
// @Param category query string false "分类"
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} utils.PageResult
// @Router /shop/merch [get]
func (h *MerchHandler) ListMerch(c *gin.Context) {
	h.list(c, false)
}

func (h *MerchHandler) AdminListMerch(c *gin.Context) {
	h.list(c, true)
}

func (h *MerchHandler) list(c *gin.Context, includeInactive bool) {
	var q MerchListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err)
		return
	}

	items, total, err := h.service.ListMerch(c.Request.Context(), service.MerchQuery{
		Search:     q.Search,
		Category:   q.Category,
		Pagination: q.Pagination,
	}, includeInactive)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, utils.NewPageResult(items, total, q.Pagination))
}

// GetMerch 周边详情
// @Summary 周边详情
// @Tags Shop
// @Param slug path string true "周边 slug"
// @Success 200 {object} model.Merch
// @Router /shop/merch/{slug} [get]
func (h *MerchHandler) GetMerch(c *gin.Context) {
	m, err := h.service.GetMerch(c.Request.Context(), c.Param("slug"), false)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, m)
}

// CreateMerch 创建周边 (管理员)
// @Summary 创建周边
// @Tags Admin
// @Security Bearer
// @Param input body CreateMerchInput true "周边和首个规格"
// @Success 200 {object} model.Merch
// @Router /admin/merch [post]
func (h *MerchHandler) CreateMerch(c *gin.Context) {
	var input CreateMerchInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err)
		return
	}

	m, err := h.service.CreateMerch(c.Request.Context(), input.MerchInput.toService(), input.Variant.toService())
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, m)
}

func (h *MerchHandler) UpdateMerch(c *gin.Context) {
	var input MerchInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err)
		return
	}

	m, err := h.service.UpdateMerch(c.Request.Context(), c.Param("id"), input.toService())
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, m)
}

func (h *MerchHandler) DeleteMerch(c *gin.Context) {
	if err := h.service.DeleteMerch(c.Request.Context(), c.Param("id")); err != nil {
		response.HandleError(c, err)
		return
	}
	response.SuccessWithMessage(c, "merchandise deleted", nil)
}

func (h *MerchHandler) AddVariant(c *gin.Context) {
	var input VariantInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err)
		return
	}

	v, err := h.service.AddMerchVariant(c.Request.Context(), c.Param("id"), input.toService())
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, v)
}

func (h *MerchHandler) UpdateVariant(c *gin.Context) {
	var input VariantInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err)
		return
	}

	v, err := h.service.UpdateMerchVariant(c.Request.Context(), c.Param("id"), input.toService())
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, v)
}

func (h *MerchHandler) DeleteVariant(c *gin.Context) {
	if err := h.service.DeleteMerchVariant(c.Request.Context(), c.Param("id")); err != nil {
		response.HandleError(c, err)
		return
	}
	response.SuccessWithMessage(c, "variant deleted", nil)
}
