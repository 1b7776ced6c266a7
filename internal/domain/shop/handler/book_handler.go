package handler

import (
	"thywilluche/internal/domain/shop/service"
	"thywilluche/pkg/response"
	"thywilluche/pkg/utils"

	"github.com/gin-gonic/gin"
)

type BookHandler struct {
	service service.BookService
}

func NewBookHandler(s service.BookService) *BookHandler {
	return &BookHandler{service: s}
}

// VariantInput 规格
type VariantInput struct {
	VariantType string  `json:"variantType" binding:"required,max=60"`
	Price       float64 `json:"price" binding:"gte=0"`
	Stock       int     `json:"stock" binding:"gte=0"`
	SKU         string  `json:"sku" binding:"max=64"`
	Status      string  `json:"status" binding:"omitempty,oneof=available out_of_stock preorder discontinued"`
}

func (in VariantInput) toService() service.VariantInput {
	return service.VariantInput{
		VariantType: in.VariantType,
		Price:       in.Price,
		Stock:       in.Stock,
		SKU:         in.SKU,
		Status:      in.Status,
	}
}

// BookInput 图书信息，更新时没传的可选字段保持不变
type BookInput struct {
	Title       string   `json:"title" binding:"required,max=200"`
	Slug        string   `json:"slug" binding:"max=220"`
	Author      *string  `json:"author" binding:"omitempty,max=120"`
	Description *string  `json:"description"`
	CoverImage  *string  `json:"coverImage" binding:"omitempty,url"`
	Category    *string  `json:"category" binding:"omitempty,max=60"`
	IsFeatured  *bool    `json:"isFeatured"`
	IsActive    *bool    `json:"isActive"`
	Tags        []string `json:"tags" binding:"omitempty,max=20,dive,max=60"`
}

func (in BookInput) toService() service.BookInput {
	return service.BookInput{
		Title:       in.Title,
		Slug:        in.Slug,
		Author:      in.Author,
		Description: in.Description,
		CoverImage:  in.CoverImage,
		Category:    in.Category,
		IsFeatured:  in.IsFeatured,
		IsActive:    in.IsActive,
		Tags:        in.Tags,
	}
}

// CreateBookInput 创建图书必须带首个规格
type CreateBookInput struct {
	BookInput
	Variant VariantInput `json:"variant" binding:"required"`
}

type BookListQuery struct {
	Search   string `form:"search"`
	Category string `form:"category"`
	Tag      string `form:"tag"`
	Featured *bool  `form:"featured"`
	utils.Pagination
}

func (q BookListQuery) toService() service.BookQuery {
	return service.BookQuery{
		Search:     q.Search,
		Category:   q.Category,
		Tag:        q.Tag,
		Featured:   q.Featured,
		Pagination: q.Pagination,
	}
}

// ListBooks 图书列表
// @Summary 图书列表
// @Tags Shop
// @Produce json
// @Param search query string false "标题/作者"
// @Param category query string false "分类"
// @Param tag query string false "标签 slug"
// @Param featured query bool false "推荐"
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} utils.PageResult
// @Router /shop/books [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	h.list(c, false)
}

// AdminListBooks 含下架图书
func (h *BookHandler) AdminListBooks(c *gin.Context) {
	h.list(c, true)
}

func (h *BookHandler) list(c *gin.Context, includeInactive bool) {
	var q BookListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err)
		return
	}

	books, total, err := h.service.ListBooks(c.Request.Context(), q.toService(), includeInactive)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, utils.NewPageResult(books, total, q.Pagination))
}

// GetBook 图书详情
// @Summary 图书详情
// @Tags Shop
// @Param slug path string true "图书 slug"
// @Success 200 {object} model.Book
// @Router /shop/books/{slug} [get]
func (h *BookHandler) GetBook(c *gin.Context) {
	book, err := h.service.GetBook(c.Request.Context(), c.Param("slug"), false)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, book)
}

// ListTags 标签列表
// @Summary 标签列表
// @Tags Shop
// @Success 200 {array} model.Tag
// @Router /shop/tags [get]
func (h *BookHandler) ListTags(c *gin.Context) {
	tags, err := h.service.ListTags(c.Request.Context())
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, tags)
}

// CreateBook 创建图书 (管理员)
// @Summary 创建图书
// @Tags Admin
// @Security Bearer
// @Accept json
// @Param input body CreateBookInput true "图书和首个规格"
// @Success 200 {object} model.Book
// @Router /admin/books [post]
func (h *BookHandler) CreateBook(c *gin.Context) {
	var input CreateBookInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err)
		return
	}

	book, err := h.service.CreateBook(c.Request.Context(), input.BookInput.toService(), input.Variant.toService())
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, book)
}

func (h *BookHandler) UpdateBook(c *gin.Context) {
	var input BookInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err)
		return
	}

	book, err := h.service.UpdateBook(c.Request.Context(), c.Param("id"), input.toService())
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, book)
}

func (h *BookHandler) DeleteBook(c *gin.Context) {
	if err := h.service.DeleteBook(c.Request.Context(), c.Param("id")); err != nil {
		response.HandleError(c, err)
		return
	}
	response.SuccessWithMessage(c, "book deleted", nil)
}

// AddVariant 新增规格，同一规格重复时返回 409
// @Summary 新增图书规格
// @Tags Admin
// @Security Bearer
// @Param id path string true "图书 ID"
// @Param input body VariantInput true "规格"
// @Success 200 {object} model.BookVariant
// @Failure 409 {object} response.Response "duplicate variant"
// @Router /admin/books/{id}/variants [post]
func (h *BookHandler) AddVariant(c *gin.Context) {
	var input VariantInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err)
		return
	}

	v, err := h.service.AddBookVariant(c.Request.Context(), c.Param("id"), input.toService())
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, v)
}

func (h *BookHandler) UpdateVariant(c *gin.Context) {
	var input VariantInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err)
		return
	}

	v, err := h.service.UpdateBookVariant(c.Request.Context(), c.Param("id"), input.toService())
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, v)
}

func (h *BookHandler) DeleteVariant(c *gin.Context) {
	if err := h.service.DeleteBookVariant(c.Request.Context(), c.Param("id")); err != nil {
		response.HandleError(c, err)
		return
	}
	response.SuccessWithMessage(c, "variant deleted", nil)
}
