package handler

import (
	"thywilluche/internal/domain/championship/service"
	"thywilluche/internal/pkg/middleware"
	"thywilluche/pkg/response"
	"thywilluche/pkg/utils"
	"time"

	"github.com/gin-gonic/gin"
)

type ChampionshipHandler struct {
	service service.ChampionshipService
}

func NewChampionshipHandler(s service.ChampionshipService) *ChampionshipHandler {
	return &ChampionshipHandler{service: s}
}

// ChampionshipInput 创建/修改锦标赛
type ChampionshipInput struct {
	Name             string     `json:"name" binding:"required,max=200"`
	Description      string     `json:"description"`
	Year             int        `json:"year" binding:"required,min=2000,max=2100"`
	RegistrationFee  float64    `json:"registrationFee" binding:"min=0"`
	RegistrationOpen bool       `json:"registrationOpen"`
	StartsAt         *time.Time `json:"startsAt"`
}

// RegistrationInput 报名表单，凭证先通过 /upload 上传
type RegistrationInput struct {
	FullName    string `json:"fullName" binding:"required,max=200"`
	Email       string `json:"email" binding:"required,email"`
	Phone       string `json:"phone" binding:"max=40"`
	Institution string `json:"institution" binding:"max=200"`
	Category    string `json:"category" binding:"required,oneof=junior senior open"`
	Country     string `json:"country" binding:"max=100"`
	State       string `json:"state" binding:"max=100"`
	City        string `json:"city" binding:"max=100"`
	ReceiptURL  string `json:"receiptUrl" binding:"required,url"`
}

// ReviewInput 书评
type ReviewInput struct {
	BookTitle   string `json:"bookTitle" binding:"required,max=255"`
	Author      string `json:"author" binding:"max=200"`
	ReviewText  string `json:"reviewText"`
	DocumentURL string `json:"documentUrl" binding:"omitempty,url"`
}

// DecisionInput 审核
type DecisionInput struct {
	Decision string `json:"decision" binding:"required,oneof=approved rejected"`
	Note     string `json:"note" binding:"max=1000"`
}

// EntryQuery 管理员列表
type EntryQuery struct {
	ChampionshipID string `form:"championshipId" binding:"omitempty,uuid"`
	Status         string `form:"status" binding:"omitempty,oneof=pending approved rejected"`
	utils.Pagination
}

func (in ChampionshipInput) toService() service.ChampionshipInput {
	return service.ChampionshipInput{
		Name:             in.Name,
		Description:      in.Description,
		Year:             in.Year,
		RegistrationFee:  in.RegistrationFee,
		RegistrationOpen: in.RegistrationOpen,
		StartsAt:         in.StartsAt,
	}
}

// ListChampionships 锦标赛列表
// @Summary 锦标赛列表
// @Tags Championship
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {object} utils.PageResult
// @Router /championships [get]
func (h *ChampionshipHandler) ListChampionships(c *gin.Context) {
	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.BadRequest(c, err)
		return
	}

	list, total, err := h.service.ListChampionships(c.Request.Context(), p)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, utils.NewPageResult(list, total, p))
}

// GetChampionship 锦标赛详情
// @Summary 锦标赛详情
// @Tags Championship
// @Param slug path string true "Slug"
// @Success 200 {object} model.Championship
// @Router /championships/{slug} [get]
func (h *ChampionshipHandler) GetChampionship(c *gin.Context) {
	ch, err := h.service.GetChampionship(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, ch)
}

// CreateChampionship 创建锦标赛 (管理员)
// @Summary 创建锦标赛
// @Tags Admin
// @Security Bearer
// @Accept json
// @Param input body ChampionshipInput true "锦标赛"
// @Success 200 {object} model.Championship
// @Router /admin/championships [post]
func (h *ChampionshipHandler) CreateChampionship(c *gin.Context) {
	var input ChampionshipInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err)
		return
	}

	ch, err := h.service.CreateChampionship(c.Request.Context(), input.toService())
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.SuccessWithMessage(c, "championship created", ch)
}

func (h *ChampionshipHandler) UpdateChampionship(c *gin.Context) {
	var input ChampionshipInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err)
		return
	}

	ch, err := h.service.UpdateChampionship(c.Request.Context(), c.Param("id"), input.toService())
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.SuccessWithMessage(c, "championship updated", ch)
}

// Register 报名
// @Summary 锦标赛报名
// @Tags Championship
// @Security Bearer
// @Accept json
// @Param id path string true "锦标赛ID"
// @Param input body RegistrationInput true "报名表"
// @Success 200 {object} model.Registration
// @Router /championships/{id}/registrations [post]
func (h *ChampionshipHandler) Register(c *gin.Context) {
	var input RegistrationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err)
		return
	}

	reg, err := h.service.Register(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), service.RegistrationInput{
		FullName:    input.FullName,
		Email:       input.Email,
		Phone:       input.Phone,
		Institution: input.Institution,
		Category:    input.Category,
		Country:     input.Country,
		State:       input.State,
		City:        input.City,
		ReceiptURL:  input.ReceiptURL,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.SuccessWithMessage(c, "registration submitted for review", reg)
}

// SubmitReview 提交书评
// @Summary 提交书评
// @Tags Championship
// @Security Bearer
// @Accept json
// @Param id path string true "锦标赛ID"
// @Param input body ReviewInput true "书评"
// @Success 200 {object} model.ReviewSubmission
// @Router /championships/{id}/reviews [post]
func (h *ChampionshipHandler) SubmitReview(c *gin.Context) {
	var input ReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err)
		return
	}

	review, err := h.service.SubmitReview(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), service.ReviewInput{
		BookTitle:   input.BookTitle,
		Author:      input.Author,
		ReviewText:  input.ReviewText,
		DocumentURL: input.DocumentURL,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.SuccessWithMessage(c, "review submitted for review", review)
}

func (h *ChampionshipHandler) ListMyRegistrations(c *gin.Context) {
	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.BadRequest(c, err)
		return
	}

	list, total, err := h.service.ListMyRegistrations(c.Request.Context(), middleware.GetUserID(c), p)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, utils.NewPageResult(list, total, p))
}

func (h *ChampionshipHandler) ListMyReviews(c *gin.Context) {
	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.BadRequest(c, err)
		return
	}

	list, total, err := h.service.ListMyReviews(c.Request.Context(), middleware.GetUserID(c), p)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, utils.NewPageResult(list, total, p))
}

func (q EntryQuery) toService() service.EntryQuery {
	return service.EntryQuery{ChampionshipID: q.ChampionshipID, Status: q.Status, Pagination: q.Pagination}
}

// ListRegistrations 报名列表 (管理员)
func (h *ChampionshipHandler) ListRegistrations(c *gin.Context) {
	var q EntryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err)
		return
	}

	list, total, err := h.service.ListRegistrations(c.Request.Context(), q.toService())
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, utils.NewPageResult(list, total, q.Pagination))
}

// ReviewRegistration 审核报名 (管理员)
// @Summary 审核报名
// @Tags Admin
// @Security Bearer
// @Accept json
// @Param id path string true "报名ID"
// @Param input body DecisionInput true "审核结果"
// @Success 200 {object} model.Registration
// @Router /admin/championship-registrations/{id} [patch]
func (h *ChampionshipHandler) ReviewRegistration(c *gin.Context) {
	var input DecisionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err)
		return
	}

	reg, err := h.service.ReviewRegistration(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), input.Decision, input.Note)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.SuccessWithMessage(c, "registration "+reg.Status, reg)
}

func (h *ChampionshipHandler) ListReviews(c *gin.Context) {
	var q EntryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err)
		return
	}

	list, total, err := h.service.ListReviews(c.Request.Context(), q.toService())
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, utils.NewPageResult(list, total, q.Pagination))
}

func (h *ChampionshipHandler) ReviewSubmission(c *gin.Context) {
	var input DecisionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err)
		return
	}

	review, err := h.service.ReviewSubmission(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), input.Decision, input.Note)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.SuccessWithMessage(c, "review "+review.Status, review)
}
