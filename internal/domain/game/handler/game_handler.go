package handler

import (
	"thywilluche/internal/domain/game/model"
	"thywilluche/internal/domain/game/service"
	"thywilluche/internal/pkg/middleware"
	"thywilluche/pkg/response"
	"thywilluche/pkg/utils"
	"time"

	"github.com/gin-gonic/gin"
)

type GameHandler struct {
	service service.GameService
}

func NewGameHandler(s service.GameService) *GameHandler {
	return &GameHandler{service: s}
}

// QuestionInput 选择题
type QuestionInput struct {
	Text    string   `json:"text" binding:"required,max=1000"`
	Options []string `json:"options" binding:"required,min=2,max=8,dive,required,max=500"`
	Answer  *int     `json:"answer" binding:"required,min=0"`
}

// GameInput 创建/修改游戏
type GameInput struct {
	Title        string          `json:"title" binding:"required,max=200"`
	Type         string          `json:"type" binding:"required,oneof=quiz writing puzzle"`
	Description  string          `json:"description"`
	Prompt       string          `json:"prompt"`
	Questions    []QuestionInput `json:"questions" binding:"omitempty,max=50,dive"`
	PuzzleAnswer string          `json:"puzzleAnswer" binding:"max=500"`
	BadgeID      string          `json:"badgeId" binding:"omitempty,uuid"`
	IsActive     bool            `json:"isActive"`
	StartsAt     *time.Time      `json:"startsAt"`
	EndsAt       *time.Time      `json:"endsAt"`
}

// BadgeInput 徽章
type BadgeInput struct {
	Name        string `json:"name" binding:"required,max=120"`
	Type        string `json:"type" binding:"required,oneof=participation winner special"`
	IconURL     string `json:"iconUrl" binding:"omitempty,url"`
	Description string `json:"description" binding:"max=1000"`
}

// SubmitInput 选择题填 answers，其它填 content
type SubmitInput struct {
	Answers []int  `json:"answers"`
	Content string `json:"content"`
}

type ScoreInput struct {
	Score *int `json:"score" binding:"required,min=0,max=100"`
}

type WinnersInput struct {
	SubmissionIDs []string `json:"submissionIds" binding:"required,min=1,max=100,dive,uuid"`
}

type GameListQuery struct {
	Type string `form:"type" binding:"omitempty,oneof=quiz writing puzzle"`
	utils.Pagination
}

func (in GameInput) toService() service.GameInput {
	qs := make([]model.Question, len(in.Questions))
	for i, q := range in.Questions {
		qs[i] = model.Question{Text: q.Text, Options: q.Options, Answer: q.Answer}
	}
	return service.GameInput{
		Title:        in.Title,
		Type:         in.Type,
		Description:  in.Description,
		Prompt:       in.Prompt,
		Questions:    qs,
		PuzzleAnswer: in.PuzzleAnswer,
		BadgeID:      in.BadgeID,
		IsActive:     in.IsActive,
		StartsAt:     in.StartsAt,
		EndsAt:       in.EndsAt,
	}
}

func (h *GameHandler) list(c *gin.Context, isAdmin bool) {
	var q GameListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err)
		return
	}

	games, total, err := h.service.ListGames(c.Request.Context(), service.GameQuery{Type: q.Type, Pagination: q.Pagination}, isAdmin)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, utils.NewPageResult(games, total, q.Pagination))
}

// ListGames 已上线游戏
// @Summary 游戏列表
// @Tags Game
// @Param type query string false "quiz | writing | puzzle"
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {object} utils.PageResult
// @Router /games [get]
func (h *GameHandler) ListGames(c *gin.Context) {
	h.list(c, false)
}

func (h *GameHandler) AdminListGames(c *gin.Context) {
	h.list(c, true)
}

// GetGame 游戏详情，管理员可见答案
// @Summary 游戏详情
// @Tags Game
// @Param slug path string true "Slug"
// @Success 200 {object} model.Game
// @Router /games/{slug} [get]
func (h *GameHandler) GetGame(c *gin.Context) {
	g, err := h.service.GetGame(c.Request.Context(), c.Param("slug"), middleware.IsAdmin(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, g)
}

func (h *GameHandler) ListBadges(c *gin.Context) {
	badges, err := h.service.ListBadges(c.Request.Context())
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, badges)
}

// CreateGame 创建游戏 (管理员)
// @Summary 创建游戏
// @Tags Admin
// @Security Bearer
// @Accept json
// @Param input body GameInput true "游戏"
// @Success 200 {object} model.Game
// @Router /admin/games [post]
func (h *GameHandler) CreateGame(c *gin.Context) {
	var input GameInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err)
		return
	}

	g, err := h.service.CreateGame(c.Request.Context(), input.toService())
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.SuccessWithMessage(c, "game created", g)
}

func (h *GameHandler) UpdateGame(c *gin.Context) {
	var input GameInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err)
		return
	}

	g, err := h.service.UpdateGame(c.Request.Context(), c.Param("id"), input.toService())
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.SuccessWithMessage(c, "game updated", g)
}

func (h *GameHandler) CreateBadge(c *gin.Context) {
	var input BadgeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err)
		return
	}

	badge, err := h.service.CreateBadge(c.Request.Context(), service.BadgeInput{
		Name:        input.Name,
		Type:        input.Type,
		IconURL:     input.IconURL,
		Description: input.Description,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.SuccessWithMessage(c, "badge created", badge)
}

// Submit 提交作品，每个游戏一次
// @Summary 提交游戏作品
// @Tags Game
// @Security Bearer
// @Accept json
// @Param id path string true "游戏ID"
// @Param input body SubmitInput true "答案或内容"
// @Success 200 {object} model.Submission
// @Router /games/{id}/submissions [post]
func (h *GameHandler) Submit(c *gin.Context) {
	var input SubmitInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err)
		return
	}

	sub, err := h.service.Submit(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), service.SubmitInput{
		Answers: input.Answers,
		Content: input.Content,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.SuccessWithMessage(c, "submission received", sub)
}

func (h *GameHandler) ListSubmissions(c *gin.Context) {
	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.BadRequest(c, err)
		return
	}

	list, total, err := h.service.ListSubmissions(c.Request.Context(), c.Param("id"), p)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, utils.NewPageResult(list, total, p))
}

// ScoreSubmission 写作打分 (管理员)
func (h *GameHandler) ScoreSubmission(c *gin.Context) {
	var input ScoreInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err)
		return
	}

	sub, err := h.service.ScoreSubmission(c.Request.Context(), c.Param("id"), *input.Score)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.SuccessWithMessage(c, "submission scored", sub)
}

// SelectWinners 选出获奖作品并发放徽章 (管理员)
// @Summary 选出获奖作品
// @Tags Admin
// @Security Bearer
// @Accept json
// @Param id path string true "游戏ID"
// @Param input body WinnersInput true "作品ID"
// @Success 200 {array} string
// @Router /admin/games/{id}/winners [post]
func (h *GameHandler) SelectWinners(c *gin.Context) {
	var input WinnersInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err)
		return
	}

	winners, err := h.service.SelectWinners(c.Request.Context(), c.Param("id"), input.SubmissionIDs)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.SuccessWithMessage(c, "winners selected", gin.H{"userIds": winners})
}

// ListMyBadges 当前用户的徽章
// @Summary 我的徽章
// @Tags User
// @Security Bearer
// @Success 200 {array} model.UserBadge
// @Router /users/me/badges [get]
func (h *GameHandler) ListMyBadges(c *gin.Context) {
	badges, err := h.service.ListUserBadges(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, badges)
}
