package handler

import (
	"thywilluche/internal/domain/community/service"
	"thywilluche/internal/pkg/middleware"
	"thywilluche/pkg/response"
	"thywilluche/pkg/utils"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	service service.ReportService
}

func NewReportHandler(s service.ReportService) *ReportHandler {
	return &ReportHandler{service: s}
}

type ReportInput struct {
	TargetType string `json:"targetType" binding:"required,oneof=post comment"`
	TargetID   string `json:"targetId" binding:"required,uuid"`
	Reason     string `json:"reason" binding:"required,oneof=spam harassment inappropriate misinformation other"`
	Details    string `json:"details" binding:"max=1000"`
}

type ResolveInput struct {
	Status string `json:"status" binding:"required,oneof=resolved dismissed"`
	Note   string `json:"note" binding:"max=1000"`
}

type ReportQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=pending resolved dismissed"`
	utils.Pagination
}

// ReportContent 举报帖子或评论
// @Summary 举报
// @Tags Community
// @Security Bearer
// @Accept json
// @Param input body ReportInput true "举报"
// @Success 200 {object} model.Report
// @Router /community/reports [post]
func (h *ReportHandler) ReportContent(c *gin.Context) {
	var input ReportInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err)
		return
	}

	report, err := h.service.ReportContent(c.Request.Context(), middleware.GetUserID(c), service.ReportInput{
		TargetType: input.TargetType,
		TargetID:   input.TargetID,
		Reason:     input.Reason,
		Details:    input.Details,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.SuccessWithMessage(c, "report submitted", report)
}

// ListReports 举报列表 (管理员)
func (h *ReportHandler) ListReports(c *gin.Context) {
	var q ReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err)
		return
	}

	reports, total, err := h.service.ListReports(c.Request.Context(), q.Status, q.Pagination)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, utils.NewPageResult(reports, total, q.Pagination))
}

// ResolveReport 处理举报 (管理员)
// @Summary 处理举报
// @Tags Admin
// @Security Bearer
// @Accept json
// @Param id path string true "举报ID"
// @Param input body ResolveInput true "处理结果"
// @Success 200 {object} model.Report
// @Router /admin/reports/{id} [patch]
func (h *ReportHandler) ResolveReport(c *gin.Context) {
	var input ResolveInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err)
		return
	}

	report, err := h.service.ResolveReport(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), input.Status, input.Note)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, report)
}
