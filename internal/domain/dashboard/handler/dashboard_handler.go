package handler

import (
	"thywilluche/internal/domain/dashboard/service"
	"thywilluche/pkg/response"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	service service.DashboardService
}

func NewDashboardHandler(s service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: s}
}

// Overview 后台概览 (管理员)
// @Summary 后台概览
// @Tags Admin
// @Security Bearer
// @Success 200 {object} service.Overview
// @Router /admin/dashboard [get]
func (h *DashboardHandler) Overview(c *gin.Context) {
	o, err := h.service.Overview(c.Request.Context())
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, o)
}
