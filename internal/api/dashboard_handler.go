package api

import (
	"alcyxob/gym-app/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type DashboardHandler struct {
	dashboardService service.DashboardService
	log              logrus.FieldLogger
}

func NewDashboardHandler(dashboardService service.DashboardService, log logrus.FieldLogger) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService, log: log}
}

// Overview godoc
// @Summary Owner dashboard
// @Description Members, active registrations, today's check-ins, this month's revenue and sessions by status.
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} envelope
// @Router /thong-ke/tong-quan [get]
func (h *DashboardHandler) Overview(c *gin.Context) {
	summary, err := h.dashboardService.Summary(c.Request.Context())
	if err != nil {
		abortWithServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Lấy thống kê tổng quan thành công", summary)
}
