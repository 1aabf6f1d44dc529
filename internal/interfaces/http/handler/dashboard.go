package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/opas/backend/internal/application/dashboard"
)

// DashboardHandler handles admin dashboard HTTP requests
type DashboardHandler struct {
	BaseHandler
	dashboardService *dashboard.Service
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *dashboard.Service) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// Stats godoc
// @Summary      Get dashboard statistics
// @Description  Get the aggregated marketplace statistics snapshot (cached)
// @Tags         dashboard
// @Produce      json
// @Success      200 {object} dto.Response{data=dashboard.StatsResult}
// @Security     BearerAuth
// @Router       /dashboard/stats [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	result, err := h.dashboardService.Stats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Health godoc
// @Summary      Get marketplace health
// @Description  Get the weighted marketplace health score and band (cached)
// @Tags         dashboard
// @Produce      json
// @Success      200 {object} dto.Response{data=dashboard.HealthResult}
// @Security     BearerAuth
// @Router       /dashboard/health [get]
func (h *DashboardHandler) Health(c *gin.Context) {
	result, err := h.dashboardService.Health(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Refresh godoc
// @Summary      Refresh dashboard caches
// @Description  Recompute the statistics and health snapshots, bypassing the cache
// @Tags         dashboard
// @Produce      json
// @Success      204 "No Content"
// @Security     BearerAuth
// @Router       /dashboard/refresh [post]
func (h *DashboardHandler) Refresh(c *gin.Context) {
	if err := h.dashboardService.Refresh(c.Request.Context()); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
