package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/appsnxt/platform/internal/application/billing"
	"github.com/appsnxt/platform/internal/interfaces/http/middleware"
)

// DashboardHandler handles admin dashboard HTTP requests
type DashboardHandler struct {
	BaseHandler
	dashboardService *billing.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *billing.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// GetStats godoc
// @ID           getDashboardStats
// @Summary      Get platform-wide statistics
// @Description  Subscription counts by status and plan, product and user totals, and monthly recurring revenue
// @Tags         dashboard
// @Produce      json
// @Success      200 {object} APIResponse[billing.DashboardStatsResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /dashboard/stats [get]
func (h *DashboardHandler) GetStats(c *gin.Context) {
	stats, err := h.dashboardService.GetStats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, stats)
}

// RegisterRoutes registers all dashboard routes
func (h *DashboardHandler) RegisterRoutes(rg *gin.RouterGroup) {
	dashboard := rg.Group("/dashboard", middleware.RequireAdmin())
	{
		dashboard.GET("/stats", h.GetStats)
	}
}
