package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fares12358/erb-system-backend/internal/api/middleware"
	"github.com/fares12358/erb-system-backend/internal/services"
)

// DashboardHandler handles the reporting endpoints.
type DashboardHandler struct {
	dashboardService services.IDashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService services.IDashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Stats handles GET /api/dashboard/stats?dateFilter=...
func (h *DashboardHandler) Stats(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
		return
	}

	stats, err := h.dashboardService.Stats(c.Request.Context(), userID, c.Query("dateFilter"))
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to compute stats"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": stats})
}

// Charts handles GET /api/dashboard/charts?dateFilter=...
func (h *DashboardHandler) Charts(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
		return
	}

	charts, err := h.dashboardService.ChartData(c.Request.Context(), userID, c.Query("dateFilter"))
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to compute chart data"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": charts})
}

// Products handles GET /api/dashboard/products?dateFilter=...
func (h *DashboardHandler) Products(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
		return
	}

	products, err := h.dashboardService.ProductStats(c.Request.Context(), userID, c.Query("dateFilter"))
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to compute product stats"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": products})
}

// Overview handles GET /api/dashboard?range=...
func (h *DashboardHandler) Overview(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
		return
	}

	overview, err := h.dashboardService.Overview(c.Request.Context(), userID, c.Query("range"))
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to compute dashboard overview"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": overview})
}
