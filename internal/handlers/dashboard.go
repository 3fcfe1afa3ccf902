package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sydo/sydo-reviews/internal/middleware"
	"github.com/sydo/sydo-reviews/internal/services"
	"github.com/sydo/sydo-reviews/pkg/response"
	"gorm.io/gorm"
)

type DashboardHandler struct {
	dashboard *services.DashboardService
}

func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{dashboard: services.NewDashboardService(db)}
}

// Stats returns the caller's workspace numbers
// GET /api/dashboard/stats
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.dashboard.Stats(middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, stats)
}
