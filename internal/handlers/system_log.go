package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sydo/sydo-reviews/internal/services"
	"github.com/sydo/sydo-reviews/pkg/response"
	"gorm.io/gorm"
)

type SystemLogHandler struct {
	logs *services.SystemLogService
}

func NewSystemLogHandler(db *gorm.DB) *SystemLogHandler {
	return &SystemLogHandler{logs: services.NewSystemLogService(db)}
}

// List returns operation logs with paging and filters
// GET /api/admin/system-logs
func (h *SystemLogHandler) List(c *gin.Context) {
	var req services.SystemLogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.logs.List(&req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetModules returns the distinct module names seen in the log
// GET /api/admin/system-logs/modules
func (h *SystemLogHandler) GetModules(c *gin.Context) {
	modules, err := h.logs.GetModules()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, modules)
}

// Cleanup deletes logs older than the retention window
// POST /api/admin/system-logs/cleanup
func (h *SystemLogHandler) Cleanup(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "0"))
	deleted, err := h.logs.CleanupOldLogs(days)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": deleted})
}
