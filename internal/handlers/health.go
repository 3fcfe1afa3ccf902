package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sydo/sydo-reviews/internal/models"
	"github.com/sydo/sydo-reviews/internal/services"
)

// HealthHandler provides the health check endpoint.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// CheckHealth returns the health status of all subsystems.
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	overall := "healthy"

	// Database check
	dbStatus := "ok"
	sqlDB, err := models.GetDB().DB()
	if err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	} else if err := sqlDB.Ping(); err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	}

	// Queue mode
	taskQueue := services.GetTaskQueue()
	queueMode := "sync"
	if taskQueue != nil && taskQueue.IsAsync() {
		queueMode = "async (Redis)"
	}

	// Connected review pages
	sseClients := services.GetEventHub().ClientCount()

	// Unresolved feedback across all projects
	var pendingFeedback int64
	models.GetDB().Model(&models.Feedback{}).
		Where("done = ?", false).
		Count(&pendingFeedback)

	c.JSON(200, gin.H{
		"status":  overall,
		"service": "sydo-reviews",
		"components": gin.H{
			"database":         dbStatus,
			"queue_mode":       queueMode,
			"sse_clients":      sseClients,
			"pending_feedback": pendingFeedback,
		},
	})
}
