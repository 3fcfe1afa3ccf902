package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sydo/sydo-reviews/internal/middleware"
	"github.com/sydo/sydo-reviews/internal/services"
	"github.com/sydo/sydo-reviews/internal/utils"
	"github.com/sydo/sydo-reviews/pkg/logger"
)

// EventsHandler streams live feedback and reminder events over SSE.
type EventsHandler struct {
	hub *services.EventHub
}

func NewEventsHandler(hub *services.EventHub) *EventsHandler {
	return &EventsHandler{hub: hub}
}

// Stream pushes events for one project's review pages. Open to guests: the
// stream carries nothing the project page does not already show. EventSource
// cannot set headers, so the access token may also come in as ?token=.
// GET /api/events?project_id=N&token=...
func (h *EventsHandler) Stream(c *gin.Context) {
	projectID, _ := strconv.ParseUint(c.Query("project_id"), 10, 32)
	userID := streamUserID(c)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	clientID := uuid.New().String()
	events := h.hub.Subscribe(clientID)
	defer h.hub.Unsubscribe(clientID)

	logger.Infof("SSE client connected: id=%s project=%d total=%d", clientID, projectID, h.hub.ClientCount())

	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-events:
			if !ok {
				return false
			}
			if !wants(event, uint(projectID), userID) {
				return true
			}
			data, err := json.Marshal(event)
			if err != nil {
				logger.Errorf("SSE marshal error: %v", err)
				return true
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
			c.Writer.Flush()
			return true
		case <-c.Request.Context().Done():
			logger.Infof("SSE client disconnected: id=%s", clientID)
			return false
		}
	})
}

// streamUserID resolves the caller's user id from the auth middleware or,
// failing that, from a ?token= query parameter. A bad token leaves the
// connection anonymous rather than rejecting it.
func streamUserID(c *gin.Context) uint {
	if userID := middleware.GetUserID(c); userID != 0 {
		return userID
	}
	if token := c.Query("token"); token != "" {
		if claims, err := utils.ParseToken(token); err == nil {
			return claims.UserID
		}
	}
	return 0
}

// wants filters the broadcast down to what this connection subscribed to:
// feedback events for its project, reminder events for its user.
func wants(event services.Event, projectID, userID uint) bool {
	switch event.Type {
	case services.EventTaskReminder:
		return userID != 0 && event.UserID == userID
	default:
		return projectID != 0 && event.ProjectID == projectID
	}
}
