package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sydo/sydo-reviews/internal/middleware"
	"github.com/sydo/sydo-reviews/internal/services"
	"github.com/sydo/sydo-reviews/internal/utils"
)

func streamContext(t *testing.T, target string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", target, nil)
	return c
}

func TestStreamUserID_FromQueryToken(t *testing.T) {
	utils.SetJWTSecret("test-secret")

	token, err := utils.GenerateToken(7, "marie", "user", 1)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	// EventSource cannot set an Authorization header, only query params
	c := streamContext(t, "/api/events?project_id=1&token="+token)
	if got := streamUserID(c); got != 7 {
		t.Errorf("streamUserID = %d, expected 7 from query token", got)
	}
}

func TestStreamUserID_MiddlewareWins(t *testing.T) {
	utils.SetJWTSecret("test-secret")

	token, err := utils.GenerateToken(7, "marie", "user", 1)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	c := streamContext(t, "/api/events?token="+token)
	c.Set(middleware.ContextUserID, uint(3))
	if got := streamUserID(c); got != 3 {
		t.Errorf("streamUserID = %d, expected 3 from auth middleware", got)
	}
}

func TestStreamUserID_BadTokenIsAnonymous(t *testing.T) {
	utils.SetJWTSecret("test-secret")

	c := streamContext(t, "/api/events?project_id=1&token=not-a-jwt")
	if got := streamUserID(c); got != 0 {
		t.Errorf("streamUserID = %d, expected 0 for an invalid token", got)
	}
}

func TestWants_ReminderNeedsUser(t *testing.T) {
	reminder := services.Event{Type: services.EventTaskReminder, UserID: 7}
	feedback := services.Event{Type: services.EventFeedbackCreated, ProjectID: 4}

	if wants(reminder, 4, 0) {
		t.Error("anonymous connections must not receive reminder events")
	}
	if !wants(reminder, 0, 7) {
		t.Error("reminder events reach the addressed user")
	}
	if wants(reminder, 0, 8) {
		t.Error("reminder events stay private to their user")
	}
	if !wants(feedback, 4, 0) {
		t.Error("feedback events reach the project's connections")
	}
	if wants(feedback, 5, 0) {
		t.Error("feedback events stay within their project")
	}
}
