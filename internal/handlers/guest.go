package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sydo/sydo-reviews/internal/middleware"
	"github.com/sydo/sydo-reviews/internal/services"
	"github.com/sydo/sydo-reviews/pkg/response"
	"gorm.io/gorm"
)

type GuestHandler struct {
	guests *services.GuestService
}

func NewGuestHandler(db *gorm.DB, guestExpireHour int) *GuestHandler {
	return &GuestHandler{guests: services.NewGuestService(db, guestExpireHour)}
}

// ListByProject returns a project's guest profiles for the identity picker
// GET /api/projects/:id/guests
func (h *GuestHandler) ListByProject(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	guests, err := h.guests.ListByProject(projectID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, guests)
}

// Create registers a guest profile and opens a session
// POST /api/guests
func (h *GuestHandler) Create(c *gin.Context) {
	var req services.CreateGuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	session, err := h.guests.Create(&req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

type selectGuestRequest struct {
	ProjectID uint `json:"project_id" binding:"required"`
}

// Select reopens a session for an existing guest profile
// POST /api/guests/:id/select
func (h *GuestHandler) Select(c *gin.Context) {
	guestID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req selectGuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	session, err := h.guests.Select(guestID, req.ProjectID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, session)
}

// Session validates the caller's guest token against the database. A stale
// token answers with guest=null so the client can clear it and show the
// picker again.
// GET /api/guests/session
func (h *GuestHandler) Session(c *gin.Context) {
	guestID := middleware.GetGuestID(c)
	if guestID == 0 {
		response.Success(c, gin.H{"guest": nil})
		return
	}

	guest, err := h.guests.Resolve(guestID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if guest == nil {
		response.Success(c, gin.H{"guest": nil})
		return
	}
	response.Success(c, gin.H{"guest": guest})
}

// Delete removes a guest profile (project owner only)
// DELETE /api/guests/:id
func (h *GuestHandler) Delete(c *gin.Context) {
	guestID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.guests.Delete(guestID, middleware.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "guest deleted"})
}
