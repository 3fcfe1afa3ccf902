package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sydo/sydo-reviews/internal/middleware"
	"github.com/sydo/sydo-reviews/internal/services"
	"github.com/sydo/sydo-reviews/pkg/response"
	"gorm.io/gorm"
)

type ClientHandler struct {
	clients *services.ClientService
}

func NewClientHandler(db *gorm.DB) *ClientHandler {
	return &ClientHandler{clients: services.NewClientService(db)}
}

// List returns the caller's clients
// GET /api/clients
func (h *ClientHandler) List(c *gin.Context) {
	clients, err := h.clients.List(middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, clients)
}

type createClientRequest struct {
	Nom string `json:"nom" binding:"required"`
}

// Create adds a client (or returns the existing one with that name)
// POST /api/clients
func (h *ClientHandler) Create(c *gin.Context) {
	var req createClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	client, err := h.clients.FindOrCreate(req.Nom, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, client)
}

// Delete removes a client, detaching its projects
// DELETE /api/clients/:id
func (h *ClientHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.clients.Delete(id, middleware.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "client deleted"})
}
