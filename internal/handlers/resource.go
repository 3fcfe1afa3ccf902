package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sydo/sydo-reviews/internal/middleware"
	"github.com/sydo/sydo-reviews/internal/services"
	"github.com/sydo/sydo-reviews/pkg/response"
	"gorm.io/gorm"
)

type ResourceHandler struct {
	resources *services.ResourceService
}

func NewResourceHandler(db *gorm.DB) *ResourceHandler {
	return &ResourceHandler{resources: services.NewResourceService(db)}
}

// ListByProject returns a project's resource links
// GET /api/projects/:id/resources
func (h *ResourceHandler) ListByProject(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	resources, err := h.resources.ListByProject(projectID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, resources)
}

// Create attaches a resource link to a project
// POST /api/resources
func (h *ResourceHandler) Create(c *gin.Context) {
	var req services.CreateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resource, err := h.resources.Create(&req, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, resource)
}

// Update edits a resource link
// PUT /api/resources/:id
func (h *ResourceHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resource, err := h.resources.Update(id, &req, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, resource)
}

// Delete removes a resource link
// DELETE /api/resources/:id
func (h *ResourceHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.resources.Delete(id, middleware.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "resource deleted"})
}
