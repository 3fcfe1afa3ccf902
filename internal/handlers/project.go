package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sydo/sydo-reviews/internal/middleware"
	"github.com/sydo/sydo-reviews/internal/services"
	"github.com/sydo/sydo-reviews/pkg/response"
	"gorm.io/gorm"
)

type ProjectHandler struct {
	projects *services.ProjectService
	grains   *services.GrainService
}

func NewProjectHandler(db *gorm.DB, storage *services.StorageService) *ProjectHandler {
	clients := services.NewClientService(db)
	return &ProjectHandler{
		projects: services.NewProjectService(db, clients, storage),
		grains:   services.NewGrainService(db, storage),
	}
}

// List returns the caller's projects with counts
// GET /api/projects
func (h *ProjectHandler) List(c *gin.Context) {
	var req services.ListProjectsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	projects, err := h.projects.List(middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, projects)
}

// Get returns one project with its grains. Public: this is the page a
// reviewer lands on from the shared link.
// GET /api/projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	project, err := h.projects.Get(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	grains, err := h.grains.ListByProject(project.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{
		"project": project,
		"grains":  grains,
	})
}

// Create opens a new project
// POST /api/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req services.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	project, err := h.projects.Create(&req, middleware.GetUserID(c), middleware.GetUsername(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, project)
}

// Update edits a project
// PUT /api/projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	project, err := h.projects.Update(id, &req, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, project)
}

// Archive deactivates a project
// POST /api/projects/:id/archive
func (h *ProjectHandler) Archive(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	project, err := h.projects.Archive(id, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, project)
}

// Reactivate reopens an archived project
// POST /api/projects/:id/reactivate
func (h *ProjectHandler) Reactivate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	project, err := h.projects.Reactivate(id, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, project)
}

// Delete removes a project and everything under it
// DELETE /api/projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.projects.Delete(id, middleware.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "project deleted"})
}

// ToggleFavorite stars or unstars a project for the caller
// POST /api/projects/:id/favorite
func (h *ProjectHandler) ToggleFavorite(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	favorite, err := h.projects.ToggleFavorite(id, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"favorite": favorite})
}
