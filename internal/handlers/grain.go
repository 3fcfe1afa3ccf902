package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sydo/sydo-reviews/internal/middleware"
	"github.com/sydo/sydo-reviews/internal/services"
	"github.com/sydo/sydo-reviews/pkg/response"
	"gorm.io/gorm"
)

type GrainHandler struct {
	grains *services.GrainService
}

func NewGrainHandler(db *gorm.DB, storage *services.StorageService) *GrainHandler {
	return &GrainHandler{grains: services.NewGrainService(db, storage)}
}

// Get returns one grain. Public, the review page loads it by id.
// GET /api/grains/:id
func (h *GrainHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	grain, err := h.grains.Get(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, grain)
}

// Create adds a reviewable item to a project
// POST /api/grains
func (h *GrainHandler) Create(c *gin.Context) {
	var req services.CreateGrainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	grain, err := h.grains.Create(&req, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, grain)
}

// UploadPDF creates a pdf grain from a multipart upload
// POST /api/grains/pdf
func (h *GrainHandler) UploadPDF(c *gin.Context) {
	var req services.CreateGrainRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "pdf file is required")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	grain, err := h.grains.CreatePDF(&req, file, fileHeader.Size, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, grain)
}

// Update edits a grain, including the done and retour_on toggles
// PUT /api/grains/:id
func (h *GrainHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateGrainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	grain, err := h.grains.Update(id, &req, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, grain)
}

// Delete removes a grain and its feedbacks
// DELETE /api/grains/:id
func (h *GrainHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.grains.Delete(id, middleware.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "grain deleted"})
}
