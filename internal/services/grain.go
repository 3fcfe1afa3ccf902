package services

import (
	"io"

	"github.com/sydo/sydo-reviews/internal/models"
	"github.com/sydo/sydo-reviews/pkg/response"
	"gorm.io/gorm"
)

type GrainService struct {
	db      *gorm.DB
	storage *StorageService
}

func NewGrainService(db *gorm.DB, storage *StorageService) *GrainService {
	return &GrainService{db: db, storage: storage}
}

type CreateGrainRequest struct {
	Title     string `json:"title" form:"title" binding:"required"`
	Type      string `json:"type" form:"type" binding:"required"`
	URL       string `json:"url" form:"url"`
	ProjectID uint   `json:"project_id" form:"project_id" binding:"required"`
}

type UpdateGrainRequest struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Done     *bool  `json:"done"`
	RetourOn *bool  `json:"retour_on"`
}

// ListByProject returns a project's grains, oldest first so the review
// page keeps a stable ordering.
func (s *GrainService) ListByProject(projectID uint) ([]models.Grain, error) {
	var grains []models.Grain
	err := s.db.Where("project_id = ?", projectID).Order("created_at ASC").Find(&grains).Error
	return grains, err
}

// Get returns a grain by id. Public, same as the project view.
func (s *GrainService) Get(id uint) (*models.Grain, error) {
	var grain models.Grain
	if err := s.db.First(&grain, id).Error; err != nil {
		return nil, response.NewNotFound("grain not found")
	}
	return &grain, nil
}

// Create adds a reviewable item to a project. URL is required for every
// type except PDF, where the document is uploaded through CreatePDF.
func (s *GrainService) Create(req *CreateGrainRequest, userID uint) (*models.Grain, error) {
	if !models.ValidGrainType(req.Type) {
		return nil, response.NewBadRequest("unknown grain type: " + req.Type)
	}
	if req.URL == "" && req.Type != models.GrainTypePDF {
		return nil, response.NewBadRequest("url is required for this grain type")
	}

	if err := s.requireOwner(req.ProjectID, userID); err != nil {
		return nil, err
	}

	grain := models.Grain{
		Title:     req.Title,
		Type:      req.Type,
		URL:       req.URL,
		ProjectID: req.ProjectID,
		RetourOn:  true,
	}
	if err := s.db.Create(&grain).Error; err != nil {
		return nil, err
	}
	return &grain, nil
}

// CreatePDF stores an uploaded PDF document and creates the grain pointing
// at the served file.
func (s *GrainService) CreatePDF(req *CreateGrainRequest, file io.Reader, size int64, userID uint) (*models.Grain, error) {
	req.Type = models.GrainTypePDF

	if err := s.requireOwner(req.ProjectID, userID); err != nil {
		return nil, err
	}

	url, err := s.storage.SavePDF(file, size)
	if err != nil {
		if err == ErrFileTooLarge {
			return nil, response.NewBadRequest("pdf exceeds the upload limit")
		}
		return nil, err
	}
	req.URL = url

	grain, err := s.Create(req, userID)
	if err != nil {
		s.storage.Delete(url)
		return nil, err
	}
	return grain, nil
}

// Update edits a grain's fields, including the done and retour_on toggles.
func (s *GrainService) Update(id uint, req *UpdateGrainRequest, userID uint) (*models.Grain, error) {
	grain, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwner(grain.ProjectID, userID); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.URL != "" {
		updates["url"] = req.URL
	}
	if req.Done != nil {
		updates["done"] = *req.Done
	}
	if req.RetourOn != nil {
		updates["retour_on"] = *req.RetourOn
	}
	if len(updates) > 0 {
		if err := s.db.Model(grain).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return grain, nil
}

// Delete removes a grain with its feedbacks and any stored blobs.
func (s *GrainService) Delete(id, userID uint) error {
	grain, err := s.Get(id)
	if err != nil {
		return err
	}
	if err := s.requireOwner(grain.ProjectID, userID); err != nil {
		return err
	}

	var screenshots []string
	s.db.Model(&models.Feedback{}).
		Where("grain_id = ? AND screenshot_url <> ''", grain.ID).
		Pluck("screenshot_url", &screenshots)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("grain_id = ?", grain.ID).Delete(&models.Feedback{}).Error; err != nil {
			return err
		}
		return tx.Delete(grain).Error
	})
	if err != nil {
		return err
	}

	for _, url := range screenshots {
		s.storage.Delete(url)
	}
	if grain.Type == models.GrainTypePDF {
		s.storage.Delete(grain.URL)
	}
	return nil
}

func (s *GrainService) requireOwner(projectID, userID uint) error {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		return response.NewNotFound("project not found")
	}
	if project.UserID != userID {
		return response.NewForbidden("not the project owner")
	}
	return nil
}
