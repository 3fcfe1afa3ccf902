package services

import (
	"github.com/sydo/sydo-reviews/internal/models"
	"github.com/sydo/sydo-reviews/pkg/response"
	"gorm.io/gorm"
)

type ResourceService struct {
	db *gorm.DB
}

func NewResourceService(db *gorm.DB) *ResourceService {
	return &ResourceService{db: db}
}

type CreateResourceRequest struct {
	Title     string `json:"title" binding:"required"`
	Type      string `json:"type" binding:"required"`
	URL       string `json:"url" binding:"required"`
	ProjectID uint   `json:"project_id" binding:"required"`
}

type UpdateResourceRequest struct {
	Title string `json:"title"`
	Type  string `json:"type"`
	URL   string `json:"url"`
}

// ListByProject returns a project's resource links, oldest first.
func (s *ResourceService) ListByProject(projectID uint) ([]models.Resource, error) {
	var resources []models.Resource
	err := s.db.Where("project_id = ?", projectID).Order("created_at ASC").Find(&resources).Error
	return resources, err
}

// Create attaches a typed external link to a project.
func (s *ResourceService) Create(req *CreateResourceRequest, userID uint) (*models.Resource, error) {
	if !models.ValidResourceType(req.Type) {
		return nil, response.NewBadRequest("unknown resource type: " + req.Type)
	}
	if err := s.requireOwner(req.ProjectID, userID); err != nil {
		return nil, err
	}

	resource := models.Resource{
		Title:     req.Title,
		Type:      req.Type,
		URL:       req.URL,
		ProjectID: req.ProjectID,
	}
	if err := s.db.Create(&resource).Error; err != nil {
		return nil, err
	}
	return &resource, nil
}

// Update edits a resource link.
func (s *ResourceService) Update(id uint, req *UpdateResourceRequest, userID uint) (*models.Resource, error) {
	resource, err := s.owned(id, userID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Type != "" {
		if !models.ValidResourceType(req.Type) {
			return nil, response.NewBadRequest("unknown resource type: " + req.Type)
		}
		updates["type"] = req.Type
	}
	if req.URL != "" {
		updates["url"] = req.URL
	}
	if len(updates) > 0 {
		if err := s.db.Model(resource).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return resource, nil
}

// Delete removes a resource link.
func (s *ResourceService) Delete(id, userID uint) error {
	resource, err := s.owned(id, userID)
	if err != nil {
		return err
	}
	return s.db.Delete(resource).Error
}

func (s *ResourceService) owned(id, userID uint) (*models.Resource, error) {
	var resource models.Resource
	if err := s.db.First(&resource, id).Error; err != nil {
		return nil, response.NewNotFound("resource not found")
	}
	if err := s.requireOwner(resource.ProjectID, userID); err != nil {
		return nil, err
	}
	return &resource, nil
}

func (s *ResourceService) requireOwner(projectID, userID uint) error {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		return response.NewNotFound("project not found")
	}
	if project.UserID != userID {
		return response.NewForbidden("not the project owner")
	}
	return nil
}
