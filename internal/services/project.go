package services

import (
	"errors"

	"github.com/sydo/sydo-reviews/internal/models"
	"github.com/sydo/sydo-reviews/pkg/response"
	"gorm.io/gorm"
)

type ProjectService struct {
	db      *gorm.DB
	clients *ClientService
	storage *StorageService
}

func NewProjectService(db *gorm.DB, clients *ClientService, storage *StorageService) *ProjectService {
	return &ProjectService{db: db, clients: clients, storage: storage}
}

type CreateProjectRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	ClientID    *uint  `json:"client_id"`
	ClientName  string `json:"client_name"`
}

type UpdateProjectRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	ClientID    *uint   `json:"client_id"`
	ClientName  string  `json:"client_name"`
	Active      *bool   `json:"active"`
}

type ListProjectsRequest struct {
	Title     string `form:"title"`
	Active    *bool  `form:"active"`
	ClientID  uint   `form:"client_id"`
	Favorites bool   `form:"favorites"`
}

// ProjectSummary is a project list entry with its grain counts computed
// from the grains table rather than denormalized counters.
type ProjectSummary struct {
	models.Project
	Sites           int64 `json:"sites"`
	Videos          int64 `json:"videos"`
	PendingFeedback int64 `json:"pending_feedback"`
	Favorite        bool  `json:"favorite"`
}

// List returns the caller's projects, newest first, with true per-project
// counts and the caller's favorite flag.
func (s *ProjectService) List(userID uint, req *ListProjectsRequest) ([]ProjectSummary, error) {
	query := s.db.Preload("Client").Where("user_id = ?", userID)
	if req.Title != "" {
		query = query.Where("title LIKE ?", "%"+req.Title+"%")
	}
	if req.Active != nil {
		query = query.Where("active = ?", *req.Active)
	}
	if req.ClientID > 0 {
		query = query.Where("client_id = ?", req.ClientID)
	}

	var projects []models.Project
	if err := query.Order("created_at DESC").Find(&projects).Error; err != nil {
		return nil, err
	}

	favorites := make(map[uint]bool)
	var favRows []models.UserFavorite
	if err := s.db.Where("user_id = ?", userID).Find(&favRows).Error; err != nil {
		return nil, err
	}
	for _, f := range favRows {
		favorites[f.ProjectID] = true
	}

	summaries := make([]ProjectSummary, 0, len(projects))
	for _, p := range projects {
		if req.Favorites && !favorites[p.ID] {
			continue
		}
		summary := ProjectSummary{Project: p, Favorite: favorites[p.ID]}
		s.db.Model(&models.Grain{}).Where("project_id = ? AND type = ?", p.ID, models.GrainTypeWeb).Count(&summary.Sites)
		s.db.Model(&models.Grain{}).Where("project_id = ? AND type = ?", p.ID, models.GrainTypeVideo).Count(&summary.Videos)
		s.db.Model(&models.Feedback{}).Where("project_id = ? AND done = ?", p.ID, false).Count(&summary.PendingFeedback)
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// Get returns a project by id. Public: the review page is reachable by
// anyone holding the project link.
func (s *ProjectService) Get(id uint) (*models.Project, error) {
	var project models.Project
	if err := s.db.Preload("Client").First(&project, id).Error; err != nil {
		return nil, response.NewNotFound("project not found")
	}
	return &project, nil
}

// GetOwned returns a project only if the caller owns it.
func (s *ProjectService) GetOwned(id, userID uint) (*models.Project, error) {
	project, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if project.UserID != userID {
		return nil, response.NewForbidden("not the project owner")
	}
	return project, nil
}

// Create opens a new active project. A client can be attached by id or by
// name; a name with no matching client creates one.
func (s *ProjectService) Create(req *CreateProjectRequest, userID uint, username string) (*models.Project, error) {
	project := models.Project{
		Title:       req.Title,
		Description: req.Description,
		Active:      true,
		UserID:      userID,
		CreatedBy:   username,
	}

	if req.ClientID != nil {
		var client models.Client
		if err := s.db.Where("id = ? AND user_id = ?", *req.ClientID, userID).First(&client).Error; err != nil {
			return nil, response.NewNotFound("client not found")
		}
		project.ClientID = req.ClientID
	} else if req.ClientName != "" {
		client, err := s.clients.FindOrCreate(req.ClientName, userID)
		if err != nil {
			return nil, err
		}
		project.ClientID = &client.ID
	}

	if err := s.db.Create(&project).Error; err != nil {
		return nil, err
	}
	s.db.Preload("Client").First(&project, project.ID)
	return &project, nil
}

// Update edits a project's fields. Setting active toggles archive state:
// archived projects keep all their data and can be reactivated.
func (s *ProjectService) Update(id uint, req *UpdateProjectRequest, userID uint) (*models.Project, error) {
	project, err := s.GetOwned(id, userID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}
	if req.ClientID != nil {
		var client models.Client
		if err := s.db.Where("id = ? AND user_id = ?", *req.ClientID, userID).First(&client).Error; err != nil {
			return nil, response.NewNotFound("client not found")
		}
		updates["client_id"] = *req.ClientID
	} else if req.ClientName != "" {
		client, err := s.clients.FindOrCreate(req.ClientName, userID)
		if err != nil {
			return nil, err
		}
		updates["client_id"] = client.ID
	}

	if len(updates) > 0 {
		if err := s.db.Model(project).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	s.db.Preload("Client").First(project, project.ID)
	return project, nil
}

// Archive deactivates a project without touching its content.
func (s *ProjectService) Archive(id, userID uint) (*models.Project, error) {
	active := false
	return s.Update(id, &UpdateProjectRequest{Active: &active}, userID)
}

// Reactivate reopens an archived project.
func (s *ProjectService) Reactivate(id, userID uint) (*models.Project, error) {
	active := true
	return s.Update(id, &UpdateProjectRequest{Active: &active}, userID)
}

// Delete removes a project and everything under it in one transaction.
// Grains go before the project so a failure mid-way never leaves a project
// row pointing at content that is already gone.
func (s *ProjectService) Delete(id, userID uint) error {
	project, err := s.GetOwned(id, userID)
	if err != nil {
		return err
	}

	var screenshots []string
	s.db.Model(&models.Feedback{}).
		Where("project_id = ? AND screenshot_url <> ''", project.ID).
		Pluck("screenshot_url", &screenshots)
	var pdfURLs []string
	s.db.Model(&models.Grain{}).
		Where("project_id = ? AND type = ? AND url <> ''", project.ID, models.GrainTypePDF).
		Pluck("url", &pdfURLs)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", project.ID).Delete(&models.Feedback{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", project.ID).Delete(&models.Grain{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", project.ID).Delete(&models.Guest{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", project.ID).Delete(&models.Resource{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", project.ID).Delete(&models.UserFavorite{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Task{}).Where("project_id = ?", project.ID).Update("project_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(project).Error
	})
	if err != nil {
		return err
	}

	// Blobs are cleaned up after the transaction commits; a leftover file
	// is harmless, a dangling row is not.
	for _, url := range screenshots {
		s.storage.Delete(url)
	}
	for _, url := range pdfURLs {
		s.storage.Delete(url)
	}
	return nil
}

// ToggleFavorite flips the caller's favorite mark on a project and returns
// the new state.
func (s *ProjectService) ToggleFavorite(projectID, userID uint) (bool, error) {
	if _, err := s.Get(projectID); err != nil {
		return false, err
	}

	var fav models.UserFavorite
	err := s.db.Where("user_id = ? AND project_id = ?", userID, projectID).First(&fav).Error
	if err == nil {
		if err := s.db.Delete(&fav).Error; err != nil {
			return false, err
		}
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	fav = models.UserFavorite{UserID: userID, ProjectID: projectID}
	if err := s.db.Create(&fav).Error; err != nil {
		return false, err
	}
	return true, nil
}
