package services

import (
	"errors"

	"github.com/sydo/sydo-reviews/internal/models"
	"github.com/sydo/sydo-reviews/internal/utils"
	"github.com/sydo/sydo-reviews/pkg/response"
	"gorm.io/gorm"
)

type GuestService struct {
	db         *gorm.DB
	expireHour int
}

func NewGuestService(db *gorm.DB, expireHour int) *GuestService {
	return &GuestService{db: db, expireHour: expireHour}
}

type CreateGuestRequest struct {
	Prenom     string `json:"prenom" binding:"required"`
	Nom        string `json:"nom" binding:"required"`
	Poste      string `json:"poste"`
	Device     string `json:"device"`
	Navigateur string `json:"navigateur"`
	ProjectID  uint   `json:"project_id" binding:"required"`
}

// GuestSession pairs a guest profile with the signed token the client
// stores to restore the identity on later visits. The database stays the
// source of truth; the token only names a row.
type GuestSession struct {
	Guest models.Guest `json:"guest"`
	Token string       `json:"token"`
}

// ListByProject returns a project's guest profiles for the identity picker.
func (s *GuestService) ListByProject(projectID uint) ([]models.Guest, error) {
	var guests []models.Guest
	err := s.db.Where("project_id = ?", projectID).Order("created_at ASC").Find(&guests).Error
	return guests, err
}

// Create registers a guest profile on a project and opens a session for it.
func (s *GuestService) Create(req *CreateGuestRequest) (*GuestSession, error) {
	var project models.Project
	if err := s.db.First(&project, req.ProjectID).Error; err != nil {
		return nil, response.NewNotFound("project not found")
	}

	if req.Device == "" {
		req.Device = models.DeviceOrdinateur
	}
	if req.Navigateur == "" {
		req.Navigateur = models.BrowserAutre
	}
	if !models.ValidDevice(req.Device) {
		return nil, response.NewBadRequest("unknown device: " + req.Device)
	}
	if !models.ValidBrowser(req.Navigateur) {
		return nil, response.NewBadRequest("unknown browser: " + req.Navigateur)
	}

	guest := models.Guest{
		Prenom:     req.Prenom,
		Nom:        req.Nom,
		Poste:      req.Poste,
		Device:     req.Device,
		Navigateur: req.Navigateur,
		ProjectID:  req.ProjectID,
	}
	if err := s.db.Create(&guest).Error; err != nil {
		return nil, err
	}
	return s.session(&guest)
}

// Select reopens a session for an existing guest profile chosen from the
// picker. The profile must belong to the project it is selected on.
func (s *GuestService) Select(guestID, projectID uint) (*GuestSession, error) {
	var guest models.Guest
	if err := s.db.First(&guest, guestID).Error; err != nil {
		return nil, response.NewNotFound("guest not found")
	}
	if guest.ProjectID != projectID {
		return nil, response.NewForbidden("guest profile belongs to another project")
	}
	return s.session(&guest)
}

// Resolve validates a session's guest against the database. A token naming
// a deleted guest yields nil without error so callers can silently drop the
// stale session.
func (s *GuestService) Resolve(guestID uint) (*models.Guest, error) {
	var guest models.Guest
	err := s.db.First(&guest, guestID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &guest, nil
}

// Delete removes a guest profile from a project. Their feedbacks stay and
// degrade to the anonymous display name. Only the project owner may remove
// profiles.
func (s *GuestService) Delete(guestID, userID uint) error {
	var guest models.Guest
	if err := s.db.First(&guest, guestID).Error; err != nil {
		return response.NewNotFound("guest not found")
	}
	var project models.Project
	if err := s.db.First(&project, guest.ProjectID).Error; err != nil || project.UserID != userID {
		return response.NewForbidden("only the project owner can remove guest profiles")
	}
	return s.db.Delete(&guest).Error
}

func (s *GuestService) session(guest *models.Guest) (*GuestSession, error) {
	token, err := utils.GenerateGuestToken(guest.ID, guest.ProjectID, s.expireHour)
	if err != nil {
		return nil, err
	}
	return &GuestSession{Guest: *guest, Token: token}, nil
}
