package services

import (
	"errors"
	"strings"

	"github.com/sydo/sydo-reviews/internal/models"
	"github.com/sydo/sydo-reviews/pkg/response"
	"gorm.io/gorm"
)

type ClientService struct {
	db *gorm.DB
}

func NewClientService(db *gorm.DB) *ClientService {
	return &ClientService{db: db}
}

// List returns the clients owned by a user, oldest first.
func (s *ClientService) List(userID uint) ([]models.Client, error) {
	var clients []models.Client
	err := s.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&clients).Error
	return clients, err
}

// FindOrCreate returns the owner's client with the exact given name,
// creating it when none exists. Matching is exact on the trimmed name, no
// fuzzy lookup.
func (s *ClientService) FindOrCreate(nom string, userID uint) (*models.Client, error) {
	nom = strings.TrimSpace(nom)
	if nom == "" {
		return nil, response.NewBadRequest("client name is required")
	}

	var client models.Client
	err := s.db.Where("nom = ? AND user_id = ?", nom, userID).First(&client).Error
	if err == nil {
		return &client, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	client = models.Client{Nom: nom, UserID: userID}
	if err := s.db.Create(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

// Delete removes a client. Projects referencing it keep existing with the
// reference cleared.
func (s *ClientService) Delete(id, userID uint) error {
	var client models.Client
	if err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&client).Error; err != nil {
		return response.NewNotFound("client not found")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Project{}).Where("client_id = ?", client.ID).Update("client_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&client).Error
	})
}
