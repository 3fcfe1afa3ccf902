package models

import (
	"time"

	"gorm.io/gorm"
)

// Resource types
const (
	ResourceTypeMM        = "MM"
	ResourceTypeFigma     = "Figma"
	ResourceTypeBudget    = "budget"
	ResourceTypeContenu   = "Contenu texte"
	ResourceTypePhotoshop = "Photoshop"
	ResourceTypeXD        = "XD"
	ResourceTypeAutre     = "Autre"
)

// Resource is a typed external link attached to a project
type Resource struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Title     string         `gorm:"size:200;not null" json:"title"`
	Type      string         `gorm:"size:50;not null" json:"type"`
	URL       string         `gorm:"size:1000;not null" json:"url"`
	ProjectID uint           `gorm:"index;not null" json:"project_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Resource) TableName() string { return "ressources" }

// ValidResourceType reports whether t is a known resource type.
func ValidResourceType(t string) bool {
	switch t {
	case ResourceTypeMM, ResourceTypeFigma, ResourceTypeBudget, ResourceTypeContenu,
		ResourceTypePhotoshop, ResourceTypeXD, ResourceTypeAutre:
		return true
	}
	return false
}
