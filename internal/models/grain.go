package models

import (
	"time"

	"gorm.io/gorm"
)

// Grain types
const (
	GrainTypeWeb    = "web"
	GrainTypeVideo  = "video"
	GrainTypeFigma  = "figma"
	GrainTypeGSlide = "GSlide"
	GrainTypePDF    = "pdf"
)

// Grain is a single reviewable artifact belonging to a project: a web page,
// a video, a Figma or slide link, or an uploaded PDF.
type Grain struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Title     string         `gorm:"size:200;not null" json:"title"`
	Type      string         `gorm:"size:20;not null" json:"type"` // web, video, figma, GSlide, pdf
	URL       string         `gorm:"size:1000" json:"url"`
	ProjectID uint           `gorm:"index;not null" json:"project_id"`
	Project   *Project       `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Done      bool           `gorm:"default:false" json:"done"`
	RetourOn  bool           `gorm:"default:true" json:"retour_on"` // gates public feedback collection
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Grain) TableName() string { return "grains" }

// ValidGrainType reports whether t is one of the supported grain types.
func ValidGrainType(t string) bool {
	switch t {
	case GrainTypeWeb, GrainTypeVideo, GrainTypeFigma, GrainTypeGSlide, GrainTypePDF:
		return true
	}
	return false
}
