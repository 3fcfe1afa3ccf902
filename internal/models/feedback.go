package models

import (
	"time"

	"gorm.io/gorm"
)

// Feedback is a comment on exactly one grain. Authorship is exactly one of
// UserID or GuestID; the exclusive-or is enforced by the service layer at
// create time, the schema only offers the two nullable columns.
type Feedback struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	GrainID       uint           `gorm:"index;not null" json:"grain_id"`
	Grain         *Grain         `gorm:"foreignKey:GrainID" json:"grain,omitempty"`
	ProjectID     uint           `gorm:"index;not null" json:"project_id"`
	Content       string         `gorm:"type:text;not null" json:"content"`
	UserID        *uint          `gorm:"index" json:"user_id"`
	User          *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	GuestID       *uint          `gorm:"index" json:"guest_id"`
	Guest         *Guest         `gorm:"foreignKey:GuestID" json:"guest,omitempty"`
	Timecode      *float64       `json:"timecode"` // seconds, only meaningful on video grains
	ScreenshotURL string         `gorm:"size:1000" json:"screenshot_url"`
	Done          bool           `gorm:"default:false" json:"done"`
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Feedback) TableName() string { return "feedbacks" }
