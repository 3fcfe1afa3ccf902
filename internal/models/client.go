package models

import (
	"time"

	"gorm.io/gorm"
)

// Client is a named organization owned by a user, optionally referenced
// by projects. Created inline when a project form carries a new name.
type Client struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Nom       string         `gorm:"size:200;not null" json:"nom"`
	UserID    uint           `gorm:"index;not null" json:"user_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Client) TableName() string { return "clients" }
