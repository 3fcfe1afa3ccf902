package models

import "time"

// UserFavorite marks a project starred by a user. Pure join table.
type UserFavorite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_user_project;not null" json:"user_id"`
	ProjectID uint      `gorm:"uniqueIndex:idx_user_project;not null" json:"project_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (UserFavorite) TableName() string { return "user_favorites" }
