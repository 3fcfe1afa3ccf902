package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// Task statuses
const (
	TaskStatusTodo       = "à faire"
	TaskStatusInProgress = "en cours"
	TaskStatusDone       = "fait"
	TaskStatusArchived   = "archivée"
)

// Task priorities
const (
	TaskPriorityLow    = "low"
	TaskPriorityMedium = "medium"
	TaskPriorityHigh   = "high"
	TaskPriorityUrgent = "urgent"
)

// Task is a to-do item. ParentID forms a forest; Position orders siblings.
type Task struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"size:200;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Status      string         `gorm:"size:20;default:à faire" json:"status"`
	Priority    string         `gorm:"size:20;default:medium" json:"priority"`
	DueDate     *time.Time     `json:"due_date"`
	RemindAt    *time.Time     `gorm:"index" json:"remind_at"`
	RemindedAt  *time.Time     `json:"reminded_at"` // set once the reminder has been delivered
	AssignedTo  string         `gorm:"size:500" json:"assigned_to"` // JSON array of user ids
	ParentID    *uint          `gorm:"index" json:"parent_id"`
	Position    int            `gorm:"default:0" json:"position"`
	ProjectID   *uint          `gorm:"index" json:"project_id"`
	UserID      uint           `gorm:"index;not null" json:"user_id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Task) TableName() string { return "tasks" }

// ValidTaskStatus reports whether s is a known task status.
func ValidTaskStatus(s string) bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone, TaskStatusArchived:
		return true
	}
	return false
}

// ValidTaskPriority reports whether p is a known task priority.
func ValidTaskPriority(p string) bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	}
	return false
}

// AssigneeIDs decodes the assigned_to JSON column. An empty value decodes
// to no assignees.
func (t *Task) AssigneeIDs() ([]uint, error) {
	if t.AssignedTo == "" {
		return nil, nil
	}
	var ids []uint
	if err := json.Unmarshal([]byte(t.AssignedTo), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// SetAssigneeIDs encodes ids into the assigned_to JSON column.
func (t *Task) SetAssigneeIDs(ids []uint) error {
	if len(ids) == 0 {
		t.AssignedTo = ""
		return nil
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	t.AssignedTo = string(b)
	return nil
}
