package services

import (
	"github.com/sydo/sydo-reviews/internal/models"
	"gorm.io/gorm"
)

type DashboardService struct {
	db *gorm.DB
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

// DashboardStats aggregates a user's workspace. Every number is computed
// from the rows at request time, never from denormalized counters.
type DashboardStats struct {
	Projects        int64            `json:"projects"`
	ActiveProjects  int64            `json:"active_projects"`
	Clients         int64            `json:"clients"`
	GrainsByType    map[string]int64 `json:"grains_by_type"`
	Feedbacks       int64            `json:"feedbacks"`
	PendingFeedback int64            `json:"pending_feedback"`
	TasksByStatus   map[string]int64 `json:"tasks_by_status"`
}

// Stats computes the dashboard numbers for one user's projects and tasks.
func (s *DashboardService) Stats(userID uint) (*DashboardStats, error) {
	stats := &DashboardStats{
		GrainsByType:  make(map[string]int64),
		TasksByStatus: make(map[string]int64),
	}

	if err := s.db.Model(&models.Project{}).Where("user_id = ?", userID).Count(&stats.Projects).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Project{}).Where("user_id = ? AND active = ?", userID, true).Count(&stats.ActiveProjects).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Client{}).Where("user_id = ?", userID).Count(&stats.Clients).Error; err != nil {
		return nil, err
	}

	projectIDs := s.db.Model(&models.Project{}).Select("id").Where("user_id = ?", userID)

	type bucket struct {
		Key   string
		Count int64
	}
	var grainBuckets []bucket
	err := s.db.Model(&models.Grain{}).
		Select("type AS key, COUNT(*) AS count").
		Where("project_id IN (?)", projectIDs).
		Group("type").
		Scan(&grainBuckets).Error
	if err != nil {
		return nil, err
	}
	for _, b := range grainBuckets {
		stats.GrainsByType[b.Key] = b.Count
	}

	if err := s.db.Model(&models.Feedback{}).Where("project_id IN (?)", projectIDs).Count(&stats.Feedbacks).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Feedback{}).Where("project_id IN (?) AND done = ?", projectIDs, false).Count(&stats.PendingFeedback).Error; err != nil {
		return nil, err
	}

	var taskBuckets []bucket
	err = s.db.Model(&models.Task{}).
		Select("status AS key, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&taskBuckets).Error
	if err != nil {
		return nil, err
	}
	for _, b := range taskBuckets {
		stats.TasksByStatus[b.Key] = b.Count
	}

	return stats, nil
}
