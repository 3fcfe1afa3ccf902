package services

import (
	"testing"

	"github.com/sydo/sydo-reviews/internal/models"
)

func TestDashboardStats_TrueCounts(t *testing.T) {
	db := setupTestDB(t)
	project, grain, guest := feedbackFixtures(t, db)
	svc := NewDashboardService(db)

	db.Create(&models.Grain{Title: "Teaser", Type: models.GrainTypeVideo, URL: "https://example.com/v.mp4", ProjectID: project.ID, RetourOn: true})
	db.Create(&models.Grain{Title: "Deck", Type: models.GrainTypeGSlide, URL: "https://docs.google.com/x", ProjectID: project.ID, RetourOn: true})
	db.Create(&models.Client{Nom: "ACME", UserID: project.UserID})
	db.Create(&models.Project{Title: "Archivé", Active: false, UserID: project.UserID})

	fbSvc := NewFeedbackService(db, newTestStorage(t))
	fb, err := fbSvc.Create(&CreateFeedbackRequest{GrainID: grain.ID, Content: "un"}, 0, guest.ID)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := fbSvc.Create(&CreateFeedbackRequest{GrainID: grain.ID, Content: "deux"}, 0, guest.ID); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := fbSvc.SetDone(fb.ID, true, project.UserID, 0); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	taskSvc := NewTaskService(db)
	taskSvc.Create(&CreateTaskRequest{Title: "A"}, project.UserID)
	done, _ := taskSvc.Create(&CreateTaskRequest{Title: "B"}, project.UserID)
	taskSvc.Update(done.ID, &UpdateTaskRequest{Status: models.TaskStatusDone}, project.UserID)

	stats, err := svc.Stats(project.UserID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}

	if stats.Projects != 2 || stats.ActiveProjects != 1 {
		t.Errorf("expected 2 projects / 1 active, got %d/%d", stats.Projects, stats.ActiveProjects)
	}
	if stats.Clients != 1 {
		t.Errorf("expected 1 client, got %d", stats.Clients)
	}
	if stats.GrainsByType[models.GrainTypeWeb] != 1 ||
		stats.GrainsByType[models.GrainTypeVideo] != 1 ||
		stats.GrainsByType[models.GrainTypeGSlide] != 1 {
		t.Errorf("unexpected grain counts: %v", stats.GrainsByType)
	}
	if stats.Feedbacks != 2 || stats.PendingFeedback != 1 {
		t.Errorf("expected 2 feedbacks / 1 pending, got %d/%d", stats.Feedbacks, stats.PendingFeedback)
	}
	if stats.TasksByStatus[models.TaskStatusTodo] != 1 || stats.TasksByStatus[models.TaskStatusDone] != 1 {
		t.Errorf("unexpected task counts: %v", stats.TasksByStatus)
	}
}

func TestDashboardStats_ScopedToUser(t *testing.T) {
	db := setupTestDB(t)
	project, _, _ := feedbackFixtures(t, db)
	svc := NewDashboardService(db)

	db.Create(&models.Project{Title: "Projet d'un autre", Active: true, UserID: project.UserID + 1})

	stats, err := svc.Stats(project.UserID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Projects != 1 {
		t.Errorf("stats must only cover the caller's projects, got %d", stats.Projects)
	}
}
