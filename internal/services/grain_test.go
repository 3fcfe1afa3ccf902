package services

import (
	"strings"
	"testing"

	"github.com/sydo/sydo-reviews/internal/models"
	"github.com/sydo/sydo-reviews/pkg/response"
)

func TestGrainCreate_TypeValidation(t *testing.T) {
	db := setupTestDB(t)
	project, _, _ := feedbackFixtures(t, db)
	svc := NewGrainService(db, newTestStorage(t))

	grain, err := svc.Create(&CreateGrainRequest{
		Title:     "Module 2",
		Type:      models.GrainTypeVideo,
		URL:       "https://example.com/m2.mp4",
		ProjectID: project.ID,
	}, project.UserID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !grain.RetourOn {
		t.Error("new grains accept feedback by default")
	}

	_, err = svc.Create(&CreateGrainRequest{Title: "X", Type: "powerpoint", URL: "https://x", ProjectID: project.ID}, project.UserID)
	if appErr, ok := err.(*response.AppError); !ok || appErr.Code != 400 {
		t.Errorf("expected 400 for unknown type, got %v", err)
	}

	_, err = svc.Create(&CreateGrainRequest{Title: "X", Type: models.GrainTypeWeb, ProjectID: project.ID}, project.UserID)
	if appErr, ok := err.(*response.AppError); !ok || appErr.Code != 400 {
		t.Errorf("expected 400 for missing url, got %v", err)
	}
}

func TestGrainCreate_OwnerOnly(t *testing.T) {
	db := setupTestDB(t)
	project, _, _ := feedbackFixtures(t, db)
	svc := NewGrainService(db, newTestStorage(t))

	_, err := svc.Create(&CreateGrainRequest{Title: "intrus", Type: models.GrainTypeWeb, URL: "https://x", ProjectID: project.ID}, 4242)
	if appErr, ok := err.(*response.AppError); !ok || appErr.Code != 403 {
		t.Errorf("expected 403 for non-owner, got %v", err)
	}
}

func TestGrainCreatePDF_StoresDocument(t *testing.T) {
	db := setupTestDB(t)
	project, _, _ := feedbackFixtures(t, db)
	svc := NewGrainService(db, newTestStorage(t))

	doc := "%PDF-1.4 fake document body"
	grain, err := svc.CreatePDF(
		&CreateGrainRequest{Title: "Cahier des charges", ProjectID: project.ID},
		strings.NewReader(doc), int64(len(doc)), project.UserID)
	if err != nil {
		t.Fatalf("create pdf: %v", err)
	}
	if grain.Type != models.GrainTypePDF {
		t.Errorf("expected pdf type, got %q", grain.Type)
	}
	if !strings.HasPrefix(grain.URL, FilesRoutePrefix+"/"+BucketPDF+"/") {
		t.Errorf("expected served pdf url, got %q", grain.URL)
	}
}

func TestGrainUpdate_Toggles(t *testing.T) {
	db := setupTestDB(t)
	project, grain, _ := feedbackFixtures(t, db)
	svc := NewGrainService(db, newTestStorage(t))

	off := false
	done := true
	updated, err := svc.Update(grain.ID, &UpdateGrainRequest{RetourOn: &off, Done: &done}, project.UserID)
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	var reloaded models.Grain
	db.First(&reloaded, updated.ID)
	if reloaded.RetourOn {
		t.Error("retour_on toggle must persist")
	}
	if !reloaded.Done {
		t.Error("done toggle must persist")
	}
}

func TestGrainDelete_RemovesFeedbacks(t *testing.T) {
	db := setupTestDB(t)
	project, grain, guest := feedbackFixtures(t, db)
	svc := NewGrainService(db, newTestStorage(t))
	fbSvc := NewFeedbackService(db, newTestStorage(t))

	if _, err := fbSvc.Create(&CreateFeedbackRequest{GrainID: grain.ID, Content: "orphelin bientôt"}, 0, guest.ID); err != nil {
		t.Fatalf("seed feedback: %v", err)
	}

	if err := svc.Delete(grain.ID, project.UserID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var n int64
	db.Model(&models.Feedback{}).Where("grain_id = ?", grain.ID).Count(&n)
	if n != 0 {
		t.Error("feedbacks must not outlive their grain")
	}
}
