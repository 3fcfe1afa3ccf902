package services

import (
	"strconv"

	"github.com/sydo/sydo-reviews/internal/models"
	"github.com/sydo/sydo-reviews/pkg/response"
	"gorm.io/gorm"
)

// AnonymousName is the display fallback when an author cannot be resolved
// to a full name.
const AnonymousName = "Anonyme"

// AuthorKind discriminates the two authorship branches of a feedback.
type AuthorKind string

const (
	AuthorKindUser  AuthorKind = "user"
	AuthorKindGuest AuthorKind = "guest"
)

// Author is the resolved display identity of a feedback. The two nullable
// foreign keys on the row are collapsed into this tagged form immediately
// after fetch; nothing downstream looks at user_id/guest_id again.
type Author struct {
	Kind       AuthorKind `json:"kind"`
	ID         uint       `json:"id"`
	Name       string     `json:"name"`
	Poste      string     `json:"poste,omitempty"`
	Device     string     `json:"device,omitempty"`
	Navigateur string     `json:"navigateur,omitempty"`
}

// IconToken is a labeled device or browser icon reference.
type IconToken struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

// ResolveAuthor maps a feedback row onto its display identity. A user
// author wins over a guest author should a row ever carry both. A row whose
// enrichment never loaded (backend failure, deleted author) degrades to the
// anonymous identity instead of erroring.
func ResolveAuthor(f *models.Feedback) Author {
	if f.UserID != nil {
		author := Author{Kind: AuthorKindUser, ID: *f.UserID, Name: AnonymousName, Device: models.DeviceOrdinateur}
		if f.User != nil {
			if f.User.Prenom != "" && f.User.Nom != "" {
				author.Name = f.User.Prenom + " " + f.User.Nom
			}
		}
		return author
	}

	if f.GuestID != nil {
		author := Author{Kind: AuthorKindGuest, ID: *f.GuestID, Name: AnonymousName, Device: models.DeviceOrdinateur}
		if f.Guest != nil {
			if f.Guest.Prenom != "" && f.Guest.Nom != "" {
				author.Name = f.Guest.Prenom + " " + f.Guest.Nom
			}
			author.Poste = f.Guest.Poste
			author.Device = f.Guest.Device
			author.Navigateur = f.Guest.Navigateur
		}
		return author
	}

	return Author{Name: AnonymousName}
}

// ResolveDisplayName returns the author display name for a feedback.
func ResolveDisplayName(f *models.Feedback) string {
	return ResolveAuthor(f).Name
}

// DeviceIcon maps a device class to its icon token. Unknown or missing
// values map to the desktop default.
func DeviceIcon(device string) IconToken {
	switch device {
	case models.DeviceMobile:
		return IconToken{Name: models.DeviceMobile, Label: "Mobile"}
	case models.DeviceTablette:
		return IconToken{Name: models.DeviceTablette, Label: "Tablette"}
	case models.DeviceOrdinateur:
		return IconToken{Name: models.DeviceOrdinateur, Label: "Ordinateur"}
	default:
		return IconToken{Name: models.DeviceOrdinateur, Label: "Ordinateur"}
	}
}

// BrowserIcon maps a browser class to its icon token. Unknown or missing
// values map to the generic icon.
func BrowserIcon(navigateur string) IconToken {
	switch navigateur {
	case models.BrowserChrome:
		return IconToken{Name: models.BrowserChrome, Label: "Chrome"}
	case models.BrowserEdge:
		return IconToken{Name: models.BrowserEdge, Label: "Edge"}
	case models.BrowserFirefox:
		return IconToken{Name: models.BrowserFirefox, Label: "Firefox"}
	case models.BrowserSafari:
		return IconToken{Name: models.BrowserSafari, Label: "Safari"}
	default:
		return IconToken{Name: models.BrowserAutre, Label: "Autre"}
	}
}

// CollectAuthors scans a feedback collection and returns its distinct
// authors in order of first appearance, one entry per (kind, id) pair.
// Rows whose authorship never resolved contribute nothing.
func CollectAuthors(feedbacks []models.Feedback) []Author {
	type key struct {
		kind AuthorKind
		id   uint
	}
	seen := make(map[key]bool)
	authors := make([]Author, 0)

	for i := range feedbacks {
		author := ResolveAuthor(&feedbacks[i])
		if author.Kind == "" {
			continue
		}
		k := key{author.Kind, author.ID}
		if seen[k] {
			continue
		}
		seen[k] = true
		authors = append(authors, author)
	}
	return authors
}

// FilterAll is the wildcard value for each feedback filter dimension.
const FilterAll = "all"

// Feedback status filter values
const (
	FilterStatusDone    = "done"
	FilterStatusPending = "pending"
)

// FeedbackFilter narrows a feedback collection. The three dimensions are
// independent; any combination is valid, including one matching nothing.
type FeedbackFilter struct {
	GrainID    string `form:"grain_id"`
	Status     string `form:"status"`
	AuthorKind string `form:"author_kind"`
	AuthorID   string `form:"author_id"`
}

func (f FeedbackFilter) normalized() FeedbackFilter {
	if f.GrainID == "" {
		f.GrainID = FilterAll
	}
	if f.Status == "" {
		f.Status = FilterAll
	}
	if f.AuthorID == "" {
		f.AuthorID = FilterAll
	}
	return f
}

// ApplyFilter returns the feedbacks passing all three predicates, in input
// order. Pure function over the already-fetched collection.
func ApplyFilter(feedbacks []models.Feedback, filter FeedbackFilter) []models.Feedback {
	filter = filter.normalized()

	out := make([]models.Feedback, 0, len(feedbacks))
	for i := range feedbacks {
		f := &feedbacks[i]
		if !matchGrain(f, filter.GrainID) {
			continue
		}
		if !matchStatus(f, filter.Status) {
			continue
		}
		if !matchAuthor(f, filter.AuthorKind, filter.AuthorID) {
			continue
		}
		out = append(out, *f)
	}
	return out
}

func matchGrain(f *models.Feedback, grainID string) bool {
	if grainID == FilterAll {
		return true
	}
	return strconv.FormatUint(uint64(f.GrainID), 10) == grainID
}

func matchStatus(f *models.Feedback, status string) bool {
	switch status {
	case FilterStatusDone:
		return f.Done
	case FilterStatusPending:
		return !f.Done
	default:
		return true
	}
}

func matchAuthor(f *models.Feedback, kind, id string) bool {
	if id == FilterAll {
		return true
	}
	author := ResolveAuthor(f)
	if author.Kind == "" {
		return false
	}
	if kind != "" && kind != FilterAll && string(author.Kind) != kind {
		return false
	}
	return strconv.FormatUint(uint64(author.ID), 10) == id
}

type FeedbackService struct {
	db      *gorm.DB
	storage *StorageService
}

func NewFeedbackService(db *gorm.DB, storage *StorageService) *FeedbackService {
	return &FeedbackService{db: db, storage: storage}
}

type CreateFeedbackRequest struct {
	GrainID    uint     `json:"grain_id" binding:"required"`
	Content    string   `json:"content" binding:"required"`
	Timecode   *float64 `json:"timecode"`
	Screenshot string   `json:"screenshot"` // base64 image data URL from the annotation canvas
}

type UpdateFeedbackRequest struct {
	Content string `json:"content"`
	Done    *bool  `json:"done"`
}

// Create records a new feedback on a grain. Exactly one of userID/guestID
// must be non-zero; a user identity wins when both are present.
func (s *FeedbackService) Create(req *CreateFeedbackRequest, userID, guestID uint) (*models.Feedback, error) {
	var grain models.Grain
	if err := s.db.Preload("Project").First(&grain, req.GrainID).Error; err != nil {
		return nil, response.NewNotFound("grain not found")
	}

	feedback := models.Feedback{
		GrainID:   grain.ID,
		ProjectID: grain.ProjectID,
		Content:   req.Content,
	}

	isOwner := false
	switch {
	case userID > 0:
		feedback.UserID = &userID
		if grain.Project != nil && grain.Project.UserID == userID {
			isOwner = true
		}
	case guestID > 0:
		var guest models.Guest
		if err := s.db.First(&guest, guestID).Error; err != nil {
			// Stale session: the guest was removed server-side
			return nil, response.NewUnauthorized("guest session is no longer valid")
		}
		if guest.ProjectID != grain.ProjectID {
			return nil, response.NewForbidden("guest profile belongs to another project")
		}
		feedback.GuestID = &guest.ID
	default:
		return nil, response.NewUnauthorized("sign in or create a guest profile to comment")
	}

	if !grain.RetourOn && !isOwner {
		return nil, response.NewForbidden("feedback collection is closed for this item")
	}

	if req.Timecode != nil {
		if grain.Type != models.GrainTypeVideo {
			return nil, response.NewUnprocessable("timecode is only valid on video grains")
		}
		feedback.Timecode = req.Timecode
	}

	if req.Screenshot != "" {
		url, err := s.storage.SaveScreenshotDataURL(req.Screenshot)
		if err != nil {
			return nil, response.NewBadRequest("invalid screenshot: " + err.Error())
		}
		feedback.ScreenshotURL = url
	}

	if err := s.db.Create(&feedback).Error; err != nil {
		return nil, err
	}

	s.db.Preload("User").Preload("Guest").First(&feedback, feedback.ID)

	PublishFeedbackEvent(EventFeedbackCreated, feedback.ProjectID, feedback.GrainID, &feedback)
	return &feedback, nil
}

// ListByProject returns a project's feedbacks, newest first, narrowed by
// the filter in memory so the three predicates stay independent.
func (s *FeedbackService) ListByProject(projectID uint, filter FeedbackFilter) ([]models.Feedback, error) {
	var feedbacks []models.Feedback
	err := s.db.Preload("User").Preload("Guest").Preload("Grain").
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&feedbacks).Error
	if err != nil {
		return nil, err
	}
	return ApplyFilter(feedbacks, filter), nil
}

// ListByGrain returns one grain's feedbacks, newest first.
func (s *FeedbackService) ListByGrain(grainID uint, filter FeedbackFilter) ([]models.Feedback, error) {
	var feedbacks []models.Feedback
	err := s.db.Preload("User").Preload("Guest").
		Where("grain_id = ?", grainID).
		Order("created_at DESC").
		Find(&feedbacks).Error
	if err != nil {
		return nil, err
	}
	return ApplyFilter(feedbacks, filter), nil
}

// Authors returns the distinct feedback authors of a project, for the
// author filter dropdown.
func (s *FeedbackService) Authors(projectID uint) ([]Author, error) {
	var feedbacks []models.Feedback
	err := s.db.Preload("User").Preload("Guest").
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&feedbacks).Error
	if err != nil {
		return nil, err
	}
	return CollectAuthors(feedbacks), nil
}

// Update edits content and/or toggles the done flag. Allowed for the
// feedback's author (user or guest session) and the project owner.
func (s *FeedbackService) Update(id uint, req *UpdateFeedbackRequest, userID, guestID uint) (*models.Feedback, error) {
	feedback, err := s.authorize(id, userID, guestID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Content != "" {
		updates["content"] = req.Content
	}
	if req.Done != nil {
		updates["done"] = *req.Done
	}
	if len(updates) > 0 {
		if err := s.db.Model(feedback).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	s.db.Preload("User").Preload("Guest").First(feedback, feedback.ID)
	PublishFeedbackEvent(EventFeedbackUpdated, feedback.ProjectID, feedback.GrainID, feedback)
	return feedback, nil
}

// SetDone toggles the resolved flag. Done feedback stays visible, it is
// only filter-distinguishable.
func (s *FeedbackService) SetDone(id uint, done bool, userID, guestID uint) (*models.Feedback, error) {
	return s.Update(id, &UpdateFeedbackRequest{Done: &done}, userID, guestID)
}

// Delete removes a feedback and its stored screenshot.
func (s *FeedbackService) Delete(id uint, userID, guestID uint) error {
	feedback, err := s.authorize(id, userID, guestID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(&models.Feedback{}, feedback.ID).Error; err != nil {
		return err
	}
	if feedback.ScreenshotURL != "" {
		s.storage.Delete(feedback.ScreenshotURL)
	}
	return nil
}

func (s *FeedbackService) authorize(id uint, userID, guestID uint) (*models.Feedback, error) {
	var feedback models.Feedback
	if err := s.db.First(&feedback, id).Error; err != nil {
		return nil, response.NewNotFound("feedback not found")
	}

	if userID > 0 {
		if feedback.UserID != nil && *feedback.UserID == userID {
			return &feedback, nil
		}
		var project models.Project
		if err := s.db.First(&project, feedback.ProjectID).Error; err == nil && project.UserID == userID {
			return &feedback, nil
		}
		return nil, response.NewForbidden("not the author of this feedback")
	}

	if guestID > 0 && feedback.GuestID != nil && *feedback.GuestID == guestID {
		return &feedback, nil
	}

	return nil, response.NewUnauthorized("sign in or restore the guest session to modify this feedback")
}
