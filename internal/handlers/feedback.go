package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sydo/sydo-reviews/internal/middleware"
	"github.com/sydo/sydo-reviews/internal/models"
	"github.com/sydo/sydo-reviews/internal/services"
	"github.com/sydo/sydo-reviews/pkg/response"
	"gorm.io/gorm"
)

type FeedbackHandler struct {
	feedbacks *services.FeedbackService
}

func NewFeedbackHandler(db *gorm.DB, storage *services.StorageService) *FeedbackHandler {
	return &FeedbackHandler{feedbacks: services.NewFeedbackService(db, storage)}
}

// feedbackView decorates a row with its resolved author and icon tokens so
// the client never touches the raw user_id/guest_id pair.
type feedbackView struct {
	models.Feedback
	Author      services.Author    `json:"author"`
	DeviceIcon  services.IconToken `json:"device_icon"`
	BrowserIcon services.IconToken `json:"browser_icon"`
}

func toViews(feedbacks []models.Feedback) []feedbackView {
	views := make([]feedbackView, 0, len(feedbacks))
	for i := range feedbacks {
		views = append(views, toView(&feedbacks[i]))
	}
	return views
}

func toView(f *models.Feedback) feedbackView {
	author := services.ResolveAuthor(f)
	return feedbackView{
		Feedback:    *f,
		Author:      author,
		DeviceIcon:  services.DeviceIcon(author.Device),
		BrowserIcon: services.BrowserIcon(author.Navigateur),
	}
}

// ListByProject returns a project's feedbacks after applying the filter
// GET /api/projects/:id/feedbacks
func (h *FeedbackHandler) ListByProject(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var filter services.FeedbackFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	feedbacks, err := h.feedbacks.ListByProject(projectID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, toViews(feedbacks))
}

// ListByGrain returns one grain's feedbacks
// GET /api/grains/:id/feedbacks
func (h *FeedbackHandler) ListByGrain(c *gin.Context) {
	grainID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var filter services.FeedbackFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	feedbacks, err := h.feedbacks.ListByGrain(grainID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, toViews(feedbacks))
}

// Authors returns the project's distinct feedback authors for the filter
// dropdown
// GET /api/projects/:id/feedback-authors
func (h *FeedbackHandler) Authors(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	authors, err := h.feedbacks.Authors(projectID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, authors)
}

// Create records a feedback as the logged-in user or the guest session
// POST /api/feedbacks
func (h *FeedbackHandler) Create(c *gin.Context) {
	var req services.CreateFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	feedback, err := h.feedbacks.Create(&req, middleware.GetUserID(c), middleware.GetGuestID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	view := toView(feedback)
	response.Created(c, view)
}

// Update edits content or the done flag
// PUT /api/feedbacks/:id
func (h *FeedbackHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	feedback, err := h.feedbacks.Update(id, &req, middleware.GetUserID(c), middleware.GetGuestID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, toView(feedback))
}

// Delete removes a feedback
// DELETE /api/feedbacks/:id
func (h *FeedbackHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.feedbacks.Delete(id, middleware.GetUserID(c), middleware.GetGuestID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "feedback deleted"})
}
