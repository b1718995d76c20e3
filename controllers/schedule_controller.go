package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dayflow/dayflow/models"
	"github.com/dayflow/dayflow/services"
	"github.com/dayflow/dayflow/utils"
)

// ScheduleController handles calendar events.
type ScheduleController struct {
	db       *gorm.DB
	activity *services.ActivityService
	badges   *services.BadgeService
}

// NewScheduleController creates a ScheduleController.
func NewScheduleController(db *gorm.DB, activity *services.ActivityService, badges *services.BadgeService) *ScheduleController {
	return &ScheduleController{db: db, activity: activity, badges: badges}
}

// List returns events for one date or a date range.
func (s *ScheduleController) List(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	query := s.db.Where("user_id = ?", userID)
	date := ctx.Query("date")
	from := ctx.Query("from")
	to := ctx.Query("to")
	switch {
	case date != "":
		query = query.Where("date = ?", date)
	case from != "" || to != "":
		if from != "" {
			query = query.Where("date >= ?", from)
		}
		if to != "" {
			query = query.Where("date <= ?", to)
		}
	default:
		query = query.Where("date = ?", services.Today())
	}

	var events []models.ScheduleEvent
	if err := query.Order("date ASC, start_time ASC").Find(&events).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to load events")
		return
	}

	utils.Success(ctx, gin.H{"events": events})
}

type eventPayload struct {
	Title         *string `json:"title"`
	Description   *string `json:"description"`
	Date          *string `json:"date"`
	StartTime     *string `json:"start_time"`
	EndTime       *string `json:"end_time"`
	Color         *string `json:"color"`
	Category      *string `json:"category"`
	IsRecurring   *bool   `json:"is_recurring"`
	RecurringDays *[]int  `json:"recurring_days"`
	Reminder      *int    `json:"reminder"`
	LinkedTaskID  *uint   `json:"linked_task_id"`
}

// Create adds a calendar event.
func (s *ScheduleController) Create(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req eventPayload
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40060, "invalid request payload")
		return
	}
	if req.Title == nil || *req.Title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40061, "title is required")
		return
	}
	if req.Date == nil || !validDate(*req.Date) {
		utils.Error(ctx, http.StatusBadRequest, 40062, "date must be YYYY-MM-DD")
		return
	}
	if req.StartTime == nil || *req.StartTime == "" {
		utils.Error(ctx, http.StatusBadRequest, 40063, "start_time is required")
		return
	}

	event := models.ScheduleEvent{
		UserID: userID,
		Title:  utils.Sanitize(*req.Title),
		Date:   *req.Date,
	}
	applyEventPayload(&event, req)

	if err := s.db.Create(&event).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50061, "failed to create event")
		return
	}

	// Creating events counts toward the planner badge, so run a pass.
	newBadges := s.badges.Award(userID)

	utils.Success(ctx, gin.H{"event": event, "new_badges": newBadges})
}

// Update applies a partial update to an event.
func (s *ScheduleController) Update(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	event, ok := s.findOwned(ctx, userID)
	if !ok {
		return
	}

	var req eventPayload
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40060, "invalid request payload")
		return
	}
	if req.Title != nil {
		if *req.Title == "" {
			utils.Error(ctx, http.StatusBadRequest, 40061, "title is required")
			return
		}
		event.Title = utils.Sanitize(*req.Title)
	}
	if req.Date != nil {
		if !validDate(*req.Date) {
			utils.Error(ctx, http.StatusBadRequest, 40062, "date must be YYYY-MM-DD")
			return
		}
		event.Date = *req.Date
	}
	applyEventPayload(event, req)

	if err := s.db.Save(event).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50062, "failed to update event")
		return
	}

	utils.Success(ctx, gin.H{"event": event})
}

// Delete removes an event.
func (s *ScheduleController) Delete(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	event, ok := s.findOwned(ctx, userID)
	if !ok {
		return
	}

	if err := s.db.Delete(event).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50063, "failed to delete event")
		return
	}

	utils.Success(ctx, gin.H{"deleted": event.ID})
}

// ToggleComplete flips an event's completion flag. Completing an event dated
// today records activity; un-completing reverts nothing.
func (s *ScheduleController) ToggleComplete(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	event, ok := s.findOwned(ctx, userID)
	if !ok {
		return
	}

	event.IsCompleted = !event.IsCompleted
	if err := s.db.Model(event).Update("is_completed", event.IsCompleted).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50064, "failed to update event")
		return
	}

	newBadges := []models.EarnedBadge{}
	if event.IsCompleted && event.Date == services.Today() {
		s.activity.RecordToday(userID, services.ActivityDelta{ScheduleEventsCompleted: 1})
		newBadges = s.badges.Award(userID)
	}

	utils.Success(ctx, gin.H{"event": event, "new_badges": newBadges})
}

func (s *ScheduleController) findOwned(ctx *gin.Context, userID uint) (*models.ScheduleEvent, bool) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40064, "invalid event id")
		return nil, false
	}

	var event models.ScheduleEvent
	if err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&event).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40460, "event not found")
			return nil, false
		}
		utils.Error(ctx, http.StatusInternalServerError, 50065, "failed to load event")
		return nil, false
	}
	return &event, true
}

func applyEventPayload(event *models.ScheduleEvent, req eventPayload) {
	if req.Description != nil {
		event.Description = utils.Sanitize(*req.Description)
	}
	if req.StartTime != nil {
		event.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		event.EndTime = *req.EndTime
	}
	if req.Color != nil {
		event.Color = *req.Color
	}
	if req.Category != nil {
		event.Category = *req.Category
	}
	if req.IsRecurring != nil {
		event.IsRecurring = *req.IsRecurring
	}
	if req.RecurringDays != nil {
		event.RecurringDays = *req.RecurringDays
	}
	if req.Reminder != nil {
		event.Reminder = req.Reminder
	}
	if req.LinkedTaskID != nil {
		event.LinkedTaskID = req.LinkedTaskID
	}
}

func validDate(d string) bool {
	_, err := time.Parse("2006-01-02", d)
	return err == nil
}
