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

// PomodoroController handles timer sessions. Completed work sessions bump
// the lifetime focus stats and feed the activity and badge engines; breaks
// are recorded but never scored.
type PomodoroController struct {
	db       *gorm.DB
	activity *services.ActivityService
	badges   *services.BadgeService
}

// NewPomodoroController creates a PomodoroController.
func NewPomodoroController(db *gorm.DB, activity *services.ActivityService, badges *services.BadgeService) *PomodoroController {
	return &PomodoroController{db: db, activity: activity, badges: badges}
}

// List returns sessions, optionally filtered by date and type.
func (p *PomodoroController) List(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	query := p.db.Model(&models.Pomodoro{}).Where("user_id = ?", userID)
	if date := ctx.Query("date"); date != "" {
		query = query.Where("date = ?", date)
	}
	if typ := ctx.Query("type"); typ != "" {
		query = query.Where("type = ?", typ)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to count sessions")
		return
	}

	var sessions []models.Pomodoro
	if err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&sessions).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to load sessions")
		return
	}

	utils.Success(ctx, gin.H{
		"sessions":  sessions,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// Start opens a new timer session. The planned duration defaults to the
// user's preference for the session type.
func (p *PomodoroController) Start(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		Type         string `json:"type"`
		Duration     int    `json:"duration"`
		LinkedTaskID *uint  `json:"linked_task_id"`
		Note         string `json:"note"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		utils.Error(ctx, http.StatusBadRequest, 40050, "invalid request payload")
		return
	}

	if req.Type == "" {
		req.Type = models.PomodoroWork
	}
	if !validPomodoroType(req.Type) {
		utils.Error(ctx, http.StatusBadRequest, 40051, "invalid session type")
		return
	}

	if req.Duration <= 0 {
		var user models.User
		if err := p.db.First(&user, userID).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50052, "failed to load user")
			return
		}
		switch req.Type {
		case models.PomodoroShortBreak:
			req.Duration = user.Preferences.PomodoroBreak
		case models.PomodoroLongBreak:
			req.Duration = user.Preferences.PomodoroLong
		default:
			req.Duration = user.Preferences.PomodoroWork
		}
	}

	now := time.Now()
	session := models.Pomodoro{
		UserID:       userID,
		Type:         req.Type,
		Duration:     req.Duration,
		LinkedTaskID: req.LinkedTaskID,
		Note:         utils.Sanitize(req.Note),
		StartedAt:    &now,
		Date:         services.Today(),
	}
	if err := p.db.Create(&session).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50053, "failed to create session")
		return
	}

	utils.Success(ctx, gin.H{"session": session})
}

// Complete closes a session. Completed work sessions count their planned
// duration as focus minutes.
func (p *PomodoroController) Complete(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40052, "invalid session id")
		return
	}

	var session models.Pomodoro
	if err := p.db.Where("id = ? AND user_id = ?", id, userID).First(&session).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40450, "session not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50054, "failed to load session")
		return
	}

	if session.Completed {
		utils.Error(ctx, http.StatusBadRequest, 40053, "session already completed")
		return
	}

	var req struct {
		ActualDuration *int `json:"actual_duration"` // seconds
	}
	if err := ctx.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		utils.Error(ctx, http.StatusBadRequest, 40050, "invalid request payload")
		return
	}

	now := time.Now()
	session.Completed = true
	session.CompletedAt = &now
	session.ActualDuration = req.ActualDuration

	if err := p.db.Save(&session).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50055, "failed to update session")
		return
	}

	newBadges := []models.EarnedBadge{}
	if session.Type == models.PomodoroWork {
		minutes := focusMinutes(session)
		if err := p.db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
			"stat_total_pomodoros":     gorm.Expr("stat_total_pomodoros + 1"),
			"stat_total_focus_minutes": gorm.Expr("stat_total_focus_minutes + ?", minutes),
			"stat_last_active_date":    now,
		}).Error; err != nil {
			utils.Sugar.Errorf("pomodoro: failed to bump focus stats user=%d: %v", userID, err)
		}
		p.activity.RecordToday(userID, services.ActivityDelta{
			Pomodoros:    1,
			FocusMinutes: minutes,
		})
		newBadges = p.badges.Award(userID)

		if session.LinkedTaskID != nil {
			if err := p.db.Model(&models.Task{}).
				Where("id = ? AND user_id = ?", *session.LinkedTaskID, userID).
				Update("pomodoros_count", gorm.Expr("pomodoros_count + 1")).Error; err != nil {
				utils.Sugar.Errorf("pomodoro: failed to bump task counter task=%d: %v", *session.LinkedTaskID, err)
			}
		}
	}

	utils.Success(ctx, gin.H{"session": session, "new_badges": newBadges})
}

// Delete removes a session without reverting any stats it produced.
func (p *PomodoroController) Delete(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40052, "invalid session id")
		return
	}

	res := p.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Pomodoro{})
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50056, "failed to delete session")
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, 40450, "session not found")
		return
	}

	utils.Success(ctx, gin.H{"deleted": id})
}

// Stats summarizes focus time for today and overall.
func (p *PomodoroController) Stats(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	today := services.Today()

	type agg struct {
		Sessions int64
		Minutes  int64
	}
	var todayAgg, totalAgg agg

	base := p.db.Model(&models.Pomodoro{}).
		Select("COUNT(*) AS sessions, COALESCE(SUM(duration), 0) AS minutes").
		Where("user_id = ? AND type = ? AND completed = ?", userID, models.PomodoroWork, true)

	if err := base.Session(&gorm.Session{}).Where("date = ?", today).Scan(&todayAgg).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50057, "failed to load stats")
		return
	}
	if err := base.Session(&gorm.Session{}).Scan(&totalAgg).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50057, "failed to load stats")
		return
	}

	from := ctx.Query("from")
	if from == "" {
		day, _ := time.Parse("2006-01-02", today)
		from = day.AddDate(0, 0, -6).Format("2006-01-02")
	}
	to := ctx.Query("to")
	if to == "" {
		to = today
	}

	type dayBucket struct {
		Date     string `json:"date"`
		Sessions int64  `json:"sessions"`
		Minutes  int64  `json:"focus_minutes"`
	}
	var daily []dayBucket
	if err := p.db.Model(&models.Pomodoro{}).
		Select("date, COUNT(*) AS sessions, COALESCE(SUM(duration), 0) AS minutes").
		Where("user_id = ? AND type = ? AND completed = ? AND date >= ? AND date <= ?",
			userID, models.PomodoroWork, true, from, to).
		Group("date").
		Order("date ASC").
		Scan(&daily).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50057, "failed to load stats")
		return
	}

	utils.Success(ctx, gin.H{
		"today": gin.H{"sessions": todayAgg.Sessions, "focus_minutes": todayAgg.Minutes},
		"total": gin.H{"sessions": totalAgg.Sessions, "focus_minutes": totalAgg.Minutes},
		"daily": daily,
	})
}

// focusMinutes returns the minutes credited for a completed work session:
// the whole minutes of the reported elapsed time, or the planned duration
// when the client did not report one.
func focusMinutes(session models.Pomodoro) int {
	if session.ActualDuration != nil {
		return *session.ActualDuration / 60
	}
	return session.Duration
}

func validPomodoroType(t string) bool {
	switch t {
	case models.PomodoroWork, models.PomodoroShortBreak, models.PomodoroLongBreak:
		return true
	}
	return false
}
