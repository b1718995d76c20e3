package controllers

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dayflow/dayflow/models"
	"github.com/dayflow/dayflow/services"
	"github.com/dayflow/dayflow/utils"
)

// HabitController handles habits and their per-day completion toggling.
type HabitController struct {
	db       *gorm.DB
	activity *services.ActivityService
	badges   *services.BadgeService
}

// NewHabitController creates a HabitController.
func NewHabitController(db *gorm.DB, activity *services.ActivityService, badges *services.BadgeService) *HabitController {
	return &HabitController{db: db, activity: activity, badges: badges}
}

// List returns the user's habits, active ones by default.
func (h *HabitController) List(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	query := h.db.Where("user_id = ?", userID)
	if ctx.Query("include_archived") != "true" {
		query = query.Where("is_active = ?", true)
	}

	var habits []models.Habit
	if err := query.Order("sort_order ASC, created_at ASC").Find(&habits).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to load habits")
		return
	}

	utils.Success(ctx, gin.H{"habits": habits})
}

type habitPayload struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
	Icon        *string `json:"icon"`
	Frequency   *string `json:"frequency"`
	CustomDays  *[]int  `json:"custom_days"`
	TargetCount *int    `json:"target_count"`
	Unit        *string `json:"unit"`
	Order       *int    `json:"order"`
}

// Create adds a new habit.
func (h *HabitController) Create(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req habitPayload
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid request payload")
		return
	}
	if req.Name == nil || *req.Name == "" {
		utils.Error(ctx, http.StatusBadRequest, 40031, "name is required")
		return
	}
	if len([]rune(*req.Name)) > 100 {
		utils.Error(ctx, http.StatusBadRequest, 40032, "name must be at most 100 characters")
		return
	}

	habit := models.Habit{
		UserID:   userID,
		Name:     utils.Sanitize(*req.Name),
		IsActive: true,
	}
	applyHabitPayload(&habit, req)
	if !validFrequency(habit.Frequency) {
		utils.Error(ctx, http.StatusBadRequest, 40033, "invalid frequency")
		return
	}

	if err := h.db.Create(&habit).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to create habit")
		return
	}

	utils.Success(ctx, gin.H{"habit": habit})
}

// Update applies a partial update to a habit.
func (h *HabitController) Update(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	habit, ok := h.findOwned(ctx, userID)
	if !ok {
		return
	}

	var req habitPayload
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid request payload")
		return
	}
	if req.Name != nil {
		if *req.Name == "" {
			utils.Error(ctx, http.StatusBadRequest, 40031, "name is required")
			return
		}
		habit.Name = utils.Sanitize(*req.Name)
	}
	applyHabitPayload(habit, req)
	if !validFrequency(habit.Frequency) {
		utils.Error(ctx, http.StatusBadRequest, 40033, "invalid frequency")
		return
	}

	if err := h.db.Save(habit).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to update habit")
		return
	}

	utils.Success(ctx, gin.H{"habit": habit})
}

// Archive deactivates a habit, keeping its history.
func (h *HabitController) Archive(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	habit, ok := h.findOwned(ctx, userID)
	if !ok {
		return
	}

	if err := h.db.Model(habit).Update("is_active", false).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50033, "failed to archive habit")
		return
	}

	habit.IsActive = false
	utils.Success(ctx, gin.H{"habit": habit})
}

// Delete removes a habit and its completion history.
func (h *HabitController) Delete(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	habit, ok := h.findOwned(ctx, userID)
	if !ok {
		return
	}

	if err := h.db.Delete(habit).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50034, "failed to delete habit")
		return
	}

	utils.Success(ctx, gin.H{"deleted": habit.ID})
}

// Toggle flips the completion state of a habit for one date. Completing a
// habit for today updates lifetime streak stats, records activity and runs a
// badge pass; removing a completion reverts none of those.
func (h *HabitController) Toggle(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	habit, ok := h.findOwned(ctx, userID)
	if !ok {
		return
	}

	var req struct {
		Date  string `json:"date"`
		Count int    `json:"count"`
		Note  string `json:"note"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid request payload")
		return
	}

	date := req.Date
	if date == "" {
		date = services.Today()
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40034, "date must be YYYY-MM-DD")
		return
	}

	idx := -1
	for i, c := range habit.Completions {
		if c.Date == date {
			idx = i
			break
		}
	}

	completing := idx < 0
	if completing {
		count := req.Count
		if count <= 0 {
			count = 1
		}
		habit.Completions = append(habit.Completions, models.HabitCompletion{
			Date:  date,
			Count: count,
			Note:  req.Note,
		})
	} else {
		habit.Completions = append(habit.Completions[:idx], habit.Completions[idx+1:]...)
	}

	habit.Streak = recomputeStreak(habit.Completions, services.Today())

	if err := h.db.Model(habit).Updates(map[string]interface{}{
		"completions":               habit.Completions,
		"streak_current":            habit.Streak.Current,
		"streak_longest":            habit.Streak.Longest,
		"streak_last_completed_date": habit.Streak.LastCompletedDate,
	}).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50035, "failed to update habit")
		return
	}

	newBadges := []models.EarnedBadge{}
	if completing && date == services.Today() {
		h.refreshStreakStats(userID)
		h.activity.RecordToday(userID, services.ActivityDelta{HabitsCompleted: 1})
		newBadges = h.badges.Award(userID)
	}

	utils.Success(ctx, gin.H{"habit": habit, "new_badges": newBadges})
}

// Stats summarizes one habit's completion history.
func (h *HabitController) Stats(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	habit, ok := h.findOwned(ctx, userID)
	if !ok {
		return
	}

	today, _ := time.Parse("2006-01-02", services.Today())
	monthPrefix := today.Format("2006-01")
	cutoff30 := today.AddDate(0, 0, -30).Format("2006-01-02")

	var thisMonth, last30 int
	for _, c := range habit.Completions {
		if len(c.Date) >= 7 && c.Date[:7] == monthPrefix {
			thisMonth++
		}
		if c.Date > cutoff30 {
			last30++
		}
	}

	rate := float64(last30) / 30 * 100
	if rate > 100 {
		rate = 100
	}

	utils.Success(ctx, gin.H{
		"total_completions": len(habit.Completions),
		"this_month":        thisMonth,
		"last_30_days":      last30,
		"completion_rate":   rate,
		"streak":            habit.Streak,
	})
}

// refreshStreakStats rolls the best per-habit streaks up into the user's
// lifetime stats.
func (h *HabitController) refreshStreakStats(userID uint) {
	var habits []models.Habit
	if err := h.db.Where("user_id = ? AND is_active = ?", userID, true).Find(&habits).Error; err != nil {
		utils.Sugar.Errorf("habits: failed to load habits for streak rollup user=%d: %v", userID, err)
		return
	}

	var current, longest int
	for _, habit := range habits {
		if habit.Streak.Current > current {
			current = habit.Streak.Current
		}
		if habit.Streak.Longest > longest {
			longest = habit.Streak.Longest
		}
	}

	now := time.Now()
	if err := h.db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"stat_current_streak":  current,
		"stat_longest_streak":  gorm.Expr("GREATEST(stat_longest_streak, ?)", longest),
		"stat_last_active_date": now,
	}).Error; err != nil {
		utils.Sugar.Errorf("habits: failed to update streak stats user=%d: %v", userID, err)
	}
}

func (h *HabitController) findOwned(ctx *gin.Context, userID uint) (*models.Habit, bool) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40035, "invalid habit id")
		return nil, false
	}

	var habit models.Habit
	if err := h.db.Where("id = ? AND user_id = ?", id, userID).First(&habit).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40430, "habit not found")
			return nil, false
		}
		utils.Error(ctx, http.StatusInternalServerError, 50036, "failed to load habit")
		return nil, false
	}
	return &habit, true
}

func applyHabitPayload(habit *models.Habit, req habitPayload) {
	if req.Description != nil {
		habit.Description = utils.Sanitize(*req.Description)
	}
	if req.Color != nil {
		habit.Color = *req.Color
	}
	if req.Icon != nil {
		habit.Icon = *req.Icon
	}
	if req.Frequency != nil {
		habit.Frequency = *req.Frequency
	}
	if req.CustomDays != nil {
		habit.CustomDays = *req.CustomDays
	}
	if req.TargetCount != nil && *req.TargetCount > 0 {
		habit.TargetCount = *req.TargetCount
	}
	if req.Unit != nil {
		habit.Unit = *req.Unit
	}
	if req.Order != nil {
		habit.Order = *req.Order
	}
	if habit.Frequency == "" {
		habit.Frequency = "daily"
	}
}

func validFrequency(f string) bool {
	switch f {
	case "daily", "weekly", "custom":
		return true
	}
	return false
}

// recomputeStreak rebuilds the streak counters from the full completion
// history. The current streak counts the consecutive-day run that ends today
// or yesterday; an older run keeps only the longest counter.
func recomputeStreak(completions []models.HabitCompletion, today string) models.Streak {
	if len(completions) == 0 {
		return models.Streak{}
	}

	dates := make([]string, 0, len(completions))
	seen := make(map[string]bool, len(completions))
	for _, c := range completions {
		if !seen[c.Date] {
			seen[c.Date] = true
			dates = append(dates, c.Date)
		}
	}
	sort.Strings(dates)

	parse := func(d string) time.Time {
		t, _ := time.Parse("2006-01-02", d)
		return t
	}

	longest, run := 1, 1
	for i := 1; i < len(dates); i++ {
		if parse(dates[i]).Sub(parse(dates[i-1])) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	last := dates[len(dates)-1]
	current := 0
	gap := parse(today).Sub(parse(last))
	if gap >= 0 && gap <= 24*time.Hour {
		current = run
	}

	return models.Streak{
		Current:           current,
		Longest:           longest,
		LastCompletedDate: last,
	}
}
