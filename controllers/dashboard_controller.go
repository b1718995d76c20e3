package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dayflow/dayflow/models"
	"github.com/dayflow/dayflow/services"
	"github.com/dayflow/dayflow/utils"
)

// DashboardController aggregates the landing-page summary and the activity
// heatmap feed.
type DashboardController struct {
	db       *gorm.DB
	activity *services.ActivityService
}

// NewDashboardController creates a DashboardController.
func NewDashboardController(db *gorm.DB, activity *services.ActivityService) *DashboardController {
	return &DashboardController{db: db, activity: activity}
}

// Summary returns today's numbers plus trend analytics over the trailing
// year of activity.
func (d *DashboardController) Summary(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var user models.User
	if err := d.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50080, "failed to load user")
		return
	}

	today := services.Today()
	var todayRec models.DailyActivity
	if err := d.db.Where("user_id = ? AND date = ?", userID, today).First(&todayRec).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusInternalServerError, 50081, "failed to load activity")
			return
		}
		todayRec = models.DailyActivity{UserID: userID, Date: today}
	}

	var dueToday int64
	if err := d.db.Model(&models.Task{}).
		Where("user_id = ? AND due_date >= ? AND due_date < ? AND status NOT IN ?",
			userID, startOfToday(), startOfToday().AddDate(0, 0, 1),
			[]string{models.TaskCompleted, models.TaskCancelled}).
		Count(&dueToday).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50082, "failed to count tasks")
		return
	}

	var eventsToday int64
	if err := d.db.Model(&models.ScheduleEvent{}).
		Where("user_id = ? AND date = ?", userID, today).
		Count(&eventsToday).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50083, "failed to count events")
		return
	}

	now := time.Now().UTC()
	yearAgo := now.AddDate(0, 0, -365).Format("2006-01-02")
	records, err := d.activity.Range(userID, yearAgo, today)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50084, "failed to load activity history")
		return
	}

	growth, thisWeek, lastWeek := services.WeekGrowth(records, now)
	longest := services.LongestStreak(records)

	// Trailing 7 days for the summary sparkline.
	weekStart := now.AddDate(0, 0, -6).Format("2006-01-02")
	week := make([]models.DailyActivity, 0, 7)
	for _, rec := range records {
		if rec.Date >= weekStart {
			week = append(week, rec)
		}
	}

	var habits []models.Habit
	if err := d.db.Where("user_id = ? AND is_active = ?", userID, true).Find(&habits).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50086, "failed to load habits")
		return
	}
	habitsDoneToday := 0
	for _, habit := range habits {
		for _, c := range habit.Completions {
			if c.Date == today {
				habitsDoneToday++
				break
			}
		}
	}

	var recentNotes []models.Note
	if err := d.db.Where("user_id = ? AND is_archived = ?", userID, false).
		Order("updated_at DESC").
		Limit(5).
		Find(&recentNotes).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50087, "failed to load notes")
		return
	}

	utils.Success(ctx, gin.H{
		"today": gin.H{
			"activity":     todayRec,
			"tasks_due":    dueToday,
			"events":       eventsToday,
			"habits_done":  habitsDoneToday,
			"habits_total": len(habits),
		},
		"week":         week,
		"recent_notes": recentNotes,
		"stats":        user.Stats,
		"analytics": gin.H{
			"week_growth":           growth,
			"this_week_score":       thisWeek,
			"last_week_score":       lastWeek,
			"personal_best":         services.PersonalBest(records),
			"longest_streak":        longest,
			"next_streak_milestone": services.NextStreakMilestone(longest),
		},
	})
}

// Heatmap returns daily activity records for the heatmap, by default the
// trailing 365 days.
func (d *DashboardController) Heatmap(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	to := ctx.Query("to")
	if to == "" {
		to = services.Today()
	}
	from := ctx.Query("from")
	if from == "" {
		end, err := time.Parse("2006-01-02", to)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40080, "date must be YYYY-MM-DD")
			return
		}
		from = end.AddDate(0, 0, -365).Format("2006-01-02")
	}
	if !validDate(from) || !validDate(to) {
		utils.Error(ctx, http.StatusBadRequest, 40080, "date must be YYYY-MM-DD")
		return
	}

	records, err := d.activity.Range(userID, from, to)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50085, "failed to load activity history")
		return
	}

	growth, thisWeek, lastWeek := services.WeekGrowth(records, time.Now().UTC())
	longest := services.LongestStreak(records)

	utils.Success(ctx, gin.H{
		"from":    from,
		"to":      to,
		"records": records,
		"analytics": gin.H{
			"week_growth":           growth,
			"this_week_score":       thisWeek,
			"last_week_score":       lastWeek,
			"personal_best":         services.PersonalBest(records),
			"longest_streak":        longest,
			"next_streak_milestone": services.NextStreakMilestone(longest),
		},
	})
}
