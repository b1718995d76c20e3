package services

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dayflow/dayflow/models"
	"github.com/dayflow/dayflow/utils"
)

// Score weights are fixed design constants reflecting relative effort:
// a completed task counts double a note, every full 25-minute focus block
// counts one point, habit and schedule completions weigh 1.5.
const (
	taskWeight        = 2.0
	habitWeight       = 1.5
	noteWeight        = 1.0
	eventWeight       = 1.5
	focusBlockMinutes = 25

	baselineWindowDays = 90
	baselineMinSamples = 5
)

// ActivityDelta is a partial set of counter increments for one day. Zero
// fields leave the corresponding counter untouched.
type ActivityDelta struct {
	TasksCompleted          int
	FocusMinutes            int
	Pomodoros               int
	HabitsCompleted         int
	NotesCreated            int
	ScheduleEventsCompleted int
}

// ActivityService maintains the per-user daily activity aggregates and
// derives the composite score and relative intensity for each day.
type ActivityService struct {
	db *gorm.DB
}

// NewActivityService creates an ActivityService.
func NewActivityService(db *gorm.DB) *ActivityService {
	return &ActivityService{db: db}
}

// Today returns the current calendar date at the server-side UTC day
// boundary. Per-user timezone preferences are intentionally not applied.
func Today() string {
	return time.Now().UTC().Format("2006-01-02")
}

// Record applies delta to the (userID, date) daily record, creating it on
// first use, then recomputes score and intensity from the summed counters.
//
// Activity logging is an advisory side effect of a primary action: any
// storage failure is logged and swallowed, and nil is returned. Callers
// must never fail their own request because of it.
func (s *ActivityService) Record(userID uint, date string, delta ActivityDelta) *models.DailyActivity {
	if date == "" {
		date = Today()
	}

	// Atomic increment-in-place: insert the row or add the delta to the
	// existing counters in one statement, so concurrent same-day writes
	// cannot lose updates.
	rec := models.DailyActivity{
		UserID:                  userID,
		Date:                    date,
		TasksCompleted:          delta.TasksCompleted,
		FocusMinutes:            delta.FocusMinutes,
		Pomodoros:               delta.Pomodoros,
		HabitsCompleted:         delta.HabitsCompleted,
		NotesCreated:            delta.NotesCreated,
		ScheduleEventsCompleted: delta.ScheduleEventsCompleted,
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"tasks_completed":           gorm.Expr("tasks_completed + ?", delta.TasksCompleted),
			"focus_minutes":             gorm.Expr("focus_minutes + ?", delta.FocusMinutes),
			"pomodoros":                 gorm.Expr("pomodoros + ?", delta.Pomodoros),
			"habits_completed":          gorm.Expr("habits_completed + ?", delta.HabitsCompleted),
			"notes_created":             gorm.Expr("notes_created + ?", delta.NotesCreated),
			"schedule_events_completed": gorm.Expr("schedule_events_completed + ?", delta.ScheduleEventsCompleted),
			"updated_at":                time.Now(),
		}),
	}).Create(&rec).Error
	if err != nil {
		utils.Sugar.Errorf("activity: failed to upsert daily record user=%d date=%s: %v", userID, date, err)
		return nil
	}

	// Re-read to observe the summed counters regardless of which branch
	// the upsert took. Score/intensity are derived values; recomputing
	// them outside the increment is acceptable since the next write
	// recomputes them from scratch anyway.
	var current models.DailyActivity
	if err := s.db.Where("user_id = ? AND date = ?", userID, date).First(&current).Error; err != nil {
		utils.Sugar.Errorf("activity: failed to reload daily record user=%d date=%s: %v", userID, date, err)
		return nil
	}

	score := ComputeScore(current)
	history, err := s.baselineScores(userID, date)
	if err != nil {
		utils.Sugar.Errorf("activity: failed to load baseline user=%d date=%s: %v", userID, date, err)
		return nil
	}
	intensity := ComputeIntensity(score, history)

	if err := s.db.Model(&models.DailyActivity{}).
		Where("id = ?", current.ID).
		Updates(map[string]interface{}{"score": score, "intensity": intensity}).Error; err != nil {
		utils.Sugar.Errorf("activity: failed to store score user=%d date=%s: %v", userID, date, err)
		return nil
	}

	current.Score = score
	current.Intensity = intensity
	return &current
}

// RecordToday applies delta to today's record.
func (s *ActivityService) RecordToday(userID uint, delta ActivityDelta) *models.DailyActivity {
	return s.Record(userID, Today(), delta)
}

// Range returns the user's activity records between from and to inclusive,
// date-ascending.
func (s *ActivityService) Range(userID uint, from, to string) ([]models.DailyActivity, error) {
	var records []models.DailyActivity
	err := s.db.Where("user_id = ? AND date >= ? AND date <= ?", userID, from, to).
		Order("date ASC").
		Find(&records).Error
	return records, err
}

// baselineScores returns the scores of the user's active days (score > 0)
// within the trailing 90 days strictly before date.
func (s *ActivityService) baselineScores(userID uint, date string) ([]float64, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		day = time.Now().UTC()
	}
	windowStart := day.AddDate(0, 0, -baselineWindowDays).Format("2006-01-02")

	var scores []float64
	err = s.db.Model(&models.DailyActivity{}).
		Where("user_id = ? AND date >= ? AND date < ? AND score > 0", userID, windowStart, date).
		Pluck("score", &scores).Error
	return scores, err
}

// ComputeScore derives the composite daily score from the raw counters.
func ComputeScore(a models.DailyActivity) float64 {
	return float64(a.TasksCompleted)*taskWeight +
		float64(a.FocusMinutes/focusBlockMinutes) +
		float64(a.HabitsCompleted)*habitWeight +
		float64(a.NotesCreated)*noteWeight +
		float64(a.ScheduleEventsCompleted)*eventWeight
}

// ComputeIntensity maps a score onto the 0-4 heatmap scale.
//
// With fewer than 5 qualifying history days the fixed cold-start thresholds
// apply; otherwise the thresholds scale relative to the mean of the user's
// own recent active days, so casual and power users both see a meaningful
// spread.
func ComputeIntensity(score float64, history []float64) int {
	if score == 0 {
		return 0
	}

	if len(history) < baselineMinSamples {
		switch {
		case score < 3:
			return 1
		case score < 6:
			return 2
		case score < 10:
			return 3
		default:
			return 4
		}
	}

	var sum float64
	for _, s := range history {
		sum += s
	}
	avg := sum / float64(len(history))

	switch {
	case score < avg*0.5:
		return 1
	case score < avg:
		return 2
	case score < avg*1.5:
		return 3
	default:
		return 4
	}
}
