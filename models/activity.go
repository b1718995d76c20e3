package models

import "time"

// DailyActivity aggregates one user's qualifying actions for one calendar
// day (YYYY-MM-DD, server-side UTC boundary). At most one row exists per
// (user, date); counters only ever grow, and score/intensity are derived
// from the final counter values on every write.
type DailyActivity struct {
	ID                      uint      `gorm:"primaryKey" json:"id"`
	UserID                  uint      `gorm:"uniqueIndex:idx_user_date;not null" json:"user_id"`
	Date                    string    `gorm:"size:10;uniqueIndex:idx_user_date;not null" json:"date"`
	TasksCompleted          int       `gorm:"default:0" json:"tasks_completed"`
	FocusMinutes            int       `gorm:"default:0" json:"focus_minutes"`
	Pomodoros               int       `gorm:"default:0" json:"pomodoros"`
	HabitsCompleted         int       `gorm:"default:0" json:"habits_completed"`
	NotesCreated            int       `gorm:"default:0" json:"notes_created"`
	ScheduleEventsCompleted int       `gorm:"default:0" json:"schedule_events_completed"`
	Score                   float64   `gorm:"default:0" json:"score"`
	Intensity               int       `gorm:"default:0" json:"intensity"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}
