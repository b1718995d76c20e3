package models

import "time"

// Pomodoro session types.
const (
	PomodoroWork       = "work"
	PomodoroShortBreak = "short-break"
	PomodoroLongBreak  = "long-break"
)

// Pomodoro is one timer session. Only completed work sessions feed the
// activity and badge engines.
type Pomodoro struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	UserID         uint       `gorm:"index;not null" json:"user_id"`
	Type           string     `gorm:"size:16;not null" json:"type"`
	Duration       int        `gorm:"not null" json:"duration"`  // planned, minutes
	ActualDuration *int       `json:"actual_duration"`           // elapsed, seconds
	LinkedTaskID   *uint      `json:"linked_task_id"`
	Note           string     `gorm:"size:500" json:"note"`
	Completed      bool       `gorm:"default:false" json:"completed"`
	StartedAt      *time.Time `json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at"`
	Date           string     `gorm:"size:10;index:idx_pomo_user_date,priority:2" json:"date"` // YYYY-MM-DD
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
