package models

import (
	"time"

	"gorm.io/gorm"
)

// HabitCompletion marks one completed day, stored as JSON on the habit row.
type HabitCompletion struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
	Note  string `json:"note"`
}

// Streak tracks consecutive-day completion runs for a habit.
type Streak struct {
	Current           int    `gorm:"default:0" json:"current"`
	Longest           int    `gorm:"default:0" json:"longest"`
	LastCompletedDate string `gorm:"size:10" json:"last_completed_date"`
}

// Habit is a recurring practice the user checks off per day.
type Habit struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	UserID      uint              `gorm:"index;not null" json:"user_id"`
	Name        string            `gorm:"size:100;not null" json:"name"`
	Description string            `gorm:"size:500" json:"description"`
	Color       string            `gorm:"size:16;default:#7c6dfa" json:"color"`
	Icon        string            `gorm:"size:16;default:⭐" json:"icon"`
	Frequency   string            `gorm:"size:16;default:daily" json:"frequency"`
	CustomDays  []int             `gorm:"serializer:json" json:"custom_days"` // 0=Sun .. 6=Sat
	TargetCount int               `gorm:"default:1" json:"target_count"`
	Unit        string            `gorm:"size:20;default:times" json:"unit"`
	Completions []HabitCompletion `gorm:"serializer:json" json:"completions"`
	Streak      Streak            `gorm:"embedded;embeddedPrefix:streak_" json:"streak"`
	IsActive    bool              `gorm:"default:true;index:idx_habit_user_active,priority:2" json:"is_active"`
	StartDate   time.Time         `json:"start_date"`
	Order       int               `gorm:"column:sort_order;default:0" json:"order"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// BeforeCreate fills defaults for serialized columns and the start date.
func (h *Habit) BeforeCreate(tx *gorm.DB) error {
	if h.Completions == nil {
		h.Completions = []HabitCompletion{}
	}
	if h.CustomDays == nil {
		h.CustomDays = []int{}
	}
	if h.StartDate.IsZero() {
		h.StartDate = time.Now()
	}
	return nil
}
