package models

import (
	"time"

	"gorm.io/gorm"
)

// ScheduleEvent is a calendar entry for a specific date.
type ScheduleEvent struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"index:idx_event_user_date,priority:1;not null" json:"user_id"`
	Title         string    `gorm:"size:200;not null" json:"title"`
	Description   string    `gorm:"size:1000" json:"description"`
	Date          string    `gorm:"size:10;not null;index:idx_event_user_date,priority:2" json:"date"` // YYYY-MM-DD
	StartTime     string    `gorm:"size:8;not null" json:"start_time"`
	EndTime       string    `gorm:"size:8" json:"end_time"`
	Color         string    `gorm:"size:16;default:#7c6dfa" json:"color"`
	Category      string    `gorm:"size:16;default:other" json:"category"`
	IsRecurring   bool      `gorm:"default:false" json:"is_recurring"`
	RecurringDays []int     `gorm:"serializer:json" json:"recurring_days"`
	IsCompleted   bool      `gorm:"default:false" json:"is_completed"`
	Reminder      *int      `json:"reminder"` // minutes before
	LinkedTaskID  *uint     `json:"linked_task_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (e *ScheduleEvent) BeforeCreate(tx *gorm.DB) error {
	if e.RecurringDays == nil {
		e.RecurringDays = []int{}
	}
	return nil
}
