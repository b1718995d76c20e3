package models

import (
	"time"

	"gorm.io/gorm"
)

// Task statuses.
const (
	TaskPending    = "pending"
	TaskInProgress = "in-progress"
	TaskCompleted  = "completed"
	TaskCancelled  = "cancelled"
)

// Subtask is a checklist item embedded in a task, stored as JSON.
type Subtask struct {
	Title       string     `json:"title"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at"`
}

// Task is a user-owned todo item.
type Task struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	UserID           uint       `gorm:"index;not null" json:"user_id"`
	Title            string     `gorm:"size:200;not null" json:"title"`
	Description      string     `gorm:"size:1000" json:"description"`
	Priority         string     `gorm:"size:16;default:medium;index:idx_task_user_priority,priority:2" json:"priority"`
	Status           string     `gorm:"size:16;default:pending;index:idx_task_user_status,priority:2" json:"status"`
	Category         string     `gorm:"size:50;default:General" json:"category"`
	Tags             []string   `gorm:"serializer:json" json:"tags"`
	DueDate          *time.Time `gorm:"index" json:"due_date"`
	DueTime          string     `gorm:"size:8" json:"due_time"`
	CompletedAt      *time.Time `json:"completed_at"`
	EstimatedMinutes *int       `json:"estimated_minutes"`
	ActualMinutes    *int       `json:"actual_minutes"`
	Subtasks         []Subtask  `gorm:"serializer:json" json:"subtasks"`
	PomodorosCount   int        `gorm:"default:0" json:"pomodoros_count"`
	IsRecurring      bool       `gorm:"default:false" json:"is_recurring"`
	RecurringPattern string     `gorm:"size:16" json:"recurring_pattern"`
	Order            int        `gorm:"column:sort_order;default:0" json:"order"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// BeforeCreate keeps serialized slice columns non-null for clean JSON output.
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.Tags == nil {
		t.Tags = []string{}
	}
	if t.Subtasks == nil {
		t.Subtasks = []Subtask{}
	}
	return nil
}
