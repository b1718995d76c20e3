package models

import (
	"time"

	"gorm.io/gorm"
)

// Note is a free-form user note. Content is sanitized at the controller
// boundary before persisting.
type Note struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"index;not null" json:"user_id"`
	Title        string    `gorm:"size:200;default:Untitled Note" json:"title"`
	Content      string    `gorm:"type:mediumtext" json:"content"`
	Color        string    `gorm:"size:16;default:#1a1a26" json:"color"`
	Tags         []string  `gorm:"serializer:json" json:"tags"`
	IsPinned     bool      `gorm:"default:false" json:"is_pinned"`
	IsArchived   bool      `gorm:"default:false;index:idx_note_user_archived,priority:2" json:"is_archived"`
	LinkedTaskID *uint     `json:"linked_task_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (n *Note) BeforeCreate(tx *gorm.DB) error {
	if n.Tags == nil {
		n.Tags = []string{}
	}
	return nil
}
