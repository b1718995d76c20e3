package models

import (
	"time"

	"gorm.io/gorm"
)

// Preferences stores per-user settings embedded on the user row.
type Preferences struct {
	Theme         string `gorm:"size:16;default:dark" json:"theme"`
	PomodoroWork  int    `gorm:"default:25" json:"pomodoro_work"`
	PomodoroBreak int    `gorm:"default:5" json:"pomodoro_break"`
	PomodoroLong  int    `gorm:"default:15" json:"pomodoro_long"`
	WeekStart     string `gorm:"size:8;default:mon" json:"week_start"`
	Timezone      string `gorm:"size:64;default:UTC" json:"timezone"`
}

// Stats holds lifetime aggregate counters maintained by the route handlers
// and consumed by the badge engine.
type Stats struct {
	TotalFocusMinutes int        `gorm:"default:0" json:"total_focus_minutes"`
	TotalPomodoros    int        `gorm:"default:0" json:"total_pomodoros"`
	TasksCompleted    int        `gorm:"default:0" json:"tasks_completed"`
	LongestStreak     int        `gorm:"default:0" json:"longest_streak"`
	CurrentStreak     int        `gorm:"default:0" json:"current_streak"`
	LastActiveDate    *time.Time `json:"last_active_date"`
}

// User represents an account. Passwords are stored as bcrypt hashes only.
type User struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Name           string         `gorm:"size:50;not null" json:"name"`
	Email          string         `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash   string         `gorm:"size:255" json:"-"`
	Bio            string         `gorm:"size:250" json:"bio"`
	AvatarGradient string         `gorm:"size:32;default:purple" json:"avatar_gradient"`
	LoginAttempts  int            `gorm:"default:0" json:"-"`
	LockUntil      *time.Time     `json:"-"`
	LastLoginAt    *time.Time     `json:"-"`
	LastLoginIP    string         `gorm:"size:45" json:"-"`
	Preferences    Preferences    `gorm:"embedded;embeddedPrefix:pref_" json:"preferences"`
	Stats          Stats          `gorm:"embedded;embeddedPrefix:stat_" json:"stats"`
	Badges         []EarnedBadge  `gorm:"foreignKey:UserID" json:"badges,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsLocked reports whether the account is temporarily locked out after
// repeated failed logins.
func (u *User) IsLocked() bool {
	return u.LockUntil != nil && u.LockUntil.After(time.Now())
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

// BeforeUpdate ensures the UpdatedAt timestamp is refreshed.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}
