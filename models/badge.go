package models

import "time"

// Badge tiers in ascending order of prestige.
const (
	TierBronze   = "bronze"
	TierSilver   = "silver"
	TierGold     = "gold"
	TierPlatinum = "platinum"
)

// EarnedBadge is one awarded achievement. Rows are append-only: a badge is
// never revoked, and the composite unique index makes re-grants impossible
// even under concurrent award passes.
type EarnedBadge struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	UserID      uint      `gorm:"uniqueIndex:idx_user_badge;not null" json:"-"`
	BadgeID     string    `gorm:"size:32;uniqueIndex:idx_user_badge;not null" json:"id"`
	Name        string    `gorm:"size:64" json:"name"`
	Description string    `gorm:"size:255" json:"description"`
	Icon        string    `gorm:"size:16" json:"icon"`
	Tier        string    `gorm:"size:16;default:bronze" json:"tier"`
	EarnedAt    time.Time `json:"earned_at"`
}
