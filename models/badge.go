package models

import "time"

// UserBadge marks an achievement earned by a user. The unique index on
// (user_id, badge_type) guarantees at-most-once awarding even if two
// evaluations race.
type UserBadge struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index:idx_badge_user_type,unique" json:"user_id"`
	BadgeType string    `gorm:"size:32;not null;index:idx_badge_user_type,unique" json:"badge_type"`
	AwardedAt time.Time `gorm:"not null" json:"awarded_at"`
	CreatedAt time.Time `json:"created_at"`
}
