package models

import "time"

// PointAdjustment is an append-only ledger entry created by admins.
// Rows are never updated or deleted; the table is the audit trail for
// every manual scoring correction.
type PointAdjustment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	GroupID     uint      `gorm:"index;not null" json:"group_id"`
	ChallengeID uint      `gorm:"index;not null" json:"challenge_id"`
	Date        time.Time `gorm:"index;not null" json:"date"`
	PointsDelta int       `gorm:"not null" json:"points_delta"`
	Reason      string    `gorm:"size:255;not null" json:"reason"`
	Category    string    `gorm:"size:32" json:"category"`
	AdjustedBy  uint      `gorm:"not null" json:"adjusted_by"`
	CreatedAt   time.Time `json:"created_at"`
}
