package models

import "time"

// BodyMetric stores a body composition entry, either user-submitted or
// backfilled from a scan extraction. Weight history feeds the
// weight-loss badge.
type BodyMetric struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"index;not null" json:"user_id"`
	RecordedAt time.Time `gorm:"index;not null" json:"recorded_at"`
	WeightLbs  float64   `gorm:"not null" json:"weight_lbs"`
	BodyFatPct *float64  `json:"body_fat_pct,omitempty"`
	MuscleLbs  *float64  `json:"muscle_lbs,omitempty"`
	Source     string    `gorm:"size:32;default:'manual'" json:"source"`
	CreatedAt  time.Time `json:"created_at"`
}
