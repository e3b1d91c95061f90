package models

import "time"

// CheckIn stores one daily habit self-report per user and app day.
// CheckinDay holds the app-day anchor date; the composite unique index
// with UserID is the enforcement mechanism for the one-per-day rule,
// regardless of what the application-level lookup observed first.
//
// No soft delete: the only delete paths are explicit admin action and
// the account cascade, and both must free the (user, day) slot in the
// unique index so the day can be submitted again. A deleted_at column
// would keep the slot occupied (MySQL unique indexes admit multiple
// NULLs, so including it in the index does not help either).
type CheckIn struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"not null;index:idx_checkin_user_day,unique" json:"user_id"`
	GroupID         uint      `gorm:"index;not null" json:"group_id"`
	ChallengeID     uint      `gorm:"index;not null" json:"challenge_id"`
	Date            time.Time `gorm:"index;not null" json:"date"`
	CheckinDay      time.Time `gorm:"type:date;not null;index:idx_checkin_user_day,unique" json:"checkin_day"`
	Nutrition       bool      `json:"nutrition"`
	Hydration       bool      `json:"hydration"`
	Movement        bool      `json:"movement"`
	Scripture       bool      `json:"scripture"`
	Notes           string    `gorm:"type:text" json:"notes"`
	PhotoURL        string    `gorm:"size:512" json:"photo_url"`
	WorkoutLog      string    `gorm:"type:text" json:"workout_log"`
	WorkoutAnalysis string    `gorm:"type:text" json:"workout_analysis"` // opaque JSON from the analyzer
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
