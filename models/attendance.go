package models

import "time"

// WeeklyAttendance records whether a user attended the weekly group
// meeting. WeekStart is the Monday app-week anchor; at most one row
// exists per (user, week).
type WeeklyAttendance struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index:idx_attendance_user_week,unique" json:"user_id"`
	GroupID     uint      `gorm:"index;not null" json:"group_id"`
	ChallengeID uint      `gorm:"index;not null" json:"challenge_id"`
	WeekStart   time.Time `gorm:"type:date;not null;index:idx_attendance_user_week,unique" json:"week_start"`
	Attended    bool      `json:"attended"`
	MarkedBy    uint      `json:"marked_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
