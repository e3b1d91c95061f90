package models

import "time"

// Group is the membership boundary: every user belongs to at most one
// group, and a group is attached to at most one challenge at a time.
type Group struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Name        string     `gorm:"size:128;not null" json:"name"`
	ChallengeID *uint      `gorm:"index" json:"challenge_id"`
	LeaderID    *uint      `json:"leader_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Challenge   *Challenge `json:"challenge,omitempty"`
	Members     []User     `json:"-"`
}
