package models

import (
	"time"

	"gorm.io/gorm"
)

// Role constants used by the authorization policy.
const (
	RoleUser   = "user"
	RoleLeader = "leader"
	RoleAdmin  = "admin"
)

// User represents a challenge participant. Passwords are stored as bcrypt hashes only.
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"size:64;not null;uniqueIndex" json:"username"`
	Email        string         `gorm:"size:255" json:"email"`
	PasswordHash string         `gorm:"size:255" json:"-"`
	DisplayName  string         `gorm:"size:64" json:"display_name"`
	Role         string         `gorm:"size:16;default:'user'" json:"role"`
	GroupID      *uint          `gorm:"index" json:"group_id"`
	AvatarURL    string         `gorm:"size:512" json:"avatar_url"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	CheckIns     []CheckIn      `json:"-"`
	Posts        []Post         `json:"-"`
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

// IsStaff reports whether the user holds a privileged role.
func (u *User) IsStaff() bool {
	return u.Role == RoleLeader || u.Role == RoleAdmin
}
