package model

import (
	"time"

	"gorm.io/gorm"
)

// User roles drive the post-login redirect target.
const (
	RoleAdmin  = "admin"
	RoleClient = "client"
)

// User represents the identity record, keyed by email. Account deletion is a
// soft delete; the row is kept with DeletedAt set.
type User struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	Email           string         `json:"email" gorm:"type:varchar(100);uniqueIndex"`
	Name            string         `json:"name" gorm:"type:varchar(100)"`
	Role            string         `json:"role" gorm:"type:varchar(20);not null;default:'client'"`
	EmailVerifiedAt *time.Time     `json:"email_verified_at,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"-" gorm:"index"`
}

// IsVerified reports whether the user has confirmed their email address
func (u *User) IsVerified() bool {
	return u.EmailVerifiedAt != nil
}
