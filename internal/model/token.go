package model

import (
	"time"

	"gorm.io/gorm"
)

// VerificationToken proves control of an email address. Single use, one hour
// lifetime, at most one live token per email (prior tokens are deleted before
// a new one is issued).
type VerificationToken struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Email     string    `json:"email" gorm:"type:varchar(100);index;not null"`
	Token     string    `json:"-" gorm:"type:varchar(100);uniqueIndex"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate hook will be called before creating a new VerificationToken record
func (t *VerificationToken) BeforeCreate(tx *gorm.DB) (err error) {
	if t.Token == "" {
		t.Token = generateSecureToken()
	}
	return nil
}

// IsExpired checks if the token is expired
func (t *VerificationToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

// PasswordResetToken is the analogous single-use token for password recovery.
type PasswordResetToken struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Email     string    `json:"email" gorm:"type:varchar(100);index;not null"`
	Token     string    `json:"-" gorm:"type:varchar(100);uniqueIndex"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate hook will be called before creating a new PasswordResetToken record
func (t *PasswordResetToken) BeforeCreate(tx *gorm.DB) (err error) {
	if t.Token == "" {
		t.Token = generateSecureToken()
	}
	return nil
}

// IsExpired checks if the token is expired
func (t *PasswordResetToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}
