package model

import (
	"time"

	"gorm.io/gorm"
)

// ClientProfile is the one-to-one public profile created transactionally
// alongside a User. Username is unique across all profiles.
type ClientProfile struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	UserID      uint           `json:"user_id" gorm:"uniqueIndex;not null"`
	DisplayName string         `json:"display_name" gorm:"type:varchar(100)"`
	Username    string         `json:"username" gorm:"type:varchar(100);uniqueIndex"`
	Bio         string         `json:"bio" gorm:"type:text"`
	Plan        string         `json:"plan" gorm:"type:varchar(50);not null;default:'free'"`
	AccountType string         `json:"account_type" gorm:"type:varchar(50);not null;default:'personal'"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
