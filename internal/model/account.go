package model

import (
	"time"

	"gorm.io/gorm"
)

// ProviderCredentials is the email/password provider name stored on Account
// rows; OAuth accounts carry the social provider name instead.
const ProviderCredentials = "credentials"

// Account links a User to an auth provider. One row per (user, provider).
// The password hash is only set for the credentials provider and is never
// exposed in JSON responses.
type Account struct {
	ID                uint           `json:"id" gorm:"primaryKey"`
	UserID            uint           `json:"user_id" gorm:"index:idx_accounts_user_provider,unique;not null"`
	Provider          string         `json:"provider" gorm:"type:varchar(50);index:idx_accounts_user_provider,unique;not null"`
	ProviderAccountID string         `json:"provider_account_id" gorm:"type:varchar(100)"`
	PasswordHash      string         `json:"-" gorm:"type:varchar(255)"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `json:"-" gorm:"index"`
}
