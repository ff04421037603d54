package store

import (
	"context"
	"errors"

	"accounts-service/internal/model"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// Store is the persistence interface the services are written against.
// The production implementation is GORM over PostgreSQL; tests substitute
// in-memory fakes.
type Store interface {
	// WithTx runs fn inside a single database transaction. The Store passed
	// to fn routes every call through that transaction; returning an error
	// rolls everything back.
	WithTx(ctx context.Context, fn func(Store) error) error

	UserByEmail(ctx context.Context, email string) (*model.User, error)
	CreateUser(ctx context.Context, u *model.User) error
	UpdateUserName(ctx context.Context, userID uint, name string) error
	MarkEmailVerified(ctx context.Context, userID uint) error
	SoftDeleteUser(ctx context.Context, userID uint) error

	ProfileByUserID(ctx context.Context, userID uint) (*model.ClientProfile, error)
	CreateProfile(ctx context.Context, p *model.ClientProfile) error
	UpdateProfile(ctx context.Context, userID uint, displayName, bio string) error
	UsernameTaken(ctx context.Context, username string) (bool, error)
	SoftDeleteProfile(ctx context.Context, userID uint) error

	CredentialsAccount(ctx context.Context, userID uint) (*model.Account, error)
	CreateAccount(ctx context.Context, a *model.Account) error
	UpdateAccountPassword(ctx context.Context, userID uint, passwordHash string) error

	VerificationTokenByValue(ctx context.Context, token string) (*model.VerificationToken, error)
	CreateVerificationToken(ctx context.Context, t *model.VerificationToken) error
	DeleteVerificationTokensByEmail(ctx context.Context, email string) error
	DeleteVerificationToken(ctx context.Context, id uint) error

	ResetTokenByValue(ctx context.Context, token string) (*model.PasswordResetToken, error)
	CreateResetToken(ctx context.Context, t *model.PasswordResetToken) error
	DeleteResetTokensByEmail(ctx context.Context, email string) error
	DeleteResetToken(ctx context.Context, id uint) error

	CreateActivityLog(ctx context.Context, l *model.ActivityLog) error
}
