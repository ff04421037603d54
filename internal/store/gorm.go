package store

import (
	"context"
	"errors"
	"time"

	"accounts-service/internal/model"
	"accounts-service/prometheus"

	"gorm.io/gorm"
)

type gormStore struct {
	db *gorm.DB
}

// New returns a Store backed by the given GORM database handle.
func New(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) WithTx(ctx context.Context, fn func(Store) error) error {
	defer prometheus.TrackDBOperation("transaction")(time.Now())
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

func wrapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// --- users ---

func (s *gormStore) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	defer prometheus.TrackDBOperation("user_by_email")(time.Now())
	var user model.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &user, nil
}

func (s *gormStore) CreateUser(ctx context.Context, u *model.User) error {
	defer prometheus.TrackDBOperation("create_user")(time.Now())
	return s.db.WithContext(ctx).Create(u).Error
}

func (s *gormStore) UpdateUserName(ctx context.Context, userID uint, name string) error {
	return s.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).
		Update("name", name).Error
}

func (s *gormStore) MarkEmailVerified(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).
		Update("email_verified_at", time.Now()).Error
}

func (s *gormStore) SoftDeleteUser(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).Delete(&model.User{}, userID).Error
}

// --- profiles ---

func (s *gormStore) ProfileByUserID(ctx context.Context, userID uint) (*model.ClientProfile, error) {
	var profile model.ClientProfile
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &profile, nil
}

func (s *gormStore) CreateProfile(ctx context.Context, p *model.ClientProfile) error {
	return s.db.WithContext(ctx).Create(p).Error
}

func (s *gormStore) UpdateProfile(ctx context.Context, userID uint, displayName, bio string) error {
	return s.db.WithContext(ctx).Model(&model.ClientProfile{}).Where("user_id = ?", userID).
		Updates(map[string]interface{}{"display_name": displayName, "bio": bio}).Error
}

func (s *gormStore) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.ClientProfile{}).
		Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

func (s *gormStore) SoftDeleteProfile(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).Where("user_id = ?", userID).
		Delete(&model.ClientProfile{}).Error
}

// --- accounts ---

func (s *gormStore) CredentialsAccount(ctx context.Context, userID uint) (*model.Account, error) {
	var account model.Account
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND provider = ?", userID, model.ProviderCredentials).
		First(&account).Error
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &account, nil
}

func (s *gormStore) CreateAccount(ctx context.Context, a *model.Account) error {
	return s.db.WithContext(ctx).Create(a).Error
}

func (s *gormStore) UpdateAccountPassword(ctx context.Context, userID uint, passwordHash string) error {
	return s.db.WithContext(ctx).Model(&model.Account{}).
		Where("user_id = ? AND provider = ?", userID, model.ProviderCredentials).
		Update("password_hash", passwordHash).Error
}

// --- verification tokens ---

func (s *gormStore) VerificationTokenByValue(ctx context.Context, token string) (*model.VerificationToken, error) {
	var t model.VerificationToken
	if err := s.db.WithContext(ctx).Where("token = ?", token).First(&t).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &t, nil
}

func (s *gormStore) CreateVerificationToken(ctx context.Context, t *model.VerificationToken) error {
	return s.db.WithContext(ctx).Create(t).Error
}

func (s *gormStore) DeleteVerificationTokensByEmail(ctx context.Context, email string) error {
	return s.db.WithContext(ctx).Where("email = ?", email).
		Delete(&model.VerificationToken{}).Error
}

func (s *gormStore) DeleteVerificationToken(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&model.VerificationToken{}, id).Error
}

// --- password reset tokens ---

func (s *gormStore) ResetTokenByValue(ctx context.Context, token string) (*model.PasswordResetToken, error) {
	var t model.PasswordResetToken
	if err := s.db.WithContext(ctx).Where("token = ?", token).First(&t).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &t, nil
}

func (s *gormStore) CreateResetToken(ctx context.Context, t *model.PasswordResetToken) error {
	return s.db.WithContext(ctx).Create(t).Error
}

func (s *gormStore) DeleteResetTokensByEmail(ctx context.Context, email string) error {
	return s.db.WithContext(ctx).Where("email = ?", email).
		Delete(&model.PasswordResetToken{}).Error
}

func (s *gormStore) DeleteResetToken(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&model.PasswordResetToken{}, id).Error
}

// --- activity log ---

func (s *gormStore) CreateActivityLog(ctx context.Context, l *model.ActivityLog) error {
	defer prometheus.TrackDBOperation("create_activity_log")(time.Now())
	return s.db.WithContext(ctx).Create(l).Error
}
