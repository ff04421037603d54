package service

import (
	"context"
	"errors"
	"time"

	"accounts-service/internal/event"
	"accounts-service/internal/model"
	"accounts-service/internal/store"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"
)

// ForgotPassword issues a reset token when the email belongs to a user.
// It reports success either way so the endpoint cannot be used to probe
// which emails are registered.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.store.UserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.log.Error("Forgot-password lookup failed", zap.String("email", email), zap.Error(err))
		}
		return nil
	}

	if err := s.store.DeleteResetTokensByEmail(ctx, email); err != nil {
		s.log.Error("Failed to clear previous reset tokens", zap.String("email", email), zap.Error(err))
		return ErrGeneric
	}

	token := &model.PasswordResetToken{
		Email:     email,
		ExpiresAt: time.Now().Add(s.passwordResetTTL),
	}
	if err := s.store.CreateResetToken(ctx, token); err != nil {
		s.log.Error("Failed to create reset token", zap.String("email", email), zap.Error(err))
		return ErrGeneric
	}

	s.events.Emit(event.Event{
		Kind:  event.KindPasswordResetEmail,
		Email: email,
		Name:  user.Name,
		Token: token.Token,
	})
	s.events.Emit(event.Event{
		Kind:   event.KindActivity,
		UserID: user.ID,
		Email:  email,
		Action: "password_reset_requested",
	})
	return nil
}

// VerifyResetToken checks existence and expiry of a reset token.
func (s *AuthService) VerifyResetToken(ctx context.Context, token string) (*model.PasswordResetToken, error) {
	t, err := s.store.ResetTokenByValue(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		s.log.Error("Reset token lookup failed", zap.Error(err))
		return nil, ErrGeneric
	}
	if t.IsExpired() {
		return nil, ErrTokenExpired
	}
	return t, nil
}

// ResetPassword re-verifies the token, stores the new password hash, deletes
// the consumed token, and logs the activity. The steps run sequentially, not
// in one transaction; the token expiry bounds the window a crash can leave a
// consumed token behind.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	t, err := s.VerifyResetToken(ctx, token)
	if err != nil {
		return err
	}

	user, err := s.store.UserByEmail(ctx, t.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrAccountNotFound
		}
		s.log.Error("Reset-password user lookup failed", zap.String("email", t.Email), zap.Error(err))
		return ErrGeneric
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		s.log.Error("Failed to hash password", zap.Error(err))
		return ErrGeneric
	}

	if err := s.store.UpdateAccountPassword(ctx, user.ID, string(hash)); err != nil {
		s.log.Error("Failed to update password", zap.String("email", t.Email), zap.Error(err))
		return ErrGeneric
	}

	if err := s.store.DeleteResetToken(ctx, t.ID); err != nil {
		s.log.Error("Failed to delete consumed reset token", zap.String("email", t.Email), zap.Error(err))
		return ErrGeneric
	}

	s.events.Emit(event.Event{
		Kind:   event.KindActivity,
		UserID: user.ID,
		Email:  user.Email,
		Action: "password_reset",
	})
	return nil
}

// UpdatePassword changes the password of an authenticated user. The user is
// re-fetched by session email, the current password re-confirmed, and the
// storage update runs alongside the activity log.
func (s *AuthService) UpdatePassword(ctx context.Context, sessionEmail, currentPassword, newPassword string) error {
	user, err := s.store.UserByEmail(ctx, sessionEmail)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrAccountNotFound
		}
		s.log.Error("Update-password user lookup failed", zap.String("email", sessionEmail), zap.Error(err))
		return ErrGeneric
	}

	account, err := s.store.CredentialsAccount(ctx, user.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrAccountNotFound
		}
		s.log.Error("Update-password account lookup failed", zap.String("email", sessionEmail), zap.Error(err))
		return ErrGeneric
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		s.log.Error("Failed to hash password", zap.Error(err))
		return ErrGeneric
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.store.UpdateAccountPassword(gctx, user.ID, string(hash))
	})
	g.Go(func() error {
		s.events.Emit(event.Event{
			Kind:   event.KindActivity,
			UserID: user.ID,
			Email:  user.Email,
			Action: "password_changed",
		})
		return nil
	})
	if err := g.Wait(); err != nil {
		s.log.Error("Failed to update password", zap.String("email", sessionEmail), zap.Error(err))
		return ErrGeneric
	}
	return nil
}
