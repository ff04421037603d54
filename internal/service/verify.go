package service

import (
	"context"
	"errors"
	"time"

	"accounts-service/internal/event"
	"accounts-service/internal/model"
	"accounts-service/internal/store"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// VerifyEmail consumes a verification token: lookup, expiry check, user
// lookup, then mark-verified and token deletion run concurrently. A token
// can only be consumed once; the second attempt fails the lookup.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (*model.User, error) {
	t, err := s.store.VerificationTokenByValue(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		s.log.Error("Verification token lookup failed", zap.Error(err))
		return nil, ErrGeneric
	}
	if t.IsExpired() {
		return nil, ErrTokenExpired
	}

	user, err := s.store.UserByEmail(ctx, t.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		s.log.Error("Verification user lookup failed", zap.String("email", t.Email), zap.Error(err))
		return nil, ErrGeneric
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.store.MarkEmailVerified(gctx, user.ID)
	})
	g.Go(func() error {
		return s.store.DeleteVerificationToken(gctx, t.ID)
	})
	if err := g.Wait(); err != nil {
		s.log.Error("Failed to finalize email verification", zap.String("email", t.Email), zap.Error(err))
		return nil, ErrGeneric
	}

	s.events.Emit(event.Event{
		Kind:   event.KindActivity,
		UserID: user.ID,
		Email:  user.Email,
		Action: "email_verified",
	})
	return user, nil
}

// ResendVerification issues a fresh verification token for an unverified
// user, replacing any live one, and queues the email.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	user, err := s.store.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrAccountNotFound
		}
		s.log.Error("Resend-verification lookup failed", zap.String("email", email), zap.Error(err))
		return ErrGeneric
	}
	if user.IsVerified() {
		return nil
	}

	if err := s.store.DeleteVerificationTokensByEmail(ctx, email); err != nil {
		s.log.Error("Failed to clear previous verification tokens", zap.String("email", email), zap.Error(err))
		return ErrGeneric
	}

	token := &model.VerificationToken{
		Email:     email,
		ExpiresAt: time.Now().Add(s.verificationTTL),
	}
	if err := s.store.CreateVerificationToken(ctx, token); err != nil {
		s.log.Error("Failed to create verification token", zap.String("email", email), zap.Error(err))
		return ErrGeneric
	}

	s.events.Emit(event.Event{
		Kind:  event.KindVerificationEmail,
		Email: email,
		Name:  user.Name,
		Token: token.Token,
	})
	return nil
}
