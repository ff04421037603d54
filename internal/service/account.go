package service

import (
	"context"
	"errors"

	"accounts-service/internal/event"
	"accounts-service/internal/model"
	"accounts-service/internal/store"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"
)

// AccountInfo bundles the user and profile returned to the account page.
type AccountInfo struct {
	User    *model.User          `json:"user"`
	Profile *model.ClientProfile `json:"profile,omitempty"`
}

// Account loads the authenticated user's record and profile by session
// email.
func (s *AuthService) Account(ctx context.Context, sessionEmail string) (*AccountInfo, error) {
	user, err := s.store.UserByEmail(ctx, sessionEmail)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		s.log.Error("Account lookup failed", zap.String("email", sessionEmail), zap.Error(err))
		return nil, ErrGeneric
	}

	info := &AccountInfo{User: user}
	profile, err := s.store.ProfileByUserID(ctx, user.ID)
	if err == nil {
		info.Profile = profile
	} else if !errors.Is(err, store.ErrNotFound) {
		s.log.Error("Profile lookup failed", zap.String("email", sessionEmail), zap.Error(err))
		return nil, ErrGeneric
	}
	return info, nil
}

// UpdateAccountInput carries the editable account fields.
type UpdateAccountInput struct {
	Name        string
	DisplayName string
	Bio         string
}

// UpdateAccount re-fetches the user by session email, then runs the storage
// updates alongside the activity log.
func (s *AuthService) UpdateAccount(ctx context.Context, sessionEmail string, in UpdateAccountInput) error {
	user, err := s.store.UserByEmail(ctx, sessionEmail)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrAccountNotFound
		}
		s.log.Error("Update-account lookup failed", zap.String("email", sessionEmail), zap.Error(err))
		return ErrGeneric
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.store.UpdateUserName(gctx, user.ID, in.Name)
	})
	g.Go(func() error {
		return s.store.UpdateProfile(gctx, user.ID, in.DisplayName, in.Bio)
	})
	g.Go(func() error {
		s.events.Emit(event.Event{
			Kind:   event.KindActivity,
			UserID: user.ID,
			Email:  user.Email,
			Action: "account_updated",
		})
		return nil
	})
	if err := g.Wait(); err != nil {
		s.log.Error("Failed to update account", zap.String("email", sessionEmail), zap.Error(err))
		return ErrGeneric
	}
	return nil
}

// DeleteAccount soft-deletes a user after password re-confirmation. The
// activity row is written synchronously before the destructive step, then
// the active provider session is ended. Provider sign-out failure is logged
// only; the local deletion already happened.
func (s *AuthService) DeleteAccount(ctx context.Context, sessionEmail, password, providerName, sessionToken string) error {
	user, err := s.store.UserByEmail(ctx, sessionEmail)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrAccountNotFound
		}
		s.log.Error("Delete-account lookup failed", zap.String("email", sessionEmail), zap.Error(err))
		return ErrGeneric
	}

	account, err := s.store.CredentialsAccount(ctx, user.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrAccountNotFound
		}
		s.log.Error("Delete-account credentials lookup failed", zap.String("email", sessionEmail), zap.Error(err))
		return ErrGeneric
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return ErrInvalidPassword
	}

	// Logged before the destructive step, synchronously
	if err := s.store.CreateActivityLog(ctx, &model.ActivityLog{
		UserID: user.ID,
		Email:  user.Email,
		Action: "account_deleted",
	}); err != nil {
		s.log.Error("Failed to log account deletion", zap.String("email", sessionEmail), zap.Error(err))
		return ErrGeneric
	}

	err = s.store.WithTx(ctx, func(tx store.Store) error {
		if err := tx.SoftDeleteProfile(ctx, user.ID); err != nil {
			return err
		}
		return tx.SoftDeleteUser(ctx, user.ID)
	})
	if err != nil {
		s.log.Error("Failed to delete account", zap.String("email", sessionEmail), zap.Error(err))
		return ErrGeneric
	}

	prov, err := s.newProvider(providerName)
	if err == nil {
		if err := prov.SignOut(ctx, sessionToken); err != nil {
			s.log.Error("Post-deletion sign-out failed", zap.String("email", sessionEmail), zap.Error(err))
		}
	}
	return nil
}
