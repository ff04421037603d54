// Package service implements the credential orchestration flows: sign-in,
// sign-up, password lifecycle, email verification, and account mutation.
// Credential checks run against the local database before any provider is
// asked for a session, so precise error codes survive.
package service

import (
	"context"
	"errors"
	"time"

	"accounts-service/internal/event"
	"accounts-service/internal/model"
	"accounts-service/internal/provider"
	"accounts-service/internal/store"
	"accounts-service/pkg/config"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"
)

// Post-login redirect targets by user role.
const (
	RedirectAdmin  = "/admin"
	RedirectClient = "/dashboard"
)

// EventSink receives deferred side effects. The production sink is the
// background dispatcher.
type EventSink interface {
	Emit(e event.Event)
}

// ProviderFactory builds an auth provider by name.
type ProviderFactory func(name string) (provider.Provider, error)

// AuthService orchestrates all account flows over the store, the provider
// factory, and the event sink.
type AuthService struct {
	store            store.Store
	events           EventSink
	newProvider      ProviderFactory
	log              *zap.Logger
	verificationTTL  time.Duration
	passwordResetTTL time.Duration
	bcryptCost       int
}

// NewAuthService wires the orchestrator.
func NewAuthService(st store.Store, events EventSink, providers ProviderFactory, cfg *config.Config, log *zap.Logger) *AuthService {
	return &AuthService{
		store:            st,
		events:           events,
		newProvider:      providers,
		log:              log,
		verificationTTL:  cfg.Token.VerificationTTL,
		passwordResetTTL: cfg.Token.PasswordResetTTL,
		bcryptCost:       bcrypt.DefaultCost,
	}
}

// SignInInput carries the sign-in form fields.
type SignInInput struct {
	Email    string
	Password string
	Provider string
}

// SignInResult is returned on successful sign-in.
type SignInResult struct {
	RedirectTo string
	Session    *provider.Session
	User       *model.User
}

// SignIn validates credentials against the database, then delegates session
// establishment to the chosen provider. Expected failures map to
// ACCOUNT_NOT_FOUND, INVALID_PASSWORD and PROFILE_NOT_FOUND; provider
// failures collapse to GENERIC_ERROR.
func (s *AuthService) SignIn(ctx context.Context, in SignInInput) (*SignInResult, error) {
	user, err := s.store.UserByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		s.log.Error("Sign-in user lookup failed", zap.String("email", in.Email), zap.Error(err))
		return nil, ErrGeneric
	}

	account, err := s.store.CredentialsAccount(ctx, user.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		s.log.Error("Sign-in account lookup failed", zap.String("email", in.Email), zap.Error(err))
		return nil, ErrGeneric
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(in.Password)); err != nil {
		return nil, ErrInvalidPassword
	}

	redirect := RedirectAdmin
	if user.Role != model.RoleAdmin {
		if _, err := s.store.ProfileByUserID(ctx, user.ID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, ErrProfileNotFound
			}
			s.log.Error("Sign-in profile lookup failed", zap.String("email", in.Email), zap.Error(err))
			return nil, ErrGeneric
		}
		redirect = RedirectClient
	}

	prov, err := s.newProvider(in.Provider)
	if err != nil {
		s.log.Error("Unknown provider requested", zap.String("provider", in.Provider), zap.Error(err))
		return nil, ErrGeneric
	}

	session, err := prov.SignIn(ctx, user)
	if err != nil {
		s.log.Error("Provider sign-in failed",
			zap.String("provider", prov.Name()),
			zap.String("email", in.Email),
			zap.Error(err))
		return nil, ErrGeneric
	}

	s.events.Emit(event.Event{
		Kind:   event.KindActivity,
		UserID: user.ID,
		Email:  user.Email,
		Action: "sign_in",
		Detail: "signed in via " + prov.Name(),
	})

	return &SignInResult{RedirectTo: redirect, Session: session, User: user}, nil
}

// SignUpInput carries the sign-up form fields.
type SignUpInput struct {
	Name     string
	Email    string
	Password string
	Provider string
}

// SignUpResult is returned on successful sign-up. Session may be nil when
// the immediate post-signup sign-in could not be established.
type SignUpResult struct {
	User     *model.User
	Username string
	Session  *provider.Session
}

// SignUp hashes the password and checks for a duplicate email concurrently,
// registers with the external provider when one is selected, then persists
// user, profile, credentials account and verification token in a single
// transaction. Activity logging and email dispatch happen fire-and-forget
// afterwards, followed by a non-redirecting sign-in.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (*SignUpResult, error) {
	var passwordHash []byte
	var duplicate bool

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		passwordHash, err = bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
		return err
	})
	g.Go(func() error {
		_, err := s.store.UserByEmail(gctx, in.Email)
		if err == nil {
			duplicate = true
			return nil
		}
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Error("Sign-up precheck failed", zap.String("email", in.Email), zap.Error(err))
		return nil, ErrGeneric
	}
	if duplicate {
		return nil, ErrEmailExists
	}

	prov, err := s.newProvider(in.Provider)
	if err != nil {
		s.log.Error("Unknown provider requested", zap.String("provider", in.Provider), zap.Error(err))
		return nil, ErrGeneric
	}

	// External registration happens before local persistence
	if prov.Name() != provider.NameLocal {
		if err := prov.SignUp(ctx, in.Email, in.Password); err != nil {
			s.log.Error("Provider sign-up failed",
				zap.String("provider", prov.Name()),
				zap.String("email", in.Email),
				zap.Error(err))
			return nil, ErrGeneric
		}
	}

	user := &model.User{
		Email: in.Email,
		Name:  in.Name,
		Role:  model.RoleClient,
	}
	var username string
	var verification *model.VerificationToken

	err = s.store.WithTx(ctx, func(tx store.Store) error {
		if err := tx.CreateUser(ctx, user); err != nil {
			return err
		}

		var err error
		username, err = allocateUsername(ctx, tx, in.Email)
		if err != nil {
			return err
		}

		profile := &model.ClientProfile{
			UserID:      user.ID,
			DisplayName: in.Name,
			Username:    username,
		}
		if err := tx.CreateProfile(ctx, profile); err != nil {
			return err
		}

		account := &model.Account{
			UserID:       user.ID,
			Provider:     model.ProviderCredentials,
			PasswordHash: string(passwordHash),
		}
		if err := tx.CreateAccount(ctx, account); err != nil {
			return err
		}

		if err := tx.DeleteVerificationTokensByEmail(ctx, in.Email); err != nil {
			return err
		}
		verification = &model.VerificationToken{
			Email:     in.Email,
			ExpiresAt: time.Now().Add(s.verificationTTL),
		}
		return tx.CreateVerificationToken(ctx, verification)
	})
	if err != nil {
		if errors.Is(err, ErrUsernameExhausted) {
			return nil, ErrUsernameExhausted
		}
		s.log.Error("Sign-up transaction failed", zap.String("email", in.Email), zap.Error(err))
		return nil, ErrGeneric
	}

	s.events.Emit(event.Event{
		Kind:   event.KindActivity,
		UserID: user.ID,
		Email:  user.Email,
		Action: "sign_up",
		Detail: "registered via " + prov.Name(),
	})
	s.events.Emit(event.Event{
		Kind:  event.KindVerificationEmail,
		Email: user.Email,
		Name:  user.Name,
		Token: verification.Token,
	})

	result := &SignUpResult{User: user, Username: username}

	// Establish a session immediately; a failure here does not undo the signup
	session, err := prov.SignIn(ctx, user)
	if err != nil {
		s.log.Error("Post-signup sign-in failed", zap.String("email", user.Email), zap.Error(err))
		return result, nil
	}
	result.Session = session
	return result, nil
}

// SignOut ends the session with the provider that created it.
func (s *AuthService) SignOut(ctx context.Context, providerName, token string) error {
	prov, err := s.newProvider(providerName)
	if err != nil {
		return ErrGeneric
	}
	if err := prov.SignOut(ctx, token); err != nil {
		s.log.Error("Provider sign-out failed", zap.String("provider", prov.Name()), zap.Error(err))
		return ErrGeneric
	}
	return nil
}

// OAuthURL starts a social login flow via the chosen provider.
func (s *AuthService) OAuthURL(providerName, social, redirectTo string) (string, error) {
	prov, err := s.newProvider(providerName)
	if err != nil {
		return "", ErrGeneric
	}
	return prov.OAuthURL(social, redirectTo)
}
