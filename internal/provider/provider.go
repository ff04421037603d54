// Package provider abstracts session establishment behind a common
// interface so the orchestration layer can run against the built-in JWT
// provider, a remote auth service, or both at once.
package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"accounts-service/internal/model"
	"accounts-service/pkg/config"
)

// Provider names accepted by New.
const (
	NameLocal    = "local"
	NameExternal = "external"
	NameBoth     = "both"
)

// ErrOAuthUnsupported is returned by providers that cannot start a social
// login flow.
var ErrOAuthUnsupported = errors.New("oauth sign-in not supported by this provider")

// Session is an established authentication session.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Provider is the capability set every auth backend exposes. SignIn is only
// called after credentials have been validated against the local database;
// the provider's job is session establishment, not credential checking.
type Provider interface {
	Name() string
	SignIn(ctx context.Context, user *model.User) (*Session, error)
	SignUp(ctx context.Context, email, password string) error
	SignOut(ctx context.Context, token string) error
	OAuthURL(social, redirectTo string) (string, error)
}

// New builds a provider by name. An empty name falls back to the configured
// default.
func New(name string, cfg *config.ProviderConfig) (Provider, error) {
	if name == "" {
		name = cfg.Default
	}

	switch name {
	case NameLocal:
		return &localProvider{}, nil
	case NameExternal:
		return newExternalProvider(cfg), nil
	case NameBoth:
		return &bothProvider{
			external: newExternalProvider(cfg),
			local:    &localProvider{},
		}, nil
	default:
		return nil, fmt.Errorf("unknown auth provider %q", name)
	}
}

// bothProvider registers with the external service first and mints local
// sessions, matching the dual-provider signup order.
type bothProvider struct {
	external *externalProvider
	local    *localProvider
}

func (p *bothProvider) Name() string { return NameBoth }

func (p *bothProvider) SignIn(ctx context.Context, user *model.User) (*Session, error) {
	// The session handed to the caller is always the local one; the external
	// call keeps the remote session state in sync.
	if _, err := p.external.SignIn(ctx, user); err != nil {
		return nil, err
	}
	return p.local.SignIn(ctx, user)
}

func (p *bothProvider) SignUp(ctx context.Context, email, password string) error {
	return p.external.SignUp(ctx, email, password)
}

func (p *bothProvider) SignOut(ctx context.Context, token string) error {
	if err := p.external.SignOut(ctx, token); err != nil {
		return err
	}
	return p.local.SignOut(ctx, token)
}

func (p *bothProvider) OAuthURL(social, redirectTo string) (string, error) {
	return p.external.OAuthURL(social, redirectTo)
}
