package provider

import (
	"context"

	"accounts-service/internal/model"
	"accounts-service/pkg/jwtutil"
)

// localProvider mints HS256 session tokens directly. Sessions are stateless,
// so SignUp and SignOut have nothing to do here.
type localProvider struct{}

func (p *localProvider) Name() string { return NameLocal }

func (p *localProvider) SignIn(ctx context.Context, user *model.User) (*Session, error) {
	token, err := jwtutil.GenerateToken(user.Email, user.ID, user.Role)
	if err != nil {
		return nil, err
	}

	claims, err := jwtutil.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	return &Session{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (p *localProvider) SignUp(ctx context.Context, email, password string) error {
	return nil
}

func (p *localProvider) SignOut(ctx context.Context, token string) error {
	return nil
}

func (p *localProvider) OAuthURL(social, redirectTo string) (string, error) {
	return "", ErrOAuthUnsupported
}
