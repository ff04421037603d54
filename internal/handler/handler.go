// Package handler exposes the auth orchestration flows as HTTP endpoints.
// Each endpoint returns a discriminated JSON result: {"success":true,...}
// or {"error":...} with the submitted email echoed back, so form clients
// can render failures inline.
package handler

import (
	"context"
	"errors"
	"net/http"

	"accounts-service/internal/model"
	"accounts-service/internal/service"

	"github.com/labstack/echo/v4"
)

// AuthService is the orchestration surface the handlers call into,
// implemented by *service.AuthService.
type AuthService interface {
	SignIn(ctx context.Context, in service.SignInInput) (*service.SignInResult, error)
	SignUp(ctx context.Context, in service.SignUpInput) (*service.SignUpResult, error)
	SignOut(ctx context.Context, providerName, token string) error
	OAuthURL(providerName, social, redirectTo string) (string, error)
	ForgotPassword(ctx context.Context, email string) error
	VerifyResetToken(ctx context.Context, token string) (*model.PasswordResetToken, error)
	ResetPassword(ctx context.Context, token, newPassword string) error
	UpdatePassword(ctx context.Context, sessionEmail, currentPassword, newPassword string) error
	VerifyEmail(ctx context.Context, token string) (*model.User, error)
	ResendVerification(ctx context.Context, email string) error
	Account(ctx context.Context, sessionEmail string) (*service.AccountInfo, error)
	UpdateAccount(ctx context.Context, sessionEmail string, in service.UpdateAccountInput) error
	DeleteAccount(ctx context.Context, sessionEmail, password, providerName, sessionToken string) error
}

// CaptchaVerifier checks client CAPTCHA tokens.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) (bool, error)
}

// AttemptLimiter throttles repeated attempts per key.
type AttemptLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// respondError converts a service error to the inline JSON error result.
// extra fields (echoed input) are merged into the body.
func respondError(c echo.Context, err error, extra echo.Map) error {
	status := http.StatusInternalServerError
	message := service.CodeGenericError

	switch {
	case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrTokenExpired):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, service.ErrEmailExists):
		status = http.StatusConflict
		message = err.Error()
	case errors.Is(err, service.ErrUsernameExhausted):
		status = http.StatusInternalServerError
		message = err.Error()
	default:
		code := service.ErrorCode(err)
		message = code
		switch code {
		case service.CodeAccountNotFound, service.CodeInvalidPassword:
			status = http.StatusUnauthorized
		case service.CodeProfileNotFound:
			status = http.StatusNotFound
		}
	}

	body := echo.Map{"error": message}
	for k, v := range extra {
		body[k] = v
	}
	return c.JSON(status, body)
}

// sessionEmail returns the authenticated email set by the auth middleware
func sessionEmail(c echo.Context) string {
	email, _ := c.Get("email").(string)
	return email
}
