package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"accounts-service/internal/model"
	"accounts-service/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeAuthService returns canned results; calls are recorded for assertions.
type fakeAuthService struct {
	signInRes *service.SignInResult
	signInErr error
	signInIn  []service.SignInInput

	signUpRes *service.SignUpResult
	signUpErr error

	signOutErr error

	oauthURL string
	oauthErr error

	forgotErr      error
	forgotEmails   []string
	verifyResetErr error
	resetErr       error
	updatePassErr  error

	verifyEmailUser *model.User
	verifyEmailErr  error
	resendErr       error

	accountInfo *service.AccountInfo
	accountErr  error
	updateErr   error
	deleteErr   error
	deleteCalls []string
}

func (f *fakeAuthService) SignIn(ctx context.Context, in service.SignInInput) (*service.SignInResult, error) {
	f.signInIn = append(f.signInIn, in)
	return f.signInRes, f.signInErr
}

func (f *fakeAuthService) SignUp(ctx context.Context, in service.SignUpInput) (*service.SignUpResult, error) {
	return f.signUpRes, f.signUpErr
}

func (f *fakeAuthService) SignOut(ctx context.Context, providerName, token string) error {
	return f.signOutErr
}

func (f *fakeAuthService) OAuthURL(providerName, social, redirectTo string) (string, error) {
	return f.oauthURL, f.oauthErr
}

func (f *fakeAuthService) ForgotPassword(ctx context.Context, email string) error {
	f.forgotEmails = append(f.forgotEmails, email)
	return f.forgotErr
}

func (f *fakeAuthService) VerifyResetToken(ctx context.Context, token string) (*model.PasswordResetToken, error) {
	if f.verifyResetErr != nil {
		return nil, f.verifyResetErr
	}
	return &model.PasswordResetToken{Token: token}, nil
}

func (f *fakeAuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	return f.resetErr
}

func (f *fakeAuthService) UpdatePassword(ctx context.Context, sessionEmail, currentPassword, newPassword string) error {
	return f.updatePassErr
}

func (f *fakeAuthService) VerifyEmail(ctx context.Context, token string) (*model.User, error) {
	return f.verifyEmailUser, f.verifyEmailErr
}

func (f *fakeAuthService) ResendVerification(ctx context.Context, email string) error {
	return f.resendErr
}

func (f *fakeAuthService) Account(ctx context.Context, sessionEmail string) (*service.AccountInfo, error) {
	return f.accountInfo, f.accountErr
}

func (f *fakeAuthService) UpdateAccount(ctx context.Context, sessionEmail string, in service.UpdateAccountInput) error {
	return f.updateErr
}

func (f *fakeAuthService) DeleteAccount(ctx context.Context, sessionEmail, password, providerName, sessionToken string) error {
	f.deleteCalls = append(f.deleteCalls, sessionEmail+":"+password+":"+sessionToken)
	return f.deleteErr
}

type fakeCaptcha struct {
	ok  bool
	err error
}

func (f *fakeCaptcha) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	return f.ok, f.err
}

type fakeLimiter struct {
	allow bool
	keys  []string
}

func (f *fakeLimiter) Allow(ctx context.Context, key string) (bool, error) {
	f.keys = append(f.keys, key)
	return f.allow, nil
}

// doJSON runs a handler against a JSON request and decodes the response body.
func doJSON(t *testing.T, h echo.HandlerFunc, method, target, body string, setup func(echo.Context)) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("logger", zap.NewNop())
	if setup != nil {
		setup(c)
	}

	require.NoError(t, h(c))

	var decoded map[string]interface{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func okSignInResult() *service.SignInResult {
	return &service.SignInResult{
		RedirectTo: service.RedirectClient,
		Session:    nil,
		User:       &model.User{ID: 7, Email: "alice@example.com", Role: model.RoleClient},
	}
}
