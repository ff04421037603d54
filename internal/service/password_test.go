package service

import (
	"context"
	"testing"
	"time"

	"accounts-service/internal/event"
	"accounts-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestForgotPasswordUnknownEmailStaysSilent(t *testing.T) {
	st := newFakeStore()
	svc, sink := newTestService(t, st, &fakeProvider{})

	err := svc.ForgotPassword(context.Background(), "nobody@example.com")

	require.NoError(t, err)
	assert.Empty(t, st.resetTokens)
	assert.Empty(t, sink.events)
}

func TestForgotPasswordIssuesToken(t *testing.T) {
	st := newFakeStore()
	user := seedUser(t, st, "alice@example.com", "secret123", model.RoleClient, true)
	svc, sink := newTestService(t, st, &fakeProvider{})

	err := svc.ForgotPassword(context.Background(), "alice@example.com")

	require.NoError(t, err)
	require.Len(t, st.resetTokens, 1)

	emails := sink.byKind(event.KindPasswordResetEmail)
	require.Len(t, emails, 1)
	assert.NotEmpty(t, emails[0].Token)

	activities := sink.byKind(event.KindActivity)
	require.Len(t, activities, 1)
	assert.Equal(t, "password_reset_requested", activities[0].Action)
	assert.Equal(t, user.ID, activities[0].UserID)
}

func TestForgotPasswordReplacesPreviousToken(t *testing.T) {
	st := newFakeStore()
	seedUser(t, st, "alice@example.com", "secret123", model.RoleClient, true)
	svc, _ := newTestService(t, st, &fakeProvider{})

	require.NoError(t, svc.ForgotPassword(context.Background(), "alice@example.com"))
	require.NoError(t, svc.ForgotPassword(context.Background(), "alice@example.com"))

	assert.Len(t, st.resetTokens, 1)
}

func TestVerifyResetTokenUnknown(t *testing.T) {
	svc, _ := newTestService(t, newFakeStore(), &fakeProvider{})

	_, err := svc.VerifyResetToken(context.Background(), "no-such-token")

	require.ErrorIs(t, err, ErrInvalidToken)
	assert.EqualError(t, err, "Invalid token!")
}

func TestVerifyResetTokenExpired(t *testing.T) {
	st := newFakeStore()
	tok := &model.PasswordResetToken{
		Email:     "alice@example.com",
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	require.NoError(t, st.CreateResetToken(context.Background(), tok))
	svc, _ := newTestService(t, st, &fakeProvider{})

	_, err := svc.VerifyResetToken(context.Background(), tok.Token)

	require.ErrorIs(t, err, ErrTokenExpired)
	assert.EqualError(t, err, "The token has expired.")
}

func TestResetPasswordConsumesToken(t *testing.T) {
	st := newFakeStore()
	user := seedUser(t, st, "alice@example.com", "old-secret", model.RoleClient, true)
	svc, sink := newTestService(t, st, &fakeProvider{})
	require.NoError(t, svc.ForgotPassword(context.Background(), "alice@example.com"))

	var token string
	for k := range st.resetTokens {
		token = k
	}

	err := svc.ResetPassword(context.Background(), token, "new-secret")
	require.NoError(t, err)

	account, err := st.CredentialsAccount(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte("new-secret")))

	// A consumed token cannot be replayed
	err = svc.ResetPassword(context.Background(), token, "another-secret")
	require.ErrorIs(t, err, ErrInvalidToken)

	activities := sink.byKind(event.KindActivity)
	require.NotEmpty(t, activities)
	assert.Equal(t, "password_reset", activities[len(activities)-1].Action)
}

func TestUpdatePasswordWrongCurrent(t *testing.T) {
	st := newFakeStore()
	seedUser(t, st, "alice@example.com", "secret123", model.RoleClient, true)
	svc, _ := newTestService(t, st, &fakeProvider{})

	err := svc.UpdatePassword(context.Background(), "alice@example.com", "wrong", "new-secret")

	require.ErrorIs(t, err, ErrInvalidPassword)
}

func TestUpdatePassword(t *testing.T) {
	st := newFakeStore()
	user := seedUser(t, st, "alice@example.com", "secret123", model.RoleClient, true)
	svc, sink := newTestService(t, st, &fakeProvider{})

	err := svc.UpdatePassword(context.Background(), "alice@example.com", "secret123", "new-secret")
	require.NoError(t, err)

	account, err := st.CredentialsAccount(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte("new-secret")))

	activities := sink.byKind(event.KindActivity)
	require.Len(t, activities, 1)
	assert.Equal(t, "password_changed", activities[0].Action)
}
