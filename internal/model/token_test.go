package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerificationTokenBeforeCreate(t *testing.T) {
	tok := &VerificationToken{Email: "alice@example.com"}

	require.NoError(t, tok.BeforeCreate(nil))
	assert.NotEmpty(t, tok.Token)

	other := &VerificationToken{Email: "alice@example.com"}
	require.NoError(t, other.BeforeCreate(nil))
	assert.NotEqual(t, tok.Token, other.Token)
}

func TestVerificationTokenBeforeCreateKeepsExisting(t *testing.T) {
	tok := &VerificationToken{Email: "alice@example.com", Token: "preset"}

	require.NoError(t, tok.BeforeCreate(nil))
	assert.Equal(t, "preset", tok.Token)
}

func TestTokenIsExpired(t *testing.T) {
	live := &PasswordResetToken{ExpiresAt: time.Now().Add(time.Hour)}
	assert.False(t, live.IsExpired())

	stale := &PasswordResetToken{ExpiresAt: time.Now().Add(-time.Second)}
	assert.True(t, stale.IsExpired())
}

func TestUserIsVerified(t *testing.T) {
	u := &User{}
	assert.False(t, u.IsVerified())

	now := time.Now()
	u.EmailVerifiedAt = &now
	assert.True(t, u.IsVerified())
}
