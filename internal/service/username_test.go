package service

import (
	"context"
	"fmt"
	"testing"

	"accounts-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsernameBase(t *testing.T) {
	tests := []struct {
		email string
		want  string
	}{
		{"alice@example.com", "alice"},
		{"Bob.Jones@example.com", "bobjones"},
		{"x_y-z+tag@example.com", "xyztag"},
		{"User123@example.com", "user123"},
		{"...@example.com", "user"},
		{"no-at-sign", "noatsign"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, usernameBase(tt.email), tt.email)
	}
}

func TestAllocateUsernameFirstFree(t *testing.T) {
	st := newFakeStore()

	got, err := allocateUsername(context.Background(), st, "alice@example.com")

	require.NoError(t, err)
	assert.Equal(t, "alice", got)
}

func TestAllocateUsernameSkipsTaken(t *testing.T) {
	st := newFakeStore()
	st.profiles[1] = &model.ClientProfile{ID: 1, UserID: 1, Username: "alice"}
	st.profiles[2] = &model.ClientProfile{ID: 2, UserID: 2, Username: "alice2"}

	got, err := allocateUsername(context.Background(), st, "alice@example.com")

	require.NoError(t, err)
	assert.Equal(t, "alice3", got)
}

func TestAllocateUsernameGivesUp(t *testing.T) {
	st := newFakeStore()
	st.profiles[1] = &model.ClientProfile{ID: 1, UserID: 1, Username: "alice"}
	for i := 2; i <= maxUsernameAttempts; i++ {
		id := uint(i)
		st.profiles[id] = &model.ClientProfile{ID: id, UserID: id, Username: fmt.Sprintf("alice%d", i)}
	}

	_, err := allocateUsername(context.Background(), st, "alice@example.com")

	require.ErrorIs(t, err, ErrUsernameExhausted)
}
