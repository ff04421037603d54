package service

import (
	"context"
	"testing"

	"accounts-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountReturnsUserAndProfile(t *testing.T) {
	st := newFakeStore()
	user := seedUser(t, st, "alice@example.com", "secret123", model.RoleClient, true)
	svc, _ := newTestService(t, st, &fakeProvider{})

	info, err := svc.Account(context.Background(), "alice@example.com")

	require.NoError(t, err)
	assert.Equal(t, user.ID, info.User.ID)
	require.NotNil(t, info.Profile)
	assert.Equal(t, "alice", info.Profile.Username)
}

func TestAccountWithoutProfile(t *testing.T) {
	st := newFakeStore()
	seedUser(t, st, "root@example.com", "secret123", model.RoleAdmin, false)
	svc, _ := newTestService(t, st, &fakeProvider{})

	info, err := svc.Account(context.Background(), "root@example.com")

	require.NoError(t, err)
	assert.Nil(t, info.Profile)
}

func TestUpdateAccount(t *testing.T) {
	st := newFakeStore()
	user := seedUser(t, st, "alice@example.com", "secret123", model.RoleClient, true)
	svc, sink := newTestService(t, st, &fakeProvider{})

	err := svc.UpdateAccount(context.Background(), "alice@example.com", UpdateAccountInput{
		Name:        "Alice Cooper",
		DisplayName: "Alice C.",
		Bio:         "hello",
	})
	require.NoError(t, err)

	reloaded, err := st.UserByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice Cooper", reloaded.Name)

	profile, err := st.ProfileByUserID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice C.", profile.DisplayName)
	assert.Equal(t, "hello", profile.Bio)

	require.Len(t, sink.events, 1)
	assert.Equal(t, "account_updated", sink.events[0].Action)
}

func TestDeleteAccountWrongPassword(t *testing.T) {
	st := newFakeStore()
	seedUser(t, st, "alice@example.com", "secret123", model.RoleClient, true)
	svc, _ := newTestService(t, st, &fakeProvider{})

	err := svc.DeleteAccount(context.Background(), "alice@example.com", "wrong", "", "sess")

	require.ErrorIs(t, err, ErrInvalidPassword)

	_, err = st.UserByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Empty(t, st.activities)
}

func TestDeleteAccount(t *testing.T) {
	st := newFakeStore()
	user := seedUser(t, st, "alice@example.com", "secret123", model.RoleClient, true)
	prov := &fakeProvider{}
	svc, _ := newTestService(t, st, prov)

	err := svc.DeleteAccount(context.Background(), "alice@example.com", "secret123", "", "sess-token")
	require.NoError(t, err)

	_, err = st.UserByEmail(context.Background(), "alice@example.com")
	require.Error(t, err)
	_, err = st.ProfileByUserID(context.Background(), user.ID)
	require.Error(t, err)

	// The deletion activity is written synchronously before the delete
	require.Len(t, st.activities, 1)
	assert.Equal(t, "account_deleted", st.activities[0].Action)

	assert.Equal(t, []string{"sess-token"}, prov.signedOut)
}
