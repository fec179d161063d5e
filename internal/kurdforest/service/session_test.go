package service

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/kurdforest/internal/kurdforest/domain"
	"github.com/aussiebroadwan/kurdforest/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.signUp(t, "alice", "alice@x.com", "Secret1")

	sess, token, err := f.sessions.Login(ctx, "alice@x.com", "Secret1")
	require.NoError(t, err)
	require.Equal(t, "alice", sess.Username)
	require.NotEmpty(t, token)

	_, _, err = f.sessions.Login(ctx, "alice@x.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = f.sessions.Login(ctx, "nobody@x.com", "Secret1")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	require.ErrorIs(t, err, ErrAuth)
}

func TestLoginTrimsEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.signUp(t, "alice", " alice@x.com ", "Secret1")

	sess, _, err := f.sessions.Login(ctx, "alice@x.com  ", "Secret1")
	require.NoError(t, err)
	require.Equal(t, "alice", sess.Username)
}

func TestLoginUnverified(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	hash, err := f.sessions.Hasher.Hash("Secret1")
	require.NoError(t, err)
	now := time.Now().UTC()
	require.NoError(t, f.store.Users().CreateUser(ctx, domain.User{
		ID:           idx.New().String(),
		Username:     "carol",
		Email:        "carol@x.com",
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}))

	// Unverified is only reported once the password checks out
	_, _, err = f.sessions.Login(ctx, "carol@x.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = f.sessions.Login(ctx, "carol@x.com", "Secret1")
	require.ErrorIs(t, err, ErrUnverified)
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess, token := f.signUp(t, "alice", "alice@x.com", "Secret1")

	got, err := f.sessions.Authenticate(ctx, token)
	require.NoError(t, err)
	require.Equal(t, sess.ID, got.ID)
	require.Equal(t, sess.UserID, got.UserID)
	require.Equal(t, "alice", got.Username)

	_, err = f.sessions.Authenticate(ctx, "garbage")
	require.ErrorIs(t, err, ErrInvalidSession)

	f.sessions.Logout(ctx, &got)
	_, err = f.sessions.Authenticate(ctx, token)
	require.ErrorIs(t, err, ErrInvalidSession)

	// Logging out twice or without a session is harmless
	f.sessions.Logout(ctx, &got)
	f.sessions.Logout(ctx, nil)
}

func TestLogoutWithStoreDown(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, token := f.signUp(t, "alice", "alice@x.com", "Secret1")

	got, err := f.sessions.Authenticate(ctx, token)
	require.NoError(t, err)

	require.NoError(t, f.store.Close())
	require.NotPanics(t, func() { f.sessions.Logout(ctx, &got) })
}

func TestAuthenticateExpiredRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.sessions.TTL = time.Minute
	_, token := f.signUp(t, "alice", "alice@x.com", "Secret1")

	f.clock.Advance(2 * time.Minute)
	_, err := f.sessions.Authenticate(ctx, token)
	require.ErrorIs(t, err, ErrInvalidSession)
}

func TestHousekeepingPurgesExpiredSessions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.sessions.TTL = time.Minute
	f.signUp(t, "alice", "alice@x.com", "Secret1")

	hk := NewHousekeepingService(f.store, discardLogger(), time.Hour)
	hk.Now = f.clock.Now
	require.Zero(t, hk.Cleanup(ctx))

	f.clock.Advance(2 * time.Minute)
	require.EqualValues(t, 1, hk.Cleanup(ctx))
}

func TestHousekeepingLifecycle(t *testing.T) {
	f := newFixture(t)
	hk := NewHousekeepingService(f.store, discardLogger(), 0)
	require.Equal(t, time.Hour, hk.Interval)
	hk.Start()
	hk.Stop()
}
