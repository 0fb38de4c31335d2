package service

import (
	"context"
	"testing"
	"time"
	"work_readiness_backend/internal/config"
	"work_readiness_backend/internal/readiness"
	"work_readiness_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthFixture(t *testing.T) (*fixture, *AuthService) {
	t.Helper()
	f := newFixture(defaultOpts)
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	f.store.users[f.worker.ID].Password = hash

	cfg := &config.Config{JWT: config.JWTConfig{Secret: "test-secret", ExpireTime: time.Hour}}
	auth := NewAuthService(f.store, f.store, f.svc, cfg)
	auth.Now = f.clock.Now
	return f, auth
}

func TestLoginIssuesTokenAndStartsCycle(t *testing.T) {
	f, auth := newAuthFixture(t)

	res, err := auth.Login(context.Background(), "zhao@example.com", "s3cret-pass", "10.0.0.1")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.True(t, res.Cycle.IsFirstTimeLogin)
	assert.Equal(t, "2026-10-12", res.Cycle.Cycle.CycleStart)

	claims, err := util.ParseJWT(res.Token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, f.worker.ID, claims.UserID)

	require.Len(t, f.store.logins, 1)
	assert.True(t, f.store.logins[0].Success)
	assert.Equal(t, "10.0.0.1", f.store.logins[0].IP)
	assert.Equal(t, at(12, 8), f.store.users[f.worker.ID].LastLogin)
}

func TestLoginReadsPreviousLoginBeforeRecording(t *testing.T) {
	f, auth := newAuthFixture(t)
	_, err := auth.Login(context.Background(), "zhao@example.com", "s3cret-pass", "")
	require.NoError(t, err)
	f.submit(t, 12)

	f.clock.now = at(14, 8)
	res, err := auth.Login(context.Background(), "zhao@example.com", "s3cret-pass", "")
	require.NoError(t, err)
	assert.Equal(t, readiness.LoginReset, res.Cycle.Transition)

	f.clock.now = at(14, 12)
	res, err = auth.Login(context.Background(), "zhao@example.com", "s3cret-pass", "")
	require.NoError(t, err)
	// 同一天再次登录，上一次登录就是今天
	assert.Equal(t, readiness.LoginContinue, res.Cycle.Transition)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f, auth := newAuthFixture(t)

	_, err := auth.Login(context.Background(), "zhao@example.com", "wrong", "")
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)
	require.Len(t, f.store.logins, 1)
	assert.False(t, f.store.logins[0].Success)

	_, err = auth.Login(context.Background(), "nobody@example.com", "s3cret-pass", "")
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)

	f.store.users[f.worker.ID].Disabled = true
	_, err = auth.Login(context.Background(), "zhao@example.com", "s3cret-pass", "")
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)
}
