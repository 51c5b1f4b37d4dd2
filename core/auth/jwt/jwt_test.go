package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/portfoliohub/core/auth/jwt/cache"
)

const testSecret = "test-secret-0123456789"

func newTestAuthenticator(t *testing.T, opts ...Option) *BasicAuthenticator {
	t.Helper()
	auth, err := New(&Config{Secret: testSecret, Issuer: "portfoliohub"}, opts...)
	require.NoError(t, err)
	return auth
}

func TestNew_Defaults(t *testing.T) {
	auth := newTestAuthenticator(t)
	assert.Equal(t, 15*time.Minute, auth.config.AccessTokenTTL)
	assert.Equal(t, 168*time.Hour, auth.config.RefreshTokenTTL)
	assert.Equal(t, "HS256", auth.config.GetSigningMethod().Alg())

	_, err := New(&Config{})
	assert.ErrorIs(t, err, ErrEmptySecret)
}

func TestBasicAuthenticator(t *testing.T) {
	ctx := context.Background()
	auth := newTestAuthenticator(t)

	pair, err := auth.Generate(ctx, "u-1", "a@b.co")
	require.NoError(t, err)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
	assert.True(t, pair.RefreshExpiresAt.After(pair.AccessExpiresAt))

	claims, err := auth.Verify(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.Subject)
	assert.Equal(t, "a@b.co", claims.Email)
	assert.Equal(t, "portfoliohub", claims.Issuer)
	assert.NotEmpty(t, claims.ID)

	_, err = auth.Verify(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrWrongTokenType, "refresh token must not authenticate requests")
}

func TestBasicAuthenticator_Expired(t *testing.T) {
	now := time.Now()
	auth := newTestAuthenticator(t, WithClock(func() time.Time { return now }))

	pair, err := auth.Generate(context.Background(), "u-1", "a@b.co")
	require.NoError(t, err)

	now = now.Add(16 * time.Minute)
	_, err = auth.Verify(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestBasicAuthenticator_BadSignature(t *testing.T) {
	auth := newTestAuthenticator(t)
	other, err := New(&Config{Secret: "another-secret-0123456789", Issuer: "portfoliohub"})
	require.NoError(t, err)

	pair, err := other.Generate(context.Background(), "u-1", "")
	require.NoError(t, err)

	_, err = auth.Verify(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestBasicAuthenticator_RefreshRotation(t *testing.T) {
	ctx := context.Background()
	auth := newTestAuthenticator(t, WithBlacklist(cache.NewMemoryBlacklist()))

	pair, err := auth.Generate(ctx, "u-1", "a@b.co")
	require.NoError(t, err)

	next, claims, err := auth.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.Subject)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	_, _, err = auth.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked, "a rotated refresh token is single use")

	require.NoError(t, auth.Revoke(ctx, next.RefreshToken))
	_, _, err = auth.Refresh(ctx, next.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestInspect(t *testing.T) {
	auth := newTestAuthenticator(t)
	pair, err := auth.Generate(context.Background(), "u-9", "z@b.co")
	require.NoError(t, err)

	claims, err := Inspect(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u-9", claims.Subject)
	assert.Equal(t, AccessToken, claims.Type)
	assert.WithinDuration(t, pair.AccessExpiresAt, ExpiresAt(pair.AccessToken), time.Second)

	_, err = Inspect("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.True(t, ExpiresAt("garbage").IsZero())
}

func TestMemoryBlacklist(t *testing.T) {
	ctx := context.Background()
	b := cache.NewMemoryBlacklist()

	require.NoError(t, b.Add(ctx, "jti-1", time.Hour))
	ok, err := b.Contains(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = b.Contains(ctx, "jti-2")
	assert.False(t, ok)

	require.NoError(t, b.Add(ctx, "jti-3", 0))
	assert.Equal(t, 1, b.Len())
}

func TestMemoryBlacklistCleanup(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	b := cache.NewMemoryBlacklist(cache.WithClock(func() time.Time { return now }))

	require.NoError(t, b.Add(ctx, "short", time.Minute))
	require.NoError(t, b.Add(ctx, "long", time.Hour))
	assert.Equal(t, 0, b.Cleanup())

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 1, b.Cleanup())
	assert.Equal(t, 1, b.Len())

	ok, err := b.Contains(ctx, "long")
	require.NoError(t, err)
	assert.True(t, ok)
}
