package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"rxvision_server/structs/tables"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newLocalCacheService(t *testing.T) (*CacheService, *fakeClock) {
	t.Helper()
	cs := NewCacheService(gecho.NewDefaultLogger(), testConfig())
	require.False(t, cs.UsesRedis())
	t.Cleanup(func() { _ = cs.Close() })

	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	cs.local.now = clock.now
	return cs, clock
}

func TestLocalCacheExpiry(t *testing.T) {
	cs, clock := newLocalCacheService(t)
	ctx := context.Background()

	require.NoError(t, cs.Set(ctx, "k", "v", time.Minute))
	val, err := cs.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", val)

	clock.advance(time.Minute)
	val, err = cs.Get(ctx, "k")
	require.NoError(t, err)
	assert.Empty(t, val)

	exists, err := cs.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestAcquireCooldown(t *testing.T) {
	cs, clock := newLocalCacheService(t)
	ctx := context.Background()

	ok, err := cs.AcquireCooldown(ctx, "resend:1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = cs.AcquireCooldown(ctx, "resend:1", time.Minute)
	assert.False(t, ok)

	ok, _ = cs.AcquireCooldown(ctx, "resend:2", time.Minute)
	assert.True(t, ok)

	clock.advance(61 * time.Second)
	ok, _ = cs.AcquireCooldown(ctx, "resend:1", time.Minute)
	assert.True(t, ok)
}

func TestRateLimitWindow(t *testing.T) {
	cs, clock := newLocalCacheService(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		n, err := cs.IncrementRateLimit(ctx, "10.0.0.1", "/api/auth/register", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}

	status, err := cs.GetRateLimitStatus(ctx, "10.0.0.1", "/api/auth/register")
	require.NoError(t, err)
	assert.Equal(t, 3, status["count"])
	assert.Equal(t, 60, status["ttl"])

	// The window does not slide on later hits
	clock.advance(time.Minute)
	n, err := cs.IncrementRateLimit(ctx, "10.0.0.1", "/api/auth/register", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestBlacklistToken(t *testing.T) {
	cs, _ := newLocalCacheService(t)
	ctx := context.Background()
	jti := uuid.New()

	revoked, err := cs.IsTokenBlacklisted(ctx, jti)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, cs.BlacklistToken(ctx, jti, time.Now().Add(time.Hour)))

	revoked, err = cs.IsTokenBlacklisted(ctx, jti)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestUserCacheStoresSanitizedCopy(t *testing.T) {
	cs, _ := newLocalCacheService(t)
	ctx := context.Background()
	token := "secret"
	user := &tables.User{Id: uuid.New(), Email: "ada@rx.example", PasswordHash: "$argon2id$...", VerificationToken: &token, CreditBalance: 7}

	miss, err := cs.GetUserFromCache(ctx, user.Id)
	require.NoError(t, err)
	assert.Nil(t, miss)

	require.NoError(t, cs.SetUserInCache(ctx, user))
	cached, err := cs.GetUserFromCache(ctx, user.Id)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, "ada@rx.example", cached.Email)
	assert.Equal(t, 7, cached.CreditBalance)
	assert.Empty(t, cached.PasswordHash)
	assert.Nil(t, cached.VerificationToken)

	require.NoError(t, cs.DeleteUserFromCache(ctx, user.Id))
	miss, err = cs.GetUserFromCache(ctx, user.Id)
	require.NoError(t, err)
	assert.Nil(t, miss)
}

func TestLocalCacheStats(t *testing.T) {
	cs, _ := newLocalCacheService(t)
	require.NoError(t, cs.Ping(context.Background()))

	stats := cs.GetConnectionStats()
	assert.Equal(t, "memory", stats["backend"])
}

func TestLocalCacheSweepsExpiredRateLimitKeys(t *testing.T) {
	cs, clock := newLocalCacheService(t)
	ctx := context.Background()

	for i := 0; i < 5*sweepEvery; i++ {
		_, err := cs.IncrementRateLimit(ctx, fmt.Sprintf("10.0.%d.%d", i/256, i%256), "/api/auth/register", time.Second)
		require.NoError(t, err)
	}
	assert.Equal(t, 5*sweepEvery, cs.GetConnectionStats()["keys"])

	clock.advance(2 * time.Second)
	for i := 0; i < sweepEvery; i++ {
		_, err := cs.IncrementRateLimit(ctx, fmt.Sprintf("172.16.%d.%d", i/256, i%256), "/api/auth/register", time.Second)
		require.NoError(t, err)
	}

	// Only the fresh window survives
	assert.Equal(t, sweepEvery, cs.GetConnectionStats()["keys"])
}

func TestLocalCacheSweepKeepsLiveEntries(t *testing.T) {
	cs, clock := newLocalCacheService(t)
	ctx := context.Background()

	require.NoError(t, cs.Set(ctx, "short", "v", time.Second))
	require.NoError(t, cs.Set(ctx, "long", "v", time.Hour))
	require.NoError(t, cs.Set(ctx, "forever", "v", 0))

	clock.advance(time.Minute)
	assert.Equal(t, 1, cs.local.sweep())
	assert.Equal(t, 2, cs.local.len())

	val, err := cs.Get(ctx, "long")
	require.NoError(t, err)
	assert.Equal(t, "v", val)
}

func TestLocalCacheJanitor(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	c := &localCache{now: clock.now, entries: make(map[string]localEntry), stop: make(chan struct{})}
	for i := 0; i < 100; i++ {
		c.set(fmt.Sprintf("k%d", i), "v", time.Second)
	}
	clock.advance(time.Second)

	go c.janitor(time.Millisecond)
	defer c.close()

	require.Eventually(t, func() bool { return c.len() == 0 }, time.Second, 5*time.Millisecond)

	c.close()
	c.close()
}
