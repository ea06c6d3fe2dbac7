package services

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"rxvision_server/structs"
	"rxvision_server/structs/tables"
	"strconv"
	"strings"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CacheService provides Redis caching with retry logic. Without Redis it
// falls back to an in-process store so revocation, cooldowns and rate limits
// still hold for a single instance.
type CacheService struct {
	logger *gecho.Logger
	config *structs.Config
	client *redis.Client
	local  *localCache
}

func NewCacheService(logger *gecho.Logger, cfg *structs.Config) *CacheService {
	cs := &CacheService{
		logger: logger,
		config: cfg,
	}
	if cfg.Cache.Enabled {
		cs.client = newRedisClient(cfg.Cache)
	} else {
		cs.local = newLocalCache()
	}
	return cs
}

func newRedisClient(cfg *structs.CacheConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,

		// Connection pool settings
		PoolSize:        cfg.PoolSize,
		MinIdleConns:    cfg.MinIdleConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		PoolTimeout:     cfg.PoolTimeout,
		ConnMaxIdleTime: cfg.IdleTimeout,

		// Timeouts
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,

		// Retry settings
		MaxRetries:      cfg.MaxRetries,
		MinRetryBackoff: cfg.MinRetryBackoff,
		MaxRetryBackoff: cfg.MaxRetryBackoff,
	})
}

// UsesRedis reports whether a Redis server backs the cache
func (cs *CacheService) UsesRedis() bool {
	return cs.client != nil
}

// Close closes the Redis connection pool, or stops the local janitor
func (cs *CacheService) Close() error {
	if cs.local != nil {
		cs.local.close()
	}
	if cs.client != nil {
		return cs.client.Close()
	}
	return nil
}

// withRetry executes a Redis operation with exponential backoff and jitter
func (cs *CacheService) withRetry(ctx context.Context, operation func() error, maxRetries int) error {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}

		lastErr = err

		// Don't retry on the last attempt
		if attempt == maxRetries {
			break
		}

		// Only retry on network/connection errors, not on logical errors like key not found
		if !isRetryableCacheError(err) {
			return err
		}

		const maxBackoff = 2000 // ms
		const base = 100        // ms

		backoff := min(base*(1<<attempt), maxBackoff)

		// add jitter so concurrent retries spread out
		sleep := backoff
		var jitterBytes [4]byte
		if _, err := rand.Read(jitterBytes[:]); err == nil {
			jitter := int(binary.BigEndian.Uint32(jitterBytes[:]) % uint32(backoff/2+1))
			sleep = backoff/2 + jitter
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(sleep) * time.Millisecond):
		}
	}

	return fmt.Errorf("redis operation failed after %d retries: %w", maxRetries, lastErr)
}

// isRetryableCacheError determines if an error is worth retrying
func isRetryableCacheError(err error) bool {
	if err == nil || errors.Is(err, redis.Nil) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	errStr := err.Error()
	retryableErrors := []string{
		"connection refused",
		"connection reset",
		"timeout",
		"broken pipe",
		"no such host",
		"network is unreachable",
	}

	for _, retryableErr := range retryableErrors {
		if strings.Contains(errStr, retryableErr) {
			return true
		}
	}

	return false
}

// Set sets a key with TTL
func (cs *CacheService) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if cs.local != nil {
		cs.local.set(key, fmt.Sprint(value), ttl)
		return nil
	}
	return cs.withRetry(ctx, func() error {
		return cs.client.Set(ctx, key, value, ttl).Err()
	}, 3)
}

// Get retrieves a key, returning "" when it does not exist
func (cs *CacheService) Get(ctx context.Context, key string) (string, error) {
	if cs.local != nil {
		val, _ := cs.local.get(key)
		return val, nil
	}

	var result string
	err := cs.withRetry(ctx, func() error {
		val, err := cs.client.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			result = ""
			return nil // Don't retry on key not found
		}
		if err != nil {
			return err
		}
		result = val
		return nil
	}, 3)

	if err != nil {
		return "", err
	}
	return result, nil
}

// Delete removes a key
func (cs *CacheService) Delete(ctx context.Context, key string) error {
	if cs.local != nil {
		cs.local.del(key)
		return nil
	}
	return cs.withRetry(ctx, func() error {
		return cs.client.Del(ctx, key).Err()
	}, 3)
}

// Exists checks if a key exists
func (cs *CacheService) Exists(ctx context.Context, key string) (bool, error) {
	if cs.local != nil {
		_, ok := cs.local.get(key)
		return ok, nil
	}

	var result bool
	err := cs.withRetry(ctx, func() error {
		count, err := cs.client.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		result = count > 0
		return nil
	}, 3)

	return result, err
}

// AcquireCooldown claims key for ttl. It returns false while a previous claim is still live.
func (cs *CacheService) AcquireCooldown(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	key = "cooldown:" + key
	if cs.local != nil {
		return cs.local.setNX(key, "1", ttl), nil
	}

	var acquired bool
	err := cs.withRetry(ctx, func() error {
		ok, err := cs.client.SetNX(ctx, key, "1", ttl).Result()
		if err != nil {
			return err
		}
		acquired = ok
		return nil
	}, 3)
	return acquired, err
}

// BlacklistToken revokes a session jti until the token would have expired anyway
func (cs *CacheService) BlacklistToken(ctx context.Context, jti uuid.UUID, exp time.Time) error {
	ttl := cs.config.Auth.BlacklistCacheTTL
	if exp.After(time.Now()) {
		ttl = time.Until(exp)
	}

	key := fmt.Sprintf("blacklist:%s", jti)
	return cs.Set(ctx, key, "true", ttl)
}

// IsTokenBlacklisted checks whether a session jti has been revoked
func (cs *CacheService) IsTokenBlacklisted(ctx context.Context, jti uuid.UUID) (bool, error) {
	key := fmt.Sprintf("blacklist:%s", jti.String())
	val, err := cs.Get(ctx, key)
	if err != nil {
		return false, err
	}

	return val == "true", nil
}

// GetUserFromCache retrieves a sanitized user, or nil on a miss
func (cs *CacheService) GetUserFromCache(ctx context.Context, userID uuid.UUID) (*tables.User, error) {
	return getJSON[tables.User](ctx, cs, userKey(userID))
}

// SetUserInCache stores a sanitized copy of user
func (cs *CacheService) SetUserInCache(ctx context.Context, user *tables.User) error {
	if user == nil {
		return nil
	}
	return setJSON(ctx, cs, userKey(user.Id), user.Sanitized(), cs.config.Auth.CacheUserTTL)
}

// DeleteUserFromCache removes a user object from cache
func (cs *CacheService) DeleteUserFromCache(ctx context.Context, userID uuid.UUID) error {
	return cs.Delete(ctx, userKey(userID))
}

func userKey(id uuid.UUID) string {
	return fmt.Sprintf("user:%s", id.String())
}

func rateLimitKey(ip, endpoint string) string {
	return fmt.Sprintf("ratelimit:%s:%s", ip, endpoint)
}

// IncrementRateLimit atomically increments a rate limit counter, starting the window on the first hit
func (cs *CacheService) IncrementRateLimit(ctx context.Context, ip, endpoint string, ttl time.Duration) (int, error) {
	key := rateLimitKey(ip, endpoint)
	if cs.local != nil {
		return cs.local.incr(key, ttl), nil
	}

	var result int64
	err := cs.withRetry(ctx, func() error {
		val, err := cs.client.Incr(ctx, key).Result()
		if err != nil {
			return err
		}
		result = val

		// Set expiration only on first increment
		if val == 1 {
			return cs.client.Expire(ctx, key, ttl).Err()
		}

		return nil
	}, 3)

	return int(result), err
}

// GetRateLimitStatus returns current rate limit information for debugging
func (cs *CacheService) GetRateLimitStatus(ctx context.Context, ip, endpoint string) (map[string]any, error) {
	key := rateLimitKey(ip, endpoint)
	if cs.local != nil {
		val, ttl := cs.local.getWithTTL(key)
		count, _ := strconv.Atoi(val)
		return map[string]any{"count": count, "ttl": int(ttl.Seconds())}, nil
	}

	var result map[string]any
	err := cs.withRetry(ctx, func() error {
		val, err := cs.client.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			result = map[string]any{"count": 0, "ttl": 0}
			return nil
		}
		if err != nil {
			return err
		}

		ttl, err := cs.client.TTL(ctx, key).Result()
		if err != nil {
			return err
		}

		count, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid rate limit value: %w", err)
		}

		result = map[string]any{
			"count": count,
			"ttl":   int(ttl.Seconds()),
		}
		return nil
	}, 3)

	return result, err
}

// Ping tests the Redis connection
func (cs *CacheService) Ping(ctx context.Context) error {
	if cs.local != nil {
		return nil
	}
	return cs.withRetry(ctx, func() error {
		return cs.client.Ping(ctx).Err()
	}, 3)
}

// GetConnectionStats returns Redis connection pool statistics
func (cs *CacheService) GetConnectionStats() map[string]any {
	if cs.local != nil {
		return map[string]any{"backend": "memory", "keys": cs.local.len()}
	}
	stats := cs.client.PoolStats()

	return map[string]any{
		"backend":     "redis",
		"hits":        stats.Hits,
		"misses":      stats.Misses,
		"timeouts":    stats.Timeouts,
		"total_conns": stats.TotalConns,
		"idle_conns":  stats.IdleConns,
		"stale_conns": stats.StaleConns,
	}
}

func setJSON[T any](ctx context.Context, cs *CacheService, key string, value T, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return cs.Set(ctx, key, string(data), ttl)
}

func getJSON[T any](ctx context.Context, cs *CacheService, key string) (*T, error) {
	val, err := cs.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	if val == "" {
		return nil, nil // not found in cache
	}

	var result T
	if err := json.Unmarshal([]byte(val), &result); err != nil {
		return nil, err
	}

	return &result, nil
}
