package services

import (
	"strconv"
	"sync"
	"time"
)

type localEntry struct {
	value   string
	expires time.Time // zero means no expiry
}

const (
	sweepInterval = time.Minute
	sweepEvery    = 1000 // writes between inline sweeps
)

// localCache mirrors the handful of Redis commands CacheService needs.
// Expired entries are dropped on read, by a background janitor and after
// every sweepEvery writes.
type localCache struct {
	mu      sync.Mutex
	now     func() time.Time
	entries map[string]localEntry
	writes  int

	stop     chan struct{}
	stopOnce sync.Once
}

func newLocalCache() *localCache {
	c := &localCache{
		now:     time.Now,
		entries: make(map[string]localEntry),
		stop:    make(chan struct{}),
	}
	go c.janitor(sweepInterval)
	return c
}

func (c *localCache) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.stop:
			return
		}
	}
}

// close stops the janitor. Safe to call more than once.
func (c *localCache) close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// sweep drops every expired entry and reports how many went
func (c *localCache) sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sweepLocked()
}

func (c *localCache) sweepLocked() int {
	now := c.now()
	removed := 0
	for key, e := range c.entries {
		if !e.expires.IsZero() && !now.Before(e.expires) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// wrote counts a write and sweeps every sweepEvery writes. Callers hold mu.
func (c *localCache) wrote() {
	c.writes++
	if c.writes%sweepEvery == 0 {
		c.sweepLocked()
	}
}

// live returns the entry for key, evicting it if expired. Callers hold mu.
func (c *localCache) live(key string) (localEntry, bool) {
	e, ok := c.entries[key]
	if !ok {
		return localEntry{}, false
	}
	if !e.expires.IsZero() && !c.now().Before(e.expires) {
		delete(c.entries, key)
		return localEntry{}, false
	}
	return e, true
}

func (c *localCache) expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return c.now().Add(ttl)
}

func (c *localCache) set(key, value string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.wrote()
	c.entries[key] = localEntry{value: value, expires: c.expiry(ttl)}
}

func (c *localCache) get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.live(key)
	return e.value, ok
}

func (c *localCache) getWithTTL(key string) (string, time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.live(key)
	if !ok || e.expires.IsZero() {
		return e.value, 0
	}
	return e.value, e.expires.Sub(c.now())
}

func (c *localCache) del(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

func (c *localCache) setNX(key, value string, ttl time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.wrote()
	if _, ok := c.live(key); ok {
		return false
	}
	c.entries[key] = localEntry{value: value, expires: c.expiry(ttl)}
	return true
}

func (c *localCache) incr(key string, ttl time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.wrote()
	e, ok := c.live(key)
	if !ok {
		c.entries[key] = localEntry{value: "1", expires: c.expiry(ttl)}
		return 1
	}
	n, _ := strconv.Atoi(e.value)
	n++
	e.value = strconv.Itoa(n)
	c.entries[key] = e
	return n
}

func (c *localCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
