// Package cache is a small TTL cache for upstream news responses. It is an
// explicitly owned component rather than a package-level singleton: the clock
// is injectable and the entry count is bounded.
package cache

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

type Cache struct {
	mu         sync.Mutex
	entries    map[string]entry
	ttl        time.Duration
	maxEntries int
	clock      clockwork.Clock
}

// New creates a cache holding at most maxEntries values for ttl each.
func New(ttl time.Duration, maxEntries int, clock clockwork.Clock) *Cache {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Cache{
		entries:    make(map[string]entry),
		ttl:        ttl,
		maxEntries: maxEntries,
		clock:      clock,
	}
}

// Get returns the cached value for key, or false if absent or expired.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.clock.Now().After(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// Set stores value under key. When the cache is full, expired entries are
// dropped first; if it is still full the oldest entry goes.
func (c *Cache) Set(key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evict(now)
	}
	c.entries[key] = entry{value: value, expiresAt: now.Add(c.ttl)}
}

// evict removes expired entries, falling back to the entry closest to expiry.
// Caller holds the lock.
func (c *Cache) evict(now time.Time) {
	var (
		oldestKey string
		oldestExp time.Time
		found     bool
	)
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
			continue
		}
		if !found || e.expiresAt.Before(oldestExp) {
			oldestKey, oldestExp, found = k, e.expiresAt, true
		}
	}
	if len(c.entries) >= c.maxEntries && found {
		delete(c.entries, oldestKey)
	}
}

// Len reports the current entry count, expired entries included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
