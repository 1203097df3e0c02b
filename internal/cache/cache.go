// Package cache provides an in-memory key/value store with per-entry expiry.
package cache

import (
	"sync"
	"time"
)

// Clock returns the current time. Tests inject a fake one.
type Clock func() time.Time

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache is a TTL cache shared by all requests of a process. Expired entries
// are removed lazily when read; there is no background sweep.
type Cache[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]
	now     Clock
}

// New creates an empty cache. A nil clock means time.Now.
func New[V any](now Clock) *Cache[V] {
	if now == nil {
		now = time.Now
	}
	return &Cache[V]{
		entries: make(map[string]entry[V]),
		now:     now,
	}
}

// Get returns the value for key while it is still fresh.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return zero, false
	}
	if c.now().Before(e.expiresAt) {
		return e.value, true
	}

	c.mu.Lock()
	// Another writer may have refreshed the key between the two locks.
	if cur, ok := c.entries[key]; ok && !c.now().Before(cur.expiresAt) {
		delete(c.entries, key)
	}
	c.mu.Unlock()
	return zero, false
}

// Set stores value under key for ttl.
func (c *Cache[V]) Set(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = entry[V]{value: value, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
}

// Clear drops every entry.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry[V])
	c.mu.Unlock()
}

// Len reports the number of stored entries, expired ones included.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
