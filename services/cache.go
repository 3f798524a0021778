// services/cache.go
package services

import (
	"sync"
	"time"
)

// DefaultCacheTTL is how long settings and pending-count lookups stay fresh.
const DefaultCacheTTL = 30 * time.Minute

type cacheEntry struct {
	value    interface{}
	storedAt time.Time
}

// ResultCache is a key/value store with a fixed TTL. Expiry is checked lazily
// on read; nothing is swept proactively. The mutex serializes map access for
// multi-threaded hosts; suppliers run outside the lock, so they may read
// through the cache themselves. The processing flow is cooperative, which
// keeps supplier invocations to at most one per key per TTL window.
type ResultCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

func NewResultCache(ttl time.Duration) *ResultCache {
	return &ResultCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Get returns the cached value for key if it is younger than the TTL,
// otherwise invokes supplier, stores the result and returns it. A supplier
// error is not cached.
func (c *ResultCache) Get(key string, supplier func() (interface{}, error)) (interface{}, error) {
	c.mu.Lock()
	if entry, ok := c.entries[key]; ok && c.now().Sub(entry.storedAt) < c.ttl {
		c.mu.Unlock()
		return entry.value, nil
	}
	c.mu.Unlock()

	value, err := supplier()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{value: value, storedAt: c.now()}
	c.mu.Unlock()
	return value, nil
}

// Invalidate removes a single entry.
func (c *ResultCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear removes all entries.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// cacheLookup fetches a typed value through the cache.
func cacheLookup[T any](c *ResultCache, key string, supplier func() (T, error)) (T, error) {
	value, err := c.Get(key, func() (interface{}, error) {
		return supplier()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return value.(T), nil
}
