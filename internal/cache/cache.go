// Package cache provides the TTL result cache that sits between the query
// service and the aggregation pipeline. Entries are memoized per canonical
// query key; concurrent misses for the same key share a single computation.
package cache

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type entry struct {
	value     interface{}
	createdAt time.Time
}

// Cache memoizes computed results for a fixed TTL. It never caches errors:
// a failed computation leaves the key empty so the next request retries.
// There is no eviction beyond expiry overwrite; memory is bounded by the
// number of distinct query keys, which the UI keeps small.
type Cache struct {
	ttl   time.Duration
	now   func() time.Time
	group singleflight.Group

	mu      sync.RWMutex
	entries map[string]entry
}

func New(ttl time.Duration) *Cache {
	return NewWithClock(ttl, time.Now)
}

// NewWithClock injects the clock, letting tests control expiry.
func NewWithClock(ttl time.Duration, now func() time.Time) *Cache {
	return &Cache{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]entry),
	}
}

// GetOrCompute returns the cached value for key when it is younger than the
// TTL; otherwise it invokes compute, stores the result and returns it. At
// most one compute runs per key at a time: concurrent callers of a missing
// or expired key wait for the first caller's result and share it. The bool
// reports whether the value came from the cache.
func (c *Cache) GetOrCompute(key string, compute func() (interface{}, error)) (interface{}, bool, error) {
	if value, ok := c.lookup(key); ok {
		return value, true, nil
	}

	var hit bool
	value, err, _ := c.group.Do(key, func() (interface{}, error) {
		// A concurrent flight may have stored the value between our lookup
		// and acquiring the flight.
		if value, ok := c.lookup(key); ok {
			hit = true
			return value, nil
		}
		value, err := compute()
		if err != nil {
			return nil, err
		}
		c.store(key, value)
		return value, nil
	})
	if err != nil {
		return nil, false, err
	}
	return value, hit, nil
}

func (c *Cache) lookup(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.createdAt) >= c.ttl {
		return nil, false
	}
	return e.value, true
}

func (c *Cache) store(key string, value interface{}) {
	c.mu.Lock()
	c.entries[key] = entry{value: value, createdAt: c.now()}
	c.mu.Unlock()
}

// Len reports the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Purge drops every entry.
func (c *Cache) Purge() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}
