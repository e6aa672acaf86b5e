package services

import (
	"sync"
	"time"
)

// Cache is a pull-through cache for one expensively computed value. The
// loader runs on first access and again once the TTL has passed; a failed
// reload keeps serving the previous value rather than erroring callers.
type Cache[T any] struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	load     func() (T, error)
	value    T
	loadedAt time.Time
	loaded   bool
}

// NewCache builds a cache around a loader. now is injectable for tests;
// passing nil uses the wall clock.
func NewCache[T any](ttl time.Duration, now func() time.Time, load func() (T, error)) *Cache[T] {
	if now == nil {
		now = time.Now
	}
	return &Cache[T]{ttl: ttl, now: now, load: load}
}

// Get returns the cached value, reloading it when stale or never loaded.
func (c *Cache[T]) Get() (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded && c.now().Sub(c.loadedAt) < c.ttl {
		return c.value, nil
	}
	value, err := c.load()
	if err != nil {
		if c.loaded {
			return c.value, nil
		}
		var zero T
		return zero, err
	}
	c.value = value
	c.loadedAt = c.now()
	c.loaded = true
	return c.value, nil
}

// Refresh reloads the value immediately regardless of age.
func (c *Cache[T]) Refresh() (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	value, err := c.load()
	if err != nil {
		var zero T
		return zero, err
	}
	c.value = value
	c.loadedAt = c.now()
	c.loaded = true
	return c.value, nil
}

// Invalidate drops the cached value so the next Get reloads.
func (c *Cache[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = false
}
