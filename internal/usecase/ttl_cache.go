package usecase

import (
	"sync"
	"time"
)

type cacheItem[V any] struct {
	value     V
	updatedAt time.Time
}

// TTLCache is a mutex-guarded map of values stamped with their fetch time.
// The map is never exposed; callers go through Get, Set and IsFresh.
type TTLCache[V any] struct {
	mu      sync.RWMutex
	ttl     time.Duration
	items   map[string]cacheItem[V]
	timeNow func() time.Time
}

func NewTTLCache[V any](ttl time.Duration) *TTLCache[V] {
	return &TTLCache[V]{
		ttl:     ttl,
		items:   make(map[string]cacheItem[V]),
		timeNow: time.Now,
	}
}

// Get returns the cached value and whether it is still within the TTL.
// A stale value is still returned with fresh=false.
func (c *TTLCache[V]) Get(key string) (value V, fresh bool, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.items[key]
	if !ok {
		return value, false, false
	}
	return item.value, c.timeNow().Sub(item.updatedAt) < c.ttl, true
}

// Set stores value stamped at updatedAt. An update older than the cached one
// is dropped so timestamps never move backwards; Set reports whether it was stored.
func (c *TTLCache[V]) Set(key string, value V, updatedAt time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cur, ok := c.items[key]; ok && updatedAt.Before(cur.updatedAt) {
		return false
	}
	c.items[key] = cacheItem[V]{value: value, updatedAt: updatedAt}
	return true
}

func (c *TTLCache[V]) IsFresh(key string) bool {
	_, fresh, _ := c.Get(key)
	return fresh
}
