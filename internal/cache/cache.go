package cache

import (
	"crypto/md5"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Item is one cached response body with its expiry.
type Item struct {
	Data      []byte
	ExpiresAt time.Time
}

// Expired reports whether the item's TTL has elapsed.
func (i *Item) Expired() bool {
	return time.Now().After(i.ExpiresAt)
}

// Cache is a thread-safe TTL cache for upstream response bodies. Entries are
// a performance hint only; callers must not assume freshness.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*Item
	ttl   time.Duration
}

// New creates a cache with the given TTL and starts a background sweep.
func New(ttl time.Duration) *Cache {
	c := &Cache{
		items: make(map[string]*Item),
		ttl:   ttl,
	}
	go c.sweep()
	return c
}

func (c *Cache) sweep() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		for key, item := range c.items {
			if item.Expired() {
				delete(c.items, key)
			}
		}
		c.mu.Unlock()
	}
}

// Key builds a stable cache key from its parts.
func Key(parts ...string) string {
	hash := md5.Sum([]byte(strings.Join(parts, "|")))
	return fmt.Sprintf("%x", hash)
}

// Get returns the cached data for key, if present and fresh.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.items[key]
	if !ok || item.Expired() {
		return nil, false
	}
	return item.Data, true
}

// Set stores data under key for one TTL window.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = &Item{
		Data:      data,
		ExpiresAt: time.Now().Add(c.ttl),
	}
}

// Size returns the number of live entries, expired or not.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
