package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dealscout/backend/internal/domain"
)

const defaultLRUMaxSize = 512

// lruItem holds a cached value alongside its expiration time
type lruItem struct {
	Value      string
	Expiration time.Time
}

// LRUCache is a bounded extraction cache backed by hashicorp/golang-lru.
// Capacity is enforced by LRU eviction; staleness by per-entry TTL checked
// on read. Expired entries are removed so the LRU bookkeeping stays clean.
type LRUCache struct {
	cache *lru.Cache[string, lruItem]
}

// NewLRUCache creates a bounded cache with the given maximum entry count.
// Non-positive sizes fall back to the default.
func NewLRUCache(maxSize int) (*LRUCache, error) {
	if maxSize <= 0 {
		maxSize = defaultLRUMaxSize
	}
	inner, err := lru.New[string, lruItem](maxSize)
	if err != nil {
		return nil, err
	}
	return &LRUCache{cache: inner}, nil
}

// Get retrieves a value, treating expired entries as misses
func (c *LRUCache) Get(ctx context.Context, key string) (string, error) {
	item, ok := c.cache.Get(key)
	if !ok {
		return "", domain.ErrCacheMiss
	}
	if time.Now().After(item.Expiration) {
		c.cache.Remove(key)
		return "", domain.ErrCacheMiss
	}
	return item.Value, nil
}

// Set stores a value with TTL, evicting the least recently used entry when full
func (c *LRUCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	c.cache.Add(key, lruItem{
		Value:      value,
		Expiration: time.Now().Add(ttl),
	})
	return nil
}

// Delete removes a value from the cache
func (c *LRUCache) Delete(ctx context.Context, key string) error {
	c.cache.Remove(key)
	return nil
}

// Exists checks if a key exists and is not expired without bumping recency
func (c *LRUCache) Exists(ctx context.Context, key string) (bool, error) {
	item, ok := c.cache.Peek(key)
	if !ok {
		return false, nil
	}
	if time.Now().After(item.Expiration) {
		return false, nil
	}
	return true, nil
}

// Size returns the current number of items in the cache
func (c *LRUCache) Size() int {
	return c.cache.Len()
}

// Clear removes all items from the cache
func (c *LRUCache) Clear() {
	c.cache.Purge()
}

var _ domain.CacheRepository = (*LRUCache)(nil)
