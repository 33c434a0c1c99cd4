package cache

import (
	"context"
	"time"

	goCache "github.com/patrickmn/go-cache"
)

// DefaultExpiration is the default expiration time for cache entries
const DefaultExpiration = 24 * time.Hour

// DefaultCleanupInterval is how often expired items are removed from the cache
const DefaultCleanupInterval = 1 * time.Hour

// InMemoryCache implements the Cache interface using github.com/patrickmn/go-cache.
// Entries live only as long as the process.
type InMemoryCache struct {
	cache   *goCache.Cache
	enabled bool
}

// NewInMemoryCache creates a cache whose entries expire after ttl. A zero ttl disables it:
// every Add succeeds and nothing is remembered.
func NewInMemoryCache(ttl time.Duration) *InMemoryCache {
	if ttl <= 0 {
		return &InMemoryCache{enabled: false}
	}
	cleanup := DefaultCleanupInterval
	if ttl < cleanup {
		cleanup = ttl
	}
	return &InMemoryCache{
		cache:   goCache.New(ttl, cleanup),
		enabled: true,
	}
}

// Add stores value under key only when the key is absent or expired
func (c *InMemoryCache) Add(ctx context.Context, key string, value interface{}, expiration time.Duration) bool {
	if !c.enabled {
		return true
	}
	span := StartCacheSpan(ctx, "inmemory", "add", map[string]interface{}{"key": key})
	defer FinishSpan(span)

	return c.cache.Add(key, value, toExpiration(expiration)) == nil
}

// Delete removes a key from the cache
func (c *InMemoryCache) Delete(_ context.Context, key string) {
	if !c.enabled {
		return
	}
	c.cache.Delete(key)
}

func toExpiration(d time.Duration) time.Duration {
	if d <= 0 {
		return goCache.DefaultExpiration
	}
	return d
}
