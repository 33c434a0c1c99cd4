package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache defines the interface for caching operations
type Cache interface {
	// Add stores the value only if the key is absent and reports whether it did
	// If expiration is 0, the cache default applies
	Add(ctx context.Context, key string, value interface{}, expiration time.Duration) bool

	// Delete removes a key from the cache
	Delete(ctx context.Context, key string)
}

// Predefined cache key prefixes
const (
	PrefixWebhookEvent = "webhook_event:v1:"
)

// GenerateKey creates a cache key from a prefix and identifiers
func GenerateKey(prefix string, ids ...interface{}) string {
	key := prefix
	for i, id := range ids {
		if i > 0 {
			key += ":"
		}
		key += fmt.Sprintf("%v", id)
	}
	return key
}
