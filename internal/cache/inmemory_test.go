package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInMemoryCacheAddIsSetIfAbsent(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(time.Hour)
	key := GenerateKey(PrefixWebhookEvent, "evt_123")

	assert.Equal(t, "webhook_event:v1:evt_123", key)
	assert.True(t, c.Add(ctx, key, true, 0))
	assert.False(t, c.Add(ctx, key, true, 0))
	assert.True(t, c.Add(ctx, GenerateKey(PrefixWebhookEvent, "evt_456"), true, 0))

	c.Delete(ctx, key)
	assert.True(t, c.Add(ctx, key, true, 0))
}

func TestInMemoryCacheAddAfterExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(time.Hour)

	assert.True(t, c.Add(ctx, "k", "v", 10*time.Millisecond))
	assert.False(t, c.Add(ctx, "k", "v", 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	assert.True(t, c.Add(ctx, "k", "v2", 0))
	assert.False(t, c.Add(ctx, "k", "v3", 0))
}

func TestDisabledCacheNeverRemembers(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(0)

	assert.True(t, c.Add(ctx, "k", true, 0))
	assert.True(t, c.Add(ctx, "k", true, 0))
	c.Delete(ctx, "k")
}
