package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ugochukwu16henry/Team05-handcrafted-haven-project/internal/storage"
)

// setupTestRedis creates a miniredis server and returns a RedisCache instance
func setupTestRedis(t *testing.T, ttl time.Duration) (*RedisCache, *miniredis.Miniredis, func()) {
	// Create an in-memory Redis server
	mr := miniredis.RunT(t)

	// Create Redis client pointing to miniredis
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	cache := NewRedisCache(client, ttl)

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return cache, mr, cleanup
}

func TestGet_Success(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t, 15*time.Minute)
	defer cleanup()

	key := storage.CartKey("buyer-1")
	require.NoError(t, mr.Set(key, `{"version":1,"items":[]}`))

	result, err := cache.Get(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, `{"version":1,"items":[]}`, string(result))
}

func TestGet_CacheMiss(t *testing.T) {
	cache, _, cleanup := setupTestRedis(t, 15*time.Minute)
	defer cleanup()

	result, err := cache.Get(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, storage.ErrSlotNotFound)
	assert.Nil(t, result)
}

func TestGet_ConnectionError(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t, 15*time.Minute)
	defer cleanup()
	mr.SetError("ERR server unavailable")

	_, err := cache.Get(context.Background(), "k")
	require.ErrorContains(t, err, "redis get failed")
	assert.NotErrorIs(t, err, storage.ErrSlotNotFound)
}

func TestPut_WithTTL(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t, 15*time.Minute)
	defer cleanup()

	key := storage.CartKey("buyer-2")
	require.NoError(t, cache.Put(context.Background(), key, []byte("payload")))

	stored, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "payload", stored)

	// Check that TTL was set (miniredis tracks TTL)
	ttl := mr.TTL(key)
	assert.True(t, ttl >= 15*time.Minute, "TTL should be at least base TTL")
	assert.True(t, ttl <= 20*time.Minute, "TTL should be base + max jitter")
}

func TestPut_ZeroTTLNeverExpires(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t, 0)
	defer cleanup()

	key := storage.CartKey("buyer-3")
	require.NoError(t, cache.Put(context.Background(), key, []byte("payload")))

	assert.Zero(t, mr.TTL(key))
	mr.FastForward(365 * 24 * time.Hour)
	assert.True(t, mr.Exists(key))
}

func TestDelete_Success(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t, time.Minute)
	defer cleanup()

	key := storage.CartKey("buyer-4")
	require.NoError(t, mr.Set(key, "payload"))
	assert.True(t, mr.Exists(key))

	require.NoError(t, cache.Delete(context.Background(), key))
	assert.False(t, mr.Exists(key))
}

func TestDelete_NonExistentKey(t *testing.T) {
	cache, _, cleanup := setupTestRedis(t, time.Minute)
	defer cleanup()

	// Deleting non-existent key should not error
	assert.NoError(t, cache.Delete(context.Background(), "nonexistent"))
}

func TestRedisCache_AsTieredCache(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t, time.Minute)
	defer cleanup()

	primary := storage.NewMemorySlot()
	tiered := storage.NewTieredSlot(primary, cache, nil)
	ctx := context.Background()
	key := storage.CartKey("buyer-5")
	require.NoError(t, primary.Put(ctx, key, []byte("v1")))

	got, err := tiered.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "v1", string(got))
	assert.True(t, mr.Exists(key))

	require.NoError(t, tiered.Put(ctx, key, []byte("v2")))
	assert.False(t, mr.Exists(key))
}
