package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewCache_SetAndGet(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewViewCache(client)
	ctx := context.Background()

	key := "category:tree"
	value := []byte(`[{"name":"Arts","sub_categories":[]}]`)

	// Get before set => nil
	result, err := cache.Get(ctx, key)
	assert.NoError(t, err)
	assert.Nil(t, result)

	// Set
	err = cache.Set(ctx, key, value, time.Hour)
	require.NoError(t, err)

	// Get after set
	result, err = cache.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, value, result)
}

func TestViewCache_TTLExpiry(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewViewCache(client)
	ctx := context.Background()

	err := cache.Set(ctx, "dashboard:stats", []byte(`{"total_users":10}`), time.Second)
	require.NoError(t, err)

	// Fast-forward time in miniredis
	s.FastForward(2 * time.Second)

	result, err := cache.Get(ctx, "dashboard:stats")
	assert.NoError(t, err)
	assert.Nil(t, result, "expired key should return nil")
}

func TestViewCache_Delete(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewViewCache(client)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "category:tree", []byte("payload"), time.Hour))
	require.NoError(t, cache.Delete(ctx, "category:tree"))

	result, err := cache.Get(ctx, "category:tree")
	assert.NoError(t, err)
	assert.Nil(t, result)
}
