package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ViewCache implements ports.ViewCache using Redis.
type ViewCache struct {
	client *goredis.Client
	prefix string
}

// NewViewCache creates a new Redis-backed view cache.
func NewViewCache(client *goredis.Client) *ViewCache {
	return &ViewCache{
		client: client,
		prefix: "viewcache:",
	}
}

// Get retrieves a cached payload. Returns nil, nil on a miss.
func (c *ViewCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis view cache get: %w", err)
	}
	return val, nil
}

// Set stores a payload with TTL.
func (c *ViewCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis view cache set: %w", err)
	}
	return nil
}

// Delete drops a cached payload so the next read rebuilds it.
func (c *ViewCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis view cache delete: %w", err)
	}
	return nil
}
