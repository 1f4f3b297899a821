package ports

import (
	"context"
	"time"
)

// ViewCache stores rendered read-model payloads (taxonomy tree, dashboard
// aggregates) with a TTL. A miss returns nil, nil.
type ViewCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
