package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "foodordering:"

// CatalogCache stores serialized menu and category listings in Redis.
// Key format: foodordering:<listing key>
type CatalogCache struct {
	client redis.UniversalClient
}

// NewCatalogCache creates a CatalogCache wrapping the given Redis client.
func NewCatalogCache(client redis.UniversalClient) *CatalogCache {
	return &CatalogCache{client: client}
}

// Get returns the cached listing for key; ok is false on a miss.
func (c *CatalogCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("catalog cache get: %w", err)
	}
	return data, true, nil
}

// Set stores a listing; it expires after ttl (never when ttl <= 0).
func (c *CatalogCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := c.client.Set(ctx, c.key(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("catalog cache set: %w", err)
	}
	return nil
}

func (c *CatalogCache) key(k string) string {
	return keyPrefix + k
}
