package ports

import (
	"context"
	"time"
)

// CatalogCache stores serialized catalog listings. Get returns ok=false on a miss.
type CatalogCache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
}
