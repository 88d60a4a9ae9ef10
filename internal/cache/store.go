package cache

import (
	"context"
	"errors"
	"time"
)

// ErrStoreUnavailable is returned by a nil or closed store.
var ErrStoreUnavailable = errors.New("cache: store not initialised")

// Store is the shared cache used for rate limiting and search results.
type Store interface {
	IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, keys ...string) error
}
