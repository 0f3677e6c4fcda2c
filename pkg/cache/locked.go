package cache

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// LockedTTRCache wraps a TTRCache behind a mutex so it can be shared between
// goroutines. The lock is held for the full duration of each Fetch, including
// the synchronous source call, because the underlying check-then-fetch-then-
// insert sequence must run exclusively. Callers racing on the same stale key
// therefore refresh it once, not repeatedly, at the cost of serializing all
// access through the cache.
type LockedTTRCache[K comparable, V any] struct {
	mu    sync.Mutex
	cache *TTRCache[K, V]
}

// NewLockedTTRCache creates a TTR cache safe for concurrent use. Parameters
// are those of NewTTRCache.
func NewLockedTTRCache[K comparable, V any](
	refreshAfter time.Duration,
	fetcher Fetcher[K, V],
	logger zerolog.Logger,
) (*LockedTTRCache[K, V], error) {
	inner, err := NewTTRCache(refreshAfter, fetcher, logger)
	if err != nil {
		return nil, err
	}
	return &LockedTTRCache[K, V]{cache: inner}, nil
}

// Fetch behaves exactly like TTRCache.Fetch, under the wrapper's lock.
func (c *LockedTTRCache[K, V]) Fetch(ctx context.Context, key K) (V, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Fetch(ctx, key)
}

// Close closes the underlying cache.
func (c *LockedTTRCache[K, V]) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Close()
}
