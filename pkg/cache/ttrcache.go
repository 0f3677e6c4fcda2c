package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
)

// ErrNotFound is returned by a Fetch when no value exists for the key. For a
// TTRCache this means the key has never been successfully fetched from its
// source.
var ErrNotFound = errors.New("key not found")

// entry is the stored state for one key: the value and the time it was last
// fetched from the source. Entries are replaced wholesale on refresh, never
// mutated in place.
type entry[V any] struct {
	fetchedAt time.Time
	value     V
}

// TTRCache is a generic time-to-refresh cache. Every entry remembers when it
// was last fetched from the owned source Fetcher; a Fetch call that finds the
// entry older than the configured refresh interval re-fetches it synchronously
// on the calling path before returning. A failed re-fetch changes nothing: a
// populated key keeps serving its last good value until a later refresh
// succeeds, and an unpopulated key is retried on every call.
//
// The cache is unbounded and never evicts; the only way to populate or
// refresh an entry is through Fetch.
//
// TTRCache is NOT internally synchronized. Fetch mutates cache state, and the
// check-then-fetch-then-insert sequence is not atomic, so concurrent callers
// must provide external mutual exclusion for the full duration of each Fetch
// (or use LockedTTRCache, which does exactly that).
type TTRCache[K comparable, V any] struct {
	refreshAfter time.Duration
	fetcher      Fetcher[K, V]
	logger       zerolog.Logger

	entries map[K]entry[V]
	now     func() time.Time // replaced in tests to control staleness
}

// NewTTRCache creates a cold TTR cache that refreshes entries older than
// refreshAfter from the given fetcher. The cache owns the fetcher for its
// lifetime; no fetch is performed at construction. A zero or negative
// refreshAfter is a valid, if degenerate, configuration that re-fetches on
// every call.
func NewTTRCache[K comparable, V any](
	refreshAfter time.Duration,
	fetcher Fetcher[K, V],
	logger zerolog.Logger,
) (*TTRCache[K, V], error) {
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher cannot be nil")
	}
	return &TTRCache[K, V]{
		refreshAfter: refreshAfter,
		fetcher:      fetcher,
		logger:       logger.With().Str("component", "TTRCache").Logger(),
		entries:      make(map[K]entry[V]),
		now:          time.Now,
	}, nil
}

// Fetch returns the value for key, first refreshing it from the source if the
// stored entry is missing or stale. It returns ErrNotFound only when the key
// has never been successfully fetched; once a key is populated, source
// failures are absorbed and the stale value is served until a refresh
// succeeds.
func (c *TTRCache[K, V]) Fetch(ctx context.Context, key K) (V, error) {
	c.refresh(ctx, key)

	if e, ok := c.entries[key]; ok {
		return e.value, nil
	}
	var zero V
	return zero, fmt.Errorf("key '%v': %w", key, ErrNotFound)
}

// refresh re-fetches key if it has no entry or its entry has aged to the
// refresh interval. Elapsed time exactly equal to the interval counts as
// stale.
func (c *TTRCache[K, V]) refresh(ctx context.Context, key K) {
	e, ok := c.entries[key]
	if ok && c.now().Sub(e.fetchedAt) < c.refreshAfter {
		return
	}
	c.fetchEntity(ctx, key)
}

// fetchEntity asks the source for key and overwrites the entry on success. On
// failure nothing changes: an existing entry keeps its old value and
// timestamp, so the next Fetch retries immediately.
func (c *TTRCache[K, V]) fetchEntity(ctx context.Context, key K) {
	value, err := c.fetcher.Fetch(ctx, key)
	if err != nil {
		c.logger.Debug().Err(err).Str("key", fmt.Sprintf("%v", key)).Msg("Source fetch failed; keeping existing state.")
		return
	}
	c.entries[key] = entry[V]{fetchedAt: c.now(), value: value}
}

// Close releases the owned fetcher if it holds resources. The cache itself
// has nothing to release.
func (c *TTRCache[K, V]) Close() error {
	if closer, ok := c.fetcher.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
