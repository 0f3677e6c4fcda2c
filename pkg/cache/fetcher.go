package cache

import "context"

// Fetcher is the contract between a cache and its source of truth: resolve a
// key to its current value. An error return means no value is available right
// now; the cache does not distinguish "key does not exist upstream" from a
// transient source failure, and a Fetcher is not required to either.
type Fetcher[K any, V any] interface {
	Fetch(ctx context.Context, key K) (V, error)
}

// FetcherFunc adapts a plain function to the Fetcher interface.
type FetcherFunc[K any, V any] func(ctx context.Context, key K) (V, error)

// Fetch calls f.
func (f FetcherFunc[K, V]) Fetch(ctx context.Context, key K) (V, error) {
	return f(ctx, key)
}
