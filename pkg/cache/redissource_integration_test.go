//go:build integration

package cache_test

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/illmade-knight/go-ttr-cache/pkg/cache"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type redisTestValue struct {
	ID   string
	Data []byte
}

// Requires a reachable Redis at TTR_REDIS_ADDR, e.g.
// docker run -p 6379:6379 redis && TTR_REDIS_ADDR=localhost:6379 go test -tags=integration ./...
func TestRedisSource_Integration(t *testing.T) {
	addr := os.Getenv("TTR_REDIS_ADDR")
	if addr == "" {
		t.Skip("TTR_REDIS_ADDR not set; skipping Redis integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	t.Cleanup(cancel)

	// Seed the source of truth directly.
	seed := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = seed.Close() })

	key := "ttr-test-" + uuid.NewString()
	value := redisTestValue{ID: uuid.NewString(), Data: []byte("hello world")}
	payload, err := json.Marshal(value)
	require.NoError(t, err)
	require.NoError(t, seed.Set(ctx, key, payload, time.Minute).Err())

	source, err := cache.NewRedisSource[string, redisTestValue](ctx, &cache.RedisSourceConfig{Addr: addr}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = source.Close() })

	t.Run("Fetch Hit", func(t *testing.T) {
		retrieved, err := source.Fetch(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, value, retrieved)
	})

	t.Run("Fetch Miss", func(t *testing.T) {
		_, err := source.Fetch(ctx, "ttr-missing-"+uuid.NewString())
		require.Error(t, err)
		assert.ErrorIs(t, err, cache.ErrNotFound)
	})

	t.Run("TTRCache refreshes from Redis when stale", func(t *testing.T) {
		c, err := cache.NewTTRCache[string, redisTestValue](100*time.Millisecond, source, zerolog.Nop())
		require.NoError(t, err)

		first, err := c.Fetch(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, value, first)

		// Move the source on, then let the entry age past the refresh window.
		updated := redisTestValue{ID: value.ID, Data: []byte("updated")}
		payload, err := json.Marshal(updated)
		require.NoError(t, err)
		require.NoError(t, seed.Set(ctx, key, payload, time.Minute).Err())

		// This is one of the few acceptable uses of time.Sleep in a test, as we
		// are explicitly verifying a time-based feature.
		time.Sleep(150 * time.Millisecond)

		second, err := c.Fetch(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, updated, second, "A stale entry should pick up the new Redis value")
	})
}
