package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisSourceConfig holds the configuration for the Redis client.
type RedisSourceConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisSource is a generic Fetcher backed by Redis. Values are stored as JSON
// under the string form of their key. It is a source of truth for a TTRCache,
// not a cache layer itself: it only reads.
type RedisSource[K comparable, V any] struct {
	redisClient *redis.Client
	logger      zerolog.Logger
}

// NewRedisSource creates and connects a new generic RedisSource. It pings the
// Redis server to ensure connectivity before returning.
func NewRedisSource[K comparable, V any](
	ctx context.Context,
	cfg *RedisSourceConfig,
	logger zerolog.Logger,
) (*RedisSource[K, V], error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info().Str("redis_address", cfg.Addr).Msg("Successfully connected to Redis.")

	return &RedisSource[K, V]{
		redisClient: rdb,
		logger:      logger.With().Str("component", "RedisSource").Logger(),
	}, nil
}

// Fetch retrieves and decodes the value stored for key. A missing key is
// reported as ErrNotFound.
func (s *RedisSource[K, V]) Fetch(ctx context.Context, key K) (V, error) {
	var zero V
	stringKey := fmt.Sprintf("%v", key)

	cachedData, err := s.redisClient.Get(ctx, stringKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return zero, fmt.Errorf("key '%s': %w", stringKey, ErrNotFound)
		}
		s.logger.Error().Err(err).Str("key", stringKey).Msg("Unexpected Redis error during fetch.")
		return zero, fmt.Errorf("redis get for %s: %w", stringKey, err)
	}

	var value V
	if err := json.Unmarshal([]byte(cachedData), &value); err != nil {
		s.logger.Error().Err(err).Str("key", stringKey).Msg("Failed to unmarshal source data.")
		return zero, fmt.Errorf("failed to unmarshal data: %w", err)
	}

	s.logger.Debug().Str("key", stringKey).Msg("Fetched data from Redis.")
	return value, nil
}

// Close closes the Redis client connection.
func (s *RedisSource[K, V]) Close() error {
	if s.redisClient != nil {
		s.logger.Info().Msg("Closing Redis client connection...")
		return s.redisClient.Close()
	}
	return nil
}
