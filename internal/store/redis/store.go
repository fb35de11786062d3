// Package redis provides a store adapter backed by Redis.
// Useful when the application state should live in an existing Redis
// deployment; values are stored without expiry.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/filmvault/filmvault/internal/store"
)

// keyPrefix namespaces FilmVault keys inside a shared Redis database.
const keyPrefix = "filmvault:"

// Config holds Redis connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

// Store implements store.Adapter on a Redis client.
type Store struct {
	client *redis.Client
	logger zerolog.Logger
}

// NewStore creates a new Redis-backed store and verifies the connection.
func NewStore(ctx context.Context, cfg Config, logger zerolog.Logger) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	logger.Info().Str("addr", cfg.Addr).Int("db", cfg.DB).Msg("connected to Redis store")

	return &Store{client: client, logger: logger}, nil
}

// Read retrieves a value by key.
func (s *Store) Read(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, store.ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return value, nil
}

// Write stores a value, replacing any previous value under the key.
func (s *Store) Write(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, keyPrefix+key, value, 0).Err(); err != nil {
		if isOOM(err) {
			return fmt.Errorf("%w: %v", store.ErrQuotaExceeded, err)
		}
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	return nil
}

// Delete removes a value by key. Deleting an absent key is a no-op.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete key %q: %w", key, err)
	}
	return nil
}

// Close closes the Redis client.
func (s *Store) Close() error {
	return s.client.Close()
}

// isOOM checks if an error is Redis rejecting a write under maxmemory.
func isOOM(err error) bool {
	return err != nil && len(err.Error()) >= 3 && err.Error()[:3] == "OOM"
}

// Ensure Store implements the adapter contract.
var _ store.Adapter = (*Store)(nil)
