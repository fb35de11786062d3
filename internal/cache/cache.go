// Package cache defines the byte-oriented cache used to keep external
// catalog responses warm between requests.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss indicates the key was not found in cache.
var ErrCacheMiss = errors.New("cache miss")

// Cache is a TTL-aware key/value cache. A missing or expired key
// returns ErrCacheMiss; cache failures are never fatal to callers.
type Cache interface {
	// Get retrieves a value by key.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value by key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
