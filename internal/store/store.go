// Package store defines the persistent key-value store abstraction for
// FilmVault. The application state (the user directory and the session)
// is serialized as JSON under a small number of named keys; adapters
// provide durable backends for those keys without any business logic.
//
// There is no transactional guarantee across keys, and no coordination
// between processes sharing one backend: concurrent writers race and
// the last write wins. Callers own serializing their own
// read-modify-write cycles.
package store

import (
	"context"
	"errors"
)

// Well-known storage keys. The whole user directory lives under one
// key; every mutating call rewrites it wholesale, which is O(total
// users) per write and acceptable at this data scale.
const (
	// UsersKey holds the full user directory as a JSON object keyed
	// by user ID.
	UsersKey = "users"

	// CurrentUserKey holds the active user's ID as a JSON string.
	CurrentUserKey = "current_user"
)

var (
	// ErrKeyNotFound indicates no value is stored under the key.
	ErrKeyNotFound = errors.New("key not found")

	// ErrQuotaExceeded indicates the backend rejected the write for
	// lack of space. Callers must treat this as non-fatal and keep
	// in-memory state as the source of truth for the session.
	ErrQuotaExceeded = errors.New("storage quota exceeded")
)

// Adapter is the contract every storage backend implements.
// Read returns ErrKeyNotFound for absent keys. Write replaces the
// value under the key atomically with respect to that single key only.
type Adapter interface {
	// Read retrieves the value stored under key.
	Read(ctx context.Context, key string) ([]byte, error)

	// Write stores value under key, replacing any previous value.
	Write(ctx context.Context, key string, value []byte) error

	// Delete removes the value under key. Deleting an absent key is
	// a no-op.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
