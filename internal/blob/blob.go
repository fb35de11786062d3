// Package blob defines the binary blob storage backends used for
// profile pictures. Backends hold opaque byte blobs under string keys;
// implementations include the local filesystem and S3-compatible
// object storage.
package blob

import (
	"context"
	"errors"
)

// ErrBlobNotFound indicates no blob is stored under the key.
var ErrBlobNotFound = errors.New("blob not found")

// Store defines the interface for blob storage backends.
type Store interface {
	// Put stores data under key, replacing any previous blob.
	Put(ctx context.Context, key string, data []byte) error

	// Get retrieves the blob stored under key.
	// Returns ErrBlobNotFound when absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes the blob under key. Deleting an absent key is a
	// no-op.
	Delete(ctx context.Context, key string) error
}
