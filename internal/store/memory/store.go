// Package memory provides an in-memory store adapter.
// This is suitable for tests and ephemeral single-process runs; nothing
// survives a restart.
package memory

import (
	"context"
	"sync"

	"github.com/filmvault/filmvault/internal/store"
)

// Store implements store.Adapter using an in-process map.
type Store struct {
	mu    sync.RWMutex
	items map[string][]byte

	// quota caps the total stored bytes when > 0, letting tests
	// simulate a quota-exceeded backend.
	quota    int64
	failNext error
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		items: make(map[string][]byte),
	}
}

// SetQuota caps the total stored bytes. Writes that would exceed the
// cap fail with store.ErrQuotaExceeded. A quota of 0 disables the cap.
func (s *Store) SetQuota(bytes int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quota = bytes
}

// FailNextWrite makes the next Write return err, then clears itself.
func (s *Store) FailNextWrite(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = err
}

// Read retrieves a value by key.
func (s *Store) Read(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.items[key]
	if !ok {
		return nil, store.ErrKeyNotFound
	}

	// Return a copy to prevent mutation.
	result := make([]byte, len(value))
	copy(result, value)
	return result, nil
}

// Write stores a value under key.
func (s *Store) Write(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failNext != nil {
		err := s.failNext
		s.failNext = nil
		return err
	}

	if s.quota > 0 {
		var total int64
		for k, v := range s.items {
			if k == key {
				continue
			}
			total += int64(len(v))
		}
		if total+int64(len(value)) > s.quota {
			return store.ErrQuotaExceeded
		}
	}

	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)
	s.items[key] = valueCopy
	return nil
}

// Delete removes a value by key.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}

// Ensure Store implements the adapter contract.
var _ store.Adapter = (*Store)(nil)
