// Package storekv implements the repository interfaces on top of the
// key-value store adapter. The whole user directory is serialized as
// one JSON document under store.UsersKey; every mutation is a
// read-modify-write cycle over that document.
//
// The loaded directory is authoritative for the lifetime of the
// repository: when a persist fails, the mutation stays applied in
// memory and the caller receives domain.ErrStorageFailure so it can
// warn that changes may not survive a restart.
//
// The repository owns the whole read-modify-write cycle: reads hand
// out deep copies, and mutations of existing records run through
// Update, which applies the callback and persists under both the
// injected locker and the repository mutex. No caller ever holds a
// live pointer into the directory map. Separate processes sharing a
// backend still race (last writer wins), a documented limitation of
// the store contract.
package storekv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/filmvault/filmvault/internal/domain"
	"github.com/filmvault/filmvault/internal/lock"
	"github.com/filmvault/filmvault/internal/repository"
	"github.com/filmvault/filmvault/internal/store"
)

// Lock parameters for serializing directory mutations in-process.
const (
	lockTTL        = 5 * time.Second
	lockMaxRetries = 50
	lockRetryDelay = 10 * time.Millisecond
)

// UserRepo implements repository.UserRepository over a store.Adapter.
type UserRepo struct {
	adapter store.Adapter
	locker  lock.Locker
	logger  zerolog.Logger

	mu     sync.RWMutex
	users  map[string]*domain.User
	loaded bool
}

// NewUserRepo creates a repository over the given adapter.
// The directory is loaded lazily on first access.
func NewUserRepo(adapter store.Adapter, locker lock.Locker, logger zerolog.Logger) *UserRepo {
	return &UserRepo{
		adapter: adapter,
		locker:  locker,
		logger:  logger.With().Str("repository", "users").Logger(),
	}
}

// load reads the directory from the store if it hasn't been read yet.
// An absent key means an empty directory, not an error.
func (r *UserRepo) load(ctx context.Context) error {
	if r.loaded {
		return nil
	}

	r.users = make(map[string]*domain.User)

	raw, err := r.adapter.Read(ctx, store.UsersKey)
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			r.loaded = true
			return nil
		}
		return fmt.Errorf("failed to load user directory: %w", err)
	}

	if err := json.Unmarshal(raw, &r.users); err != nil {
		return fmt.Errorf("failed to decode user directory: %w", err)
	}

	r.loaded = true
	r.logger.Debug().Int("users", len(r.users)).Msg("user directory loaded")
	return nil
}

// persist serializes the whole directory back to the store.
// Rewrites every record on each call; acceptable at this data scale.
func (r *UserRepo) persist(ctx context.Context) error {
	raw, err := json.Marshal(r.users)
	if err != nil {
		return fmt.Errorf("failed to encode user directory: %w", err)
	}

	if err := r.adapter.Write(ctx, store.UsersKey, raw); err != nil {
		r.logger.Warn().Err(err).Msg("user directory persist failed; in-memory state retained")
		return fmt.Errorf("%w: %v", domain.ErrStorageFailure, err)
	}
	return nil
}

// withLock runs fn while holding the directory lock.
func (r *UserRepo) withLock(ctx context.Context, fn func() error) error {
	acquired, err := r.locker.AcquireWithRetry(ctx, store.UsersKey, lockTTL, lockMaxRetries, lockRetryDelay)
	if err != nil {
		return err
	}
	if !acquired {
		return lock.ErrNotAcquired
	}
	defer r.locker.Release(ctx, store.UsersKey)

	return fn()
}

// Create adds a new user and persists the directory.
func (r *UserRepo) Create(ctx context.Context, user *domain.User) error {
	return r.withLock(ctx, func() error {
		r.mu.Lock()
		defer r.mu.Unlock()

		if err := r.load(ctx); err != nil {
			return err
		}

		for _, existing := range r.users {
			if existing.Username == user.Username {
				return domain.ErrUserAlreadyExists
			}
			if existing.Email == user.Email {
				return domain.ErrEmailAlreadyExists
			}
		}

		r.users[user.ID] = user.Clone()
		return r.persist(ctx)
	})
}

// GetByID retrieves a user by ID. The returned record is a deep copy.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.load(ctx); err != nil {
		return nil, err
	}

	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return user.Clone(), nil
}

// GetByUsername retrieves a user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.load(ctx); err != nil {
		return nil, err
	}

	for _, user := range r.users {
		if user.Username == username {
			return user.Clone(), nil
		}
	}
	return nil, repository.ErrNotFound
}

// GetByEmail retrieves a user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.load(ctx); err != nil {
		return nil, err
	}

	for _, user := range r.users {
		if user.Email == email {
			return user.Clone(), nil
		}
	}
	return nil, repository.ErrNotFound
}

// Update applies fn to the stored record and persists the directory.
// The load, the callback and the persist all run under the directory
// lock and the repository mutex, so concurrent mutations of the same
// or different users never interleave.
func (r *UserRepo) Update(ctx context.Context, id string, fn func(user *domain.User) error) error {
	return r.withLock(ctx, func() error {
		r.mu.Lock()
		defer r.mu.Unlock()

		if err := r.load(ctx); err != nil {
			return err
		}

		user, ok := r.users[id]
		if !ok {
			return repository.ErrNotFound
		}

		if err := fn(user); err != nil {
			if errors.Is(err, repository.ErrNoChange) {
				return nil
			}
			return err
		}

		user.Touch()
		return r.persist(ctx)
	})
}

// Save replaces an existing user record wholesale. The stored record
// is a copy; the caller keeps sole ownership of the one passed in.
func (r *UserRepo) Save(ctx context.Context, user *domain.User) error {
	return r.withLock(ctx, func() error {
		r.mu.Lock()
		defer r.mu.Unlock()

		if err := r.load(ctx); err != nil {
			return err
		}

		if _, ok := r.users[user.ID]; !ok {
			return repository.ErrNotFound
		}

		user.Touch()
		r.users[user.ID] = user.Clone()
		return r.persist(ctx)
	})
}

// Delete removes a user by ID and persists the directory.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	return r.withLock(ctx, func() error {
		r.mu.Lock()
		defer r.mu.Unlock()

		if err := r.load(ctx); err != nil {
			return err
		}

		if _, ok := r.users[id]; !ok {
			return repository.ErrNotFound
		}

		delete(r.users, id)
		return r.persist(ctx)
	})
}

// List returns all users ordered by creation time.
func (r *UserRepo) List(ctx context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.load(ctx); err != nil {
		return nil, err
	}

	users := make([]*domain.User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, user.Clone())
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID < users[j].ID
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

// ExistsByUsername checks if a user with the given username exists.
func (r *UserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ExistsByEmail checks if a user with the given email exists.
func (r *UserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Ensure UserRepo implements the repository contract.
var _ repository.UserRepository = (*UserRepo)(nil)
