// Package repository defines data access interfaces for FilmVault.
// These interfaces abstract the persisted user directory, allowing for
// different implementations while keeping the service layer clean.
package repository

import (
	"context"
	"errors"

	"github.com/filmvault/filmvault/internal/domain"
)

// ErrNotFound indicates the requested entity was not found.
var ErrNotFound = errors.New("not found")

// ErrNoChange is returned by an Update callback to signal that the
// record was not modified and the directory does not need persisting.
// Update swallows it and reports success.
var ErrNoChange = errors.New("no change")

// UserRepository defines the interface for user directory access.
//
// Implementations follow whole-record semantics: a user's favorites,
// folders and reviews are part of the user record and are persisted
// together on every write. Writes rewrite the entire directory, an
// O(total users) cost accepted at this data scale.
//
// Reads return independent copies and every mutation of an existing
// record goes through Update, so callers never share memory with the
// repository and read-modify-write cycles are serialized inside it.
type UserRepository interface {
	// Create adds a new user. Fails with domain.ErrUserAlreadyExists
	// or domain.ErrEmailAlreadyExists on uniqueness violations.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByUsername retrieves a user by username.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// GetByEmail retrieves a user by email.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Update applies fn to the stored record and persists the
	// directory, with the whole cycle serialized against other
	// mutations. fn returning ErrNoChange skips the persist and
	// Update reports success; any other error from fn aborts the
	// cycle and is returned unchanged. A persist failure keeps the
	// mutation applied in memory and surfaces
	// domain.ErrStorageFailure.
	Update(ctx context.Context, id string, fn func(user *domain.User) error) error

	// Save replaces an existing user record wholesale. Prefer Update
	// for read-modify-write cycles; Save is for installing a record
	// the caller fully owns.
	Save(ctx context.Context, user *domain.User) error

	// Delete removes a user by ID.
	Delete(ctx context.Context, id string) error

	// List returns all users ordered by creation time.
	List(ctx context.Context) ([]*domain.User, error)

	// ExistsByUsername checks if a user with the given username exists.
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// ExistsByEmail checks if a user with the given email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// SessionRepository defines the interface for the persisted session.
// The session is a single scalar: the ID of the authenticated user.
type SessionRepository interface {
	// CurrentUserID returns the persisted session user ID.
	// Returns ErrNotFound when no session is stored.
	CurrentUserID(ctx context.Context) (string, error)

	// SetCurrentUserID persists the session user ID.
	SetCurrentUserID(ctx context.Context, userID string) error

	// Clear removes the persisted session.
	Clear(ctx context.Context) error
}
