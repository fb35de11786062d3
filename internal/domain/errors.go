// Package domain contains the core business entities for FilmVault.
package domain

import (
	"errors"
	"fmt"
)

// Domain errors - these represent business rule violations.
// They are distinct from infrastructure errors (storage, network, etc.).

var (
	// ===========================================
	// User Errors
	// ===========================================

	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates a user with the same username exists.
	ErrUserAlreadyExists = errors.New("username already exists")

	// ErrEmailAlreadyExists indicates a user with the same email exists.
	ErrEmailAlreadyExists = errors.New("email already registered")

	// ErrInvalidCredentials indicates authentication failed.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidUsername indicates the username violates directory constraints.
	ErrInvalidUsername = fmt.Errorf("invalid username: must be at least %d characters", MinUsernameLength)

	// ErrInvalidPassword indicates the password violates the directory policy.
	ErrInvalidPassword = fmt.Errorf("invalid password: must be at least %d characters", MinPasswordLength)

	// ErrInvalidEmail indicates the email address is malformed.
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrNotAuthenticated indicates no user is currently logged in.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ===========================================
	// Folder Errors
	// ===========================================

	// ErrFolderNotFound indicates the requested folder does not exist.
	ErrFolderNotFound = errors.New("folder not found")

	// ErrFolderTitleEmpty indicates the folder title is empty.
	ErrFolderTitleEmpty = errors.New("folder title must not be empty")

	// ===========================================
	// Review Errors
	// ===========================================

	// ErrInvalidRating indicates the rating is outside the 1-10 scale.
	ErrInvalidRating = errors.New("rating must be between 1 and 10")

	// ErrEmptyComment indicates the review comment is empty.
	ErrEmptyComment = errors.New("review comment must not be empty")

	// ===========================================
	// Catalog Errors
	// ===========================================

	// ErrMovieNotFound indicates the catalog has no movie with that ID.
	ErrMovieNotFound = errors.New("movie not found")

	// ===========================================
	// Storage Errors
	// ===========================================

	// ErrStorageFailure indicates a persistence write was rejected.
	// The in-memory state remains authoritative for the session, but
	// callers must warn that changes may not survive a restart.
	ErrStorageFailure = errors.New("storage failure")

	// ErrProfilePictureNotFound indicates no picture blob is stored.
	ErrProfilePictureNotFound = errors.New("profile picture not found")
)

// DomainError wraps a domain error with additional context.
type DomainError struct {
	// Err is the underlying domain error.
	Err error

	// Message provides additional context.
	Message string

	// Resource identifies the affected resource (e.g., username, folder ID).
	Resource string
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Resource != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Err.Error(), e.Message, e.Resource)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error for errors.Is/errors.As.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError with context.
func NewDomainError(err error, message, resource string) *DomainError {
	return &DomainError{
		Err:      err,
		Message:  message,
		Resource: resource,
	}
}
