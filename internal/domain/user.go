// Package domain contains the core business entities for FilmVault.
// These are pure Go structs with no heavy external dependencies,
// representing the fundamental concepts of the movie library system.
package domain

import (
	"net/mail"
	"time"

	"github.com/google/uuid"
)

// MinUsernameLength is the minimum accepted username length.
const MinUsernameLength = 3

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// User represents a registered user in the directory.
// A user owns their favorites, folders and reviews; those collections
// are embedded in the user record and persisted as one unit.
type User struct {
	// ID is the unique, stable identifier for the user.
	ID string `json:"id"`

	// Username is the unique username for login and display.
	// Constraints: at least MinUsernameLength characters.
	Username string `json:"username"`

	// Email is the unique email address for the user.
	Email string `json:"email"`

	// PasswordHash is the bcrypt hash of the user's password.
	// This should never be exposed in API responses.
	PasswordHash string `json:"-"`

	// ProfilePicture is the blob store key of the user's profile
	// picture. Empty when no picture has been uploaded.
	ProfilePicture string `json:"profile_picture,omitempty"`

	// Favorites is the user's favorited movies in insertion order,
	// at most one entry per movie ID.
	Favorites []Movie `json:"favorites"`

	// Folders is the user's named movie collections in creation order.
	// Folder IDs are unique within the owning user.
	Folders []Folder `json:"folders"`

	// Reviews is the append-only list of the user's reviews.
	Reviews []Review `json:"reviews"`

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp when the user was last updated.
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser creates a new User with empty collections.
func NewUser(username, email, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Favorites:    []Movie{},
		Folders:      []Folder{},
		Reviews:      []Review{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Clone returns a deep copy of the user record. Repositories hand out
// clones so no caller ever holds a pointer into shared state.
func (u *User) Clone() *User {
	c := *u
	c.Favorites = CloneMovies(u.Favorites)
	if u.Folders != nil {
		c.Folders = make([]Folder, len(u.Folders))
		for i := range u.Folders {
			c.Folders[i] = *u.Folders[i].Clone()
		}
	}
	if u.Reviews != nil {
		c.Reviews = append([]Review(nil), u.Reviews...)
	}
	return &c
}

// HasFavorite reports whether the movie is already in the user's favorites.
func (u *User) HasFavorite(movieID string) bool {
	for _, m := range u.Favorites {
		if m.ID == movieID {
			return true
		}
	}
	return false
}

// FolderByID returns a pointer to the folder with the given ID, or nil.
func (u *User) FolderByID(folderID string) *Folder {
	for i := range u.Folders {
		if u.Folders[i].ID == folderID {
			return &u.Folders[i]
		}
	}
	return nil
}

// Touch updates the UpdatedAt timestamp.
func (u *User) Touch() {
	u.UpdatedAt = time.Now().UTC()
}

// ValidateUsername checks the username against directory constraints.
func ValidateUsername(username string) error {
	if len(username) < MinUsernameLength || len(username) > 255 {
		return ErrInvalidUsername
	}
	return nil
}

// ValidatePassword checks the password against the directory policy.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrInvalidPassword
	}
	return nil
}

// ValidateEmail checks that the email address is well formed.
func ValidateEmail(email string) error {
	if email == "" {
		return ErrInvalidEmail
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrInvalidEmail
	}
	return nil
}
