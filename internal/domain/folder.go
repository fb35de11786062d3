// Package domain contains the core business entities for FilmVault.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Folder is a named collection of movie snapshots owned by one user.
// Folders belong exclusively to their owner; deleting a folder discards
// the snapshots inside it and nothing else.
type Folder struct {
	// ID is the folder identifier, unique within the owning user.
	ID string `json:"id"`

	// Title is the display name. Constraints: non-empty.
	Title string `json:"title"`

	// Description is optional free-form text.
	Description string `json:"description"`

	// Movies holds the folder's movie snapshots in insertion order,
	// at most one entry per movie ID.
	Movies []Movie `json:"movies"`

	// CreatedAt is the timestamp when the folder was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp when the folder was last modified.
	UpdatedAt time.Time `json:"updated_at"`
}

// NewFolder creates a new empty Folder with a fresh unique ID.
func NewFolder(title, description string) *Folder {
	now := time.Now().UTC()
	return &Folder{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Movies:      []Movie{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Clone returns a deep copy of the folder.
func (f *Folder) Clone() *Folder {
	c := *f
	c.Movies = CloneMovies(f.Movies)
	return &c
}

// HasMovie reports whether the movie is already in the folder.
func (f *Folder) HasMovie(movieID string) bool {
	for _, m := range f.Movies {
		if m.ID == movieID {
			return true
		}
	}
	return false
}

// AddMovie appends a movie snapshot to the folder.
// Adding an already-present movie is a no-op, not an error.
func (f *Folder) AddMovie(movie Movie) {
	if f.HasMovie(movie.ID) {
		return
	}
	f.Movies = append(f.Movies, movie)
	f.UpdatedAt = time.Now().UTC()
}

// RemoveMovie removes a movie from the folder by ID.
// Removing an absent movie is a no-op, not an error.
func (f *Folder) RemoveMovie(movieID string) {
	kept := f.Movies[:0]
	for _, m := range f.Movies {
		if m.ID != movieID {
			kept = append(kept, m)
		}
	}
	if len(kept) != len(f.Movies) {
		f.Movies = kept
		f.UpdatedAt = time.Now().UTC()
	}
}

// ValidateFolderTitle checks that the folder title is non-empty.
func ValidateFolderTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrFolderTitleEmpty
	}
	return nil
}
