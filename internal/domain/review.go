// Package domain contains the core business entities for FilmVault.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Rating is a numeric movie rating on a 1-10 scale.
type Rating int

// Rating bounds.
const (
	MinRating Rating = 1
	MaxRating Rating = 10
)

// Validate checks that the rating is within the accepted scale.
func (r Rating) Validate() error {
	if r < MinRating || r > MaxRating {
		return ErrInvalidRating
	}
	return nil
}

// Review is a single user review of a movie. Reviews are append-only:
// they are never edited or deleted. MovieID and UserID are snapshot
// references to entities that existed at creation time; validity is
// not enforced after deletion.
type Review struct {
	// ID is the unique review identifier.
	ID string `json:"id"`

	// MovieID is the catalog ID of the reviewed movie.
	MovieID string `json:"movie_id"`

	// UserID is the ID of the author.
	UserID string `json:"user_id"`

	// Rating is the 1-10 score.
	Rating Rating `json:"rating"`

	// Comment is the review text. Constraints: non-empty.
	Comment string `json:"comment"`

	// CreatedAt is the timestamp when the review was submitted.
	CreatedAt time.Time `json:"created_at"`
}

// NewReview creates a Review with a fresh unique ID.
func NewReview(userID, movieID string, rating Rating, comment string) *Review {
	return &Review{
		ID:        uuid.NewString(),
		MovieID:   movieID,
		UserID:    userID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: time.Now().UTC(),
	}
}

// ValidateComment checks that the review comment is non-empty.
func ValidateComment(comment string) error {
	if strings.TrimSpace(comment) == "" {
		return ErrEmptyComment
	}
	return nil
}
