package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/filmvault/filmvault/internal/domain"
)

func TestReviewService_Add(t *testing.T) {
	repo := NewMockUserRepository()
	svc := NewReviewService(repo, zerolog.Nop())
	ctx := context.Background()
	user := seedUser(t, repo, "alice")

	review, err := svc.Add(ctx, user.ID, "tt1375666", 8, "great heist movie")
	require.NoError(t, err)
	require.NotEmpty(t, review.ID)
	require.Equal(t, user.ID, review.UserID)
	require.Equal(t, "tt1375666", review.MovieID)

	reviews, err := svc.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
}

func TestReviewService_AddValidation(t *testing.T) {
	repo := NewMockUserRepository()
	svc := NewReviewService(repo, zerolog.Nop())
	ctx := context.Background()
	user := seedUser(t, repo, "alice")

	tests := []struct {
		name    string
		rating  domain.Rating
		comment string
		wantErr error
	}{
		{"rating below range", 0, "fine", domain.ErrInvalidRating},
		{"rating above range", 11, "fine", domain.ErrInvalidRating},
		{"negative rating", -1, "fine", domain.ErrInvalidRating},
		{"empty comment", 5, "", domain.ErrEmptyComment},
		{"whitespace comment", 5, "   ", domain.ErrEmptyComment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Add(ctx, user.ID, "tt1375666", tt.rating, tt.comment)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	// Nothing was stored by the rejected adds.
	reviews, err := svc.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Empty(t, reviews)
}

func TestReviewService_RatingBounds(t *testing.T) {
	repo := NewMockUserRepository()
	svc := NewReviewService(repo, zerolog.Nop())
	ctx := context.Background()
	user := seedUser(t, repo, "alice")

	for _, rating := range []domain.Rating{domain.MinRating, domain.MaxRating} {
		_, err := svc.Add(ctx, user.ID, "tt1375666", rating, "edge of the scale")
		require.NoError(t, err)
	}
}

// Reviewing the same movie twice records two reviews; there is no
// upsert.
func TestReviewService_DuplicatesAllowed(t *testing.T) {
	repo := NewMockUserRepository()
	svc := NewReviewService(repo, zerolog.Nop())
	ctx := context.Background()
	user := seedUser(t, repo, "alice")

	_, err := svc.Add(ctx, user.ID, "tt1375666", 6, "first watch")
	require.NoError(t, err)
	_, err = svc.Add(ctx, user.ID, "tt1375666", 9, "better the second time")
	require.NoError(t, err)

	reviews, err := svc.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	require.Equal(t, domain.Rating(6), reviews[0].Rating)
	require.Equal(t, domain.Rating(9), reviews[1].Rating)
}

func TestReviewService_ListByMovie(t *testing.T) {
	repo := NewMockUserRepository()
	svc := NewReviewService(repo, zerolog.Nop())
	ctx := context.Background()
	alice := seedUser(t, repo, "alice")
	bob := seedUser(t, repo, "bob")

	_, err := svc.Add(ctx, alice.ID, "tt1375666", 8, "great")
	require.NoError(t, err)
	_, err = svc.Add(ctx, bob.ID, "tt1375666", 4, "overrated")
	require.NoError(t, err)
	_, err = svc.Add(ctx, alice.ID, "tt0133093", 10, "a classic")
	require.NoError(t, err)

	reviews, err := svc.ListByMovie(ctx, "tt1375666")
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	for _, r := range reviews {
		require.Equal(t, "tt1375666", r.MovieID)
	}

	none, err := svc.ListByMovie(ctx, "tt9999999")
	require.NoError(t, err)
	require.Empty(t, none)
}

// A review that failed to persist is still returned and visible for
// the running session.
func TestReviewService_StorageFailureKeepsReview(t *testing.T) {
	repo := NewMockUserRepository()
	svc := NewReviewService(repo, zerolog.Nop())
	ctx := context.Background()
	user := seedUser(t, repo, "alice")

	repo.saveErr = domain.ErrStorageFailure

	review, err := svc.Add(ctx, user.ID, "tt1375666", 7, "solid")
	require.ErrorIs(t, err, domain.ErrStorageFailure)
	require.NotNil(t, review)

	repo.saveErr = nil
	reviews, err := svc.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
}

func TestReviewService_UnknownUser(t *testing.T) {
	svc := NewReviewService(NewMockUserRepository(), zerolog.Nop())

	_, err := svc.Add(context.Background(), "missing", "tt1375666", 5, "good")
	require.True(t, errors.Is(err, domain.ErrUserNotFound))
}
