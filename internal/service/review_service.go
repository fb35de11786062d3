package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/filmvault/filmvault/internal/domain"
	"github.com/filmvault/filmvault/internal/repository"
)

// ReviewService manages per-user movie reviews. Reviews are
// append-only and a user may review the same movie more than once;
// that duplication is observed upstream behavior kept on purpose.
type ReviewService struct {
	users  repository.UserRepository
	logger zerolog.Logger
}

// NewReviewService creates a new ReviewService.
func NewReviewService(users repository.UserRepository, logger zerolog.Logger) *ReviewService {
	return &ReviewService{
		users:  users,
		logger: logger.With().Str("service", "reviews").Logger(),
	}
}

// Add appends a review to the user's record and persists it.
// Validation (rating in range, non-empty comment) happens before any
// storage access.
func (s *ReviewService) Add(ctx context.Context, userID, movieID string, rating domain.Rating, comment string) (*domain.Review, error) {
	if err := rating.Validate(); err != nil {
		return nil, err
	}
	if err := domain.ValidateComment(comment); err != nil {
		return nil, err
	}

	review := domain.NewReview(userID, movieID, rating, comment)
	err := s.users.Update(ctx, userID, func(user *domain.User) error {
		user.Reviews = append(user.Reviews, *review)
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		if errors.Is(err, domain.ErrStorageFailure) {
			return review, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Debug().
		Str("user_id", userID).
		Str("movie_id", movieID).
		Int("rating", int(rating)).
		Msg("review added")

	return review, nil
}

// ListByUser returns a user's own reviews in submission order.
func (s *ReviewService) ListByUser(ctx context.Context, userID string) ([]domain.Review, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	reviews := make([]domain.Review, len(user.Reviews))
	copy(reviews, user.Reviews)
	return reviews, nil
}

// ListByMovie returns every user's reviews of a movie, ordered by
// submission time. This scans the whole directory; the upstream app
// only ever read the current user's reviews, so the multi-user
// semantics are defined here: all users, chronological order.
func (s *ReviewService) ListByMovie(ctx context.Context, movieID string) ([]domain.Review, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	var reviews []domain.Review
	for _, user := range users {
		for _, review := range user.Reviews {
			if review.MovieID == movieID {
				reviews = append(reviews, review)
			}
		}
	}

	sort.Slice(reviews, func(i, j int) bool {
		if reviews[i].CreatedAt.Equal(reviews[j].CreatedAt) {
			return reviews[i].ID < reviews[j].ID
		}
		return reviews[i].CreatedAt.Before(reviews[j].CreatedAt)
	})
	return reviews, nil
}
