package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/filmvault/filmvault/internal/domain"
	"github.com/filmvault/filmvault/internal/repository"
)

// FavoriteService manages a user's favorited movies: a de-duplicated,
// insertion-ordered set of movie snapshots embedded in the user record.
type FavoriteService struct {
	users  repository.UserRepository
	logger zerolog.Logger
}

// NewFavoriteService creates a new FavoriteService.
func NewFavoriteService(users repository.UserRepository, logger zerolog.Logger) *FavoriteService {
	return &FavoriteService{
		users:  users,
		logger: logger.With().Str("service", "favorites").Logger(),
	}
}

// getUser resolves a user ID, mapping repository absence to the domain error.
func (s *FavoriteService) getUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return user, nil
}

// update runs fn against the user record inside the repository's
// read-modify-write cycle, mapping repository absence to the domain
// error and passing storage failures through.
func (s *FavoriteService) update(ctx context.Context, userID string, fn func(user *domain.User) error) error {
	err := s.users.Update(ctx, userID, fn)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return domain.ErrUserNotFound
	case errors.Is(err, domain.ErrStorageFailure):
		return err
	default:
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}
}

// Add appends a movie snapshot to the user's favorites and persists
// the record. Adding an already-favorited movie is a no-op, not an
// error. On a storage failure the favorite stays applied in memory and
// the error is surfaced so the caller can warn the user.
func (s *FavoriteService) Add(ctx context.Context, userID string, movie domain.Movie) error {
	err := s.update(ctx, userID, func(user *domain.User) error {
		if user.HasFavorite(movie.ID) {
			return repository.ErrNoChange
		}
		user.Favorites = append(user.Favorites, movie)
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Debug().Str("user_id", userID).Str("movie_id", movie.ID).Msg("favorite added")
	return nil
}

// Remove filters a movie out of the user's favorites and persists the
// record. Removing an absent movie is a no-op, not an error.
func (s *FavoriteService) Remove(ctx context.Context, userID, movieID string) error {
	err := s.update(ctx, userID, func(user *domain.User) error {
		if !user.HasFavorite(movieID) {
			return repository.ErrNoChange
		}
		kept := user.Favorites[:0]
		for _, m := range user.Favorites {
			if m.ID != movieID {
				kept = append(kept, m)
			}
		}
		user.Favorites = kept
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Debug().Str("user_id", userID).Str("movie_id", movieID).Msg("favorite removed")
	return nil
}

// IsFavorite reports whether the movie is in the user's favorites.
func (s *FavoriteService) IsFavorite(ctx context.Context, userID, movieID string) (bool, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return false, err
	}
	return user.HasFavorite(movieID), nil
}

// List returns the user's favorites in insertion order.
func (s *FavoriteService) List(ctx context.Context, userID string) ([]domain.Movie, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	favorites := make([]domain.Movie, len(user.Favorites))
	copy(favorites, user.Favorites)
	return favorites, nil
}
