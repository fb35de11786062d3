package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/filmvault/filmvault/internal/domain"
	"github.com/filmvault/filmvault/internal/repository"
)

// FolderService manages a user's named movie collections. All
// operations persist the full user record on success. Add and remove
// are idempotent under retry; create always makes a new folder and a
// second delete of the same ID reports ErrFolderNotFound.
type FolderService struct {
	users  repository.UserRepository
	logger zerolog.Logger
}

// NewFolderService creates a new FolderService.
func NewFolderService(users repository.UserRepository, logger zerolog.Logger) *FolderService {
	return &FolderService{
		users:  users,
		logger: logger.With().Str("service", "folders").Logger(),
	}
}

func (s *FolderService) getUser(ctx context.Context, userID string) (*domain.User, error) {
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
// read-modify-write cycle. Absence of the user maps to the domain
// error; folder-not-found and storage failures pass through.
func (s *FolderService) update(ctx context.Context, userID string, fn func(user *domain.User) error) error {
	err := s.users.Update(ctx, userID, fn)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return domain.ErrUserNotFound
	case errors.Is(err, domain.ErrFolderNotFound), errors.Is(err, domain.ErrStorageFailure):
		return err
	default:
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}
}

// Create makes a new folder with a fresh unique ID.
// Fails when the title is empty; validation happens before any storage
// access.
func (s *FolderService) Create(ctx context.Context, userID, title, description string) (*domain.Folder, error) {
	if err := domain.ValidateFolderTitle(title); err != nil {
		return nil, err
	}

	folder := domain.NewFolder(strings.TrimSpace(title), description)
	err := s.update(ctx, userID, func(user *domain.User) error {
		user.Folders = append(user.Folders, *folder.Clone())
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrStorageFailure) {
			return folder, err
		}
		return nil, err
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("folder_id", folder.ID).
		Str("title", folder.Title).
		Msg("folder created")

	return folder, nil
}

// Rename updates a folder's title and description.
func (s *FolderService) Rename(ctx context.Context, userID, folderID, title, description string) (*domain.Folder, error) {
	if err := domain.ValidateFolderTitle(title); err != nil {
		return nil, err
	}

	var renamed *domain.Folder
	err := s.update(ctx, userID, func(user *domain.User) error {
		folder := user.FolderByID(folderID)
		if folder == nil {
			return domain.ErrFolderNotFound
		}

		folder.Title = strings.TrimSpace(title)
		folder.Description = description
		folder.UpdatedAt = time.Now().UTC()
		renamed = folder.Clone()
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrStorageFailure) {
			return renamed, err
		}
		return nil, err
	}
	return renamed, nil
}

// Delete removes a folder; the movie snapshots inside are discarded.
// A second delete of the same ID reports ErrFolderNotFound.
func (s *FolderService) Delete(ctx context.Context, userID, folderID string) error {
	err := s.update(ctx, userID, func(user *domain.User) error {
		found := false
		kept := user.Folders[:0]
		for _, f := range user.Folders {
			if f.ID == folderID {
				found = true
				continue
			}
			kept = append(kept, f)
		}
		if !found {
			return domain.ErrFolderNotFound
		}
		user.Folders = kept
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info().Str("user_id", userID).Str("folder_id", folderID).Msg("folder deleted")
	return nil
}

// AddMovie appends a movie snapshot to the folder, de-duplicated by
// movie ID. Re-adding a present movie is a no-op.
func (s *FolderService) AddMovie(ctx context.Context, userID, folderID string, movie domain.Movie) (*domain.Folder, error) {
	var updated *domain.Folder
	err := s.update(ctx, userID, func(user *domain.User) error {
		folder := user.FolderByID(folderID)
		if folder == nil {
			return domain.ErrFolderNotFound
		}

		if folder.HasMovie(movie.ID) {
			updated = folder.Clone()
			return repository.ErrNoChange
		}
		folder.AddMovie(movie)
		updated = folder.Clone()
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrStorageFailure) {
			return updated, err
		}
		return nil, err
	}
	return updated, nil
}

// RemoveMovie removes a movie from the folder. Removing an absent
// movie is a no-op.
func (s *FolderService) RemoveMovie(ctx context.Context, userID, folderID, movieID string) (*domain.Folder, error) {
	var updated *domain.Folder
	err := s.update(ctx, userID, func(user *domain.User) error {
		folder := user.FolderByID(folderID)
		if folder == nil {
			return domain.ErrFolderNotFound
		}

		if !folder.HasMovie(movieID) {
			updated = folder.Clone()
			return repository.ErrNoChange
		}
		folder.RemoveMovie(movieID)
		updated = folder.Clone()
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrStorageFailure) {
			return updated, err
		}
		return nil, err
	}
	return updated, nil
}

// Get returns a single folder.
func (s *FolderService) Get(ctx context.Context, userID, folderID string) (*domain.Folder, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	folder := user.FolderByID(folderID)
	if folder == nil {
		return nil, domain.ErrFolderNotFound
	}
	return folder, nil
}

// List returns the user's folders in creation order.
func (s *FolderService) List(ctx context.Context, userID string) ([]domain.Folder, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	folders := make([]domain.Folder, len(user.Folders))
	copy(folders, user.Folders)
	return folders, nil
}
