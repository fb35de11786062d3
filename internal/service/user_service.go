package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/filmvault/filmvault/internal/blob"
	"github.com/filmvault/filmvault/internal/domain"
	"github.com/filmvault/filmvault/internal/repository"
)

// UserService is the user directory: signup, login, logout, account
// management and profile pictures.
type UserService struct {
	users    repository.UserRepository
	session  *SessionService
	pictures blob.Store
	logger   zerolog.Logger
}

// NewUserService creates a new UserService. pictures may be nil when
// profile picture storage is not configured.
func NewUserService(users repository.UserRepository, session *SessionService, pictures blob.Store, logger zerolog.Logger) *UserService {
	return &UserService{
		users:    users,
		session:  session,
		pictures: pictures,
		logger:   logger.With().Str("service", "user").Logger(),
	}
}

// SignupInput contains the data needed to create a new account.
type SignupInput struct {
	Username string
	Password string
	Email    string
}

// Signup creates a new user account with empty favorites, folders and
// reviews. Validation happens before any storage access; on failure no
// state changes.
func (s *UserService) Signup(ctx context.Context, input SignupInput) (*domain.User, error) {
	if err := domain.ValidateUsername(input.Username); err != nil {
		return nil, err
	}
	if err := domain.ValidatePassword(input.Password); err != nil {
		return nil, err
	}
	if err := domain.ValidateEmail(input.Email); err != nil {
		return nil, err
	}

	exists, err := s.users.ExistsByUsername(ctx, input.Username)
	if err != nil {
		s.logger.Error().Err(err).Str("username", input.Username).Msg("failed to check username existence")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if exists {
		return nil, domain.ErrUserAlreadyExists
	}

	exists, err = s.users.ExistsByEmail(ctx, input.Email)
	if err != nil {
		s.logger.Error().Err(err).Str("email", input.Email).Msg("failed to check email existence")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if exists {
		return nil, domain.ErrEmailAlreadyExists
	}

	// Passwords are always hashed. Some upstream prototypes stored
	// plaintext; that is a defect, not behavior to reproduce.
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash password")
		return nil, fmt.Errorf("%w: failed to hash password", ErrInternalError)
	}

	user := domain.NewUser(input.Username, input.Email, string(passwordHash))

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) || errors.Is(err, domain.ErrEmailAlreadyExists) {
			return nil, err
		}
		if errors.Is(err, domain.ErrStorageFailure) {
			// The record exists in memory but did not land on disk.
			return user, err
		}
		s.logger.Error().Err(err).Str("username", input.Username).Msg("failed to create user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("username", user.Username).
		Msg("user created")

	return user, nil
}

// Login verifies credentials and opens a session for the user.
// Whether the username exists is never exposed; both unknown users and
// wrong passwords fail with ErrInvalidCredentials. A storage failure
// while persisting the session still returns the user: the in-memory
// session is open, it just may not survive a restart.
func (s *UserService) Login(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		s.logger.Debug().Str("username", username).Msg("user not found during login")
		return nil, domain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Debug().Str("username", username).Msg("invalid password during login")
		return nil, domain.ErrInvalidCredentials
	}

	if err := s.session.SetCurrent(ctx, user.ID); err != nil {
		return user, err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("username", user.Username).
		Msg("user logged in")

	return user, nil
}

// Logout clears the session. The user directory is not touched.
func (s *UserService) Logout(ctx context.Context) error {
	return s.session.Clear(ctx)
}

// GetCurrentUser resolves the session against the directory.
// Returns domain.ErrNotAuthenticated when no session is open or the
// session refers to a user that no longer exists (stale session).
func (s *UserService) GetCurrentUser(ctx context.Context) (*domain.User, error) {
	userID, ok := s.session.CurrentUserID(ctx)
	if !ok {
		return nil, domain.ErrNotAuthenticated
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Debug().Str("user_id", userID).Msg("stale session: user no longer exists")
			return nil, domain.ErrNotAuthenticated
		}
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return user, nil
}

// GetByID retrieves a user by ID.
func (s *UserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email, for password reset flows.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return user, nil
}

// List returns all users ordered by creation time.
func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return users, nil
}

// ChangePassword sets a new password for the account with the given
// email address.
func (s *UserService) ChangePassword(ctx context.Context, email, newPassword string) error {
	if err := domain.ValidatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("%w: failed to hash password", ErrInternalError)
	}

	err = s.users.Update(ctx, user.ID, func(u *domain.User) error {
		u.PasswordHash = string(newHash)
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrUserNotFound
		}
		if errors.Is(err, domain.ErrStorageFailure) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().Str("user_id", user.ID).Msg("password changed")
	return nil
}

// DeleteAccount removes a user and their embedded collections, and
// closes the session if it belonged to the deleted user. Reviews keep
// snapshot semantics: nothing outside the record is cleaned up.
func (s *UserService) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrUserNotFound
		}
		if errors.Is(err, domain.ErrStorageFailure) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if current, ok := s.session.CurrentUserID(ctx); ok && current == userID {
		if err := s.session.Clear(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("failed to clear session after account deletion")
		}
	}

	s.logger.Info().Str("user_id", userID).Msg("account deleted")
	return nil
}

// SetProfilePicture stores the picture blob and records its key on the
// user record.
func (s *UserService) SetProfilePicture(ctx context.Context, userID string, data []byte) error {
	if s.pictures == nil {
		return fmt.Errorf("%w: profile picture storage not configured", ErrInternalError)
	}

	key := fmt.Sprintf("avatars/%s/%s", userID, uuid.NewString())
	if err := s.pictures.Put(ctx, key, data); err != nil {
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	var previous string
	err := s.users.Update(ctx, userID, func(u *domain.User) error {
		previous = u.ProfilePicture
		u.ProfilePicture = key
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			if delErr := s.pictures.Delete(ctx, key); delErr != nil {
				s.logger.Warn().Err(delErr).Str("key", key).Msg("failed to delete orphaned profile picture")
			}
			return domain.ErrUserNotFound
		}
		if errors.Is(err, domain.ErrStorageFailure) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if previous != "" {
		if err := s.pictures.Delete(ctx, previous); err != nil {
			s.logger.Warn().Err(err).Str("key", previous).Msg("failed to delete previous profile picture")
		}
	}
	return nil
}

// GetProfilePicture retrieves the picture blob for a user.
func (s *UserService) GetProfilePicture(ctx context.Context, userID string) ([]byte, error) {
	if s.pictures == nil {
		return nil, domain.ErrProfilePictureNotFound
	}

	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.ProfilePicture == "" {
		return nil, domain.ErrProfilePictureNotFound
	}

	data, err := s.pictures.Get(ctx, user.ProfilePicture)
	if err != nil {
		if errors.Is(err, blob.ErrBlobNotFound) {
			return nil, domain.ErrProfilePictureNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return data, nil
}
