package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/filmvault/filmvault/internal/repository"
)

// SessionService tracks the currently authenticated user. It is an
// injected object with a defined lifecycle, never ambient global state:
// the in-memory session is restored from the store on first use,
// updated on login, and cleared on logout. The in-memory value is
// authoritative; a failed persist means only that the session may not
// survive a restart.
type SessionService struct {
	sessions repository.SessionRepository
	logger   zerolog.Logger

	mu            sync.Mutex
	currentUserID string
	initialized   bool
}

// NewSessionService creates a new SessionService.
func NewSessionService(sessions repository.SessionRepository, logger zerolog.Logger) *SessionService {
	return &SessionService{
		sessions: sessions,
		logger:   logger.With().Str("service", "session").Logger(),
	}
}

// init restores the persisted session on first use.
func (s *SessionService) init(ctx context.Context) {
	if s.initialized {
		return
	}
	s.initialized = true

	userID, err := s.sessions.CurrentUserID(ctx)
	if err != nil {
		if err != repository.ErrNotFound {
			s.logger.Warn().Err(err).Msg("failed to restore session")
		}
		return
	}
	s.currentUserID = userID
	s.logger.Debug().Str("user_id", userID).Msg("session restored")
}

// CurrentUserID returns the authenticated user's ID, or false when no
// user is logged in.
func (s *SessionService) CurrentUserID(ctx context.Context) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.init(ctx)
	if s.currentUserID == "" {
		return "", false
	}
	return s.currentUserID, true
}

// SetCurrent records the authenticated user and persists the session.
// The in-memory session is set even when persistence fails; the
// returned error tells the caller the session may not survive a restart.
func (s *SessionService) SetCurrent(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.init(ctx)
	s.currentUserID = userID

	if err := s.sessions.SetCurrentUserID(ctx, userID); err != nil {
		return err
	}
	return nil
}

// Clear ends the session. The in-memory session is cleared even when
// removing the persisted value fails.
func (s *SessionService) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.init(ctx)
	s.currentUserID = ""

	if err := s.sessions.Clear(ctx); err != nil {
		return err
	}
	return nil
}
