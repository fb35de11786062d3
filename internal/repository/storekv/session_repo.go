package storekv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/filmvault/filmvault/internal/domain"
	"github.com/filmvault/filmvault/internal/repository"
	"github.com/filmvault/filmvault/internal/store"
)

// SessionRepo implements repository.SessionRepository over a
// store.Adapter. The session is a single JSON string under
// store.CurrentUserKey.
type SessionRepo struct {
	adapter store.Adapter
	logger  zerolog.Logger
}

// NewSessionRepo creates a session repository over the given adapter.
func NewSessionRepo(adapter store.Adapter, logger zerolog.Logger) *SessionRepo {
	return &SessionRepo{
		adapter: adapter,
		logger:  logger.With().Str("repository", "session").Logger(),
	}
}

// CurrentUserID returns the persisted session user ID.
func (r *SessionRepo) CurrentUserID(ctx context.Context) (string, error) {
	raw, err := r.adapter.Read(ctx, store.CurrentUserKey)
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return "", repository.ErrNotFound
		}
		return "", fmt.Errorf("failed to read session: %w", err)
	}

	var userID string
	if err := json.Unmarshal(raw, &userID); err != nil {
		return "", fmt.Errorf("failed to decode session: %w", err)
	}
	return userID, nil
}

// SetCurrentUserID persists the session user ID.
func (r *SessionRepo) SetCurrentUserID(ctx context.Context, userID string) error {
	raw, err := json.Marshal(userID)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := r.adapter.Write(ctx, store.CurrentUserKey, raw); err != nil {
		r.logger.Warn().Err(err).Msg("session persist failed")
		return fmt.Errorf("%w: %v", domain.ErrStorageFailure, err)
	}
	return nil
}

// Clear removes the persisted session.
func (r *SessionRepo) Clear(ctx context.Context) error {
	if err := r.adapter.Delete(ctx, store.CurrentUserKey); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageFailure, err)
	}
	return nil
}

// Ensure SessionRepo implements the repository contract.
var _ repository.SessionRepository = (*SessionRepo)(nil)
