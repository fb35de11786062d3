package storekv

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/filmvault/filmvault/internal/domain"
	"github.com/filmvault/filmvault/internal/repository"
	"github.com/filmvault/filmvault/internal/store/memory"
)

func TestSessionRepo_RoundTrip(t *testing.T) {
	ctx := context.Background()
	adapter := memory.NewStore()
	repo := NewSessionRepo(adapter, zerolog.Nop())

	_, err := repo.CurrentUserID(ctx)
	require.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, repo.SetCurrentUserID(ctx, "user-1"))

	id, err := repo.CurrentUserID(ctx)
	require.NoError(t, err)
	require.Equal(t, "user-1", id)

	// The session survives a "reload": a fresh repo sees it.
	id, err = NewSessionRepo(adapter, zerolog.Nop()).CurrentUserID(ctx)
	require.NoError(t, err)
	require.Equal(t, "user-1", id)

	require.NoError(t, repo.Clear(ctx))
	_, err = repo.CurrentUserID(ctx)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSessionRepo_PersistFailure(t *testing.T) {
	ctx := context.Background()
	adapter := memory.NewStore()
	repo := NewSessionRepo(adapter, zerolog.Nop())

	adapter.FailNextWrite(errors.New("disk full"))
	err := repo.SetCurrentUserID(ctx, "user-1")
	require.ErrorIs(t, err, domain.ErrStorageFailure)
}
