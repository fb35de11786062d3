package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/filmvault/filmvault/internal/domain"
	"github.com/filmvault/filmvault/internal/lock"
	"github.com/filmvault/filmvault/internal/repository/storekv"
	"github.com/filmvault/filmvault/internal/store/memory"
)

func seedUser(t *testing.T, repo *MockUserRepository, username string) *domain.User {
	t.Helper()
	user := domain.NewUser(username, username+"@x.com", "hash")
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatal(err)
	}
	return user
}

func TestFavoriteService_AddAndList(t *testing.T) {
	repo := NewMockUserRepository()
	svc := NewFavoriteService(repo, zerolog.Nop())
	ctx := context.Background()
	user := seedUser(t, repo, "alice")

	inception := domain.Movie{ID: "tt1375666", Title: "Inception", Year: "2010"}
	matrix := domain.Movie{ID: "tt0133093", Title: "The Matrix", Year: "1999"}

	if err := svc.Add(ctx, user.ID, inception); err != nil {
		t.Fatal(err)
	}
	if err := svc.Add(ctx, user.ID, matrix); err != nil {
		t.Fatal(err)
	}

	favorites, err := svc.List(ctx, user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(favorites) != 2 {
		t.Fatalf("expected 2 favorites, got %d", len(favorites))
	}
	if favorites[0].ID != inception.ID || favorites[1].ID != matrix.ID {
		t.Error("favorites not in insertion order")
	}
}

// Re-adding a favorite is a no-op: the list keeps exactly one entry.
func TestFavoriteService_AddIdempotent(t *testing.T) {
	repo := NewMockUserRepository()
	svc := NewFavoriteService(repo, zerolog.Nop())
	ctx := context.Background()
	user := seedUser(t, repo, "alice")

	movie := domain.Movie{ID: "tt1375666", Title: "Inception"}
	for i := 0; i < 3; i++ {
		if err := svc.Add(ctx, user.ID, movie); err != nil {
			t.Fatal(err)
		}
	}

	favorites, err := svc.List(ctx, user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(favorites) != 1 {
		t.Errorf("expected 1 favorite after repeated adds, got %d", len(favorites))
	}
}

func TestFavoriteService_RemoveIdempotent(t *testing.T) {
	repo := NewMockUserRepository()
	svc := NewFavoriteService(repo, zerolog.Nop())
	ctx := context.Background()
	user := seedUser(t, repo, "alice")

	movie := domain.Movie{ID: "tt1375666", Title: "Inception"}
	if err := svc.Add(ctx, user.ID, movie); err != nil {
		t.Fatal(err)
	}

	if err := svc.Remove(ctx, user.ID, movie.ID); err != nil {
		t.Fatal(err)
	}
	// Removing again, or removing a movie that was never there, is fine.
	if err := svc.Remove(ctx, user.ID, movie.ID); err != nil {
		t.Fatalf("second remove errored: %v", err)
	}
	if err := svc.Remove(ctx, user.ID, "tt0000000"); err != nil {
		t.Fatalf("removing unknown movie errored: %v", err)
	}

	ok, err := svc.IsFavorite(ctx, user.ID, movie.ID)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("movie still favorited after remove")
	}
}

// Membership after any add/remove sequence equals the net effect of
// the sequence.
func TestFavoriteService_NetEffectMembership(t *testing.T) {
	repo := NewMockUserRepository()
	svc := NewFavoriteService(repo, zerolog.Nop())
	ctx := context.Background()
	user := seedUser(t, repo, "alice")

	a := domain.Movie{ID: "tt0000001", Title: "A"}
	b := domain.Movie{ID: "tt0000002", Title: "B"}

	steps := []func() error{
		func() error { return svc.Add(ctx, user.ID, a) },
		func() error { return svc.Add(ctx, user.ID, b) },
		func() error { return svc.Remove(ctx, user.ID, a.ID) },
		func() error { return svc.Add(ctx, user.ID, a) },
		func() error { return svc.Remove(ctx, user.ID, b.ID) },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	favorites, err := svc.List(ctx, user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(favorites) != 1 || favorites[0].ID != a.ID {
		t.Errorf("expected exactly [A], got %v", favorites)
	}
}

// When persistence fails, the favorite still applies for the running
// session; the caller gets the storage error to surface.
func TestFavoriteService_StorageFailureKeepsFavorite(t *testing.T) {
	repo := NewMockUserRepository()
	svc := NewFavoriteService(repo, zerolog.Nop())
	ctx := context.Background()
	user := seedUser(t, repo, "alice")

	repo.saveErr = domain.ErrStorageFailure
	movie := domain.Movie{ID: "tt1375666", Title: "Inception"}

	err := svc.Add(ctx, user.ID, movie)
	if !errors.Is(err, domain.ErrStorageFailure) {
		t.Fatalf("expected ErrStorageFailure, got %v", err)
	}

	ok, err := svc.IsFavorite(ctx, user.ID, movie.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("favorite lost after failed persist")
	}
}

func TestFavoriteService_UnknownUser(t *testing.T) {
	svc := NewFavoriteService(NewMockUserRepository(), zerolog.Nop())

	err := svc.Add(context.Background(), "missing", domain.Movie{ID: "tt1375666"})
	if err != domain.ErrUserNotFound {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

// Concurrent adds go through the repository's serialized
// read-modify-write cycle, so no goroutine ever mutates a record
// while another marshals the directory. Run with the race detector.
func TestFavoriteService_ConcurrentAdds(t *testing.T) {
	ctx := context.Background()
	repo := storekv.NewUserRepo(memory.NewStore(), lock.NewMemoryLocker(), zerolog.Nop())
	svc := NewFavoriteService(repo, zerolog.Nop())

	const userCount = 4
	const addsPerUser = 50

	ids := make([]string, userCount)
	for i := range ids {
		u := domain.NewUser(fmt.Sprintf("user%d", i), fmt.Sprintf("u%d@x.com", i), "hash")
		if err := repo.Create(ctx, u); err != nil {
			t.Fatal(err)
		}
		ids[i] = u.ID
	}

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			for j := 0; j < addsPerUser; j++ {
				movie := domain.Movie{ID: fmt.Sprintf("tt%d-%d", i, j)}
				if err := svc.Add(ctx, id, movie); err != nil {
					t.Errorf("add for user %d: %v", i, err)
					return
				}
			}
		}(i, id)
	}
	wg.Wait()

	for _, id := range ids {
		favorites, err := svc.List(ctx, id)
		if err != nil {
			t.Fatal(err)
		}
		if len(favorites) != addsPerUser {
			t.Errorf("expected %d favorites, got %d", addsPerUser, len(favorites))
		}
	}
}

// Concurrent adds of the same movie for one user run the dedup check
// inside the serialized cycle, so exactly one entry lands.
func TestFavoriteService_ConcurrentSameMovieDedup(t *testing.T) {
	ctx := context.Background()
	repo := storekv.NewUserRepo(memory.NewStore(), lock.NewMemoryLocker(), zerolog.Nop())
	svc := NewFavoriteService(repo, zerolog.Nop())

	user := domain.NewUser("alice", "a@x.com", "hash")
	if err := repo.Create(ctx, user); err != nil {
		t.Fatal(err)
	}

	movie := domain.Movie{ID: "tt1375666", Title: "Inception"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if err := svc.Add(ctx, user.ID, movie); err != nil {
					t.Errorf("add: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	favorites, err := svc.List(ctx, user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(favorites) != 1 {
		t.Errorf("expected exactly one favorite, got %d", len(favorites))
	}
}
