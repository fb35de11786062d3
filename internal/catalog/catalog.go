// Package catalog provides access to the external movie catalog.
// Search and lookup results are value snapshots; the catalog is
// read-only from this application's point of view.
package catalog

import (
	"context"
	"errors"

	"github.com/filmvault/filmvault/internal/domain"
)

// SearchInput narrows a catalog search. Query is required; Year and
// Type are optional filters passed through to the upstream API.
type SearchInput struct {
	Query string
	Year  string
	Type  string // "movie", "series" or "episode"
}

// SearchResult is one page of catalog matches.
type SearchResult struct {
	Movies []domain.Movie
	Total  int
}

// Client searches and resolves movies in the external catalog.
type Client interface {
	// Search returns catalog matches for the input. An empty result
	// set is not an error.
	Search(ctx context.Context, input SearchInput) (*SearchResult, error)

	// GetByID resolves a single movie by its catalog ID. Returns
	// domain.ErrMovieNotFound if the catalog has no such movie.
	GetByID(ctx context.Context, id string) (*domain.Movie, error)
}

// GetByIDs resolves several catalog IDs, skipping those the catalog no
// longer knows. Order follows the input; other lookup errors abort.
func GetByIDs(ctx context.Context, c Client, ids []string) ([]domain.Movie, error) {
	movies := make([]domain.Movie, 0, len(ids))
	for _, id := range ids {
		movie, err := c.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrMovieNotFound) {
				continue
			}
			return nil, err
		}
		movies = append(movies, *movie)
	}
	return movies, nil
}
