// Package domain contains the core business entities for FilmVault.
package domain

// Movie is an immutable value snapshot of catalog metadata, copied
// into favorites and folder entries at the time of the action.
// Snapshots never sync with later catalog updates.
type Movie struct {
	// ID is the catalog identifier (e.g. an IMDb ID such as "tt0133093").
	ID string `json:"id"`

	// Title is the movie title.
	Title string `json:"title"`

	// Year is the release year as reported by the catalog.
	Year string `json:"year,omitempty"`

	// PosterURL is the poster image URL.
	PosterURL string `json:"poster_url,omitempty"`

	// Optional enrichment fields, present when the snapshot was taken
	// from a full catalog detail lookup.
	Genres     []string `json:"genres,omitempty"`
	Director   string   `json:"director,omitempty"`
	Cast       []string `json:"cast,omitempty"`
	Plot       string   `json:"plot,omitempty"`
	ImdbRating string   `json:"imdb_rating,omitempty"`
}

// Clone returns a copy of the snapshot that shares no slice backing
// arrays with the original.
func (m Movie) Clone() Movie {
	c := m
	if m.Genres != nil {
		c.Genres = append([]string(nil), m.Genres...)
	}
	if m.Cast != nil {
		c.Cast = append([]string(nil), m.Cast...)
	}
	return c
}

// CloneMovies deep-copies a snapshot slice, preserving nil.
func CloneMovies(movies []Movie) []Movie {
	if movies == nil {
		return nil
	}
	out := make([]Movie, len(movies))
	for i, m := range movies {
		out[i] = m.Clone()
	}
	return out
}
