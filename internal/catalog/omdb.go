package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/filmvault/filmvault/internal/domain"
)

// DefaultOMDbURL is the public OMDb API endpoint.
const DefaultOMDbURL = "https://www.omdbapi.com/"

// OMDbConfig holds OMDb client configuration.
type OMDbConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// OMDbClient implements Client against the OMDb HTTP API.
type OMDbClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  zerolog.Logger
}

var _ Client = (*OMDbClient)(nil)

// NewOMDbClient creates an OMDb-backed catalog client.
func NewOMDbClient(cfg OMDbConfig, logger zerolog.Logger) *OMDbClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultOMDbURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &OMDbClient{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
		logger:  logger.With().Str("component", "omdb").Logger(),
	}
}

// omdbSearchResponse is the upstream search envelope. OMDb signals
// errors in-band with Response=False rather than HTTP status codes.
type omdbSearchResponse struct {
	Search       []omdbSearchItem `json:"Search"`
	TotalResults string           `json:"totalResults"`
	Response     string           `json:"Response"`
	Error        string           `json:"Error"`
}

type omdbSearchItem struct {
	Title  string `json:"Title"`
	Year   string `json:"Year"`
	ImdbID string `json:"imdbID"`
	Type   string `json:"Type"`
	Poster string `json:"Poster"`
}

type omdbDetailResponse struct {
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Genre      string `json:"Genre"`
	Director   string `json:"Director"`
	Actors     string `json:"Actors"`
	Plot       string `json:"Plot"`
	Poster     string `json:"Poster"`
	ImdbRating string `json:"imdbRating"`
	ImdbID     string `json:"imdbID"`
	Response   string `json:"Response"`
	Error      string `json:"Error"`
}

func (c *OMDbClient) get(ctx context.Context, params url.Values, out interface{}) error {
	params.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("catalog request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode catalog response: %w", err)
	}
	return nil
}

// Search queries OMDb with s=query plus optional year and type filters.
func (c *OMDbClient) Search(ctx context.Context, input SearchInput) (*SearchResult, error) {
	params := url.Values{}
	params.Set("s", input.Query)
	if input.Year != "" {
		params.Set("y", input.Year)
	}
	if input.Type != "" {
		params.Set("type", input.Type)
	}

	var body omdbSearchResponse
	if err := c.get(ctx, params, &body); err != nil {
		return nil, err
	}

	if body.Response != "True" {
		// "Movie not found!" means an empty result set, not a failure.
		if strings.Contains(body.Error, "not found") {
			return &SearchResult{Movies: []domain.Movie{}}, nil
		}
		return nil, fmt.Errorf("catalog error: %s", body.Error)
	}

	total, _ := strconv.Atoi(body.TotalResults)
	movies := make([]domain.Movie, 0, len(body.Search))
	for _, item := range body.Search {
		movies = append(movies, domain.Movie{
			ID:        item.ImdbID,
			Title:     item.Title,
			Year:      item.Year,
			PosterURL: item.Poster,
		})
	}

	c.logger.Debug().Str("query", input.Query).Int("results", len(movies)).Msg("catalog search")
	return &SearchResult{Movies: movies, Total: total}, nil
}

// GetByID resolves a movie by its IMDb ID with i=id.
func (c *OMDbClient) GetByID(ctx context.Context, id string) (*domain.Movie, error) {
	params := url.Values{}
	params.Set("i", id)

	var body omdbDetailResponse
	if err := c.get(ctx, params, &body); err != nil {
		return nil, err
	}

	if body.Response != "True" {
		if strings.Contains(body.Error, "not found") {
			return nil, domain.ErrMovieNotFound
		}
		return nil, fmt.Errorf("catalog error: %s", body.Error)
	}

	movie := &domain.Movie{
		ID:         body.ImdbID,
		Title:      body.Title,
		Year:       body.Year,
		PosterURL:  body.Poster,
		Genres:     splitList(body.Genre),
		Director:   body.Director,
		Cast:       splitList(body.Actors),
		Plot:       body.Plot,
		ImdbRating: body.ImdbRating,
	}
	return movie, nil
}

// splitList breaks OMDb's comma-separated fields ("Genre", "Actors")
// into a slice, dropping the "N/A" placeholder.
func splitList(s string) []string {
	if s == "" || s == "N/A" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
