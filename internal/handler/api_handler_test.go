package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/filmvault/filmvault/internal/catalog"
	"github.com/filmvault/filmvault/internal/domain"
	"github.com/filmvault/filmvault/internal/lock"
	"github.com/filmvault/filmvault/internal/repository/storekv"
	"github.com/filmvault/filmvault/internal/service"
	"github.com/filmvault/filmvault/internal/store/memory"
)

// stubCatalog serves a fixed set of movies.
type stubCatalog struct {
	movies map[string]domain.Movie
}

func (s *stubCatalog) Search(ctx context.Context, input catalog.SearchInput) (*catalog.SearchResult, error) {
	var matches []domain.Movie
	for _, m := range s.movies {
		matches = append(matches, m)
	}
	return &catalog.SearchResult{Movies: matches, Total: len(matches)}, nil
}

func (s *stubCatalog) GetByID(ctx context.Context, id string) (*domain.Movie, error) {
	movie, ok := s.movies[id]
	if !ok {
		return nil, domain.ErrMovieNotFound
	}
	return &movie, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	adapter := memory.NewStore()
	logger := zerolog.Nop()
	users := storekv.NewUserRepo(adapter, lock.NewMemoryLocker(), logger)
	sessions := storekv.NewSessionRepo(adapter, logger)

	sessionService := service.NewSessionService(sessions, logger)
	userService := service.NewUserService(users, sessionService, nil, logger)

	api := NewAPIHandler(APIConfig{
		UserService:     userService,
		FavoriteService: service.NewFavoriteService(users, logger),
		FolderService:   service.NewFolderService(users, logger),
		ReviewService:   service.NewReviewService(users, logger),
		Catalog: &stubCatalog{movies: map[string]domain.Movie{
			"tt1375666": {ID: "tt1375666", Title: "Inception", Year: "2010"},
			"tt0133093": {ID: "tt0133093", Title: "The Matrix", Year: "1999"},
		}},
		Logger: logger,
	})

	router := NewRouter(RouterConfig{API: api, Logger: logger})
	srv := httptest.NewServer(router.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body interface{}) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func signupAndLogin(t *testing.T, srv *httptest.Server, username string) {
	t.Helper()

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/signup", map[string]string{
		"username": username,
		"password": "secret123",
		"email":    username + "@x.com",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/login", map[string]string{
		"username": username,
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_Health(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPI_SignupValidation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name       string
		body       map[string]string
		wantStatus int
	}{
		{
			name:       "short username",
			body:       map[string]string{"username": "al", "password": "secret123", "email": "a@x.com"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "short password",
			body:       map[string]string{"username": "alice", "password": "short", "email": "a@x.com"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "bad email",
			body:       map[string]string{"username": "alice", "password": "secret123", "email": "nope"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "valid",
			body:       map[string]string{"username": "alice", "password": "secret123", "email": "a@x.com"},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "duplicate username",
			body:       map[string]string{"username": "alice", "password": "secret123", "email": "b@x.com"},
			wantStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, http.MethodPost, srv.URL+"/api/signup", tt.body)
			defer resp.Body.Close()
			require.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestAPI_LoginWrongPassword(t *testing.T) {
	srv := newTestServer(t)
	signupAndLogin(t, srv, "alice")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/login", map[string]string{
		"username": "alice",
		"password": "wrongpass",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_SessionRequiresLogin(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/session")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_FavoriteFlow(t *testing.T) {
	srv := newTestServer(t)
	signupAndLogin(t, srv, "alice")

	resp := doJSON(t, http.MethodPut, srv.URL+"/api/favorites/tt1375666", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	// Adding again is a no-op.
	resp = doJSON(t, http.MethodPut, srv.URL+"/api/favorites/tt1375666", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	var favorites []domain.Movie
	resp, err := http.Get(srv.URL + "/api/favorites")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &favorites)
	require.Len(t, favorites, 1)
	require.Equal(t, "Inception", favorites[0].Title)

	// Unknown catalog ID is a 404.
	resp = doJSON(t, http.MethodPut, srv.URL+"/api/favorites/tt9999999", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/favorites/tt1375666", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/api/favorites")
	require.NoError(t, err)
	decodeBody(t, resp, &favorites)
	require.Empty(t, favorites)
}

func TestAPI_FolderFlow(t *testing.T) {
	srv := newTestServer(t)
	signupAndLogin(t, srv, "alice")

	var folder domain.Folder
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/folders", map[string]string{
		"title":       "Sci-Fi",
		"description": "space and time",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeBody(t, resp, &folder)
	require.NotEmpty(t, folder.ID)

	resp = doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/folders/%s/movies/tt1375666", srv.URL, folder.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &folder)
	require.Len(t, folder.Movies, 1)

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/folders/"+folder.ID, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	// Gone now.
	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/folders/"+folder.ID, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_FolderEmptyTitle(t *testing.T) {
	srv := newTestServer(t)
	signupAndLogin(t, srv, "alice")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/folders", map[string]string{"title": "   "})
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_ReviewFlow(t *testing.T) {
	srv := newTestServer(t)
	signupAndLogin(t, srv, "alice")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/reviews", map[string]interface{}{
		"movie_id": "tt1375666",
		"rating":   11,
		"comment":  "too high",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	var review domain.Review
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/reviews", map[string]interface{}{
		"movie_id": "tt1375666",
		"rating":   8,
		"comment":  "great heist movie",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeBody(t, resp, &review)
	require.Equal(t, "tt1375666", review.MovieID)

	var reviews []domain.Review
	resp, err := http.Get(srv.URL + "/api/movies/tt1375666/reviews")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &reviews)
	require.Len(t, reviews, 1)
}

func TestAPI_SearchRequiresQuery(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/movies/search")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_GetMovie(t *testing.T) {
	srv := newTestServer(t)

	var movie domain.Movie
	resp, err := http.Get(srv.URL + "/api/movies/tt0133093")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &movie)
	require.Equal(t, "The Matrix", movie.Title)

	resp, err = http.Get(srv.URL + "/api/movies/tt9999999")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
