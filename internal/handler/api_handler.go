// Package handler provides the HTTP API for FilmVault.
package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/filmvault/filmvault/internal/catalog"
	"github.com/filmvault/filmvault/internal/domain"
	"github.com/filmvault/filmvault/internal/service"
)

// maxPictureSize bounds profile picture uploads.
const maxPictureSize = 5 << 20

// APIHandler handles the JSON API.
type APIHandler struct {
	userService     *service.UserService
	favoriteService *service.FavoriteService
	folderService   *service.FolderService
	reviewService   *service.ReviewService
	catalog         catalog.Client
	logger          zerolog.Logger
}

// APIConfig contains configuration for the API handler.
type APIConfig struct {
	UserService     *service.UserService
	FavoriteService *service.FavoriteService
	FolderService   *service.FolderService
	ReviewService   *service.ReviewService
	Catalog         catalog.Client
	Logger          zerolog.Logger
}

// NewAPIHandler creates a new API handler.
func NewAPIHandler(cfg APIConfig) *APIHandler {
	return &APIHandler{
		userService:     cfg.UserService,
		favoriteService: cfg.FavoriteService,
		folderService:   cfg.FolderService,
		reviewService:   cfg.ReviewService,
		catalog:         cfg.Catalog,
		logger:          cfg.Logger.With().Str("handler", "api").Logger(),
	}
}

// RegisterRoutes registers API routes.
func (h *APIHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/signup", h.handleSignup)
	r.Post("/api/login", h.handleLogin)
	r.Post("/api/logout", h.handleLogout)
	r.Get("/api/session", h.handleSession)

	r.Delete("/api/account", h.handleDeleteAccount)
	r.Put("/api/account/password", h.handleChangePassword)
	r.Put("/api/account/picture", h.handleSetPicture)
	r.Get("/api/account/picture", h.handleGetPicture)

	r.Get("/api/favorites", h.handleListFavorites)
	r.Put("/api/favorites/{movieID}", h.handleAddFavorite)
	r.Delete("/api/favorites/{movieID}", h.handleRemoveFavorite)

	r.Get("/api/folders", h.handleListFolders)
	r.Post("/api/folders", h.handleCreateFolder)
	r.Get("/api/folders/{folderID}", h.handleGetFolder)
	r.Put("/api/folders/{folderID}", h.handleRenameFolder)
	r.Delete("/api/folders/{folderID}", h.handleDeleteFolder)
	r.Put("/api/folders/{folderID}/movies/{movieID}", h.handleFolderAddMovie)
	r.Delete("/api/folders/{folderID}/movies/{movieID}", h.handleFolderRemoveMovie)

	r.Get("/api/reviews", h.handleListOwnReviews)
	r.Post("/api/reviews", h.handleAddReview)

	r.Get("/api/movies/search", h.handleSearchMovies)
	r.Get("/api/movies/{movieID}", h.handleGetMovie)
	r.Get("/api/movies/{movieID}/reviews", h.handleMovieReviews)
}

// currentUser resolves the logged-in user or fails the request.
func (h *APIHandler) currentUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	user, err := h.userService.GetCurrentUser(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return nil, false
	}
	return user, true
}

func (h *APIHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

// ----- auth -----

type signupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *APIHandler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.userService.Signup(r.Context(), service.SignupInput{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
	})
	if err != nil && user == nil {
		writeError(w, h.logger, err)
		return
	}
	// A storage failure still created the account for this session.
	if err != nil {
		h.logger.Warn().Err(err).Str("user_id", user.ID).Msg("signup persisted only in memory")
	}

	writeJSON(w, http.StatusCreated, user)
}

func (h *APIHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.userService.Login(r.Context(), req.Username, req.Password)
	if err != nil && user == nil {
		writeError(w, h.logger, err)
		return
	}
	if err != nil {
		h.logger.Warn().Err(err).Str("user_id", user.ID).Msg("session persisted only in memory")
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *APIHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.userService.Logout(r.Context()); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) handleSession(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// ----- account -----

type changePasswordRequest struct {
	Email       string `json:"email"`
	NewPassword string `json:"new_password"`
}

func (h *APIHandler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.userService.ChangePassword(r.Context(), req.Email, req.NewPassword); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	if err := h.userService.DeleteAccount(r.Context(), user.ID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) handleSetPicture(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPictureSize))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "picture too large"})
		return
	}

	if err := h.userService.SetProfilePicture(r.Context(), user.ID, data); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) handleGetPicture(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	data, err := h.userService.GetProfilePicture(r.Context(), user.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// ----- favorites -----

func (h *APIHandler) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	favorites, err := h.favoriteService.List(r.Context(), user.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, favorites)
}

func (h *APIHandler) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	movie, err := h.catalog.GetByID(r.Context(), chi.URLParam(r, "movieID"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.favoriteService.Add(r.Context(), user.ID, *movie); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	if err := h.favoriteService.Remove(r.Context(), user.ID, chi.URLParam(r, "movieID")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ----- folders -----

type folderRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (h *APIHandler) handleListFolders(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	folders, err := h.folderService.List(r.Context(), user.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, folders)
}

func (h *APIHandler) handleCreateFolder(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req folderRequest
	if !h.decode(w, r, &req) {
		return
	}

	folder, err := h.folderService.Create(r.Context(), user.ID, req.Title, req.Description)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, folder)
}

func (h *APIHandler) handleGetFolder(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	folder, err := h.folderService.Get(r.Context(), user.ID, chi.URLParam(r, "folderID"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, folder)
}

func (h *APIHandler) handleRenameFolder(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req folderRequest
	if !h.decode(w, r, &req) {
		return
	}

	folder, err := h.folderService.Rename(r.Context(), user.ID, chi.URLParam(r, "folderID"), req.Title, req.Description)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, folder)
}

func (h *APIHandler) handleDeleteFolder(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	if err := h.folderService.Delete(r.Context(), user.ID, chi.URLParam(r, "folderID")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) handleFolderAddMovie(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	movie, err := h.catalog.GetByID(r.Context(), chi.URLParam(r, "movieID"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	folder, err := h.folderService.AddMovie(r.Context(), user.ID, chi.URLParam(r, "folderID"), *movie)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, folder)
}

func (h *APIHandler) handleFolderRemoveMovie(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	folder, err := h.folderService.RemoveMovie(r.Context(), user.ID, chi.URLParam(r, "folderID"), chi.URLParam(r, "movieID"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, folder)
}

// ----- reviews -----

type reviewRequest struct {
	MovieID string `json:"movie_id"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (h *APIHandler) handleListOwnReviews(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	reviews, err := h.reviewService.ListByUser(r.Context(), user.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

func (h *APIHandler) handleAddReview(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req reviewRequest
	if !h.decode(w, r, &req) {
		return
	}

	review, err := h.reviewService.Add(r.Context(), user.ID, req.MovieID, domain.Rating(req.Rating), req.Comment)
	if err != nil && review == nil {
		writeError(w, h.logger, err)
		return
	}
	if err != nil {
		h.logger.Warn().Err(err).Str("user_id", user.ID).Msg("review persisted only in memory")
	}

	writeJSON(w, http.StatusCreated, review)
}

func (h *APIHandler) handleMovieReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviewService.ListByMovie(r.Context(), chi.URLParam(r, "movieID"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

// ----- catalog -----

func (h *APIHandler) handleSearchMovies(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "query parameter 'q' is required"})
		return
	}

	result, err := h.catalog.Search(r.Context(), catalog.SearchInput{
		Query: query,
		Year:  r.URL.Query().Get("year"),
		Type:  r.URL.Query().Get("type"),
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *APIHandler) handleGetMovie(w http.ResponseWriter, r *http.Request) {
	movie, err := h.catalog.GetByID(r.Context(), chi.URLParam(r, "movieID"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, movie)
}
