package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/filmvault/filmvault/internal/domain"
)

// errorResponse is the JSON body for all error replies.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// writeError maps domain errors to HTTP statuses with messages a user
// can act on.
func writeError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	status, message := errorStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Msg("request failed")
	}
	writeJSON(w, status, errorResponse{Error: message})
}

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidUsername):
		return http.StatusBadRequest, "username must be at least 3 characters"
	case errors.Is(err, domain.ErrInvalidPassword):
		return http.StatusBadRequest, "password must be at least 8 characters"
	case errors.Is(err, domain.ErrInvalidEmail):
		return http.StatusBadRequest, "email address is not valid"
	case errors.Is(err, domain.ErrInvalidRating):
		return http.StatusBadRequest, "rating must be between 1 and 10"
	case errors.Is(err, domain.ErrEmptyComment):
		return http.StatusBadRequest, "review comment must not be empty"
	case errors.Is(err, domain.ErrFolderTitleEmpty):
		return http.StatusBadRequest, "folder title must not be empty"
	case errors.Is(err, domain.ErrUserAlreadyExists):
		return http.StatusConflict, "username is already taken"
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return http.StatusConflict, "email address is already registered"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid username or password"
	case errors.Is(err, domain.ErrNotAuthenticated):
		return http.StatusUnauthorized, "not logged in"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, domain.ErrFolderNotFound):
		return http.StatusNotFound, "folder not found"
	case errors.Is(err, domain.ErrMovieNotFound):
		return http.StatusNotFound, "movie not found"
	case errors.Is(err, domain.ErrProfilePictureNotFound):
		return http.StatusNotFound, "profile picture not found"
	case errors.Is(err, domain.ErrStorageFailure):
		return http.StatusInternalServerError, "your change was applied but could not be saved; it may be lost when the server restarts"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
