// Package service provides the business logic services for FilmVault:
// the user directory, the session holder, and the favorites, folder and
// review managers. Services validate inputs before touching storage and
// surface persistence failures to the caller instead of swallowing them.
package service

import "errors"

// ErrInternalError indicates an unexpected infrastructure failure.
// Business rule violations use the sentinels in the domain package.
var ErrInternalError = errors.New("internal error")
