// Package apperr holds the error kinds shared by the store, the remote
// client, the scoring engine and the HTTP handlers.
package apperr

import (
	"errors"
	"net/http"
)

var (
	// ErrValidation marks malformed input (bad scoring input, bad payloads).
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks a record or remote entity that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrTransport marks a network failure or non-2xx status from the remote source.
	ErrTransport = errors.New("transport error")
	// ErrPersistence marks a failed write to the store.
	ErrPersistence = errors.New("persistence error")
	// ErrConflict marks a unique constraint violation (duplicate name).
	ErrConflict = errors.New("conflict")
)

// HTTPStatus maps an error to the status code handlers respond with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrTransport):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
