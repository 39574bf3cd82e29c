package storage

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound   = errors.New("blob not found")
	ErrEmptyKey   = errors.New("storage key is empty")
	ErrInvalidKey = errors.New("storage key has an invalid path segment")
)

// MapHTTPStatus reports the response status for an error returned by a Provider.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrEmptyKey), errors.Is(err, ErrInvalidKey):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
