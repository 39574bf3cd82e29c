package auth

import (
	"errors"
	"net/http"
)

// Authentication errors.
var (
	ErrInvalidPassword = errors.New("invalid password")
	ErrUnauthenticated = errors.New("authentication required")
	ErrInvalidToken    = errors.New("invalid session token")
)

// MapHTTPStatus maps authentication errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidPassword),
		errors.Is(err, ErrUnauthenticated),
		errors.Is(err, ErrInvalidToken):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
