package sequence

import (
	"errors"
	"net/http"
)

// Domain errors for rotation operations.
// A cursor that keeps losing write races past the attempt limit returns an
// error matching both ErrStoreUnavailable and ErrCursorWriteConflict.
var (
	ErrNoActivePrompts     = errors.New("no active prompts")
	ErrPromptNotFound      = errors.New("prompt not found or inactive")
	ErrStoreUnavailable    = errors.New("prompt store unavailable")
	ErrCursorWriteConflict = errors.New("cursor write conflict")
)

// MapHTTPStatus maps rotation errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNoActivePrompts), errors.Is(err, ErrPromptNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrStoreUnavailable), errors.Is(err, ErrCursorWriteConflict):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
