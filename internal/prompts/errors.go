package prompts

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/soundslike/pkg/repository"
)

var (
	ErrNotFound  = errors.New("prompt not found")
	ErrDuplicate = errors.New("prompt text already exists")
	ErrEmptyText = errors.New("prompt text is required")
)

// MapHTTPStatus reports the response status for an error returned by System.
// Rows rejected by a table CHECK constraint count as bad requests.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrEmptyText), errors.Is(err, repository.ErrConstraint):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
