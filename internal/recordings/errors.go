package recordings

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/soundslike/pkg/storage"
)

// Domain errors for recording operations.
var (
	ErrNotFound        = errors.New("recording not found")
	ErrDuplicate       = errors.New("recording already exists")
	ErrNoRecordings    = errors.New("no recordings available")
	ErrNoAudio         = errors.New("audio not found")
	ErrMissingPrompt   = errors.New("prompt is required")
	ErrInvalidAudio    = errors.New("invalid audio data")
	ErrInvalidDuration = errors.New("duration must not be negative")
)

// MapHTTPStatus maps recording domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrNoRecordings),
		errors.Is(err, ErrNoAudio):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrMissingPrompt),
		errors.Is(err, ErrInvalidAudio),
		errors.Is(err, ErrInvalidDuration):
		return http.StatusBadRequest
	default:
		return storage.MapHTTPStatus(err)
	}
}
