// Package handlers holds the request decoding and JSON response helpers
// every domain Handler shares.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

// RespondJSON writes data as a JSON body with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError logs err and writes it as {"error": "..."} with the given status code.
// Server errors are logged at error level, client errors at warn.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request rejected", "status", status, "error", err)
	}
	RespondJSON(w, status, map[string]string{"error": err.Error()})
}

// PathID parses the named path value as a UUID. On failure it responds 400
// and reports false; the caller should return without writing.
func PathID(w http.ResponseWriter, r *http.Request, logger *slog.Logger, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		RespondError(w, logger, http.StatusBadRequest, fmt.Errorf("invalid %s %q", name, r.PathValue(name)))
		return uuid.Nil, false
	}
	return id, true
}

// DecodeJSON reads the request body into a T. On failure it responds 413
// when the body exceeded an http.MaxBytesReader limit and 400 otherwise,
// and reports false.
func DecodeJSON[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger) (T, bool) {
	var v T
	err := json.NewDecoder(r.Body).Decode(&v)
	if err == nil {
		return v, true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		RespondError(w, logger, http.StatusRequestEntityTooLarge, fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit))
	} else {
		RespondError(w, logger, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
	}
	return v, false
}
