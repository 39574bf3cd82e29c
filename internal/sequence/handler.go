package sequence

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/soundslike/internal/prompts"
	"github.com/JaimeStill/soundslike/pkg/handlers"
	"github.com/JaimeStill/soundslike/pkg/routes"
)

// Handler provides HTTP endpoints for prompt rotation.
type Handler struct {
	sys      System
	fallback string
	logger   *slog.Logger
}

// NextPrompt is the recorder-facing view of an advance.
// Fallback is set when no prompt is active and Text carries the fallback prompt.
type NextPrompt struct {
	ID       *uuid.UUID `json:"id,omitempty"`
	Text     string     `json:"text"`
	Next     string     `json:"next"`
	Fallback bool       `json:"fallback,omitempty"`
}

// PeekedPrompt is the admin view of the prompt the next advance will hand out.
type PeekedPrompt struct {
	ID   uuid.UUID `json:"id"`
	Text string    `json:"text"`
}

// QueuedPrompt confirms a queue-next request.
type QueuedPrompt struct {
	Message string         `json:"message"`
	Prompt  prompts.Prompt `json:"prompt"`
}

// NewHandler creates a Handler serving fallback text when no prompt is active.
func NewHandler(sys System, fallback string, logger *slog.Logger) *Handler {
	return &Handler{
		sys:      sys,
		fallback: fallback,
		logger:   logger.With("handler", "sequence"),
	}
}

// Routes returns the public rotation endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/prompts",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/next", Handler: h.Next},
		},
	}
}

// AdminRoutes returns the rotation endpoints reserved for administrators.
func (h *Handler) AdminRoutes() routes.Group {
	return routes.Group{
		Prefix: "/admin/prompts",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/next-peek", Handler: h.Peek},
			{Method: "PUT", Pattern: "/{id}/queue-next", Handler: h.QueueNext},
		},
	}
}

// Next advances the rotation and returns the current prompt with the text of
// the one after it. With no active prompts it responds with the fallback prompt.
func (h *Handler) Next(w http.ResponseWriter, r *http.Request) {
	rot, err := h.sys.Advance(r.Context())
	if err != nil {
		if errors.Is(err, ErrNoActivePrompts) {
			handlers.RespondJSON(w, http.StatusOK, NextPrompt{
				Text:     h.fallback,
				Next:     h.fallback,
				Fallback: true,
			})
			return
		}
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, NextPrompt{
		ID:   &rot.Current.ID,
		Text: rot.Current.Text,
		Next: rot.Next.Text,
	})
}

// Peek reports the prompt the next visitor will receive without moving the
// cursor. Responds 404 when no prompt is active.
func (h *Handler) Peek(w http.ResponseWriter, r *http.Request) {
	p, err := h.sys.Peek(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	if p == nil {
		handlers.RespondError(w, h.logger, http.StatusNotFound, ErrNoActivePrompts)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, PeekedPrompt{ID: p.ID, Text: p.Text})
}

// QueueNext points the cursor at the prompt named in the path so the next
// visitor receives it. Responds 404 when the prompt is missing or inactive.
func (h *Handler) QueueNext(w http.ResponseWriter, r *http.Request) {
	id, ok := handlers.PathID(w, r, h.logger, "id")
	if !ok {
		return
	}

	p, err := h.sys.SetCursorToPrompt(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, QueuedPrompt{
		Message: "prompt queued next",
		Prompt:  *p,
	})
}
