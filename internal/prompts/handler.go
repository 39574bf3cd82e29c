package prompts

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/soundslike/pkg/handlers"
	"github.com/JaimeStill/soundslike/pkg/pagination"
	"github.com/JaimeStill/soundslike/pkg/routes"
)

// Handler provides HTTP endpoints for prompt administration.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "prompts"),
		pagination: pagination,
	}
}

// Routes returns the admin route group for prompt endpoints.
// Callers attach authentication through the group's Middleware.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/admin/prompts",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/summary", Handler: h.Summaries},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "POST", Pattern: "", Handler: h.Create},
			{Method: "POST", Pattern: "/search", Handler: h.Search},
			{Method: "PUT", Pattern: "/{id}", Handler: h.Update},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
		},
	}
}

// List returns a paginated list of prompts with optional query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Summaries returns every prompt with its recording and approval counts.
func (h *Handler) Summaries(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.sys.Summaries(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, summaries)
}

func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, ok := handlers.PathID(w, r, h.logger, "id")
	if !ok {
		return
	}

	prompt, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, prompt)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	cmd, ok := handlers.DecodeJSON[CreateCommand](w, r, h.logger)
	if !ok {
		return
	}

	prompt, err := h.sys.Create(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, prompt)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := handlers.PathID(w, r, h.logger, "id")
	if !ok {
		return
	}

	cmd, ok := handlers.DecodeJSON[UpdateCommand](w, r, h.logger)
	if !ok {
		return
	}

	prompt, err := h.sys.Update(r.Context(), id, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, prompt)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := handlers.PathID(w, r, h.logger, "id")
	if !ok {
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Search accepts a JSON body with pagination and filter criteria and returns matching prompts.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	req, ok := handlers.DecodeJSON[SearchRequest](w, r, h.logger)
	if !ok {
		return
	}

	req.PageRequest.Normalize(h.pagination)

	result, err := h.sys.List(r.Context(), req.PageRequest, req.Filters)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
