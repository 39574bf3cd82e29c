package recordings

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/JaimeStill/soundslike/pkg/handlers"
	"github.com/JaimeStill/soundslike/pkg/pagination"
	"github.com/JaimeStill/soundslike/pkg/routes"
)

// Handler provides HTTP endpoints for recording operations.
type Handler struct {
	sys           System
	logger        *slog.Logger
	pagination    pagination.Config
	maxUploadSize int64
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// CountResponse reports the number of approved recordings.
type CountResponse struct {
	Count int `json:"count"`
}

// NewHandler creates a Handler with the given system, logger, pagination config, and upload size limit.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
	maxUploadSize int64,
) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "recordings"),
		pagination:    pagination,
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the public recording endpoints other than submission.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/recordings",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/random", Handler: h.Random},
			{Method: "GET", Pattern: "/count", Handler: h.Count},
			{Method: "GET", Pattern: "/{id}/audio", Handler: h.Audio},
		},
	}
}

// SubmitRoutes returns the submission endpoint, kept apart so callers can
// rate limit it on its own.
func (h *Handler) SubmitRoutes() routes.Group {
	return routes.Group{
		Prefix: "/recordings",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Submit},
		},
	}
}

// AdminRoutes returns the moderation endpoints.
func (h *Handler) AdminRoutes() routes.Group {
	return routes.Group{
		Prefix: "/admin/recordings",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "GET", Pattern: "/{id}/audio", Handler: h.AdminAudio},
			{Method: "POST", Pattern: "/search", Handler: h.Search},
			{Method: "PUT", Pattern: "/{id}", Handler: h.Update},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
		},
	}
}

// Submit decodes a JSON submission, stores its audio, and records it.
// The body is limited to the configured maximum upload size.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	cmd, ok := handlers.DecodeJSON[SubmitCommand](w, r, h.logger)
	if !ok {
		return
	}

	rec, err := h.sys.Submit(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, rec)
}

// Random returns the public view of one approved recording.
func (h *Handler) Random(w http.ResponseWriter, r *http.Request) {
	rec, err := h.sys.Random(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, rec.Playback())
}

func (h *Handler) Count(w http.ResponseWriter, r *http.Request) {
	count, err := h.sys.Count(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, CountResponse{Count: count})
}

// Audio streams the audio of an approved recording.
func (h *Handler) Audio(w http.ResponseWriter, r *http.Request) {
	h.streamAudio(w, r, true)
}

// AdminAudio streams the audio of any recording, approved or not.
func (h *Handler) AdminAudio(w http.ResponseWriter, r *http.Request) {
	h.streamAudio(w, r, false)
}

func (h *Handler) streamAudio(w http.ResponseWriter, r *http.Request, approvedOnly bool) {
	id, ok := handlers.PathID(w, r, h.logger, "id")
	if !ok {
		return
	}

	blob, err := h.sys.Audio(r.Context(), id, approvedOnly)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	defer blob.Body.Close()

	w.Header().Set("Content-Type", blob.ContentType)
	if blob.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(blob.ContentLength, 10))
	}
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, blob.Body); err != nil {
		h.logger.Warn("audio stream interrupted", "id", id, "error", err)
	}
}

// List returns a paginated list of recordings with optional query parameter filters.
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

// Search accepts a JSON body with pagination and filter criteria and returns matching recordings.
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

func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, ok := handlers.PathID(w, r, h.logger, "id")
	if !ok {
		return
	}

	rec, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, rec)
}

// Update applies tag and approval changes from a JSON body.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := handlers.PathID(w, r, h.logger, "id")
	if !ok {
		return
	}

	cmd, ok := handlers.DecodeJSON[UpdateCommand](w, r, h.logger)
	if !ok {
		return
	}

	rec, err := h.sys.Update(r.Context(), id, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, rec)
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
