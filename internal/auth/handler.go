package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/JaimeStill/soundslike/pkg/handlers"
	"github.com/JaimeStill/soundslike/pkg/routes"
)

// Handler provides the admin login endpoints and the session middleware.
type Handler struct {
	sys    System
	cfg    Config
	logger *slog.Logger
}

// LoginRequest is the body of a login request.
type LoginRequest struct {
	Password string `json:"password"`
}

// NewHandler creates a Handler issuing cookies named by cfg.
func NewHandler(sys System, cfg Config, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		cfg:    cfg,
		logger: logger.With("handler", "auth"),
	}
}

// Routes returns the login and logout endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/admin",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/login", Handler: h.Login},
			{Method: "POST", Pattern: "/logout", Handler: h.Logout},
		},
	}
}

// Login exchanges the admin password for a session cookie. The token is also
// returned in the body for clients that send it as a bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := handlers.DecodeJSON[LoginRequest](w, r, h.logger)
	if !ok {
		return
	}

	session, err := h.sys.Login(req.Password)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.CookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})

	handlers.RespondJSON(w, http.StatusOK, session)
}

// Logout clears the session cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})

	w.WriteHeader(http.StatusNoContent)
}

// RequireAdmin rejects requests without a valid session, read from the
// session cookie or an Authorization bearer token.
func (h *Handler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := h.sys.Verify(h.token(r)); err != nil {
			h.logger.Debug("admin request rejected", "path", r.URL.Path, "error", err)
			handlers.RespondJSON(w, http.StatusUnauthorized, map[string]string{
				"error": ErrUnauthenticated.Error(),
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) token(r *http.Request) string {
	if c, err := r.Cookie(h.cfg.CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if bearer, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(bearer)
	}
	return ""
}
