package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/soundslike/internal/auth"
)

func setupMux(h *auth.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	group := h.Routes()
	for _, route := range group.Routes {
		mux.HandleFunc(route.Method+" "+group.Prefix+route.Pattern, route.Handler)
	}
	mux.Handle("GET /admin/secret", h.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))
	return mux
}

func login(t *testing.T, mux *http.ServeMux, password string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/admin/login", strings.NewReader(`{"password":"`+password+`"}`))
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHandlerLogin(t *testing.T) {
	mux := setupMux(newSystem().Handler())

	t.Run("sets http-only session cookie", func(t *testing.T) {
		rec := login(t, mux, "hunter2")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}

		cookies := rec.Result().Cookies()
		if len(cookies) != 1 {
			t.Fatalf("cookies = %d, want 1", len(cookies))
		}
		c := cookies[0]
		if c.Name != "soundslike_session" || !c.HttpOnly || c.Value == "" {
			t.Errorf("cookie = %+v", c)
		}

		var session auth.Session
		if err := json.NewDecoder(rec.Body).Decode(&session); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if session.Token != c.Value {
			t.Error("body token differs from cookie")
		}
	})

	t.Run("wrong password returns 401", func(t *testing.T) {
		rec := login(t, mux, "nope")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
		if len(rec.Result().Cookies()) != 0 {
			t.Error("cookie set on failed login")
		}
	})

	t.Run("invalid json returns 400", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("POST", "/admin/login", strings.NewReader("{")))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestHandlerLogout(t *testing.T) {
	mux := setupMux(newSystem().Handler())

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("POST", "/admin/logout", nil))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Errorf("cookies = %+v, want expired session cookie", cookies)
	}
}

func TestRequireAdmin(t *testing.T) {
	mux := setupMux(newSystem().Handler())
	token := login(t, mux, "hunter2").Result().Cookies()[0].Value

	tests := []struct {
		name  string
		setup func(r *http.Request)
		want  int
	}{
		{"no credentials", func(*http.Request) {}, http.StatusUnauthorized},
		{"session cookie", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: "soundslike_session", Value: token})
		}, http.StatusTeapot},
		{"bearer token", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+token)
		}, http.StatusTeapot},
		{"tampered token", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+token+"x")
		}, http.StatusUnauthorized},
		{"basic auth ignored", func(r *http.Request) {
			r.SetBasicAuth("admin", "hunter2")
		}, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/admin/secret", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}

			if tt.want == http.StatusUnauthorized {
				var body map[string]string
				if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if body["error"] != "authentication required" {
					t.Errorf("error = %q", body["error"])
				}
			}
		})
	}
}
