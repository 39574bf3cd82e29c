// Package module mounts self-contained HTTP handlers under single-level path
// prefixes such as /api.
package module

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/JaimeStill/soundslike/pkg/middleware"
)

// Module serves an inner handler beneath a prefix. The inner handler sees
// paths with the prefix removed, wrapped in the module's own middleware.
type Module struct {
	prefix     string
	inner      http.Handler
	middleware middleware.System

	once    sync.Once
	handler http.Handler
}

// New creates a Module for a single-level prefix like "/api".
// It panics on an empty, relative or nested prefix.
func New(prefix string, inner http.Handler) *Module {
	if err := validatePrefix(prefix); err != nil {
		panic(err)
	}
	return &Module{
		prefix:     prefix,
		inner:      inner,
		middleware: middleware.New(),
	}
}

// Prefix returns the module's mount point.
func (m *Module) Prefix() string {
	return m.prefix
}

// Use appends middleware to the module's stack. Middleware must be added
// before the first request is served.
func (m *Module) Use(mws ...middleware.Func) {
	m.middleware.Use(mws...)
}

// Serve removes the module prefix from the request path and dispatches it.
func (m *Module) Serve(w http.ResponseWriter, req *http.Request) {
	m.once.Do(func() {
		m.handler = m.middleware.Apply(m.inner)
	})
	m.handler.ServeHTTP(w, withPath(req, strings.TrimPrefix(req.URL.Path, m.prefix)))
}

func withPath(req *http.Request, path string) *http.Request {
	if path == "" {
		path = "/"
	}

	out := req.Clone(req.Context())
	out.URL.Path = path
	out.URL.RawPath = ""
	return out
}

func validatePrefix(prefix string) error {
	switch {
	case prefix == "":
		return fmt.Errorf("module prefix cannot be empty")
	case !strings.HasPrefix(prefix, "/"):
		return fmt.Errorf("module prefix must start with /: %s", prefix)
	case strings.Contains(prefix[1:], "/"):
		return fmt.Errorf("module prefix must be a single path segment: %s", prefix)
	}
	return nil
}
