package main

import (
	"time"

	"github.com/JaimeStill/soundslike/internal/config"
	"github.com/JaimeStill/soundslike/internal/infrastructure"
)

// Server ties infrastructure, mounted modules and the HTTP listener to one lifecycle.
type Server struct {
	infra   *infrastructure.Infrastructure
	modules *Modules
	http    *httpServer
}

func NewServer(cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, err
	}

	modules, err := NewModules(infra, cfg)
	if err != nil {
		return nil, err
	}

	router := buildRouter(infra)
	modules.Mount(router)

	infra.Logger.Info(
		"soundslike initialized",
		"addr", cfg.Server.Addr(),
		"version", cfg.Version,
		"storage", cfg.Storage.Provider,
		"cursor_store", cfg.Sequence.Store,
		"rate_limit", cfg.API.RateLimit.Enabled,
	)

	return &Server{
		infra:   infra,
		modules: modules,
		http:    newHTTPServer(&cfg.Server, router, infra.Logger),
	}, nil
}

// Start runs infrastructure startup hooks and begins serving.
// Readiness flips once every startup hook has completed.
func (s *Server) Start() error {
	if err := s.infra.Start(); err != nil {
		return err
	}

	if err := s.http.Start(s.infra.Lifecycle); err != nil {
		return err
	}

	go func() {
		s.infra.Lifecycle.WaitForStartup()
		s.infra.Logger.Info("accepting prompts and recordings")
	}()

	return nil
}

func (s *Server) Shutdown(timeout time.Duration) error {
	s.infra.Logger.Info("shutdown requested", "timeout", timeout)
	return s.infra.Lifecycle.Shutdown(timeout)
}
