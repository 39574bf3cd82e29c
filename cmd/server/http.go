package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/JaimeStill/soundslike/internal/config"
	"github.com/JaimeStill/soundslike/pkg/lifecycle"
)

// httpServer owns the listener so bind failures surface from Start
// instead of a background goroutine.
type httpServer struct {
	srv     *http.Server
	logger  *slog.Logger
	drain   time.Duration
	serving chan struct{}
}

func newHTTPServer(cfg *config.ServerConfig, handler http.Handler, logger *slog.Logger) *httpServer {
	logger = logger.With("system", "http")

	return &httpServer{
		srv: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeoutDuration(),
			ReadHeaderTimeout: cfg.ReadTimeoutDuration(),
			WriteTimeout:      cfg.WriteTimeoutDuration(),
			ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
		},
		logger:  logger,
		drain:   cfg.ShutdownTimeoutDuration(),
		serving: make(chan struct{}),
	}
}

func (s *httpServer) Start(lc *lifecycle.Coordinator) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.srv.Addr, err)
	}

	go func() {
		defer close(s.serving)
		s.logger.Info("listening", "addr", ln.Addr().String())
		if err := s.srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("serve failed", "error", err)
		}
	}()

	lc.OnShutdown(func() {
		<-lc.Context().Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.drain)
		defer cancel()

		s.logger.Info("draining connections", "timeout", s.drain)
		if err := s.srv.Shutdown(ctx); err != nil {
			s.logger.Error("drain incomplete", "error", err)
			return
		}
		<-s.serving
		s.logger.Info("http stopped")
	})

	return nil
}
