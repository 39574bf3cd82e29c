package main

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JaimeStill/soundslike/internal/api"
	"github.com/JaimeStill/soundslike/internal/config"
	"github.com/JaimeStill/soundslike/internal/infrastructure"
	"github.com/JaimeStill/soundslike/pkg/handlers"
	"github.com/JaimeStill/soundslike/pkg/module"
)

type Modules struct {
	API *module.Module
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, err
	}

	return &Modules{
		API: apiModule,
	}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
}

// buildRouter serves health checks and metrics outside the API module so they
// bypass CORS, request logging and admin auth.
func buildRouter(infra *infrastructure.Infrastructure) *module.Router {
	router := module.NewRouter()
	lc := infra.Lifecycle

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if !lc.Ready() {
			handlers.RespondJSON(w, http.StatusServiceUnavailable, map[string]any{
				"status":  "not ready",
				"pending": lc.NotReady(),
			})
			return
		}
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	metrics := promhttp.HandlerFor(infra.Metrics, promhttp.HandlerOpts{
		Registry: infra.Metrics,
		ErrorLog: slog.NewLogLogger(infra.Logger.Handler(), slog.LevelWarn),
	})
	router.HandleNative("GET /metrics", metrics.ServeHTTP)

	return router
}
