package api

import (
	"net/http"

	"github.com/JaimeStill/soundslike/internal/config"
	"github.com/JaimeStill/soundslike/internal/infrastructure"
	"github.com/JaimeStill/soundslike/pkg/middleware"
	"github.com/JaimeStill/soundslike/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) error {
	httpMetrics, err := middleware.NewHTTPMetrics(
		infrastructure.MetricsNamespace,
		runtime.Metrics,
	)
	if err != nil {
		return err
	}

	limit, err := middleware.RateLimit(&cfg.API.RateLimit, runtime.Lifecycle, runtime.Logger)
	if err != nil {
		return err
	}

	authHandler := domain.Auth.Handler()
	sequenceHandler := domain.Sequence.Handler()
	recordingsHandler := domain.Recordings.Handler(cfg.API.MaxUploadSizeBytes())

	public := []routes.Group{
		authHandler.Routes(),
		sequenceHandler.Routes(),
		recordingsHandler.Routes(),
		recordingsHandler.SubmitRoutes().With(limit),
	}

	admin := []routes.Group{
		domain.Prompts.Handler().Routes(),
		sequenceHandler.AdminRoutes(),
		recordingsHandler.AdminRoutes(),
	}

	observe := middleware.Metrics(httpMetrics)

	for _, g := range public {
		routes.Register(mux, g.With(observe))
	}
	for _, g := range admin {
		routes.Register(mux, g.With(observe, authHandler.RequireAdmin))
	}

	return nil
}
