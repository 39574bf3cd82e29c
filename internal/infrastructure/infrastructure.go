// Package infrastructure builds the shared systems every domain module runs
// on: the lifecycle coordinator, the logger, the metrics registry, the
// database pool and blob storage.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/JaimeStill/soundslike/internal/config"
	"github.com/JaimeStill/soundslike/pkg/database"
	"github.com/JaimeStill/soundslike/pkg/lifecycle"
	"github.com/JaimeStill/soundslike/pkg/storage"
)

// MetricsNamespace prefixes every collector the service registers.
const MetricsNamespace = "soundslike"

type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Metrics   *prometheus.Registry
	Database  database.System
	Storage   storage.System
}

// New constructs every system without contacting the database or storage;
// Start wires them into the lifecycle. The configured logger also becomes
// the slog default.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Metrics:   reg,
		Database:  db,
		Storage:   store,
	}, nil
}

// Start hooks the database and storage into the lifecycle; /readyz waits on
// the database check.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	i.Lifecycle.Check("database", i.Database)

	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	return nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.LogFormat == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
