package api

import (
	"fmt"

	"github.com/JaimeStill/soundslike/internal/auth"
	"github.com/JaimeStill/soundslike/internal/config"
	"github.com/JaimeStill/soundslike/internal/infrastructure"
	"github.com/JaimeStill/soundslike/internal/prompts"
	"github.com/JaimeStill/soundslike/internal/recordings"
	"github.com/JaimeStill/soundslike/internal/sequence"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Auth       auth.System
	Prompts    prompts.System
	Recordings recordings.System
	Sequence   sequence.System
}

// NewDomain creates all domain systems from the API runtime.
// The sequencer reads prompts through the prompts system and keeps its
// cursor in the store selected by cfg.Sequence.Store.
func NewDomain(cfg *config.Config, runtime *Runtime) (*Domain, error) {
	promptsSystem := prompts.New(
		runtime.Database.Connection(),
		runtime.Logger,
		runtime.Pagination,
	)

	recordingsSystem := recordings.New(
		runtime.Database.Connection(),
		runtime.Storage,
		cfg.Recordings,
		runtime.Logger,
		runtime.Pagination,
	)

	metrics, err := sequence.NewMetrics(infrastructure.MetricsNamespace, runtime.Metrics)
	if err != nil {
		return nil, fmt.Errorf("sequence metrics: %w", err)
	}

	var cursors sequence.CursorStore
	switch cfg.Sequence.Store {
	case sequence.StoreMemory:
		cursors = sequence.NewMemoryStore()
	default:
		cursors = sequence.NewPostgresStore(runtime.Database.Connection())
	}

	sequenceSystem := sequence.New(
		promptsSystem,
		cursors,
		cfg.Sequence,
		metrics,
		runtime.Logger,
	)

	return &Domain{
		Auth:       auth.New(cfg.Auth, runtime.Logger),
		Prompts:    promptsSystem,
		Recordings: recordingsSystem,
		Sequence:   sequenceSystem,
	}, nil
}
