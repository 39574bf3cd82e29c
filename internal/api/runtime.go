package api

import (
	"github.com/JaimeStill/soundslike/internal/config"
	"github.com/JaimeStill/soundslike/internal/infrastructure"
	"github.com/JaimeStill/soundslike/pkg/pagination"
)

// Runtime is the infrastructure as the API module sees it: the shared
// systems, a logger tagged with the module, and the listing bounds.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination pagination.Config
}

func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	scoped := *infra
	scoped.Logger = infra.Logger.With("module", "api")

	return &Runtime{
		Infrastructure: &scoped,
		Pagination:     cfg.API.Pagination,
	}
}
