package prompts

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/soundslike/pkg/pagination"
)

// System manages the prompt catalogue. The sequencer reads it through All;
// everything else backs the admin API.
type System interface {
	Handler() *Handler

	// All returns every prompt, active or not, in insertion order.
	All(ctx context.Context) ([]Prompt, error)

	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Prompt], error)

	// Summaries pairs each prompt with its recording counts.
	Summaries(ctx context.Context) ([]Summary, error)

	Find(ctx context.Context, id uuid.UUID) (*Prompt, error)
	// Create trims the text and fills in defaults: active, and an order one past the current maximum.
	Create(ctx context.Context, cmd CreateCommand) (*Prompt, error)
	// Update applies only the fields cmd sets.
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Prompt, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
