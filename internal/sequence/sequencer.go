package sequence

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/soundslike/internal/prompts"
)

type sequencer struct {
	source      PromptSource
	store       CursorStore
	maxAttempts int
	fallback    string
	metrics     *Metrics
	logger      *slog.Logger
}

// New creates a prompt sequencer implementing the System interface.
// cfg must already be finalized. metrics may be nil.
func New(
	source PromptSource,
	store CursorStore,
	cfg Config,
	metrics *Metrics,
	logger *slog.Logger,
) System {
	return &sequencer{
		source:      source,
		store:       store,
		maxAttempts: max(cfg.MaxAttempts, 1),
		fallback:    cfg.FallbackPrompt,
		metrics:     metrics,
		logger:      logger.With("system", "sequence"),
	}
}

func (s *sequencer) Handler() *Handler {
	return NewHandler(s, s.fallback, s.logger)
}

func (s *sequencer) Advance(ctx context.Context) (*Rotation, error) {
	var rot Rotation

	err := s.commit(ctx, "advance", func(st snapshot) (int, error) {
		if len(st.active) == 0 {
			return 0, ErrNoActivePrompts
		}
		next := (st.index + 1) % len(st.active)
		rot = Rotation{
			Current: st.active[st.index],
			Next:    st.active[next],
		}
		return next, nil
	})

	if err != nil {
		if errors.Is(err, ErrNoActivePrompts) {
			s.metrics.emptied("advance")
		}
		return nil, err
	}

	s.metrics.advanced()
	s.logger.Debug("prompt advanced", "current", rot.Current.ID, "next", rot.Next.ID)
	return &rot, nil
}

func (s *sequencer) Peek(ctx context.Context) (*prompts.Prompt, error) {
	st, err := s.read(ctx)
	if err != nil {
		return nil, err
	}

	if len(st.active) == 0 {
		s.metrics.emptied("peek")
		return nil, nil
	}

	p := st.active[st.index]
	return &p, nil
}

func (s *sequencer) SetCursorToPrompt(ctx context.Context, id uuid.UUID) (*prompts.Prompt, error) {
	var target prompts.Prompt

	err := s.commit(ctx, "queue", func(st snapshot) (int, error) {
		j := slices.IndexFunc(st.active, func(p prompts.Prompt) bool {
			return p.ID == id
		})
		if j < 0 {
			return 0, ErrPromptNotFound
		}
		target = st.active[j]
		return j, nil
	})

	if err != nil {
		return nil, err
	}

	s.logger.Info("prompt queued next", "id", target.ID)
	return &target, nil
}

// snapshot is one read of the active list and cursor.
// index is the cursor position clamped to the active list.
type snapshot struct {
	active []prompts.Prompt
	cursor Cursor
	index  int
}

func (s *sequencer) read(ctx context.Context) (snapshot, error) {
	all, err := s.source.All(ctx)
	if err != nil {
		return snapshot{}, fmt.Errorf("%w: list prompts: %w", ErrStoreUnavailable, err)
	}

	st := snapshot{active: ActiveList(all)}
	if len(st.active) == 0 {
		return st, nil
	}

	st.cursor, err = s.store.Read(ctx)
	if err != nil {
		return snapshot{}, fmt.Errorf("%w: read cursor: %w", ErrStoreUnavailable, err)
	}

	st.index = clamp(st.cursor.Index, len(st.active))
	return st, nil
}

// commit re-reads state and applies plan until the resulting cursor write
// wins. plan returns the new cursor index for the snapshot it is given.
func (s *sequencer) commit(ctx context.Context, op string, plan func(snapshot) (int, error)) error {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		st, err := s.read(ctx)
		if err != nil {
			return err
		}

		index, err := plan(st)
		if err != nil {
			return err
		}

		cursor := Cursor{
			Index:       index,
			LastUpdated: time.Now().UTC(),
		}

		ok, err := s.store.WriteIfUnchanged(ctx, st.cursor.Version, cursor)
		if err != nil {
			return fmt.Errorf("%w: write cursor: %w", ErrStoreUnavailable, err)
		}
		if ok {
			return nil
		}

		s.metrics.conflicted(op)
		s.logger.Debug("cursor write conflict", "operation", op, "attempt", attempt)

		if err := ctx.Err(); err != nil {
			return err
		}
	}

	return fmt.Errorf(
		"%w: %w after %d attempts",
		ErrStoreUnavailable, ErrCursorWriteConflict, s.maxAttempts,
	)
}

// ActiveList filters all to active prompts and stably sorts them by Order.
// Prompts sharing an Order keep their relative position in all.
func ActiveList(all []prompts.Prompt) []prompts.Prompt {
	active := make([]prompts.Prompt, 0, len(all))
	for _, p := range all {
		if p.Active {
			active = append(active, p)
		}
	}

	slices.SortStableFunc(active, func(a, b prompts.Prompt) int {
		return cmp.Compare(a.Order, b.Order)
	})
	return active
}

func clamp(index, length int) int {
	if index < 0 || index >= length {
		return 0
	}
	return index
}
