package prompts

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/soundslike/pkg/pagination"
	"github.com/JaimeStill/soundslike/pkg/query"
	"github.com/JaimeStill/soundslike/pkg/repository"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a prompt repository implementing the System interface.
func New(
	db *sql.DB,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "prompts"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) All(ctx context.Context) ([]Prompt, error) {
	q, args := query.NewBuilder(projection, insertionSort).Build()

	prompts, err := repository.QueryMany(ctx, r.db, q, args, scanPrompt)
	if err != nil {
		return nil, fmt.Errorf("query prompts: %w", err)
	}
	return prompts, nil
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Prompt], error) {
	page.Normalize(r.pagination)

	qb := query.NewBuilder(projection, defaultSort, insertionSort)
	filters.Apply(qb)
	page.Apply(qb, "Text")

	result, err := repository.QueryPage(ctx, r.db, qb, page, scanPrompt)
	if err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}
	return result, nil
}

func (r *repo) Summaries(ctx context.Context) ([]Summary, error) {
	var (
		prompts []Prompt
		stats   []recordingStats
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		q, args := query.NewBuilder(projection, defaultSort, insertionSort).Build()
		p, err := repository.QueryMany(gctx, r.db, q, args, scanPrompt)
		if err != nil {
			return fmt.Errorf("query prompts: %w", err)
		}
		prompts = p
		return nil
	})

	g.Go(func() error {
		q := `
			SELECT prompt, COUNT(*), COUNT(*) FILTER (WHERE approved)
			FROM recordings
			GROUP BY prompt`

		s, err := repository.QueryMany(gctx, r.db, q, nil, scanRecordingStats)
		if err != nil {
			return fmt.Errorf("query recording stats: %w", err)
		}
		stats = s
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	byText := make(map[string]recordingStats, len(stats))
	for _, s := range stats {
		byText[s.prompt] = s
	}

	summaries := make([]Summary, len(prompts))
	for i, p := range prompts {
		s := byText[p.Text]
		summaries[i] = Summary{
			Prompt:         p,
			RecordingCount: s.total,
			ApprovedCount:  s.approved,
		}
	}

	return summaries, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Prompt, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	p, err := repository.QueryOne(ctx, r.db, q, args, scanPrompt)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &p, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Prompt, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	active := true
	if cmd.Active != nil {
		active = *cmd.Active
	}

	q := `
		INSERT INTO prompts(text, active, sort_order)
		VALUES (
			$1, $2,
			COALESCE($3::integer, (SELECT COALESCE(MAX(sort_order), 0) + 1 FROM prompts))
		)
		` + returning

	args := []any{cmd.Text, active, cmd.Order}

	p, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Prompt, error) {
		return repository.QueryOne(ctx, tx, q, args, scanPrompt)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("prompt created", "id", p.ID, "order", p.Order, "active", p.Active)
	return &p, nil
}

func (r *repo) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Prompt, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	q := `
		UPDATE prompts
		SET text = COALESCE($1, text),
			active = COALESCE($2, active),
			sort_order = COALESCE($3::integer, sort_order)
		WHERE id = $4
		` + returning

	args := []any{cmd.Text, cmd.Active, cmd.Order, id}

	p, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Prompt, error) {
		return repository.QueryOne(ctx, tx, q, args, scanPrompt)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("prompt updated", "id", p.ID, "order", p.Order, "active", p.Active)
	return &p, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM prompts WHERE id = $1",
			id,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("prompt deleted", "id", id)
	return nil
}
