package recordings

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JaimeStill/soundslike/pkg/formatting"
	"github.com/JaimeStill/soundslike/pkg/pagination"
	"github.com/JaimeStill/soundslike/pkg/query"
	"github.com/JaimeStill/soundslike/pkg/repository"
	"github.com/JaimeStill/soundslike/pkg/storage"
)

type repo struct {
	db         *sql.DB
	storage    storage.System
	cfg        Config
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a recording repository implementing the System interface.
func New(
	db *sql.DB,
	store storage.System,
	cfg Config,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		storage:    store,
		cfg:        cfg,
		logger:     logger.With("system", "recordings"),
		pagination: pagination,
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, r.pagination, maxUploadSize)
}

func (r *repo) Submit(ctx context.Context, cmd SubmitCommand) (*Recording, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	audio, err := DecodeAudio(cmd.AudioData)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	key := buildStorageKey(id, audio.Extension)

	if err := r.storage.Upload(ctx, key, bytes.NewReader(audio.Data), audio.ContentType); err != nil {
		return nil, fmt.Errorf("upload recording blob: %w", err)
	}

	recordedAt := time.Now().UTC()
	if cmd.Timestamp != nil {
		recordedAt = cmd.Timestamp.UTC()
	}

	var duration float64
	if cmd.Duration != nil {
		duration = *cmd.Duration
	}

	q := `
		INSERT INTO recordings(id, prompt, recorded_at, approved, duration, storage_key, content_type, size_bytes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		` + returning

	args := []any{
		id,
		cmd.Prompt,
		recordedAt,
		!r.cfg.RequireApproval,
		duration,
		key,
		audio.ContentType,
		int64(len(audio.Data)),
	}

	rec, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Recording, error) {
		return repository.QueryOne(ctx, tx, q, args, scanRecording(pgtype.NewMap()))
	})

	if err != nil {
		if delErr := r.storage.Delete(ctx, key); delErr != nil {
			r.logger.Warn("compensating blob delete failed", "key", key, "error", delErr)
		}
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info(
		"recording submitted",
		"id", rec.ID,
		"size", formatting.FormatBytes(rec.SizeBytes, 1),
		"approved", rec.Approved,
	)
	return &rec, nil
}

func (r *repo) Random(ctx context.Context) (*Recording, error) {
	q := fmt.Sprintf(
		"SELECT %s FROM %s WHERE r.approved ORDER BY random() LIMIT 1",
		projection.Columns(),
		projection.Table(),
	)

	rec, err := repository.QueryOne(ctx, r.db, q, nil, scanRecording(pgtype.NewMap()))
	if err != nil {
		return nil, repository.MapError(err, ErrNoRecordings, ErrDuplicate)
	}
	return &rec, nil
}

func (r *repo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.
		QueryRowContext(ctx, "SELECT COUNT(*) FROM recordings WHERE approved").
		Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count recordings: %w", err)
	}
	return count, nil
}

func (r *repo) Audio(ctx context.Context, id uuid.UUID, approvedOnly bool) (*storage.Blob, error) {
	rec, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if approvedOnly && !rec.Approved {
		return nil, ErrNotFound
	}

	if rec.StorageKey == nil {
		return nil, ErrNoAudio
	}

	blob, err := r.storage.Download(ctx, *rec.StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNoAudio
		}
		return nil, fmt.Errorf("download recording blob: %w", err)
	}

	if blob.ContentType == "" {
		blob.ContentType = rec.ContentType
	}
	return blob, nil
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Recording], error) {
	page.Normalize(r.pagination)

	qb := query.NewBuilder(projection, defaultSort)
	filters.Apply(qb)
	page.Apply(qb, "Prompt")

	result, err := repository.QueryPage(ctx, r.db, qb, page, scanRecording(pgtype.NewMap()))
	if err != nil {
		return nil, fmt.Errorf("list recordings: %w", err)
	}
	return result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Recording, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	rec, err := repository.QueryOne(ctx, r.db, q, args, scanRecording(pgtype.NewMap()))
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &rec, nil
}

func (r *repo) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Recording, error) {
	var tags any
	if cmd.Tags != nil {
		tags = NormalizeTags(*cmd.Tags)
	}

	q := `
		UPDATE recordings
		SET tags = COALESCE($1::text[], tags),
			approved = COALESCE($2, approved)
		WHERE id = $3
		` + returning

	args := []any{tags, cmd.Approved, id}

	rec, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Recording, error) {
		return repository.QueryOne(ctx, tx, q, args, scanRecording(pgtype.NewMap()))
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("recording updated", "id", rec.ID, "approved", rec.Approved, "tags", len(rec.Tags))
	return &rec, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	rec, err := r.Find(ctx, id)
	if err != nil {
		return err
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM recordings WHERE id = $1",
			id,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if rec.StorageKey != nil {
		if delErr := r.storage.Delete(ctx, *rec.StorageKey); delErr != nil {
			r.logger.Warn(
				"blob delete failed after DB delete",
				"key", *rec.StorageKey,
				"error", delErr,
			)
		}
	}

	r.logger.Info("recording deleted", "id", id)
	return nil
}

func buildStorageKey(id uuid.UUID, ext string) string {
	return fmt.Sprintf("recordings/recording-%s.%s", id, ext)
}
