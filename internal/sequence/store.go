package sequence

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/JaimeStill/soundslike/pkg/repository"
)

type postgresStore struct {
	db *sql.DB
}

// NewPostgresStore returns a CursorStore backed by the prompt_cursor table.
// The table holds a single row with id 1.
func NewPostgresStore(db *sql.DB) CursorStore {
	return &postgresStore{db: db}
}

func (p *postgresStore) Read(ctx context.Context) (Cursor, error) {
	q := `
		SELECT position, last_updated, version
		FROM prompt_cursor
		WHERE id = 1`

	c, err := repository.QueryOne(ctx, p.db, q, nil, scanCursor)
	if errors.Is(err, sql.ErrNoRows) {
		return Cursor{}, nil
	}
	return c, err
}

func (p *postgresStore) WriteIfUnchanged(ctx context.Context, expected int64, c Cursor) (bool, error) {
	q := `
		INSERT INTO prompt_cursor (id, position, last_updated, version)
		VALUES (1, $1, $2, $3::bigint + 1)
		ON CONFLICT (id) DO UPDATE
		SET position = EXCLUDED.position,
			last_updated = EXCLUDED.last_updated,
			version = EXCLUDED.version
		WHERE prompt_cursor.version = $3::bigint`

	n, err := repository.ExecAffected(ctx, p.db, q, c.Index, c.LastUpdated, expected)
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func scanCursor(s repository.Scanner) (Cursor, error) {
	var (
		c           Cursor
		lastUpdated sql.NullTime
	)
	if err := s.Scan(&c.Index, &lastUpdated, &c.Version); err != nil {
		return Cursor{}, err
	}
	c.LastUpdated = lastUpdated.Time
	return c, nil
}

// MemoryStore is an in-process CursorStore. The zero value is ready to use.
type MemoryStore struct {
	mu     sync.Mutex
	cursor Cursor
}

// NewMemoryStore returns an empty in-process cursor store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Read(ctx context.Context) (Cursor, error) {
	if err := ctx.Err(); err != nil {
		return Cursor{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cursor, nil
}

func (m *MemoryStore) WriteIfUnchanged(ctx context.Context, expected int64, c Cursor) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cursor.Version != expected {
		return false, nil
	}

	if c.LastUpdated.IsZero() {
		c.LastUpdated = time.Now().UTC()
	}
	c.Version = expected + 1
	m.cursor = c
	return true, nil
}
