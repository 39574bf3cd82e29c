package recordings

import (
	"net/url"
	"strconv"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JaimeStill/soundslike/pkg/query"
	"github.com/JaimeStill/soundslike/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "recordings", "r").
	Project("id", "ID").
	Project("prompt", "Prompt").
	Project("recorded_at", "RecordedAt").
	Project("tags", "Tags").
	Project("approved", "Approved").
	Project("duration", "Duration").
	Project("storage_key", "StorageKey").
	Project("content_type", "ContentType").
	Project("size_bytes", "SizeBytes").
	Project("created_at", "CreatedAt")

var defaultSort = query.SortField{
	Field:      "RecordedAt",
	Descending: true,
}

const returning = `RETURNING id, prompt, recorded_at, tags, approved, duration,
	storage_key, content_type, size_bytes, created_at`

// Filters contains optional filtering criteria for recording queries.
// Nil fields are ignored. Approved uses exact matching, Prompt uses
// case-insensitive contains matching, and Tag matches recordings carrying the tag.
type Filters struct {
	Approved *bool   `json:"approved,omitempty"`
	Prompt   *string `json:"prompt,omitempty"`
	Tag      *string `json:"tag,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Approved", f.Approved).
		WhereContains("Prompt", f.Prompt).
		WhereAny("Tags", f.Tag)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if a := values.Get("approved"); a != "" {
		if v, err := strconv.ParseBool(a); err == nil {
			f.Approved = &v
		}
	}

	if p := values.Get("prompt"); p != "" {
		f.Prompt = &p
	}

	if t := values.Get("tag"); t != "" {
		f.Tag = &t
	}

	return f
}

// scanRecording returns a scan function decoding the tags array through m.
// A Map is not shared across goroutines, so callers create one per query.
func scanRecording(m *pgtype.Map) repository.ScanFunc[Recording] {
	return func(s repository.Scanner) (Recording, error) {
		var r Recording
		err := s.Scan(
			&r.ID,
			&r.Prompt,
			&r.RecordedAt,
			m.SQLScanner(&r.Tags),
			&r.Approved,
			&r.Duration,
			&r.StorageKey,
			&r.ContentType,
			&r.SizeBytes,
			&r.CreatedAt,
		)
		if r.Tags == nil {
			r.Tags = []string{}
		}
		return r, err
	}
}
