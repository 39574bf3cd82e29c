package prompts

import (
	"net/url"
	"strconv"

	"github.com/JaimeStill/soundslike/pkg/query"
	"github.com/JaimeStill/soundslike/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "prompts", "p").
	Project("id", "ID").
	Project("text", "Text").
	Project("active", "Active").
	Project("sort_order", "Order").
	Project("created_at", "CreatedAt").
	Sortable("seq", "Seq")

var defaultSort = query.SortField{
	Field: "Order",
}

// insertion order; seq is an identity column that is never selected
var insertionSort = query.SortField{
	Field: "Seq",
}

const returning = "RETURNING id, text, active, sort_order, created_at"

// Filters contains optional filtering criteria for prompt queries.
// Nil fields are ignored. Active uses exact matching; Text uses
// case-insensitive contains matching.
type Filters struct {
	Active *bool   `json:"active,omitempty"`
	Text   *string `json:"text,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Active", f.Active).
		WhereContains("Text", f.Text)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if a := values.Get("active"); a != "" {
		if v, err := strconv.ParseBool(a); err == nil {
			f.Active = &v
		}
	}

	if t := values.Get("text"); t != "" {
		f.Text = &t
	}

	return f
}

func scanPrompt(s repository.Scanner) (Prompt, error) {
	var p Prompt
	err := s.Scan(
		&p.ID,
		&p.Text,
		&p.Active,
		&p.Order,
		&p.CreatedAt,
	)
	return p, err
}

type recordingStats struct {
	prompt   string
	total    int
	approved int
}

func scanRecordingStats(s repository.Scanner) (recordingStats, error) {
	var st recordingStats
	err := s.Scan(&st.prompt, &st.total, &st.approved)
	return st, err
}
