package pagination_test

import (
	"encoding/json"
	"net/url"
	"slices"
	"strings"
	"testing"

	"github.com/JaimeStill/soundslike/pkg/pagination"
	"github.com/JaimeStill/soundslike/pkg/query"
)

func defaultConfig() pagination.Config {
	return pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}
}

func TestConfigFinalize(t *testing.T) {
	t.Setenv("SOUNDSLIKE_TEST_PAGE_SIZE", "30")

	cfg := pagination.Config{}
	err := cfg.Finalize(&pagination.ConfigEnv{DefaultPageSize: "SOUNDSLIKE_TEST_PAGE_SIZE"})
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.DefaultPageSize != 30 {
		t.Errorf("default_page_size: got %d, want 30", cfg.DefaultPageSize)
	}
	if cfg.MaxPageSize != 100 {
		t.Errorf("max_page_size: got %d, want 100", cfg.MaxPageSize)
	}
}

func TestConfigFinalizeValidation(t *testing.T) {
	cfg := pagination.Config{DefaultPageSize: 50, MaxPageSize: 10}

	err := cfg.Finalize(nil)
	if err == nil || !strings.Contains(err.Error(), "cannot exceed") {
		t.Errorf("Finalize() error = %v, want default/max conflict", err)
	}
}

func TestConfigMerge(t *testing.T) {
	cfg := defaultConfig()
	cfg.Merge(&pagination.Config{MaxPageSize: 50})

	if cfg != (pagination.Config{DefaultPageSize: 20, MaxPageSize: 50}) {
		t.Errorf("merge: got %+v", cfg)
	}
}

func TestPageRequestNormalize(t *testing.T) {
	tests := []struct {
		name string
		req  pagination.PageRequest
		want pagination.PageRequest
	}{
		{"zero values get defaults", pagination.PageRequest{}, pagination.PageRequest{Page: 1, PageSize: 20}},
		{"negative page corrected", pagination.PageRequest{Page: -1, PageSize: 10}, pagination.PageRequest{Page: 1, PageSize: 10}},
		{"page size clamped", pagination.PageRequest{Page: 2, PageSize: 500}, pagination.PageRequest{Page: 2, PageSize: 100}},
		{"valid values preserved", pagination.PageRequest{Page: 3, PageSize: 25}, pagination.PageRequest{Page: 3, PageSize: 25}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.Normalize(defaultConfig())
			if tt.req.Page != tt.want.Page || tt.req.PageSize != tt.want.PageSize {
				t.Errorf("got page=%d size=%d, want page=%d size=%d",
					tt.req.Page, tt.req.PageSize, tt.want.Page, tt.want.PageSize)
			}
			if got, want := tt.req.Offset(), (tt.want.Page-1)*tt.want.PageSize; got != want {
				t.Errorf("Offset() = %d, want %d", got, want)
			}
		})
	}
}

func TestPageRequestFromQuery(t *testing.T) {
	values := url.Values{
		"page":      {"2"},
		"page_size": {"15"},
		"search":    {"weather"},
		"sort":      {"Order,-CreatedAt"},
	}

	req := pagination.PageRequestFromQuery(values, defaultConfig())

	if req.Page != 2 || req.PageSize != 15 {
		t.Errorf("page=%d size=%d, want page=2 size=15", req.Page, req.PageSize)
	}
	if req.Search == nil || *req.Search != "weather" {
		t.Errorf("Search = %v, want weather", req.Search)
	}
	want := pagination.SortFields{
		{Field: "Order"},
		{Field: "CreatedAt", Descending: true},
	}
	if !slices.Equal(req.Sort, want) {
		t.Errorf("Sort = %v, want %v", req.Sort, want)
	}

	empty := pagination.PageRequestFromQuery(url.Values{}, defaultConfig())
	if empty.Page != 1 || empty.PageSize != 20 || empty.Search != nil {
		t.Errorf("empty query: got %+v", empty)
	}
}

func TestNewPageResult(t *testing.T) {
	tests := []struct {
		name           string
		total          int
		page           int
		wantTotalPages int
		wantHasNext    bool
	}{
		{"exact division", 100, 1, 5, true},
		{"remainder", 101, 6, 6, false},
		{"single page", 5, 1, 1, false},
		{"empty result", 0, 1, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := pagination.NewPageResult([]string{"a"}, tt.total, tt.page, 20)
			if result.TotalPages != tt.wantTotalPages {
				t.Errorf("TotalPages = %d, want %d", result.TotalPages, tt.wantTotalPages)
			}
			if result.HasNext != tt.wantHasNext {
				t.Errorf("HasNext = %v, want %v", result.HasNext, tt.wantHasNext)
			}
		})
	}

	if r := pagination.NewPageResult[string](nil, 0, 1, 20); r.Data == nil {
		t.Error("nil data should become an empty slice")
	}
}

func TestPageRequestApply(t *testing.T) {
	projection := query.NewProjectionMap("public", "prompts", "p").
		Project("text", "Text").
		Project("sort_order", "Order")

	search := "rain"
	req := pagination.PageRequest{
		Search: &search,
		Sort:   pagination.SortFields{{Field: "Text", Descending: true}},
	}

	qb := query.NewBuilder(projection, query.SortField{Field: "Order"}).WhereEquals("Order", 2)
	sql, args := req.Apply(qb, "Text").Build()

	want := "SELECT p.text, p.sort_order FROM public.prompts p WHERE p.sort_order = $1 AND p.text ILIKE $2 ORDER BY p.text DESC"
	if sql != want {
		t.Errorf("sql:\n got  %s\n want %s", sql, want)
	}
	if len(args) != 2 || args[1] != "%rain%" {
		t.Errorf("args = %v", args)
	}

	sql, _ = (&pagination.PageRequest{}).Apply(query.NewBuilder(projection, query.SortField{Field: "Order"})).Build()
	if sql != "SELECT p.text, p.sort_order FROM public.prompts p ORDER BY p.sort_order ASC" {
		t.Errorf("empty request sql = %s", sql)
	}

	injected := pagination.PageRequestFromQuery(url.Values{"sort": {"(SELECT 1)"}}, defaultConfig())
	sql, _ = injected.Apply(query.NewBuilder(projection, query.SortField{Field: "Order"})).Build()
	if sql != "SELECT p.text, p.sort_order FROM public.prompts p ORDER BY p.sort_order ASC" {
		t.Errorf("unknown sort field reached sql: %s", sql)
	}
}

func TestSortFieldsString(t *testing.T) {
	s := pagination.SortFields(query.ParseSortFields("Order,-CreatedAt"))
	if got := s.String(); got != "Order,-CreatedAt" {
		t.Errorf("String() = %q", got)
	}
}

func TestSortFieldsUnmarshal(t *testing.T) {
	want := pagination.SortFields{
		query.SortField{Field: "RecordedAt", Descending: true},
		query.SortField{Field: "Prompt"},
	}

	for _, input := range []string{
		`"-RecordedAt,Prompt"`,
		`[{"Field":"RecordedAt","Descending":true},{"Field":"Prompt"}]`,
	} {
		t.Run(input, func(t *testing.T) {
			var sf pagination.SortFields
			if err := json.Unmarshal([]byte(input), &sf); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			if !slices.Equal(sf, want) {
				t.Errorf("got %v, want %v", sf, want)
			}
		})
	}
}
