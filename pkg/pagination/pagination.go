package pagination

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/JaimeStill/soundslike/pkg/query"
)

// SortFields decodes from either "Order,-CreatedAt" or a JSON array of
// {"Field": ..., "Descending": ...} objects.
type SortFields []query.SortField

func (s *SortFields) UnmarshalJSON(data []byte) error {
	var compact string
	if json.Unmarshal(data, &compact) == nil {
		*s = query.ParseSortFields(compact)
		return nil
	}

	var fields []query.SortField
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*s = fields
	return nil
}

// String renders the compact form accepted by ParseSortFields.
func (s SortFields) String() string {
	parts := make([]string, len(s))
	for i, f := range s {
		if f.Descending {
			parts[i] = "-" + f.Field
		} else {
			parts[i] = f.Field
		}
	}
	return strings.Join(parts, ",")
}

// PageRequest selects one page of a listing, optionally narrowed by a
// free-text search and reordered by Sort.
type PageRequest struct {
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
	Search   *string    `json:"search,omitempty"`
	Sort     SortFields `json:"sort,omitempty"`
}

// Normalize clamps Page to at least 1 and PageSize into [1, cfg.MaxPageSize],
// substituting cfg.DefaultPageSize when unset.
func (r *PageRequest) Normalize(cfg Config) {
	r.Page = max(r.Page, 1)
	if r.PageSize < 1 {
		r.PageSize = cfg.DefaultPageSize
	}
	r.PageSize = min(r.PageSize, cfg.MaxPageSize)
}

func (r *PageRequest) Offset() int {
	return (r.Page - 1) * r.PageSize
}

// Apply adds the request's search across searchFields and its sort order to qb.
func (r *PageRequest) Apply(qb *query.Builder, searchFields ...string) *query.Builder {
	qb.WhereSearch(r.Search, searchFields...)
	if len(r.Sort) > 0 {
		qb.OrderByFields(r.Sort)
	}
	return qb
}

// PageRequestFromQuery reads page, page_size, search and sort from values
// and normalizes the result.
func PageRequestFromQuery(values url.Values, cfg Config) PageRequest {
	var req PageRequest
	req.Page, _ = strconv.Atoi(values.Get("page"))
	req.PageSize, _ = strconv.Atoi(values.Get("page_size"))
	if s := strings.TrimSpace(values.Get("search")); s != "" {
		req.Search = &s
	}
	req.Sort = query.ParseSortFields(values.Get("sort"))

	req.Normalize(cfg)
	return req
}

// PageResult is one page of T plus the totals a client needs to page further.
type PageResult[T any] struct {
	Data       []T  `json:"data"`
	Total      int  `json:"total"`
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
}

// NewPageResult builds a PageResult. Data is never nil and TotalPages is at least 1.
func NewPageResult[T any](data []T, total, page, pageSize int) PageResult[T] {
	if data == nil {
		data = []T{}
	}

	pages := 1
	if pageSize > 0 {
		pages = max((total+pageSize-1)/pageSize, 1)
	}

	return PageResult[T]{
		Data:       data,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: pages,
		HasNext:    page < pages,
	}
}
