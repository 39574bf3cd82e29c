package query

import (
	"reflect"
	"strconv"
	"strings"
)

// SortField is one ORDER BY term. Field is a logical name resolved through
// the projection.
type SortField struct {
	Field      string
	Descending bool
}

// ParseSortFields reads the compact sort form "Order,-CreatedAt", where a
// leading "-" selects descending order. Blank terms are ignored.
func ParseSortFields(s string) []SortField {
	var fields []SortField
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, desc := strings.CutPrefix(part, "-")
		fields = append(fields, SortField{Field: name, Descending: desc})
	}
	return fields
}

// predicate renders one WHERE term. bind appends an argument and returns its
// placeholder.
type predicate func(bind func(any) string) string

// Builder accumulates WHERE predicates and ordering for a projection.
// Predicates are joined with AND; placeholders are numbered when a statement
// is built, so the same Builder can produce count and page queries.
type Builder struct {
	projection  *ProjectionMap
	predicates  []predicate
	order       []SortField
	defaultSort []SortField
}

// NewBuilder starts a query over projection. defaultSort applies whenever
// no requested sort field survives OrderByFields. Every sort field, default
// or requested, must be projected or sortable.
func NewBuilder(projection *ProjectionMap, defaultSort ...SortField) *Builder {
	return &Builder{projection: projection, defaultSort: defaultSort}
}

func (b *Builder) Build() (string, []any) {
	var sb strings.Builder
	b.selectFrom(&sb)
	args := b.where(&sb)
	b.orderBy(&sb)
	return sb.String(), args
}

func (b *Builder) BuildCount() (string, []any) {
	var sb strings.Builder
	sb.WriteString("SELECT COUNT(*) FROM ")
	sb.WriteString(b.projection.Table())
	args := b.where(&sb)
	return sb.String(), args
}

// BuildPage is Build with LIMIT pageSize and the OFFSET of the 1-based page.
func (b *Builder) BuildPage(page, pageSize int) (string, []any) {
	sql, args := b.Build()
	offset := max(page-1, 0) * pageSize
	return sql + " LIMIT " + strconv.Itoa(pageSize) + " OFFSET " + strconv.Itoa(offset), args
}

// BuildSingle selects the row whose field equals id, ignoring any predicates.
func (b *Builder) BuildSingle(field string, id any) (string, []any) {
	var sb strings.Builder
	b.selectFrom(&sb)
	sb.WriteString(" WHERE ")
	sb.WriteString(b.projection.Column(field))
	sb.WriteString(" = $1")
	return sb.String(), []any{id}
}

// OrderByFields replaces the sort order. Fields the projection does not map
// are dropped, so request input never reaches the ORDER BY clause; when none
// remain the default sort applies.
func (b *Builder) OrderByFields(fields []SortField) *Builder {
	b.order = b.order[:0]
	for _, f := range fields {
		if _, ok := b.projection.Lookup(f.Field); ok {
			b.order = append(b.order, f)
		}
	}
	return b
}

// WhereEquals matches field = value. A nil value (including a typed nil
// pointer) adds nothing.
func (b *Builder) WhereEquals(field string, value any) *Builder {
	if isNil(value) {
		return b
	}
	col := b.projection.Column(field)
	return b.add(func(bind func(any) string) string {
		return col + " = " + bind(value)
	})
}

// WhereNullable matches field = value, or field IS NULL when value is nil.
func (b *Builder) WhereNullable(field string, value any) *Builder {
	if isNil(value) {
		col := b.projection.Column(field)
		return b.add(func(func(any) string) string { return col + " IS NULL" })
	}
	return b.WhereEquals(field, value)
}

// WhereContains is a case-insensitive substring match. Nil or empty values add nothing.
func (b *Builder) WhereContains(field string, value *string) *Builder {
	if value == nil || *value == "" {
		return b
	}
	return b.WhereSearch(value, field)
}

// WhereAny matches rows whose array column field holds value.
func (b *Builder) WhereAny(field string, value *string) *Builder {
	if value == nil || *value == "" {
		return b
	}
	col := b.projection.Column(field)
	v := *value
	return b.add(func(bind func(any) string) string {
		return bind(v) + " = ANY(" + col + ")"
	})
}

func (b *Builder) WhereIn(field string, values []any) *Builder {
	if len(values) == 0 {
		return b
	}
	col := b.projection.Column(field)
	return b.add(func(bind func(any) string) string {
		marks := make([]string, len(values))
		for i, v := range values {
			marks[i] = bind(v)
		}
		return col + " IN (" + strings.Join(marks, ", ") + ")"
	})
}

// WhereSearch matches search as a substring of any of fields. A single
// field renders without parentheses.
func (b *Builder) WhereSearch(search *string, fields ...string) *Builder {
	if search == nil || *search == "" || len(fields) == 0 {
		return b
	}
	pattern := "%" + *search + "%"
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = b.projection.Column(f)
	}
	return b.add(func(bind func(any) string) string {
		terms := make([]string, len(cols))
		for i, col := range cols {
			terms[i] = col + " ILIKE " + bind(pattern)
		}
		if len(terms) == 1 {
			return terms[0]
		}
		return "(" + strings.Join(terms, " OR ") + ")"
	})
}

func (b *Builder) add(p predicate) *Builder {
	b.predicates = append(b.predicates, p)
	return b
}

func (b *Builder) selectFrom(sb *strings.Builder) {
	sb.WriteString("SELECT ")
	sb.WriteString(b.projection.Columns())
	sb.WriteString(" FROM ")
	sb.WriteString(b.projection.Table())
}

func (b *Builder) where(sb *strings.Builder) []any {
	if len(b.predicates) == 0 {
		return nil
	}

	var args []any
	bind := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	for i, p := range b.predicates {
		if i == 0 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}
		sb.WriteString(p(bind))
	}
	return args
}

func (b *Builder) orderBy(sb *strings.Builder) {
	fields := b.order
	if len(fields) == 0 {
		fields = b.defaultSort
	}

	written := 0
	for _, f := range fields {
		col, ok := b.projection.Lookup(f.Field)
		if !ok {
			continue
		}
		if written == 0 {
			sb.WriteString(" ORDER BY ")
		} else {
			sb.WriteString(", ")
		}
		written++
		sb.WriteString(col)
		if f.Descending {
			sb.WriteString(" DESC")
		} else {
			sb.WriteString(" ASC")
		}
	}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
