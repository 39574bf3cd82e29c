// Package query assembles parameterized PostgreSQL SELECT statements against
// a projection of logical field names onto table columns.
package query

import "strings"

// ProjectionMap maps logical field names (the names handlers and sort
// parameters use) to alias-qualified columns of one table.
type ProjectionMap struct {
	from    string
	alias   string
	byField map[string]string
	ordered []string
}

func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		from:    schema + "." + table + " " + alias,
		alias:   alias,
		byField: map[string]string{},
	}
}

// Project maps field to column. Columns are selected in the order they are projected.
func (p *ProjectionMap) Project(column, field string) *ProjectionMap {
	qualified := p.alias + "." + column
	p.byField[field] = qualified
	p.ordered = append(p.ordered, qualified)
	return p
}

// Sortable maps field to column for ordering only; the column is not selected.
func (p *ProjectionMap) Sortable(column, field string) *ProjectionMap {
	p.byField[field] = p.alias + "." + column
	return p
}

// Table returns the FROM target, "schema.table alias".
func (p *ProjectionMap) Table() string {
	return p.from
}

// Column resolves field. Unknown fields pass through untouched; predicates
// name their fields in code, never from request input.
func (p *ProjectionMap) Column(field string) string {
	if col, ok := p.byField[field]; ok {
		return col
	}
	return field
}

// Lookup resolves field only when it is projected or sortable.
func (p *ProjectionMap) Lookup(field string) (string, bool) {
	col, ok := p.byField[field]
	return col, ok
}

func (p *ProjectionMap) Columns() string {
	return strings.Join(p.ordered, ", ")
}
