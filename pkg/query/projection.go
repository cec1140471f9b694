// Package query builds the parameterized SELECTs behind the saldo
// listings from a projection of view names onto qualified columns.
package query

import (
	"fmt"
	"strings"
)

// ProjectionMap maps view names (ReconciledAt) onto qualified columns
// (l.reconciled_at) for a base table and its joins.
type ProjectionMap struct {
	from    []string
	current string
	columns map[string]string
	list    []string
}

func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		from:    []string{fmt.Sprintf("%s.%s %s", schema, table, alias)},
		current: alias,
		columns: make(map[string]string),
	}
}

// Join adds a joined table. Columns projected after Join belong to alias.
func (p *ProjectionMap) Join(schema, table, alias, kind, on string) *ProjectionMap {
	p.from = append(p.from, fmt.Sprintf("%s %s.%s %s ON %s", kind, schema, table, alias, on))
	p.current = alias
	return p
}

// Project maps viewName onto column of the current table. The view name
// and the bare column name both resolve to it.
func (p *ProjectionMap) Project(column, viewName string) *ProjectionMap {
	qualified := p.current + "." + column
	p.columns[viewName] = qualified
	if _, ok := p.columns[column]; !ok {
		p.columns[column] = qualified
	}
	p.list = append(p.list, qualified)
	return p
}

// From is the FROM clause body.
func (p *ProjectionMap) From() string {
	return strings.Join(p.from, " ")
}

// Column resolves a view name. Unmapped names pass through unchanged, so
// trusted callers may name qualified columns directly.
func (p *ProjectionMap) Column(name string) string {
	if col, ok := p.columns[name]; ok {
		return col
	}
	return name
}

// Columns is the SELECT list in projection order.
func (p *ProjectionMap) Columns() string {
	return strings.Join(p.list, ", ")
}

func (p *ProjectionMap) lookup(name string) (string, bool) {
	col, ok := p.columns[name]
	return col, ok
}
