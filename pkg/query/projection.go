// Package query builds dialect-neutral SELECT statements with positional
// ($n) parameters understood by both pgx and go-sqlite3.
package query

import (
	"fmt"
	"strings"
)

// ProjectionMap maps logical field names to qualified column expressions
// for one table (plus optional joins and grouping).
type ProjectionMap struct {
	table   string
	alias   string
	joins   []string
	columns []string
	fields  map[string]string
	groupBy []string
}

// NewProjectionMap starts a projection over table with alias.
func NewProjectionMap(table, alias string) *ProjectionMap {
	return &ProjectionMap{
		table:  table,
		alias:  alias,
		fields: make(map[string]string),
	}
}

// Project adds alias.column under field.
func (p *ProjectionMap) Project(column, field string) *ProjectionMap {
	return p.ProjectExpr(fmt.Sprintf("%s.%s", p.alias, column), field)
}

// ProjectExpr adds a raw expression (typically an aggregate) under field.
func (p *ProjectionMap) ProjectExpr(expr, field string) *ProjectionMap {
	p.columns = append(p.columns, expr)
	p.fields[field] = expr
	return p
}

// Join appends a join clause, e.g. "LEFT JOIN annotations a ON a.document_id = d.id".
func (p *ProjectionMap) Join(clause string) *ProjectionMap {
	p.joins = append(p.joins, clause)
	return p
}

// GroupBy groups results by the given fields.
func (p *ProjectionMap) GroupBy(fields ...string) *ProjectionMap {
	for _, f := range fields {
		p.groupBy = append(p.groupBy, p.Column(f))
	}
	return p
}

// Table returns the FROM clause including joins.
func (p *ProjectionMap) Table() string {
	from := fmt.Sprintf("%s %s", p.table, p.alias)
	if len(p.joins) > 0 {
		from += " " + strings.Join(p.joins, " ")
	}
	return from
}

// Columns returns the comma separated select list.
func (p *ProjectionMap) Columns() string {
	return strings.Join(p.columns, ", ")
}

// Column returns the expression for field. Unknown fields panic since
// they indicate a programming error in a static query.
func (p *ProjectionMap) Column(field string) string {
	col, ok := p.fields[field]
	if !ok {
		panic(fmt.Sprintf("query: unknown field %q", field))
	}
	return col
}

func (p *ProjectionMap) groupClause() string {
	if len(p.groupBy) == 0 {
		return ""
	}
	return " GROUP BY " + strings.Join(p.groupBy, ", ")
}
