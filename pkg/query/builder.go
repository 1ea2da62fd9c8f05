package query

import (
	"fmt"
	"strings"
)

type condition struct {
	clause string
	args   []any
}

// SortField names a projected field and its direction.
type SortField struct {
	Field      string
	Descending bool
}

// Builder constructs SQL queries using a fluent API with automatic parameter numbering.
type Builder struct {
	projection *ProjectionMap
	conditions []condition
	sort       []SortField
	limit      int
}

// NewBuilder creates a Builder for the given projection. The sort fields are
// applied in order when no OrderBy call overrides them.
func NewBuilder(projection *ProjectionMap, sort ...SortField) *Builder {
	return &Builder{
		projection: projection,
		conditions: make([]condition, 0),
		sort:       sort,
	}
}

// Build returns the SELECT query with the current conditions and ordering.
func (b *Builder) Build() (string, []any) {
	where, args := b.buildWhere()

	sql := fmt.Sprintf(
		"SELECT %s FROM %s%s%s%s",
		b.projection.Columns(),
		b.projection.Table(),
		where,
		b.projection.groupClause(),
		b.buildOrderBy(),
	)
	if b.limit > 0 {
		sql += fmt.Sprintf(" LIMIT %d", b.limit)
	}

	return sql, args
}

// BuildSingle returns a SELECT query for a single record by ID.
func (b *Builder) BuildSingle(idField string, id any) (string, []any) {
	b.conditions = append([]condition{{
		clause: fmt.Sprintf("%s = $%%d", b.projection.Column(idField)),
		args:   []any{id},
	}}, b.conditions...)
	b.sort = nil
	b.limit = 0
	return b.Build()
}

// OrderBy replaces the sort with field, keeping remaining defaults as tiebreakers.
func (b *Builder) OrderBy(field string, descending bool) *Builder {
	if field == "" {
		return b
	}
	b.sort = append([]SortField{{Field: field, Descending: descending}}, b.sort...)
	return b
}

// Limit caps the number of returned rows. Zero means unlimited.
func (b *Builder) Limit(n int) *Builder {
	b.limit = n
	return b
}

// WhereContains adds a case-insensitive substring condition. Nil or empty values are ignored.
func (b *Builder) WhereContains(field string, value *string) *Builder {
	if value == nil || *value == "" {
		return b
	}
	return b.WhereSearch(value, field)
}

// WhereEquals adds an equality condition. Nil values are ignored.
func (b *Builder) WhereEquals(field string, value any) *Builder {
	if value == nil {
		return b
	}
	b.conditions = append(b.conditions, condition{
		clause: fmt.Sprintf("%s = $%%d", b.projection.Column(field)),
		args:   []any{value},
	})
	return b
}

// WhereIn adds an IN condition for multiple values. Empty slices are ignored.
func (b *Builder) WhereIn(field string, values []any) *Builder {
	if len(values) == 0 {
		return b
	}
	placeholders := make([]string, len(values))
	for i := range values {
		placeholders[i] = "$%d"
	}
	b.conditions = append(b.conditions, condition{
		clause: fmt.Sprintf("%s IN (%s)", b.projection.Column(field), strings.Join(placeholders, ", ")),
		args:   values,
	})
	return b
}

// WhereSearch adds an OR condition across fields using LOWER(...) LIKE, which
// behaves the same on PostgreSQL and SQLite. Nil or empty search is ignored.
func (b *Builder) WhereSearch(search *string, fields ...string) *Builder {
	if search == nil || *search == "" || len(fields) == 0 {
		return b
	}

	pattern := "%" + strings.ToLower(*search) + "%"
	clauses := make([]string, len(fields))
	args := make([]any, len(fields))

	for i, field := range fields {
		clauses[i] = fmt.Sprintf("LOWER(%s) LIKE $%%d", b.projection.Column(field))
		args[i] = pattern
	}

	b.conditions = append(b.conditions, condition{
		clause: "(" + strings.Join(clauses, " OR ") + ")",
		args:   args,
	})
	return b
}

func (b *Builder) buildOrderBy() string {
	if len(b.sort) == 0 {
		return ""
	}

	parts := make([]string, len(b.sort))
	for i, s := range b.sort {
		dir := "ASC"
		if s.Descending {
			dir = "DESC"
		}
		parts[i] = fmt.Sprintf("%s %s", b.projection.Column(s.Field), dir)
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

// buildWhere numbers placeholders in order of appearance, which go-sqlite3
// requires for $n parameters to bind positionally.
func (b *Builder) buildWhere() (string, []any) {
	if len(b.conditions) == 0 {
		return "", nil
	}

	clauses := make([]string, 0, len(b.conditions))
	args := make([]any, 0)
	paramIdx := 1

	for _, cond := range b.conditions {
		clause := cond.clause
		for _, arg := range cond.args {
			clause = strings.Replace(clause, "$%d", fmt.Sprintf("$%d", paramIdx), 1)
			args = append(args, arg)
			paramIdx++
		}
		clauses = append(clauses, clause)
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}
