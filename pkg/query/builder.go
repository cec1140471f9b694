package query

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// SortField is one ORDER BY term, named by view or column name.
type SortField struct {
	Field      string `json:"field"`
	Descending bool   `json:"descending"`
}

// ParseSortFields reads the "carrier,-reconciled_at" shorthand. A leading
// "-" sorts descending.
func ParseSortFields(s string) []SortField {
	var fields []SortField
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		name, desc := strings.CutPrefix(part, "-")
		if name == "" {
			continue
		}
		fields = append(fields, SortField{Field: name, Descending: desc})
	}
	return fields
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Builder accumulates WHERE conditions and binds their arguments to
// $1..$n in the order they are added. Nil filter values add nothing.
type Builder struct {
	projection *ProjectionMap
	where      []string
	args       []any
	order      []SortField
	fallback   []SortField
}

// NewBuilder starts a query over projection. defaultSort applies when the
// caller sets no sort of its own and may name raw columns.
func NewBuilder(projection *ProjectionMap, defaultSort ...SortField) *Builder {
	return &Builder{projection: projection, fallback: defaultSort}
}

func (b *Builder) Build() (string, []any) {
	return fmt.Sprintf("SELECT %s FROM %s%s%s",
		b.projection.Columns(), b.projection.From(), b.whereClause(), b.orderClause(),
	), slices.Clone(b.args)
}

func (b *Builder) BuildCount() (string, []any) {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s%s",
		b.projection.From(), b.whereClause(),
	), slices.Clone(b.args)
}

// BuildPage is Build with LIMIT and OFFSET for a 1-based page.
func (b *Builder) BuildPage(page, pageSize int) (string, []any) {
	q, args := b.Build()
	return fmt.Sprintf("%s LIMIT %d OFFSET %d", q, pageSize, (page-1)*pageSize), args
}

// BuildSingle selects the row whose idField equals id. Conditions and
// ordering on the builder are ignored.
func (b *Builder) BuildSingle(idField string, id any) (string, []any) {
	return fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1",
		b.projection.Columns(), b.projection.From(), b.projection.Column(idField),
	), []any{id}
}

// OrderByFields replaces the default sort. Client supplied fields that the
// projection does not map are dropped, so a sort parameter never reaches
// the SQL text verbatim.
func (b *Builder) OrderByFields(fields []SortField) *Builder {
	b.order = b.order[:0]
	for _, f := range fields {
		if col, ok := b.projection.lookup(f.Field); ok {
			b.order = append(b.order, SortField{Field: col, Descending: f.Descending})
		}
	}
	return b
}

func (b *Builder) WhereEquals(field string, value any) *Builder {
	if isNil(value) {
		return b
	}
	b.where = append(b.where, b.projection.Column(field)+" = "+b.bind(value))
	return b
}

// WhereContains matches value anywhere in field, ignoring case. LIKE
// wildcards in value match literally.
func (b *Builder) WhereContains(field string, value *string) *Builder {
	if value == nil || *value == "" {
		return b
	}
	b.where = append(b.where, b.projection.Column(field)+" ILIKE "+b.bind(contains(*value)))
	return b
}

func (b *Builder) WhereIn(field string, values []any) *Builder {
	if len(values) == 0 {
		return b
	}
	marks := make([]string, len(values))
	for i, v := range values {
		marks[i] = b.bind(v)
	}
	b.where = append(b.where, fmt.Sprintf("%s IN (%s)", b.projection.Column(field), strings.Join(marks, ", ")))
	return b
}

// WhereRange bounds field inclusively. Either bound may be nil.
func (b *Builder) WhereRange(field string, lower, upper any) *Builder {
	col := b.projection.Column(field)
	if !isNil(lower) {
		b.where = append(b.where, col+" >= "+b.bind(lower))
	}
	if !isNil(upper) {
		b.where = append(b.where, col+" <= "+b.bind(upper))
	}
	return b
}

// WhereSearch matches search in any of fields.
func (b *Builder) WhereSearch(search *string, fields ...string) *Builder {
	if search == nil || *search == "" || len(fields) == 0 {
		return b
	}
	pattern := contains(*search)
	terms := make([]string, len(fields))
	for i, f := range fields {
		terms[i] = b.projection.Column(f) + " ILIKE " + b.bind(pattern)
	}
	b.where = append(b.where, "("+strings.Join(terms, " OR ")+")")
	return b
}

func (b *Builder) bind(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

func (b *Builder) whereClause() string {
	if len(b.where) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.where, " AND ")
}

func (b *Builder) orderClause() string {
	fields := b.order
	if len(fields) == 0 {
		fields = b.fallback
	}
	if len(fields) == 0 {
		return ""
	}

	terms := make([]string, len(fields))
	for i, f := range fields {
		dir := "ASC"
		if f.Descending {
			dir = "DESC"
		}
		terms[i] = b.projection.Column(f.Field) + " " + dir
	}
	return " ORDER BY " + strings.Join(terms, ", ")
}

func contains(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func isNil(value any) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return v.IsNil()
	}
	return false
}
