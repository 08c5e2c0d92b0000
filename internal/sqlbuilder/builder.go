package sqlbuilder

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mesh-intelligence/provider/pkg/contract"
	"github.com/mesh-intelligence/provider/pkg/types"
)

func checkIdent(kind, s string) error {
	if !contract.ValidIdentifier(s) {
		return fmt.Errorf("%w: %s %q", types.ErrInvalidIdentifier, kind, s)
	}
	return nil
}

// Columns computes the SELECT list for columns under projection.
// With a projection, every requested alias must be one of its keys and is
// rewritten to "expr AS alias" (or just alias when expr equals it); no
// requested columns selects every entry in alias order. Without a
// projection, requested columns are validated and quoted, and none selects
// "*".
func Columns(columns []string, projection map[string]string) (string, error) {
	if len(projection) == 0 {
		if len(columns) == 0 {
			return "*", nil
		}
		parts := make([]string, 0, len(columns))
		for _, c := range columns {
			if err := checkIdent("column", c); err != nil {
				return "", err
			}
			parts = append(parts, QuoteIdent(c))
		}
		return strings.Join(parts, ", "), nil
	}

	if len(columns) == 0 {
		columns = make([]string, 0, len(projection))
		for alias := range projection {
			columns = append(columns, alias)
		}
		sort.Strings(columns)
	}
	parts := make([]string, 0, len(columns))
	for _, alias := range columns {
		expr, ok := projection[alias]
		if !ok {
			return "", fmt.Errorf("%w: %q", types.ErrInvalidColumn, alias)
		}
		if expr == alias {
			parts = append(parts, alias)
		} else {
			parts = append(parts, expr+" AS "+alias)
		}
	}
	return strings.Join(parts, ", "), nil
}

// Select renders a SELECT for q.
func (d Dialect) Select(q types.Query) (string, []any, error) {
	if err := checkIdent("table", q.Table); err != nil {
		return "", nil, err
	}
	cols, err := Columns(q.Columns, q.Projection)
	if err != nil {
		return "", nil, err
	}
	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(cols)
	sb.WriteString(" FROM ")
	sb.WriteString(QuoteIdent(q.Table))
	args := d.where(&sb, q.Filter, 0)
	if q.SortOrder != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(q.SortOrder)
	}
	return sb.String(), args, nil
}

// Insert renders an INSERT of values into table. Columns are written in
// sorted order. Empty values name placeholder with NULL on SQLite and use
// DEFAULT VALUES on Postgres. Postgres inserts return primaryKey.
func (d Dialect) Insert(table, primaryKey, placeholder string, values types.Values) (string, []any, error) {
	if err := checkIdent("table", table); err != nil {
		return "", nil, err
	}
	keys, err := sortedKeys(values)
	if err != nil {
		return "", nil, err
	}

	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString("INSERT INTO ")
	sb.WriteString(QuoteIdent(table))
	switch {
	case len(keys) > 0:
		marks := make([]string, len(keys))
		quoted := make([]string, len(keys))
		for i, k := range keys {
			quoted[i] = QuoteIdent(k)
			marks[i] = d.Placeholder(i + 1)
			args = append(args, values[k])
		}
		sb.WriteString(" (" + strings.Join(quoted, ", ") + ") VALUES (" + strings.Join(marks, ", ") + ")")
	case d.returning:
		sb.WriteString(" DEFAULT VALUES")
	default:
		if placeholder == "" {
			return "", nil, fmt.Errorf("%w: insert into %s needs a placeholder column", types.ErrEmptyValues, table)
		}
		if err := checkIdent("column", placeholder); err != nil {
			return "", nil, err
		}
		sb.WriteString(" (" + QuoteIdent(placeholder) + ") VALUES (NULL)")
	}
	if d.returning {
		if err := checkIdent("column", primaryKey); err != nil {
			return "", nil, err
		}
		sb.WriteString(" RETURNING " + QuoteIdent(primaryKey))
	}
	return sb.String(), args, nil
}

// Update renders an UPDATE setting values on the rows matching filter.
// Value parameters come first, then the filter's arguments.
func (d Dialect) Update(table string, values types.Values, filter types.Filter) (string, []any, error) {
	if err := checkIdent("table", table); err != nil {
		return "", nil, err
	}
	keys, err := sortedKeys(values)
	if err != nil {
		return "", nil, err
	}
	if len(keys) == 0 {
		return "", nil, fmt.Errorf("%w: update %s", types.ErrEmptyValues, table)
	}

	var sb strings.Builder
	args := make([]any, 0, len(keys)+len(filter.Args))
	sb.WriteString("UPDATE ")
	sb.WriteString(QuoteIdent(table))
	sb.WriteString(" SET ")
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(QuoteIdent(k) + " = " + d.Placeholder(i+1))
		args = append(args, values[k])
	}
	args = append(args, d.where(&sb, filter, len(keys))...)
	return sb.String(), args, nil
}

// Delete renders a DELETE of the rows matching filter.
func (d Dialect) Delete(table string, filter types.Filter) (string, []any, error) {
	if err := checkIdent("table", table); err != nil {
		return "", nil, err
	}
	var sb strings.Builder
	sb.WriteString("DELETE FROM ")
	sb.WriteString(QuoteIdent(table))
	args := d.where(&sb, filter, 0)
	return sb.String(), args, nil
}

// where appends the WHERE clause of filter, rebinding its markers after
// offset, and returns a copy of its arguments.
func (d Dialect) where(sb *strings.Builder, filter types.Filter, offset int) []any {
	if filter.IsEmpty() {
		return append([]any(nil), filter.Args...)
	}
	clause, _ := d.Rebind(filter.Where, offset)
	sb.WriteString(" WHERE ")
	sb.WriteString(clause)
	return append([]any(nil), filter.Args...)
}

func sortedKeys(values types.Values) ([]string, error) {
	keys := make([]string, 0, len(values))
	for k := range values {
		if err := checkIdent("column", k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// CreateTable renders the DDL of a contract table: the auto-increment
// primary key followed by the declared columns.
func (d Dialect) CreateTable(s contract.Schema) (string, error) {
	if err := checkIdent("table", s.TableName()); err != nil {
		return "", err
	}
	if err := checkIdent("column", s.PrimaryKey()); err != nil {
		return "", err
	}
	defs := []string{QuoteIdent(s.PrimaryKey()) + " " + d.primaryKeyType}
	for _, col := range s.Columns() {
		if err := checkIdent("column", col.Name); err != nil {
			return "", err
		}
		if col.Name == s.PrimaryKey() {
			continue
		}
		defs = append(defs, QuoteIdent(col.Name)+" "+col.Type)
	}
	return "CREATE TABLE IF NOT EXISTS " + QuoteIdent(s.TableName()) + " (" + strings.Join(defs, ", ") + ")", nil
}
