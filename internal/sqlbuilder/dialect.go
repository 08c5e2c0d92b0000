// Package sqlbuilder renders the statements an execution backend runs:
// SELECT with projection rewriting, INSERT, UPDATE, DELETE and the DDL
// creating contract tables. Values are always bound as parameters; table
// and column names are validated and quoted.
package sqlbuilder

import (
	"strconv"
	"strings"
)

// Dialect captures the differences between the supported databases.
type Dialect struct {
	// Name is the backend name from the configuration.
	Name string
	// numbered selects $n placeholders instead of ?.
	numbered bool
	// returning appends RETURNING <pk> to inserts.
	returning bool
	// primaryKeyType is the column definition of an auto-increment key.
	primaryKeyType string
	// versionTable keeps the schema version in a table instead of
	// PRAGMA user_version.
	versionTable bool
}

// Supported dialects.
var (
	SQLite = Dialect{
		Name:           "sqlite",
		primaryKeyType: "INTEGER PRIMARY KEY AUTOINCREMENT",
	}
	Postgres = Dialect{
		Name:           "postgres",
		numbered:       true,
		returning:      true,
		primaryKeyType: "BIGSERIAL PRIMARY KEY",
		versionTable:   true,
	}
)

// Returning reports whether inserts return the new id as a result row
// rather than through LastInsertId.
func (d Dialect) Returning() bool {
	return d.returning
}

// Placeholder returns the n-th (1-based) parameter marker.
func (d Dialect) Placeholder(n int) string {
	if d.numbered {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// QuoteIdent quotes an identifier already checked by ValidIdentifier.
func QuoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Rebind rewrites the ? markers of a caller-supplied clause to the
// dialect's markers, numbering from offset+1. Markers inside quoted
// strings or identifiers are left alone. It returns the clause and the
// number of markers found.
func (d Dialect) Rebind(clause string, offset int) (string, int) {
	var (
		sb    strings.Builder
		n     int
		quote rune
	)
	for _, r := range clause {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
			sb.WriteRune(r)
		case r == '\'' || r == '"':
			quote = r
			sb.WriteRune(r)
		case r == '?':
			n++
			sb.WriteString(d.Placeholder(offset + n))
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String(), n
}
