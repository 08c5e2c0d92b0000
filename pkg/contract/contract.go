// Package contract builds types.Contract values from their configuration
// form. A contract addresses the collection at a fixed path under any
// authority and the items below it by trailing numeric id.
package contract

import (
	"fmt"
	"maps"
	"regexp"
	"strings"

	"github.com/mesh-intelligence/provider/pkg/types"
)

// identifierPattern matches the table and column names a contract accepts.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidIdentifier reports whether s may be used unquoted as a table or
// column name.
func ValidIdentifier(s string) bool {
	return identifierPattern.MatchString(s)
}

// pathContract implements types.Contract for a table reachable at a fixed
// base path.
type pathContract struct {
	table          string
	path           []string
	primaryKey     string
	projection     map[string]string
	collectionType string
	itemType       string
	columns        []types.ColumnDefinition
}

// New validates def and returns the immutable Contract it describes.
// Defaults: primary key "_id", projection {pk: pk} plus every declared
// column, content types "vnd.cursor.dir/vnd.<table>" and
// "vnd.cursor.item/vnd.<table>".
// Returns an error wrapping ErrInvalidContract when def is malformed.
func New(def types.ContractDefinition) (types.Contract, error) {
	if !ValidIdentifier(def.Table) {
		return nil, fmt.Errorf("%w: table %q", types.ErrInvalidContract, def.Table)
	}
	path := splitPath(def.Path)
	if len(path) == 0 {
		return nil, fmt.Errorf("%w: table %s: empty path", types.ErrInvalidContract, def.Table)
	}
	for _, seg := range path {
		if isDigits(seg) {
			return nil, fmt.Errorf("%w: table %s: numeric path segment %q", types.ErrInvalidContract, def.Table, seg)
		}
	}

	c := &pathContract{
		table:          def.Table,
		path:           path,
		primaryKey:     def.PrimaryKey,
		collectionType: def.CollectionType,
		itemType:       def.ItemType,
		columns:        append([]types.ColumnDefinition(nil), def.Columns...),
	}
	if c.primaryKey == "" {
		c.primaryKey = types.DefaultPrimaryKey
	}
	if !ValidIdentifier(c.primaryKey) {
		return nil, fmt.Errorf("%w: table %s: primary key %q", types.ErrInvalidContract, def.Table, c.primaryKey)
	}
	for _, col := range c.columns {
		if !ValidIdentifier(col.Name) || col.Type == "" {
			return nil, fmt.Errorf("%w: table %s: column %q", types.ErrInvalidContract, def.Table, col.Name)
		}
	}
	if c.collectionType == "" {
		c.collectionType = "vnd.cursor.dir/vnd." + def.Table
	}
	if c.itemType == "" {
		c.itemType = "vnd.cursor.item/vnd." + def.Table
	}

	if len(def.Projection) > 0 {
		c.projection = maps.Clone(def.Projection)
	} else {
		c.projection = map[string]string{c.primaryKey: c.primaryKey}
		for _, col := range c.columns {
			c.projection[col.Name] = col.Name
		}
	}
	for alias, expr := range c.projection {
		if !ValidIdentifier(alias) || expr == "" {
			return nil, fmt.Errorf("%w: table %s: projection %q", types.ErrInvalidContract, def.Table, alias)
		}
	}
	return c, nil
}

// MustNew is like New but panics on error. Intended for contracts declared
// in code.
func MustNew(def types.ContractDefinition) types.Contract {
	c, err := New(def)
	if err != nil {
		panic(err)
	}
	return c
}

// NewAll builds contracts from defs in order. Two definitions naming the
// same table and path are rejected with ErrDuplicateTable.
func NewAll(defs []types.ContractDefinition) ([]types.Contract, error) {
	seen := make(map[string]bool, len(defs))
	out := make([]types.Contract, 0, len(defs))
	for _, def := range defs {
		c, err := New(def)
		if err != nil {
			return nil, err
		}
		key := def.Table + " " + strings.Join(splitPath(def.Path), "/")
		if seen[key] {
			return nil, fmt.Errorf("%w: %s at %s", types.ErrDuplicateTable, def.Table, def.Path)
		}
		seen[key] = true
		out = append(out, c)
	}
	return out, nil
}

func splitPath(p string) []string {
	var out []string
	for _, seg := range strings.Split(strings.Trim(p, "/"), "/") {
		if seg != "" {
			out = append(out, seg)
		}
	}
	return out
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func (c *pathContract) TableName() string       { return c.table }
func (c *pathContract) PrimaryKey() string      { return c.primaryKey }
func (c *pathContract) ContentType() string     { return c.collectionType }
func (c *pathContract) ItemContentType() string { return c.itemType }

func (c *pathContract) Projection() map[string]string {
	return maps.Clone(c.projection)
}

// Columns returns the declared columns, excluding the primary key.
func (c *pathContract) Columns() []types.ColumnDefinition {
	return append([]types.ColumnDefinition(nil), c.columns...)
}

func (c *pathContract) MatchesCollection(l types.Locator, authority string) bool {
	return l.Authority == authority && !l.HasID && l.PathEquals(c.path)
}

func (c *pathContract) MatchesItem(l types.Locator, authority string) bool {
	return l.Authority == authority && l.HasID && l.PathEquals(c.path)
}

func (c *pathContract) MatchesAny(l types.Locator, authority string) bool {
	return c.MatchesCollection(l, authority) || c.MatchesItem(l, authority)
}

func (c *pathContract) MatchesItemByID(l types.Locator, authority string) bool {
	return c.MatchesItem(l, authority)
}

// BuildItemFilter renders "(existing) AND (pk = id)", or "pk = id" when
// existing is empty.
func (c *pathContract) BuildItemFilter(l types.Locator, existing types.Filter) types.Filter {
	return existing.And(types.EqualsID(c.primaryKey, l.ID))
}

func (c *pathContract) CollectionLocator(authority string) types.Locator {
	return types.NewLocator(authority, c.path...)
}

// Schema is implemented by contracts that declare their columns, so a
// backend can create their tables.
type Schema interface {
	TableName() string
	PrimaryKey() string
	Columns() []types.ColumnDefinition
}
