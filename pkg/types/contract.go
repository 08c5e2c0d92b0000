package types

import (
	"maps"
	"strconv"
)

// DefaultPrimaryKey is the primary key column contracts use unless their
// definition names another one.
const DefaultPrimaryKey = "_id"

// Contract describes one logical resource family: the table it lives in, the
// columns callers may select, the content types reported for it, and the
// predicates deciding whether a locator addresses it.
// Contracts are immutable once registered; every method is safe for
// concurrent use. The authority is passed to each predicate so the same
// contract set can serve several authorities.
type Contract interface {
	// TableName returns the non-empty table backing the contract.
	TableName() string

	// PrimaryKey returns the primary key column, used for item filters and
	// as the placeholder column of empty inserts.
	PrimaryKey() string

	// Projection returns a copy of the alias to column-expression mapping.
	Projection() map[string]string

	// ContentType returns the content type of the collection endpoint.
	ContentType() string

	// ItemContentType returns the content type of the item endpoint.
	ItemContentType() string

	// MatchesCollection reports whether l addresses the whole table.
	MatchesCollection(l Locator, authority string) bool

	// MatchesItem reports whether l addresses a single record.
	MatchesItem(l Locator, authority string) bool

	// MatchesAny reports whether l addresses the collection or an item.
	MatchesAny(l Locator, authority string) bool

	// MatchesItemByID reports whether the primary key filter must be
	// injected for l.
	MatchesItemByID(l Locator, authority string) bool

	// BuildItemFilter conjoins existing with the primary key equality for
	// the id carried by l. existing is not modified.
	BuildItemFilter(l Locator, existing Filter) Filter

	// CollectionLocator returns the canonical collection locator under
	// authority. Inserted ids are appended to it.
	CollectionLocator(authority string) Locator
}

// Filter is a WHERE clause plus its positional arguments.
type Filter struct {
	Where string
	Args  []any
}

// IsEmpty reports whether the filter has no clause.
func (f Filter) IsEmpty() bool {
	return f.Where == ""
}

// And returns the conjunction "(f) AND (clause)". When f is empty the
// result is clause alone. The arguments of f are kept in order.
func (f Filter) And(clause string) Filter {
	args := append([]any(nil), f.Args...)
	if f.IsEmpty() {
		return Filter{Where: clause, Args: args}
	}
	return Filter{Where: "(" + f.Where + ") AND (" + clause + ")", Args: args}
}

// EqualsID renders "column = id". The id is an integer literal so the
// caller's positional arguments keep their positions.
func EqualsID(column string, id int64) string {
	return column + " = " + strconv.FormatInt(id, 10)
}

// Values maps column names to the values written by insert and update.
type Values map[string]any

// Clone returns a copy of v; a nil map clones to an empty one.
func (v Values) Clone() Values {
	if v == nil {
		return Values{}
	}
	return maps.Clone(v)
}
