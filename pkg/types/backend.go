package types

import "context"

// Backend executes statements against the datastore. Acquiring a session
// may block; releasing it is the backend's concern and happens on
// Session.Close.
type Backend interface {
	// OpenWritable acquires a session that may insert, update and delete.
	OpenWritable(ctx context.Context) (Session, error)

	// OpenReadable acquires a session for queries.
	OpenReadable(ctx context.Context) (Session, error)

	// Close releases the underlying connection pool.
	Close() error
}

// Session runs statements against one table at a time.
type Session interface {
	// Insert writes values into table and returns the new row id. A row id
	// of zero or less signals failure. When values is empty the backend
	// names placeholderColumn so the statement is not rejected; an empty
	// placeholderColumn means none is needed.
	Insert(ctx context.Context, table, placeholderColumn string, values Values) (int64, error)

	// Query selects rows. The returned sequence keeps the session's
	// resources until it is closed.
	Query(ctx context.Context, q Query) (RowSequence, error)

	// Update writes values to the rows matching filter and returns the
	// affected row count.
	Update(ctx context.Context, table string, values Values, filter Filter) (int64, error)

	// Delete removes the rows matching filter and returns the affected row
	// count.
	Delete(ctx context.Context, table string, filter Filter) (int64, error)

	// Close releases the session.
	Close() error
}

// Query describes a SELECT against one table.
type Query struct {
	Table string
	// Columns are the requested aliases; empty selects every projection
	// entry.
	Columns []string
	// Projection maps allowed aliases to column expressions. Requested
	// columns outside it are rejected with ErrInvalidColumn.
	Projection map[string]string
	Filter     Filter
	SortOrder  string
}

// RowSequence is a forward-only result set. It cannot be rewound; run the
// query again to read the rows a second time.
type RowSequence interface {
	Columns() ([]string, error)
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}
