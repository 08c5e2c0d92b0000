package types

import "context"

// Provider is the CRUD surface addressed by locators. Every method either
// returns a well-defined result or fails with an *UnknownResourceError, an
// *InsertFailedError (Create only) or a *BackendError.
type Provider interface {
	// Create inserts values into the collection addressed by l and returns
	// the locator of the new record.
	Create(ctx context.Context, l Locator, values Values) (Locator, error)

	// Read queries the resource addressed by l. A nil filter is treated as
	// an empty one. Item locators are scoped to their id.
	Read(ctx context.Context, l Locator, columns []string, filter *Filter, sortOrder string) (Rows, error)

	// Update writes values to the rows matching filter. Item locators are
	// NOT scoped to their id; callers pass the id filter explicitly.
	Update(ctx context.Context, l Locator, values Values, filter Filter) (int64, error)

	// Delete removes the rows matching filter, scoped to the id for item
	// locators.
	Delete(ctx context.Context, l Locator, filter Filter) (int64, error)

	// Type returns the content type for l.
	Type(l Locator) (string, error)
}

// Rows is the cursor returned by Provider.Read. Changed delivers the
// locators of mutations at, below or above the queried locator until
// Close, so a collection-wide update reaches an item cursor; it is
// nil when the provider's notifier cannot be watched.
type Rows interface {
	RowSequence
	Changed() <-chan Locator
}
