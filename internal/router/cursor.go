package router

import (
	"sync"

	"github.com/mesh-intelligence/provider/pkg/types"
)

// Cursor is the forward-only result of Router.Read. It owns the readable
// session and the change watch; Close releases all three.
type Cursor struct {
	types.RowSequence
	session types.Session
	changed <-chan types.Locator
	unwatch func()
	once    sync.Once
	err     error
}

var _ types.Rows = (*Cursor)(nil)

// Changed delivers locators changed at, below or above the queried
// locator. It is
// nil when the router's notifier cannot be watched.
func (c *Cursor) Changed() <-chan types.Locator {
	return c.changed
}

// Close closes the rows, releases the session and stops the watch.
// It is idempotent.
func (c *Cursor) Close() error {
	c.once.Do(func() {
		c.err = c.RowSequence.Close()
		if err := c.session.Close(); c.err == nil {
			c.err = err
		}
		if c.unwatch != nil {
			c.unwatch()
		}
	})
	return c.err
}
