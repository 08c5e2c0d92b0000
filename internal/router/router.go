package router

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/provider/internal/logger"
	"github.com/mesh-intelligence/provider/pkg/types"
)

// Router implements types.Provider. It holds no mutable state: the
// registry is immutable and all blocking happens in the backend, so a
// Router is safe for concurrent use.
type Router struct {
	registry  *Registry
	backend   types.Backend
	notifier  types.Notifier
	authority string
}

var _ types.Provider = (*Router)(nil)

type discard struct{}

func (discard) Notify(types.Locator) {}

// New returns a router answering for authority. A nil notifier discards
// change notifications.
func New(registry *Registry, backend types.Backend, notifier types.Notifier, authority string) *Router {
	if notifier == nil {
		notifier = discard{}
	}
	return &Router{
		registry:  registry,
		backend:   backend,
		notifier:  notifier,
		authority: authority,
	}
}

// Authority returns the authority the router answers for.
func (r *Router) Authority() string {
	return r.authority
}

// Registry returns the router's contract registry.
func (r *Router) Registry() *Registry {
	return r.registry
}

func (r *Router) log(ctx context.Context, op string, l types.Locator) *logrus.Entry {
	return logger.FromContext(ctx).WithFields(logrus.Fields{
		"op":        op,
		"authority": r.authority,
		"locator":   l.String(),
	})
}

// Create inserts values into the collection addressed by l. The last
// contract whose collection predicate matches decides the table. When
// values is empty the contract's primary key is passed as placeholder
// column. On success the change is announced at the new record's locator
// and that locator is returned.
func (r *Router) Create(ctx context.Context, l types.Locator, values types.Values) (types.Locator, error) {
	c, err := r.registry.ResolveInsertContract(l, r.authority)
	if err != nil {
		return types.Locator{}, err
	}
	values = values.Clone()
	table := c.TableName()

	placeholder := ""
	if len(values) == 0 {
		placeholder = c.PrimaryKey()
	}

	session, err := r.backend.OpenWritable(ctx)
	if err != nil {
		return types.Locator{}, &types.BackendError{Op: "open writable", Table: table, Err: err}
	}
	rowID, err := session.Insert(ctx, table, placeholder, values)
	if cerr := session.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		return types.Locator{}, &types.BackendError{Op: "insert", Table: table, Err: err}
	}
	if rowID <= 0 {
		r.log(ctx, "create", l).WithField("table", table).Warnf("backend returned row id %d", rowID)
		return types.Locator{}, &types.InsertFailedError{Locator: l}
	}

	created := c.CollectionLocator(r.authority).WithAppendedID(rowID)
	r.notifier.Notify(created)
	r.log(ctx, "create", l).WithField("table", table).Debugf("created %s", created)
	return created, nil
}

// Read queries the resource addressed by l. A nil filter is normalized to
// an empty one before the item filter is applied. The returned cursor is
// registered for change notification at l when the notifier supports
// watching.
func (r *Router) Read(ctx context.Context, l types.Locator, columns []string, filter *types.Filter, sortOrder string) (types.Rows, error) {
	projection, err := r.registry.ResolveProjection(l, r.authority)
	if err != nil {
		return nil, err
	}
	var where types.Filter
	if filter != nil {
		where = *filter
	}
	where = r.registry.AdjustFilter(l, where, r.authority)
	table, err := r.registry.ResolveTableName(l, r.authority)
	if err != nil {
		return nil, err
	}

	session, err := r.backend.OpenReadable(ctx)
	if err != nil {
		return nil, &types.BackendError{Op: "open readable", Table: table, Err: err}
	}
	rows, err := session.Query(ctx, types.Query{
		Table:      table,
		Columns:    append([]string(nil), columns...),
		Projection: projection,
		Filter:     where,
		SortOrder:  sortOrder,
	})
	if err != nil {
		if cerr := session.Close(); cerr != nil {
			r.log(ctx, "read", l).WithField("table", table).WithError(cerr).Warn("close session after failed query")
		}
		return nil, &types.BackendError{Op: "query", Table: table, Err: err}
	}

	cur := &Cursor{RowSequence: rows, session: session}
	if w, ok := r.notifier.(types.Watcher); ok {
		cur.changed, cur.unwatch = w.Watch(l)
	}
	r.log(ctx, "read", l).WithFields(logrus.Fields{"table": table, "where": where.Where}).Debug("query")
	return cur, nil
}

// Update writes values to the rows of l's table matching filter. Unlike
// Read and Delete, an item locator does not scope the update to its id.
// The change is announced at l even when no row was affected.
func (r *Router) Update(ctx context.Context, l types.Locator, values types.Values, filter types.Filter) (int64, error) {
	table, err := r.registry.ResolveTableName(l, r.authority)
	if err != nil {
		return 0, err
	}
	values = values.Clone()

	session, err := r.backend.OpenWritable(ctx)
	if err != nil {
		return 0, &types.BackendError{Op: "open writable", Table: table, Err: err}
	}
	count, err := session.Update(ctx, table, values, filter)
	if cerr := session.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		return 0, &types.BackendError{Op: "update", Table: table, Err: err}
	}

	r.notifier.Notify(l)
	r.log(ctx, "update", l).WithField("table", table).Debugf("%d rows", count)
	return count, nil
}

// Delete removes the rows of l's table matching filter, scoped to the id
// when l addresses an item.
func (r *Router) Delete(ctx context.Context, l types.Locator, filter types.Filter) (int64, error) {
	table, err := r.registry.ResolveTableName(l, r.authority)
	if err != nil {
		return 0, err
	}
	where := r.registry.AdjustFilter(l, filter, r.authority)

	session, err := r.backend.OpenWritable(ctx)
	if err != nil {
		return 0, &types.BackendError{Op: "open writable", Table: table, Err: err}
	}
	count, err := session.Delete(ctx, table, where)
	if cerr := session.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		return 0, &types.BackendError{Op: "delete", Table: table, Err: err}
	}

	r.notifier.Notify(l)
	r.log(ctx, "delete", l).WithField("table", table).Debugf("%d rows", count)
	return count, nil
}

// Type returns the content type of the resource addressed by l.
func (r *Router) Type(l types.Locator) (string, error) {
	return r.registry.ResolveContentType(l, r.authority)
}
