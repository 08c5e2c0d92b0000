package router

import (
	"context"
	"sync"

	"github.com/mesh-intelligence/provider/pkg/types"
)

// call records one session invocation.
type call struct {
	op          string
	table       string
	placeholder string
	values      types.Values
	query       types.Query
	filter      types.Filter
}

// fakeBackend records every call and answers with canned results.
type fakeBackend struct {
	mu        sync.Mutex
	opened    int
	closed    int
	calls     []call
	rowID     int64
	count     int64
	execErr   error
	openErr   error
	closeErr  error
	rows      *fakeRows
	lastQuery types.Query
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{rowID: 1, count: 1}
}

func (b *fakeBackend) OpenWritable(ctx context.Context) (types.Session, error) {
	return b.open()
}

func (b *fakeBackend) OpenReadable(ctx context.Context) (types.Session, error) {
	return b.open()
}

func (b *fakeBackend) open() (types.Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.openErr != nil {
		return nil, b.openErr
	}
	b.opened++
	return &fakeSession{b: b}, nil
}

func (b *fakeBackend) Close() error { return nil }

func (b *fakeBackend) record(c call) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, c)
}

type fakeSession struct {
	b *fakeBackend
}

func (s *fakeSession) Insert(ctx context.Context, table, placeholder string, values types.Values) (int64, error) {
	s.b.record(call{op: "insert", table: table, placeholder: placeholder, values: values})
	if s.b.execErr != nil {
		return 0, s.b.execErr
	}
	return s.b.rowID, nil
}

func (s *fakeSession) Query(ctx context.Context, q types.Query) (types.RowSequence, error) {
	s.b.record(call{op: "query", table: q.Table, query: q, filter: q.Filter})
	if s.b.execErr != nil {
		return nil, s.b.execErr
	}
	if s.b.rows == nil {
		s.b.rows = &fakeRows{}
	}
	return s.b.rows, nil
}

func (s *fakeSession) Update(ctx context.Context, table string, values types.Values, filter types.Filter) (int64, error) {
	s.b.record(call{op: "update", table: table, values: values, filter: filter})
	if s.b.execErr != nil {
		return 0, s.b.execErr
	}
	return s.b.count, nil
}

func (s *fakeSession) Delete(ctx context.Context, table string, filter types.Filter) (int64, error) {
	s.b.record(call{op: "delete", table: table, filter: filter})
	if s.b.execErr != nil {
		return 0, s.b.execErr
	}
	return s.b.count, nil
}

func (s *fakeSession) Close() error {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	s.b.closed++
	return s.b.closeErr
}

type fakeRows struct {
	closed int
}

func (r *fakeRows) Columns() ([]string, error) { return nil, nil }
func (r *fakeRows) Next() bool                 { return false }
func (r *fakeRows) Scan(dest ...any) error     { return nil }
func (r *fakeRows) Err() error                 { return nil }
func (r *fakeRows) Close() error {
	r.closed++
	return nil
}

// recordingNotifier records every notified locator.
type recordingNotifier struct {
	mu       sync.Mutex
	notified []types.Locator
}

func (n *recordingNotifier) Notify(l types.Locator) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notified = append(n.notified, l)
}

// watchingNotifier also implements types.Watcher.
type watchingNotifier struct {
	recordingNotifier
	watched   []types.Locator
	cancelled int
	ch        chan types.Locator
}

func (n *watchingNotifier) Watch(l types.Locator) (<-chan types.Locator, func()) {
	n.watched = append(n.watched, l)
	n.ch = make(chan types.Locator, 1)
	return n.ch, func() { n.cancelled++ }
}
