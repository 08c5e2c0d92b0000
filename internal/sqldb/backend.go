// Package sqldb implements the execution backend over database/sql. It
// serializes writers, runs the statements rendered by sqlbuilder, and
// creates and versions the contract tables.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/provider/internal/logger"
	"github.com/mesh-intelligence/provider/internal/sqlbuilder"
	"github.com/mesh-intelligence/provider/pkg/contract"
	"github.com/mesh-intelligence/provider/pkg/types"
)

// Session errors.
var (
	ErrReadOnlySession = errors.New("session is read-only")
	ErrSessionClosed   = errors.New("session is closed")
	ErrBackendClosed   = errors.New("backend is closed")
)

// Backend implements types.Backend. Only one writable session is open at a
// time; readable sessions are not limited.
type Backend struct {
	db          *sql.DB
	dialect     sqlbuilder.Dialect
	primaryKeys map[string]string
	writer      chan struct{}

	mu     sync.RWMutex
	closed bool
}

var _ types.Backend = (*Backend)(nil)

// New returns a backend running dialect statements on db. contracts supply
// the primary key of each table for dialects that return inserted ids.
func New(db *sql.DB, dialect sqlbuilder.Dialect, contracts []types.Contract) *Backend {
	pks := make(map[string]string, len(contracts))
	for _, c := range contracts {
		pks[c.TableName()] = c.PrimaryKey()
	}
	return &Backend{
		db:          db,
		dialect:     dialect,
		primaryKeys: pks,
		writer:      make(chan struct{}, 1),
	}
}

// DB returns the underlying database handle.
func (b *Backend) DB() *sql.DB {
	return b.db
}

// Dialect returns the backend's SQL dialect.
func (b *Backend) Dialect() sqlbuilder.Dialect {
	return b.dialect
}

// OpenWritable waits for the writer slot and returns a session holding it
// until Close. It returns ctx.Err() if ctx ends first.
func (b *Backend) OpenWritable(ctx context.Context) (types.Session, error) {
	if err := b.checkOpen(); err != nil {
		return nil, err
	}
	select {
	case b.writer <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &session{b: b, writable: true}, nil
}

// OpenReadable returns a session for queries.
func (b *Backend) OpenReadable(ctx context.Context) (types.Session, error) {
	if err := b.checkOpen(); err != nil {
		return nil, err
	}
	return &session{b: b}, nil
}

func (b *Backend) checkOpen() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBackendClosed
	}
	return nil
}

// Close closes the database. It is idempotent.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.db.Close()
}

func (b *Backend) primaryKey(table string) string {
	if pk, ok := b.primaryKeys[table]; ok {
		return pk
	}
	return types.DefaultPrimaryKey
}

// session implements types.Session on the backend's pool.
type session struct {
	b        *Backend
	writable bool
	once     sync.Once
	closed   bool
}

func trace(ctx context.Context, stmt string, args []any) {
	logger.FromContext(ctx).WithFields(logrus.Fields{"sql": stmt, "args": len(args)}).Trace("exec")
}

func (s *session) checkWrite() error {
	if s.closed {
		return ErrSessionClosed
	}
	if !s.writable {
		return ErrReadOnlySession
	}
	return nil
}

func (s *session) Insert(ctx context.Context, table, placeholder string, values types.Values) (int64, error) {
	if err := s.checkWrite(); err != nil {
		return 0, err
	}
	d := s.b.dialect
	stmt, args, err := d.Insert(table, s.b.primaryKey(table), placeholder, values)
	if err != nil {
		return 0, err
	}
	trace(ctx, stmt, args)

	if d.Returning() {
		var id int64
		if err := s.b.db.QueryRowContext(ctx, stmt, args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}
	res, err := s.b.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *session) Query(ctx context.Context, q types.Query) (types.RowSequence, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	stmt, args, err := s.b.dialect.Select(q)
	if err != nil {
		return nil, err
	}
	trace(ctx, stmt, args)
	rows, err := s.b.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *session) Update(ctx context.Context, table string, values types.Values, filter types.Filter) (int64, error) {
	if err := s.checkWrite(); err != nil {
		return 0, err
	}
	stmt, args, err := s.b.dialect.Update(table, values, filter)
	if err != nil {
		return 0, err
	}
	return s.exec(ctx, stmt, args)
}

func (s *session) Delete(ctx context.Context, table string, filter types.Filter) (int64, error) {
	if err := s.checkWrite(); err != nil {
		return 0, err
	}
	stmt, args, err := s.b.dialect.Delete(table, filter)
	if err != nil {
		return 0, err
	}
	return s.exec(ctx, stmt, args)
}

func (s *session) exec(ctx context.Context, stmt string, args []any) (int64, error) {
	trace(ctx, stmt, args)
	res, err := s.b.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Close releases the writer slot of a writable session. It is idempotent.
func (s *session) Close() error {
	s.once.Do(func() {
		s.closed = true
		if s.writable {
			<-s.b.writer
		}
	})
	return nil
}

// Migrate brings the schema to version. A database at a higher version is
// rejected with ErrSchemaDowngrade; one at a lower version gets every
// contract table created if missing and the new version recorded, in one
// transaction. Contracts that do not declare columns are skipped.
func (b *Backend) Migrate(ctx context.Context, contracts []types.Contract, version int) error {
	for _, stmt := range b.dialect.VersionSetup() {
		if _, err := b.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("prepare schema version: %w", err)
		}
	}

	var current int
	if err := b.db.QueryRowContext(ctx, b.dialect.VersionQuery()).Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if current > version {
		return fmt.Errorf("%w: stored %d, configured %d", types.ErrSchemaDowngrade, current, version)
	}
	if current == version {
		return nil
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer tx.Rollback()

	for _, c := range contracts {
		s, ok := c.(contract.Schema)
		if !ok || len(s.Columns()) == 0 {
			continue
		}
		ddl, err := b.dialect.CreateTable(s)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("create table %s: %w", s.TableName(), err)
		}
	}
	for _, stmt := range b.dialect.VersionUpdate(version) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration: %w", err)
	}
	logger.FromContext(ctx).WithFields(logrus.Fields{"from": current, "to": version}).Info("schema migrated")
	return nil
}
