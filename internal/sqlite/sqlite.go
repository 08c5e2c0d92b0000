// Package sqlite opens the SQLite execution backend. The database file
// lives in the configured data directory and is opened with the pure-Go
// modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/provider/internal/sqlbuilder"
	"github.com/mesh-intelligence/provider/internal/sqldb"
	"github.com/mesh-intelligence/provider/pkg/types"
)

// Driver is the database/sql driver name registered by modernc.org/sqlite.
const Driver = "sqlite"

// BusyTimeout is how long a connection waits on a locked database before
// failing, in milliseconds.
const BusyTimeout = 5000

// DatabasePath returns the database file path for cfg. An empty DataDir
// means the current directory.
func DatabasePath(cfg types.Config) string {
	dir := cfg.DataDir
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, cfg.Database.Name)
}

// DSN returns the modernc connection string for path.
func DSN(path string) string {
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", path, BusyTimeout)
}

// Open creates the data directory if needed, opens the database file and
// migrates it to cfg.Database.Version.
func Open(ctx context.Context, cfg types.Config, contracts []types.Contract) (*sqldb.Backend, error) {
	if cfg.Database.Name == "" {
		return nil, types.ErrDatabaseNameEmpty
	}
	path := DatabasePath(cfg)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	db, err := sql.Open(Driver, DSN(path))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}

	b := sqldb.New(db, sqlbuilder.SQLite, contracts)
	if err := b.Migrate(ctx, contracts, cfg.Database.Version); err != nil {
		b.Close()
		return nil, err
	}
	return b, nil
}
