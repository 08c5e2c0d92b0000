// Package postgres opens the Postgres execution backend through lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/mesh-intelligence/provider/internal/sqlbuilder"
	"github.com/mesh-intelligence/provider/internal/sqldb"
	"github.com/mesh-intelligence/provider/pkg/types"
)

// Driver is the database/sql driver name registered by lib/pq.
const Driver = "postgres"

// Open connects to cfg.DSN and migrates the database to
// cfg.Database.Version.
func Open(ctx context.Context, cfg types.Config, contracts []types.Contract) (*sqldb.Backend, error) {
	if cfg.DSN == "" {
		return nil, types.ErrDSNEmpty
	}
	db, err := sql.Open(Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return attach(ctx, db, contracts, cfg.Database.Version)
}

// attach verifies the connection and migrates the schema. db is closed on
// failure.
func attach(ctx context.Context, db *sql.DB, contracts []types.Contract, version int) (*sqldb.Backend, error) {
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect database: %w", err)
	}
	b := sqldb.New(db, sqlbuilder.Postgres, contracts)
	if err := b.Migrate(ctx, contracts, version); err != nil {
		b.Close()
		return nil, err
	}
	return b, nil
}
