package types

import (
	"errors"
	"fmt"
)

// Config holds everything needed to build a Provider: the authority it
// answers for, backend selection, database identity, the contracts to
// register in order, and change fan-out.
type Config struct {
	Authority string               `mapstructure:"authority" yaml:"authority"`
	Backend   string               `mapstructure:"backend" yaml:"backend"`
	DataDir   string               `mapstructure:"data_dir" yaml:"data_dir,omitempty"`
	DSN       string               `mapstructure:"dsn" yaml:"dsn,omitempty"`
	Database  DatabaseConfig       `mapstructure:"database" yaml:"database"`
	Contracts []ContractDefinition `mapstructure:"contracts" yaml:"contracts"`
	Notify    NotifyConfig         `mapstructure:"notify" yaml:"notify,omitempty"`
}

// DatabaseConfig names the database and the schema version the contracts
// describe.
type DatabaseConfig struct {
	Name    string `mapstructure:"name" yaml:"name"`
	Version int    `mapstructure:"version" yaml:"version"`
}

// NotifyConfig enables Redis fan-out of change notifications when
// RedisAddr is set.
type NotifyConfig struct {
	RedisAddr string `mapstructure:"redis_addr" yaml:"redis_addr,omitempty"`
	Channel   string `mapstructure:"channel" yaml:"channel,omitempty"`
}

// ContractDefinition is the configuration form of a Contract.
type ContractDefinition struct {
	Table          string             `mapstructure:"table" yaml:"table"`
	Path           string             `mapstructure:"path" yaml:"path"`
	PrimaryKey     string             `mapstructure:"primary_key" yaml:"primary_key,omitempty"`
	Projection     map[string]string  `mapstructure:"projection" yaml:"projection,omitempty"`
	CollectionType string             `mapstructure:"collection_type" yaml:"collection_type,omitempty"`
	ItemType       string             `mapstructure:"item_type" yaml:"item_type,omitempty"`
	Columns        []ColumnDefinition `mapstructure:"columns" yaml:"columns,omitempty"`
}

// ColumnDefinition declares a table column for schema creation. The
// primary key column is implied.
type ColumnDefinition struct {
	Name string `mapstructure:"name" yaml:"name"`
	Type string `mapstructure:"type" yaml:"type"`
}

// Supported backend names.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config validation errors.
var (
	ErrAuthorityEmpty    = errors.New("authority must not be empty")
	ErrBackendEmpty      = errors.New("backend must not be empty")
	ErrBackendUnknown    = errors.New("unknown backend")
	ErrDSNEmpty          = errors.New("postgres backend requires a dsn")
	ErrVersionInvalid    = errors.New("database version must be positive")
	ErrDatabaseNameEmpty = errors.New("database name must not be empty")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite:   true,
	BackendPostgres: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure. Contract definitions are validated when the
// contracts are built.
func (c Config) Validate() error {
	if c.Authority == "" {
		return ErrAuthorityEmpty
	}
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return fmt.Errorf("%w: %q", ErrBackendUnknown, c.Backend)
	}
	if c.Backend == BackendPostgres && c.DSN == "" {
		return ErrDSNEmpty
	}
	if c.Backend == BackendSQLite && c.Database.Name == "" {
		return ErrDatabaseNameEmpty
	}
	if c.Database.Version < 1 {
		return ErrVersionInvalid
	}
	return nil
}
