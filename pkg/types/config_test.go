package types

import (
	"errors"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	valid := Config{
		Authority: "com.example.notes",
		Backend:   BackendSQLite,
		DataDir:   "/tmp/data",
		Database:  DatabaseConfig{Name: "notes.db", Version: 1},
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{
			name:    "valid sqlite config",
			mutate:  func(c *Config) {},
			wantErr: nil,
		},
		{
			name:    "empty authority returns ErrAuthorityEmpty",
			mutate:  func(c *Config) { c.Authority = "" },
			wantErr: ErrAuthorityEmpty,
		},
		{
			name:    "empty backend returns ErrBackendEmpty",
			mutate:  func(c *Config) { c.Backend = "" },
			wantErr: ErrBackendEmpty,
		},
		{
			name:    "unknown backend returns ErrBackendUnknown",
			mutate:  func(c *Config) { c.Backend = "mysql" },
			wantErr: ErrBackendUnknown,
		},
		{
			name:    "postgres without dsn returns ErrDSNEmpty",
			mutate:  func(c *Config) { c.Backend = BackendPostgres },
			wantErr: ErrDSNEmpty,
		},
		{
			name: "postgres with dsn is valid without database name",
			mutate: func(c *Config) {
				c.Backend = BackendPostgres
				c.DSN = "postgres://localhost/notes"
				c.Database.Name = ""
			},
			wantErr: nil,
		},
		{
			name:    "sqlite without database name returns ErrDatabaseNameEmpty",
			mutate:  func(c *Config) { c.Database.Name = "" },
			wantErr: ErrDatabaseNameEmpty,
		},
		{
			name:    "zero version returns ErrVersionInvalid",
			mutate:  func(c *Config) { c.Database.Version = 0 },
			wantErr: ErrVersionInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error %v, got nil", tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}
