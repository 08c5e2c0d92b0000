package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/provider/pkg/contract"
	"github.com/mesh-intelligence/provider/pkg/types"
)

func TestOpenRequiresDSN(t *testing.T) {
	_, err := Open(context.Background(), types.Config{Backend: types.BackendPostgres}, nil)
	assert.ErrorIs(t, err, types.ErrDSNEmpty)
}

func TestAttach(t *testing.T) {
	contracts := []types.Contract{contract.MustNew(types.ContractDefinition{
		Table:   "notes",
		Path:    "notes",
		Columns: []types.ColumnDefinition{{Name: "title", Type: "TEXT"}},
	})}

	tests := []struct {
		name    string
		setup   func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "fresh database is migrated",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectPing()
				mock.ExpectExec(`CREATE TABLE IF NOT EXISTS "_schema_version_" (version INTEGER NOT NULL)`).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery(`SELECT COALESCE(MAX(version), 0) FROM "_schema_version_"`).
					WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(0))
				mock.ExpectBegin()
				mock.ExpectExec(`CREATE TABLE IF NOT EXISTS "notes" ("_id" BIGSERIAL PRIMARY KEY, "title" TEXT)`).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec(`DELETE FROM "_schema_version_"`).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec(`INSERT INTO "_schema_version_" (version) VALUES (1)`).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "unreachable server",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectPing().WillReturnError(errors.New("connection refused"))
				mock.ExpectClose()
			},
			wantErr: errors.New("connect database: connection refused"),
		},
		{
			name: "newer schema is rejected",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectPing()
				mock.ExpectExec(`CREATE TABLE IF NOT EXISTS "_schema_version_" (version INTEGER NOT NULL)`).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery(`SELECT COALESCE(MAX(version), 0) FROM "_schema_version_"`).
					WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(7))
				mock.ExpectClose()
			},
			wantErr: types.ErrSchemaDowngrade,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New(
				sqlmock.MonitorPingsOption(true),
				sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual),
			)
			require.NoError(t, err)
			tt.setup(mock)

			b, err := attach(context.Background(), db, contracts, 1)
			switch {
			case tt.wantErr == nil:
				require.NoError(t, err)
				assert.NotNil(t, b)
			case errors.Is(tt.wantErr, types.ErrSchemaDowngrade):
				assert.ErrorIs(t, err, tt.wantErr)
			default:
				assert.EqualError(t, err, tt.wantErr.Error())
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
