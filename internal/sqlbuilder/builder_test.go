package sqlbuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/provider/pkg/contract"
	"github.com/mesh-intelligence/provider/pkg/types"
)

var projection = map[string]string{
	"_id":   "_id",
	"title": "title",
	"shout": "upper(title)",
}

func TestColumns(t *testing.T) {
	tests := []struct {
		name       string
		columns    []string
		projection map[string]string
		want       string
		wantErr    error
	}{
		{"all projection entries sorted", nil, projection, "_id, upper(title) AS shout, title", nil},
		{"requested alias rewritten", []string{"shout", "_id"}, projection, "upper(title) AS shout, _id", nil},
		{"unknown alias rejected", []string{"password"}, projection, "", types.ErrInvalidColumn},
		{"injection rejected", []string{"title; DROP TABLE notes"}, projection, "", types.ErrInvalidColumn},
		{"no projection selects star", nil, nil, "*", nil},
		{"no projection quotes columns", []string{"a", "b"}, nil, `"a", "b"`, nil},
		{"no projection validates columns", []string{"a b"}, nil, "", types.ErrInvalidIdentifier},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Columns(tt.columns, tt.projection)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelect(t *testing.T) {
	q := types.Query{
		Table:      "notes",
		Columns:    []string{"title"},
		Projection: projection,
		Filter:     types.Filter{Where: "(status = ?) AND (_id = 4)", Args: []any{"open"}},
		SortOrder:  "title DESC",
	}

	got, args, err := SQLite.Select(q)
	require.NoError(t, err)
	assert.Equal(t, `SELECT title FROM "notes" WHERE (status = ?) AND (_id = 4) ORDER BY title DESC`, got)
	assert.Equal(t, []any{"open"}, args)

	got, _, err = Postgres.Select(q)
	require.NoError(t, err)
	assert.Equal(t, `SELECT title FROM "notes" WHERE (status = $1) AND (_id = 4) ORDER BY title DESC`, got)
}

func TestSelectWithoutFilter(t *testing.T) {
	got, args, err := SQLite.Select(types.Query{Table: "notes", Projection: map[string]string{"_id": "_id"}})
	require.NoError(t, err)
	assert.Equal(t, `SELECT _id FROM "notes"`, got)
	assert.Empty(t, args)
}

func TestInsert(t *testing.T) {
	values := types.Values{"title": "a", "body": "b"}

	got, args, err := SQLite.Insert("notes", "_id", "", values)
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "notes" ("body", "title") VALUES (?, ?)`, got)
	assert.Equal(t, []any{"b", "a"}, args)

	got, args, err = Postgres.Insert("notes", "_id", "", values)
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "notes" ("body", "title") VALUES ($1, $2) RETURNING "_id"`, got)
	assert.Equal(t, []any{"b", "a"}, args)
}

func TestInsertEmptyValues(t *testing.T) {
	got, args, err := SQLite.Insert("notes", "_id", "_id", types.Values{})
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "notes" ("_id") VALUES (NULL)`, got)
	assert.Empty(t, args)

	got, _, err = Postgres.Insert("notes", "_id", "_id", nil)
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "notes" DEFAULT VALUES RETURNING "_id"`, got)

	_, _, err = SQLite.Insert("notes", "_id", "", nil)
	assert.ErrorIs(t, err, types.ErrEmptyValues)
}

func TestInsertRejectsBadIdentifiers(t *testing.T) {
	_, _, err := SQLite.Insert("notes", "_id", "", types.Values{`title") VALUES (1); --`: "x"})
	assert.ErrorIs(t, err, types.ErrInvalidIdentifier)

	_, _, err = SQLite.Insert("no tes", "_id", "", types.Values{"a": 1})
	assert.ErrorIs(t, err, types.ErrInvalidIdentifier)
}

func TestUpdate(t *testing.T) {
	values := types.Values{"title": "new", "body": "text"}
	filter := types.Filter{Where: "status = ? AND owner = ?", Args: []any{"open", "ann"}}

	got, args, err := SQLite.Update("notes", values, filter)
	require.NoError(t, err)
	assert.Equal(t, `UPDATE "notes" SET "body" = ?, "title" = ? WHERE status = ? AND owner = ?`, got)
	assert.Equal(t, []any{"text", "new", "open", "ann"}, args)

	got, args, err = Postgres.Update("notes", values, filter)
	require.NoError(t, err)
	assert.Equal(t, `UPDATE "notes" SET "body" = $1, "title" = $2 WHERE status = $3 AND owner = $4`, got)
	assert.Equal(t, []any{"text", "new", "open", "ann"}, args)

	_, _, err = SQLite.Update("notes", types.Values{}, filter)
	assert.ErrorIs(t, err, types.ErrEmptyValues)
}

func TestDelete(t *testing.T) {
	got, args, err := Postgres.Delete("notes", types.Filter{Where: "(a = ?) AND (_id = 3)", Args: []any{1}})
	require.NoError(t, err)
	assert.Equal(t, `DELETE FROM "notes" WHERE (a = $1) AND (_id = 3)`, got)
	assert.Equal(t, []any{1}, args)

	got, args, err = SQLite.Delete("notes", types.Filter{})
	require.NoError(t, err)
	assert.Equal(t, `DELETE FROM "notes"`, got)
	assert.Empty(t, args)
}

func TestRebindSkipsQuotedMarkers(t *testing.T) {
	got, n := Postgres.Rebind(`title = '?' AND "we?rd" = ? AND body = ?`, 2)
	assert.Equal(t, `title = '?' AND "we?rd" = $3 AND body = $4`, got)
	assert.Equal(t, 2, n)

	got, n = SQLite.Rebind("a = ? AND b = ?", 0)
	assert.Equal(t, "a = ? AND b = ?", got)
	assert.Equal(t, 2, n)
}

func TestCreateTable(t *testing.T) {
	c := contract.MustNew(types.ContractDefinition{
		Table: "notes",
		Path:  "notes",
		Columns: []types.ColumnDefinition{
			{Name: "title", Type: "TEXT NOT NULL"},
			{Name: "done", Type: "INTEGER DEFAULT 0"},
		},
	})
	s := c.(contract.Schema)

	got, err := SQLite.CreateTable(s)
	require.NoError(t, err)
	assert.Equal(t, `CREATE TABLE IF NOT EXISTS "notes" ("_id" INTEGER PRIMARY KEY AUTOINCREMENT, "title" TEXT NOT NULL, "done" INTEGER DEFAULT 0)`, got)

	got, err = Postgres.CreateTable(s)
	require.NoError(t, err)
	assert.Equal(t, `CREATE TABLE IF NOT EXISTS "notes" ("_id" BIGSERIAL PRIMARY KEY, "title" TEXT NOT NULL, "done" INTEGER DEFAULT 0)`, got)
}
