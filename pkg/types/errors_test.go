package types

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypedErrors(t *testing.T) {
	l := MustParseLocator("content://a/notes/1")

	var err error = &UnknownResourceError{Locator: l}
	assert.True(t, errors.Is(err, ErrUnknownResource))
	assert.False(t, errors.Is(err, ErrInsertFailed))
	assert.Contains(t, err.Error(), "content://a/notes/1")

	err = &InsertFailedError{Locator: l}
	assert.True(t, errors.Is(err, ErrInsertFailed))

	err = &BackendError{Op: "delete", Table: "notes", Err: sql.ErrConnDone}
	assert.True(t, errors.Is(err, sql.ErrConnDone))
	assert.Equal(t, "delete notes: "+sql.ErrConnDone.Error(), err.Error())

	var be *BackendError
	assert.True(t, errors.As(err, &be))
	assert.Equal(t, "notes", be.Table)
}
