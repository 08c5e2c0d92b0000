package types

import (
	"errors"
	"fmt"
)

// Routing errors.
var (
	ErrUnknownResource = errors.New("unknown resource")
	ErrInsertFailed    = errors.New("insert failed")
	ErrInvalidLocator  = errors.New("invalid locator")
)

// Contract and statement errors.
var (
	ErrInvalidContract   = errors.New("invalid contract")
	ErrDuplicateTable    = errors.New("table registered twice")
	ErrInvalidColumn     = errors.New("invalid column")
	ErrInvalidIdentifier = errors.New("invalid identifier")
	ErrEmptyValues       = errors.New("empty values")
	ErrSchemaDowngrade   = errors.New("database version is newer than configured")
)

// UnknownResourceError reports a locator no registered contract matches.
// It indicates misconfiguration or a malformed locator and is never
// retried.
type UnknownResourceError struct {
	Locator Locator
}

func (e *UnknownResourceError) Error() string {
	return fmt.Sprintf("unknown resource: %s", e.Locator)
}

// Is matches ErrUnknownResource.
func (e *UnknownResourceError) Is(target error) bool {
	return target == ErrUnknownResource
}

// InsertFailedError reports a non-positive row id returned by the backend
// on insert.
type InsertFailedError struct {
	Locator Locator
}

func (e *InsertFailedError) Error() string {
	return fmt.Sprintf("failed to insert row into %s", e.Locator)
}

// Is matches ErrInsertFailed.
func (e *InsertFailedError) Is(target error) bool {
	return target == ErrInsertFailed
}

// BackendError carries a failure raised by the execution backend. The
// router does not inspect Err; errors.Is and errors.As see through to it.
type BackendError struct {
	Op    string
	Table string
	Err   error
}

func (e *BackendError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Table, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}
