package store

import (
	"errors"
	"fmt"
	"strings"
)

// OpenErrorCode categorizes open failures.
type OpenErrorCode string

const (
	// CodeIncompatibleSchema indicates the on-disk schema diverges from
	// the declared schema (or a read-only store lacks a declared table).
	// Not recoverable for this open attempt; the caller must reconcile
	// externally.
	CodeIncompatibleSchema OpenErrorCode = "INCOMPATIBLE_SCHEMA"

	// CodeUnknown wraps lower-level I/O failures during open.
	CodeUnknown OpenErrorCode = "UNKNOWN"
)

// OpenError reports why a store could not be opened.
type OpenError struct {
	Code    OpenErrorCode
	Message string
	Table   string // the offending table for CodeIncompatibleSchema
	Err     error
}

// Error implements the error interface.
func (e *OpenError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("%s: %s (table=%s)", e.Code, e.Message, e.Table)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause, if any.
func (e *OpenError) Unwrap() error { return e.Err }

// IsIncompatibleSchema reports whether err is an incompatible-schema open
// failure.
func IsIncompatibleSchema(err error) bool {
	var oe *OpenError
	return errors.As(err, &oe) && oe.Code == CodeIncompatibleSchema
}

func incompatible(table, format string, args ...any) *OpenError {
	return &OpenError{
		Code:    CodeIncompatibleSchema,
		Message: fmt.Sprintf(format, args...),
		Table:   table,
	}
}

func unknownOpen(err error) *OpenError {
	return &OpenError{Code: CodeUnknown, Message: err.Error(), Err: err}
}

// InsufficientValuesError reports an insert whose value set leaves
// required properties unassigned. Recoverable: assign the missing
// properties and retry.
type InsufficientValuesError struct {
	Model   string
	Missing []string
}

// Error implements the error interface.
func (e *InsufficientValuesError) Error() string {
	return fmt.Sprintf("insert %s: missing required properties: %s",
		e.Model, strings.Join(e.Missing, ", "))
}

// ErrClosed is returned by operations submitted after Close.
var ErrClosed = errors.New("store: closed")

// ErrReadOnly is returned by mutations on a read-only store.
var ErrReadOnly = errors.New("store: read-only")

// ErrNotFound is returned by FetchByID when no row has the id.
var ErrNotFound = errors.New("store: not found")
