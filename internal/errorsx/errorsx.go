// Package errorsx provides the structured error taxonomy used across the
// segment scan engine. Every error carries a category, a code, and an
// optional cause, so callers can branch with errors.Is/errors.As instead of
// string matching.
package errorsx

import (
	"errors"
	"fmt"
)

// Category classifies an error by the layer of the engine that raised it.
type Category string

const (
	CategoryConfig    Category = "CONFIG"
	CategoryExecution Category = "EXECUTION"
	CategoryData      Category = "DATA"
)

// Error codes, one per row of the error taxonomy table.
const (
	CodeUnsupportedOrdering = "UNSUPPORTED_ORDERING"
	CodeCyclicVirtualColumn = "CYCLIC_VIRTUAL_COLUMN"
	CodeNotVectorizable     = "NOT_VECTORIZABLE"
	CodeUnmatchableFilter   = "UNMATCHABLE_FILTER"
	CodeInterrupted         = "INTERRUPTED"
	CodeCloseFailed         = "CLOSE_FAILED"
	CodeTypeMismatch        = "TYPE_MISMATCH"
)

// ScanError is the structured error type returned by the engine.
type ScanError struct {
	Category Category
	Code     string
	Message  string
	Cause    error
}

func (e *ScanError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap exposes the cause for errors.Is/errors.As.
func (e *ScanError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a ScanError with the same category and code.
func (e *ScanError) Is(target error) bool {
	var t *ScanError
	if errors.As(target, &t) {
		return e.Category == t.Category && e.Code == t.Code
	}
	return false
}

func newf(category Category, code, format string, args ...any) *ScanError {
	return &ScanError{Category: category, Code: code, Message: fmt.Sprintf(format, args...)}
}

func wrapf(category Category, code string, cause error, format string, args ...any) *ScanError {
	return &ScanError{Category: category, Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// ConfigErrorf builds a ScanError for a malformed CursorBuildSpec or
// virtual-column graph.
func ConfigErrorf(code, format string, args ...any) *ScanError {
	return newf(CategoryConfig, code, format, args...)
}

// ExecutionErrorf builds a ScanError raised while a cursor or holder is
// running.
func ExecutionErrorf(code, format string, args ...any) *ScanError {
	return newf(CategoryExecution, code, format, args...)
}

// WrapExecutionErrorf is ExecutionErrorf with an underlying cause, used for
// CodeCloseFailed where secondary closer failures are coalesced into one.
func WrapExecutionErrorf(code string, cause error, format string, args ...any) *ScanError {
	return wrapf(CategoryExecution, code, cause, format, args...)
}

// DataErrorf builds a ScanError for a selector/type mismatch
// (a type mismatch between declared and actual column data).
func DataErrorf(code, format string, args ...any) *ScanError {
	return newf(CategoryData, code, format, args...)
}

// InvariantViolation panics with a formatted message: an offset out of
// bounds or similar internal consistency failure is a bug in the engine
// itself, not in caller input, so it is never returned as an error.
func InvariantViolation(format string, args ...any) {
	panic(fmt.Sprintf("invariant violation: "+format, args...))
}

// Is reports whether err is a ScanError of the given category and code.
func Is(err error, category Category, code string) bool {
	var se *ScanError
	if errors.As(err, &se) {
		return se.Category == category && se.Code == code
	}
	return false
}
