package errorsx

import (
	"errors"
	"fmt"
	"testing"
)

func TestScanError_Error(t *testing.T) {
	err := ConfigErrorf(CodeCyclicVirtualColumn, "virtual column %q", "vc")
	expected := `[CONFIG:CYCLIC_VIRTUAL_COLUMN] virtual column "vc"`
	if err.Error() != expected {
		t.Errorf("got %q, want %q", err.Error(), expected)
	}
}

func TestScanError_ErrorWithCause(t *testing.T) {
	cause := fmt.Errorf("column already closed")
	err := WrapExecutionErrorf(CodeCloseFailed, cause, "closer failed")
	expected := "[EXECUTION:CLOSE_FAILED] closer failed: column already closed"
	if err.Error() != expected {
		t.Errorf("got %q, want %q", err.Error(), expected)
	}
}

func TestScanError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := WrapExecutionErrorf(CodeCloseFailed, cause, "closer failed")
	if !errors.Is(err, cause) {
		t.Error("Unwrap should allow errors.Is to find the cause")
	}
}

func TestScanError_Is(t *testing.T) {
	err1 := ExecutionErrorf(CodeNotVectorizable, "first")
	err2 := ExecutionErrorf(CodeNotVectorizable, "second")
	err3 := ExecutionErrorf(CodeUnmatchableFilter, "different code")

	if !errors.Is(err1, err2) {
		t.Error("errors with same category+code should match via Is")
	}
	if errors.Is(err1, err3) {
		t.Error("errors with different codes should not match via Is")
	}
}

func TestIs(t *testing.T) {
	err := DataErrorf(CodeTypeMismatch, "expected long, got string")
	if !Is(err, CategoryData, CodeTypeMismatch) {
		t.Error("Is should match category and code")
	}
	if Is(err, CategoryExecution, CodeTypeMismatch) {
		t.Error("Is should not match a different category")
	}
}

func TestInvariantViolation_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected InvariantViolation to panic")
		}
	}()
	InvariantViolation("offset %d out of bounds", -1)
}
