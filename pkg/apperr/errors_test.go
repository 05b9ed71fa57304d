package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelErrorsAreDistinct(t *testing.T) {
	all := []error{
		ErrMalformedInput,
		ErrUnexpectedMessage,
		ErrUnknownContext,
		ErrCollaboratorFailure,
		ErrCollaboratorTimeout,
		ErrStaleCorrelation,
		ErrRetryExhausted,
		ErrAuthResMismatch,
		ErrNoCommonAlgorithm,
		ErrDuplicateContext,
		ErrProcedureActive,
	}

	for i, a := range all {
		for j, b := range all {
			if i != j && errors.Is(a, b) {
				t.Errorf("%v should not match %v", a, b)
			}
		}
	}
}

func TestSentinelWrapping(t *testing.T) {
	wrapped := fmt.Errorf("%w: handle=42", ErrProcedureActive)
	if !errors.Is(wrapped, ErrProcedureActive) {
		t.Error("wrapped error should match ErrProcedureActive")
	}
}
