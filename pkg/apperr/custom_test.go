package apperr

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestCollaboratorError(t *testing.T) {
	t.Run("Failure classification", func(t *testing.T) {
		err := NewCollaboratorError("hss", "auth-info", false, errors.New("status 500"))
		if !errors.Is(err, ErrCollaboratorFailure) {
			t.Error("should match ErrCollaboratorFailure")
		}
		if errors.Is(err, ErrCollaboratorTimeout) {
			t.Error("should not match ErrCollaboratorTimeout")
		}
		if IsTimeout(err) {
			t.Error("IsTimeout() should be false")
		}
	})

	t.Run("Timeout classification", func(t *testing.T) {
		err := NewCollaboratorError("gateway", "create-session", true, context.DeadlineExceeded)
		if !IsTimeout(err) {
			t.Error("IsTimeout() should be true")
		}
		if errors.Is(err, ErrCollaboratorFailure) {
			t.Error("should not match ErrCollaboratorFailure")
		}
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Error("should unwrap to context.DeadlineExceeded")
		}
	})

	t.Run("Error message format", func(t *testing.T) {
		err := NewCollaboratorError("hss", "update-location", true, nil)
		got := err.Error()
		if !strings.Contains(got, "collaborator timeout") {
			t.Errorf("error message should contain 'collaborator timeout': %s", got)
		}
		if !strings.Contains(got, "operation=update-location") {
			t.Errorf("error message should contain operation: %s", got)
		}
		if strings.Contains(got, "cause=") {
			t.Errorf("error message should not contain cause: %s", got)
		}
	})
}

func TestProtocolError(t *testing.T) {
	err := NewProtocolError("imsi", "must be 15 digits")
	if !errors.Is(err, ErrMalformedInput) {
		t.Error("ProtocolError should match ErrMalformedInput")
	}

	got := err.Error()
	if !strings.Contains(got, "field=imsi") {
		t.Errorf("error message should contain 'field=imsi': %s", got)
	}

	var pe *ProtocolError
	if !errors.As(error(err), &pe) || pe.Message != "must be 15 digits" {
		t.Errorf("errors.As failed or Message mismatch: %+v", pe)
	}
}
