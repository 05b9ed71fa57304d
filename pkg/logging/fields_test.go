package logging

import (
	"errors"
	"log/slog"
	"testing"
)

func TestWithEventID(t *testing.T) {
	attr := WithEventID("ATTACH_SUCCESS")
	if attr.Key != FieldEventID {
		t.Errorf("Key = %q, want %q", attr.Key, FieldEventID)
	}
	if attr.Value.String() != "ATTACH_SUCCESS" {
		t.Errorf("Value = %q, want %q", attr.Value.String(), "ATTACH_SUCCESS")
	}
}

func TestWithError(t *testing.T) {
	if got := WithError(errors.New("connection failed")).Value.String(); got != "connection failed" {
		t.Errorf("Value = %q, want %q", got, "connection failed")
	}
	if got := WithError(nil).Value.String(); got != "" {
		t.Errorf("Value = %q, want empty string", got)
	}
}

func TestWithRequestIDAndRetry(t *testing.T) {
	if attr := WithRequestID("req-1"); attr.Key != FieldRequestID || attr.Value.String() != "req-1" {
		t.Errorf("WithRequestID = %v", attr)
	}
	if attr := WithRetryCount(3); attr.Key != FieldRetryCount || attr.Value.Int64() != 3 {
		t.Errorf("WithRetryCount = %v", attr)
	}
}

func TestFieldsUE(t *testing.T) {
	f := NewFields(NewMasker(true))

	t.Run("with IMSI", func(t *testing.T) {
		attrs := f.UE("EVT", 7, 9, "001010000000001")
		if len(attrs) != 4 {
			t.Fatalf("len = %d, want 4", len(attrs))
		}
		imsi := attrs[3].(slog.Attr)
		if imsi.Key != FieldIMSI || imsi.Value.String() != "00101*********1" {
			t.Errorf("imsi attr = %v", imsi)
		}
		mme := attrs[1].(slog.Attr)
		if mme.Key != FieldMMEUeID || mme.Value.Uint64() != 7 {
			t.Errorf("mme_ue_id attr = %v", mme)
		}
	})

	t.Run("without IMSI", func(t *testing.T) {
		if attrs := f.UE("EVT", 7, 9, ""); len(attrs) != 3 {
			t.Errorf("len = %d, want 3", len(attrs))
		}
	})

	t.Run("nil masker", func(t *testing.T) {
		attr := NewFields(nil).WithIMSI("001010000000001")
		if attr.Value.String() != "001010000000001" {
			t.Errorf("nil masker should not mask: %q", attr.Value.String())
		}
	})
}
