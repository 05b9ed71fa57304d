package emm

import (
	"errors"
	"testing"

	"github.com/oyaguma3/mme-emm-core/internal/ue"
	"github.com/oyaguma3/mme-emm-core/pkg/apperr"
)

func TestNextAttachState(t *testing.T) {
	tests := []struct {
		name    string
		current ue.AttachState
		trigger AttachTrigger
		want    ue.AttachState
		wantErr bool
	}{
		{"attach start", ue.AttachUnregistered, TriggerAttachRequested, ue.AttachCommonProcedure, false},
		{"attach complete", ue.AttachCommonProcedure, TriggerAttachCompleted, ue.AttachRegistered, false},
		{"attach abort", ue.AttachCommonProcedure, TriggerAttachAborted, ue.AttachUnregistered, false},
		{"detach registered", ue.AttachRegistered, TriggerDetached, ue.AttachUnregistered, false},
		{"detach unregistered", ue.AttachUnregistered, TriggerDetached, ue.AttachUnregistered, false},
		{"re-attach registered", ue.AttachRegistered, TriggerAttachRequested, ue.AttachRegistered, true},
		{"complete without attach", ue.AttachUnregistered, TriggerAttachCompleted, ue.AttachUnregistered, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextAttachState(tt.current, tt.trigger)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, apperr.ErrUnexpectedMessage) {
				t.Errorf("err = %v, want ErrUnexpectedMessage", err)
			}
			if got != tt.want {
				t.Errorf("NextAttachState() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestValidateProcTransition(t *testing.T) {
	tests := []struct {
		from, to ue.ProcKind
		wantErr  bool
	}{
		{ue.ProcNone, ue.ProcIdentification, false},
		{ue.ProcNone, ue.ProcAuthentication, false},
		{"", ue.ProcAuthentication, false},
		{ue.ProcIdentification, ue.ProcAuthentication, false},
		{ue.ProcAuthentication, ue.ProcSecurityMode, false},
		{ue.ProcSecurityMode, ue.ProcSessionEstablishment, false},
		{ue.ProcSessionEstablishment, ue.ProcNone, false},
		{ue.ProcAuthentication, ue.ProcNone, false},
		{ue.ProcNone, ue.ProcSecurityMode, true},
		{ue.ProcIdentification, ue.ProcSessionEstablishment, true},
		{ue.ProcSessionEstablishment, ue.ProcAuthentication, true},
	}

	for _, tt := range tests {
		err := ValidateProcTransition(tt.from, tt.to)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateProcTransition(%s, %s) err = %v, wantErr %v", tt.from, tt.to, err, tt.wantErr)
		}
	}
}

func TestEventIsAnswer(t *testing.T) {
	answers := []EventKind{
		EventAuthInfoAnswer, EventUpdateLocationAnswer,
		EventCreateSessionResponse, EventDeleteSessionResponse,
	}
	for _, k := range answers {
		if !(Event{Kind: k}).IsAnswer() {
			t.Errorf("%s should be an answer", k)
		}
	}
	for _, k := range []EventKind{EventUplinkNAS, EventTimerExpiry, EventContextSetupResponse} {
		if (Event{Kind: k}).IsAnswer() {
			t.Errorf("%s should not be an answer", k)
		}
	}

	var nilAnswer *Answer
	if nilAnswer.OK() {
		t.Error("nil answer should not be OK")
	}
	if !(&Answer{}).OK() {
		t.Error("answer without error should be OK")
	}
}
