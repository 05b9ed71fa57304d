package engine

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/oyaguma3/mme-emm-core/internal/emm"
	"github.com/oyaguma3/mme-emm-core/internal/httpclient"
	"github.com/oyaguma3/mme-emm-core/internal/mocks"
	"github.com/oyaguma3/mme-emm-core/internal/nas"
	"github.com/oyaguma3/mme-emm-core/internal/ue"
	"github.com/oyaguma3/mme-emm-core/pkg/apperr"
)

func TestSelectAlgorithms(t *testing.T) {
	tests := []struct {
		name    string
		cap     ue.Capability
		eea     []int
		eia     []int
		wantEEA uint8
		wantEIA uint8
		wantErr bool
	}{
		{"preferred", ue.Capability{EEA: 0x07, EIA: 0x06}, []int{2, 1, 0}, []int{2, 1}, 2, 2, false},
		{"no common eea", ue.Capability{EEA: 0x01, EIA: 0x02}, []int{2, 1}, []int{2, 1}, 0, 0, true},
		{"null cipher allowed", ue.Capability{EEA: 0x01, EIA: 0x02}, []int{2, 0}, []int{2, 1}, 0, 1, false},
		{"no common eia", ue.Capability{EEA: 0x07, EIA: 0x01}, []int{0}, []int{2, 1}, 0, 0, true},
		{"out of range preference", ue.Capability{EEA: 0x07, EIA: 0xff}, []int{9, 1}, []int{8, 3}, 1, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eea, eia, err := selectAlgorithms(tt.cap, tt.eea, tt.eia)
			if tt.wantErr {
				if !errors.Is(err, apperr.ErrNoCommonAlgorithm) {
					t.Errorf("ErrNoCommonAlgorithmを期待したが %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("予期しないエラー: %v", err)
			}
			if eea != tt.wantEEA || eia != tt.wantEIA {
				t.Errorf("selectAlgorithms = (%d, %d), want (%d, %d)", eea, eia, tt.wantEEA, tt.wantEIA)
			}
		})
	}
}

func TestRejectCause(t *testing.T) {
	tests := []struct {
		name string
		ans  *emm.Answer
		want emm.Cause
	}{
		{"nil answer", nil, emm.CauseNetworkFailure},
		{"not found", &emm.Answer{Err: &httpclient.APIError{StatusCode: 404}}, emm.CauseIMSIUnknownInHSS},
		{"forbidden", &emm.Answer{Err: &httpclient.APIError{StatusCode: 403}}, emm.CauseEPSServicesNotAllowed},
		{"wrapped not found", &emm.Answer{Err: apperr.NewCollaboratorError("hss", "auth-info", false, &httpclient.APIError{StatusCode: 404})}, emm.CauseIMSIUnknownInHSS},
		{"server error", &emm.Answer{Err: &httpclient.APIError{StatusCode: 500}}, emm.CauseNetworkFailure},
		{"timeout", &emm.Answer{Err: apperr.NewCollaboratorError("hss", "auth-info", true, nil)}, emm.CauseNetworkFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rejectCause(tt.ans); got != tt.want {
				t.Errorf("rejectCause = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAllocateGUTI(t *testing.T) {
	h := newHarness(t)
	hd := h.initialNew(&nas.Message{Type: nas.TypeAttachRequest, IMSI: testIMSI, Capability: testCapability})
	c := h.context(hd)

	guti, err := h.eng.allocateGUTI(c)
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	if guti != "00101-8001-01-00000001" {
		t.Errorf("GUTI = %q", guti)
	}
	if got, ok := h.store.Lookup(ue.Identity{GUTI: guti}); !ok || got.Handle != hd {
		t.Errorf("GUTIで検索できない")
	}

	next, _ := h.eng.allocateGUTI(c)
	if next == guti {
		t.Errorf("同一GUTIが再割り当てされた")
	}
	if _, ok := h.store.Lookup(ue.Identity{GUTI: guti}); ok {
		t.Errorf("旧GUTIが残っている")
	}
}

// TestAuthenticationTimerInteraction はタイマー設定・解除と再送の呼び出しを検証する
func TestAuthenticationTimerInteraction(t *testing.T) {
	ctrl := gomock.NewController(t)
	req := mocks.NewMockRequester(ctrl)
	dl := mocks.NewMockDownlink(ctrl)
	sch := mocks.NewMockScheduler(ctrl)
	codec := nas.NewCodec()
	store := ue.NewStore()
	eng := NewEngine(store, req, dl, sch, codec, nil, testConfig())

	attach, err := codec.Encode(&nas.Message{Type: nas.TypeAttachRequest, IMSI: testIMSI, Capability: testCapability})
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}

	req.EXPECT().RequestAuthInfo(ue.Handle(1), testIMSI, "00101").Return("req-1")
	eng.Handle(emm.Event{Kind: emm.EventInitialUEMessage, Radio: ue.RadioRef{AssocID: 1, EnbUeID: 7}, PLMN: "00101", NAS: attach})

	c, ok := store.Get(1)
	if !ok {
		t.Fatal("コンテキストが生成されていない")
	}
	if c.PendingRequest != "req-1" {
		t.Errorf("PendingRequest = %q", c.PendingRequest)
	}

	var authReq []byte
	gomock.InOrder(
		dl.EXPECT().SendNAS(ue.RadioRef{AssocID: 1, EnbUeID: 7}, ue.Handle(1), gomock.Any()).
			DoAndReturn(func(_ ue.RadioRef, _ ue.Handle, b []byte) error {
				authReq = b
				return nil
			}),
		sch.EXPECT().Arm(ue.Handle(1), 6*time.Second).Return(ue.TimerID(7)),
	)
	eng.Handle(emm.Event{Kind: emm.EventAuthInfoAnswer, Handle: 1, RequestID: "req-1", Answer: &emm.Answer{Vector: testVector}})

	if c.Proc.TimerID != 7 {
		t.Errorf("TimerID = %d, want 7", c.Proc.TimerID)
	}
	msg, err := codec.Decode(authReq)
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	if msg.Type != nas.TypeAuthenticationRequest || msg.KSI != 1 {
		t.Errorf("AUTHENTICATION REQUESTが不正: %+v", msg)
	}

	// 満了すると同一メッセージを再送する
	gomock.InOrder(
		dl.EXPECT().SendNAS(gomock.Any(), ue.Handle(1), gomock.Any()).
			DoAndReturn(func(_ ue.RadioRef, _ ue.Handle, b []byte) error {
				if string(b) != string(authReq) {
					t.Errorf("再送内容が異なる")
				}
				return nil
			}),
		sch.EXPECT().Arm(ue.Handle(1), 6*time.Second).Return(ue.TimerID(8)),
	)
	eng.Handle(emm.Event{Kind: emm.EventTimerExpiry, Handle: 1, TimerID: 7})
	if c.Proc.Retries != 1 {
		t.Errorf("Retries = %d, want 1", c.Proc.Retries)
	}

	// 解除済みタイマーの満了は無視される
	eng.Handle(emm.Event{Kind: emm.EventTimerExpiry, Handle: 1, TimerID: 7})

	res, _ := codec.Encode(&nas.Message{Type: nas.TypeAuthenticationResponse, RES: testVector.XRES})
	gomock.InOrder(
		sch.EXPECT().Cancel(ue.TimerID(8)),
		dl.EXPECT().SendNAS(gomock.Any(), ue.Handle(1), gomock.Any()).Return(nil),
		sch.EXPECT().Arm(ue.Handle(1), 6*time.Second).Return(ue.TimerID(9)),
	)
	eng.Handle(emm.Event{Kind: emm.EventUplinkNAS, Handle: 1, NAS: res})

	if c.Proc.Kind != ue.ProcSecurityMode || c.Proc.Retries != 0 {
		t.Errorf("Proc = %+v", c.Proc)
	}
}

func TestReleaseCommandSentOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	req := mocks.NewMockRequester(ctrl)
	dl := mocks.NewMockDownlink(ctrl)
	sch := mocks.NewMockScheduler(ctrl)
	store := ue.NewStore()
	eng := NewEngine(store, req, dl, sch, nas.NewCodec(), nil, testConfig())

	c, err := store.Create(ue.Identity{}, ue.RadioRef{AssocID: 2, EnbUeID: 3})
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}

	dl.EXPECT().RequestContextRelease(ue.RadioRef{AssocID: 2, EnbUeID: 3}, c.Handle, emm.ReleaseRadioConnectionErr).
		Return(nil).Times(1)

	eng.Handle(emm.Event{Kind: emm.EventContextReleaseRequest, Handle: c.Handle, RadioCause: "radio-connection-with-ue-lost"})
	eng.Handle(emm.Event{Kind: emm.EventContextReleaseRequest, Handle: c.Handle})

	if !c.ReleasePending || !c.ReleaseCommanded {
		t.Errorf("解放状態が不正: pending=%v commanded=%v", c.ReleasePending, c.ReleaseCommanded)
	}

	eng.Handle(emm.Event{Kind: emm.EventContextReleaseComplete, Handle: c.Handle})
	if store.Len() != 0 {
		t.Errorf("コンテキストが破棄されていない")
	}
	if s := eng.Snapshot(); s != (ue.Snapshot{}) {
		t.Errorf("Snapshot = %+v", s)
	}
}

func TestUECapabilityInfo(t *testing.T) {
	h := newHarness(t)
	hd := h.initialNew(&nas.Message{Type: nas.TypeAttachRequest, IMSI: testIMSI, Capability: testCapability})

	h.eng.Handle(emm.Event{Kind: emm.EventUECapabilityInfo, Handle: hd, RadioCap: make([]byte, 40)})
	if got := h.context(hd).RadioCapSize; got != 40 {
		t.Errorf("RadioCapSize = %d, want 40", got)
	}
}
