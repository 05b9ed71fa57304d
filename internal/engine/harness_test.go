package engine

import (
	"fmt"
	"testing"
	"time"

	"github.com/oyaguma3/mme-emm-core/internal/config"
	"github.com/oyaguma3/mme-emm-core/internal/coordinator"
	"github.com/oyaguma3/mme-emm-core/internal/emm"
	"github.com/oyaguma3/mme-emm-core/internal/nas"
	"github.com/oyaguma3/mme-emm-core/internal/ue"
)

const (
	testIMSI = "001010000000001"
	testGUTI = "00101-8001-01-deadbeef"
)

var (
	testCapability = &nas.Capability{EEA: 0x07, EIA: 0x06}
	testVector     = &ue.AuthVector{
		RAND:  []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10},
		AUTN:  []byte{0x11, 0x12, 0x13, 0x14, 0x15, 0x16, 0x17, 0x18, 0x19, 0x1a, 0x1b, 0x1c, 0x1d, 0x1e, 0x1f, 0x20},
		XRES:  []byte{0xa1, 0xa2, 0xa3, 0xa4, 0xa5, 0xa6, 0xa7, 0xa8},
		KASME: make([]byte, 32),
	}
)

func testConfig() *config.Config {
	return &config.Config{
		PLMN:                "00101",
		GroupID:             0x8001,
		Code:                1,
		T3450:               6 * time.Second,
		T3460:               6 * time.Second,
		T3470:               6 * time.Second,
		NASRetxLimit:        5,
		ContextSetupTimeout: 2 * time.Second,
		DefaultAPN:          "internet",
		PreferredEIA:        []int{2, 1},
		PreferredEEA:        []int{0, 2, 1},
		LogMaskIMSI:         true,
	}
}

// fakeDownlink は送信内容を記録する無線側
type fakeDownlink struct {
	codec    nas.Codec
	sent     map[ue.Handle][]*nas.Message
	setups   map[ue.Handle]int
	releases map[ue.Handle][]emm.ReleaseCause
}

func newFakeDownlink() *fakeDownlink {
	return &fakeDownlink{
		codec:    nas.NewCodec(),
		sent:     make(map[ue.Handle][]*nas.Message),
		setups:   make(map[ue.Handle]int),
		releases: make(map[ue.Handle][]emm.ReleaseCause),
	}
}

func (f *fakeDownlink) SendNAS(_ ue.RadioRef, h ue.Handle, b []byte) error {
	m, err := f.codec.Decode(b)
	if err != nil {
		return err
	}
	f.sent[h] = append(f.sent[h], m)
	return nil
}

func (f *fakeDownlink) RequestContextSetup(ref ue.RadioRef, h ue.Handle, b []byte) error {
	f.setups[h]++
	if len(b) > 0 {
		return f.SendNAS(ref, h, b)
	}
	return nil
}

func (f *fakeDownlink) RequestContextRelease(_ ue.RadioRef, h ue.Handle, cause emm.ReleaseCause) error {
	f.releases[h] = append(f.releases[h], cause)
	return nil
}

func (f *fakeDownlink) count(h ue.Handle, t nas.MessageType) int {
	n := 0
	for _, m := range f.sent[h] {
		if m.Type == t {
			n++
		}
	}
	return n
}

func (f *fakeDownlink) last(h ue.Handle) *nas.Message {
	msgs := f.sent[h]
	if len(msgs) == 0 {
		return nil
	}
	return msgs[len(msgs)-1]
}

type request struct {
	kind      emm.EventKind
	h         ue.Handle
	id        string
	imsi      string
	sessionID string
	params    coordinator.SessionParams
}

// fakeRequester は発行された要求を記録する
type fakeRequester struct {
	seq  int
	reqs []request
}

func (f *fakeRequester) add(r request) string {
	f.seq++
	r.id = fmt.Sprintf("req-%d", f.seq)
	f.reqs = append(f.reqs, r)
	return r.id
}

func (f *fakeRequester) RequestAuthInfo(h ue.Handle, imsi, _ string) string {
	return f.add(request{kind: emm.EventAuthInfoAnswer, h: h, imsi: imsi})
}

func (f *fakeRequester) RequestUpdateLocation(h ue.Handle, imsi, _ string) string {
	return f.add(request{kind: emm.EventUpdateLocationAnswer, h: h, imsi: imsi})
}

func (f *fakeRequester) RequestCreateSession(h ue.Handle, p coordinator.SessionParams) string {
	return f.add(request{kind: emm.EventCreateSessionResponse, h: h, imsi: p.IMSI, params: p})
}

func (f *fakeRequester) RequestDeleteSession(h ue.Handle, imsi, sessionID string) string {
	return f.add(request{kind: emm.EventDeleteSessionResponse, h: h, imsi: imsi, sessionID: sessionID})
}

func (f *fakeRequester) count(h ue.Handle, kind emm.EventKind) int {
	n := 0
	for _, r := range f.reqs {
		if r.h == h && r.kind == kind {
			n++
		}
	}
	return n
}

func (f *fakeRequester) lastID(h ue.Handle, kind emm.EventKind) string {
	for i := len(f.reqs) - 1; i >= 0; i-- {
		if f.reqs[i].h == h && f.reqs[i].kind == kind {
			return f.reqs[i].id
		}
	}
	return ""
}

// fakeScheduler は実時間を使わないタイマー
type fakeScheduler struct {
	next   ue.TimerID
	active map[ue.TimerID]ue.Handle
	armed  []time.Duration
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{active: make(map[ue.TimerID]ue.Handle)}
}

func (f *fakeScheduler) Arm(h ue.Handle, d time.Duration) ue.TimerID {
	f.next++
	f.active[f.next] = h
	f.armed = append(f.armed, d)
	return f.next
}

func (f *fakeScheduler) Cancel(id ue.TimerID) {
	delete(f.active, id)
}

// fakeRecorder は記録回数を数える
type fakeRecorder struct {
	results map[string]int
	retx    map[string]int
	stale   int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{results: make(map[string]int), retx: make(map[string]int)}
}

func (f *fakeRecorder) ProcedureResult(proc, result string) { f.results[proc+"/"+result]++ }
func (f *fakeRecorder) Retransmission(proc string)          { f.retx[proc]++ }
func (f *fakeRecorder) StaleAnswer(string)                  { f.stale++ }

type harness struct {
	t       *testing.T
	eng     *Engine
	store   *ue.Store
	radio   *fakeDownlink
	reqs    *fakeRequester
	timers  *fakeScheduler
	rec     *fakeRecorder
	codec   *nas.CBORCodec
	created ue.Handle
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		t:      t,
		store:  ue.NewStore(),
		radio:  newFakeDownlink(),
		reqs:   &fakeRequester{},
		timers: newFakeScheduler(),
		rec:    newFakeRecorder(),
		codec:  nas.NewCodec(),
	}
	h.eng = NewEngine(h.store, h.reqs, h.radio, h.timers, h.codec, h.rec, testConfig())
	return h
}

func (h *harness) encode(m *nas.Message) []byte {
	h.t.Helper()
	b, err := h.codec.Encode(m)
	if err != nil {
		h.t.Fatalf("エンコード失敗: %v", err)
	}
	return b
}

// initialRaw は新規コンテキストを生成する初期UEメッセージを投入し、そのハンドルを返す
func (h *harness) initialRaw(b []byte) ue.Handle {
	h.created++
	h.eng.Handle(emm.Event{
		Kind:  emm.EventInitialUEMessage,
		Radio: ue.RadioRef{AssocID: 1, EnbUeID: uint32(100 + h.created)},
		PLMN:  "00101",
		NAS:   b,
	})
	return h.created
}

func (h *harness) initialNew(m *nas.Message) ue.Handle {
	return h.initialRaw(h.encode(m))
}

// initialExisting は既存コンテキストへ解決される初期UEメッセージを投入する
func (h *harness) initialExisting(m *nas.Message) {
	h.initialOn(ue.RadioRef{AssocID: 1, EnbUeID: 999}, m)
}

// initialOn は指定した無線参照から既存コンテキスト宛の初期UEメッセージを投入する
func (h *harness) initialOn(ref ue.RadioRef, m *nas.Message) {
	h.eng.Handle(emm.Event{
		Kind:  emm.EventInitialUEMessage,
		Radio: ref,
		PLMN:  "00101",
		NAS:   h.encode(m),
	})
}

func (h *harness) uplink(hd ue.Handle, m *nas.Message) {
	h.eng.Handle(emm.Event{Kind: emm.EventUplinkNAS, Handle: hd, NAS: h.encode(m)})
}

func (h *harness) answer(hd ue.Handle, kind emm.EventKind, a *emm.Answer) {
	h.t.Helper()
	id := h.reqs.lastID(hd, kind)
	if id == "" {
		h.t.Fatalf("%s に対応する要求がない", kind)
	}
	h.eng.Handle(emm.Event{Kind: kind, Handle: hd, RequestID: id, Answer: a})
}

func (h *harness) radioEvent(hd ue.Handle, kind emm.EventKind) {
	h.eng.Handle(emm.Event{Kind: kind, Handle: hd})
}

// goIdle は登録済みUEを無線解放要求からアイドルへ遷移させる
func (h *harness) goIdle(hd ue.Handle) {
	h.eng.Handle(emm.Event{Kind: emm.EventContextReleaseRequest, Handle: hd})
	h.radioEvent(hd, emm.EventContextReleaseComplete)
}

// expire は現在のサブ手続きタイマーを満了させる
func (h *harness) expire(hd ue.Handle) {
	h.t.Helper()
	c := h.context(hd)
	if c.Proc.TimerID == 0 {
		h.t.Fatalf("タイマー未設定")
	}
	delete(h.timers.active, c.Proc.TimerID)
	h.eng.Handle(emm.Event{Kind: emm.EventTimerExpiry, Handle: hd, TimerID: c.Proc.TimerID})
}

func (h *harness) context(hd ue.Handle) *ue.Context {
	h.t.Helper()
	c, ok := h.store.Get(hd)
	if !ok {
		h.t.Fatalf("コンテキストが存在しない: %d", hd)
	}
	return c
}

func (h *harness) exists(hd ue.Handle) bool {
	_, ok := h.store.Get(hd)
	return ok
}

// authenticate はIMSI付きATTACH REQUESTからSECURITY MODE COMPLETEまで進める
func (h *harness) authenticate(hd ue.Handle) {
	h.answer(hd, emm.EventAuthInfoAnswer, &emm.Answer{Vector: testVector})
	h.uplink(hd, &nas.Message{Type: nas.TypeAuthenticationResponse, RES: testVector.XRES})
	h.uplink(hd, &nas.Message{Type: nas.TypeSecurityModeComplete})
}

// establish は位置登録からATTACH COMPLETEまで進める
func (h *harness) establish(hd ue.Handle) {
	h.answer(hd, emm.EventUpdateLocationAnswer, &emm.Answer{APN: "internet", MSISDN: "819000000001"})
	h.answer(hd, emm.EventCreateSessionResponse, &emm.Answer{SessionID: "sess-1", BearerID: 5, UEAddr: "10.45.0.2"})
	h.radioEvent(hd, emm.EventContextSetupResponse)
	h.uplink(hd, &nas.Message{Type: nas.TypeAttachComplete})
}

func (h *harness) attachIMSI() ue.Handle {
	hd := h.initialNew(&nas.Message{Type: nas.TypeAttachRequest, IMSI: testIMSI, Capability: testCapability})
	h.authenticate(hd)
	h.establish(hd)
	return hd
}
