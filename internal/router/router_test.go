package router

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oyaguma3/mme-emm-core/internal/emm"
	"github.com/oyaguma3/mme-emm-core/internal/ue"
)

// countingProcessor は処理したイベント数を接続数として返す
type countingProcessor struct {
	handled []emm.Event
}

func (p *countingProcessor) Handle(ev emm.Event) {
	p.handled = append(p.handled, ev)
}

func (p *countingProcessor) Snapshot() ue.Snapshot {
	return ue.Snapshot{Connected: len(p.handled), Contexts: len(p.handled)}
}

type mapResolver map[string]ue.Handle

func (m mapResolver) Resolve(id string, _ emm.EventKind) (ue.Handle, bool) {
	h, ok := m[id]
	if ok {
		delete(m, id)
	}
	return h, ok
}

type staleRecorder struct{ stale int }

func (*staleRecorder) ProcedureResult(string, string) {}
func (*staleRecorder) Retransmission(string)          {}
func (r *staleRecorder) StaleAnswer(string)           { r.stale++ }

func startRouter(t *testing.T, r *Router) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- r.Run(ctx)
	}()
	t.Cleanup(cancel)
	return cancel, errCh
}

func TestRouterQueryAfterPost(t *testing.T) {
	proc := &countingProcessor{}
	var observed []ue.Snapshot
	r := New(proc, mapResolver{}, nil, func(s ue.Snapshot) { observed = append(observed, s) })
	startRouter(t, r)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := r.Post(ctx, emm.Event{Kind: emm.EventUplinkNAS, Handle: ue.Handle(i + 1)}); err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
	}

	s, err := r.Query(ctx)
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	if s.Connected != 3 {
		t.Errorf("Connected = %d, want 3", s.Connected)
	}
	if r.Committed() != s {
		t.Errorf("Committed = %+v, want %+v", r.Committed(), s)
	}
	if len(observed) != 3 {
		t.Errorf("監視者への通知回数 = %d, want 3", len(observed))
	}
}

func TestRouterResolvesAnswers(t *testing.T) {
	proc := &countingProcessor{}
	rec := &staleRecorder{}
	r := New(proc, mapResolver{"req-1": 42}, rec)
	startRouter(t, r)

	ctx := context.Background()
	_ = r.Post(ctx, emm.Event{Kind: emm.EventAuthInfoAnswer, RequestID: "req-1", Answer: &emm.Answer{}})
	_ = r.Post(ctx, emm.Event{Kind: emm.EventAuthInfoAnswer, RequestID: "req-1", Answer: &emm.Answer{}})
	_ = r.Post(ctx, emm.Event{Kind: emm.EventAuthInfoAnswer, RequestID: "req-9", Answer: &emm.Answer{}})
	if _, err := r.Query(ctx); err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}

	if len(proc.handled) != 1 {
		t.Fatalf("処理件数 = %d, want 1", len(proc.handled))
	}
	if proc.handled[0].Handle != 42 {
		t.Errorf("Handle = %d, want 42", proc.handled[0].Handle)
	}
	if rec.stale != 2 {
		t.Errorf("stale = %d, want 2", rec.stale)
	}
}

func TestRouterStop(t *testing.T) {
	r := New(&countingProcessor{}, mapResolver{}, nil)
	cancel, errCh := startRouter(t, r)

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("予期しないエラー: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Runが終了しない")
	}

	if err := r.Post(context.Background(), emm.Event{Kind: emm.EventUplinkNAS}); !errors.Is(err, ErrClosed) {
		t.Errorf("ErrClosedを期待したが %v", err)
	}
	if _, err := r.Query(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("ErrClosedを期待したが %v", err)
	}
}

func TestRouterPostContextCanceled(t *testing.T) {
	r := New(&countingProcessor{}, mapResolver{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// 未起動のルーターでもキューに空きがあれば受理する
	if err := r.Post(context.Background(), emm.Event{Kind: emm.EventUplinkNAS}); err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	for len(r.inbox) < cap(r.inbox) {
		r.inbox <- item{}
	}
	if err := r.Post(ctx, emm.Event{Kind: emm.EventUplinkNAS}); !errors.Is(err, context.Canceled) {
		t.Errorf("context.Canceledを期待したが %v", err)
	}
}
