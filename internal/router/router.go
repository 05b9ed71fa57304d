// Package router は全イベントを単一goroutineで逐次処理するイベントループを提供する。
package router

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/oyaguma3/mme-emm-core/internal/config"
	"github.com/oyaguma3/mme-emm-core/internal/emm"
	"github.com/oyaguma3/mme-emm-core/internal/metrics"
	"github.com/oyaguma3/mme-emm-core/internal/ue"
	"github.com/oyaguma3/mme-emm-core/pkg/apperr"
)

// ErrClosed はイベントループが停止済みであることを示す
var ErrClosed = errors.New("router closed")

// Processor はイベントを1件ずつ処理する
type Processor interface {
	Handle(ev emm.Event)
	Snapshot() ue.Snapshot
}

// Resolver はコラボレータ応答の相関IDを対象ハンドルへ解決する
type Resolver interface {
	Resolve(id string, kind emm.EventKind) (ue.Handle, bool)
}

// Observer は確定したスナップショットの変化を受け取る
type Observer func(ue.Snapshot)

type item struct {
	ev    emm.Event
	reply chan ue.Snapshot
}

// Router はイベントループ
type Router struct {
	proc      Processor
	resolver  Resolver
	recorder  metrics.Recorder
	observers []Observer

	inbox     chan item
	done      chan struct{}
	committed atomic.Pointer[ue.Snapshot]
}

// New は新しいRouterを生成する
func New(proc Processor, resolver Resolver, recorder metrics.Recorder, observers ...Observer) *Router {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	r := &Router{
		proc:      proc,
		resolver:  resolver,
		recorder:  recorder,
		observers: observers,
		inbox:     make(chan item, config.RouterInboxSize),
		done:      make(chan struct{}),
	}
	initial := proc.Snapshot()
	r.committed.Store(&initial)
	return r
}

// Post はイベントを投入する。キューが満杯の場合はctxの期限まで待つ。
func (r *Router) Post(ctx context.Context, ev emm.Event) error {
	return r.enqueue(ctx, item{ev: ev})
}

func (r *Router) enqueue(ctx context.Context, it item) error {
	select {
	case <-r.done:
		return ErrClosed
	default:
	}
	select {
	case r.inbox <- it:
		return nil
	case <-r.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Query は投入済みの全イベントが処理された後のスナップショットを返す
func (r *Router) Query(ctx context.Context) (ue.Snapshot, error) {
	reply := make(chan ue.Snapshot, 1)
	if err := r.enqueue(ctx, item{reply: reply}); err != nil {
		return ue.Snapshot{}, err
	}
	select {
	case s := <-reply:
		return s, nil
	case <-r.done:
		return ue.Snapshot{}, ErrClosed
	case <-ctx.Done():
		return ue.Snapshot{}, ctx.Err()
	}
}

// Committed は最後に確定したスナップショットを返す。イベントループを経由しない。
func (r *Router) Committed() ue.Snapshot {
	return *r.committed.Load()
}

// Run はctxがキャンセルされるまでイベントを処理する
func (r *Router) Run(ctx context.Context) error {
	defer close(r.done)
	slog.Info("イベントループ開始", "event_id", "ROUTER_START")

	for {
		select {
		case <-ctx.Done():
			slog.Info("イベントループ停止", "event_id", "ROUTER_STOP", "queued", len(r.inbox))
			return nil
		case it := <-r.inbox:
			if it.reply != nil {
				it.reply <- r.Committed()
				continue
			}
			r.process(it.ev)
		}
	}
}

func (r *Router) process(ev emm.Event) {
	if ev.IsAnswer() {
		h, ok := r.resolver.Resolve(ev.RequestID, ev.Kind)
		if !ok {
			r.recorder.StaleAnswer(string(ev.Kind))
			slog.Info("相関IDが解決できない応答を破棄",
				"event_id", "STALE_ANSWER",
				"request_id", ev.RequestID,
				"kind", string(ev.Kind),
				"error", apperr.ErrStaleCorrelation,
			)
			return
		}
		ev.Handle = h
	}

	r.proc.Handle(ev)
	r.commit()
}

// commit は処理後のスナップショットを確定し、変化があれば監視者へ通知する
func (r *Router) commit() {
	s := r.proc.Snapshot()
	if s == *r.committed.Load() {
		return
	}
	r.committed.Store(&s)
	for _, o := range r.observers {
		o(s)
	}
}
