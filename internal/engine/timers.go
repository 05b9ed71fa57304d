package engine

import (
	"log/slog"
	"time"

	"github.com/oyaguma3/mme-emm-core/internal/emm"
	"github.com/oyaguma3/mme-emm-core/internal/ue"
	"github.com/oyaguma3/mme-emm-core/pkg/apperr"
)

// onTimerExpiry はサブ手続きのタイマー満了を処理する。
// 現在のタイマーIDと一致しない満了は解除済みタイマーの遅延通知として無視する。
func (e *Engine) onTimerExpiry(c *ue.Context, ev emm.Event) {
	if ev.TimerID == 0 || ev.TimerID != c.Proc.TimerID {
		slog.Debug("古いタイマー満了を無視", e.attrs("STALE_TIMER", c, "timer_id", uint64(ev.TimerID))...)
		return
	}
	c.Proc.Disarm()

	if c.Proc.Stage == ue.StageContextSetup {
		slog.Warn("無線コンテキスト設定タイムアウト", e.attrs("CONTEXT_SETUP_TIMEOUT", c)...)
		e.recorder.ProcedureResult(procAttach, "context_setup_timeout")
		e.beginRelease(c, emm.ReleaseUnspecified)
		return
	}

	proc := procName(c.Proc.Kind)
	c.Proc.Retries++
	if c.Proc.Retries >= e.cfg.NASRetxLimit {
		slog.Warn("再送上限到達", e.attrs("RETRY_EXHAUSTED", c,
			"procedure", string(c.Proc.Kind),
			"retry_count", c.Proc.Retries,
			"error", apperr.ErrRetryExhausted,
		)...)
		e.recorder.ProcedureResult(proc, "retry_exhausted")
		e.recorder.ProcedureResult(procAttach, "abort")
		e.beginRelease(c, emm.ReleaseUnspecified)
		return
	}

	e.recorder.Retransmission(proc)
	slog.Debug("NAS再送", e.attrs("NAS_RETRANSMIT", c, "procedure", string(c.Proc.Kind), "retry_count", c.Proc.Retries)...)
	if len(c.Proc.Buffered) > 0 {
		if err := e.radio.SendNAS(c.Radio, c.Handle, c.Proc.Buffered); err != nil {
			slog.Warn("下りNAS再送失敗", e.attrs("RADIO_SEND_ERR", c, "error", err)...)
		}
	}
	e.arm(c, e.retransmitInterval(c.Proc))
}

// retransmitInterval はサブ手続きに対応する再送間隔を返す
func (e *Engine) retransmitInterval(p ue.Subprocedure) time.Duration {
	switch {
	case p.Kind == ue.ProcIdentification:
		return e.cfg.T3470
	case p.Kind == ue.ProcSessionEstablishment:
		return e.cfg.T3450
	default:
		return e.cfg.T3460
	}
}

func procName(k ue.ProcKind) string {
	switch k {
	case ue.ProcIdentification:
		return procIdentification
	case ue.ProcAuthentication:
		return procAuthentication
	case ue.ProcSecurityMode:
		return procSecurityMode
	default:
		return procAttach
	}
}
