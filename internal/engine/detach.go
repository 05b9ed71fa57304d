package engine

import (
	"log/slog"

	"github.com/oyaguma3/mme-emm-core/internal/emm"
	"github.com/oyaguma3/mme-emm-core/internal/nas"
	"github.com/oyaguma3/mme-emm-core/internal/ue"
)

func (e *Engine) onDetachRequest(c *ue.Context, msg *nas.Message) {
	if msg.IMSI != "" && c.IMSI == "" {
		// 初期メッセージとしてのDETACH: IMSIのみ記録する
		if err := e.store.BindIMSI(c, msg.IMSI); err != nil {
			slog.Debug("DETACH REQUESTのIMSIは別コンテキストで使用中", e.attrs("DETACH_IMSI_IN_USE", c, "error", err)...)
		}
	}
	slog.Info("デタッチ要求受信", e.attrs("DETACH_REQUEST", c, "switch_off", msg.SwitchOff)...)
	e.recorder.ProcedureResult(procDetach, "requested")

	if c.ReleasePending {
		e.continueRelease(c)
		return
	}
	c.DetachAccept = !msg.SwitchOff
	e.beginRelease(c, emm.ReleaseDetach)
}

func (e *Engine) onServiceRequest(c *ue.Context) {
	if c.Attach != ue.AttachRegistered || c.ReleasePending || c.Proc.Active() {
		e.recorder.ProcedureResult(procService, "reject")
		slog.Info("サービス要求拒否", e.attrs("SERVICE_REJECT", c, "attach_state", string(c.Attach))...)
		e.sendStatus(c, emm.CauseImplicitlyDetached)
		e.beginRelease(c, emm.ReleaseNormal)
		return
	}
	if err := e.radio.RequestContextSetup(c.Radio, c.Handle, nil); err != nil {
		slog.Warn("無線コンテキスト設定要求失敗", e.attrs("RADIO_SEND_ERR", c, "error", err)...)
	}
	e.recorder.ProcedureResult(procService, "success")
	slog.Info("サービス要求受理", e.attrs("SERVICE_REQUEST", c, e.fields.WithGUTI(c.GUTI))...)
}

// beginRelease は解放シーケンスを開始する。
// 全ての中断経路はここに合流し、セッション削除、無線解放、コンテキスト破棄の順に進む。
func (e *Engine) beginRelease(c *ue.Context, cause emm.ReleaseCause) {
	if c.ReleasePending {
		// 解放中の場合は現在の段階から再開する
		e.continueRelease(c)
		return
	}

	trigger := emm.TriggerAttachAborted
	if cause == emm.ReleaseDetach || cause == emm.ReleaseImplicitDetach {
		trigger = emm.TriggerDetached
	}
	if next, err := emm.NextAttachState(c.Attach, trigger); err == nil {
		e.store.SetAttachState(c, next)
	} else {
		e.store.SetAttachState(c, ue.AttachUnregistered)
	}

	e.disarm(c)
	c.Proc.Clear()
	c.Vector = nil
	c.Security = ue.SecurityContext{}
	c.ReleasePending = true
	c.ReleaseCause = string(cause)

	if c.PendingRequest != "" {
		// 応答待ちの要求が完了してから進める
		slog.Debug("コラボレータ応答待ちのため解放を保留", e.attrs("RELEASE_DEFERRED", c, "request_id", c.PendingRequest)...)
		return
	}
	e.continueRelease(c)
}

// implicitDetach は同一加入者の新たなアタッチに先立って旧コンテキストを解放する。
// 識別子索引は即座に解除し、新しいコンテキストが同じIMSIを使えるようにする。
func (e *Engine) implicitDetach(old *ue.Context) {
	e.store.Unbind(old)
	if old.ReleasePending {
		return
	}
	slog.Info("暗黙デタッチ", e.attrs("IMPLICIT_DETACH", old, "attach_state", string(old.Attach), "conn_state", string(old.Conn))...)
	e.recorder.ProcedureResult(procDetach, "implicit")
	old.DetachAccept = false
	e.beginRelease(old, emm.ReleaseImplicitDetach)
}

// continueRelease は解放シーケンスを次の段階へ進める
func (e *Engine) continueRelease(c *ue.Context) {
	if c.PendingRequest != "" {
		return
	}

	if len(c.Bearers) > 0 {
		c.PendingRequest = e.requests.RequestDeleteSession(c.Handle, c.IMSI, c.Bearers[0].SessionID)
		slog.Debug("セッション削除要求", e.attrs("DELETE_SESSION_REQUEST", c, "request_id", c.PendingRequest)...)
		return
	}

	if c.DetachAccept {
		c.DetachAccept = false
		if c.Conn == ue.ConnConnected {
			e.sendNAS(c, nas.DetachAccept())
		}
	}

	if c.Conn == ue.ConnIdle {
		e.destroy(c)
		return
	}
	if c.ReleaseCommanded {
		return
	}
	c.ReleaseCommanded = true
	if err := e.radio.RequestContextRelease(c.Radio, c.Handle, emm.ReleaseCause(c.ReleaseCause)); err != nil {
		slog.Warn("無線コンテキスト解放要求失敗", e.attrs("RADIO_SEND_ERR", c, "error", err)...)
	}
}

// destroy はコンテキストを破棄する
func (e *Engine) destroy(c *ue.Context) {
	if err := e.store.Destroy(c.Handle); err != nil {
		slog.Error("コンテキスト破棄失敗", e.attrs("CONTEXT_DESTROY_ERR", c, "error", err)...)
		return
	}
	if c.ReleaseCause == string(emm.ReleaseDetach) {
		e.recorder.ProcedureResult(procDetach, "success")
	}
	slog.Info("コンテキスト破棄", e.attrs("CONTEXT_RELEASED", c, "cause", c.ReleaseCause)...)
}

func (e *Engine) onDeleteSessionResponse(c *ue.Context, ev emm.Event) {
	if !e.takePending(c, ev) {
		return
	}
	if !ev.Answer.OK() {
		// 削除失敗でもローカル状態は解放する
		slog.Warn("セッション削除失敗", e.attrs("DELETE_SESSION_ERR", c, "error", answerErr(ev.Answer))...)
	}
	e.store.RemoveBearers(c)
	if c.ReleasePending {
		e.continueRelease(c)
	}
}

// requestIdle は登録済みUEの無線コンテキスト解放を要求する（アイドル遷移）
func (e *Engine) requestIdle(c *ue.Context, cause emm.ReleaseCause) {
	if c.ReleaseCommanded {
		return
	}
	c.ReleaseCommanded = true
	if err := e.radio.RequestContextRelease(c.Radio, c.Handle, cause); err != nil {
		slog.Warn("無線コンテキスト解放要求失敗", e.attrs("RADIO_SEND_ERR", c, "error", err)...)
	}
}

func (e *Engine) onContextReleaseRequest(c *ue.Context, ev emm.Event) {
	if e.superseded(c, ev) {
		return
	}
	switch {
	case c.ReleasePending:
		e.continueRelease(c)
	case c.Attach == ue.AttachRegistered && !c.Busy():
		cause := emm.ReleaseCause(ev.RadioCause)
		if cause == "" {
			cause = emm.ReleaseUserInactivity
		}
		e.requestIdle(c, cause)
	default:
		slog.Warn("手続き中の無線解放要求", e.attrs("RADIO_RELEASE_DURING_PROCEDURE", c, "cause", ev.RadioCause)...)
		e.beginRelease(c, emm.ReleaseRadioConnectionErr)
	}
}

// superseded は旧い無線接続からの通知かどうかを判定する。
// 無線参照を持たない通知（アソシエーション単位でEnbUeIDなし）はアソシエーションのみ照合する。
func (e *Engine) superseded(c *ue.Context, ev emm.Event) bool {
	if ev.Radio.AssocID == 0 {
		return false
	}
	if ev.Radio.AssocID == c.Radio.AssocID && (ev.Radio.EnbUeID == 0 || ev.Radio.EnbUeID == c.Radio.EnbUeID) {
		return false
	}
	slog.Info("旧無線接続からの通知を破棄",
		e.attrs("RADIO_SUPERSEDED", c,
			"kind", string(ev.Kind),
			"event_assoc_id", ev.Radio.AssocID,
			"event_enb_ue_id", ev.Radio.EnbUeID,
			"assoc_id", c.Radio.AssocID,
		)...)
	return true
}

func (e *Engine) onContextReleaseComplete(c *ue.Context, ev emm.Event) {
	if e.superseded(c, ev) {
		return
	}
	e.store.SetConnState(c, ue.ConnIdle)
	c.ReleaseCommanded = false

	switch {
	case c.ReleasePending:
		e.continueRelease(c)
	case c.Attach == ue.AttachRegistered && !c.Busy():
		slog.Info("アイドル遷移", e.attrs("UE_IDLE", c, e.fields.WithGUTI(c.GUTI))...)
	default:
		e.beginRelease(c, emm.ReleaseRadioConnectionErr)
	}
}
