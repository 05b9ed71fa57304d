package engine

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"

	"github.com/oyaguma3/mme-emm-core/internal/config"
	"github.com/oyaguma3/mme-emm-core/internal/coordinator"
	"github.com/oyaguma3/mme-emm-core/internal/emm"
	"github.com/oyaguma3/mme-emm-core/internal/httpclient"
	"github.com/oyaguma3/mme-emm-core/internal/nas"
	"github.com/oyaguma3/mme-emm-core/internal/ue"
	"github.com/oyaguma3/mme-emm-core/pkg/apperr"
)

// handleInitialUE は初期UEメッセージを処理する。
// 既知のIMSIまたはGUTIを持つ場合は既存コンテキストへ、それ以外は新規コンテキストを生成する。
// 既知の加入者からのATTACH REQUESTは旧コンテキストを暗黙デタッチして新規に処理する。
func (e *Engine) handleInitialUE(ev emm.Event) {
	msg, err := e.codec.Decode(ev.NAS)
	if err != nil {
		// 解析不能な初期メッセージ: コンテキストはCONNECTEDのまま登録されない
		c, cerr := e.store.Create(ue.Identity{}, ev.Radio)
		if cerr != nil {
			slog.Error("コンテキスト生成失敗", "event_id", "CONTEXT_CREATE_ERR", "error", cerr)
			return
		}
		c.PLMN = ev.PLMN
		slog.Warn("初期NASメッセージ解析失敗", e.attrs("NAS_MALFORMED", c, "error", err)...)
		e.sendStatus(c, emm.CauseInvalidMandatoryInfo)
		return
	}

	if id := (ue.Identity{IMSI: msg.IMSI, GUTI: msg.GUTI}); id != (ue.Identity{}) {
		if old, ok := e.store.Lookup(id); ok {
			if msg.Type != nas.TypeAttachRequest {
				e.resume(old, ev.Radio)
				e.dispatchNAS(old, msg)
				return
			}
			// 新たなアタッチは旧コンテキストを暗黙デタッチしてから新規コンテキストで処理する
			e.implicitDetach(old)
		}
	}

	c, err := e.store.Create(ue.Identity{}, ev.Radio)
	if err != nil {
		slog.Error("コンテキスト生成失敗", "event_id", "CONTEXT_CREATE_ERR", "error", err)
		return
	}
	c.PLMN = ev.PLMN
	if c.PLMN == "" {
		c.PLMN = e.cfg.PLMN
	}

	switch msg.Type {
	case nas.TypeAttachRequest, nas.TypeDetachRequest:
		e.dispatchNAS(c, msg)
	case nas.TypeServiceRequest:
		slog.Info("未知GUTIからのサービス要求", e.attrs("SERVICE_REJECT", c, e.fields.WithGUTI(msg.GUTI))...)
		e.sendStatus(c, emm.CauseImplicitlyDetached)
		e.beginRelease(c, emm.ReleaseNormal)
	default:
		slog.Warn("初期メッセージとして受理できない種別", e.attrs("NAS_UNEXPECTED_TYPE", c, "type", msg.Type.String())...)
		e.sendStatus(c, emm.CauseMessageTypeNotCompatible)
		e.beginRelease(c, emm.ReleaseNormal)
	}
}

// bindIMSI はIMSIをコンテキストに結び付ける。
// 別のコンテキストが同じIMSIを保持している場合はそちらを暗黙デタッチする。
func (e *Engine) bindIMSI(c *ue.Context, imsi string) error {
	if old, ok := e.store.Lookup(ue.Identity{IMSI: imsi}); ok && old.Handle != c.Handle {
		e.implicitDetach(old)
	}
	return e.store.BindIMSI(c, imsi)
}

// resume は既存コンテキストを新しい無線接続に結び付ける
func (e *Engine) resume(c *ue.Context, radioRef ue.RadioRef) {
	c.Radio = radioRef
	c.ReleaseCommanded = false
	e.store.SetConnState(c, ue.ConnConnected)
}

func (e *Engine) onAttachRequest(c *ue.Context, msg *nas.Message) {
	if c.Attach != ue.AttachUnregistered || c.Proc.Active() || c.ReleasePending {
		slog.Warn("現在の状態でATTACH REQUESTは受理できない",
			e.attrs("ATTACH_NOT_ACCEPTED", c, "attach_state", string(c.Attach), "procedure", string(c.Proc.Kind))...)
		e.sendStatus(c, emm.CauseNotCompatibleWithState)
		return
	}

	next, err := emm.NextAttachState(c.Attach, emm.TriggerAttachRequested)
	if err != nil {
		slog.Error("登録状態遷移失敗", e.attrs("ATTACH_STATE_ERR", c, "error", err)...)
		return
	}
	e.store.SetAttachState(c, next)
	c.Capability = ue.Capability{EEA: msg.Capability.EEA, EIA: msg.Capability.EIA}

	if msg.IMSI == "" {
		slog.Info("アタッチ開始（GUTI）", e.attrs("ATTACH_START", c, e.fields.WithGUTI(msg.GUTI))...)
		e.startIdentification(c)
		return
	}

	if err := e.bindIMSI(c, msg.IMSI); err != nil {
		slog.Warn("IMSIが別コンテキストで使用中", e.attrs("ATTACH_DUPLICATE", c, e.fields.WithIMSI(msg.IMSI), "error", err)...)
		e.attachFailure(c, emm.CauseNetworkFailure, err)
		return
	}
	slog.Info("アタッチ開始（IMSI）", e.attrs("ATTACH_START", c)...)
	e.startAuthentication(c)
}

// startIdentification はIMSI取得のための識別手続きを開始する
func (e *Engine) startIdentification(c *ue.Context) {
	e.enterProc(c, ue.ProcIdentification, ue.StageAwaitUE)
	e.sendGuarded(c, nas.IdentityRequest(nas.IdentityIMSI), e.cfg.T3470)
}

func (e *Engine) onIdentityResponse(c *ue.Context, msg *nas.Message) {
	if c.Proc.Kind != ue.ProcIdentification {
		e.unexpected(c, msg.Type)
		return
	}
	e.disarm(c)

	if err := e.bindIMSI(c, msg.IMSI); err != nil {
		slog.Warn("IMSIが別コンテキストで使用中", e.attrs("ATTACH_DUPLICATE", c, e.fields.WithIMSI(msg.IMSI), "error", err)...)
		e.recorder.ProcedureResult(procIdentification, "duplicate")
		e.attachFailure(c, emm.CauseNetworkFailure, err)
		return
	}
	e.recorder.ProcedureResult(procIdentification, "success")
	slog.Info("識別手続き完了", e.attrs("IDENTIFICATION_SUCCESS", c)...)
	e.startAuthentication(c)
}

// startAuthentication は認証情報要求を発行する
func (e *Engine) startAuthentication(c *ue.Context) {
	e.enterProc(c, ue.ProcAuthentication, ue.StageAwaitVector)
	c.PendingRequest = e.requests.RequestAuthInfo(c.Handle, c.IMSI, c.PLMN)
	slog.Debug("認証情報要求", e.attrs("AUTH_INFO_REQUEST", c, "request_id", c.PendingRequest)...)
}

func (e *Engine) onAuthInfoAnswer(c *ue.Context, ev emm.Event) {
	if !e.takePending(c, ev) {
		return
	}
	if c.ReleasePending {
		e.continueRelease(c)
		return
	}
	if c.Proc.Kind != ue.ProcAuthentication || c.Proc.Stage != ue.StageAwaitVector {
		slog.Error("認証情報応答を受理できない状態", e.attrs("AUTH_INFO_STATE_ERR", c, "procedure", string(c.Proc.Kind))...)
		return
	}
	if !ev.Answer.OK() || ev.Answer.Vector == nil {
		e.recorder.ProcedureResult(procAuthentication, "vector_failure")
		e.attachFailure(c, rejectCause(ev.Answer), answerErr(ev.Answer))
		return
	}

	c.Vector = ev.Answer.Vector
	c.Security.KSI = (c.Security.KSI + 1) % 7
	c.Proc.Stage = ue.StageAwaitUE
	e.sendGuarded(c, nas.AuthenticationRequest(c.Security.KSI, c.Vector.RAND, c.Vector.AUTN), e.cfg.T3460)
}

func (e *Engine) onAuthenticationResponse(c *ue.Context, msg *nas.Message) {
	if c.Proc.Kind != ue.ProcAuthentication || c.Proc.Stage != ue.StageAwaitUE || c.Vector == nil {
		e.unexpected(c, msg.Type)
		return
	}
	e.disarm(c)

	if subtle.ConstantTimeCompare(msg.RES, c.Vector.XRES) != 1 {
		slog.Warn("RES不一致", e.attrs("AUTH_RES_MISMATCH", c, "error", apperr.ErrAuthResMismatch)...)
		e.recorder.ProcedureResult(procAuthentication, "res_mismatch")
		e.recorder.ProcedureResult(procAttach, "auth_reject")
		e.sendNAS(c, nas.AuthenticationReject())
		e.beginRelease(c, emm.ReleaseAuthFailure)
		return
	}

	e.recorder.ProcedureResult(procAuthentication, "success")
	c.Security.KASME = c.Vector.KASME
	e.startSecurityMode(c)
}

func (e *Engine) onAuthenticationFailure(c *ue.Context, msg *nas.Message) {
	if c.Proc.Kind != ue.ProcAuthentication || c.Proc.Stage != ue.StageAwaitUE {
		e.unexpected(c, msg.Type)
		return
	}
	e.disarm(c)
	e.recorder.ProcedureResult(procAuthentication, "ue_failure")
	e.attachFailure(c, emm.CauseIllegalUE,
		apperr.NewProtocolError("authentication_failure", fmt.Sprintf("ue reported cause %d", msg.Cause)))
}

// startSecurityMode はSECURITY MODE COMMANDを送信する
func (e *Engine) startSecurityMode(c *ue.Context) {
	eea, eia, err := selectAlgorithms(c.Capability, e.cfg.PreferredEEA, e.cfg.PreferredEIA)
	if err != nil {
		e.recorder.ProcedureResult(procSecurityMode, "no_common_algorithm")
		e.attachFailure(c, emm.CauseUESecurityCapMismatch, err)
		return
	}

	e.enterProc(c, ue.ProcSecurityMode, ue.StageAwaitUE)
	c.Security.EEA = eea
	c.Security.EIA = eia
	replayed := nas.Capability{EEA: c.Capability.EEA, EIA: c.Capability.EIA}
	e.sendGuarded(c, nas.SecurityModeCommand(c.Security.KSI, eea, eia, replayed), e.cfg.T3460)
}

func (e *Engine) onSecurityModeComplete(c *ue.Context) {
	if c.Proc.Kind != ue.ProcSecurityMode {
		e.unexpected(c, nas.TypeSecurityModeComplete)
		return
	}
	e.disarm(c)
	c.Security.Active = true
	e.recorder.ProcedureResult(procSecurityMode, "success")

	e.enterProc(c, ue.ProcSessionEstablishment, ue.StageLocationUpdate)
	c.PendingRequest = e.requests.RequestUpdateLocation(c.Handle, c.IMSI, c.PLMN)
}

func (e *Engine) onSecurityModeReject(c *ue.Context, msg *nas.Message) {
	if c.Proc.Kind != ue.ProcSecurityMode {
		e.unexpected(c, msg.Type)
		return
	}
	e.disarm(c)
	e.recorder.ProcedureResult(procSecurityMode, "reject")
	e.attachFailure(c, emm.CauseSecurityModeRejected,
		apperr.NewProtocolError("security_mode_reject", fmt.Sprintf("ue reported cause %d", msg.Cause)))
}

func (e *Engine) onUpdateLocationAnswer(c *ue.Context, ev emm.Event) {
	if !e.takePending(c, ev) {
		return
	}
	if c.ReleasePending {
		e.continueRelease(c)
		return
	}
	if c.Proc.Stage != ue.StageLocationUpdate {
		slog.Error("位置登録応答を受理できない状態", e.attrs("ULA_STATE_ERR", c, "stage", string(c.Proc.Stage))...)
		return
	}
	// 否定応答と期限超過は同一に扱う
	if !ev.Answer.OK() {
		e.attachFailure(c, rejectCause(ev.Answer), answerErr(ev.Answer))
		return
	}

	c.APN = ev.Answer.APN
	if c.APN == "" {
		c.APN = e.cfg.DefaultAPN
	}
	c.MSISDN = ev.Answer.MSISDN
	c.Proc.Stage = ue.StageCreateSession
	c.PendingRequest = e.requests.RequestCreateSession(c.Handle, coordinator.SessionParams{
		IMSI:     c.IMSI,
		MSISDN:   c.MSISDN,
		APN:      c.APN,
		PLMN:     c.PLMN,
		BearerID: config.DefaultBearerID,
	})
}

func (e *Engine) onCreateSessionResponse(c *ue.Context, ev emm.Event) {
	if !e.takePending(c, ev) {
		return
	}
	if ev.Answer.OK() {
		e.store.AddBearer(c, ue.Bearer{
			ID:        ev.Answer.BearerID,
			SessionID: ev.Answer.SessionID,
			APN:       c.APN,
			UEAddr:    ev.Answer.UEAddr,
			Default:   true,
		})
	}
	if c.ReleasePending {
		e.continueRelease(c)
		return
	}
	if c.Proc.Stage != ue.StageCreateSession {
		slog.Error("セッション作成応答を受理できない状態", e.attrs("CSR_STATE_ERR", c, "stage", string(c.Proc.Stage))...)
		return
	}
	if !ev.Answer.OK() {
		e.attachFailure(c, emm.CauseNetworkFailure, answerErr(ev.Answer))
		return
	}

	guti, err := e.allocateGUTI(c)
	if err != nil {
		e.attachFailure(c, emm.CauseNetworkFailure, err)
		return
	}

	accept := e.encode(c, nas.AttachAccept(guti, []string{e.cfg.PLMN}, config.T3412Seconds))
	c.Proc.Stage = ue.StageContextSetup
	c.Proc.Buffered = accept
	if err := e.radio.RequestContextSetup(c.Radio, c.Handle, accept); err != nil {
		slog.Warn("無線コンテキスト設定要求失敗", e.attrs("RADIO_SEND_ERR", c, "error", err)...)
	}
	// ガードタイマーは単発
	e.arm(c, e.cfg.ContextSetupTimeout)
}

func (e *Engine) onContextSetupResponse(c *ue.Context) {
	if c.Proc.Kind != ue.ProcSessionEstablishment || c.Proc.Stage != ue.StageContextSetup {
		slog.Debug("無線コンテキスト設定完了", e.attrs("CONTEXT_SETUP_DONE", c)...)
		return
	}
	e.disarm(c)
	c.Proc.Stage = ue.StageAttachAccept
	e.arm(c, e.cfg.T3450)
}

func (e *Engine) onContextSetupFailure(c *ue.Context, ev emm.Event) {
	slog.Warn("無線コンテキスト設定失敗", e.attrs("CONTEXT_SETUP_FAILURE", c, "cause", ev.RadioCause)...)
	if c.Proc.Kind == ue.ProcSessionEstablishment && c.Proc.Stage == ue.StageContextSetup {
		e.recorder.ProcedureResult(procAttach, "context_setup_failure")
		e.beginRelease(c, emm.ReleaseUnspecified)
		return
	}
	if c.Attach == ue.AttachRegistered && !c.Busy() {
		e.requestIdle(c, emm.ReleaseNormal)
	}
}

func (e *Engine) onAttachComplete(c *ue.Context) {
	if c.Proc.Kind != ue.ProcSessionEstablishment ||
		(c.Proc.Stage != ue.StageAttachAccept && c.Proc.Stage != ue.StageContextSetup) {
		e.unexpected(c, nas.TypeAttachComplete)
		return
	}
	e.disarm(c)
	c.Proc.Clear()

	next, err := emm.NextAttachState(c.Attach, emm.TriggerAttachCompleted)
	if err != nil {
		slog.Error("登録状態遷移失敗", e.attrs("ATTACH_STATE_ERR", c, "error", err)...)
		return
	}
	e.store.SetAttachState(c, next)
	c.Vector = nil

	e.recorder.ProcedureResult(procAttach, "success")
	slog.Info("アタッチ完了", e.attrs("ATTACH_SUCCESS", c, e.fields.WithGUTI(c.GUTI))...)
}

// attachFailure はATTACH REJECTを送信して解放処理へ移る
func (e *Engine) attachFailure(c *ue.Context, cause emm.Cause, err error) {
	e.recorder.ProcedureResult(procAttach, "reject")
	slog.Warn("アタッチ拒否", e.attrs("ATTACH_REJECT", c, "emm_cause", uint8(cause), "error", err)...)
	e.sendNAS(c, nas.AttachReject(uint8(cause)))
	e.beginRelease(c, emm.ReleaseNormal)
}

// rejectCause はコラボレータの否定応答からATTACH REJECTの原因値を決定する
func rejectCause(a *emm.Answer) emm.Cause {
	var apiErr *httpclient.APIError
	if a != nil && errors.As(a.Err, &apiErr) {
		switch apiErr.StatusCode {
		case 404:
			return emm.CauseIMSIUnknownInHSS
		case 403:
			return emm.CauseEPSServicesNotAllowed
		}
	}
	return emm.CauseNetworkFailure
}

func answerErr(a *emm.Answer) error {
	if a == nil || a.Err == nil {
		return apperr.ErrCollaboratorFailure
	}
	return a.Err
}

// selectAlgorithms は優先順位とUE能力から暗号化・完全性保護アルゴリズムを選択する
func selectAlgorithms(uc ue.Capability, prefEEA, prefEIA []int) (uint8, uint8, error) {
	pick := func(mask uint8, prefs []int, allowNull bool) (uint8, bool) {
		for _, a := range prefs {
			if a == 0 && allowNull {
				return 0, true
			}
			if a > 0 && a < 8 && mask&(1<<uint(a)) != 0 {
				return uint8(a), true
			}
		}
		return 0, false
	}

	eia, ok := pick(uc.EIA, prefEIA, false)
	if !ok {
		return 0, 0, apperr.ErrNoCommonAlgorithm
	}
	eea, ok := pick(uc.EEA, prefEEA, true)
	if !ok {
		return 0, 0, apperr.ErrNoCommonAlgorithm
	}
	return eea, eia, nil
}
