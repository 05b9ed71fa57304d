// Package engine はEMM手続き（アタッチ、認証、セキュリティモード、識別、デタッチ）の状態機械を実装する。
package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/oyaguma3/mme-emm-core/internal/config"
	"github.com/oyaguma3/mme-emm-core/internal/coordinator"
	"github.com/oyaguma3/mme-emm-core/internal/emm"
	"github.com/oyaguma3/mme-emm-core/internal/metrics"
	"github.com/oyaguma3/mme-emm-core/internal/nas"
	"github.com/oyaguma3/mme-emm-core/internal/radio"
	"github.com/oyaguma3/mme-emm-core/internal/timer"
	"github.com/oyaguma3/mme-emm-core/internal/ue"
	"github.com/oyaguma3/mme-emm-core/pkg/apperr"
	"github.com/oyaguma3/mme-emm-core/pkg/logging"
)

// 手続き名（メトリクス・ログ用）
const (
	procAttach         = "attach"
	procIdentification = "identification"
	procAuthentication = "authentication"
	procSecurityMode   = "security_mode"
	procDetach         = "detach"
	procService        = "service_request"
)

// Engine はEMM手続きエンジン。
// Handleはルーターのイベントループからのみ呼び出される。
type Engine struct {
	store    *ue.Store
	requests coordinator.Requester
	radio    radio.Downlink
	timers   timer.Scheduler
	codec    nas.Codec
	recorder metrics.Recorder
	cfg      *config.Config
	fields   *logging.Fields
	mtmsi    uint32
	now      func() time.Time
}

// NewEngine は新しいEngineを生成する。recorderがnilの場合は記録しない。
func NewEngine(
	store *ue.Store,
	requests coordinator.Requester,
	downlink radio.Downlink,
	timers timer.Scheduler,
	codec nas.Codec,
	recorder metrics.Recorder,
	cfg *config.Config,
) *Engine {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &Engine{
		store:    store,
		requests: requests,
		radio:    downlink,
		timers:   timers,
		codec:    codec,
		recorder: recorder,
		cfg:      cfg,
		fields:   logging.NewFields(logging.NewMasker(cfg.LogMaskIMSI)),
		now:      time.Now,
	}
}

// Snapshot は集約状態を返す
func (e *Engine) Snapshot() ue.Snapshot {
	return e.store.Snapshot()
}

// Handle はイベントを1件処理する。
// 失敗はすべて内部で次状態が決定され、呼び出し元へは返さない。
func (e *Engine) Handle(ev emm.Event) {
	if ev.Kind == emm.EventInitialUEMessage {
		e.handleInitialUE(ev)
		return
	}

	c, ok := e.store.Get(ev.Handle)
	if !ok {
		if ev.IsAnswer() {
			e.recorder.StaleAnswer(string(ev.Kind))
		}
		slog.Debug("対象コンテキストなし",
			"event_id", "UNKNOWN_CONTEXT",
			"mme_ue_id", uint32(ev.Handle),
			"kind", string(ev.Kind),
			"error", apperr.ErrUnknownContext,
		)
		return
	}

	switch ev.Kind {
	case emm.EventUplinkNAS:
		e.handleUplinkNAS(c, ev.NAS)
	case emm.EventUECapabilityInfo:
		c.RadioCapSize = len(ev.RadioCap)
		slog.Debug("UE無線能力受信", e.attrs("UE_CAPABILITY", c, "size", len(ev.RadioCap))...)
	case emm.EventAuthInfoAnswer:
		e.onAuthInfoAnswer(c, ev)
	case emm.EventUpdateLocationAnswer:
		e.onUpdateLocationAnswer(c, ev)
	case emm.EventCreateSessionResponse:
		e.onCreateSessionResponse(c, ev)
	case emm.EventDeleteSessionResponse:
		e.onDeleteSessionResponse(c, ev)
	case emm.EventContextSetupResponse:
		e.onContextSetupResponse(c)
	case emm.EventContextSetupFailure:
		e.onContextSetupFailure(c, ev)
	case emm.EventContextReleaseRequest:
		e.onContextReleaseRequest(c, ev)
	case emm.EventContextReleaseComplete:
		e.onContextReleaseComplete(c, ev)
	case emm.EventTimerExpiry:
		e.onTimerExpiry(c, ev)
	default:
		slog.Warn("未対応イベント", e.attrs("UNSUPPORTED_EVENT", c, "kind", string(ev.Kind))...)
	}
}

// handleUplinkNAS は既存コンテキストへの上りNASを処理する
func (e *Engine) handleUplinkNAS(c *ue.Context, raw []byte) {
	msg, err := e.codec.Decode(raw)
	if err != nil {
		slog.Warn("NASメッセージ解析失敗", e.attrs("NAS_MALFORMED", c, "error", err)...)
		e.sendStatus(c, emm.CauseInvalidMandatoryInfo)
		return
	}
	e.dispatchNAS(c, msg)
}

// dispatchNAS はメッセージ種別ごとのハンドラへ振り分ける
func (e *Engine) dispatchNAS(c *ue.Context, msg *nas.Message) {
	switch msg.Type {
	case nas.TypeAttachRequest:
		e.onAttachRequest(c, msg)
	case nas.TypeIdentityResponse:
		e.onIdentityResponse(c, msg)
	case nas.TypeAuthenticationResponse:
		e.onAuthenticationResponse(c, msg)
	case nas.TypeAuthenticationFailure:
		e.onAuthenticationFailure(c, msg)
	case nas.TypeSecurityModeComplete:
		e.onSecurityModeComplete(c)
	case nas.TypeSecurityModeReject:
		e.onSecurityModeReject(c, msg)
	case nas.TypeAttachComplete:
		e.onAttachComplete(c)
	case nas.TypeDetachRequest:
		e.onDetachRequest(c, msg)
	case nas.TypeServiceRequest:
		e.onServiceRequest(c)
	case nas.TypeEMMStatus:
		slog.Info("EMM STATUS受信", e.attrs("EMM_STATUS_RECEIVED", c, "emm_cause", msg.Cause)...)
	default:
		slog.Warn("上りで受理できないメッセージ種別", e.attrs("NAS_UNEXPECTED_TYPE", c, "type", msg.Type.String())...)
		e.sendStatus(c, emm.CauseMessageTypeNotCompatible)
	}
}

// unexpected は手続き状態に合わないメッセージを記録する
func (e *Engine) unexpected(c *ue.Context, msg nas.MessageType) {
	slog.Warn("手続き状態に合わないメッセージを破棄",
		e.attrs("NAS_UNEXPECTED", c,
			"type", msg.String(),
			"procedure", string(c.Proc.Kind),
			"stage", string(c.Proc.Stage),
			"error", apperr.ErrUnexpectedMessage,
		)...)
}

// enterProc はサブ手続きを切り替える。既存タイマーは解除される。
func (e *Engine) enterProc(c *ue.Context, kind ue.ProcKind, stage ue.Stage) {
	if err := emm.ValidateProcTransition(c.Proc.Kind, kind); err != nil {
		slog.Error("不正なサブ手続き遷移", e.attrs("PROC_TRANSITION_ERR", c, "error", err)...)
	}
	e.disarm(c)
	c.Proc.Start(kind, stage)
}

// disarm はサブ手続きのタイマーを解除する
func (e *Engine) disarm(c *ue.Context) {
	if id := c.Proc.Disarm(); id != 0 {
		e.timers.Cancel(id)
	}
}

// encode はメッセージをエンコードする。自身が組み立てたメッセージのため失敗はログのみとする。
func (e *Engine) encode(c *ue.Context, msg *nas.Message) []byte {
	b, err := e.codec.Encode(msg)
	if err != nil {
		slog.Error("NASメッセージ符号化失敗", e.attrs("NAS_ENCODE_ERR", c, "type", msg.Type.String(), "error", err)...)
		return nil
	}
	return b
}

// sendNAS は下りNASメッセージを送信し、送信したバイト列を返す
func (e *Engine) sendNAS(c *ue.Context, msg *nas.Message) []byte {
	b := e.encode(c, msg)
	if b == nil {
		return nil
	}
	if err := e.radio.SendNAS(c.Radio, c.Handle, b); err != nil {
		slog.Warn("下りNAS送信失敗", e.attrs("RADIO_SEND_ERR", c, "type", msg.Type.String(), "error", err)...)
	}
	return b
}

// sendGuarded はNASメッセージを送信し、再送用に保持してタイマーを設定する
func (e *Engine) sendGuarded(c *ue.Context, msg *nas.Message, d time.Duration) {
	c.Proc.Buffered = e.sendNAS(c, msg)
	e.arm(c, d)
}

// arm はサブ手続きのタイマーを設定する
func (e *Engine) arm(c *ue.Context, d time.Duration) {
	id := e.timers.Arm(c.Handle, d)
	c.Proc.Arm(id, e.now().Add(d))
}

func (e *Engine) sendStatus(c *ue.Context, cause emm.Cause) {
	e.sendNAS(c, nas.Status(uint8(cause)))
}

// takePending は応答が待機中の相関IDと一致する場合に待機を解除する
func (e *Engine) takePending(c *ue.Context, ev emm.Event) bool {
	if c.PendingRequest == "" || c.PendingRequest != ev.RequestID {
		e.recorder.StaleAnswer(string(ev.Kind))
		slog.Info("古いコラボレータ応答を破棄",
			e.attrs("STALE_ANSWER", c,
				"request_id", ev.RequestID,
				"pending_request_id", c.PendingRequest,
				"kind", string(ev.Kind),
				"error", apperr.ErrStaleCorrelation,
			)...)
		return false
	}
	c.PendingRequest = ""
	return true
}

// allocateGUTI はGUTIを採番してコンテキストに割り当てる
func (e *Engine) allocateGUTI(c *ue.Context) (string, error) {
	for i := 0; i < 4; i++ {
		e.mtmsi++
		if e.mtmsi == 0 {
			e.mtmsi = 1
		}
		guti := fmt.Sprintf("%s-%04x-%02x-%08x", e.cfg.PLMN, e.cfg.GroupID, e.cfg.Code, e.mtmsi)
		if err := e.store.AssignGUTI(c, guti); err == nil {
			return guti, nil
		}
	}
	return "", fmt.Errorf("%w: guti allocation", apperr.ErrDuplicateContext)
}

// attrs は加入者単位ログの属性を返す
func (e *Engine) attrs(eventID string, c *ue.Context, extra ...any) []any {
	return append(e.fields.UE(eventID, uint32(c.Handle), c.Radio.EnbUeID, c.IMSI), extra...)
}
