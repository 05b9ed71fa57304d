// Package emm はEMM手続きコアで扱うイベント、原因値、状態遷移を定義する。
package emm

import (
	"github.com/oyaguma3/mme-emm-core/internal/ue"
)

// EventKind はルーターに投入されるイベント種別
type EventKind string

const (
	// 無線側からのイベント
	EventInitialUEMessage       EventKind = "INITIAL_UE_MESSAGE"
	EventUplinkNAS              EventKind = "UPLINK_NAS"
	EventUECapabilityInfo       EventKind = "UE_CAPABILITY_INFO"
	EventContextSetupResponse   EventKind = "CONTEXT_SETUP_RESPONSE"
	EventContextSetupFailure    EventKind = "CONTEXT_SETUP_FAILURE"
	EventContextReleaseRequest  EventKind = "CONTEXT_RELEASE_REQUEST"
	EventContextReleaseComplete EventKind = "CONTEXT_RELEASE_COMPLETE"

	// コラボレータ応答
	EventAuthInfoAnswer        EventKind = "AUTH_INFO_ANSWER"
	EventUpdateLocationAnswer  EventKind = "UPDATE_LOCATION_ANSWER"
	EventCreateSessionResponse EventKind = "CREATE_SESSION_RESPONSE"
	EventDeleteSessionResponse EventKind = "DELETE_SESSION_RESPONSE"

	// 内部イベント
	EventTimerExpiry EventKind = "TIMER_EXPIRY"
)

// Event はルーターが逐次処理する1件の入力
type Event struct {
	Kind EventKind

	// Handle は対象コンテキスト。初期UEメッセージでは0、
	// コラボレータ応答では相関解決後にルーターが設定する。
	Handle ue.Handle
	Radio  ue.RadioRef
	PLMN   string
	NAS    []byte

	// RadioCause は無線側から通知された理由
	RadioCause string
	RadioCap   []byte

	RequestID string
	Answer    *Answer

	TimerID ue.TimerID
}

// IsAnswer はコラボレータ応答イベントかどうかを返す
func (e Event) IsAnswer() bool {
	switch e.Kind {
	case EventAuthInfoAnswer, EventUpdateLocationAnswer,
		EventCreateSessionResponse, EventDeleteSessionResponse:
		return true
	}
	return false
}

// Answer はコラボレータ応答の内容。Errがnilなら成功。
type Answer struct {
	Err error

	// 認証情報応答
	Vector *ue.AuthVector

	// 位置登録応答
	APN    string
	MSISDN string

	// セッション作成応答
	SessionID string
	BearerID  uint8
	UEAddr    string
}

// OK は成功応答かどうかを返す
func (a *Answer) OK() bool {
	return a != nil && a.Err == nil
}
