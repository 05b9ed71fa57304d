package emm

import (
	"fmt"

	"github.com/oyaguma3/mme-emm-core/internal/ue"
	"github.com/oyaguma3/mme-emm-core/pkg/apperr"
)

// AttachTrigger は登録状態遷移のトリガー
type AttachTrigger string

const (
	TriggerAttachRequested AttachTrigger = "ATTACH_REQUESTED" // ATTACH REQUEST受理
	TriggerAttachCompleted AttachTrigger = "ATTACH_COMPLETED" // ATTACH COMPLETE受信
	TriggerAttachAborted   AttachTrigger = "ATTACH_ABORTED"   // 手続き失敗
	TriggerDetached        AttachTrigger = "DETACHED"         // デタッチ・解放
)

// attachTransitions は登録状態の遷移テーブル
var attachTransitions = map[ue.AttachState]map[AttachTrigger]ue.AttachState{
	ue.AttachUnregistered: {
		TriggerAttachRequested: ue.AttachCommonProcedure,
		TriggerAttachAborted:   ue.AttachUnregistered,
		TriggerDetached:        ue.AttachUnregistered,
	},
	ue.AttachCommonProcedure: {
		TriggerAttachCompleted: ue.AttachRegistered,
		TriggerAttachAborted:   ue.AttachUnregistered,
		TriggerDetached:        ue.AttachUnregistered,
	},
	ue.AttachRegistered: {
		TriggerAttachAborted: ue.AttachUnregistered,
		TriggerDetached:      ue.AttachUnregistered,
	},
}

// NextAttachState は遷移後の登録状態を返す。
// 不正な遷移の場合はErrUnexpectedMessageを返す。
func NextAttachState(current ue.AttachState, trigger AttachTrigger) (ue.AttachState, error) {
	if next, ok := attachTransitions[current][trigger]; ok {
		return next, nil
	}
	return current, fmt.Errorf("%w: attach state %s does not accept %s",
		apperr.ErrUnexpectedMessage, current, trigger)
}

// procTransitions はサブ手続きの進行順序
var procTransitions = map[ue.ProcKind][]ue.ProcKind{
	ue.ProcNone:                 {ue.ProcIdentification, ue.ProcAuthentication},
	ue.ProcIdentification:       {ue.ProcAuthentication},
	ue.ProcAuthentication:       {ue.ProcSecurityMode},
	ue.ProcSecurityMode:         {ue.ProcSessionEstablishment},
	ue.ProcSessionEstablishment: {},
}

// ValidateProcTransition はサブ手続きの遷移が許可されているか検証する。
// NONEへの遷移（完了・中断）は常に許可される。
func ValidateProcTransition(from, to ue.ProcKind) error {
	if to == ue.ProcNone {
		return nil
	}
	if from == "" {
		from = ue.ProcNone
	}
	for _, k := range procTransitions[from] {
		if k == to {
			return nil
		}
	}
	return fmt.Errorf("%w: procedure %s cannot follow %s", apperr.ErrUnexpectedMessage, to, from)
}
