package ue

import "time"

// ProcKind は実行中のサブ手続き種別
type ProcKind string

const (
	ProcNone                 ProcKind = "NONE"
	ProcIdentification       ProcKind = "IDENTIFICATION"
	ProcAuthentication       ProcKind = "AUTHENTICATION"
	ProcSecurityMode         ProcKind = "SECURITY_MODE"
	ProcSessionEstablishment ProcKind = "SESSION_ESTABLISHMENT"
)

// Stage はサブ手続き内の段階
type Stage string

const (
	StageNone           Stage = ""
	StageAwaitVector    Stage = "AWAIT_VECTOR"          // 認証情報応答待ち
	StageAwaitUE        Stage = "AWAIT_UE"              // UE応答待ち（NAS再送タイマー動作中）
	StageLocationUpdate Stage = "LOCATION_UPDATE"       // 位置登録応答待ち
	StageCreateSession  Stage = "CREATE_SESSION"        // セッション作成応答待ち
	StageContextSetup   Stage = "CONTEXT_SETUP"         // 無線コンテキスト設定応答待ち
	StageAttachAccept   Stage = "AWAIT_ATTACH_COMPLETE" // ATTACH COMPLETE待ち（T3450）
)

// Subprocedure は全サブ手続き共通の形
type Subprocedure struct {
	Kind     ProcKind
	Stage    Stage
	Retries  int
	TimerID  TimerID
	Deadline time.Time
	// Buffered は再送用に保持する送信済みNASメッセージ
	Buffered []byte
}

// Active はサブ手続きが実行中かどうかを返す
func (p Subprocedure) Active() bool {
	return p.Kind != "" && p.Kind != ProcNone
}

// Start は新しいサブ手続きを開始する。再送回数はリセットされる。
func (p *Subprocedure) Start(kind ProcKind, stage Stage) {
	*p = Subprocedure{Kind: kind, Stage: stage}
}

// Clear はサブ手続きを終了状態に戻す
func (p *Subprocedure) Clear() {
	*p = Subprocedure{Kind: ProcNone}
}

// Arm はタイマーを記録する
func (p *Subprocedure) Arm(id TimerID, deadline time.Time) {
	p.TimerID = id
	p.Deadline = deadline
}

// Disarm はタイマー記録を消去し、消去前のタイマーIDを返す
func (p *Subprocedure) Disarm() TimerID {
	id := p.TimerID
	p.TimerID = 0
	p.Deadline = time.Time{}
	return id
}
