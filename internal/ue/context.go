// Package ue は加入者コンテキストとその集約カウンタを管理する。
package ue

import "time"

// Handle はMME側UE識別子（MME UE S1AP ID相当）
type Handle uint32

// TimerID はタイマー識別子。0は未設定を表す。
type TimerID uint64

// AttachState はEMM登録状態
type AttachState string

const (
	AttachUnregistered    AttachState = "UNREGISTERED"
	AttachCommonProcedure AttachState = "COMMON_PROCEDURE_PENDING"
	AttachRegistered      AttachState = "REGISTERED"
)

// ConnState はECM接続状態
type ConnState string

const (
	ConnConnected ConnState = "CONNECTED"
	ConnIdle      ConnState = "IDLE"
)

// RadioRef は無線側でのUE参照（アソシエーションとeNB UE ID）
type RadioRef struct {
	AssocID uint32
	EnbUeID uint32
}

// AuthVector はHSSから取得した認証ベクタ
type AuthVector struct {
	RAND  []byte
	AUTN  []byte
	XRES  []byte
	KASME []byte
}

// SecurityContext はNASセキュリティコンテキスト
type SecurityContext struct {
	KSI    uint8
	EEA    uint8
	EIA    uint8
	KASME  []byte
	Active bool
}

// Capability はUEのセキュリティ能力（ビットiがアルゴリズムiに対応）
type Capability struct {
	EEA uint8
	EIA uint8
}

// Bearer はEPSベアラ
type Bearer struct {
	ID        uint8
	SessionID string
	APN       string
	UEAddr    string
	Default   bool
}

// Context は加入者1件分のコンテキスト
type Context struct {
	Handle Handle
	Radio  RadioRef

	IMSI string
	GUTI string
	PLMN string

	Attach AttachState
	Conn   ConnState
	Proc   Subprocedure

	Capability   Capability
	RadioCapSize int
	Vector       *AuthVector
	Security     SecurityContext
	APN          string
	MSISDN       string
	Bearers      []Bearer

	// PendingRequest は応答待ちのコラボレータ要求の相関ID
	PendingRequest string
	// ReleasePending は解放処理中であることを示す
	ReleasePending bool
	// ReleaseCommanded は無線側へコンテキスト解放を要求済みであることを示す
	ReleaseCommanded bool
	// DetachAccept はセッション削除後にDETACH ACCEPTを送信すべきことを示す
	DetachAccept bool
	// ReleaseCause は無線側へ通知する解放理由
	ReleaseCause string

	CreatedAt time.Time
}

// DefaultBearers はデフォルトベアラ数を返す
func (c *Context) DefaultBearers() int {
	n := 0
	for _, b := range c.Bearers {
		if b.Default {
			n++
		}
	}
	return n
}

// Busy はサブ手続き実行中またはコラボレータ応答待ちかどうかを返す
func (c *Context) Busy() bool {
	return c.Proc.Active() || c.PendingRequest != ""
}
