// Package nas はEMMメッセージカタログとそのコーデックを提供する。
package nas

// MessageType はEMMメッセージ種別（TS 24.301 9.8）
type MessageType uint8

const (
	TypeAttachRequest          MessageType = 0x41
	TypeAttachAccept           MessageType = 0x42
	TypeAttachComplete         MessageType = 0x43
	TypeAttachReject           MessageType = 0x44
	TypeDetachRequest          MessageType = 0x45
	TypeDetachAccept           MessageType = 0x46
	TypeServiceRequest         MessageType = 0x4d
	TypeAuthenticationRequest  MessageType = 0x52
	TypeAuthenticationResponse MessageType = 0x53
	TypeAuthenticationReject   MessageType = 0x54
	TypeIdentityRequest        MessageType = 0x55
	TypeIdentityResponse       MessageType = 0x56
	TypeAuthenticationFailure  MessageType = 0x5c
	TypeSecurityModeCommand    MessageType = 0x5d
	TypeSecurityModeComplete   MessageType = 0x5e
	TypeSecurityModeReject     MessageType = 0x5f
	TypeEMMStatus              MessageType = 0x60
)

var typeNames = map[MessageType]string{
	TypeAttachRequest:          "ATTACH_REQUEST",
	TypeAttachAccept:           "ATTACH_ACCEPT",
	TypeAttachComplete:         "ATTACH_COMPLETE",
	TypeAttachReject:           "ATTACH_REJECT",
	TypeDetachRequest:          "DETACH_REQUEST",
	TypeDetachAccept:           "DETACH_ACCEPT",
	TypeServiceRequest:         "SERVICE_REQUEST",
	TypeAuthenticationRequest:  "AUTHENTICATION_REQUEST",
	TypeAuthenticationResponse: "AUTHENTICATION_RESPONSE",
	TypeAuthenticationReject:   "AUTHENTICATION_REJECT",
	TypeIdentityRequest:        "IDENTITY_REQUEST",
	TypeIdentityResponse:       "IDENTITY_RESPONSE",
	TypeAuthenticationFailure:  "AUTHENTICATION_FAILURE",
	TypeSecurityModeCommand:    "SECURITY_MODE_COMMAND",
	TypeSecurityModeComplete:   "SECURITY_MODE_COMPLETE",
	TypeSecurityModeReject:     "SECURITY_MODE_REJECT",
	TypeEMMStatus:              "EMM_STATUS",
}

// String はメッセージ種別名を返す
func (t MessageType) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return "UNKNOWN"
}

// Uplink はUEから送信されるメッセージ種別かどうかを返す
func (t MessageType) Uplink() bool {
	switch t {
	case TypeAttachRequest, TypeAttachComplete, TypeDetachRequest, TypeServiceRequest,
		TypeAuthenticationResponse, TypeAuthenticationFailure, TypeIdentityResponse,
		TypeSecurityModeComplete, TypeSecurityModeReject, TypeEMMStatus:
		return true
	}
	return false
}

// IdentityType はIDENTITY REQUESTで要求する識別子種別
type IdentityType uint8

const (
	IdentityIMSI IdentityType = 1
	IdentityIMEI IdentityType = 2
)

// Capability はUEネットワーク能力（ビットiがEEAi/EIAiに対応）
type Capability struct {
	EEA uint8 `cbor:"1,keyasint"`
	EIA uint8 `cbor:"2,keyasint"`
}

// Message はEMMメッセージ。種別ごとに使用するフィールドが異なる。
type Message struct {
	Type MessageType `cbor:"1,keyasint"`

	IMSI string `cbor:"2,keyasint,omitempty"`
	GUTI string `cbor:"3,keyasint,omitempty"`

	Capability *Capability `cbor:"4,keyasint,omitempty"`

	KSI  uint8  `cbor:"5,keyasint,omitempty"`
	RAND []byte `cbor:"6,keyasint,omitempty"`
	AUTN []byte `cbor:"7,keyasint,omitempty"`
	RES  []byte `cbor:"8,keyasint,omitempty"`
	AUTS []byte `cbor:"9,keyasint,omitempty"`

	EEA uint8 `cbor:"10,keyasint,omitempty"`
	EIA uint8 `cbor:"11,keyasint,omitempty"`

	Cause        uint8        `cbor:"12,keyasint,omitempty"`
	SwitchOff    bool         `cbor:"13,keyasint,omitempty"`
	IdentityType IdentityType `cbor:"14,keyasint,omitempty"`

	// ATTACH ACCEPT
	TAIList []string `cbor:"15,keyasint,omitempty"`
	T3412   uint32   `cbor:"16,keyasint,omitempty"` // 秒
	ESM     []byte   `cbor:"17,keyasint,omitempty"`
}

// IdentityRequest はIDENTITY REQUESTを生成する
func IdentityRequest(t IdentityType) *Message {
	return &Message{Type: TypeIdentityRequest, IdentityType: t}
}

// AuthenticationRequest はAUTHENTICATION REQUESTを生成する
func AuthenticationRequest(ksi uint8, rand, autn []byte) *Message {
	return &Message{Type: TypeAuthenticationRequest, KSI: ksi, RAND: rand, AUTN: autn}
}

// AuthenticationReject はAUTHENTICATION REJECTを生成する
func AuthenticationReject() *Message {
	return &Message{Type: TypeAuthenticationReject}
}

// SecurityModeCommand はSECURITY MODE COMMANDを生成する。
// UE能力はリプレイのため含める。
func SecurityModeCommand(ksi, eea, eia uint8, replayed Capability) *Message {
	return &Message{Type: TypeSecurityModeCommand, KSI: ksi, EEA: eea, EIA: eia, Capability: &replayed}
}

// AttachAccept はATTACH ACCEPTを生成する
func AttachAccept(guti string, tai []string, t3412 uint32) *Message {
	return &Message{Type: TypeAttachAccept, GUTI: guti, TAIList: tai, T3412: t3412}
}

// AttachReject はATTACH REJECTを生成する
func AttachReject(cause uint8) *Message {
	return &Message{Type: TypeAttachReject, Cause: cause}
}

// DetachAccept はDETACH ACCEPTを生成する
func DetachAccept() *Message {
	return &Message{Type: TypeDetachAccept}
}

// Status はEMM STATUSを生成する
func Status(cause uint8) *Message {
	return &Message{Type: TypeEMMStatus, Cause: cause}
}
