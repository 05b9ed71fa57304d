package nas

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/oyaguma3/mme-emm-core/pkg/apperr"
)

// Codec はNASメッセージのエンコード・デコードを行う
type Codec interface {
	Encode(m *Message) ([]byte, error)
	Decode(b []byte) (*Message, error)
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
	}
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:        cbor.DupMapKeyEnforcedAPF,
		IndefLength:      cbor.IndefLengthForbidden,
		MaxArrayElements: 64,
		MaxMapPairs:      32,
	}
	decMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR decoder mode: %v", err))
	}
}

// CBORCodec はCBORによるCodec実装
type CBORCodec struct{}

// NewCodec は新しいCBORCodecを生成する
func NewCodec() *CBORCodec {
	return &CBORCodec{}
}

// Encode はメッセージをエンコードする
func (CBORCodec) Encode(m *Message) ([]byte, error) {
	if m == nil || typeNames[m.Type] == "" {
		return nil, apperr.NewProtocolError("type", "unknown message type")
	}
	b, err := encMode.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", m.Type, err)
	}
	return b, nil
}

// Decode はバイト列をメッセージにデコードし、必須項目を検証する。
// 失敗時のエラーはapperr.ErrMalformedInputに一致する。
func (CBORCodec) Decode(b []byte) (*Message, error) {
	if len(b) == 0 {
		return nil, apperr.NewProtocolError("message", "empty")
	}
	var m Message
	if err := decMode.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrMalformedInput, err)
	}
	if err := Validate(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate はメッセージ種別ごとの必須項目を検証する
func Validate(m *Message) error {
	if typeNames[m.Type] == "" {
		return apperr.NewProtocolError("type", fmt.Sprintf("unknown message type 0x%02x", uint8(m.Type)))
	}

	switch m.Type {
	case TypeAttachRequest:
		if m.IMSI == "" && m.GUTI == "" {
			return apperr.NewProtocolError("eps_mobile_identity", "missing")
		}
		if m.IMSI != "" && !ValidIMSI(m.IMSI) {
			return apperr.NewProtocolError("imsi", "must be 6-15 digits")
		}
		if m.Capability == nil {
			return apperr.NewProtocolError("ue_network_capability", "missing")
		}
	case TypeIdentityResponse:
		if !ValidIMSI(m.IMSI) {
			return apperr.NewProtocolError("imsi", "must be 6-15 digits")
		}
	case TypeAuthenticationResponse:
		if len(m.RES) < 4 || len(m.RES) > 16 {
			return apperr.NewProtocolError("res", "length must be 4-16 octets")
		}
	case TypeServiceRequest:
		if m.GUTI == "" {
			return apperr.NewProtocolError("guti", "missing")
		}
	}
	return nil
}

// ValidIMSI はIMSIが6〜15桁の数字かどうかを返す
func ValidIMSI(imsi string) bool {
	if len(imsi) < 6 || len(imsi) > 15 {
		return false
	}
	for _, c := range imsi {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
