package radio

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/oyaguma3/mme-emm-core/internal/emm"
	"github.com/oyaguma3/mme-emm-core/internal/ue"
	"github.com/oyaguma3/mme-emm-core/pkg/apperr"
)

// EnvelopeType は無線側メッセージ種別
type EnvelopeType uint8

// 上り（eNB→MME）
const (
	EnvInitialUEMessage       EnvelopeType = 1
	EnvUplinkNAS              EnvelopeType = 2
	EnvUECapabilityInfo       EnvelopeType = 3
	EnvContextSetupResponse   EnvelopeType = 4
	EnvContextSetupFailure    EnvelopeType = 5
	EnvContextReleaseRequest  EnvelopeType = 6
	EnvContextReleaseComplete EnvelopeType = 7
)

// 下り（MME→eNB）
const (
	EnvDownlinkNAS           EnvelopeType = 16
	EnvContextSetupRequest   EnvelopeType = 17
	EnvContextReleaseCommand EnvelopeType = 18
)

var uplinkKinds = map[EnvelopeType]emm.EventKind{
	EnvInitialUEMessage:       emm.EventInitialUEMessage,
	EnvUplinkNAS:              emm.EventUplinkNAS,
	EnvUECapabilityInfo:       emm.EventUECapabilityInfo,
	EnvContextSetupResponse:   emm.EventContextSetupResponse,
	EnvContextSetupFailure:    emm.EventContextSetupFailure,
	EnvContextReleaseRequest:  emm.EventContextReleaseRequest,
	EnvContextReleaseComplete: emm.EventContextReleaseComplete,
}

// Envelope は無線側とのメッセージ単位
type Envelope struct {
	Type     EnvelopeType `cbor:"1,keyasint"`
	EnbUeID  uint32       `cbor:"2,keyasint,omitempty"`
	MmeUeID  uint32       `cbor:"3,keyasint,omitempty"`
	PLMN     string       `cbor:"4,keyasint,omitempty"`
	NAS      []byte       `cbor:"5,keyasint,omitempty"`
	Cause    string       `cbor:"6,keyasint,omitempty"`
	RadioCap []byte       `cbor:"7,keyasint,omitempty"`
}

var (
	envEncMode cbor.EncMode
	envDecMode cbor.DecMode
)

func init() {
	var err error
	envEncMode, err = cbor.EncOptions{Sort: cbor.SortCanonical}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR encoder mode: %v", err))
	}
	envDecMode, err = cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyEnforcedAPF,
		IndefLength: cbor.IndefLengthForbidden,
		MaxMapPairs: 16,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR decoder mode: %v", err))
	}
}

// EncodeEnvelope はEnvelopeをエンコードする
func EncodeEnvelope(env *Envelope) ([]byte, error) {
	b, err := envEncMode.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("failed to encode envelope: %w", err)
	}
	return b, nil
}

// DecodeEnvelope はバイト列をEnvelopeにデコードする
func DecodeEnvelope(b []byte) (*Envelope, error) {
	var env Envelope
	if err := envDecMode.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrMalformedInput, err)
	}
	return &env, nil
}

// ToEvent は上りEnvelopeをイベントに変換する
func (env *Envelope) ToEvent(assocID uint32) (emm.Event, error) {
	kind, ok := uplinkKinds[env.Type]
	if !ok {
		return emm.Event{}, apperr.NewProtocolError("type", fmt.Sprintf("not an uplink envelope: %d", env.Type))
	}
	if kind != emm.EventInitialUEMessage && env.MmeUeID == 0 {
		return emm.Event{}, apperr.NewProtocolError("mme_ue_id", "missing")
	}

	return emm.Event{
		Kind:       kind,
		Handle:     ue.Handle(env.MmeUeID),
		Radio:      ue.RadioRef{AssocID: assocID, EnbUeID: env.EnbUeID},
		PLMN:       env.PLMN,
		NAS:        env.NAS,
		RadioCause: env.Cause,
		RadioCap:   env.RadioCap,
	}, nil
}
