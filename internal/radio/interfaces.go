package radio

import (
	"github.com/oyaguma3/mme-emm-core/internal/emm"
	"github.com/oyaguma3/mme-emm-core/internal/ue"
)

//go:generate mockgen -source=interfaces.go -destination=../mocks/mock_downlink.go -package=mocks

// Downlink は無線側コラボレータへの送信インターフェース
type Downlink interface {
	// SendNAS は下りNASメッセージを送信する
	SendNAS(ref ue.RadioRef, h ue.Handle, nas []byte) error
	// RequestContextSetup は無線コンテキスト設定を要求する。nasは同送するNASメッセージ（省略可）。
	RequestContextSetup(ref ue.RadioRef, h ue.Handle, nas []byte) error
	// RequestContextRelease は無線コンテキスト解放を要求する
	RequestContextRelease(ref ue.RadioRef, h ue.Handle, cause emm.ReleaseCause) error
}
