package coordinator

import (
	"context"

	"github.com/oyaguma3/mme-emm-core/internal/emm"
	"github.com/oyaguma3/mme-emm-core/internal/ue"
)

//go:generate mockgen -source=interfaces.go -destination=../mocks/mock_requester.go -package=mocks

// Requester はコラボレータへの非同期要求を発行する。
// 各メソッドは相関IDを即座に返し、応答はイベントとして後から投入される。
type Requester interface {
	RequestAuthInfo(h ue.Handle, imsi, plmn string) string
	RequestUpdateLocation(h ue.Handle, imsi, plmn string) string
	RequestCreateSession(h ue.Handle, p SessionParams) string
	RequestDeleteSession(h ue.Handle, imsi, sessionID string) string
}

// Poster はイベントをルーターへ投入する
type Poster func(ctx context.Context, ev emm.Event) error

// SessionParams はセッション作成要求のパラメータ
type SessionParams struct {
	IMSI     string
	MSISDN   string
	APN      string
	PLMN     string
	BearerID uint8
}
