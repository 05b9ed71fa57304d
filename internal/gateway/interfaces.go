// Package gateway はセッションコラボレータ（ゲートウェイ側API）のクライアントを提供する。
package gateway

import "context"

//go:generate mockgen -source=interfaces.go -destination=../mocks/mock_gateway.go -package=mocks -mock_names=Client=MockGatewayClient

// Client はゲートウェイ側APIとの通信インターフェースを定義する
type Client interface {
	// CreateSession はデフォルトベアラを含むセッションを作成する
	CreateSession(ctx context.Context, req *CreateSessionRequest) (*Session, error)
	// DeleteSession はセッションを削除する
	DeleteSession(ctx context.Context, sessionID string) error
}
