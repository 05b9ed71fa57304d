// Package hss は認証コラボレータ（HSS側API）のクライアントを提供する。
package hss

import "context"

//go:generate mockgen -source=interfaces.go -destination=../mocks/mock_hss.go -package=mocks -mock_names=Client=MockHSSClient

// Client はHSS側APIとの通信インターフェースを定義する
type Client interface {
	// AuthenticationInfo は認証ベクタを取得する
	AuthenticationInfo(ctx context.Context, req *AuthInfoRequest) (*AuthInfo, error)
	// UpdateLocation は位置登録を行い、加入者データを取得する
	UpdateLocation(ctx context.Context, req *UpdateLocationRequest) (*Subscription, error)
}
