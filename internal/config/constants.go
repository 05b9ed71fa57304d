package config

import "time"

// Valkey接続設定
const (
	ValkeyConnectTimeout = 3 * time.Second
	ValkeyCommandTimeout = 2 * time.Second
	ValkeyPoolSize       = 4
	ValkeyMaxRetries     = 3
	ValkeyMinRetryDelay  = 100 * time.Millisecond
	ValkeyMaxRetryDelay  = 1 * time.Second
)

// コラボレータHTTP接続設定
// 個々の要求の応答期限はCOLLABORATOR_DEADLINEで制御する
const (
	CollaboratorRequestTimeout = 10 * time.Second
)

// Circuit Breaker設定
const (
	CBNameHSS          = "hss-api"
	CBNameGateway      = "gateway-api"
	CBMaxRequests      = 3
	CBInterval         = 10 * time.Second
	CBTimeout          = 30 * time.Second
	CBFailureThreshold = 5
)

// EMM手続き設定
const (
	DefaultBearerID = 5
	T3412Seconds    = 3240
)

// イベントループ設定
const (
	RouterInboxSize = 1024
	QueryTimeout    = 2 * time.Second
)

// 無線側トランスポート設定
const (
	RadioMaxFrameSize = 64 * 1024
	RadioWriteTimeout = 2 * time.Second
)

// 統計情報ミラー
const (
	StatsKey     = "mme:stats"
	StatsTTL     = 5 * time.Minute
	StatsRefresh = 1 * time.Minute
)

// サーバーシャットダウン設定
const (
	ShutdownTimeout = 5 * time.Second
)
