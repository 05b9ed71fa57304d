// Package apperr はEMM手続きコア共通のエラー分類を提供する。
package apperr

import "errors"

// 入力関連エラー
var (
	// ErrMalformedInput はNASメッセージ等の解析失敗
	ErrMalformedInput = errors.New("malformed input")
	// ErrUnexpectedMessage は現在の手続き状態で受理できないメッセージ
	ErrUnexpectedMessage = errors.New("unexpected message for procedure state")
	// ErrUnknownContext は対象の加入者コンテキストが存在しない
	ErrUnknownContext = errors.New("unknown subscriber context")
)

// コラボレータ関連エラー
var (
	// ErrCollaboratorFailure はコラボレータからの否定応答
	ErrCollaboratorFailure = errors.New("collaborator failure")
	// ErrCollaboratorTimeout はコラボレータ応答期限超過
	ErrCollaboratorTimeout = errors.New("collaborator timeout")
	// ErrStaleCorrelation は既に解決済み、または対象外の相関IDを持つ応答
	ErrStaleCorrelation = errors.New("stale correlation")
)

// 手続き関連エラー
var (
	// ErrRetryExhausted は再送上限到達
	ErrRetryExhausted = errors.New("retransmission limit exhausted")
	// ErrAuthResMismatch はRESとXRESの不一致
	ErrAuthResMismatch = errors.New("authentication response mismatch")
	// ErrNoCommonAlgorithm はUEと共通のセキュリティアルゴリズムがない
	ErrNoCommonAlgorithm = errors.New("no common security algorithm")
)

// コンテキスト管理関連エラー
var (
	// ErrDuplicateContext は同一識別子のコンテキストが既に存在する
	ErrDuplicateContext = errors.New("duplicate context")
	// ErrProcedureActive はサブ手続き実行中のコンテキスト破棄要求
	ErrProcedureActive = errors.New("procedure active")
)
