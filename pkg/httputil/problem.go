// Package httputil はHTTP関連のユーティリティを提供する。
package httputil

import "net/http"

// ContentType はRFC 7807で定義されたContent-Typeヘッダー値。
const ContentType = "application/problem+json"

// ProblemDetail はRFC 7807準拠のエラーレスポンス構造体。
// 運用APIの応答とコラボレータ応答の解析で共用する。
type ProblemDetail struct {
	Type   string `json:"type"`             // エラータイプのURI
	Title  string `json:"title"`            // エラータイトル
	Status int    `json:"status"`           // HTTPステータスコード
	Detail string `json:"detail,omitempty"` // 詳細説明
}

// NewProblemDetail は新しいProblemDetailを生成する。
func NewProblemDetail(status int, title, detail string) *ProblemDetail {
	return &ProblemDetail{
		Type:   "about:blank",
		Title:  title,
		Status: status,
		Detail: detail,
	}
}

// NotFound は404 Not Foundのエラーレスポンスを生成する。
func NotFound(detail string) *ProblemDetail {
	return NewProblemDetail(http.StatusNotFound, "Not Found", detail)
}

// InternalServerError は500 Internal Server Errorのエラーレスポンスを生成する。
func InternalServerError(detail string) *ProblemDetail {
	return NewProblemDetail(http.StatusInternalServerError, "Internal Server Error", detail)
}

// ServiceUnavailable は503 Service Unavailableのエラーレスポンスを生成する。
func ServiceUnavailable(detail string) *ProblemDetail {
	return NewProblemDetail(http.StatusServiceUnavailable, "Service Unavailable", detail)
}

// GatewayTimeout は504 Gateway Timeoutのエラーレスポンスを生成する。
func GatewayTimeout(detail string) *ProblemDetail {
	return NewProblemDetail(http.StatusGatewayTimeout, "Gateway Timeout", detail)
}
