package httpclient

import (
	"errors"
	"fmt"

	"github.com/oyaguma3/mme-emm-core/pkg/httputil"
)

// センチネルエラー
var (
	// ErrCircuitOpen はCircuit BreakerがOpen状態の場合のエラー
	ErrCircuitOpen = errors.New("circuit breaker is open")

	// ErrInvalidResponse はコラボレータからのレスポンスが不正な場合のエラー
	ErrInvalidResponse = errors.New("invalid response from collaborator")

	// ErrTraceIDMissing はコンテキストにTrace IDが設定されていない場合のエラー
	ErrTraceIDMissing = errors.New("trace id missing in context")
)

// ProblemDetails はRFC 7807エラーレスポンスを表す
type ProblemDetails = httputil.ProblemDetail

// APIError はHTTP APIエラーを表す
type APIError struct {
	Collaborator string
	StatusCode   int
	Message      string
	Details      *ProblemDetails
}

func (e *APIError) Error() string {
	if e.Details != nil {
		return fmt.Sprintf("%s api error: %d %s - %s", e.Collaborator, e.StatusCode, e.Details.Title, e.Details.Detail)
	}
	return fmt.Sprintf("%s api error: %d %s", e.Collaborator, e.StatusCode, e.Message)
}

// IsNotFound は対象未登録エラーかどうかを判定する
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == 404
}

// IsServerError はサーバーエラーかどうかを判定する
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500
}

// ConnectionError は接続エラーを表す
type ConnectionError struct {
	Cause error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error: %v", e.Cause)
}

func (e *ConnectionError) Unwrap() error {
	return e.Cause
}
