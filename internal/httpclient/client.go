// Package httpclient はコラボレータHTTP APIへの共通呼び出し処理（resty + Circuit Breaker）を提供する。
package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"

	"github.com/oyaguma3/mme-emm-core/internal/config"
	"github.com/oyaguma3/mme-emm-core/pkg/httputil"
)

// HTTPヘッダ名
const (
	HeaderTraceID     = httputil.TraceIDHeader
	HeaderContentType = "Content-Type"
	ContentTypeJSON   = "application/json"
)

// Client はCircuit Breaker付きのJSON APIクライアント
type Client struct {
	name       string
	httpClient *resty.Client
	cb         *gobreaker.CircuitBreaker
	baseURL    string
}

// New は新しいClientを生成する。nameはCircuit Breaker名とログに使用する。
func New(name, baseURL string) *Client {
	httpClient := resty.New().
		SetTimeout(config.CollaboratorRequestTimeout).
		SetHeader(HeaderContentType, ContentTypeJSON)

	cbSettings := gobreaker.Settings{
		Name:        name,
		MaxRequests: config.CBMaxRequests,
		Interval:    config.CBInterval,
		Timeout:     config.CBTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(config.CBFailureThreshold)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			switch to {
			case gobreaker.StateOpen:
				slog.Warn("circuit breaker opened",
					"event_id", "CB_OPEN",
					"cb_name", name,
					"from", from.String(),
				)
			case gobreaker.StateHalfOpen:
				slog.Info("circuit breaker half-open",
					"event_id", "CB_HALF_OPEN",
					"cb_name", name,
				)
			case gobreaker.StateClosed:
				slog.Info("circuit breaker closed",
					"event_id", "CB_CLOSE",
					"cb_name", name,
				)
			}
		},
	}

	return &Client{
		name:       name,
		httpClient: httpClient,
		cb:         gobreaker.NewCircuitBreaker(cbSettings),
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Name はクライアント名を返す
func (c *Client) Name() string {
	return c.name
}

// Do はリクエストを送信し、2xx応答のボディを返す。
// 応答期限はctxで制御する。Trace IDがctxに設定されていない場合はErrTraceIDMissingを返す。
func (c *Client) Do(ctx context.Context, method, path string, body any) ([]byte, error) {
	traceID, ok := TraceID(ctx)
	if !ok {
		return nil, ErrTraceIDMissing
	}

	start := time.Now()

	result, err := c.cb.Execute(func() (any, error) {
		req := c.httpClient.R().
			SetContext(ctx).
			SetHeader(HeaderTraceID, traceID)
		if body != nil {
			req.SetBody(body)
		}

		resp, err := req.Execute(method, c.baseURL+path)
		if err != nil {
			return nil, &ConnectionError{Cause: err}
		}

		latencyMs := time.Since(start).Milliseconds()
		statusCode := resp.StatusCode()

		// CB失敗判定対象: 5xx（501除く）
		if statusCode >= 500 && statusCode != 501 {
			apiErr := parseAPIError(c.name, statusCode, resp.Body())
			slog.Error("collaborator api error",
				"event_id", "COLLAB_API_ERR",
				"collaborator", c.name,
				"trace_id", traceID,
				"error", apiErr.Error(),
				"http_status", statusCode,
				"latency_ms", latencyMs,
			)
			return nil, apiErr
		}

		// CB失敗判定対象外のエラー: 4xx, 501
		if statusCode < 200 || statusCode >= 300 {
			apiErr := parseAPIError(c.name, statusCode, resp.Body())
			slog.Warn("collaborator api rejected request",
				"event_id", "COLLAB_API_REJECT",
				"collaborator", c.name,
				"trace_id", traceID,
				"error", apiErr.Error(),
				"http_status", statusCode,
				"latency_ms", latencyMs,
			)
			return apiErr, nil
		}

		slog.Debug("collaborator api success",
			"collaborator", c.name,
			"trace_id", traceID,
			"latency_ms", latencyMs,
		)
		return resp.Body(), nil
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, ErrCircuitOpen
		}
		return nil, err
	}

	if apiErr, ok := result.(*APIError); ok {
		return nil, apiErr
	}
	b, ok := result.([]byte)
	if !ok {
		return nil, ErrInvalidResponse
	}
	return b, nil
}

func parseAPIError(name string, statusCode int, body []byte) *APIError {
	var details ProblemDetails
	if err := json.Unmarshal(body, &details); err == nil && details.Title != "" {
		return &APIError{
			Collaborator: name,
			StatusCode:   statusCode,
			Message:      details.Title,
			Details:      &details,
		}
	}
	return &APIError{
		Collaborator: name,
		StatusCode:   statusCode,
		Message:      string(body),
	}
}

// traceIDKey はコンテキストからTrace IDを取得するためのキー型
type traceIDKey struct{}

// WithTraceID はコンテキストにTrace IDを設定する。
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

// TraceID はコンテキストからTrace IDを取得する。
func TraceID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(traceIDKey{}).(string)
	return id, ok && id != ""
}
