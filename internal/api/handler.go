// Package api は運用向けHTTP API（ヘルスチェック、状態照会、メトリクス）を提供する。
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oyaguma3/mme-emm-core/internal/config"
	"github.com/oyaguma3/mme-emm-core/internal/ue"
	"github.com/oyaguma3/mme-emm-core/pkg/httputil"
)

// StateQuerier はイベントループ経由で集約状態を照会する
type StateQuerier interface {
	Query(ctx context.Context) (ue.Snapshot, error)
}

// MirrorLoader はValkeyに書き出された集約状態を読み出す
type MirrorLoader interface {
	Load(ctx context.Context) (ue.Snapshot, error)
}

// Pinger は依存先の疎通を確認する
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler はHTTPハンドラー
type Handler struct {
	state  StateQuerier
	mirror MirrorLoader
	health Pinger
}

// NewHandler は新しいHandlerを生成する
func NewHandler(state StateQuerier, mirror MirrorLoader, health Pinger) *Handler {
	return &Handler{state: state, mirror: mirror, health: health}
}

// HandleHealth はGET /health のハンドラー。
func (h *Handler) HandleHealth(c *gin.Context) {
	if h.health != nil {
		if err := h.health.Ping(c.Request.Context()); err != nil {
			traceID, _ := c.Get(httputil.TraceIDKey)
			slog.Warn("ヘルスチェック失敗", "event_id", "HEALTH_CHECK_ERR", "trace_id", traceID, "error", err)
			httputil.WriteError(c, httputil.ServiceUnavailable("valkey unavailable"))
			return
		}
	}
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// HandleState はGET /api/v1/state のハンドラー。
// 受付済みの全イベントを処理した後の集約状態を返す。
func (h *Handler) HandleState(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), config.QueryTimeout)
	defer cancel()

	s, err := h.state.Query(ctx)
	if err != nil {
		h.writeError(c, "STATE_QUERY_ERR", err)
		return
	}
	c.JSON(http.StatusOK, toStateResponse(s))
}

// HandleStateMirror はGET /api/v1/state/mirror のハンドラー。
func (h *Handler) HandleStateMirror(c *gin.Context) {
	if h.mirror == nil {
		httputil.WriteError(c, httputil.NotFound("state mirror disabled"))
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), config.QueryTimeout)
	defer cancel()

	s, err := h.mirror.Load(ctx)
	if err != nil {
		h.writeError(c, "STATE_MIRROR_ERR", err)
		return
	}
	c.JSON(http.StatusOK, toStateResponse(s))
}

func (h *Handler) writeError(c *gin.Context, eventID string, err error) {
	traceID, _ := c.Get(httputil.TraceIDKey)
	slog.Error("状態照会失敗", "event_id", eventID, "trace_id", traceID, "error", err)

	if errors.Is(err, context.DeadlineExceeded) {
		httputil.WriteError(c, httputil.GatewayTimeout("state query timed out"))
		return
	}
	httputil.WriteError(c, httputil.ServiceUnavailable(err.Error()))
}

func toStateResponse(s ue.Snapshot) StateResponse {
	return StateResponse{
		Registered:     s.Registered,
		Connected:      s.Connected,
		Idle:           s.Idle,
		DefaultBearers: s.DefaultBearers,
		Contexts:       s.Contexts,
	}
}
