package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oyaguma3/mme-emm-core/internal/config"
)

// Server はHTTPサーバーを管理する。
type Server struct {
	engine *gin.Engine
	server *http.Server
	cfg    *config.Config
}

// New は新しいServerを生成する。metricsがnilの場合は/metricsを公開しない。
func New(cfg *config.Config, h *Handler, metrics http.Handler) *Server {
	gin.SetMode(cfg.GinMode)

	engine := gin.New()

	// ミドルウェア登録
	engine.Use(TraceIDMiddleware())
	engine.Use(LoggingMiddleware())
	engine.Use(RecoveryMiddleware())

	SetupRouter(engine, h, metrics)

	return &Server{
		engine: engine,
		server: &http.Server{
			Addr:    cfg.HTTPListenAddr,
			Handler: engine,
		},
		cfg: cfg,
	}
}

// SetupRouter はルーティングを設定する。
func SetupRouter(engine *gin.Engine, h *Handler, metrics http.Handler) {
	engine.GET("/health", h.HandleHealth)
	if metrics != nil {
		engine.GET("/metrics", gin.WrapH(metrics))
	}

	v1 := engine.Group("/api/v1")
	{
		v1.GET("/state", h.HandleState)
		v1.GET("/state/mirror", h.HandleStateMirror)
	}
}

// Handler はルーティング済みのhttp.Handlerを返す。
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run はサーバーを起動する。
func (s *Server) Run() error {
	slog.Info("starting server", "event_id", "HTTP_LISTEN", "addr", s.cfg.HTTPListenAddr)
	return s.server.ListenAndServe()
}

// Shutdown はサーバーをシャットダウンする。
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("shutting down server", "event_id", "HTTP_SHUTDOWN")
	return s.server.Shutdown(ctx)
}
