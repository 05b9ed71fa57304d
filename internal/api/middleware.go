package api

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oyaguma3/mme-emm-core/pkg/httputil"
)

// TraceIDMiddleware はX-Trace-IDヘッダからトレースIDを取得する。
func TraceIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(httputil.TraceIDHeader)
		if traceID == "" {
			traceID = "no-trace-id"
		}
		c.Set(httputil.TraceIDKey, traceID)
		c.Next()
	}
}

// LoggingMiddleware はリクエストログを出力する。
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		traceID, _ := c.Get(httputil.TraceIDKey)
		slog.Debug("request completed",
			"event_id", "HTTP_REQUEST",
			"trace_id", traceID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"http_status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
		)
	}
}

// RecoveryMiddleware はパニックからの復旧を行う。
func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				traceID, _ := c.Get(httputil.TraceIDKey)
				slog.Error("panic recovered",
					"event_id", "HTTP_PANIC",
					"trace_id", traceID,
					"error", err,
				)
				httputil.AbortWithError(c, httputil.InternalServerError("An unexpected error occurred"))
			}
		}()
		c.Next()
	}
}
