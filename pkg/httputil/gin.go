package httputil

import "github.com/gin-gonic/gin"

// トレースIDの受け渡し
const (
	// TraceIDHeader は運用APIとコラボレータ呼び出しで共通のトレースIDヘッダ
	TraceIDHeader = "X-Trace-ID"
	// TraceIDKey はgin.Contextに格納するトレースIDのキー
	TraceIDKey = "trace_id"
)

// WriteError はProblemDetailを書き込む。トレースIDが設定済みなら応答ヘッダへ返す。
func WriteError(c *gin.Context, problem *ProblemDetail) {
	echoTraceID(c)
	c.Header("Content-Type", ContentType)
	c.JSON(problem.Status, problem)
}

// AbortWithError はProblemDetailを書き込み、後続ハンドラを中断する。
func AbortWithError(c *gin.Context, problem *ProblemDetail) {
	echoTraceID(c)
	c.Header("Content-Type", ContentType)
	c.AbortWithStatusJSON(problem.Status, problem)
}

func echoTraceID(c *gin.Context) {
	if v, ok := c.Get(TraceIDKey); ok {
		if id, ok := v.(string); ok && id != "" {
			c.Header(TraceIDHeader, id)
		}
	}
}
