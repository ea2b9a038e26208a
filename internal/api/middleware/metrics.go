package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kaushick2000/cookmate-backend/internal/infrastructure/metrics"
)

// UserIDHeader 呼叫者身分標頭，驗證由上游處理
const UserIDHeader = "X-User-ID"

// Metrics 記錄 HTTP 請求指標，路徑使用路由樣板避免標籤爆量
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.RecordHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
