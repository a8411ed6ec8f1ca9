package middleware

import (
	"time"

	"mini_shop/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// MetricsMiddleware 记录请求数与耗时，endpoint 使用路由模板避免标签爆炸
func MetricsMiddleware(m *metrics.MetricsCollector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		m.RecordHTTPRequest(c.Request.Method, endpoint, c.Writer.Status(), time.Since(start))
	}
}
