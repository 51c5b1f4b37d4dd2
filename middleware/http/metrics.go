package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kochabx/portfoliohub/metrics"
)

// Metrics 记录请求数与耗时，route 取注册时的路由模板
func Metrics(m *metrics.HTTPServer) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.Observe(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
