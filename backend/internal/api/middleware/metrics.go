package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"ecs-mentoring/backend/pkg/metrics"
)

// Metrics Prometheus 请求计数与耗时
// route 使用路由模板（FullPath），未匹配路由记为 unmatched
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
