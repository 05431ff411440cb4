package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/appsnxt/platform/internal/infrastructure/telemetry"
)

// RequestMetrics records request latency per method, route pattern
// and status. The route pattern is used instead of the raw path to
// keep metric cardinality bounded.
func RequestMetrics(metrics *telemetry.PlatformMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			// Unmatched routes (404s) share a single bucket
			route = "unmatched"
		}

		metrics.RecordRequestDuration(
			c.Request.Context(),
			time.Since(start).Seconds(),
			c.Request.Method,
			route,
			c.Writer.Status(),
		)
	}
}
