package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"pos-nfc-api/internal/metrics"
)

// Metrics records request counts and latency labelled by the matched
// route template, so /cards/7 and /cards/8 share one series.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTP(c.Request.Method, route, c.Writer.Status(), time.Since(start).Seconds())
	}
}
