package middleware

import (
	"github.com/gin-gonic/gin"

	"pos-nfc-api/internal/metrics"
)

// Chain returns the server middleware in order. Metrics is skipped when m
// is nil and RateLimit when rps is not positive. Metrics runs before the
// limiter so rejected requests are counted.
func Chain(m *metrics.Metrics, rps float64, burst int) []gin.HandlerFunc {
	chain := []gin.HandlerFunc{RequestID(), Logging(), gin.Recovery()}
	if m != nil {
		chain = append(chain, Metrics(m))
	}
	if rps > 0 {
		chain = append(chain, RateLimit(rps, burst))
	}
	return chain
}
