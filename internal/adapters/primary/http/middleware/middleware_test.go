package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos-nfc-api/internal/metrics"
)

func TestRequestID_GeneratesAndPropagates(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextRequestID))
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/ping", nil)
	r.ServeHTTP(w, req)

	generated := w.Header().Get(HeaderRequestID)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/ping", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	r.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(HeaderRequestID))
}

func TestMetrics_UsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := metrics.New()
	r := gin.New()
	r.Use(Metrics(m), Logging())
	r.GET("/cards/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/cards/1", "/cards/2", "/nope"} {
		req, _ := http.NewRequest("GET", path, nil)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	expected := `
# HELP posnfc_http_requests_total HTTP requests by method, route and status.
# TYPE posnfc_http_requests_total counter
posnfc_http_requests_total{method="GET",route="/cards/:id",status="200"} 2
posnfc_http_requests_total{method="GET",route="unmatched",status="404"} 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "posnfc_http_requests_total"))
}

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimit(0.001, 2))
	r.GET("/cards/", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/cards/", nil)
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/healthz", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestChain_CountsRateLimitedRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := metrics.New()
	r := gin.New()
	r.Use(Chain(m, 0.001, 1)...)
	r.GET("/cards/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		req, _ := http.NewRequest("GET", "/cards/", nil)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	expected := `
# HELP posnfc_http_requests_total HTTP requests by method, route and status.
# TYPE posnfc_http_requests_total counter
posnfc_http_requests_total{method="GET",route="/cards/",status="200"} 1
posnfc_http_requests_total{method="GET",route="/cards/",status="429"} 2
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "posnfc_http_requests_total"))
}

func TestChain_OptionalStages(t *testing.T) {
	assert.Len(t, Chain(nil, 0, 0), 3)
	assert.Len(t, Chain(metrics.New(), 0, 0), 4)
	assert.Len(t, Chain(metrics.New(), 5, 10), 5)
}
