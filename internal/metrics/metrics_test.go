package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Recorders(t *testing.T) {
	m := New()

	m.APDUExchange(true)
	m.APDUExchange(true)
	m.APDUExchange(false)
	m.ModelTrained("READY")
	m.ObserveHTTP("GET", "/cards/", 200, 0.01)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.apduExchanges.WithLabelValues("true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.apduExchanges.WithLabelValues("false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.modelTraining.WithLabelValues("READY")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/cards/", "200")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.APDUExchange(true)
		m.ModelTrained("FAILED")
		m.ObserveHTTP("GET", "/", 200, 0)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.APDUExchange(true)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `posnfc_apdu_exchanges_total{success="true"} 1`)
}
