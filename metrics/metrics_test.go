package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector("paranox", reg)

	c.AccessDecisions.WithLabelValues("medical_record", "write", "deny").Inc()
	c.AccessLogFailures.Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(c.AccessDecisions.WithLabelValues("medical_record", "write", "deny")))

	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "paranox_access_decisions_total")
	assert.Contains(t, w.Body.String(), "paranox_access_log_failures_total")
}

func TestCollectorsDoNotClashAcrossRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewCollector("paranox", prometheus.NewRegistry())
		NewCollector("paranox", prometheus.NewRegistry())
	})
}
