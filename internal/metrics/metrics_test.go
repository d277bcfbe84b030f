package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveProbe(t *testing.T) {
	m := New()
	m.ObserveProbe("API", true, 120)
	m.ObserveProbe("API", false, 0)
	m.ObserveProbe("API", false, 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Probes.WithLabelValues("API", "up")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Probes.WithLabelValues("API", "down")))
}

func TestHandler_ExposesAppMetrics(t *testing.T) {
	m := New()
	m.Targets.Set(3)
	m.AppendErrors.Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), "statuspage_targets 3")
	assert.Contains(t, string(body), "statuspage_check_append_errors_total 1")
}

func TestNew_IndependentRegistries(t *testing.T) {
	// would panic on duplicate registration with the global registry
	a, b := New(), New()
	a.Targets.Set(1)
	assert.Equal(t, 0.0, testutil.ToFloat64(b.Targets))
}
