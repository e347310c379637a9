package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := New()
	m.GateDecision("allowed")
	m.GateDecision("allowed")
	m.GateDecision("billing_inactive")
	m.ActivityUpdate("dropped")
	m.BillingEvent("checkout.session.completed", "applied")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.gateDecisions.WithLabelValues("allowed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.gateDecisions.WithLabelValues("billing_inactive")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.activityUpdates.WithLabelValues("dropped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.billingEvents.WithLabelValues("checkout.session.completed", "applied")))

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `fleet_gate_decisions_total{outcome="allowed"} 2`)
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.GateDecision("allowed")
		m.ActivityUpdate("ok")
		m.BillingEvent("x", "ignored")
	})
	assert.Nil(t, m.Registry())
}
