// Package metrics holds the prometheus collectors of the fleet server.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	gateDecisions   *prometheus.CounterVec
	activityUpdates *prometheus.CounterVec
	billingEvents   *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		gateDecisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fleet_gate_decisions_total",
				Help: "Requests evaluated by the tenant gate, by outcome",
			},
			[]string{"outcome"},
		),
		activityUpdates: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fleet_activity_updates_total",
				Help: "Tenant activity timestamp updates, by result",
			},
			[]string{"result"},
		),
		billingEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fleet_billing_events_total",
				Help: "Billing provider events received, by type and result",
			},
			[]string{"type", "result"},
		),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the collected metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) GateDecision(outcome string) {
	if m == nil {
		return
	}
	m.gateDecisions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ActivityUpdate(result string) {
	if m == nil {
		return
	}
	m.activityUpdates.WithLabelValues(result).Inc()
}

func (m *Metrics) BillingEvent(eventType, result string) {
	if m == nil {
		return
	}
	m.billingEvents.WithLabelValues(eventType, result).Inc()
}
