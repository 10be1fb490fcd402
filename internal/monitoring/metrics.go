// Package monitoring exposes Prometheus metrics for the launcher service.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors.
type Metrics struct {
	UtterancesTotal *prometheus.CounterVec
	ActionsTotal    *prometheus.CounterVec
	PromptsTotal    prometheus.Counter
	ScansTotal      *prometheus.CounterVec
	AppsKnown       prometheus.Gauge

	registry *prometheus.Registry
}

// New creates metrics on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		UtterancesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voxlaunch_utterances_total",
			Help: "Utterances processed, by outcome",
		}, []string{"outcome"}),
		ActionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voxlaunch_actions_total",
			Help: "Lifecycle actions performed, by kind and result",
		}, []string{"action", "result"}),
		PromptsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "voxlaunch_prompts_total",
			Help: "Confirmation prompts emitted",
		}),
		ScansTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voxlaunch_inventory_scans_total",
			Help: "Inventory scans, by result",
		}, []string{"result"}),
		AppsKnown: factory.NewGauge(prometheus.GaugeOpts{
			Name: "voxlaunch_apps_known",
			Help: "Applications in the current inventory snapshot",
		}),
		registry: reg,
	}
}

// Registry returns the backing registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordUtterance counts one handled/unhandled utterance.
func (m *Metrics) RecordUtterance(handled bool) {
	outcome := "unhandled"
	if handled {
		outcome = "handled"
	}
	m.UtterancesTotal.WithLabelValues(outcome).Inc()
}

// RecordAction counts one lifecycle action.
func (m *Metrics) RecordAction(action string, ok bool) {
	result := "failure"
	if ok {
		result = "success"
	}
	m.ActionsTotal.WithLabelValues(action, result).Inc()
}
