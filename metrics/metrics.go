/*
Package metrics exposes process counters for the engine.

PURPOSE:
  Operational visibility over the scanning and mutation paths: how many
  tags were recognized (and of which kind), how many were dropped, and
  how often bakes fail on stock. Served from the API's /metrics endpoint.
*/
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the engine's counters on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	tagsScanned  *prometheus.CounterVec
	tagsSkipped  *prometheus.CounterVec
	transactions prometheus.Counter
	bakes        *prometheus.CounterVec
}

// New creates a registry with all engine counters registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		tagsScanned: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "life_engine_tags_scanned_total",
			Help: "Structured tags recognized in chat text, by kind.",
		}, []string{"kind"}),
		tagsSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "life_engine_tags_skipped_total",
			Help: "Recognized tags dropped without effect, by kind.",
		}, []string{"kind"}),
		transactions: factory.NewCounter(prometheus.CounterOpts{
			Name: "life_engine_transactions_total",
			Help: "Ledger transactions recorded.",
		}),
		bakes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "life_engine_bakes_total",
			Help: "Bake attempts by outcome.",
		}, []string{"outcome"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// The increment helpers are nil-safe so wiring metrics stays optional.

func (m *Metrics) TagScanned(kind string) {
	if m != nil {
		m.tagsScanned.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) TagSkipped(kind string) {
	if m != nil {
		m.tagsSkipped.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) TransactionRecorded() {
	if m != nil {
		m.transactions.Inc()
	}
}

func (m *Metrics) BakeAttempt(ok bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "insufficient"
	}
	m.bakes.WithLabelValues(outcome).Inc()
}
