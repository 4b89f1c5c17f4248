package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the prometheus collectors of the service. A Metrics built
// with metrics disabled accepts every call and records nothing.
type Metrics struct {
	remoteCalls    *prometheus.CounterVec
	remoteDuration *prometheus.HistogramVec
	aggregations   *prometheus.CounterVec
	snapshotWrites *prometheus.CounterVec
	planItems      *prometheus.GaugeVec

	registry *prometheus.Registry
}

// NewMetrics creates the collectors on a private registry.
func NewMetrics(cfg MetricsConfig) *Metrics {
	if !cfg.Enabled {
		return &Metrics{}
	}
	ns := cfg.Namespace
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		remoteCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "remote_calls_total",
				Help:      "Remote API calls by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		remoteDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: ns,
				Name:      "remote_call_duration_seconds",
				Help:      "Remote API call latency including retries",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		aggregations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "aggregations_total",
				Help:      "Release plan aggregations by outcome",
			},
			[]string{"outcome"},
		),
		snapshotWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "snapshot_writes_total",
				Help:      "Snapshot cache writes by outcome",
			},
			[]string{"outcome"},
		),
		planItems: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: ns,
				Name:      "release_plan_items",
				Help:      "Items in the last built release plan",
			},
			[]string{"kind"},
		),
	}

	registry.MustRegister(
		m.remoteCalls,
		m.remoteDuration,
		m.aggregations,
		m.snapshotWrites,
		m.planItems,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Enabled reports whether the collectors are live.
func (m *Metrics) Enabled() bool {
	return m.registry != nil
}

func (m *Metrics) ObserveRemoteCall(operation, outcome string, d time.Duration) {
	if m.remoteCalls == nil {
		return
	}
	m.remoteCalls.WithLabelValues(operation, outcome).Inc()
	m.remoteDuration.WithLabelValues(operation).Observe(d.Seconds())
}

func (m *Metrics) RecordAggregation(outcome string) {
	if m.aggregations == nil {
		return
	}
	m.aggregations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordSnapshotWrite(outcome string) {
	if m.snapshotWrites == nil {
		return
	}
	m.snapshotWrites.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordPlanItems(kind string, n int) {
	if m.planItems == nil {
		return
	}
	m.planItems.WithLabelValues(kind).Set(float64(n))
}

// Handler returns the exposition handler, or 404 when metrics are disabled.
func (m *Metrics) Handler() http.Handler {
	if m.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
