// Package observability defines the Prometheus metrics of the HTTP service.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "lunas"

// Metrics holds the Prometheus counters, histograms, and gauges for the almanac service.
type Metrics struct {
	// HTTP metrics.
	Requests        *prometheus.CounterVec   // labels: route, status
	RequestDuration *prometheus.HistogramVec // labels: route

	// Computation metrics.
	ComputeDuration *prometheus.HistogramVec // labels: kind={snapshot,phases}
	ComputeErrors   *prometheus.CounterVec   // labels: kind, reason={input,range,unavailable,timeout,internal}
	SnapshotCache   *prometheus.CounterVec   // labels: result={hit,miss,shared}

	EphemerisReady prometheus.Gauge
}

func newMetrics(withHelp bool) *Metrics {
	help := func(s string) string {
		if withHelp {
			return s
		}
		return ""
	}
	return &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      help("HTTP requests by route and status code."),
		}, []string{"route", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      help("HTTP request latency by route."),
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"route"}),
		ComputeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "compute_duration_seconds",
			Help:      help("Almanac computation time by kind."),
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"kind"}),
		ComputeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compute_errors_total",
			Help:      help("Failed almanac computations by kind and reason."),
		}, []string{"kind", "reason"}),
		SnapshotCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_cache_total",
			Help:      help("Snapshot cache lookups by result."),
		}, []string{"result"}),
		EphemerisReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ephemeris_ready",
			Help:      help("1 once the ephemeris provider is loaded, 0 before."),
		}),
	}
}

// NewMetrics creates and registers all service metrics with reg. A nil
// reg means the default Prometheus registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := newMetrics(true)
	reg.MustRegister(
		m.Requests,
		m.RequestDuration,
		m.ComputeDuration,
		m.ComputeErrors,
		m.SnapshotCache,
		m.EphemerisReady,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics(false)
}
