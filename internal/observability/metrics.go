package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the dashboard.
type Metrics struct {
	ObservationsLoaded prometheus.Gauge

	// View computation metrics.
	ViewBuilds   *prometheus.CounterVec   // labels: view={map,class,monthly,pressure,dashboard}, outcome={success,not_found}
	ViewDuration *prometheus.HistogramVec // labels: view

	// Publishing metrics (cmd/publish).
	ObservationsPublished prometheus.Counter
	PublishErrors         prometheus.Counter
	PublishBatchSize      prometheus.Histogram
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.ObservationsLoaded,
		m.ViewBuilds,
		m.ViewDuration,
		m.ObservationsPublished,
		m.PublishErrors,
		m.PublishBatchSize,
	)

	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ObservationsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "storm_dashboard",
			Name:      "observations_loaded",
			Help:      "Number of storm observations loaded from the CSV.",
		}),
		ViewBuilds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storm_dashboard",
			Name:      "view_builds_total",
			Help:      "View computations by view and outcome.",
		}, []string{"view", "outcome"}),
		ViewDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "storm_dashboard",
			Name:      "view_duration_seconds",
			Help:      "Duration of a view computation in seconds.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}, []string{"view"}),
		ObservationsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storm_dashboard",
			Name:      "observations_published_total",
			Help:      "Total observations written to the publish topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storm_dashboard",
			Name:      "publish_errors_total",
			Help:      "Total failed batch publish attempts.",
		}),
		PublishBatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "storm_dashboard",
			Name:      "publish_batch_size",
			Help:      "Number of observations per published batch.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
	}
}
