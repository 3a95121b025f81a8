package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "weather_dashboard"

// Metrics holds the Prometheus collectors for the aggregation pipeline.
// A nil *Metrics records nothing.
type Metrics struct {
	LocationFetches *prometheus.CounterVec // labels: outcome={success,error}
	Alignments      *prometheus.CounterVec // labels: method={exact,nearest_now,none}
	BatchDuration   prometheus.Histogram
	BatchSize       prometheus.Histogram
}

func newMetrics() *Metrics {
	return &Metrics{
		LocationFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "location_fetch_total",
			Help:      "Per-location fetch-and-normalize tasks by outcome.",
		}, []string{"outcome"}),
		Alignments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alignment_total",
			Help:      "Time-axis alignments by resolution method.",
		}, []string{"method"}),
		BatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Wall time of a complete multi-location aggregation.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of locations per aggregation.",
			Buckets:   []float64{1, 5, 10, 20, 50, 100},
		}),
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.LocationFetches,
		m.Alignments,
		m.BatchDuration,
		m.BatchSize,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics so tests can build as
// many as they like.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

// ObserveLocation counts one finished per-location task.
func (m *Metrics) ObserveLocation(failed bool) {
	if m == nil {
		return
	}
	outcome := "success"
	if failed {
		outcome = "error"
	}
	m.LocationFetches.WithLabelValues(outcome).Inc()
}

// ObserveAlignment counts one alignment by method.
func (m *Metrics) ObserveAlignment(method string) {
	if m == nil {
		return
	}
	m.Alignments.WithLabelValues(method).Inc()
}

// ObserveBatch records size and duration of a finished aggregation.
func (m *Metrics) ObserveBatch(size int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.BatchSize.Observe(float64(size))
	m.BatchDuration.Observe(elapsed.Seconds())
}
