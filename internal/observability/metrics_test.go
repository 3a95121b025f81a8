package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsObserve(t *testing.T) {
	m := NewMetricsForTesting()

	m.ObserveLocation(false)
	m.ObserveLocation(false)
	m.ObserveLocation(true)
	m.ObserveAlignment("exact")
	m.ObserveBatch(3, 250*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.LocationFetches.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LocationFetches.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Alignments.WithLabelValues("exact")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.BatchDuration))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveLocation(true)
		m.ObserveAlignment("none")
		m.ObserveBatch(1, time.Second)
	})
}
