package infrastructure

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "crvx"

// Metrics holds the render counters. They are written to a node-exporter
// style textfile after each render rather than scraped.
type Metrics struct {
	registry *prometheus.Registry

	renders        *prometheus.CounterVec
	rowsDropped    *prometheus.CounterVec
	sourceFetches  *prometheus.CounterVec
	renderDuration prometheus.Histogram
}

// NewMetrics creates the render metrics on a private registry
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "renders_total",
			Help:      "Pipeline renders by outcome.",
		}, []string{"status"}),
		rowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "rows_dropped_total",
			Help:      "Rows dropped for missing values, by table.",
		}, []string{"table"}),
		sourceFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "source_fetches_total",
			Help:      "Spreadsheet pulls by cache result.",
		}, []string{"result"}),
		renderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "render_duration_seconds",
			Help:      "Wall time of a full render.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	m.registry.MustRegister(m.renders, m.rowsDropped, m.sourceFetches, m.renderDuration)
	return m
}

// RecordRender records the outcome and duration of one render
func (m *Metrics) RecordRender(status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.renders.WithLabelValues(status).Inc()
	m.renderDuration.Observe(elapsed.Seconds())
}

// RecordRowsDropped adds dropped rows for a table
func (m *Metrics) RecordRowsDropped(table string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.rowsDropped.WithLabelValues(table).Add(float64(n))
}

// RecordFetch counts a source pull; result is "hit", "miss" or "error"
func (m *Metrics) RecordFetch(result string) {
	if m == nil {
		return
	}
	m.sourceFetches.WithLabelValues(result).Inc()
}

// Gatherer exposes the registry, mainly for tests
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile writes the current metric values in the text exposition format
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
