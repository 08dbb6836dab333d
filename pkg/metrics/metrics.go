// Package metrics provides Prometheus instrumentation for the qflock reader.
//
// # Overview
//
// A Collector groups the metric vectors of one registry:
//   - ingested columns by mode (raw, compressed, empty)
//   - wire and declared bytes ingested
//   - ingest failures by error type
//   - ingest latency
//   - open results and accessor errors
//
// Default returns a collector registered with the Prometheus default
// registerer. Tests create their own with NewCollector(prometheus.NewRegistry()).
//
// # Basic Usage
//
//	m := metrics.Default()
//	payload, diags, err := ingest.Ingest(ctx, in, ingest.WithMetrics(m))
//
// Ingest records its own latency and counters; callers only pass the
// collector.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "qflock"

// Column ingest modes used as the "mode" label.
const (
	ModeRaw        = "raw"
	ModeCompressed = "compressed"
	ModeEmpty      = "empty"
)

// Collector holds the reader's metric vectors.
type Collector struct {
	// ColumnsIngested counts columns by ingest mode.
	ColumnsIngested *prometheus.CounterVec
	// BytesIngested counts bytes by kind ("wire" or "declared").
	BytesIngested *prometheus.CounterVec
	// IngestFailures counts failed payload constructions by error type.
	IngestFailures *prometheus.CounterVec
	// IngestDuration observes whole-payload ingest latency in seconds.
	IngestDuration prometheus.Histogram
	// ResultsOpen tracks results that have been built and not yet closed.
	ResultsOpen prometheus.Gauge
	// AccessErrors counts failed getter and navigation calls by error type.
	AccessErrors *prometheus.CounterVec
}

// NewCollector creates and registers a collector on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		ColumnsIngested: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ingest_columns_total",
				Help:      "Columns ingested, by mode",
			},
			[]string{"mode"},
		),
		BytesIngested: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ingest_bytes_total",
				Help:      "Bytes ingested, by kind (wire or declared)",
			},
			[]string{"kind"},
		),
		IngestFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ingest_failures_total",
				Help:      "Payload constructions that failed, by error type",
			},
			[]string{"type"},
		),
		IngestDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "ingest_duration_seconds",
				Help:      "Time to decode a whole result payload",
				Buckets: []float64{
					1e-5, // 10μs - tiny uncompressed results
					1e-4, // 100μs
					1e-3, // 1ms
					1e-2, // 10ms
					1e-1, // 100ms
					1,    // 1s - large compressed results
				},
			},
		),
		ResultsOpen: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "results_open",
				Help:      "Results built and not yet closed",
			},
		),
		AccessErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "access_errors_total",
				Help:      "Failed getter and navigation calls, by error type",
			},
			[]string{"type"},
		),
	}
}

var (
	defaultCollector *Collector
	defaultOnce      sync.Once
)

// Default returns the collector registered with prometheus.DefaultRegisterer.
func Default() *Collector {
	defaultOnce.Do(func() {
		defaultCollector = NewCollector(prometheus.DefaultRegisterer)
	})
	return defaultCollector
}

// Timer measures the duration of a single operation.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer and starts timing immediately.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Stop returns the elapsed duration since creation. It can be called more
// than once.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}
