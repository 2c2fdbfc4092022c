// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the engine.
type Metrics struct {
	// Computation pass metrics
	PassesTotal       *prometheus.CounterVec
	PassDuration      prometheus.Histogram
	IndicesBuilt      *prometheus.GaugeVec
	SpreadRowsEmitted prometheus.Gauge

	// Snapshot cache metrics
	SnapshotRefreshes *prometheus.CounterVec
	SnapshotErrors    *prometheus.CounterVec

	// Classification metrics
	UnmatchedSeriesKeys prometheus.Gauge
	ClassifiedRows      prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "commodity_index_lab"
	}

	return &Metrics{
		PassesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "passes_total",
			Help:      "Total number of computation passes by status",
		}, []string{"status"}),
		PassDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "pass_duration_seconds",
			Help:      "Computation pass duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		IndicesBuilt: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "indices_built",
			Help:      "Number of composite indices built in the last pass by granularity",
		}, []string{"granularity"}),
		SpreadRowsEmitted: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "spread_rows_emitted",
			Help:      "Number of spread rows produced in the last pass",
		}),

		SnapshotRefreshes: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "snapshot_refreshes_total",
			Help:      "Total number of snapshot loads by tier",
		}, []string{"tier"}),
		SnapshotErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "snapshot_errors_total",
			Help:      "Total number of failed snapshot loads by tier",
		}, []string{"tier"}),

		UnmatchedSeriesKeys: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "classification",
			Name:      "unmatched_series_keys",
			Help:      "Series keys without a classification entry in the last pass",
		}),
		ClassifiedRows: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "classification",
			Name:      "classified_rows",
			Help:      "Observation rows that joined the classification in the last pass",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
