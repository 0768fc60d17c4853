// Package metrics provides Prometheus metrics for simulation runs.
package metrics

import (
	"net/http"

	"github.com/elys-network/hedgevault/internal/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	registry *prometheus.Registry

	// Run metrics
	RunsTotal        *prometheus.CounterVec
	RunDuration      *prometheus.HistogramVec
	RunReturnPercent prometheus.Histogram

	// Step metrics
	StepsTotal    prometheus.Counter
	ActionsTotal  *prometheus.CounterVec
	WarningsTotal prometheus.Counter

	// Archive metrics
	ArchiveWritesTotal *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance registered on its own registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "hedgevault"
	}

	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "runs_total",
			Help:      "Total number of simulation runs by status",
		}, []string{"status"}),
		RunDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "run_duration_seconds",
			Help:      "Wall clock duration of a simulation run in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
		RunReturnPercent: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "run_return_percent",
			Help:      "Total return of completed runs in percent of initial capital",
			Buckets:   []float64{-50, -20, -10, -5, -1, 0, 1, 5, 10, 20, 50},
		}),

		StepsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "steps_total",
			Help:      "Total number of recorded steps",
		}),
		ActionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "actions_total",
			Help:      "Total number of recorded steps by action label",
		}, []string{"action"}),
		WarningsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "numeric_warnings_total",
			Help:      "Total number of over-withdrawal warnings raised by rebalancing operations",
		}),

		ArchiveWritesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "archive",
			Name:      "writes_total",
			Help:      "Total number of run archive writes by result",
		}, []string{"result"}),
	}
}

// Handler returns an HTTP handler exposing this instance's metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRun records the outcome of one run. summary may be nil for failed runs.
func (m *Metrics) RecordRun(status types.RunStatus, rows []types.StepRecord, summary *types.RunSummary, durationSeconds float64) {
	m.RunsTotal.WithLabelValues(string(status)).Inc()
	m.RunDuration.WithLabelValues(string(status)).Observe(durationSeconds)

	m.StepsTotal.Add(float64(len(rows)))
	for _, row := range rows {
		m.ActionsTotal.WithLabelValues(string(row.Action)).Inc()
		m.WarningsTotal.Add(float64(len(row.Warnings)))
	}

	if summary != nil {
		m.RunReturnPercent.Observe(summary.ReturnPercent)
	}
}

// RecordArchiveWrite records a run archive write.
func (m *Metrics) RecordArchiveWrite(err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.ArchiveWritesTotal.WithLabelValues(result).Inc()
}
