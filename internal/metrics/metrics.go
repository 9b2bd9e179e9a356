// Package metrics holds the prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Reconcile run results
const (
	ResultOK      = "ok"
	ResultPartial = "partial"
	ResultError   = "error"
)

var (
	// ReconcileRuns counts reconciliation passes by result
	ReconcileRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_reconcile_runs_total",
		Help: "Total task reconciliation passes by result",
	}, []string{"result"})

	ReconcileDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ledger_reconcile_duration_seconds",
		Help:    "Task reconciliation duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
	})

	// OpenAutoTasks is the open auto-task count after the last pass
	OpenAutoTasks = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ledger_open_auto_tasks",
		Help: "Open auto tasks after the most recent reconciliation",
	})

	// TaskWriteFailures counts failed task writes by operation (upsert, resolve)
	TaskWriteFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_task_write_failures_total",
		Help: "Task writes that failed during reconciliation",
	}, []string{"op"})

	MatchCandidates = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ledger_match_candidates",
		Help:    "Properties surviving the hard filters per match request",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
	})
)
