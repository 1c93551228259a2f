package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CirculationOps counts engine operations by operation and outcome.
	// Outcome is "success", a precondition name ("out_of_stock", ...) or
	// "error" for unexpected failures.
	CirculationOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "libcirc",
		Name:      "circulation_operations_total",
		Help:      "Circulation engine operations by operation and outcome.",
	}, []string{"operation", "outcome"})

	// StockConflicts counts optimistic-lock losses on item stock updates.
	// A high rate means heavy contention on single titles.
	StockConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "libcirc",
		Name:      "stock_version_conflicts_total",
		Help:      "Item stock compare-and-swap conflicts (before retry).",
	})

	// OverdueLoans is set by the nightly overdue-flagging job.
	OverdueLoans = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "libcirc",
		Name:      "overdue_open_loans",
		Help:      "Open loans past their due date at the last flagging run.",
	})
)
