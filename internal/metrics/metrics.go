// Package metrics exposes Prometheus collectors for movement operations and ledger appends.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Operations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "depo",
		Name:      "movement_operations_total",
		Help:      "Movement operations by name and result code.",
	}, []string{"operation", "result"})

	OperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "depo",
		Name:      "movement_operation_duration_seconds",
		Help:      "Wall time of a movement transaction, lock wait included.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	LedgerEntries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "depo",
		Name:      "ledger_entries_total",
		Help:      "Transition rows appended, by action.",
	}, []string{"action"})

	PoolConsumed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "depo",
		Name:      "barcode_pool_consumed_total",
		Help:      "Pool barcodes flipped from available to used.",
	})
)

func Handler() http.Handler {
	return promhttp.Handler()
}
