// Package monitoring exposes Prometheus collectors for the ordering
// and menu pipelines.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// OrdersSubmitted counts successfully created orders.
	OrdersSubmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tabletap_orders_submitted_total",
		Help: "Number of orders created by the submission engine.",
	})

	// OrderValue observes the server-computed total of each order.
	OrderValue = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "tabletap_order_value",
		Help:    "Distribution of order totals.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})

	// OrderLinesSkipped counts submitted lines dropped because the
	// referenced menu item was missing or inactive.
	OrderLinesSkipped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tabletap_order_lines_skipped_total",
		Help: "Number of order lines skipped during submission.",
	})

	// ReconcileRuns counts menu reconciliation calls by result.
	ReconcileRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tabletap_menu_reconcile_runs_total",
		Help: "Number of menu reconciliation runs.",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(OrdersSubmitted, OrderValue, OrderLinesSkipped, ReconcileRuns)
}
