// Package metrics defines and registers all custom Prometheus metrics for the
// storefront API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry at package
// init through promauto and exposed by the /metrics route.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts credential operations.
// Labels:
//   - operation: "register", "login", "logout", "forgot_password", "reset_password", "update_password"
//   - result: "success" or "failure"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of credential operations, by operation and result.",
	},
	[]string{"operation", "result"},
)

// ── Order metrics ─────────────────────────────────────────────────────────────

// OrdersCreatedTotal counts newly placed orders.
// Label:
//   - payment_method: "COD" or "Card"
var OrdersCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_created_total",
		Help:      "Total number of orders created, by payment method.",
	},
	[]string{"payment_method"},
)

// OrderStatusUpdatesTotal counts fulfillment status updates.
// Labels:
//   - status: the requested status
//   - result: "success", or the failure reason ("delivered", "invalid_transition",
//     "insufficient_stock", "not_found", "error")
var OrderStatusUpdatesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_status_updates_total",
		Help:      "Total number of order status updates, by requested status and result.",
	},
	[]string{"status", "result"},
)

// ── Sales metrics ─────────────────────────────────────────────────────────────

// SalesReportDuration measures how long a sales report takes to compute.
// Label:
//   - result: "success" or "error"
var SalesReportDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "sales_report_duration_seconds",
		Help:      "Duration of sales report computation including the cache lookup.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)

// ── Cleanup metrics ───────────────────────────────────────────────────────────

// CleanupJobsTotal counts stored-object deletions handled by the dispatcher.
// Label:
//   - result: "deleted", "failed", or "dropped" (queue full)
var CleanupJobsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cleanup_jobs_total",
		Help:      "Total number of stored-object cleanup jobs, by result.",
	},
	[]string{"result"},
)

// CleanupQueueDepth tracks the number of jobs waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var CleanupQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "cleanup_queue_depth",
		Help:      "Current number of cleanup jobs pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
