// Package metrics defines the storefront's business metrics. HTTP request
// metrics come from echoprometheus; everything here is domain level.
//
// All collectors are registered with the default Prometheus registry on
// package init via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

// ── Orders ────────────────────────────────────────────────────────────────────

// OrdersCreatedTotal counts accepted checkouts.
// Label:
//   - result: "created" or "replayed" (Idempotency-Key hit)
var OrdersCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_created_total",
		Help:      "Total number of checkouts accepted, by result.",
	},
	[]string{"result"},
)

// CheckoutRejectedTotal counts checkouts that did not produce an order.
// Label:
//   - reason: "validation", "unauthenticated" or "error"
var CheckoutRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkout_rejected_total",
		Help:      "Total number of checkout submissions rejected.",
	},
	[]string{"reason"},
)

// OrderStatusUpdatesTotal counts admin status writes by target status.
var OrderStatusUpdatesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_status_updates_total",
		Help:      "Total number of order status updates, by new status.",
	},
	[]string{"status"},
)

// ── Auth ──────────────────────────────────────────────────────────────────────

// LoginAttemptsTotal counts login attempts.
// Labels:
//   - method: "local" or the identity provider name (e.g. "google")
//   - result: "success" or "failure"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by method and result.",
	},
	[]string{"method", "result"},
)

// ── Notifications ─────────────────────────────────────────────────────────────

// NotificationsTotal counts notification deliveries.
// Labels:
//   - kind: "order_receipt" or "request_confirmation"
//   - result: "sent", "failed" or "dropped" (queue full)
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of notifications, by kind and result.",
	},
	[]string{"kind", "result"},
)

// NotificationQueueDepth tracks pending notifications in each dispatcher worker.
var NotificationQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notification_queue_depth",
		Help:      "Current number of notifications pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// NotificationDuration measures a single delivery attempt.
var NotificationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "notification_duration_seconds",
		Help:      "Duration of a notification delivery attempt.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"kind"},
)

// ── Blob store ────────────────────────────────────────────────────────────────

// BlobOperationsTotal counts blob store calls.
// Labels:
//   - op: "upload" or "delete"
//   - result: "ok" or "error"
var BlobOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "blob_operations_total",
		Help:      "Total number of blob store operations, by operation and result.",
	},
	[]string{"op", "result"},
)
