// Package metrics defines and registers all custom Prometheus metrics for the
// courier back office. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics self-register with the default Prometheus registry via promauto at
// package init; the /metrics endpoint exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "backoffice"

// ── Reconciliation metrics ────────────────────────────────────────────────────

// PassesTotal counts completed reconciliation passes.
// Label:
//   - result: "ok", "aborted" (collect/fetch failure), or "skipped" (empty open set)
var PassesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reconcile_passes_total",
		Help:      "Total number of reconciliation passes, by result.",
	},
	[]string{"result"},
)

// PassDuration measures one full pass from collect to the last apply.
var PassDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "reconcile_pass_duration_seconds",
		Help:      "Duration of a reconciliation pass end-to-end.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ShipmentsUpdatedTotal counts genuine status transitions applied.
// Label:
//   - status: the new status written (e.g. "Shipment Picked")
var ShipmentsUpdatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "shipments_updated_total",
		Help:      "Total number of shipment status transitions applied.",
	},
	[]string{"status"},
)

// UnknownTrackingTotal counts snapshots for tracking numbers the local store
// does not know. A growing value signals the store is missing records the
// provider has.
var UnknownTrackingTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "unknown_tracking_numbers_total",
		Help:      "Total number of provider snapshots with no matching local shipment.",
	},
)

// ── Provider metrics ──────────────────────────────────────────────────────────

// ProviderRequestsTotal counts outbound courier API calls.
// Labels:
//   - op: "track" or "cities"
//   - result: "ok", "unavailable", or "failed"
var ProviderRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "provider_requests_total",
		Help:      "Total number of courier provider requests, by operation and result.",
	},
	[]string{"op", "result"},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsTotal counts notification delivery attempts.
// Label:
//   - result: "sent", "failed", or "dedup"
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of status-change notifications, by delivery result.",
	},
	[]string{"result"},
)
