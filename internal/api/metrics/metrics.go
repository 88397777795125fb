// Package metrics defines the custom Prometheus metrics shared by the gateway
// and the catalog. Metrics register with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "commerce"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "unknown_user", "wrong_password", "rate_limited" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// AuthzDecisionsTotal counts authorization decisions taken by the route policies.
// Label:
//   - decision: "allow", "unauthenticated" or "insufficient_role"
var AuthzDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authz_decisions_total",
		Help:      "Total number of authorization decisions, by outcome.",
	},
	[]string{"decision"},
)

// ── Cart and order metrics ────────────────────────────────────────────────────

// CartUpdatesTotal counts cart quantity changes.
// Label:
//   - result: "ok" or the error code returned to the caller (e.g. "insufficient_stock")
var CartUpdatesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_updates_total",
		Help:      "Total number of cart quantity updates, by result.",
	},
	[]string{"result"},
)

// OrderTransitionsTotal counts order lifecycle operations.
// Labels:
//   - action: "reserve", "shipping", "ship" or "cancel"
//   - result: "ok" or the error code returned to the caller
var OrderTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_transitions_total",
		Help:      "Total number of order lifecycle operations, by action and result.",
	},
	[]string{"action", "result"},
)

// ── Catalog metrics ───────────────────────────────────────────────────────────

// CacheLookupsTotal counts product cache lookups.
// Label:
//   - result: "hit", "miss" or "error"
var CacheLookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Total number of product cache lookups, by result.",
	},
	[]string{"result"},
)

// StockAdjustmentsTotal counts stock reservations and releases.
// Labels:
//   - direction: "reserve" or "release"
//   - result: "ok" or the error code returned to the caller
var StockAdjustmentsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stock_adjustments_total",
		Help:      "Total number of stock adjustments, by direction and result.",
	},
	[]string{"direction", "result"},
)

// CatalogRequestDuration measures calls from the gateway to the catalog service.
// Labels:
//   - operation: client method name (e.g. "get_product", "reserve_stock")
//   - result: "ok" or "error"
var CatalogRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "catalog_request_duration_seconds",
		Help:      "Duration of gateway calls to the catalog service.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"operation", "result"},
)

// ── Event metrics ─────────────────────────────────────────────────────────────

// EventsPublishedTotal counts domain events handed to the broker.
// Labels:
//   - type: event type (e.g. "order.reserved")
//   - result: "ok" or "error"
var EventsPublishedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_published_total",
		Help:      "Total number of domain events published, by type and result.",
	},
	[]string{"type", "result"},
)

// EventsDroppedTotal counts events dropped because a worker queue was full.
var EventsDroppedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_dropped_total",
		Help:      "Total number of domain events dropped on a full queue.",
	},
	[]string{"type"},
)

// EventsQueueDepth tracks the number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var EventsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "events_queue_depth",
		Help:      "Current number of events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// EventPublishDuration measures how long one publish takes.
var EventPublishDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "event_publish_duration_seconds",
		Help:      "Duration of a single domain event publish.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"result"},
)
