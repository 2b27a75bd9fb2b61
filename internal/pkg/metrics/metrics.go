// Package metrics defines and registers all custom Prometheus metrics for the
// food-ordering app core. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package init
// via promauto; the HTTP layer exposes them on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "foodordering"

// ── Gateway metrics ───────────────────────────────────────────────────────────

// GatewayRequestDuration measures backend calls end-to-end.
// Labels:
//   - operation: gateway call name (e.g. "account.get", "tables.list_rows")
//   - outcome: "ok" or the error kind ("unauthenticated", "not_found", ...)
var GatewayRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "gateway_request_duration_seconds",
		Help:      "Duration of backend gateway requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"operation", "outcome"},
)

// ObserveGateway records a gateway call that started at start.
func ObserveGateway(operation, outcome string, start time.Time) {
	GatewayRequestDuration.WithLabelValues(operation, outcome).Observe(time.Since(start).Seconds())
}

// ── Auth state metrics ────────────────────────────────────────────────────────

// AuthRefreshTotal counts auth state refreshes.
// Label:
//   - outcome: "authenticated", "unauthenticated", "failed", or "superseded"
var AuthRefreshTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_refresh_total",
		Help:      "Total number of auth state refreshes, by outcome.",
	},
	[]string{"outcome"},
)

// ── Catalog metrics ───────────────────────────────────────────────────────────

// CatalogCacheTotal counts catalog cache lookups.
// Labels:
//   - listing: "menu" or "categories"
//   - result: "hit", "miss", or "error"
var CatalogCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_cache_total",
		Help:      "Total number of catalog cache lookups, labelled by result.",
	},
	[]string{"listing", "result"},
)

// ── Startup metrics ───────────────────────────────────────────────────────────

// PreloadDuration measures how long each startup preload task took.
// Label:
//   - task: preload task name
var PreloadDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "preload_duration_seconds",
		Help:      "Duration of startup preload tasks.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"task"},
)
