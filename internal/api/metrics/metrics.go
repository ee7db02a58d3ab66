// Package metrics defines and registers the custom Prometheus metrics for the
// marketplace API. It is the single source of truth for metric names, labels,
// and help strings; metrics register with the default registry at import time
// via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "marketplace"

// ListingsCreatedTotal counts created listings.
// Label:
//   - role: "User" or "Admin", whoever authored the listing.
var ListingsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "listings_created_total",
		Help:      "Total number of listings created, by creator role.",
	},
	[]string{"role"},
)

// ModerationDecisionsTotal counts moderation transitions applied by admins.
// Label:
//   - status: the status the listing moved to (e.g. "Approved", "Rejected").
var ModerationDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "moderation_decisions_total",
		Help:      "Total number of moderation decisions, by resulting status.",
	},
	[]string{"status"},
)

// UploadsRejectedTotal counts image uploads rejected by the store.
// Label:
//   - reason: "too_large", "too_many", or "unsupported_type".
var UploadsRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uploads_rejected_total",
		Help:      "Total number of image uploads rejected, by reason.",
	},
	[]string{"reason"},
)

// AuthFailuresTotal counts requests turned away by the auth middleware.
// Label:
//   - reason: "missing_token", "invalid_token", "revoked_token", or "principal_not_found".
var AuthFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_failures_total",
		Help:      "Total number of requests rejected during principal resolution, by reason.",
	},
	[]string{"reason"},
)

// LeadsCreatedTotal counts contact-form submissions.
var LeadsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "leads_created_total",
		Help:      "Total number of contact-form leads captured.",
	},
)
