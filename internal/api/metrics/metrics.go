// Package metrics defines and registers all custom Prometheus metrics for
// the property API. It is the single source of truth for metric names,
// labels, and help strings. Metrics register with the default registry at
// package import via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "property"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// SignupsTotal counts completed registrations.
// Label:
//   - role: each role assigned to the new account (a multi-role signup
//     increments once per role)
var SignupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signups_total",
		Help:      "Total number of successful signups, by assigned role.",
	},
	[]string{"role"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "unknown_email", or "bad_password"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// PasswordResetsTotal counts forgot-password requests. The label is internal
// only; the HTTP response is identical in every case.
// Label:
//   - outcome: "requested" (every call), no per-account outcome is exported
//     to avoid turning the metric endpoint into an enumeration oracle
var PasswordResetsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "password_resets_total",
		Help:      "Total number of forgot-password requests.",
	},
	[]string{"outcome"},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsTotal counts messages handed to the delivery sink.
// Label:
//   - result: "sent" or "error"
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of notifications processed by the dispatcher, by result.",
	},
	[]string{"result"},
)

// NotificationsQueueDepth tracks pending messages per dispatcher worker.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var NotificationsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notifications_queue_depth",
		Help:      "Current number of notifications pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
