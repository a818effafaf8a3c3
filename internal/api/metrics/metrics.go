// Package metrics defines and registers the custom Prometheus metrics for the
// healthgate API gateway. It is the single source of truth for metric names,
// labels, and help strings.
//
// All metrics register with the default Prometheus registry at package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "healthgate"

// ── Authentication ───────────────────────────────────────────────────────────

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials" or "bad_request"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// RegistrationsTotal counts successful self-registrations.
var RegistrationsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of accounts created through self-registration.",
	},
)

// TokenRejectionsTotal counts requests refused by the authentication gate.
// Label:
//   - reason: "missing", "invalid", "expired" or "unknown_user"
var TokenRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_rejections_total",
		Help:      "Total number of requests rejected by the authentication gate, by reason.",
	},
	[]string{"reason"},
)

// AuthorizationDenialsTotal counts authenticated requests refused for their role.
// Label:
//   - role: the caller's role
var AuthorizationDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authorization_denials_total",
		Help:      "Total number of requests rejected by role authorization.",
	},
	[]string{"role"},
)

// ── User administration ──────────────────────────────────────────────────────

// UserMutationsTotal counts successful administrative writes.
// Label:
//   - op: "create", "update" or "delete"
var UserMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "user_mutations_total",
		Help:      "Total number of administrative user writes, by operation.",
	},
	[]string{"op"},
)

// ── Audit trail ──────────────────────────────────────────────────────────────

// AuditQueueDepth tracks the number of events waiting in each dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// AuditEventsDroppedTotal counts audit events discarded because a worker channel was full.
var AuditEventsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_dropped_total",
		Help:      "Total number of audit events dropped on a full dispatcher queue.",
	},
)

// AuditWriteDuration measures how long persisting a single audit event takes.
// Label:
//   - result: "ok" or "error"
var AuditWriteDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "audit_write_duration_seconds",
		Help:      "Duration of audit event persistence from dequeue to write.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)
