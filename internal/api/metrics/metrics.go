// Package metrics defines and registers all custom Prometheus metrics for the
// freelance tracker. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation and exposed at /metrics by the API router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "freelance"

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditWritesTotal counts audit records handled by the background writer.
// Label:
//   - result: "ok" or "error"
var AuditWritesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_writes_total",
		Help:      "Total number of audit records written by the background writer, by result.",
	},
	[]string{"result"},
)

// AuditQueueDepth tracks the number of audit records waiting to be written.
var AuditQueueDepth = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit records pending in the writer queue.",
	},
)

// ── Reminder metrics ──────────────────────────────────────────────────────────

// RemindersRaisedTotal counts deadline reminders handed to the UI.
var RemindersRaisedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reminders_raised_total",
		Help:      "Total number of deadline reminders raised.",
	},
)

// DeadlinePollErrorsTotal counts poll cycles whose project query failed.
var DeadlinePollErrorsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "deadline_poll_errors_total",
		Help:      "Total number of deadline poll cycles that failed to read projects.",
	},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "success", "failure", "throttled" or "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)
