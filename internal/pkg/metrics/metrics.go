// Package metrics defines and registers all custom Prometheus metrics for the
// user accounts API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry at package
// initialisation and exposed by the /metrics route.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "accounts"

// ── Account metrics ───────────────────────────────────────────────────────────

// RegistrationsTotal counts registration outcomes.
// Labels:
//   - role: "admin" or "superadmin"
//   - result: "created", "exists", "in_progress" or "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts that passed validation, by outcome.",
	},
	[]string{"role", "result"},
)

// LoginsTotal counts login outcomes.
// Label:
//   - result: "success", "unknown_account" or "bad_password"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts that passed validation, by outcome.",
	},
	[]string{"result"},
)

// PasswordChangesTotal counts password change outcomes.
// Label:
//   - result: "changed", "confirmation_mismatch" or "old_password_mismatch"
var PasswordChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "password_changes_total",
		Help:      "Total number of password change attempts, by outcome.",
	},
	[]string{"result"},
)

// AccountsRemovedTotal counts deleted accounts.
// Label:
//   - role: "admin" or "superadmin"
var AccountsRemovedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "accounts_removed_total",
		Help:      "Total number of accounts removed, by role.",
	},
	[]string{"role"},
)

// PasswordHashDuration measures bcrypt hashing time.
var PasswordHashDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "password_hash_duration_seconds",
		Help:      "Duration of bcrypt password hashing.",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5},
	},
)

// ── Image janitor metrics ─────────────────────────────────────────────────────

// ImagesDiscardedTotal counts image files handled by the janitor.
// Label:
//   - result: "deleted", "error" or "dropped"
var ImagesDiscardedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "images_discarded_total",
		Help:      "Total number of unreferenced image files processed by the janitor.",
	},
	[]string{"result"},
)

// JanitorQueueDepth tracks the number of cleanup jobs waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var JanitorQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "janitor_queue_depth",
		Help:      "Current number of cleanup jobs pending in each janitor worker channel.",
	},
	[]string{"worker_id"},
)
