// Package metrics defines and registers all custom Prometheus metrics for
// the account API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register themselves with the default Prometheus registry at
// package init via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "account"

// ── Authentication metrics ────────────────────────────────────────────────────

// SignInAttemptsTotal counts credential sign-in attempts.
// Label:
//   - outcome: "success" or "failure"
var SignInAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signin_attempts_total",
		Help:      "Total number of credential sign-in attempts, by outcome.",
	},
	[]string{"outcome"},
)

// TokensIssuedTotal counts tokens issued at sign-in and refresh.
// Label:
//   - type: "access" or "refresh"
var TokensIssuedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_issued_total",
		Help:      "Total number of tokens issued, by token type.",
	},
	[]string{"type"},
)

// TokenVerificationFailures counts rejected bearer tokens.
// Label:
//   - reason: "malformed", "expired", or "type_mismatch"
var TokenVerificationFailures = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_verification_failures_total",
		Help:      "Total number of bearer tokens rejected at verification.",
	},
	[]string{"reason"},
)

// ── Authorization metrics ─────────────────────────────────────────────────────

// PolicyDenialsTotal counts authorization denials.
// Labels:
//   - action: the denied action ("create", "update", "destroy", "access")
//   - scope: "action" for whole-operation denials, "field" for per-field ones
var PolicyDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "policy_denials_total",
		Help:      "Total number of authorization denials, by action and scope.",
	},
	[]string{"action", "scope"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// VersionsRecordedTotal counts audit versions written by the queue workers.
// Label:
//   - event: "create", "update", or "destroy"
var VersionsRecordedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "versions_recorded_total",
		Help:      "Total number of audit versions persisted, by event.",
	},
	[]string{"event"},
)

// VersionErrorsTotal counts audit versions that failed to persist.
var VersionErrorsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "version_errors_total",
		Help:      "Total number of audit versions that failed to persist.",
	},
)
