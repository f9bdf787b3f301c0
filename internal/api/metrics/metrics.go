// Package metrics defines the custom Prometheus metrics of the identity
// gateway. HTTP request metrics come from the echoprometheus middleware; the
// collectors here track identity outcomes that status codes alone hide.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/abcretailers/identity-gateway/internal/core/domain"
)

const namespace = "identity"

// RegistrationsTotal counts registration attempts.
// Label:
//   - outcome: see RegistrationOutcome
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by outcome.",
	},
	[]string{"outcome"},
)

// LoginsTotal counts login attempts.
// Label:
//   - outcome: see LoginOutcome, plus "rate_limited"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by outcome.",
	},
	[]string{"outcome"},
)

// OrphanedCredentialsTotal counts credentials left behind by a failed
// compensation. Anything above zero needs an operator.
var OrphanedCredentialsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orphaned_credentials_total",
		Help:      "Credentials left without a profile after a failed compensating delete.",
	},
)

// OrphanInspectionsTotal counts background checks of recorded orphans.
// Label:
//   - state: "orphaned", "cleared", "paired" or "unknown"
var OrphanInspectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orphan_inspections_total",
		Help:      "Inspections of recorded orphaned credentials, by observed state.",
	},
	[]string{"state"},
)

// SessionsIssuedTotal counts sessions handed out after a successful login.
var SessionsIssuedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_issued_total",
		Help:      "Total number of sessions issued.",
	},
)

// DashboardAggregationDuration measures the concurrent catalog fan-out.
// Label:
//   - result: "ok" or "failed"
var DashboardAggregationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "dashboard_aggregation_duration_seconds",
		Help:      "Duration of the dashboard fan-out to the profile service.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)

// RegistrationOutcome maps a Register result to its label value.
func RegistrationOutcome(err error) string {
	switch {
	case err == nil:
		return "created"
	case errors.Is(err, domain.ErrInvalidRegistration):
		return "invalid"
	case errors.Is(err, domain.ErrDuplicateUsername):
		return "duplicate"
	case errors.Is(err, domain.ErrInconsistentState):
		return "inconsistent"
	case errors.Is(err, domain.ErrRemoteWriteFailed):
		return "remote_failed"
	case errors.Is(err, domain.ErrLocalWriteFailed):
		return "local_failed"
	default:
		return "error"
	}
}

// LoginOutcome maps a login result to its label value.
func LoginOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrProfileMissing):
		return "profile_missing"
	case errors.Is(err, domain.ErrRemoteUnavailable), errors.Is(err, domain.ErrCredentialStoreUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
