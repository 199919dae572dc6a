// Package metrics exposes Prometheus counters for the access-control
// core. Collectors are package-level and registered once via Init.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// TokenVerifications counts token verifications by outcome
	// (ok, expired, malformed, revoked, kind_mismatch).
	TokenVerifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accesscore_token_verifications_total",
			Help: "Token verifications by outcome.",
		},
		[]string{"outcome"},
	)

	// Revocations counts tokens added to the revocation store.
	Revocations = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "accesscore_token_revocations_total",
		Help: "Tokens added to the revocation store.",
	})

	// AuthzDecisions counts authorization decisions by action and outcome
	// (allowed, denied).
	AuthzDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accesscore_authz_decisions_total",
			Help: "Authorization decisions by action and outcome.",
		},
		[]string{"action", "outcome"},
	)

	// AuditWriteFailures counts audit log entries that could not be
	// persisted. The originating requests are unaffected.
	AuditWriteFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "accesscore_audit_write_failures_total",
		Help: "Audit log write failures.",
	})
)

// Init registers the collectors with the default registry. Call once at
// process startup.
func Init() {
	prometheus.MustRegister(TokenVerifications, Revocations, AuthzDecisions, AuditWriteFailures)
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
