// Package audit records every authorization decision, allowed or denied,
// for compliance and anomaly detection. Entries are written by the
// authorization plumbing at the point of decision, never by domain
// handlers directly.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lodgera/accesscore/internal/audit/domain"
	auditrepo "github.com/lodgera/accesscore/internal/audit/repository"
	identitydomain "github.com/lodgera/accesscore/internal/identity/domain"
	"github.com/lodgera/accesscore/internal/metrics"
)

// ClientInfo is the transport-level context attached to an entry.
type ClientInfo struct {
	IP        string
	UserAgent string
}

// ClientInfoExtractor returns the client IP and user agent from the
// request context. May be nil; then both fields are left empty.
type ClientInfoExtractor func(context.Context) ClientInfo

// Recorder writes one entry per decision. Writes are best-effort from the
// caller's perspective: a failed write is logged and counted but never
// aborts the originating request.
type Recorder struct {
	repo   auditrepo.Repository
	log    zerolog.Logger
	client ClientInfoExtractor
}

// NewRecorder returns a Recorder persisting to repo. client may be nil.
func NewRecorder(repo auditrepo.Repository, log zerolog.Logger, client ClientInfoExtractor) *Recorder {
	return &Recorder{repo: repo, log: log, client: client}
}

// Decision appends one entry reflecting the actual outcome of a
// validation step. It is called after the decision is made, never
// speculatively before it.
func (r *Recorder) Decision(
	ctx context.Context,
	p identitydomain.Principal,
	action domain.Action,
	resourceType, resourceID, resourceEstablishment string,
	allowed bool,
	reason string,
) {
	outcome := "allowed"
	if !allowed {
		outcome = "denied"
	}
	metrics.AuthzDecisions.WithLabelValues(string(action), outcome).Inc()

	if r == nil || r.repo == nil {
		return
	}
	var ci ClientInfo
	if r.client != nil {
		ci = r.client(ctx)
	}
	e := &domain.Entry{
		ID:                      uuid.New().String(),
		CreatedAt:               time.Now().UTC(),
		UserID:                  p.UserID,
		UserRole:                string(p.Role),
		UserEstablishmentID:     p.EstablishmentID,
		Action:                  action,
		ResourceType:            resourceType,
		ResourceID:              resourceID,
		ResourceEstablishmentID: resourceEstablishment,
		Allowed:                 allowed,
		Reason:                  reason,
		IPAddress:               ci.IP,
		UserAgent:               ci.UserAgent,
	}
	if err := r.repo.Insert(ctx, e); err != nil {
		metrics.AuditWriteFailures.Inc()
		r.log.Error().Err(err).
			Str("action", string(action)).
			Str("resource_type", resourceType).
			Bool("allowed", allowed).
			Msg("failed to write audit entry")
	}
}
