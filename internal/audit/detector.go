package audit

import (
	"context"
	"time"

	auditrepo "github.com/lodgera/accesscore/internal/audit/repository"
)

// Default suspicious-activity parameters: five denials within a trailing
// ten-minute window.
const (
	DefaultSuspiciousWindow    = 10 * time.Minute
	DefaultSuspiciousThreshold = 5
)

// Detector answers whether a user's recent denial rate looks anomalous.
// It is intended to drive a rate limit or alert; it never blocks the
// request that tripped it.
type Detector struct {
	repo auditrepo.Repository
}

// NewDetector returns a Detector reading from repo.
func NewDetector(repo auditrepo.Repository) *Detector {
	return &Detector{repo: repo}
}

// HasSuspiciousActivity reports whether userID accumulated at least
// threshold denied decisions within the trailing window. Non-positive
// window or threshold fall back to the defaults.
func (d *Detector) HasSuspiciousActivity(ctx context.Context, userID string, window time.Duration, threshold int) (bool, error) {
	if window <= 0 {
		window = DefaultSuspiciousWindow
	}
	if threshold <= 0 {
		threshold = DefaultSuspiciousThreshold
	}
	since := time.Now().UTC().Add(-window)
	n, err := d.repo.CountDenied(ctx, userID, since)
	if err != nil {
		return false, err
	}
	return n >= int64(threshold), nil
}
