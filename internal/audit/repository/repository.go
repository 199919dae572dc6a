package repository

import (
	"context"
	"time"

	"github.com/lodgera/accesscore/internal/audit/domain"
)

// Repository is the persistence surface of the access audit log. All read
// paths are time-windowed or limited; unbounded scans are not part of the
// contract.
type Repository interface {
	// Insert appends one entry.
	Insert(ctx context.Context, e *domain.Entry) error
	// ListViolations returns denied entries since the given time, newest
	// first, capped at limit.
	ListViolations(ctx context.Context, since time.Time, limit int64) ([]*domain.Entry, error)
	// ListByUser returns entries for userID since the given time, newest
	// first, capped at limit.
	ListByUser(ctx context.Context, userID string, since time.Time, limit int64) ([]*domain.Entry, error)
	// ListByResource returns entries for one resource, newest first,
	// capped at limit.
	ListByResource(ctx context.Context, resourceType, resourceID string, limit int64) ([]*domain.Entry, error)
	// CountDenied returns the number of denied entries for userID since
	// the given time.
	CountDenied(ctx context.Context, userID string, since time.Time) (int64, error)
	// DeleteBefore removes entries created before cutoff and returns the
	// number deleted. Used only by the retention sweep.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
