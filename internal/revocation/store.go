// Package revocation tracks revoked bearer tokens until their natural
// expiry. The store is a negative list: a token absent from it is not
// revoked. Backing implementations are injected so the token service can
// be tested without timers or a live database.
package revocation

import (
	"context"
	"time"
)

// Store answers "is this exact token value currently revoked?".
type Store interface {
	// Add marks token as revoked until expiresAt. Adding the same token
	// twice is a no-op; adding an already-expired token is allowed and
	// the entry is dropped by the next sweep.
	Add(ctx context.Context, token string, expiresAt time.Time) error
	// IsRevoked reports whether token is present in the store.
	IsRevoked(ctx context.Context, token string) (bool, error)
	// Sweep deletes entries whose expiry is before now and returns the
	// number deleted. Sweeping is idempotent.
	Sweep(ctx context.Context, now time.Time) (int64, error)
}
