package revocation

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store implementation. Suitable for a single
// process; revocations do not survive a restart.
type MemoryStore struct {
	mu sync.RWMutex
	m  map[string]time.Time
}

// NewMemoryStore returns an empty in-memory revocation store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: make(map[string]time.Time)}
}

// Add marks token as revoked until expiresAt.
func (s *MemoryStore) Add(ctx context.Context, token string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[token] = expiresAt
	return nil
}

// IsRevoked reports whether token is present in the store.
func (s *MemoryStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.m[token]
	return ok, nil
}

// Sweep deletes entries whose expiry is before now.
func (s *MemoryStore) Sweep(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for tok, exp := range s.m {
		if exp.Before(now) {
			delete(s.m, tok)
			n++
		}
	}
	return n, nil
}

// Len returns the number of entries currently held. Used by tests and
// operational introspection.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}
