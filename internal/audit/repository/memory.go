package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lodgera/accesscore/internal/audit/domain"
)

// MemoryRepository is an in-memory Repository for development and tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries []*domain.Entry
}

// NewMemoryRepository returns an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// Insert appends one entry.
func (m *MemoryRepository) Insert(_ context.Context, e *domain.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *e
	m.entries = append(m.entries, &cp)
	return nil
}

// ListViolations returns denied entries since the given time, newest first.
func (m *MemoryRepository) ListViolations(_ context.Context, since time.Time, limit int64) ([]*domain.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.filter(limit, func(e *domain.Entry) bool {
		return !e.Allowed && e.CreatedAt.After(since)
	}), nil
}

// ListByUser returns entries for userID since the given time, newest first.
func (m *MemoryRepository) ListByUser(_ context.Context, userID string, since time.Time, limit int64) ([]*domain.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.filter(limit, func(e *domain.Entry) bool {
		return e.UserID == userID && e.CreatedAt.After(since)
	}), nil
}

// ListByResource returns entries for one resource, newest first.
func (m *MemoryRepository) ListByResource(_ context.Context, resourceType, resourceID string, limit int64) ([]*domain.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.filter(limit, func(e *domain.Entry) bool {
		return e.ResourceType == resourceType && e.ResourceID == resourceID
	}), nil
}

// CountDenied returns the number of denied entries for userID since the
// given time.
func (m *MemoryRepository) CountDenied(_ context.Context, userID string, since time.Time) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, e := range m.entries {
		if e.UserID == userID && !e.Allowed && e.CreatedAt.After(since) {
			n++
		}
	}
	return n, nil
}

// DeleteBefore removes entries created before cutoff.
func (m *MemoryRepository) DeleteBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.entries[:0]
	var n int64
	for _, e := range m.entries {
		if e.CreatedAt.Before(cutoff) {
			n++
			continue
		}
		kept = append(kept, e)
	}
	m.entries = kept
	return n, nil
}

// filter returns matching entries newest first, capped at limit. Callers
// hold the lock.
func (m *MemoryRepository) filter(limit int64, keep func(*domain.Entry) bool) []*domain.Entry {
	var out []*domain.Entry
	for _, e := range m.entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out
}
