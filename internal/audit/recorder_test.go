package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/lodgera/accesscore/internal/audit/domain"
	identitydomain "github.com/lodgera/accesscore/internal/identity/domain"
)

type memRepo struct {
	mu        sync.Mutex
	entries   []*domain.Entry
	insertErr error
}

func (r *memRepo) Insert(ctx context.Context, e *domain.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return r.insertErr
	}
	cp := *e
	r.entries = append(r.entries, &cp)
	return nil
}

func (r *memRepo) ListViolations(ctx context.Context, since time.Time, limit int64) ([]*domain.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Entry
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if !e.Allowed && !e.CreatedAt.Before(since) {
			out = append(out, e)
		}
		if limit > 0 && int64(len(out)) >= limit {
			break
		}
	}
	return out, nil
}

func (r *memRepo) ListByUser(ctx context.Context, userID string, since time.Time, limit int64) ([]*domain.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Entry
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if e.UserID == userID && !e.CreatedAt.Before(since) {
			out = append(out, e)
		}
		if limit > 0 && int64(len(out)) >= limit {
			break
		}
	}
	return out, nil
}

func (r *memRepo) ListByResource(ctx context.Context, resourceType, resourceID string, limit int64) ([]*domain.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Entry
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if e.ResourceType == resourceType && e.ResourceID == resourceID {
			out = append(out, e)
		}
		if limit > 0 && int64(len(out)) >= limit {
			break
		}
	}
	return out, nil
}

func (r *memRepo) CountDenied(ctx context.Context, userID string, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, e := range r.entries {
		if e.UserID == userID && !e.Allowed && !e.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *memRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []*domain.Entry
	var n int64
	for _, e := range r.entries {
		if e.CreatedAt.Before(cutoff) {
			n++
			continue
		}
		kept = append(kept, e)
	}
	r.entries = kept
	return n, nil
}

func (r *memRepo) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func testPrincipal() identitydomain.Principal {
	return identitydomain.Principal{UserID: "u1", Role: identitydomain.RoleStaff, EstablishmentID: "E1"}
}

func TestRecorder_Decision(t *testing.T) {
	repo := &memRepo{}
	rec := NewRecorder(repo, zerolog.Nop(), func(context.Context) ClientInfo {
		return ClientInfo{IP: "10.0.0.9", UserAgent: "backoffice-web"}
	})

	rec.Decision(context.Background(), testPrincipal(), domain.ActionRead, "booking", "b1", "E2", false, "establishment mismatch: E2 != E1")

	if repo.len() != 1 {
		t.Fatalf("repo holds %d entries, want 1", repo.len())
	}
	e := repo.entries[0]
	if e.ID == "" {
		t.Error("entry id not set")
	}
	if e.CreatedAt.IsZero() {
		t.Error("entry timestamp not set")
	}
	if e.UserID != "u1" || e.UserRole != "staff" || e.UserEstablishmentID != "E1" {
		t.Errorf("principal fields = %q/%q/%q", e.UserID, e.UserRole, e.UserEstablishmentID)
	}
	if e.Action != domain.ActionRead || e.ResourceType != "booking" || e.ResourceID != "b1" || e.ResourceEstablishmentID != "E2" {
		t.Errorf("resource fields = %q/%q/%q/%q", e.Action, e.ResourceType, e.ResourceID, e.ResourceEstablishmentID)
	}
	if e.Allowed {
		t.Error("entry should be a denial")
	}
	if e.Reason != "establishment mismatch: E2 != E1" {
		t.Errorf("reason = %q", e.Reason)
	}
	if e.IPAddress != "10.0.0.9" || e.UserAgent != "backoffice-web" {
		t.Errorf("client info = %q/%q", e.IPAddress, e.UserAgent)
	}
}

func TestRecorder_WriteFailureDoesNotPropagate(t *testing.T) {
	repo := &memRepo{insertErr: errors.New("disk full")}
	rec := NewRecorder(repo, zerolog.Nop(), nil)

	// Must not panic or surface the error; audit is best-effort for the
	// originating request.
	rec.Decision(context.Background(), testPrincipal(), domain.ActionUpdate, "invoice", "i1", "E1", true, "")
}

func TestRecorder_NilSafe(t *testing.T) {
	var rec *Recorder
	rec.Decision(context.Background(), testPrincipal(), domain.ActionRead, "booking", "", "", true, "")
}
