package audit

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/lodgera/accesscore/internal/audit/domain"
)

func TestRetentionSweeper_Sweep(t *testing.T) {
	ctx := context.Background()
	repo := &memRepo{}
	now := time.Now().UTC()

	_ = repo.Insert(ctx, &domain.Entry{ID: "old", CreatedAt: now.Add(-100 * 24 * time.Hour), UserID: "u1", Allowed: true})
	_ = repo.Insert(ctx, &domain.Entry{ID: "recent", CreatedAt: now.Add(-time.Hour), UserID: "u1", Allowed: false})

	s := NewRetentionSweeper(repo, zerolog.Nop(), 90*24*time.Hour, time.Hour)
	s.sweep()

	if repo.len() != 1 {
		t.Fatalf("repo holds %d entries after sweep, want 1", repo.len())
	}
	if repo.entries[0].ID != "recent" {
		t.Errorf("surviving entry = %q, want recent", repo.entries[0].ID)
	}

	// Sweeping again deletes nothing further.
	s.sweep()
	if repo.len() != 1 {
		t.Errorf("repo holds %d entries after second sweep, want 1", repo.len())
	}
}
