package revocation

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestSweeper_Sweep(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Now().UTC()

	_ = store.Add(ctx, "live", now.Add(time.Hour))
	_ = store.Add(ctx, "dead", now.Add(-time.Hour))

	s := NewSweeper(store, zerolog.Nop(), time.Minute)
	s.sweep()

	if store.Len() != 1 {
		t.Errorf("store holds %d entries after sweep, want 1", store.Len())
	}
	if revoked, _ := store.IsRevoked(ctx, "live"); !revoked {
		t.Error("unexpired revocation must survive the sweep")
	}
}

func TestSweeper_StartStop(t *testing.T) {
	s := NewSweeper(NewMemoryStore(), zerolog.Nop(), time.Hour)
	s.Start()
	s.Stop()
}
