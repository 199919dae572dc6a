package audit

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	auditrepo "github.com/lodgera/accesscore/internal/audit/repository"
)

// RetentionSweeper deletes audit entries older than the retention window.
// This is the only deletion path for the audit log.
type RetentionSweeper struct {
	repo      auditrepo.Repository
	log       zerolog.Logger
	retention time.Duration
	interval  time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewRetentionSweeper returns a sweeper that removes entries older than
// retention, checking every interval. Non-positive values default to 90
// days and 1 hour.
func NewRetentionSweeper(repo auditrepo.Repository, log zerolog.Logger, retention, interval time.Duration) *RetentionSweeper {
	if retention <= 0 {
		retention = 90 * 24 * time.Hour
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &RetentionSweeper{
		repo:      repo,
		log:       log,
		retention: retention,
		interval:  interval,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start begins the background sweep loop. Non-blocking.
func (s *RetentionSweeper) Start() {
	go s.run()
	s.log.Info().Dur("interval", s.interval).Dur("retention", s.retention).Msg("audit retention sweeper started")
}

// Stop shuts the loop down and blocks until any in-progress sweep finishes.
func (s *RetentionSweeper) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.log.Info().Msg("audit retention sweeper stopped")
}

func (s *RetentionSweeper) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

func (s *RetentionSweeper) sweep() {
	cutoff := time.Now().UTC().Add(-s.retention)
	n, err := s.repo.DeleteBefore(context.Background(), cutoff)
	if err != nil {
		s.log.Error().Err(err).Msg("audit retention sweep failed")
		return
	}
	if n > 0 {
		s.log.Debug().Int64("deleted", n).Msg("swept expired audit entries")
	}
}
