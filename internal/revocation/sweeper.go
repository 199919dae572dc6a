package revocation

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Sweeper periodically deletes expired revocation entries so the store
// only holds tokens that are revoked but not yet past their natural
// expiry. The sweep is owned by the process lifecycle: callers Start it
// after the store is ready and Stop it on shutdown.
type Sweeper struct {
	store    Store
	log      zerolog.Logger
	interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewSweeper returns a Sweeper for store. If interval is 0 or negative,
// it defaults to 30 minutes.
func NewSweeper(store Store, log zerolog.Logger, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	return &Sweeper{
		store:    store,
		log:      log,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background sweep loop. Non-blocking.
func (s *Sweeper) Start() {
	go s.run()
	s.log.Info().Dur("interval", s.interval).Msg("revocation sweeper started")
}

// Stop shuts the loop down and blocks until any in-progress sweep finishes.
func (s *Sweeper) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.log.Info().Msg("revocation sweeper stopped")
}

func (s *Sweeper) run() {
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

func (s *Sweeper) sweep() {
	n, err := s.store.Sweep(context.Background(), time.Now().UTC())
	if err != nil {
		s.log.Error().Err(err).Msg("revocation sweep failed")
		return
	}
	if n > 0 {
		s.log.Debug().Int64("deleted", n).Msg("swept expired revocation entries")
	}
}
