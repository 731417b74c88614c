package worker

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

const (
	DefaultSweepInterval = time.Minute
	DefaultIdleTTL       = 30 * time.Minute
)

// SessionSweeper closes seat selection sessions nobody has touched for idleFor.
type SessionSweeper interface {
	CloseIdleSessions(idleFor time.Duration) int
}

// IdleSessionSweeper tears down sessions whose browser went away without
// sending an unload.
type IdleSessionSweeper struct {
	sessions SessionSweeper
	clock    clockwork.Clock
	interval time.Duration
	idleFor  time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
	log      *zap.Logger
}

func NewIdleSessionSweeper(
	sessions SessionSweeper,
	clock clockwork.Clock,
	interval time.Duration,
	idleFor time.Duration,
	log *zap.Logger,
) *IdleSessionSweeper {
	// a ticker panics on a non-positive period
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if idleFor <= 0 {
		idleFor = DefaultIdleTTL
	}

	return &IdleSessionSweeper{
		sessions: sessions,
		clock:    clock,
		interval: interval,
		idleFor:  idleFor,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
		log:      log.With(zap.String("worker", "idle_session_sweeper")),
	}
}

// Start blocks until ctx is done or Stop is called.
func (s *IdleSessionSweeper) Start(ctx context.Context) {
	s.log.Info("Idle session sweeper started",
		zap.Duration("interval", s.interval),
		zap.Duration("idle_for", s.idleFor),
	)

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()
	defer close(s.doneCh)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Idle session sweeper stopped (context canceled)")
			return
		case <-s.stopCh:
			s.log.Info("Idle session sweeper stopped")
			return
		case <-ticker.Chan():
			s.sweep()
		}
	}
}

// Stop signals the loop and waits for it to exit. Start must have been called.
func (s *IdleSessionSweeper) Stop() {
	close(s.stopCh)
	<-s.doneCh
}

func (s *IdleSessionSweeper) sweep() {
	if n := s.sessions.CloseIdleSessions(s.idleFor); n > 0 {
		s.log.Info("Closed idle sessions", zap.Int("count", n))
		return
	}
	s.log.Debug("No idle sessions")
}
