package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type MockSessionSweeper struct {
	mock.Mock
	sweeps atomic.Int32
}

func (m *MockSessionSweeper) CloseIdleSessions(idleFor time.Duration) int {
	defer m.sweeps.Add(1)
	args := m.Called(idleFor)
	return args.Int(0)
}

func TestNewIdleSessionSweeper(t *testing.T) {
	sweeper := NewIdleSessionSweeper(new(MockSessionSweeper), clockwork.NewFakeClock(), time.Minute, 30*time.Minute, zap.NewNop())

	assert.Equal(t, time.Minute, sweeper.interval)
	assert.Equal(t, 30*time.Minute, sweeper.idleFor)
	assert.NotNil(t, sweeper.stopCh)
	assert.NotNil(t, sweeper.doneCh)
}

func TestNewIdleSessionSweeper_NonPositiveDurations(t *testing.T) {
	sweeper := NewIdleSessionSweeper(new(MockSessionSweeper), clockwork.NewFakeClock(), 0, -time.Second, zap.NewNop())

	assert.Equal(t, DefaultSweepInterval, sweeper.interval)
	assert.Equal(t, DefaultIdleTTL, sweeper.idleFor)

	// the loop must start and stop without the ticker panicking
	go sweeper.Start(context.Background())
	sweeper.Stop()
}

func TestIdleSessionSweeper_SweepsOnEveryTick(t *testing.T) {
	sessions := new(MockSessionSweeper)
	sessions.On("CloseIdleSessions", 30*time.Minute).Return(2).Once()
	sessions.On("CloseIdleSessions", 30*time.Minute).Return(0).Once()

	clock := clockwork.NewFakeClock()
	sweeper := NewIdleSessionSweeper(sessions, clock, time.Minute, 30*time.Minute, zap.NewNop())

	go sweeper.Start(context.Background())

	clock.BlockUntil(1)
	clock.Advance(time.Minute)
	assert.Eventually(t, func() bool { return sessions.sweeps.Load() == 1 }, time.Second, time.Millisecond)

	clock.Advance(time.Minute)
	assert.Eventually(t, func() bool { return sessions.sweeps.Load() == 2 }, time.Second, time.Millisecond)

	sweeper.Stop()
	sessions.AssertExpectations(t)
}

func TestIdleSessionSweeper_StopsOnContextCancel(t *testing.T) {
	sweeper := NewIdleSessionSweeper(new(MockSessionSweeper), clockwork.NewFakeClock(), time.Minute, time.Minute, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
