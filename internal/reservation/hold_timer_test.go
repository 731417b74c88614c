package reservation

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

const eventually = time.Second

func TestHoldTimer_CountsDownAndExpiresOnce(t *testing.T) {
	clock := clockwork.NewFakeClock()
	var fired atomic.Int32

	timer := NewHoldTimer(clock, 2, func() { fired.Add(1) })
	timer.Start()
	assert.Equal(t, 2, timer.Remaining())

	clock.BlockUntil(1)
	clock.Advance(time.Second)
	assert.Eventually(t, func() bool { return timer.Remaining() == 1 }, eventually, time.Millisecond)
	assert.False(t, timer.Expired())

	clock.BlockUntil(1)
	clock.Advance(time.Second)
	assert.Eventually(t, func() bool { return fired.Load() == 1 }, eventually, time.Millisecond)
	assert.True(t, timer.Expired())
	assert.Equal(t, 0, timer.Remaining())

	// ticks 3, 4, ... never happen
	clock.Advance(5 * time.Second)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
	assert.Equal(t, 0, timer.Remaining())

	timer.Start()
	assert.Equal(t, int32(1), fired.Load())
}

func TestHoldTimer_StopKeepsRemaining(t *testing.T) {
	clock := clockwork.NewFakeClock()
	var fired atomic.Int32

	timer := NewHoldTimer(clock, 3, func() { fired.Add(1) })
	timer.Start()
	clock.BlockUntil(1)
	timer.Stop()

	clock.Advance(10 * time.Second)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 3, timer.Remaining())
	assert.Zero(t, fired.Load())

	timer.Start()
	clock.Advance(10 * time.Second)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 3, timer.Remaining(), "a stopped timer does not restart")
}

func TestHoldTimer_Reset(t *testing.T) {
	clock := clockwork.NewFakeClock()
	var fired atomic.Int32

	timer := NewHoldTimer(clock, 1, func() { fired.Add(1) })
	timer.Start()
	clock.BlockUntil(1)
	clock.Advance(time.Second)
	assert.Eventually(t, func() bool { return fired.Load() == 1 }, eventually, time.Millisecond)

	timer.Reset()
	assert.False(t, timer.Expired())
	assert.Equal(t, 1, timer.Remaining())

	clock.BlockUntil(1)
	clock.Advance(time.Second)
	assert.Eventually(t, func() bool { return fired.Load() == 2 }, eventually, time.Millisecond)
}

func TestHoldTimer_ZeroExpiresOnStart(t *testing.T) {
	var fired atomic.Int32
	timer := NewHoldTimer(clockwork.NewFakeClock(), 0, func() { fired.Add(1) })

	timer.Start()
	timer.Start()
	assert.Equal(t, int32(1), fired.Load())
	assert.True(t, timer.Expired())
}
