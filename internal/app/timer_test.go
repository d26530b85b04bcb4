package app_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiz-engine/internal/app"
)

func TestTimerElapsedIsWallClock(t *testing.T) {
	clock := newFakeClock()
	ts := newTickers()
	ticks := make(chan int, 4)

	timer := app.NewTimer(app.TimerConfig{
		Now:       clock.Now,
		NewTicker: ts.New,
		OnTick:    func(elapsed int) { ticks <- elapsed },
	})
	assert.Zero(t, timer.Elapsed())

	timer.Start(10)
	defer timer.Stop()
	ticker := <-ts.ready

	// One tick after four seconds still reports the full wall-clock time.
	clock.Advance(4 * time.Second)
	ticker.ch <- clock.Now()
	assert.Equal(t, 14, <-ticks)
	assert.Equal(t, 14, timer.Elapsed())
	assert.True(t, timer.Running())
}

func TestTimerTimeUpFiresOnce(t *testing.T) {
	clock := newFakeClock()
	ts := newTickers()

	var (
		mu     sync.Mutex
		timeUp int
	)
	timer := app.NewTimer(app.TimerConfig{
		Limit:     3,
		Now:       clock.Now,
		NewTicker: ts.New,
		OnTimeUp: func() {
			mu.Lock()
			timeUp++
			mu.Unlock()
		},
	})

	timer.Start(0)
	ticker := <-ts.ready

	clock.Advance(3 * time.Second)
	ticker.ch <- clock.Now()

	require.Eventually(t, ticker.Stopped, time.Second, time.Millisecond)
	assert.False(t, timer.Running())

	timer.Start(0)
	timer.Stop()
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, timeUp)
	assert.Len(t, ts.ready, 0, "a timer that fired does not restart")
}

func TestTimerStopIsIdempotent(t *testing.T) {
	ts := newTickers()
	timer := app.NewTimer(app.TimerConfig{NewTicker: ts.New})

	timer.Stop()
	timer.Start(0)
	ticker := <-ts.ready
	timer.Stop()
	timer.Stop()

	require.Eventually(t, ticker.Stopped, time.Second, time.Millisecond)
}
