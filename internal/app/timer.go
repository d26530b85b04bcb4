package app

import (
	"sync"
	"time"
)

const tickInterval = time.Second

type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// NewTickerFunc creates a Ticker; tests replace it with a manually driven one.
type NewTickerFunc func(d time.Duration) Ticker

type realTicker struct {
	t *time.Ticker
}

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// NewRealTicker wraps time.NewTicker.
func NewRealTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

type TimerConfig struct {
	// Limit is the time limit in seconds, 0 for none.
	Limit     int
	Now       func() time.Time
	NewTicker NewTickerFunc
	// OnTick receives the elapsed seconds after every tick.
	OnTick func(elapsed int)
	// OnTimeUp fires once, when the elapsed time reaches Limit.
	OnTimeUp func()
}

// Timer measures elapsed wall-clock time from a fixed start. Elapsed time is
// always recomputed as now - start, so missed ticks never skew it.
type Timer struct {
	limit     int
	now       func() time.Time
	newTicker NewTickerFunc
	onTick    func(int)
	onTimeUp  func()

	mu      sync.Mutex
	start   time.Time
	running bool
	stop    chan struct{}
	fired   bool
}

func NewTimer(c TimerConfig) *Timer {
	t := &Timer{
		limit:     c.Limit,
		now:       c.Now,
		newTicker: c.NewTicker,
		onTick:    c.OnTick,
		onTimeUp:  c.OnTimeUp,
	}
	if t.now == nil {
		t.now = time.Now
	}
	if t.newTicker == nil {
		t.newTicker = NewRealTicker
	}
	return t
}

// Start begins ticking. offset is the number of seconds already spent, so a
// resumed attempt keeps its elapsed time. Starting a running timer is a no-op.
func (t *Timer) Start(offset int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running || t.fired {
		return
	}

	t.start = t.now().Add(-time.Duration(offset) * time.Second)
	t.running = true
	t.stop = make(chan struct{})
	ticker := t.newTicker(tickInterval)
	go t.loop(ticker, t.stop)
}

// Stop halts the timer. It does not wait for an in-flight callback, so it is
// safe to call from OnTick or OnTimeUp.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return
	}
	t.running = false
	close(t.stop)
}

// Elapsed returns whole seconds since start, 0 before Start.
func (t *Timer) Elapsed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.elapsedLocked()
}

func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

func (t *Timer) elapsedLocked() int {
	if t.start.IsZero() {
		return 0
	}
	return int(t.now().Sub(t.start) / time.Second)
}

func (t *Timer) loop(ticker Ticker, stop <-chan struct{}) {
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C():
		}

		t.mu.Lock()
		if !t.running {
			t.mu.Unlock()
			return
		}
		elapsed := t.elapsedLocked()
		timeUp := t.limit > 0 && elapsed >= t.limit && !t.fired
		if timeUp {
			t.fired = true
			t.running = false
			close(t.stop)
		}
		t.mu.Unlock()

		if t.onTick != nil {
			t.onTick(elapsed)
		}
		if timeUp {
			if t.onTimeUp != nil {
				t.onTimeUp()
			}
			return
		}
	}
}
