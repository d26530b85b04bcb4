package app

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const autoSaveTimeout = 10 * time.Second

// AutoSaver debounces saves: every Trigger restarts the delay, so only a state
// that stayed unchanged for the whole delay is saved. Failures are logged and
// left for the next cycle.
type AutoSaver struct {
	delay  time.Duration
	save   func(ctx context.Context) error
	logger *slog.Logger

	mu     sync.Mutex
	timer  *time.Timer
	gen    uint64
	closed bool
}

func NewAutoSaver(delay time.Duration, save func(ctx context.Context) error, logger *slog.Logger) *AutoSaver {
	if logger == nil {
		logger = slog.Default()
	}
	return &AutoSaver{delay: delay, save: save, logger: logger}
}

// Trigger (re)arms the debounce window.
func (a *AutoSaver) Trigger() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed || a.delay <= 0 {
		return
	}

	a.stopLocked()
	a.gen++
	gen := a.gen
	a.timer = time.AfterFunc(a.delay, func() { a.fire(gen) })
}

// Cancel drops a pending save.
func (a *AutoSaver) Cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopLocked()
}

// Close cancels any pending save; later Triggers are ignored.
func (a *AutoSaver) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopLocked()
	a.closed = true
}

func (a *AutoSaver) Pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.timer != nil
}

func (a *AutoSaver) stopLocked() {
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	// A callback that already started sees a stale generation and returns.
	a.gen++
}

func (a *AutoSaver) fire(gen uint64) {
	a.mu.Lock()
	if a.closed || gen != a.gen {
		a.mu.Unlock()
		return
	}
	a.timer = nil
	a.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), autoSaveTimeout)
	defer cancel()
	if err := a.save(ctx); err != nil {
		a.logger.WarnContext(ctx, "auto-save failed", slog.Any("error", err))
	}
}
