package sink

import (
	"sync"
	"time"
)

// watchdog fires when feed has not been called for timeout. Output frames
// feed it; a firing means the mixing clock stopped delivering.
type watchdog struct {
	timeout time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

func newWatchdog(timeout time.Duration) *watchdog {
	return &watchdog{
		timeout: timeout,
		timer:   time.NewTimer(timeout),
	}
}

// feed re-arms the timer. It is a no-op after stop.
func (w *watchdog) feed() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	if !w.timer.Stop() {
		select {
		case <-w.timer.C:
		default:
		}
	}
	w.timer.Reset(w.timeout)
}

func (w *watchdog) C() <-chan time.Time {
	return w.timer.C
}

// stop disarms the watchdog for good. Safe to call more than once.
func (w *watchdog) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.stopped {
		w.timer.Stop()
		w.stopped = true
	}
}
