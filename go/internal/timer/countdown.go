package timer

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Countdown is a one-shot round timer with a once-per-second tick.
//
// Remaining time is derived from the deadline on every read, so callers always see
// the server-authoritative value regardless of when a tick was last delivered.
// Callbacks run on their own goroutines and are never invoked while the countdown's
// lock is held, so they may call back into an owner that is itself calling Cancel.
type Countdown struct {
	clock clockwork.Clock

	mu       sync.Mutex
	deadline time.Time
	timer    clockwork.Timer
	ticker   clockwork.Ticker
	stop     chan struct{}
	frozen   int // remaining seconds captured when the countdown stopped
}

// NewCountdown creates an idle countdown driven by clock.
func NewCountdown(clock clockwork.Clock) *Countdown {
	return &Countdown{clock: clock}
}

// Start arms the countdown for d, replacing any run in progress.
// onTick receives the remaining whole seconds after each elapsed second and may be nil.
// onExpire runs once when the deadline passes, unless Cancel or Start wins first.
func (c *Countdown) Start(d time.Duration, onTick func(remaining int), onExpire func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()

	stop := make(chan struct{})
	c.stop = stop
	c.deadline = c.clock.Now().Add(d)
	c.frozen = 0

	c.timer = c.clock.AfterFunc(d, func() {
		c.mu.Lock()
		if c.stop != stop {
			// cancelled or replaced
			c.mu.Unlock()
			return
		}
		c.stopLocked()
		c.frozen = 0
		c.mu.Unlock()

		if onExpire != nil {
			onExpire()
		}
	})

	ticker := c.clock.NewTicker(time.Second)
	c.ticker = ticker
	go func() {
		for {
			select {
			case <-stop:
				return
			case <-ticker.Chan():
				remaining, running := c.remainingIfRunning(stop)
				if !running {
					return
				}
				if onTick != nil && remaining > 0 {
					onTick(remaining)
				}
			}
		}
	}()
}

// Cancel stops the countdown and freezes Remaining at its current value.
// It reports whether a run was in progress.
func (c *Countdown) Cancel() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stop == nil {
		return false
	}
	c.frozen = c.remainingLocked()
	c.stopLocked()
	return true
}

// Remaining returns whole seconds left, rounded up. A stopped countdown reports the
// value it had when it stopped; an expired one reports zero.
func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stop == nil {
		return c.frozen
	}
	return c.remainingLocked()
}

// Running reports whether the countdown is armed.
func (c *Countdown) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stop != nil
}

// Deadline returns the instant the current run expires. Zero when idle.
func (c *Countdown) Deadline() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stop == nil {
		return time.Time{}
	}
	return c.deadline
}

func (c *Countdown) remainingIfRunning(stop chan struct{}) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stop != stop {
		return 0, false
	}
	return c.remainingLocked(), true
}

func (c *Countdown) remainingLocked() int {
	left := c.deadline.Sub(c.clock.Now())
	if left <= 0 {
		return 0
	}
	return int((left + time.Second - 1) / time.Second)
}

func (c *Countdown) stopLocked() {
	if c.stop == nil {
		return
	}
	close(c.stop)
	c.stop = nil
	if c.timer != nil {
		stopAndDrainTimer(c.timer)
		c.timer = nil
	}
	if c.ticker != nil {
		c.ticker.Stop()
		c.ticker = nil
	}
}

// stopAndDrainTimer stops a timer and drains its channel if it already fired.
func stopAndDrainTimer(timer clockwork.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.Chan():
		default:
		}
	}
}
