package app

import (
	"sync"
	"time"
)

// defaultPollInterval is the countdown's polling granularity. Sub-second so
// clients can render a smooth remaining-time bar.
const defaultPollInterval = 100 * time.Millisecond

// Countdown is a restartable per-question timer. Each Start sets a fresh
// deadline and polls until it passes, then fires the expire callback exactly
// once. Starting again or cancelling discards the previous deadline, so a
// stale run can never fire after a new one began.
type Countdown struct {
	clock    func() time.Time
	interval time.Duration

	mu       sync.Mutex
	deadline time.Time
	duration time.Duration
	cancel   chan struct{}
	running  bool
}

func NewCountdown() *Countdown {
	return &Countdown{clock: time.Now, interval: defaultPollInterval}
}

// newCountdownWithClock allows deterministic deadlines in tests.
func newCountdownWithClock(now func() time.Time, interval time.Duration) *Countdown {
	return &Countdown{clock: now, interval: interval}
}

// Start begins a fresh countdown of d, discarding any countdown still in
// flight. onTick is invoked on every poll with the clamped remaining time;
// onExpire fires once when the deadline passes. Both callbacks run on the
// countdown's own goroutine and must not call back into Start or Cancel.
func (c *Countdown) Start(d time.Duration, onTick func(remaining time.Duration), onExpire func()) {
	c.mu.Lock()
	if c.running {
		close(c.cancel)
	}
	cancel := make(chan struct{})
	c.cancel = cancel
	c.running = true
	c.duration = d
	c.deadline = c.clock().Add(d)
	deadline := c.deadline
	c.mu.Unlock()

	go func() {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		for {
			select {
			case <-cancel:
				return
			case <-ticker.C:
				remaining := deadline.Sub(c.clock())
				if remaining > 0 {
					if onTick != nil {
						onTick(remaining)
					}
					continue
				}
				c.mu.Lock()
				// A newer Start or a Cancel may have overtaken us between
				// the poll and this lock; only the still-running current
				// run may expire.
				current := c.running && c.cancel == cancel
				if current {
					c.running = false
				}
				c.mu.Unlock()
				if current {
					onExpire()
				}
				return
			}
		}
	}()
}

// Cancel stops the countdown. Safe to call repeatedly or when nothing runs.
func (c *Countdown) Cancel() {
	c.mu.Lock()
	if c.running {
		close(c.cancel)
		c.running = false
	}
	c.mu.Unlock()
}

// Remaining reports the time left until the deadline, clamped to >= 0.
func (c *Countdown) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.deadline.IsZero() {
		return 0
	}
	remaining := c.deadline.Sub(c.clock())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Elapsed reports the time used on the current question, clamped to
// [0, duration].
func (c *Countdown) Elapsed() time.Duration {
	c.mu.Lock()
	duration := c.duration
	c.mu.Unlock()
	elapsed := duration - c.Remaining()
	if elapsed < 0 {
		return 0
	}
	if elapsed > duration {
		return duration
	}
	return elapsed
}

// Duration reports the duration the countdown was last started with.
func (c *Countdown) Duration() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.duration
}
