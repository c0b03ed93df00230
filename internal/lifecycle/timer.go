package lifecycle

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Countdown tracks remaining time against a fixed deadline at 1 Hz.
// It is presentational only: expiry here never transitions an order;
// the authoritative TIMEOUT arrives as an order-timeout event from the
// backend.
type Countdown struct {
	mu        sync.Mutex
	now       func() time.Time
	deadline  time.Time
	remaining time.Duration
	running   bool
	cancel    chan struct{}
	logger    zerolog.Logger
}

// NewCountdown creates a stopped countdown.
func NewCountdown(logger zerolog.Logger) *Countdown {
	return &Countdown{
		now:    time.Now,
		logger: logger.With().Str("component", "countdown").Logger(),
	}
}

// Start arms the countdown for the given duration, replacing any run
// already in progress.
func (c *Countdown) Start(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()
	c.deadline = c.now().Add(d)
	c.remaining = d
	c.running = true
	c.cancel = make(chan struct{})

	go c.tickLoop(c.cancel)
	c.logger.Debug().Dur("duration", d).Msg("countdown started")
}

// Stop cancels the countdown and clears the remaining time.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		c.stopLocked()
		c.logger.Debug().Msg("countdown stopped")
	}
}

// Remaining returns the time left, 0 when expired or stopped.
func (c *Countdown) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Running reports whether the countdown is armed and not yet expired.
func (c *Countdown) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// stopLocked cancels the tick loop. Caller holds the mutex.
func (c *Countdown) stopLocked() {
	if c.cancel != nil {
		close(c.cancel)
		c.cancel = nil
	}
	c.running = false
	c.remaining = 0
}

// tickLoop recomputes the remaining time once per second until the
// deadline passes or the countdown is stopped.
func (c *Countdown) tickLoop(cancel chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-cancel:
			return
		case <-ticker.C:
			if c.tick() {
				return
			}
		}
	}
}

// tick recomputes remaining from the clock. It returns true when the
// countdown has expired and the loop should exit. Remaining never goes
// negative.
func (c *Countdown) tick() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return true
	}

	remaining := c.deadline.Sub(c.now())
	if remaining <= 0 {
		// Natural expiry: observational only, nothing transitions.
		c.remaining = 0
		c.running = false
		c.cancel = nil
		c.logger.Debug().Msg("countdown expired")
		return true
	}
	c.remaining = remaining
	return false
}
