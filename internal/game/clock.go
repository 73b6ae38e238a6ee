package game

import (
	"context"
	"log/slog"
	"time"
)

// Ticker is advanced by a Clock.
type Ticker interface {
	TickAll(dt time.Duration)
}

// Clock drives a Ticker at a fixed interval, passing the real time elapsed
// since the previous tick.
type Clock struct {
	interval time.Duration
	target   Ticker
	logger   *slog.Logger
}

func NewClock(interval time.Duration, target Ticker, logger *slog.Logger) *Clock {
	return &Clock{interval: interval, target: target, logger: logger}
}

// Run ticks until ctx is done.
func (c *Clock) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.logger.Info("clock started", "interval", c.interval)
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("clock stopped")
			return nil
		case now := <-ticker.C:
			c.target.TickAll(now.Sub(last))
			last = now
		}
	}
}
