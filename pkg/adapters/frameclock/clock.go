// Package frameclock provides repaint clocks for the scene sequencer.
package frameclock

import (
	"context"
	"sync"
	"time"

	"github.com/user/storyreel/pkg/pipeline"
	"github.com/user/storyreel/pkg/ports"
)

// Virtual is a deterministic clock for offline rendering.
// Each Next advances exactly one frame interval without sleeping.
type Virtual struct {
	mu       sync.Mutex
	interval time.Duration
	frame    int64
}

// NewVirtual creates a virtual clock ticking at fps.
func NewVirtual(fps float64) *Virtual {
	return &Virtual{interval: pipeline.FrameInterval(fps)}
}

// Now returns the time of the current frame.
func (c *Virtual) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.at(c.frame)
}

// Next advances one frame.
func (c *Virtual) Next(ctx context.Context) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frame++
	return c.at(c.frame), nil
}

// Interval returns the frame interval.
func (c *Virtual) Interval() time.Duration {
	return c.interval
}

// at computes frame times from the frame count so rounding never accumulates.
func (c *Virtual) at(frame int64) time.Duration {
	return time.Duration(frame) * c.interval
}

// Realtime paces repaints at wall-clock speed with a ticker.
type Realtime struct {
	start  time.Time
	ticker *time.Ticker
	now    func() time.Time
}

// NewRealtime creates a clock that refreshes refreshHz times per second.
// Call Stop to release the ticker.
func NewRealtime(refreshHz float64) *Realtime {
	if refreshHz <= 0 {
		refreshHz = 60
	}
	return &Realtime{
		start:  time.Now(),
		ticker: time.NewTicker(pipeline.FrameInterval(refreshHz)),
		now:    time.Now,
	}
}

// Now returns the wall-clock time since the clock was created.
func (c *Realtime) Now() time.Duration {
	return c.now().Sub(c.start)
}

// Next waits for the next tick.
func (c *Realtime) Next(ctx context.Context) (time.Duration, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-c.ticker.C:
		return c.Now(), nil
	}
}

// Stop releases the ticker.
func (c *Realtime) Stop() {
	c.ticker.Stop()
}

var (
	_ ports.FrameClock = (*Virtual)(nil)
	_ ports.FrameClock = (*Realtime)(nil)
)
