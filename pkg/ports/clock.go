package ports

import (
	"context"
	"time"
)

// FrameClock paces the repaint loop.
type FrameClock interface {
	// Now returns the time elapsed since the clock started.
	Now() time.Duration

	// Next blocks until the next redraw opportunity and returns its time.
	Next(ctx context.Context) (time.Duration, error)
}
