package ports

import (
	"context"
	"image"
)

// ClipInfo describes a video clip's intrinsic properties.
type ClipInfo struct {
	Width      int
	Height     int
	DurationMs int
	Codec      string
}

// ClipDecoder opens video clips for silent frame sampling.
type ClipDecoder interface {
	// Probe reads the clip dimensions without decoding frames.
	Probe(ctx context.Context, path string) (ClipInfo, error)

	// Open starts decoding the clip without its audio track at fps frames per second.
	Open(ctx context.Context, path string, info ClipInfo, fps float64) (ClipStream, error)
}

// ClipStream yields decoded frames in presentation order.
type ClipStream interface {
	// Next returns the next frame, or io.EOF after the last one.
	Next() (image.Image, error)

	// Close stops decoding and releases the process.
	Close() error
}
