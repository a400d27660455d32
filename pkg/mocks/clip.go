package mocks

import (
	"context"
	"image"
	"image/color"
	"io"
	"sync"

	"github.com/user/storyreel/pkg/ports"
)

// ClipDecoder is a mock implementation of ports.ClipDecoder.
// By default it yields Frames solid frames of Info's size.
type ClipDecoder struct {
	ProbeFunc func(ctx context.Context, path string) (ports.ClipInfo, error)
	OpenFunc  func(ctx context.Context, path string, info ports.ClipInfo, fps float64) (ports.ClipStream, error)

	Info   ports.ClipInfo
	Frames int

	mu      sync.Mutex
	Opened  []string
	Streams []*ClipStream
}

func (m *ClipDecoder) Probe(ctx context.Context, path string) (ports.ClipInfo, error) {
	if m.ProbeFunc != nil {
		return m.ProbeFunc(ctx, path)
	}
	info := m.Info
	if info.Width == 0 {
		info = ports.ClipInfo{Width: 64, Height: 36, DurationMs: 1000, Codec: "h264"}
	}
	return info, nil
}

func (m *ClipDecoder) Open(ctx context.Context, path string, info ports.ClipInfo, fps float64) (ports.ClipStream, error) {
	m.mu.Lock()
	m.Opened = append(m.Opened, path)
	m.mu.Unlock()
	if m.OpenFunc != nil {
		return m.OpenFunc(ctx, path, info, fps)
	}
	frames := m.Frames
	if frames == 0 {
		frames = 3
	}
	s := NewClipStream(info.Width, info.Height, frames)
	m.mu.Lock()
	m.Streams = append(m.Streams, s)
	m.mu.Unlock()
	return s, nil
}

var _ ports.ClipDecoder = (*ClipDecoder)(nil)

// ClipStream yields a fixed number of frames whose red channel is the frame index.
type ClipStream struct {
	width, height int
	total         int

	mu     sync.Mutex
	next   int
	Closed bool
}

// NewClipStream creates a stream of n frames.
func NewClipStream(width, height, n int) *ClipStream {
	return &ClipStream{width: width, height: height, total: n}
}

func (s *ClipStream) Next() (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Closed || s.next >= s.total {
		return nil, io.EOF
	}
	img := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	c := color.RGBA{R: uint8(s.next), A: 255}
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	s.next++
	return img, nil
}

func (s *ClipStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Closed = true
	return nil
}

// IsClosed reports whether Close was called.
func (s *ClipStream) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Closed
}

var _ ports.ClipStream = (*ClipStream)(nil)
