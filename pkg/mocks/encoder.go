package mocks

import (
	"image"
	"sync"

	"github.com/user/storyreel/pkg/ports"
)

// VideoEncoder is a mock implementation of ports.VideoEncoder.
// It is safe for use from the recorder's encoder goroutine.
type VideoEncoder struct {
	BeginFunc       func(width, height int, fps float64, opts ports.EncoderOptions) error
	EncodeFrameFunc func(img image.Image, timestampMs int) error
	EndFunc         func() ([]byte, error)
	FormatValue     ports.VideoFormat

	mu sync.Mutex

	// Recorded calls for verification
	BeginCalled      bool
	BeginFPS         float64
	EncodeFrameCalls []EncodeFrameCall
	EndCalled        bool
	AbortCalled      bool
}

// EncodeFrameCall records a call to EncodeFrame.
type EncodeFrameCall struct {
	TimestampMs int
	Image       image.Image
}

func (m *VideoEncoder) Begin(width, height int, fps float64, opts ports.EncoderOptions) error {
	m.mu.Lock()
	m.BeginCalled = true
	m.BeginFPS = fps
	m.mu.Unlock()
	if m.BeginFunc != nil {
		return m.BeginFunc(width, height, fps, opts)
	}
	return nil
}

func (m *VideoEncoder) EncodeFrame(img image.Image, timestampMs int) error {
	m.mu.Lock()
	m.EncodeFrameCalls = append(m.EncodeFrameCalls, EncodeFrameCall{TimestampMs: timestampMs, Image: img})
	m.mu.Unlock()
	if m.EncodeFrameFunc != nil {
		return m.EncodeFrameFunc(img, timestampMs)
	}
	return nil
}

func (m *VideoEncoder) End() ([]byte, error) {
	m.mu.Lock()
	m.EndCalled = true
	m.mu.Unlock()
	if m.EndFunc != nil {
		return m.EndFunc()
	}
	// Return minimal WebM header
	return []byte{0x1A, 0x45, 0xDF, 0xA3}, nil
}

func (m *VideoEncoder) Abort() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AbortCalled = true
}

func (m *VideoEncoder) Format() ports.VideoFormat {
	if m.FormatValue.Container == "" {
		return ports.FormatWebM
	}
	return m.FormatValue
}

// Frames returns a copy of the recorded EncodeFrame calls.
func (m *VideoEncoder) Frames() []EncodeFrameCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]EncodeFrameCall, len(m.EncodeFrameCalls))
	copy(out, m.EncodeFrameCalls)
	return out
}

var _ ports.VideoEncoder = (*VideoEncoder)(nil)
