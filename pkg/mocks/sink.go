package mocks

import (
	"image"
	"sync"

	"github.com/user/storyreel/pkg/ports"
)

// DebugSink is a mock implementation of ports.DebugSink.
type DebugSink struct {
	mu sync.RWMutex

	enabled bool

	LayoutJSON   []byte
	TimelineJSON []byte
	SceneFrames  map[int]image.Image
}

// NewDebugSink creates a new mock DebugSink.
func NewDebugSink(enabled bool) *DebugSink {
	return &DebugSink{
		enabled:     enabled,
		SceneFrames: make(map[int]image.Image),
	}
}

func (m *DebugSink) Enabled() bool {
	return m.enabled
}

func (m *DebugSink) SaveLayoutJSON(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LayoutJSON = data
	return nil
}

func (m *DebugSink) SaveTimelineJSON(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TimelineJSON = data
	return nil
}

func (m *DebugSink) SaveSceneFrame(index int, img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SceneFrames[index] = img
	return nil
}

var _ ports.DebugSink = (*DebugSink)(nil)
