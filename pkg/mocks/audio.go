package mocks

import (
	"context"
	"sync"

	"github.com/user/storyreel/pkg/ports"
)

// SpeechSynthesizer is a mock implementation of ports.SpeechSynthesizer.
type SpeechSynthesizer struct {
	SynthesizeFunc func(ctx context.Context, text string, opts ports.SpeechOptions) ([]byte, error)

	mu    sync.Mutex
	Texts []string
	Opts  []ports.SpeechOptions
}

func (m *SpeechSynthesizer) Synthesize(ctx context.Context, text string, opts ports.SpeechOptions) ([]byte, error) {
	m.mu.Lock()
	m.Texts = append(m.Texts, text)
	m.Opts = append(m.Opts, opts)
	m.mu.Unlock()
	if m.SynthesizeFunc != nil {
		return m.SynthesizeFunc(ctx, text, opts)
	}
	return []byte("RIFF-speech"), nil
}

var _ ports.SpeechSynthesizer = (*SpeechSynthesizer)(nil)

// AudioMuxer is a mock implementation of ports.AudioMuxer.
type AudioMuxer struct {
	MuxFunc func(ctx context.Context, video []byte, format ports.VideoFormat, cues []ports.NarrationCue, durationMs int) ([]byte, error)

	mu         sync.Mutex
	MuxCalled  bool
	Cues       []ports.NarrationCue
	DurationMs int
}

func (m *AudioMuxer) Mux(ctx context.Context, video []byte, format ports.VideoFormat, cues []ports.NarrationCue, durationMs int) ([]byte, error) {
	m.mu.Lock()
	m.MuxCalled = true
	m.Cues = append([]ports.NarrationCue(nil), cues...)
	m.DurationMs = durationMs
	m.mu.Unlock()
	if m.MuxFunc != nil {
		return m.MuxFunc(ctx, video, format, cues, durationMs)
	}
	return append(append([]byte{}, video...), []byte("+audio")...), nil
}

var _ ports.AudioMuxer = (*AudioMuxer)(nil)
