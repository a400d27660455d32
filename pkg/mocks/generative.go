package mocks

import (
	"context"
	"sync"

	"github.com/user/storyreel/pkg/ports"
	"github.com/user/storyreel/pkg/storyboard"
)

// GenerativeClient is a mock implementation of ports.GenerativeClient.
type GenerativeClient struct {
	GenerateImageFunc          func(ctx context.Context, prompt, style, aspectRatio string) (ports.Asset, error)
	GenerateNarrationAudioFunc func(ctx context.Context, text string, voice storyboard.Voice) (ports.Asset, error)
	PreviewVoiceFunc           func(ctx context.Context, voice storyboard.Voice) (ports.Asset, error)

	mu             sync.Mutex
	ImagePrompts   []string
	NarrationTexts []string
	PreviewVoices  []storyboard.Voice
}

func (m *GenerativeClient) GenerateImage(ctx context.Context, prompt, style, aspectRatio string) (ports.Asset, error) {
	m.mu.Lock()
	m.ImagePrompts = append(m.ImagePrompts, prompt)
	m.mu.Unlock()
	if m.GenerateImageFunc != nil {
		return m.GenerateImageFunc(ctx, prompt, style, aspectRatio)
	}
	return ports.Asset{Data: []byte("png"), MimeType: "image/png"}, nil
}

func (m *GenerativeClient) GenerateNarrationAudio(ctx context.Context, text string, voice storyboard.Voice) (ports.Asset, error) {
	m.mu.Lock()
	m.NarrationTexts = append(m.NarrationTexts, text)
	m.mu.Unlock()
	if m.GenerateNarrationAudioFunc != nil {
		return m.GenerateNarrationAudioFunc(ctx, text, voice)
	}
	return ports.Asset{Data: []byte("RIFF"), MimeType: "audio/wav"}, nil
}

func (m *GenerativeClient) PreviewVoice(ctx context.Context, voice storyboard.Voice) (ports.Asset, error) {
	m.mu.Lock()
	m.PreviewVoices = append(m.PreviewVoices, voice)
	m.mu.Unlock()
	if m.PreviewVoiceFunc != nil {
		return m.PreviewVoiceFunc(ctx, voice)
	}
	return ports.Asset{Data: []byte("RIFF"), MimeType: "audio/wav"}, nil
}

var _ ports.GenerativeClient = (*GenerativeClient)(nil)
