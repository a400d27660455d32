package ports

import (
	"context"

	"github.com/user/storyreel/pkg/storyboard"
)

// Asset is generated or uploaded media bytes.
type Asset struct {
	Data     []byte
	MimeType string
}

// GenerativeClient abstracts the remote image and speech generation service.
// Calls are not retried.
type GenerativeClient interface {
	// GenerateImage renders prompt in style at aspectRatio (e.g. "16:9").
	GenerateImage(ctx context.Context, prompt, style, aspectRatio string) (Asset, error)

	// GenerateNarrationAudio speaks text with voice and returns WAV audio.
	GenerateNarrationAudio(ctx context.Context, text string, voice storyboard.Voice) (Asset, error)

	// PreviewVoice returns a short WAV sample of voice.
	PreviewVoice(ctx context.Context, voice storyboard.Voice) (Asset, error)
}
