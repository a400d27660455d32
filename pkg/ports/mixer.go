package ports

import "context"

// NarrationCue places one narration clip on the render timeline.
type NarrationCue struct {
	SceneID  string
	Data     []byte // Encoded audio, usually WAV
	MimeType string
	StartMs  int // Timeline offset
	MaxMs    int // Trim after this many ms; 0 plays to the end
}

// AudioMuxer mixes narration cues onto an encoded video.
type AudioMuxer interface {
	// Mux returns a container holding video plus one mixed narration track
	// no longer than durationMs.
	Mux(ctx context.Context, video []byte, format VideoFormat, cues []NarrationCue, durationMs int) ([]byte, error)
}
