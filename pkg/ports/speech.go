package ports

import "context"

// SpeechSynthesizer turns text into speech on the local device.
type SpeechSynthesizer interface {
	// Synthesize returns WAV audio for text.
	Synthesize(ctx context.Context, text string, opts SpeechOptions) ([]byte, error)
}

// SpeechOptions configures on-device speech.
type SpeechOptions struct {
	Language       string // BCP 47 tag, e.g. "pt-BR"
	Voice          string // Engine voice name; empty uses the language default
	WordsPerMinute int
}
