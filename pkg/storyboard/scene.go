// Package storyboard defines scenes, gallery items and the ordered storyboard.
package storyboard

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MediaKind tags how a locator is interpreted by the media loader.
type MediaKind string

const (
	KindImage MediaKind = "image"
	KindVideo MediaKind = "video"
)

// ParseMediaKind parses "image" or "video".
func ParseMediaKind(s string) (MediaKind, error) {
	switch MediaKind(strings.ToLower(strings.TrimSpace(s))) {
	case KindImage:
		return KindImage, nil
	case KindVideo:
		return KindVideo, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMediaKind, s)
	}
}

// Valid reports whether k is image or video.
func (k MediaKind) Valid() bool {
	return k == KindImage || k == KindVideo
}

// Voice names a prebuilt synthetic voice.
type Voice string

const (
	VoiceZephyr Voice = "Zephyr"
	VoicePuck   Voice = "Puck"
	VoiceCharon Voice = "Charon"
	VoiceKore   Voice = "Kore"
	VoiceFenrir Voice = "Fenrir"
)

// Voices lists the supported voices in display order.
var Voices = []Voice{VoiceZephyr, VoicePuck, VoiceCharon, VoiceKore, VoiceFenrir}

// ParseVoice matches a voice name case-insensitively.
func ParseVoice(s string) (Voice, error) {
	for _, v := range Voices {
		if strings.EqualFold(string(v), strings.TrimSpace(s)) {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidVoice, s)
}

// Valid reports whether v is one of Voices.
func (v Voice) Valid() bool {
	for _, known := range Voices {
		if v == known {
			return true
		}
	}
	return false
}

// Defaults for new scenes.
const (
	DefaultDuration = 4.0
	DefaultVoice    = VoiceKore
)

// ExpiredLocator replaces session-only locators when state is persisted.
const ExpiredLocator = "local_file_ref"

// IsExpiredLocator reports whether locator is the expired sentinel.
func IsExpiredLocator(locator string) bool {
	return locator == ExpiredLocator
}

// MediaRef points at a scene's visual asset.
type MediaRef struct {
	Locator string    `json:"locator" yaml:"locator"`
	Kind    MediaKind `json:"kind" yaml:"kind"`
}

// Scene is one timed unit of the storyboard.
type Scene struct {
	ID               string   `json:"id" yaml:"id"`
	Media            MediaRef `json:"media" yaml:"media"`
	NarrationText    string   `json:"narrationText,omitempty" yaml:"narration_text,omitempty"`
	NarrationAudio   string   `json:"narrationAudio,omitempty" yaml:"narration_audio,omitempty"`
	Voice            Voice    `json:"voice" yaml:"voice"`
	Duration         float64  `json:"duration" yaml:"duration"` // seconds
	SubtitlesEnabled bool     `json:"subtitlesEnabled" yaml:"subtitles"`
}

// NewScene returns a scene with a fresh ID and the default settings.
func NewScene() Scene {
	return Scene{
		ID:               uuid.NewString(),
		Media:            MediaRef{Kind: KindImage},
		Voice:            DefaultVoice,
		Duration:         DefaultDuration,
		SubtitlesEnabled: true,
	}
}

// ValidateDuration rejects non-positive, NaN and infinite durations.
func ValidateDuration(seconds float64) error {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidDuration, seconds)
	}
	return nil
}

// Validate checks the scene invariants that can be verified without loading media.
func (s Scene) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("storyboard: scene has no ID")
	}
	if err := ValidateDuration(s.Duration); err != nil {
		return err
	}
	if !s.Media.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMediaKind, s.Media.Kind)
	}
	if !s.Voice.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidVoice, s.Voice)
	}
	return nil
}

// Length returns the scene duration as a time.Duration.
func (s Scene) Length() time.Duration {
	return time.Duration(s.Duration * float64(time.Second))
}

// Subtitle returns the text to overlay, or "" when subtitles are off or there is no narration.
func (s Scene) Subtitle() string {
	if !s.SubtitlesEnabled {
		return ""
	}
	return s.NarrationText
}

// normalize fills fields that older stored scenes may lack.
func (s *Scene) normalize() {
	if s.Voice == "" {
		s.Voice = DefaultVoice
	}
	if s.Media.Kind == "" {
		s.Media.Kind = KindImage
	}
}
