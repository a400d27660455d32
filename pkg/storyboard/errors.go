package storyboard

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyStoryboard is matched by EmptyStoryboardError.
	ErrEmptyStoryboard = errors.New("storyboard: no scenes to render")

	// ErrMediaLoad is matched by MediaLoadError.
	ErrMediaLoad = errors.New("storyboard: media load failed")

	// ErrNarrationGeneration is matched by NarrationGenerationError.
	ErrNarrationGeneration = errors.New("storyboard: narration generation failed")

	// ErrCapture is matched by CaptureError.
	ErrCapture = errors.New("storyboard: capture failed")

	// ErrInvalidDuration is returned for durations that are not positive finite numbers.
	ErrInvalidDuration = errors.New("storyboard: duration must be a positive finite number of seconds")

	// ErrInvalidMediaKind is returned for media kinds other than image and video.
	ErrInvalidMediaKind = errors.New("storyboard: invalid media kind")

	// ErrInvalidVoice is returned for voices outside the supported set.
	ErrInvalidVoice = errors.New("storyboard: invalid voice")

	// ErrSceneNotFound is returned when a scene ID is not in the storyboard.
	ErrSceneNotFound = errors.New("storyboard: scene not found")

	// ErrItemNotFound is returned when a gallery item ID is not in the gallery.
	ErrItemNotFound = errors.New("storyboard: gallery item not found")

	// ErrExpiredMedia is returned when a locator is the expired sentinel.
	ErrExpiredMedia = errors.New("storyboard: media reference expired")

	// ErrReuploadRequired is returned when an expired gallery item is linked or downloaded.
	ErrReuploadRequired = errors.New("storyboard: local file expired, upload it again")

	// ErrMissingAPIKey is returned when a generative call is attempted without an API key.
	ErrMissingAPIKey = errors.New("storyboard: API key not configured")
)

// EmptyStoryboardError reports a render attempted on zero scenes.
type EmptyStoryboardError struct{}

func (e *EmptyStoryboardError) Error() string { return ErrEmptyStoryboard.Error() }

// Is reports whether target is ErrEmptyStoryboard.
func (e *EmptyStoryboardError) Is(target error) bool { return target == ErrEmptyStoryboard }

// MediaLoadError reports a scene whose asset could not be resolved or decoded.
type MediaLoadError struct {
	SceneIndex int
	SceneID    string
	Locator    string
	Err        error
}

func (e *MediaLoadError) Error() string {
	return fmt.Sprintf("storyboard: scene %d (%s): load %s: %v",
		e.SceneIndex+1, e.SceneID, ShortLocator(e.Locator), e.Err)
}

func (e *MediaLoadError) Unwrap() error { return e.Err }

// Is reports whether target is ErrMediaLoad.
func (e *MediaLoadError) Is(target error) bool { return target == ErrMediaLoad }

// NarrationGenerationError reports a failed remote narration request.
// It is scoped to one scene and never aborts a render.
type NarrationGenerationError struct {
	SceneID string
	Voice   Voice
	Err     error
}

func (e *NarrationGenerationError) Error() string {
	return fmt.Sprintf("storyboard: scene %s: narration with voice %s: %v", e.SceneID, e.Voice, e.Err)
}

func (e *NarrationGenerationError) Unwrap() error { return e.Err }

// Is reports whether target is ErrNarrationGeneration.
func (e *NarrationGenerationError) Is(target error) bool { return target == ErrNarrationGeneration }

// Capture phases.
const (
	PhaseStart = "start"
	PhaseFrame = "frame"
	PhaseStop  = "stop"
	PhaseMux   = "mux"
)

// CaptureError reports a recorder that failed to start or produced no data.
type CaptureError struct {
	Phase string
	Err   error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("storyboard: capture %s: %v", e.Phase, e.Err)
}

func (e *CaptureError) Unwrap() error { return e.Err }

// Is reports whether target is ErrCapture.
func (e *CaptureError) Is(target error) bool { return target == ErrCapture }

// ShortLocator shortens inline data locators for messages.
func ShortLocator(locator string) string {
	const max = 64
	if len(locator) <= max {
		return locator
	}
	return fmt.Sprintf("%s... (%d chars)", locator[:max], len(locator))
}
