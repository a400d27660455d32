package ports

import (
	"image"
)

// DebugSink abstracts debug output for intermediate results.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveLayoutJSON saves the layout calculation result as JSON.
	SaveLayoutJSON(data []byte) error

	// SaveTimelineJSON saves the per-scene render timeline as JSON.
	SaveTimelineJSON(data []byte) error

	// SaveSceneFrame saves the first composed frame of a scene.
	SaveSceneFrame(index int, img image.Image) error
}
