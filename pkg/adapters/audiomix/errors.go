package audiomix

import "errors"

var (
	// ErrNoCues is returned when Mux is called without narration.
	ErrNoCues = errors.New("audiomix: no narration cues")

	// ErrUnsupportedContainer is returned for containers other than webm and mp4.
	ErrUnsupportedContainer = errors.New("audiomix: unsupported container")
)
