package pipeline

import (
	"context"
	"image"
	"image/color"
	"math"
	"time"

	"github.com/user/storyreel/pkg/ports"
	"github.com/user/storyreel/pkg/storyboard"
)

// =============================================================================
// Common Types
// =============================================================================

// Dimension represents width and height.
type Dimension struct {
	Width  int
	Height int
}

// FrameInterval returns the duration of one frame at fps, rounded up to the
// nanosecond so that frame n never starts before n/fps seconds.
func FrameInterval(fps float64) time.Duration {
	if fps <= 0 {
		fps = 30
	}
	return time.Duration(math.Ceil(float64(time.Second) / fps))
}

// Rectangle represents a rectangular area.
type Rectangle struct {
	X      int
	Y      int
	Width  int
	Height int
}

// =============================================================================
// Layout Stage Types
// =============================================================================

// LayoutInput contains parameters for layout calculation.
type LayoutInput struct {
	AspectRatio string // "16:9" for landscape, anything else is portrait
	Width       int    // Overrides the ratio preset when both Width and Height are set
	Height      int
	BandMargin  int // Horizontal inset of the subtitle band (default: 50)
	BandOffset  int // Distance from the band top to the bottom edge (default: 100)
	BandHeight  int // Subtitle band height (default: 60)
	TextOffset  int // Distance from the text baseline to the bottom edge (default: 60)
}

// DefaultLayoutInput returns LayoutInput with default values.
func DefaultLayoutInput() LayoutInput {
	return LayoutInput{
		AspectRatio: "16:9",
		BandMargin:  50,
		BandOffset:  100,
		BandHeight:  60,
		TextOffset:  60,
	}
}

// LayoutResult contains the canvas size and subtitle placement.
type LayoutResult struct {
	Canvas           Dimension
	SubtitleBand     Rectangle
	SubtitleBaseline int // y of the subtitle text baseline
}

// =============================================================================
// Media Loader Types
// =============================================================================

// Media is a decoded, drawable scene asset.
type Media interface {
	// Kind reports whether this is a still image or a video clip.
	Kind() storyboard.MediaKind

	// Size returns the intrinsic media dimensions.
	Size() Dimension

	// FrameAt returns the frame displayed offset after the media started.
	// Stills return the same bitmap for every offset.
	FrameAt(offset time.Duration) (image.Image, error)

	// Close releases decoders and buffers.
	Close() error
}

// MediaLoader resolves scene media references into drawable handles.
type MediaLoader interface {
	// Check rejects refs that cannot load, such as expired locators,
	// without fetching or decoding anything.
	Check(ref storyboard.MediaRef) error

	Load(ctx context.Context, ref storyboard.MediaRef) (Media, error)
}

// =============================================================================
// Composite Stage Types
// =============================================================================

// Theme defines frame styling.
type Theme struct {
	BackgroundColor color.Color
	BandColor       color.Color
	TextColor       color.Color
	FontSize        float64
	FontPath        string // Empty selects the embedded bold font
}

// DefaultTheme returns the default frame theme.
func DefaultTheme() Theme {
	return Theme{
		BackgroundColor: color.Black,
		BandColor:       color.NRGBA{R: 0, G: 0, B: 0, A: 178}, // 70% black
		TextColor:       color.White,
		FontSize:        24,
	}
}

// PaintInput contains everything one frame depends on.
type PaintInput struct {
	Frame           image.Image
	Kind            storyboard.MediaKind
	Subtitle        string
	SubtitleEnabled bool
	Layout          LayoutResult
	Theme           Theme
}

// PaintResult describes a painted frame.
type PaintResult struct {
	Image         image.Image
	MediaRect     Rectangle // Where the media was drawn, possibly past the canvas edges
	SubtitleDrawn bool
}

// =============================================================================
// Narration Types
// =============================================================================

// NarrationSource names how a scene's narration was produced.
type NarrationSource string

const (
	NarrationNone      NarrationSource = "none"
	NarrationRecorded  NarrationSource = "recorded"
	NarrationGenerated NarrationSource = "generated"
	NarrationSpeech    NarrationSource = "speech"
)

// Playback is the narration of one scene.
type Playback interface {
	// Source reports which narration path was taken.
	Source() NarrationSource

	// Cancel ends the playback at timeline time at.
	// Speech is always cut there; recorded audio follows the overflow policy.
	Cancel(at time.Duration)

	// Cues returns the audio placed on the timeline.
	Cues() []ports.NarrationCue

	// Notices returns non-fatal problems, such as a failed generation.
	Notices() []error
}

// NarrationPlayer starts scene narration.
type NarrationPlayer interface {
	// Play places scene narration at timeline time at.
	Play(ctx context.Context, scene storyboard.Scene, at time.Duration) (Playback, error)
}

// =============================================================================
// Recorder Types
// =============================================================================

// StreamRecorder captures painted frames into an encoded container.
type StreamRecorder interface {
	Start(ctx context.Context, width, height int, fps float64) (RecordingSession, error)
}

// RecordingSession is one live capture.
type RecordingSession interface {
	// Capture records img as the canvas content from timeline time at onward.
	// Timeline time is zero when the session starts, whatever the frame clock reads.
	Capture(img image.Image, at time.Duration) error

	// AddNarration adds a cue to the narration track.
	AddNarration(cue ports.NarrationCue)

	// Stop finalizes the capture at timeline time end.
	Stop(ctx context.Context, end time.Duration) (ports.RenderProduct, error)

	// Abort discards the capture.
	Abort()
}

// =============================================================================
// Render (Sequence) Stage Types
// =============================================================================

// RenderInput contains parameters for one render job.
type RenderInput struct {
	Scenes []storyboard.Scene
	Layout LayoutResult
	Theme  Theme
	FPS    float64
	Clock  ports.FrameClock
	Hooks  Hooks
}

// Hooks are optional render callbacks.
type Hooks struct {
	OnSceneStart func(index int, scene storyboard.Scene)
	OnComplete   func(result RenderResult)
	OnError      func(err error)
}

// RenderResult contains the render output.
type RenderResult struct {
	Product  ports.RenderProduct
	Timeline []SceneTiming
	Notices  []Notice
}

// SceneTiming records when a scene was on screen.
type SceneTiming struct {
	Index     int
	SceneID   string
	StartMs   int
	EndMs     int
	Frames    int
	Subtitle  bool
	Narration NarrationSource
}

// Notice is a non-fatal problem reported during a render.
type Notice struct {
	SceneIndex int
	SceneID    string
	Err        error
}
