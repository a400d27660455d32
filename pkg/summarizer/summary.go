// Package summarizer provides summary generation for render results.
package summarizer

import "time"

// Summary contains all data collected during a render.
type Summary struct {
	// Metadata
	GeneratedAt time.Time

	// Storyboard
	Scenes []SceneRow

	// Render settings
	Settings Settings

	// Video output details
	Video VideoInfo

	// Non-fatal problems, one line each
	Notices []string

	// Process resources
	Resources Resources
}

// SceneRow describes one rendered scene.
type SceneRow struct {
	Index     int
	Kind      string
	Duration  float64 // seconds
	StartMs   int
	Frames    int
	Subtitle  bool
	Narration string
	Voice     string
}

// Settings contains the render configuration.
type Settings struct {
	AspectRatio string
	FPS         float64
	Codec       string
	Overflow    string
	Realtime    bool
}

// VideoInfo contains information about the output video.
type VideoInfo struct {
	FrameCount   int
	DurationMs   int
	FileSize     int64
	CanvasWidth  int
	CanvasHeight int
	Path         string
	GalleryItem  string // Empty when not added to the gallery
}

// Resources describes what the process used.
type Resources struct {
	PeakRSS uint64 // bytes, 0 when unavailable
	CPUTime time.Duration
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithScenes sets the scene table.
func (b *Builder) WithScenes(rows []SceneRow) *Builder {
	b.summary.Scenes = rows
	return b
}

// WithSettings sets render settings.
func (b *Builder) WithSettings(settings Settings) *Builder {
	b.summary.Settings = settings
	return b
}

// WithVideo sets video output information.
func (b *Builder) WithVideo(video VideoInfo) *Builder {
	b.summary.Video = video
	return b
}

// WithNotice appends a notice line.
func (b *Builder) WithNotice(notice string) *Builder {
	b.summary.Notices = append(b.summary.Notices, notice)
	return b
}

// WithResources sets process resource usage.
func (b *Builder) WithResources(r Resources) *Builder {
	b.summary.Resources = r
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
