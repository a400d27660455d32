// Package orchestrator coordinates all pipeline stages.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/color"

	"github.com/ideamans/go-l10n"
	"github.com/user/storyreel/pkg/pipeline"
	"github.com/user/storyreel/pkg/ports"
	"github.com/user/storyreel/pkg/storyboard"
)

// Config contains all configuration for the orchestrator.
type Config struct {
	// Layout
	AspectRatio string // "16:9" or "9:16"
	Width       int    // Overrides the ratio preset when Width and Height are set
	Height      int

	// Style
	BandColor [4]uint8 // RGBA
	TextColor [4]uint8 // RGBA
	FontSize  float64
	FontPath  string

	// Timing
	FPS float64

	// Reported in the summary only
	Codec    string
	Overflow string
	Realtime bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		AspectRatio: "16:9",
		FontSize:    24,
		FPS:         30,
		Codec:       "vp9",
		Overflow:    "allow",
	}
}

// ClockFactory creates the frame clock of one render.
type ClockFactory func(fps float64) ports.FrameClock

// Orchestrator coordinates the execution of all pipeline stages.
type Orchestrator struct {
	layoutStage   pipeline.Stage[pipeline.LayoutInput, pipeline.LayoutResult]
	sequenceStage pipeline.Stage[pipeline.RenderInput, pipeline.RenderResult]
	products      ports.ProductSink
	sink          ports.DebugSink
	clocks        ClockFactory
	logger        ports.Logger
}

// New creates a new Orchestrator.
func New(
	layoutStage pipeline.Stage[pipeline.LayoutInput, pipeline.LayoutResult],
	sequenceStage pipeline.Stage[pipeline.RenderInput, pipeline.RenderResult],
	products ports.ProductSink,
	sink ports.DebugSink,
	clocks ClockFactory,
	logger ports.Logger,
) *Orchestrator {
	return &Orchestrator{
		layoutStage:   layoutStage,
		sequenceStage: sequenceStage,
		products:      products,
		sink:          sink,
		clocks:        clocks,
		logger:        logger,
	}
}

// Run renders scenes and delivers the product.
func (o *Orchestrator) Run(ctx context.Context, config Config, scenes []storyboard.Scene) (RunResult, error) {
	o.logger.Info(l10n.T("Starting pipeline"))

	if len(scenes) == 0 {
		err := &storyboard.EmptyStoryboardError{}
		o.logger.Error(l10n.F("Failed to render storyboard: %s", err))
		return RunResult{}, err
	}

	// 1. Layout calculation
	o.logger.Info(l10n.T("Calculating layout"))
	layout, err := o.layoutStage.Execute(ctx, o.buildLayoutInput(config))
	if err != nil {
		o.logger.Error(l10n.F("Failed to calculate layout: %s", err))
		return RunResult{}, fmt.Errorf("layout stage: %w", err)
	}
	o.logger.Info(l10n.F("Layout calculated: %dx%d canvas", layout.Canvas.Width, layout.Canvas.Height))

	if o.sink.Enabled() {
		if data, err := json.MarshalIndent(layout, "", "  "); err == nil {
			o.sink.SaveLayoutJSON(data)
		}
	}

	// 2. Render scenes
	fps := config.FPS
	if fps <= 0 {
		fps = 30
	}
	clock := o.clocks(fps)
	if stopper, ok := clock.(interface{ Stop() }); ok {
		defer stopper.Stop()
	}

	o.logger.Info(l10n.F("Rendering %d scenes at %.0f fps", len(scenes), fps))
	render, err := o.sequenceStage.Execute(ctx, pipeline.RenderInput{
		Scenes: scenes,
		Layout: layout,
		Theme:  o.buildTheme(config),
		FPS:    fps,
		Clock:  clock,
		Hooks: pipeline.Hooks{
			OnSceneStart: func(index int, scene storyboard.Scene) {
				o.logger.Info(l10n.F("Scene %d/%d", index+1, len(scenes)))
			},
		},
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			o.logger.Warn(l10n.T("Render cancelled, output discarded"))
		} else {
			o.logger.Error(l10n.F("Failed to render storyboard: %s", err))
		}
		return RunResult{}, fmt.Errorf("sequence stage: %w", err)
	}
	for _, n := range render.Notices {
		o.logger.Warn(l10n.F("Scene %d: %s", n.SceneIndex+1, n.Err))
	}
	o.logger.Info(l10n.F("Video encoded: %d bytes", len(render.Product.Data)))

	if o.sink.Enabled() {
		if data, err := json.MarshalIndent(timelineDoc(render), "", "  "); err == nil {
			o.sink.SaveTimelineJSON(data)
		}
	}

	// 3. Deliver
	delivery, err := o.products.Deliver(ctx, render.Product)
	if err != nil {
		o.logger.Error(l10n.F("Failed to write output: %s", err))
		return RunResult{}, fmt.Errorf("deliver product: %w", err)
	}
	o.logger.Info(l10n.F("Output saved to %s", delivery.Path))

	o.logger.Info(l10n.T("Pipeline completed successfully"))

	return RunResult{
		Scenes:        scenes,
		Timeline:      render.Timeline,
		Notices:       render.Notices,
		Format:        render.Product.Format,
		FrameCount:    render.Product.FrameCount,
		VideoDuration: render.Product.DurationMs,
		VideoFileSize: int64(len(render.Product.Data)),
		OutputPath:    delivery.Path,
		GalleryItemID: delivery.GalleryItemID,
		CanvasWidth:   layout.Canvas.Width,
		CanvasHeight:  layout.Canvas.Height,
		AspectRatio:   config.AspectRatio,
		FPS:           fps,
		Overflow:      config.Overflow,
		Realtime:      config.Realtime,
	}, nil
}

func (o *Orchestrator) buildLayoutInput(config Config) pipeline.LayoutInput {
	input := pipeline.DefaultLayoutInput()
	if config.AspectRatio != "" {
		input.AspectRatio = config.AspectRatio
	}
	input.Width = config.Width
	input.Height = config.Height
	return input
}

func (o *Orchestrator) buildTheme(config Config) pipeline.Theme {
	theme := pipeline.DefaultTheme()
	// Override theme colors if specified
	if config.BandColor != [4]uint8{} {
		theme.BandColor = nrgbaFromArray(config.BandColor)
	}
	if config.TextColor != [4]uint8{} {
		theme.TextColor = nrgbaFromArray(config.TextColor)
	}
	if config.FontSize > 0 {
		theme.FontSize = config.FontSize
	}
	theme.FontPath = config.FontPath
	return theme
}

func nrgbaFromArray(c [4]uint8) color.NRGBA {
	return color.NRGBA{R: c[0], G: c[1], B: c[2], A: c[3]}
}

type timelineEntry struct {
	pipeline.SceneTiming
	Notices []string `json:"notices,omitempty"`
}

func timelineDoc(render pipeline.RenderResult) []timelineEntry {
	doc := make([]timelineEntry, len(render.Timeline))
	for i, t := range render.Timeline {
		doc[i].SceneTiming = t
		for _, n := range render.Notices {
			if n.SceneIndex == t.Index {
				doc[i].Notices = append(doc[i].Notices, n.Err.Error())
			}
		}
	}
	return doc
}

// RunResult contains the results of a pipeline run for summary generation.
type RunResult struct {
	// Storyboard
	Scenes   []storyboard.Scene
	Timeline []pipeline.SceneTiming
	Notices  []pipeline.Notice

	// Video information
	Format        ports.VideoFormat
	FrameCount    int
	VideoDuration int // in ms
	VideoFileSize int64
	OutputPath    string
	GalleryItemID string

	// Settings
	CanvasWidth  int
	CanvasHeight int
	AspectRatio  string
	FPS          float64
	Overflow     string
	Realtime     bool
}
