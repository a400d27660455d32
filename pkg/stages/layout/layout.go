// Package layout implements the canvas and subtitle layout stage.
package layout

import (
	"context"

	"github.com/user/storyreel/pkg/pipeline"
)

// Canvas presets by aspect ratio.
const (
	LandscapeWidth  = 1280
	LandscapeHeight = 720
)

// Stage calculates the canvas size and subtitle placement.
// This is a pure function with no external dependencies.
type Stage struct{}

// NewStage creates a new layout stage.
func NewStage() *Stage {
	return &Stage{}
}

// Execute calculates the layout based on the input parameters.
func (s *Stage) Execute(ctx context.Context, input pipeline.LayoutInput) (pipeline.LayoutResult, error) {
	return ComputeLayout(input), nil
}

// ComputeLayout performs the layout calculation.
// This is exposed as a standalone function for testing and reuse.
//
// "16:9" selects 1280x720; every other ratio renders portrait at 720x1280.
// An explicit Width and Height pair overrides the preset.
func ComputeLayout(input pipeline.LayoutInput) pipeline.LayoutResult {
	width, height := LandscapeWidth, LandscapeHeight
	if input.AspectRatio != "16:9" {
		width, height = LandscapeHeight, LandscapeWidth
	}
	if input.Width > 0 && input.Height > 0 {
		width, height = input.Width, input.Height
	}

	// yuv420p needs even dimensions
	width = even(width)
	height = even(height)

	defaults := pipeline.DefaultLayoutInput()
	margin := orDefault(input.BandMargin, defaults.BandMargin)
	offset := orDefault(input.BandOffset, defaults.BandOffset)
	bandHeight := orDefault(input.BandHeight, defaults.BandHeight)
	textOffset := orDefault(input.TextOffset, defaults.TextOffset)

	bandWidth := width - margin*2
	if bandWidth < 0 {
		bandWidth = 0
	}

	return pipeline.LayoutResult{
		Canvas: pipeline.Dimension{Width: width, Height: height},
		SubtitleBand: pipeline.Rectangle{
			X:      margin,
			Y:      height - offset,
			Width:  bandWidth,
			Height: bandHeight,
		},
		SubtitleBaseline: height - textOffset,
	}
}

func even(n int) int {
	if n%2 != 0 {
		return n + 1
	}
	return n
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
