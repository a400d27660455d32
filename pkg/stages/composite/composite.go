// Package composite implements the frame compositor.
package composite

import (
	"context"
	"fmt"
	"math"

	"github.com/user/storyreel/pkg/pipeline"
	"github.com/user/storyreel/pkg/ports"
)

// Stage renders a single composed frame onto a fresh canvas.
// The sequencer calls Paint directly; Stage serves still previews.
type Stage struct {
	renderer ports.Renderer
	logger   ports.Logger
}

// NewStage creates a new composite stage.
func NewStage(renderer ports.Renderer, logger ports.Logger) *Stage {
	return &Stage{
		renderer: renderer,
		logger:   logger.WithComponent("composite"),
	}
}

// Execute paints one frame.
func (s *Stage) Execute(ctx context.Context, input pipeline.PaintInput) (pipeline.PaintResult, error) {
	if input.Frame == nil {
		return pipeline.PaintResult{}, fmt.Errorf("no frame to paint")
	}
	size := input.Layout.Canvas
	if size.Width <= 0 || size.Height <= 0 {
		return pipeline.PaintResult{}, fmt.Errorf("invalid canvas size %dx%d", size.Width, size.Height)
	}

	canvas := s.renderer.CreateCanvas(size.Width, size.Height, input.Theme.BackgroundColor)
	result := Paint(canvas, input)

	if result.SubtitleDrawn {
		style := SubtitleStyle(input.Theme)
		width, _ := canvas.MeasureText(input.Subtitle, style)
		if int(width) > input.Layout.SubtitleBand.Width {
			s.logger.Debug("Subtitle overflows band: %.0fpx > %dpx", width, input.Layout.SubtitleBand.Width)
		}
	}
	return result, nil
}

// Paint draws one frame: black background, cover-fit media, optional subtitle band.
// It keeps no state between calls.
func Paint(canvas ports.Canvas, input pipeline.PaintInput) pipeline.PaintResult {
	width, height := canvas.Size()
	theme := input.Theme

	canvas.Clear(theme.BackgroundColor)

	var mediaRect pipeline.Rectangle
	if input.Frame != nil {
		b := input.Frame.Bounds()
		mediaRect = CoverFit(b.Dx(), b.Dy(), width, height)
		if mediaRect.Width > 0 && mediaRect.Height > 0 {
			canvas.DrawImageScaled(input.Frame, mediaRect.X, mediaRect.Y, mediaRect.Width, mediaRect.Height)
		}
	}

	drawn := false
	if input.SubtitleEnabled && input.Subtitle != "" {
		band := input.Layout.SubtitleBand
		canvas.DrawRect(band.X, band.Y, band.Width, band.Height, theme.BandColor)
		// Single line, no wrapping
		canvas.DrawText(input.Subtitle, width/2, input.Layout.SubtitleBaseline, SubtitleStyle(theme))
		drawn = true
	}

	return pipeline.PaintResult{
		Image:         canvas.ToImage(),
		MediaRect:     mediaRect,
		SubtitleDrawn: drawn,
	}
}

// SubtitleStyle returns the text style used for subtitles.
func SubtitleStyle(theme pipeline.Theme) ports.TextStyle {
	size := theme.FontSize
	if size <= 0 {
		size = 24
	}
	return ports.TextStyle{
		FontSize: size,
		FontPath: theme.FontPath,
		Bold:     true,
		Color:    theme.TextColor,
		Align:    ports.AlignCenter,
		Baseline: true,
	}
}

// CoverFit scales a w x h source to cover a W x H canvas, centered.
// The returned rectangle may extend past the canvas on one axis.
func CoverFit(w, h, canvasWidth, canvasHeight int) pipeline.Rectangle {
	if w <= 0 || h <= 0 || canvasWidth <= 0 || canvasHeight <= 0 {
		return pipeline.Rectangle{}
	}
	scale := math.Max(float64(canvasWidth)/float64(w), float64(canvasHeight)/float64(h))
	dw := int(math.Round(float64(w) * scale))
	dh := int(math.Round(float64(h) * scale))
	return pipeline.Rectangle{
		X:      (canvasWidth - dw) / 2,
		Y:      (canvasHeight - dh) / 2,
		Width:  dw,
		Height: dh,
	}
}
