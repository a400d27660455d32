package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/user/storyreel/pkg/adapters/logger"
	"github.com/user/storyreel/pkg/mocks"
	"github.com/user/storyreel/pkg/pipeline"
	"github.com/user/storyreel/pkg/ports"
	"github.com/user/storyreel/pkg/storyboard"
)

// mockLayoutStage is a mock for the layout stage.
type mockLayoutStage struct {
	result pipeline.LayoutResult
	err    error
	input  pipeline.LayoutInput
}

func (m *mockLayoutStage) Execute(ctx context.Context, input pipeline.LayoutInput) (pipeline.LayoutResult, error) {
	m.input = input
	if m.err != nil {
		return pipeline.LayoutResult{}, m.err
	}
	return m.result, nil
}

// mockSequenceStage is a mock for the sequence stage.
type mockSequenceStage struct {
	result pipeline.RenderResult
	err    error
	input  pipeline.RenderInput
}

func (m *mockSequenceStage) Execute(ctx context.Context, input pipeline.RenderInput) (pipeline.RenderResult, error) {
	m.input = input
	if m.input.Hooks.OnSceneStart != nil {
		for i, s := range input.Scenes {
			m.input.Hooks.OnSceneStart(i, s)
		}
	}
	if m.err != nil {
		return pipeline.RenderResult{}, m.err
	}
	return m.result, nil
}

type stubClock struct {
	stopped bool
}

func (c *stubClock) Now() time.Duration                              { return 0 }
func (c *stubClock) Next(ctx context.Context) (time.Duration, error) { return 0, nil }
func (c *stubClock) Stop()                                           { c.stopped = true }

func testScenes() []storyboard.Scene {
	a := storyboard.NewScene()
	a.Media.Locator = "a.png"
	b := storyboard.NewScene()
	b.Media.Locator = "b.png"
	return []storyboard.Scene{a, b}
}

func layoutResult() pipeline.LayoutResult {
	return pipeline.LayoutResult{
		Canvas:           pipeline.Dimension{Width: 1280, Height: 720},
		SubtitleBand:     pipeline.Rectangle{X: 50, Y: 620, Width: 1180, Height: 60},
		SubtitleBaseline: 660,
	}
}

func renderResult(scenes []storyboard.Scene) pipeline.RenderResult {
	return pipeline.RenderResult{
		Product: ports.RenderProduct{Data: []byte{0x1a, 0x45, 0xdf, 0xa3}, Format: ports.FormatWebM, DurationMs: 8000, FrameCount: 240},
		Timeline: []pipeline.SceneTiming{
			{Index: 0, SceneID: scenes[0].ID, StartMs: 0, EndMs: 4000, Frames: 120, Narration: pipeline.NarrationNone},
			{Index: 1, SceneID: scenes[1].ID, StartMs: 4000, EndMs: 8000, Frames: 120, Narration: pipeline.NarrationSpeech},
		},
		Notices: []pipeline.Notice{{SceneIndex: 1, SceneID: scenes[1].ID, Err: errors.New("narration generation failed")}},
	}
}

func TestOrchestrator_Run(t *testing.T) {
	scenes := testScenes()
	layoutStage := &mockLayoutStage{result: layoutResult()}
	sequenceStage := &mockSequenceStage{result: renderResult(scenes)}
	products := &mocks.ProductSink{}
	clock := &stubClock{}
	log := mocks.NewLogger()

	orch := New(
		layoutStage,
		sequenceStage,
		products,
		mocks.NewDebugSink(false),
		func(fps float64) ports.FrameClock { return clock },
		log,
	)

	config := DefaultConfig()
	config.AspectRatio = "9:16"
	config.BandColor = [4]uint8{255, 0, 0, 128}

	result, err := orch.Run(context.Background(), config, scenes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if layoutStage.input.AspectRatio != "9:16" || layoutStage.input.BandHeight != 60 {
		t.Errorf("unexpected layout input %+v", layoutStage.input)
	}
	if sequenceStage.input.FPS != 30 || sequenceStage.input.Clock != clock {
		t.Error("expected render input to carry fps and clock")
	}
	if len(sequenceStage.input.Scenes) != 2 {
		t.Errorf("expected 2 scenes, got %d", len(sequenceStage.input.Scenes))
	}
	if len(products.Delivered) != 1 {
		t.Fatalf("expected product delivered once, got %d", len(products.Delivered))
	}
	if !clock.stopped {
		t.Error("expected clock stopped after the run")
	}

	if result.OutputPath != "out.webm" || result.FrameCount != 240 || result.VideoFileSize != 4 {
		t.Errorf("unexpected result %+v", result)
	}
	if result.CanvasWidth != 1280 || result.CanvasHeight != 720 {
		t.Errorf("expected canvas from layout, got %dx%d", result.CanvasWidth, result.CanvasHeight)
	}
	if len(log.Entries(ports.LevelWarn)) != 1 {
		t.Errorf("expected one warning for the notice, got %d", len(log.Entries(ports.LevelWarn)))
	}
}

func TestOrchestrator_Run_WithDebugSink(t *testing.T) {
	scenes := testScenes()
	mockSink := mocks.NewDebugSink(true)

	orch := New(
		&mockLayoutStage{result: layoutResult()},
		&mockSequenceStage{result: renderResult(scenes)},
		&mocks.ProductSink{},
		mockSink,
		func(fps float64) ports.FrameClock { return &stubClock{} },
		logger.NewNoop(),
	)

	if _, err := orch.Run(context.Background(), DefaultConfig(), scenes); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(mockSink.LayoutJSON) == 0 {
		t.Error("expected layout JSON to be saved")
	}
	var timeline []map[string]interface{}
	if err := json.Unmarshal(mockSink.TimelineJSON, &timeline); err != nil {
		t.Fatalf("expected timeline JSON: %v", err)
	}
	if len(timeline) != 2 {
		t.Fatalf("expected 2 timeline entries, got %d", len(timeline))
	}
	if _, ok := timeline[1]["notices"]; !ok {
		t.Error("expected notices on the second scene")
	}
}

func TestOrchestrator_Run_Errors(t *testing.T) {
	scenes := testScenes()
	boom := errors.New("boom")

	tests := []struct {
		name     string
		layout   *mockLayoutStage
		sequence *mockSequenceStage
		products *mocks.ProductSink
		scenes   []storyboard.Scene
		check    func(err error) bool
	}{
		{
			name:     "empty storyboard",
			layout:   &mockLayoutStage{result: layoutResult()},
			sequence: &mockSequenceStage{},
			products: &mocks.ProductSink{},
			scenes:   nil,
			check:    func(err error) bool { return errors.Is(err, storyboard.ErrEmptyStoryboard) },
		},
		{
			name:     "layout failure",
			layout:   &mockLayoutStage{err: boom},
			sequence: &mockSequenceStage{},
			products: &mocks.ProductSink{},
			scenes:   scenes,
			check:    func(err error) bool { return errors.Is(err, boom) },
		},
		{
			name:     "render failure",
			layout:   &mockLayoutStage{result: layoutResult()},
			sequence: &mockSequenceStage{err: &storyboard.MediaLoadError{SceneIndex: 1, Err: boom}},
			products: &mocks.ProductSink{},
			scenes:   scenes,
			check:    func(err error) bool { return errors.Is(err, storyboard.ErrMediaLoad) },
		},
		{
			name:     "cancelled",
			layout:   &mockLayoutStage{result: layoutResult()},
			sequence: &mockSequenceStage{err: context.Canceled},
			products: &mocks.ProductSink{},
			scenes:   scenes,
			check:    func(err error) bool { return errors.Is(err, context.Canceled) },
		},
		{
			name:     "delivery failure",
			layout:   &mockLayoutStage{result: layoutResult()},
			sequence: &mockSequenceStage{result: renderResult(scenes)},
			products: &mocks.ProductSink{DeliverFunc: func(ctx context.Context, p ports.RenderProduct) (ports.Delivery, error) {
				return ports.Delivery{}, boom
			}},
			scenes: scenes,
			check:  func(err error) bool { return errors.Is(err, boom) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orch := New(tt.layout, tt.sequence, tt.products, mocks.NewDebugSink(false),
				func(fps float64) ports.FrameClock { return &stubClock{} }, logger.NewNoop())

			_, err := orch.Run(context.Background(), DefaultConfig(), tt.scenes)
			if err == nil || !tt.check(err) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestOrchestrator_BuildTheme(t *testing.T) {
	orch := &Orchestrator{}
	config := DefaultConfig()
	config.FontSize = 32
	config.TextColor = [4]uint8{255, 255, 0, 255}

	theme := orch.buildTheme(config)
	if theme.FontSize != 32 {
		t.Errorf("expected font size 32, got %v", theme.FontSize)
	}
	r, g, b, _ := theme.TextColor.RGBA()
	if r>>8 != 255 || g>>8 != 255 || b != 0 {
		t.Errorf("unexpected text color %v", theme.TextColor)
	}
	if theme.BandColor != pipeline.DefaultTheme().BandColor {
		t.Error("expected default band color kept")
	}
}
