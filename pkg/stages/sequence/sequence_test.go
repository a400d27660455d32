package sequence

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/user/storyreel/pkg/adapters/frameclock"
	"github.com/user/storyreel/pkg/adapters/logger"
	"github.com/user/storyreel/pkg/mocks"
	"github.com/user/storyreel/pkg/pipeline"
	"github.com/user/storyreel/pkg/ports"
	"github.com/user/storyreel/pkg/stages/layout"
	"github.com/user/storyreel/pkg/stages/load"
	"github.com/user/storyreel/pkg/stages/narrate"
	"github.com/user/storyreel/pkg/stages/record"
	"github.com/user/storyreel/pkg/storyboard"
)

type fakeMedia struct {
	kind   storyboard.MediaKind
	closed bool
}

func (m *fakeMedia) Kind() storyboard.MediaKind { return m.kind }
func (m *fakeMedia) Size() pipeline.Dimension   { return pipeline.Dimension{Width: 16, Height: 9} }
func (m *fakeMedia) FrameAt(offset time.Duration) (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, 16, 9)), nil
}
func (m *fakeMedia) Close() error {
	m.closed = true
	return nil
}

type fakeLoader struct {
	mu     sync.Mutex
	fail   map[string]error
	onLoad func()
	loaded []string
	media  []*fakeMedia
}

func (l *fakeLoader) Check(ref storyboard.MediaRef) error {
	if storyboard.IsExpiredLocator(ref.Locator) {
		return storyboard.ErrExpiredMedia
	}
	return nil
}

func (l *fakeLoader) Load(ctx context.Context, ref storyboard.MediaRef) (pipeline.Media, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loaded = append(l.loaded, ref.Locator)
	if l.onLoad != nil {
		l.onLoad()
	}
	if err := l.fail[ref.Locator]; err != nil {
		return nil, err
	}
	m := &fakeMedia{kind: ref.Kind}
	l.media = append(l.media, m)
	return m, nil
}

type harness struct {
	stage    *Stage
	loader   *fakeLoader
	encoder  *mocks.VideoEncoder
	muxer    *mocks.AudioMuxer
	speech   *mocks.SpeechSynthesizer
	renderer *mocks.Renderer
	sink     *mocks.DebugSink
	starts   int
}

func newHarness() *harness {
	h := &harness{
		loader:   &fakeLoader{fail: map[string]error{}},
		encoder:  &mocks.VideoEncoder{},
		muxer:    &mocks.AudioMuxer{},
		speech:   &mocks.SpeechSynthesizer{},
		renderer: &mocks.Renderer{},
		sink:     mocks.NewDebugSink(true),
	}
	log := logger.NewNoop()
	recorder := record.New(func() (ports.VideoEncoder, error) {
		h.starts++
		return h.encoder, nil
	}, h.muxer, log, record.Options{})
	player := narrate.NewPlayer(load.NewResolver(mocks.NewFileSystem(), nil), nil, h.speech, log, narrate.Options{})
	h.stage = NewStage(h.loader, player, recorder, h.renderer, h.sink, log)
	return h
}

func makeScene(id string, seconds float64, text string) storyboard.Scene {
	s := storyboard.NewScene()
	s.ID = id
	s.Duration = seconds
	s.NarrationText = text
	s.Media = storyboard.MediaRef{Locator: "/media/" + id + ".png", Kind: storyboard.KindImage}
	return s
}

func renderInput(scenes ...storyboard.Scene) pipeline.RenderInput {
	return pipeline.RenderInput{
		Scenes: scenes,
		Layout: layout.ComputeLayout(pipeline.DefaultLayoutInput()),
		Theme:  pipeline.DefaultTheme(),
		FPS:    10,
		Clock:  frameclock.NewVirtual(10),
	}
}

func TestStage_RendersScenesInOrder(t *testing.T) {
	h := newHarness()
	input := renderInput(makeScene("a", 1, "primeira"), makeScene("b", 0.5, ""))

	var started []string
	var completed bool
	input.Hooks = pipeline.Hooks{
		OnSceneStart: func(i int, s storyboard.Scene) { started = append(started, fmt.Sprintf("%d:%s", i, s.ID)) },
		OnComplete:   func(r pipeline.RenderResult) { completed = true },
	}

	result, err := h.stage.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if fmt.Sprint(started) != "[0:a 1:b]" {
		t.Errorf("unexpected scene order %v", started)
	}
	if !completed {
		t.Error("expected OnComplete")
	}

	if len(result.Timeline) != 2 {
		t.Fatalf("expected 2 timeline entries, got %d", len(result.Timeline))
	}
	a, b := result.Timeline[0], result.Timeline[1]
	if a.StartMs != 0 || a.EndMs != 1000 || a.Frames != 10 {
		t.Errorf("unexpected timing for a: %+v", a)
	}
	if b.StartMs != 1000 || b.EndMs != 1500 || b.Frames != 5 {
		t.Errorf("unexpected timing for b: %+v", b)
	}
	if !a.Subtitle || b.Subtitle {
		t.Errorf("expected subtitle only on a: %v %v", a.Subtitle, b.Subtitle)
	}
	if a.Narration != pipeline.NarrationSpeech || b.Narration != pipeline.NarrationNone {
		t.Errorf("unexpected narration sources %s %s", a.Narration, b.Narration)
	}

	if result.Product.FrameCount != 15 {
		t.Errorf("expected 15 frames, got %d", result.Product.FrameCount)
	}
	if result.Product.DurationMs != 1500 {
		t.Errorf("expected 1500ms, got %d", result.Product.DurationMs)
	}
	if h.starts != 1 {
		t.Errorf("expected exactly one recorder start, got %d", h.starts)
	}

	// Every loaded handle is closed after its scene
	for i, m := range h.loader.media {
		if !m.closed {
			t.Errorf("media %d not closed", i)
		}
	}

	// Speech is cut at the end of scene a
	if len(h.muxer.Cues) != 1 || h.muxer.Cues[0].MaxMs != 1000 || h.muxer.Cues[0].StartMs != 0 {
		t.Errorf("unexpected narration cues %+v", h.muxer.Cues)
	}

	// Debug sink keeps the first frame of each scene
	if len(h.sink.SceneFrames) != 2 {
		t.Errorf("expected 2 scene frames, got %d", len(h.sink.SceneFrames))
	}
}

func TestStage_ScheduleFollowsDurationSum(t *testing.T) {
	h := newHarness()

	// 2.25s is not a whole number of 30fps frames
	var scenes []storyboard.Scene
	for i := 0; i < 10; i++ {
		scenes = append(scenes, makeScene(fmt.Sprintf("s%d", i), 2.25, fmt.Sprintf("cena %d", i)))
	}
	input := renderInput(scenes...)
	input.FPS = 30
	input.Clock = frameclock.NewVirtual(30)

	result, err := h.stage.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if result.Product.DurationMs != 22500 {
		t.Errorf("expected 22500ms, got %d", result.Product.DurationMs)
	}
	// Slots below 22.5s at 30fps
	if result.Product.FrameCount != 675 {
		t.Errorf("expected 675 frames, got %d", result.Product.FrameCount)
	}
	for i, timing := range result.Timeline {
		if timing.StartMs != i*2250 || timing.EndMs != (i+1)*2250 {
			t.Errorf("scene %d: expected %d-%dms, got %d-%dms", i, i*2250, (i+1)*2250, timing.StartMs, timing.EndMs)
		}
	}
	if len(h.muxer.Cues) != 10 {
		t.Fatalf("expected 10 narration cues, got %d", len(h.muxer.Cues))
	}
	for i, cue := range h.muxer.Cues {
		if cue.StartMs != i*2250 {
			t.Errorf("cue %d: expected start %dms, got %d", i, i*2250, cue.StartMs)
		}
	}
}

func TestStage_TimelineStartsWithCapture(t *testing.T) {
	h := newHarness()
	clock := frameclock.NewVirtual(10)
	ctx := context.Background()
	// The clock has been running before the render starts
	for i := 0; i < 20; i++ {
		clock.Next(ctx)
	}
	input := renderInput(makeScene("a", 1, ""))
	input.Clock = clock

	result, err := h.stage.Execute(ctx, input)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if result.Product.DurationMs != 1000 || result.Product.FrameCount != 10 {
		t.Errorf("expected 1000ms in 10 frames, got %dms in %d frames", result.Product.DurationMs, result.Product.FrameCount)
	}
	if got := h.encoder.Frames(); len(got) == 0 || got[0].TimestampMs != 0 {
		t.Errorf("expected the first frame at 0ms, got %+v", got)
	}
	if a := result.Timeline[0]; a.StartMs != 0 || a.EndMs != 1000 {
		t.Errorf("unexpected timing %+v", a)
	}
}

func TestStage_LoadTimeIsNotRecorded(t *testing.T) {
	h := newHarness()
	clock := frameclock.NewVirtual(10)
	ctx := context.Background()
	// Every load takes 0.7s of clock time
	h.loader.onLoad = func() {
		for i := 0; i < 7; i++ {
			clock.Next(ctx)
		}
	}
	input := renderInput(makeScene("a", 1, ""), makeScene("b", 1, ""))
	input.Clock = clock

	result, err := h.stage.Execute(ctx, input)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if result.Product.DurationMs != 2000 || result.Product.FrameCount != 20 {
		t.Errorf("expected 2000ms in 20 frames, got %dms in %d frames", result.Product.DurationMs, result.Product.FrameCount)
	}
	if b := result.Timeline[1]; b.StartMs != 1000 || b.Frames != 10 {
		t.Errorf("unexpected timing for b: %+v", b)
	}
}

func TestStage_SubtitlePaintedEveryFrame(t *testing.T) {
	h := newHarness()

	_, err := h.stage.Execute(context.Background(), renderInput(makeScene("a", 1, "legenda")))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	canvas := h.renderer.Canvases[0]
	if got := len(canvas.OpsOf("text")); got != 10 {
		t.Errorf("expected subtitle on all 10 frames, got %d", got)
	}
	if got := len(canvas.OpsOf("clear")); got != 10 {
		t.Errorf("expected 10 repaints, got %d", got)
	}
}

func TestStage_EmptyStoryboard(t *testing.T) {
	h := newHarness()
	var hookErr error
	input := renderInput()
	input.Hooks.OnError = func(err error) { hookErr = err }

	_, err := h.stage.Execute(context.Background(), input)
	if !errors.Is(err, storyboard.ErrEmptyStoryboard) {
		t.Fatalf("expected ErrEmptyStoryboard, got %v", err)
	}
	if hookErr == nil {
		t.Error("expected OnError to be called")
	}
	if h.starts != 0 {
		t.Error("recorder must not start for an empty storyboard")
	}
}

func TestStage_ExpiredMediaFailsBeforeCapture(t *testing.T) {
	h := newHarness()
	bad := makeScene("b", 1, "")
	bad.Media.Locator = storyboard.ExpiredLocator

	_, err := h.stage.Execute(context.Background(), renderInput(makeScene("a", 1, ""), bad))

	var mle *storyboard.MediaLoadError
	if !errors.As(err, &mle) {
		t.Fatalf("expected MediaLoadError, got %v", err)
	}
	if mle.SceneIndex != 1 || mle.SceneID != "b" || !errors.Is(err, storyboard.ErrExpiredMedia) {
		t.Errorf("unexpected error details %+v", mle)
	}
	if h.starts != 0 || h.encoder.BeginCalled {
		t.Error("recorder must not start when preflight fails")
	}
}

func TestStage_UnknownBlobFailsBeforeCapture(t *testing.T) {
	h := newHarness()
	fs := mocks.NewFileSystem()
	fs.WriteFile("/media/a.png", []byte("png"))
	log := logger.NewNoop()
	loader := load.NewLoader(load.NewResolver(fs, nil), h.renderer, &mocks.ClipDecoder{}, log, load.Options{})
	recorder := record.New(func() (ports.VideoEncoder, error) {
		h.starts++
		return h.encoder, nil
	}, h.muxer, log, record.Options{})
	stage := NewStage(loader, narrate.NewPlayer(load.NewResolver(fs, nil), nil, h.speech, log, narrate.Options{}), recorder, h.renderer, h.sink, log)

	// A blob handle from an earlier session
	bad := makeScene("b", 1, "")
	bad.Media = storyboard.MediaRef{Locator: "blob:0000", Kind: storyboard.KindVideo}

	_, err := stage.Execute(context.Background(), renderInput(makeScene("a", 1, ""), bad))

	var mle *storyboard.MediaLoadError
	if !errors.As(err, &mle) || mle.SceneIndex != 1 || !errors.Is(err, storyboard.ErrExpiredMedia) {
		t.Fatalf("expected expired MediaLoadError for scene 2, got %v", err)
	}
	if h.starts != 0 || h.encoder.BeginCalled {
		t.Error("recorder must not start when preflight fails")
	}
}

func TestStage_InvalidDurationFailsBeforeCapture(t *testing.T) {
	h := newHarness()
	bad := makeScene("a", 1, "")
	bad.Duration = -2

	_, err := h.stage.Execute(context.Background(), renderInput(bad))
	if !errors.Is(err, storyboard.ErrInvalidDuration) {
		t.Fatalf("expected ErrInvalidDuration, got %v", err)
	}
	if h.starts != 0 {
		t.Error("recorder must not start")
	}
}

func TestStage_FirstSceneLoadFailsBeforeCapture(t *testing.T) {
	h := newHarness()
	h.loader.fail["/media/a.png"] = errors.New("decode image: unknown format")

	_, err := h.stage.Execute(context.Background(), renderInput(makeScene("a", 1, "")))
	if !errors.Is(err, storyboard.ErrMediaLoad) {
		t.Fatalf("expected ErrMediaLoad, got %v", err)
	}
	if h.starts != 0 {
		t.Error("recorder must not start when the first scene fails to load")
	}
}

func TestStage_MidRenderLoadFailureDiscardsOutput(t *testing.T) {
	h := newHarness()
	h.loader.fail["/media/c.png"] = errors.New("timeout")

	result, err := h.stage.Execute(context.Background(),
		renderInput(makeScene("a", 0.5, "um"), makeScene("b", 0.5, ""), makeScene("c", 0.5, "")))

	var mle *storyboard.MediaLoadError
	if !errors.As(err, &mle) || mle.SceneIndex != 2 {
		t.Fatalf("expected MediaLoadError for scene 3, got %v", err)
	}
	if result.Product.Data != nil {
		t.Error("expected no product on failure")
	}
	if !h.encoder.AbortCalled || h.encoder.EndCalled {
		t.Error("expected the capture to be aborted, not finalized")
	}
	if h.muxer.MuxCalled {
		t.Error("expected no mux on failure")
	}
}

func TestStage_SnapshotAtEntry(t *testing.T) {
	h := newHarness()
	scenes := []storyboard.Scene{makeScene("a", 0.5, ""), makeScene("b", 0.5, "")}
	input := renderInput(scenes...)
	input.Scenes = scenes
	input.Hooks.OnSceneStart = func(i int, s storyboard.Scene) {
		// An edit during the render must not leak in
		scenes[1].Duration = 30
	}

	result, err := h.stage.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if got := result.Timeline[1].EndMs - result.Timeline[1].StartMs; got != 500 {
		t.Errorf("expected scene b to keep 500ms, got %d", got)
	}
}

func TestStage_CancellationAborts(t *testing.T) {
	h := newHarness()
	ctx, cancel := context.WithCancel(context.Background())
	input := renderInput(makeScene("a", 0.5, ""), makeScene("b", 0.5, ""))
	input.Hooks.OnSceneStart = func(i int, s storyboard.Scene) {
		if i == 1 {
			cancel()
		}
	}

	_, err := h.stage.Execute(ctx, input)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if !h.encoder.AbortCalled || h.encoder.EndCalled {
		t.Error("expected the capture to be aborted")
	}
	for i, m := range h.loader.media {
		if !m.closed {
			t.Errorf("media %d left open", i)
		}
	}
}

func TestStage_NarrationNoticesAreCollected(t *testing.T) {
	h := newHarness()
	h.speech.SynthesizeFunc = func(ctx context.Context, text string, opts ports.SpeechOptions) ([]byte, error) {
		return nil, errors.New("espeak-ng not found")
	}

	result, err := h.stage.Execute(context.Background(), renderInput(makeScene("a", 0.5, "texto")))
	if err != nil {
		t.Fatalf("speech failure must not fail the render: %v", err)
	}
	if len(result.Notices) != 1 || result.Notices[0].SceneID != "a" {
		t.Errorf("expected one notice for scene a, got %+v", result.Notices)
	}
	if h.muxer.MuxCalled {
		t.Error("expected silent render without mux")
	}
}

func TestStage_CaptureStartFailure(t *testing.T) {
	h := newHarness()
	h.encoder.BeginFunc = func(w, hgt int, fps float64, opts ports.EncoderOptions) error {
		return errors.New("ffmpeg exited")
	}

	_, err := h.stage.Execute(context.Background(), renderInput(makeScene("a", 0.5, "")))
	if !errors.Is(err, storyboard.ErrCapture) {
		t.Fatalf("expected ErrCapture, got %v", err)
	}
	if !h.loader.media[0].closed {
		t.Error("expected first media to be closed")
	}
}
