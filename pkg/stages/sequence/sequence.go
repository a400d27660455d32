// Package sequence implements the scene sequencer that drives a render
// one scene at a time, in storyboard order.
package sequence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/user/storyreel/pkg/pipeline"
	"github.com/user/storyreel/pkg/ports"
	"github.com/user/storyreel/pkg/stages/composite"
	"github.com/user/storyreel/pkg/storyboard"
)

// Stage renders a scene list into one recorded product.
type Stage struct {
	loader   pipeline.MediaLoader
	player   pipeline.NarrationPlayer
	recorder pipeline.StreamRecorder
	renderer ports.Renderer
	sink     ports.DebugSink
	logger   ports.Logger
}

// NewStage creates a new sequence stage.
func NewStage(
	loader pipeline.MediaLoader,
	player pipeline.NarrationPlayer,
	recorder pipeline.StreamRecorder,
	renderer ports.Renderer,
	sink ports.DebugSink,
	logger ports.Logger,
) *Stage {
	return &Stage{
		loader:   loader,
		player:   player,
		recorder: recorder,
		renderer: renderer,
		sink:     sink,
		logger:   logger.WithComponent("sequence"),
	}
}

// job is the transient state of one render.
type job struct {
	input    pipeline.RenderInput
	session  pipeline.RecordingSession
	media    pipeline.Media
	playback pipeline.Playback
	at       time.Duration // timeline time of the latest repaint
	end      time.Duration // scheduled end of the last completed scene
	result   pipeline.RenderResult
}

// release cancels narration, closes media and discards the capture.
func (j *job) release(at time.Duration) {
	if j.playback != nil {
		j.playback.Cancel(at)
		j.playback = nil
	}
	if j.media != nil {
		j.media.Close()
		j.media = nil
	}
	if j.session != nil {
		j.session.Abort()
		j.session = nil
	}
}

// Execute renders input.Scenes. The scene list is copied at entry, so later
// edits by the caller do not affect a running render. On any error nothing
// is returned but the error.
func (s *Stage) Execute(ctx context.Context, input pipeline.RenderInput) (pipeline.RenderResult, error) {
	scenes := make([]storyboard.Scene, len(input.Scenes))
	copy(scenes, input.Scenes)
	input.Scenes = scenes

	j := &job{input: input}
	result, err := s.run(ctx, j)
	if err != nil {
		j.release(j.at)
		s.logger.Debug("Render aborted: %v", err)
		if input.Hooks.OnError != nil {
			input.Hooks.OnError(err)
		}
		return pipeline.RenderResult{}, err
	}
	if input.Hooks.OnComplete != nil {
		input.Hooks.OnComplete(result)
	}
	return result, nil
}

func (s *Stage) run(ctx context.Context, j *job) (pipeline.RenderResult, error) {
	input := j.input
	scenes := input.Scenes

	if len(scenes) == 0 {
		return pipeline.RenderResult{}, &storyboard.EmptyStoryboardError{}
	}
	if input.Clock == nil {
		return pipeline.RenderResult{}, errors.New("no frame clock configured")
	}
	fps := input.FPS
	if fps <= 0 {
		fps = 30
	}
	size := input.Layout.Canvas
	if size.Width <= 0 || size.Height <= 0 {
		return pipeline.RenderResult{}, fmt.Errorf("invalid canvas size %dx%d", size.Width, size.Height)
	}

	if err := s.preflight(scenes); err != nil {
		return pipeline.RenderResult{}, err
	}

	// The first scene's media is ready before capture begins.
	first, err := s.load(ctx, 0, scenes[0])
	if err != nil {
		return pipeline.RenderResult{}, err
	}
	j.media = first

	session, err := s.recorder.Start(ctx, size.Width, size.Height, fps)
	if err != nil {
		return pipeline.RenderResult{}, err
	}
	j.session = session

	canvas := s.renderer.CreateCanvas(size.Width, size.Height, input.Theme.BackgroundColor)

	for i, scene := range scenes {
		if err := ctx.Err(); err != nil {
			return pipeline.RenderResult{}, err
		}
		if i > 0 {
			media, err := s.load(ctx, i, scene)
			if err != nil {
				return pipeline.RenderResult{}, err
			}
			j.media = media
		}

		timing, err := s.playScene(ctx, j, canvas, i, scene)
		if err != nil {
			return pipeline.RenderResult{}, err
		}
		j.result.Timeline = append(j.result.Timeline, timing)
	}

	product, err := j.session.Stop(ctx, j.end)
	if err != nil {
		return pipeline.RenderResult{}, err
	}
	j.session = nil
	j.result.Product = product

	s.logger.Debug("Rendered %d scenes, %d frames, %d ms", len(scenes), product.FrameCount, product.DurationMs)
	return j.result, nil
}

// playScene paints one scene over its slot of the schedule. Scene k covers
// the sum of the durations before it up to the sum including it, so rounding
// to refresh ticks never accumulates across scenes.
func (s *Stage) playScene(ctx context.Context, j *job, canvas ports.Canvas, index int, scene storyboard.Scene) (pipeline.SceneTiming, error) {
	input := j.input
	clock := input.Clock

	if input.Hooks.OnSceneStart != nil {
		input.Hooks.OnSceneStart(index, scene)
	}

	start := j.end
	end := start + scene.Length()

	pb, err := s.player.Play(ctx, scene, start)
	if err != nil {
		return pipeline.SceneTiming{}, fmt.Errorf("narration: %w", err)
	}
	j.playback = pb

	// Load and narration setup time is not part of the timeline: the current
	// clock reading maps to the scene start.
	origin := clock.Now() - start

	s.logger.Debug("Scene %d/%d: %s for %.2fs (narration: %s)", index+1, len(input.Scenes), scene.Media.Kind, scene.Duration, pb.Source())

	paint := pipeline.PaintInput{
		Kind:            scene.Media.Kind,
		Subtitle:        scene.Subtitle(),
		SubtitleEnabled: scene.SubtitlesEnabled,
		Layout:          input.Layout,
		Theme:           input.Theme,
	}

	frames := 0
	now := start
	// Repaint on every refresh; the scene never advances before end.
	for now < end {
		frame, err := j.media.FrameAt(now - start)
		if err != nil {
			return pipeline.SceneTiming{}, mediaError(index, scene, err)
		}
		paint.Frame = frame
		painted := composite.Paint(canvas, paint)

		if frames == 0 && s.sink != nil && s.sink.Enabled() {
			if err := s.sink.SaveSceneFrame(index, painted.Image); err != nil {
				s.logger.Debug("Failed to save scene frame: %v", err)
			}
		}
		j.at = now
		if err := j.session.Capture(painted.Image, now); err != nil {
			return pipeline.SceneTiming{}, err
		}
		frames++

		tick, err := clock.Next(ctx)
		if err != nil {
			return pipeline.SceneTiming{}, err
		}
		now = tick - origin
	}

	// Speech is cut at the boundary before the next scene starts.
	pb.Cancel(end)
	for _, cue := range pb.Cues() {
		j.session.AddNarration(cue)
	}
	for _, notice := range pb.Notices() {
		j.result.Notices = append(j.result.Notices, pipeline.Notice{SceneIndex: index, SceneID: scene.ID, Err: notice})
	}
	j.playback = nil

	if err := j.media.Close(); err != nil {
		s.logger.Debug("Failed to close media: %v", err)
	}
	j.media = nil
	j.end = end

	return pipeline.SceneTiming{
		Index:     index,
		SceneID:   scene.ID,
		StartMs:   int(start / time.Millisecond),
		EndMs:     int(end / time.Millisecond),
		Frames:    frames,
		Subtitle:  paint.SubtitleEnabled && paint.Subtitle != "",
		Narration: pb.Source(),
	}, nil
}

func (s *Stage) load(ctx context.Context, index int, scene storyboard.Scene) (pipeline.Media, error) {
	media, err := s.loader.Load(ctx, scene.Media)
	if err != nil {
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			return nil, err
		}
		return nil, mediaError(index, scene, err)
	}
	return media, nil
}

// preflight validates every scene and rejects media that can no longer load
// before capture starts.
func (s *Stage) preflight(scenes []storyboard.Scene) error {
	seen := make(map[string]bool, len(scenes))
	for i, scene := range scenes {
		if err := scene.Validate(); err != nil {
			return fmt.Errorf("scene %d: %w", i+1, err)
		}
		if seen[scene.ID] {
			return fmt.Errorf("scene %d: duplicate scene ID %s", i+1, scene.ID)
		}
		seen[scene.ID] = true

		if scene.Media.Locator == "" {
			return mediaError(i, scene, errors.New("scene has no media"))
		}
		if err := s.loader.Check(scene.Media); err != nil {
			return mediaError(i, scene, err)
		}
	}
	return nil
}

func mediaError(index int, scene storyboard.Scene, err error) error {
	var mle *storyboard.MediaLoadError
	if errors.As(err, &mle) {
		return err
	}
	return &storyboard.MediaLoadError{
		SceneIndex: index,
		SceneID:    scene.ID,
		Locator:    scene.Media.Locator,
		Err:        err,
	}
}

var _ pipeline.Stage[pipeline.RenderInput, pipeline.RenderResult] = (*Stage)(nil)
