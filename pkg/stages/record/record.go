// Package record implements the stream recorder that captures painted frames
// and the narration timeline into one encoded container.
package record

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/user/storyreel/pkg/pipeline"
	"github.com/user/storyreel/pkg/ports"
	"github.com/user/storyreel/pkg/storyboard"
)

// EncoderFactory creates a fresh encoder for each recording.
type EncoderFactory func() (ports.VideoEncoder, error)

// Options configures encoding.
type Options struct {
	Bitrate   int // kbps
	Quality   int // 0-63, lower is better
	QueueSize int // Frames buffered ahead of the encoder (default: 8)
}

// Recorder starts recording sessions.
type Recorder struct {
	newEncoder EncoderFactory
	muxer      ports.AudioMuxer
	logger     ports.Logger
	opts       Options
}

// New creates a recorder. muxer may be nil, in which case narration is dropped.
func New(newEncoder EncoderFactory, muxer ports.AudioMuxer, logger ports.Logger, opts Options) *Recorder {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 8
	}
	return &Recorder{
		newEncoder: newEncoder,
		muxer:      muxer,
		logger:     logger.WithComponent("record"),
		opts:       opts,
	}
}

// Start begins a capture of width x height frames sampled at fps.
func (r *Recorder) Start(ctx context.Context, width, height int, fps float64) (pipeline.RecordingSession, error) {
	if width <= 0 || height <= 0 || fps <= 0 {
		return nil, &storyboard.CaptureError{
			Phase: storyboard.PhaseStart,
			Err:   fmt.Errorf("invalid capture parameters %dx%d at %v fps", width, height, fps),
		}
	}

	enc, err := r.newEncoder()
	if err != nil {
		return nil, &storyboard.CaptureError{Phase: storyboard.PhaseStart, Err: err}
	}
	if err := enc.Begin(width, height, fps, ports.EncoderOptions{Bitrate: r.opts.Bitrate, Quality: r.opts.Quality}); err != nil {
		return nil, &storyboard.CaptureError{Phase: storyboard.PhaseStart, Err: err}
	}

	g, gctx := errgroup.WithContext(ctx)
	s := &session{
		encoder:  enc,
		muxer:    r.muxer,
		logger:   r.logger,
		interval: pipeline.FrameInterval(fps),
		frames:   make(chan frame, r.opts.QueueSize),
		group:    g,
		gctx:     gctx,
	}
	g.Go(s.encodeLoop)

	format := enc.Format()
	r.logger.Debug("Recorder started: %dx%d at %.1f fps (%s/%s)", width, height, fps, format.Codec, format.Container)
	return s, nil
}

type frame struct {
	img image.Image
	ms  int
}

// session is one live capture.
type session struct {
	encoder  ports.VideoEncoder
	muxer    ports.AudioMuxer
	logger   ports.Logger
	interval time.Duration

	frames chan frame
	group  *errgroup.Group
	gctx   context.Context

	mu      sync.Mutex
	next    int // next output slot
	last    image.Image
	cues    []ports.NarrationCue
	closed  bool // frames channel closed
	aborted bool
	done    bool // Stop succeeded
}

func (s *session) encodeLoop() error {
	for f := range s.frames {
		if err := s.encoder.EncodeFrame(f.img, f.ms); err != nil {
			return fmt.Errorf("encode frame at %dms: %w", f.ms, err)
		}
	}
	return nil
}

func (s *session) slotTime(n int) time.Duration {
	return time.Duration(n) * s.interval
}

// Capture records img as the canvas content from timeline time at onward.
// Timeline time starts at zero when the session starts. Slots before at
// still show the previous capture; slots from at on show img.
func (s *session) Capture(img image.Image, at time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return &storyboard.CaptureError{Phase: storyboard.PhaseFrame, Err: errors.New("session already stopped")}
	}

	if s.last != nil {
		for s.slotTime(s.next) < at {
			if err := s.emit(s.last); err != nil {
				return err
			}
		}
	}
	// The canvas is repainted in place; keep a private copy for the encoder.
	s.last = cloneImage(img)
	for s.slotTime(s.next) <= at {
		if err := s.emit(s.last); err != nil {
			return err
		}
	}
	return nil
}

// emit sends the next slot to the encoder. Called with mu held.
func (s *session) emit(img image.Image) error {
	f := frame{img: img, ms: int(s.slotTime(s.next) / time.Millisecond)}
	select {
	case s.frames <- f:
		s.next++
		return nil
	case <-s.gctx.Done():
		return &storyboard.CaptureError{Phase: storyboard.PhaseFrame, Err: s.failure()}
	}
}

// failure closes the feed and returns why the encoder goroutine stopped.
func (s *session) failure() error {
	if !s.closed {
		close(s.frames)
		s.closed = true
	}
	if err := s.group.Wait(); err != nil {
		return err
	}
	return s.gctx.Err()
}

// AddNarration adds a cue to the narration track.
func (s *session) AddNarration(cue ports.NarrationCue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cues = append(s.cues, cue)
}

// Stop pads the video to end, finalizes the encoder and mixes narration.
func (s *session) Stop(ctx context.Context, end time.Duration) (ports.RenderProduct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ports.RenderProduct{}, &storyboard.CaptureError{Phase: storyboard.PhaseStop, Err: errors.New("session already stopped")}
	}

	if s.last == nil {
		s.abortLocked()
		return ports.RenderProduct{}, &storyboard.CaptureError{Phase: storyboard.PhaseStop, Err: errors.New("no frames captured")}
	}
	for s.slotTime(s.next) < end {
		if err := s.emit(s.last); err != nil {
			s.abortLocked()
			return ports.RenderProduct{}, err
		}
	}

	close(s.frames)
	s.closed = true
	if err := s.group.Wait(); err != nil {
		s.abortLocked()
		return ports.RenderProduct{}, &storyboard.CaptureError{Phase: storyboard.PhaseFrame, Err: err}
	}

	data, err := s.encoder.End()
	if err != nil {
		return ports.RenderProduct{}, &storyboard.CaptureError{Phase: storyboard.PhaseStop, Err: err}
	}
	if len(data) == 0 {
		return ports.RenderProduct{}, &storyboard.CaptureError{Phase: storyboard.PhaseStop, Err: errors.New("encoder produced no data")}
	}

	durationMs := int(end / time.Millisecond)
	format := s.encoder.Format()
	s.logger.Debug("Video encoded: %d frames, %d bytes", s.next, len(data))

	if len(s.cues) > 0 {
		if s.muxer == nil {
			s.logger.Warn("No audio muxer configured, dropping %d narration cues", len(s.cues))
		} else {
			mixed, err := s.muxer.Mux(ctx, data, format, s.cues, durationMs)
			if err != nil {
				return ports.RenderProduct{}, &storyboard.CaptureError{Phase: storyboard.PhaseMux, Err: err}
			}
			s.logger.Debug("Narration mixed: %d cues", len(s.cues))
			data = mixed
		}
	}

	s.done = true
	return ports.RenderProduct{
		Data:       data,
		Format:     format,
		DurationMs: durationMs,
		FrameCount: s.next,
	}, nil
}

// Abort discards the capture.
func (s *session) Abort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.abortLocked()
}

func (s *session) abortLocked() {
	if s.aborted || s.done {
		return
	}
	s.aborted = true
	s.encoder.Abort()
	if !s.closed {
		close(s.frames)
		s.closed = true
	}
	s.group.Wait()
	s.cues = nil
}

// cloneImage copies img into a new RGBA image with a zero origin.
func cloneImage(img image.Image) image.Image {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

var (
	_ pipeline.StreamRecorder   = (*Recorder)(nil)
	_ pipeline.RecordingSession = (*session)(nil)
)
