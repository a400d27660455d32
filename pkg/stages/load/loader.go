// Package load implements the media loader that resolves scene assets into drawable handles.
package load

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/user/storyreel/pkg/pipeline"
	"github.com/user/storyreel/pkg/ports"
	"github.com/user/storyreel/pkg/storyboard"
)

// DefaultTimeout bounds a single media load.
const DefaultTimeout = 15 * time.Second

// Options configures the loader.
type Options struct {
	FPS     float64       // Clip sampling rate; matches the render frame rate
	Timeout time.Duration // Load ceiling and per-frame decode ceiling (default: 15s)
}

// Loader resolves media references into pipeline.Media handles.
type Loader struct {
	resolver *Resolver
	renderer ports.Renderer
	clips    ports.ClipDecoder
	logger   ports.Logger
	opts     Options
}

// NewLoader creates a media loader.
func NewLoader(resolver *Resolver, renderer ports.Renderer, clips ports.ClipDecoder, logger ports.Logger, opts Options) *Loader {
	if opts.FPS <= 0 {
		opts.FPS = 30
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Loader{
		resolver: resolver,
		renderer: renderer,
		clips:    clips,
		logger:   logger.WithComponent("load"),
		opts:     opts,
	}
}

// Check rejects references that can no longer load, such as expired
// locators, without touching the media itself.
func (l *Loader) Check(ref storyboard.MediaRef) error {
	if ref.Kind != storyboard.KindImage && ref.Kind != storyboard.KindVideo {
		return fmt.Errorf("%w: %q", storyboard.ErrInvalidMediaKind, ref.Kind)
	}
	return l.resolver.Check(ref.Locator)
}

// Load resolves ref. It returns once the media's intrinsic size is known
// and, for clips, the first frame is decoded.
func (l *Loader) Load(ctx context.Context, ref storyboard.MediaRef) (pipeline.Media, error) {
	if err := l.resolver.Check(ref.Locator); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, l.opts.Timeout)
	defer cancel()

	var (
		media pipeline.Media
		err   error
	)
	switch ref.Kind {
	case storyboard.KindImage:
		media, err = l.loadImage(ctx, ref)
	case storyboard.KindVideo:
		media, err = l.loadClip(ctx, ref)
	default:
		return nil, fmt.Errorf("%w: %q", storyboard.ErrInvalidMediaKind, ref.Kind)
	}
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
		}
		return nil, err
	}
	return media, nil
}

func (l *Loader) loadImage(ctx context.Context, ref storyboard.MediaRef) (pipeline.Media, error) {
	data, _, err := l.resolver.Fetch(ctx, ref.Locator)
	if err != nil {
		return nil, err
	}
	img, err := l.renderer.DecodeImage(data, ports.FormatAuto)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("decode image: empty bitmap")
	}
	l.logger.Debug("Image loaded: %dx%d", b.Dx(), b.Dy())
	return &imageMedia{img: img}, nil
}

func (l *Loader) loadClip(ctx context.Context, ref storyboard.MediaRef) (pipeline.Media, error) {
	if l.clips == nil {
		return nil, fmt.Errorf("no clip decoder configured")
	}

	path, cleanup, err := l.resolver.LocalPath(ctx, ref.Locator, "storyreel-clip-*")
	if err != nil {
		return nil, err
	}

	info, err := l.clips.Probe(ctx, path)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("probe clip: %w", err)
	}

	// The decoder process outlives the load timeout; only the first frame waits on ctx.
	stream, err := l.clips.Open(context.WithoutCancel(ctx), path, info, l.opts.FPS)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("open clip: %w", err)
	}

	m := newClipMedia(stream, info, l.opts.FPS, l.opts.Timeout, cleanup)
	if err := m.waitFirst(ctx); err != nil {
		m.Close()
		return nil, err
	}
	l.logger.Debug("Clip loaded: %dx%d, %d ms", m.size.Width, m.size.Height, info.DurationMs)
	return m, nil
}

var _ pipeline.MediaLoader = (*Loader)(nil)
