package load

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"sync"
	"time"

	"github.com/user/storyreel/pkg/pipeline"
	"github.com/user/storyreel/pkg/ports"
	"github.com/user/storyreel/pkg/storyboard"
)

// imageMedia is a decoded still.
type imageMedia struct {
	img image.Image
}

func (m *imageMedia) Kind() storyboard.MediaKind { return storyboard.KindImage }

func (m *imageMedia) Size() pipeline.Dimension {
	b := m.img.Bounds()
	return pipeline.Dimension{Width: b.Dx(), Height: b.Dy()}
}

func (m *imageMedia) FrameAt(offset time.Duration) (image.Image, error) {
	return m.img, nil
}

func (m *imageMedia) Close() error { return nil }

// clipBuffer is the number of decoded frames the background decoder may run ahead.
const clipBuffer = 4

type decoded struct {
	img image.Image
	err error
}

// clipMedia plays a silent clip decoded in a background goroutine.
// FrameAt offsets are expected to be non-decreasing, as the sequencer produces them.
type clipMedia struct {
	stream   ports.ClipStream
	size     pipeline.Dimension
	interval time.Duration
	stall    time.Duration // longest wait for one decoded frame
	cleanup  func()

	frames chan decoded
	done   chan struct{}
	wg     sync.WaitGroup

	mu      sync.Mutex
	current image.Image
	index   int
	ended   bool
	closed  bool
}

func newClipMedia(stream ports.ClipStream, info ports.ClipInfo, fps float64, stall time.Duration, cleanup func()) *clipMedia {
	m := &clipMedia{
		stream:   stream,
		size:     pipeline.Dimension{Width: info.Width, Height: info.Height},
		interval: pipeline.FrameInterval(fps),
		stall:    stall,
		cleanup:  cleanup,
		frames:   make(chan decoded, clipBuffer),
		done:     make(chan struct{}),
	}
	m.wg.Add(1)
	go m.decode()
	return m
}

func (m *clipMedia) decode() {
	defer m.wg.Done()
	defer close(m.frames)
	for {
		img, err := m.stream.Next()
		if errors.Is(err, io.EOF) {
			return
		}
		select {
		case m.frames <- decoded{img: img, err: err}:
		case <-m.done:
			return
		}
		if err != nil {
			return
		}
	}
}

// waitFirst blocks until the first frame is decoded.
func (m *clipMedia) waitFirst(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("wait for first frame: %w", ctx.Err())
	case d, ok := <-m.frames:
		if !ok {
			return fmt.Errorf("clip has no frames")
		}
		if d.err != nil {
			return fmt.Errorf("decode clip: %w", d.err)
		}
		m.mu.Lock()
		m.current = d.img
		if m.size.Width == 0 || m.size.Height == 0 {
			b := d.img.Bounds()
			m.size = pipeline.Dimension{Width: b.Dx(), Height: b.Dy()}
		}
		m.mu.Unlock()
		return nil
	}
}

func (m *clipMedia) Kind() storyboard.MediaKind { return storyboard.KindVideo }

func (m *clipMedia) Size() pipeline.Dimension {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.size
}

// FrameAt returns the latest frame at or before offset.
// It waits when the decoder is behind, up to stall per frame, and holds the
// last frame after the clip ends.
func (m *clipMedia) FrameAt(offset time.Duration) (image.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, fmt.Errorf("clip closed")
	}

	target := int(offset / m.interval)
	if m.ended || m.index >= target {
		return m.current, nil
	}

	timer := time.NewTimer(m.stall)
	defer timer.Stop()
	for !m.ended && m.index < target {
		var (
			d  decoded
			ok bool
		)
		select {
		case d, ok = <-m.frames:
		case <-timer.C:
			m.ended = true
			return nil, fmt.Errorf("decode clip: no frame within %v: %w", m.stall, context.DeadlineExceeded)
		}
		if !ok {
			m.ended = true
			break
		}
		if d.err != nil {
			m.ended = true
			return nil, fmt.Errorf("decode clip: %w", d.err)
		}
		m.current = d.img
		m.index++
		timer.Reset(m.stall)
	}
	return m.current, nil
}

func (m *clipMedia) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	close(m.done)
	err := m.stream.Close()
	m.wg.Wait()
	if m.cleanup != nil {
		m.cleanup()
	}
	return err
}
