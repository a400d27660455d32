// Package clipdecoder samples video clips as RGBA frames with an ffmpeg
// subprocess. Audio is always discarded.
package clipdecoder

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strconv"
	"sync"

	"github.com/user/storyreel/pkg/adapters/codecdetect"
	"github.com/user/storyreel/pkg/adapters/ffmpegbin"
	"github.com/user/storyreel/pkg/ports"
)

// Decoder implements ports.ClipDecoder.
type Decoder struct {
	logger ports.Logger
}

// New creates a clip decoder.
func New(logger ports.Logger) *Decoder {
	return &Decoder{logger: logger.WithComponent("clipdecoder")}
}

// Probe reads the clip dimensions. MP4 headers are tried first, then ffprobe.
func (d *Decoder) Probe(ctx context.Context, path string) (ports.ClipInfo, error) {
	if info, err := codecdetect.ProbeFile(path); err == nil {
		return ports.ClipInfo{
			Width:      info.Width,
			Height:     info.Height,
			DurationMs: info.DurationMs,
			Codec:      string(info.Codec),
		}, nil
	} else {
		d.logger.Debug("MP4 probe failed, trying ffprobe: %v", err)
	}
	return d.ffprobe(ctx, path)
}

type probeOutput struct {
	Streams []struct {
		CodecName string `json:"codec_name"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func (d *Decoder) ffprobe(ctx context.Context, path string) (ports.ClipInfo, error) {
	ffprobe, err := ffmpegbin.FindFFprobe()
	if err != nil {
		return ports.ClipInfo{}, err
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, ffprobe,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=codec_name,width,height:format=duration",
		"-of", "json",
		path,
	)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ports.ClipInfo{}, ctx.Err()
		}
		return ports.ClipInfo{}, fmt.Errorf("ffprobe failed: %w\nstderr: %s", err, stderr.String())
	}

	var out probeOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return ports.ClipInfo{}, fmt.Errorf("parse ffprobe output: %w", err)
	}
	if len(out.Streams) == 0 || out.Streams[0].Width <= 0 || out.Streams[0].Height <= 0 {
		return ports.ClipInfo{}, ErrNoVideoStream
	}

	info := ports.ClipInfo{
		Width:  out.Streams[0].Width,
		Height: out.Streams[0].Height,
		Codec:  out.Streams[0].CodecName,
	}
	if secs, err := strconv.ParseFloat(out.Format.Duration, 64); err == nil {
		info.DurationMs = int(secs * 1000)
	}
	return info, nil
}

// Open starts ffmpeg decoding path at fps, scaled to info's dimensions.
func (d *Decoder) Open(ctx context.Context, path string, info ports.ClipInfo, fps float64) (ports.ClipStream, error) {
	if info.Width <= 0 || info.Height <= 0 {
		return nil, fmt.Errorf("invalid clip size %dx%d", info.Width, info.Height)
	}
	ffmpeg, err := ffmpegbin.FindFFmpeg()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &Stream{
		width:  info.Width,
		height: info.Height,
		cancel: cancel,
	}
	s.cmd = exec.CommandContext(ctx, ffmpeg,
		"-hide_banner",
		"-loglevel", "error",
		"-i", path,
		"-an",
		"-vf", fmt.Sprintf("fps=%s,scale=%d:%d", strconv.FormatFloat(fps, 'f', -1, 64), info.Width, info.Height),
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"pipe:1",
	)
	s.cmd.Stderr = &s.stderr

	stdout, err := s.cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to get stdout pipe: %w", err)
	}
	if err := s.cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}
	s.out = bufio.NewReaderSize(stdout, info.Width*info.Height*4)

	d.logger.Debug("Clip decoder started: %dx%d at %.1f fps", info.Width, info.Height, fps)
	return s, nil
}

// Stream reads raw RGBA frames from a running ffmpeg.
type Stream struct {
	width, height int
	cmd           *exec.Cmd
	out           *bufio.Reader
	stderr        bytes.Buffer
	cancel        context.CancelFunc

	mu     sync.Mutex
	frames int
	closed bool
	waited bool
}

// Next returns the next frame, or io.EOF after the last one.
func (s *Stream) Next() (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	img := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	_, err := io.ReadFull(s.out, img.Pix)
	switch {
	case err == nil:
		s.frames++
		return img, nil
	case errors.Is(err, io.EOF):
		if werr := s.wait(); werr != nil {
			return nil, werr
		}
		if s.frames == 0 {
			return nil, ErrNoVideoStream
		}
		return nil, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		// A truncated last frame ends the clip
		s.wait()
		return nil, io.EOF
	default:
		return nil, fmt.Errorf("read frame %d: %w", s.frames, err)
	}
}

func (s *Stream) wait() error {
	if s.waited {
		return nil
	}
	s.waited = true
	if err := s.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg decoding failed: %w\nstderr: %s", err, s.stderr.String())
	}
	return nil
}

// Close stops ffmpeg. It may be called while Next is blocked reading.
func (s *Stream) Close() error {
	// Killing the process first unblocks a pending Next.
	s.cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if !s.waited {
		s.waited = true
		s.cmd.Wait()
	}
	return nil
}

var (
	_ ports.ClipDecoder = (*Decoder)(nil)
	_ ports.ClipStream  = (*Stream)(nil)
)
