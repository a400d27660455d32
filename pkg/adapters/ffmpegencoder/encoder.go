// Package ffmpegencoder encodes RGBA frames into WebM (VP9) or MP4 (H.264)
// by piping raw video into an ffmpeg process.
package ffmpegencoder

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"
	"os/exec"
	"strconv"
	"sync"

	"github.com/user/storyreel/pkg/adapters/ffmpegbin"
	"github.com/user/storyreel/pkg/ports"
)

// Codec selects the output codec.
type Codec string

const (
	CodecVP9  Codec = "vp9"
	CodecH264 Codec = "h264"
)

// ParseCodec parses a codec name. Empty selects VP9.
func ParseCodec(s string) (Codec, error) {
	switch s {
	case "", "vp9", "webm":
		return CodecVP9, nil
	case "h264", "mp4", "avc":
		return CodecH264, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedCodec, s)
	}
}

// Format returns the container produced for codec.
func (c Codec) Format() ports.VideoFormat {
	if c == CodecH264 {
		return ports.FormatMP4
	}
	return ports.FormatWebM
}

// Encoder implements ports.VideoEncoder with an ffmpeg subprocess.
type Encoder struct {
	codec Codec

	mu         sync.Mutex
	ffmpegPath string
	width      int
	height     int
	cmd        *exec.Cmd
	stdin      io.WriteCloser
	stderr     bytes.Buffer
	tempPath   string
	frame      *image.RGBA
	frameCount int
	closed     bool
}

// New creates an encoder for codec.
func New(codec Codec) (*Encoder, error) {
	if codec != CodecVP9 && codec != CodecH264 {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCodec, codec)
	}
	return &Encoder{codec: codec}, nil
}

// Format describes the container this encoder produces.
func (e *Encoder) Format() ports.VideoFormat {
	return e.codec.Format()
}

// Begin starts ffmpeg reading width x height RGBA frames at fps.
func (e *Encoder) Begin(width, height int, fps float64, opts ports.EncoderOptions) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cmd != nil || e.closed {
		return ErrAlreadyStarted
	}
	if width <= 0 || height <= 0 || width%2 != 0 || height%2 != 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}

	path, err := ffmpegbin.FindFFmpeg()
	if err != nil {
		return err
	}
	e.ffmpegPath = path
	e.width = width
	e.height = height
	e.frame = image.NewRGBA(image.Rect(0, 0, width, height))
	e.frameCount = 0

	tempFile, err := os.CreateTemp("", "storyreel_*."+e.codec.Format().Container)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	e.tempPath = tempFile.Name()
	tempFile.Close()

	args := e.buildArgs(fps, opts)

	e.cmd = exec.Command(e.ffmpegPath, args...)
	e.stderr.Reset()
	e.cmd.Stderr = &e.stderr

	stdin, err := e.cmd.StdinPipe()
	if err != nil {
		os.Remove(e.tempPath)
		e.cmd = nil
		return fmt.Errorf("failed to get stdin pipe: %w", err)
	}
	e.stdin = stdin

	if err := e.cmd.Start(); err != nil {
		os.Remove(e.tempPath)
		e.cmd = nil
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}
	return nil
}

func (e *Encoder) buildArgs(fps float64, opts ports.EncoderOptions) []string {
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", e.width, e.height),
		"-r", strconv.FormatFloat(fps, 'f', -1, 64),
		"-i", "pipe:0",
	}

	switch e.codec {
	case CodecH264:
		crf := 23
		if opts.Quality > 0 && opts.Quality <= 63 {
			// Our 0-63 scale maps onto x264's 0-51
			crf = opts.Quality * 51 / 63
		}
		args = append(args,
			"-c:v", "libx264",
			"-preset", "fast",
			"-pix_fmt", "yuv420p",
			"-crf", strconv.Itoa(crf),
		)
		if opts.Bitrate > 0 {
			args = append(args, "-maxrate", fmt.Sprintf("%dk", opts.Bitrate), "-bufsize", fmt.Sprintf("%dk", opts.Bitrate*2))
		}
		args = append(args,
			"-profile:v", "baseline",
			"-level", "3.1",
			"-movflags", "+faststart",
			"-f", "mp4",
		)
	default:
		crf := 32
		if opts.Quality > 0 && opts.Quality <= 63 {
			crf = opts.Quality
		}
		args = append(args,
			"-c:v", "libvpx-vp9",
			"-pix_fmt", "yuv420p",
			"-crf", strconv.Itoa(crf),
		)
		if opts.Bitrate > 0 {
			args = append(args, "-b:v", fmt.Sprintf("%dk", opts.Bitrate))
		} else {
			args = append(args, "-b:v", "0")
		}
		args = append(args,
			"-deadline", "realtime",
			"-cpu-used", "8",
			"-row-mt", "1",
			"-f", "webm",
		)
	}

	return append(args, e.tempPath)
}

// EncodeFrame writes one frame. Frames arrive at the constant rate given to Begin,
// so timestampMs is informational.
func (e *Encoder) EncodeFrame(img image.Image, timestampMs int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stdin == nil || e.closed {
		return ErrNotInitialized
	}

	bounds := img.Bounds()
	if rgba, ok := img.(*image.RGBA); ok && bounds.Dx() == e.width && bounds.Dy() == e.height && rgba.Stride == e.width*4 {
		if _, err := e.stdin.Write(rgba.Pix); err != nil {
			return fmt.Errorf("failed to write frame %d: %w (%s)", e.frameCount, err, e.stderr.String())
		}
		e.frameCount++
		return nil
	}

	draw.Draw(e.frame, e.frame.Bounds(), img, bounds.Min, draw.Src)
	if _, err := e.stdin.Write(e.frame.Pix); err != nil {
		return fmt.Errorf("failed to write frame %d: %w (%s)", e.frameCount, err, e.stderr.String())
	}
	e.frameCount++
	return nil
}

// End closes the input, waits for ffmpeg and returns the container bytes.
func (e *Encoder) End() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stdin == nil || e.closed {
		return nil, ErrNotInitialized
	}

	e.stdin.Close()
	e.stdin = nil
	e.closed = true
	defer e.removeTemp()

	if err := e.cmd.Wait(); err != nil {
		return nil, fmt.Errorf("ffmpeg encoding failed: %w\nstderr: %s", err, e.stderr.String())
	}

	data, err := os.ReadFile(e.tempPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read output: %w", err)
	}
	return data, nil
}

// Abort kills ffmpeg and discards its output.
func (e *Encoder) Abort() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || e.cmd == nil {
		e.closed = true
		return
	}
	e.closed = true
	if e.stdin != nil {
		e.stdin.Close()
		e.stdin = nil
	}
	if e.cmd.Process != nil {
		e.cmd.Process.Kill()
	}
	e.cmd.Wait()
	e.removeTemp()
}

// FrameCount returns the number of frames written so far.
func (e *Encoder) FrameCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frameCount
}

func (e *Encoder) removeTemp() {
	if e.tempPath != "" {
		os.Remove(e.tempPath)
		e.tempPath = ""
	}
}

// Ensure Encoder implements ports.VideoEncoder
var _ ports.VideoEncoder = (*Encoder)(nil)
