// Package audiomix lays narration cues onto an encoded video with ffmpeg.
package audiomix

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/user/storyreel/pkg/adapters/ffmpegbin"
	"github.com/user/storyreel/pkg/ports"
)

// Mixer implements ports.AudioMuxer.
type Mixer struct {
	logger ports.Logger
}

// New creates a mixer.
func New(logger ports.Logger) *Mixer {
	return &Mixer{logger: logger.WithComponent("audiomix")}
}

// Mux returns video with one narration track built from cues.
// Each cue starts at its StartMs and is trimmed to MaxMs when set.
// The result is no longer than durationMs.
func (m *Mixer) Mux(ctx context.Context, video []byte, format ports.VideoFormat, cues []ports.NarrationCue, durationMs int) ([]byte, error) {
	if len(cues) == 0 {
		return nil, ErrNoCues
	}
	audioCodec, err := audioCodecFor(format)
	if err != nil {
		return nil, err
	}
	ffmpeg, err := ffmpegbin.FindFFmpeg()
	if err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", "storyreel_mix_*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	videoPath := filepath.Join(dir, "video."+format.Container)
	if err := os.WriteFile(videoPath, video, 0o600); err != nil {
		return nil, fmt.Errorf("write video: %w", err)
	}

	args := []string{"-y", "-hide_banner", "-loglevel", "error", "-i", videoPath}
	for i, cue := range cues {
		path := filepath.Join(dir, fmt.Sprintf("cue%03d%s", i, extensionFor(cue.MimeType)))
		if err := os.WriteFile(path, cue.Data, 0o600); err != nil {
			return nil, fmt.Errorf("write cue %s: %w", cue.SceneID, err)
		}
		args = append(args, "-i", path)
	}

	outPath := filepath.Join(dir, "out."+format.Container)
	args = append(args,
		"-filter_complex", BuildFilter(cues),
		"-map", "0:v",
		"-map", "[aout]",
		"-c:v", "copy",
		"-c:a", audioCodec,
		"-t", formatSeconds(durationMs),
	)
	if format.Container == "mp4" {
		args = append(args, "-movflags", "+faststart")
	}
	args = append(args, outPath)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, ffmpeg, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("ffmpeg mux failed: %w\nstderr: %s", err, stderr.String())
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("read mixed output: %w", err)
	}
	m.logger.Debug("Mixed %d narration cues into %d bytes", len(cues), len(data))
	return data, nil
}

// BuildFilter returns the filter graph placing every cue on the timeline.
// Input 0 is the video; cue i is input i+1. The graph's output is [aout].
func BuildFilter(cues []ports.NarrationCue) string {
	var parts []string
	var labels strings.Builder
	for i, cue := range cues {
		chain := fmt.Sprintf("[%d:a]", i+1)
		if cue.MaxMs > 0 {
			chain += fmt.Sprintf("atrim=duration=%s,", formatSeconds(cue.MaxMs))
		}
		delay := cue.StartMs
		if delay < 0 {
			delay = 0
		}
		chain += fmt.Sprintf("asetpts=PTS-STARTPTS,aresample=48000,adelay=%d|%d[a%d]", delay, delay, i)
		parts = append(parts, chain)
		fmt.Fprintf(&labels, "[a%d]", i)
	}
	mix := fmt.Sprintf("%samix=inputs=%d:duration=longest:dropout_transition=0:normalize=0[aout]", labels.String(), len(cues))
	return strings.Join(append(parts, mix), ";")
}

func audioCodecFor(format ports.VideoFormat) (string, error) {
	switch format.Container {
	case "webm":
		return "libopus", nil
	case "mp4":
		return "aac", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedContainer, format.Container)
	}
}

func extensionFor(mimeType string) string {
	mt := strings.ToLower(strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0]))
	switch mt {
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/ogg", "audio/opus":
		return ".ogg"
	case "audio/webm":
		return ".webm"
	case "audio/mp4", "audio/aac", "audio/x-m4a":
		return ".m4a"
	case "audio/flac":
		return ".flac"
	default:
		return ".wav"
	}
}

func formatSeconds(ms int) string {
	return strconv.FormatFloat(float64(ms)/1000, 'f', 3, 64)
}

// Ensure Mixer implements ports.AudioMuxer
var _ ports.AudioMuxer = (*Mixer)(nil)
