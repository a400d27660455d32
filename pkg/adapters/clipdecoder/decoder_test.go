package clipdecoder

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/user/storyreel/pkg/adapters/ffmpegbin"
	"github.com/user/storyreel/pkg/adapters/logger"
	"github.com/user/storyreel/pkg/ports"
)

// generateClip writes a 320x180 test pattern clip with an audio track.
func generateClip(t *testing.T, name string, seconds string) string {
	t.Helper()
	ffmpeg, err := ffmpegbin.FindFFmpeg()
	if err != nil {
		t.Skip("ffmpeg not available")
	}
	path := filepath.Join(t.TempDir(), name)
	cmd := exec.Command(ffmpeg, "-y", "-hide_banner", "-loglevel", "error",
		"-f", "lavfi", "-i", "testsrc=size=320x180:rate=25:duration="+seconds,
		"-f", "lavfi", "-i", "sine=frequency=440:duration="+seconds,
		"-shortest", path)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Skipf("cannot generate test clip: %v\n%s", err, out)
	}
	return path
}

func TestProbe(t *testing.T) {
	path := generateClip(t, "clip.webm", "1")
	if _, err := ffmpegbin.FindFFprobe(); err != nil {
		t.Skip("ffprobe not available")
	}

	d := New(logger.NewNoop())
	info, err := d.Probe(context.Background(), path)
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	if info.Width != 320 || info.Height != 180 {
		t.Errorf("expected 320x180, got %dx%d", info.Width, info.Height)
	}
}

func TestProbe_NotVideo(t *testing.T) {
	if _, err := ffmpegbin.FindFFprobe(); err != nil {
		t.Skip("ffprobe not available")
	}
	path := filepath.Join(t.TempDir(), "notes.txt")
	os.WriteFile(path, []byte("hello"), 0o644)

	d := New(logger.NewNoop())
	if _, err := d.Probe(context.Background(), path); err == nil {
		t.Error("expected error for a text file")
	}
}

func TestOpen_StreamsFramesAtRequestedRate(t *testing.T) {
	path := generateClip(t, "clip.mkv", "1")

	d := New(logger.NewNoop())
	info := ports.ClipInfo{Width: 160, Height: 90}
	stream, err := d.Open(context.Background(), path, info, 10)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer stream.Close()

	count := 0
	for {
		img, err := stream.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Next failed after %d frames: %v", count, err)
		}
		if b := img.Bounds(); b.Dx() != 160 || b.Dy() != 90 {
			t.Fatalf("expected 160x90 frames, got %v", b)
		}
		count++
	}
	// 1s at 10fps
	if count < 9 || count > 11 {
		t.Errorf("expected about 10 frames, got %d", count)
	}
}

func TestClose_StopsPendingDecode(t *testing.T) {
	path := generateClip(t, "long.mkv", "20")

	d := New(logger.NewNoop())
	stream, err := d.Open(context.Background(), path, ports.ClipInfo{Width: 320, Height: 180}, 25)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := stream.Next(); err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if err := stream.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := stream.Next(); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestOpen_InvalidSize(t *testing.T) {
	d := New(logger.NewNoop())
	if _, err := d.Open(context.Background(), "x.mp4", ports.ClipInfo{}, 30); err == nil {
		t.Error("expected error for zero size")
	}
}
