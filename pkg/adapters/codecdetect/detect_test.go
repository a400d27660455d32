package codecdetect

import (
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/user/storyreel/pkg/adapters/ffmpegbin"
)

func TestProbeBytes_NotMP4(t *testing.T) {
	if _, err := ProbeBytes([]byte("definitely not an mp4 file")); err == nil {
		t.Error("expected error for non-MP4 data")
	}
	if _, err := DetectFromBytes(nil); err == nil {
		t.Error("expected error for empty data")
	}
}

func TestCodecFromType(t *testing.T) {
	tests := map[string]Codec{
		"avc1": CodecH264,
		"avc3": CodecH264,
		"hvc1": CodecHEVC,
		"av01": CodecAV1,
		"vp09": CodecVP9,
		"mp4a": CodecUnknown,
	}
	for boxType, want := range tests {
		if got := codecFromType(boxType); got != want {
			t.Errorf("codecFromType(%s) = %s, want %s", boxType, got, want)
		}
	}
}

func TestProbeFile_Generated(t *testing.T) {
	ffmpeg, err := ffmpegbin.FindFFmpeg()
	if err != nil {
		t.Skip("ffmpeg not available")
	}
	if !ffmpegbin.HasEncoder("libx264") {
		t.Skip("ffmpeg built without libx264")
	}

	path := filepath.Join(t.TempDir(), "clip.mp4")
	cmd := exec.Command(ffmpeg, "-y", "-hide_banner", "-loglevel", "error",
		"-f", "lavfi", "-i", "testsrc=size=320x180:rate=10:duration=2",
		"-c:v", "libx264", "-pix_fmt", "yuv420p", path)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("generate clip: %v\n%s", err, out)
	}

	info, err := ProbeFile(path)
	if err != nil {
		t.Fatalf("ProbeFile failed: %v", err)
	}
	if info.Codec != CodecH264 {
		t.Errorf("expected h264, got %s", info.Codec)
	}
	if info.Width != 320 || info.Height != 180 {
		t.Errorf("expected 320x180, got %dx%d", info.Width, info.Height)
	}
	if info.DurationMs < 1900 || info.DurationMs > 2100 {
		t.Errorf("expected ~2000ms, got %d", info.DurationMs)
	}

	codec, err := DetectFromFile(path)
	if err != nil || codec != CodecH264 {
		t.Errorf("DetectFromFile = %s, %v", codec, err)
	}
}
