package summarizer

import (
	"strings"
	"testing"
	"time"
)

func fullSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		Scenes: []SceneRow{
			{Index: 0, Kind: "image", Duration: 4, StartMs: 0, Frames: 120, Subtitle: true, Narration: "generated", Voice: "Kore"},
			{Index: 1, Kind: "video", Duration: 2.5, StartMs: 4000, Frames: 75, Subtitle: false, Narration: "none"},
		},
		Settings: Settings{
			AspectRatio: "16:9",
			FPS:         30,
			Codec:       "vp9",
			Overflow:    "allow",
		},
		Video: VideoInfo{
			FrameCount:   195,
			DurationMs:   6500,
			FileSize:     1024 * 1024,
			CanvasWidth:  1280,
			CanvasHeight: 720,
			Path:         "storyreel-video-20240115-103000.webm",
		},
		Notices: []string{"scene 2: media slow to load"},
		Resources: Resources{
			PeakRSS: 256 * 1024 * 1024,
			CPUTime: 1500 * time.Millisecond,
		},
	}
}

func TestMarkdownFormatter_Format_Basic(t *testing.T) {
	result := NewMarkdownFormatter().Format(fullSummary())

	// Check required sections
	checks := []string{
		"# Render Summary",
		"| 1 | image | 4.00 s | 0 ms | 120 | yes | generated (Kore) |",
		"| 2 | video | 2.50 s | 4000 ms | 75 | no | none |",
		"**Aspect Ratio**: 16:9",
		"**Codec**: vp9",
		"**Narration Overflow**: allow",
		"**Clock**: virtual",
		"**Frames**: 195",
		"6.50 s",
		"1280x720",
		"1.00 MB",
		"storyreel-video-20240115-103000.webm",
		"media slow to load",
		"256.00 MB",
		"1.50 s",
	}

	for _, check := range checks {
		if !strings.Contains(result, check) {
			t.Errorf("expected output to contain %q", check)
		}
	}
}

func TestMarkdownFormatter_OptionalSections(t *testing.T) {
	result := NewMarkdownFormatter().Format(&Summary{GeneratedAt: time.Now()})

	if !strings.Contains(result, "No scenes") {
		t.Error("expected empty scene note")
	}
	for _, absent := range []string{"## Notices", "## Resources", "Gallery Item"} {
		if strings.Contains(result, absent) {
			t.Errorf("output should NOT contain %q", absent)
		}
	}
}

func TestMarkdownFormatter_WithTranslator(t *testing.T) {
	translator := func(key string) string {
		translations := map[string]string{
			"Render Summary": "Resumo da renderização",
			"Scenes":         "Cenas",
			"yes":            "sim",
		}
		if v, ok := translations[key]; ok {
			return v
		}
		return key
	}

	result := NewMarkdownFormatter(WithTranslator(translator)).Format(fullSummary())

	for _, want := range []string{"Resumo da renderização", "## Cenas", "| sim |"} {
		if !strings.Contains(result, want) {
			t.Errorf("expected translated %q", want)
		}
	}
}

func TestMarkdownFormatter_WithVersion(t *testing.T) {
	result := NewMarkdownFormatter(WithVersion("v1.2.0")).Format(&Summary{GeneratedAt: time.Now()})

	if !strings.Contains(result, "v1.2.0") {
		t.Error("expected output to contain version 'v1.2.0'")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{100, "100 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1024 * 1024, "1.00 MB"},
		{1024 * 1024 * 1024, "1.00 GB"},
		{1536 * 1024 * 1024, "1.50 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := formatBytes(tt.bytes)
			if got != tt.want {
				t.Errorf("formatBytes(%d) = %q, want %q", tt.bytes, got, tt.want)
			}
		})
	}
}
