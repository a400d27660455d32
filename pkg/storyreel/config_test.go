package storyreel

import (
	"image/color"
	"testing"
)

func TestNewConfigBuilder_Defaults(t *testing.T) {
	cfg := NewConfigBuilder().Build()

	if cfg.AspectRatio != "16:9" {
		t.Errorf("expected 16:9, got %s", cfg.AspectRatio)
	}
	if cfg.Codec != "vp9" || cfg.Quality != 32 || cfg.FPS != 30 {
		t.Errorf("unexpected encoding defaults %+v", cfg)
	}
	if cfg.Overflow != "allow" {
		t.Errorf("expected allow overflow, got %s", cfg.Overflow)
	}
}

func TestNewPortraitConfigBuilder(t *testing.T) {
	cfg := NewPortraitConfigBuilder().Build()
	if cfg.AspectRatio != "9:16" {
		t.Errorf("expected 9:16, got %s", cfg.AspectRatio)
	}
}

func TestConfigBuilder_QualityPresets(t *testing.T) {
	tests := []struct {
		preset  QualityPreset
		quality int
		fps     float64
	}{
		{QualityLow, 40, 24},
		{QualityMedium, 32, 30},
		{QualityHigh, 24, 30},
		{"unknown", 32, 30},
	}

	for _, tt := range tests {
		t.Run(string(tt.preset), func(t *testing.T) {
			cfg := NewConfigBuilder().WithQualityPreset(tt.preset).Build()
			if cfg.Quality != tt.quality || cfg.FPS != tt.fps {
				t.Errorf("expected quality %d at %v fps, got %d at %v", tt.quality, tt.fps, cfg.Quality, cfg.FPS)
			}
		})
	}
}

func TestConfigBuilder_Constraints(t *testing.T) {
	cfg := NewConfigBuilder().
		WithQuality(99).
		WithFPS(0).
		WithSize(640, 0).
		WithOverflow("loop").
		Build()

	if cfg.Quality != 63 {
		t.Errorf("expected quality clamped to 63, got %d", cfg.Quality)
	}
	if cfg.FPS != 30 {
		t.Errorf("expected fps 30, got %v", cfg.FPS)
	}
	if cfg.Width != 0 || cfg.Height != 0 {
		t.Errorf("expected half size dropped, got %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Overflow != "allow" {
		t.Errorf("expected allow, got %s", cfg.Overflow)
	}
}

func TestConfig_ToOrchestratorConfig(t *testing.T) {
	cfg := NewConfigBuilder().
		WithAspectRatio("9:16").
		WithTextColor(color.RGBA{R: 255, G: 255, A: 255}).
		WithCodec("h264").
		WithOverflow("cut").
		WithRealtime(true).
		Build()

	oc := cfg.ToOrchestratorConfig()
	if oc.AspectRatio != "9:16" || oc.Codec != "h264" || oc.Overflow != "cut" || !oc.Realtime {
		t.Errorf("unexpected orchestrator config %+v", oc)
	}
	if oc.TextColor != [4]uint8{255, 255, 0, 255} {
		t.Errorf("unexpected text color %v", oc.TextColor)
	}
	if oc.BandColor != [4]uint8{0, 0, 0, 178} {
		t.Errorf("unexpected band color %v", oc.BandColor)
	}
}
