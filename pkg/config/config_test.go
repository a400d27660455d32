package config

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should be valid: %v", err)
	}
	if cfg.Render.Ratio != "16:9" {
		t.Errorf("expected ratio 16:9, got %s", cfg.Render.Ratio)
	}
	if cfg.Gallery.InlineCeiling != 500000 {
		t.Errorf("expected inline ceiling 500000, got %d", cfg.Gallery.InlineCeiling)
	}
	if cfg.Render.Overflow != "allow" {
		t.Errorf("expected allow overflow, got %s", cfg.Render.Overflow)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "storyreel.yaml")
	data := []byte(`
render:
  ratio: "9:16"
  codec: h264
  narration_overflow: cut
theme:
  text_color: "#ffff00"
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if cfg.Render.Ratio != "9:16" || cfg.Render.Codec != "h264" || cfg.Render.Overflow != "cut" {
		t.Errorf("unexpected render config %+v", cfg.Render)
	}
	// Unset keys keep their defaults
	if cfg.Render.FPS != 30 {
		t.Errorf("expected default fps, got %v", cfg.Render.FPS)
	}
	if cfg.Theme.BandColor != "#000000b3" {
		t.Errorf("expected default band color, got %s", cfg.Theme.BandColor)
	}
}

func TestLoadFromFile_Invalid(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		yaml string
	}{
		{"bad codec", "render:\n  codec: av1\n"},
		{"bad overflow", "render:\n  narration_overflow: loop\n"},
		{"bad refresh", "render:\n  refresh_mode: turbo\n"},
		{"half size", "render:\n  width: 640\n"},
		{"zero fps", "render:\n  fps: 0\n"},
		{"not yaml", "render: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "c.yaml")
			os.WriteFile(path, []byte(tt.yaml), 0644)
			if _, err := LoadFromFile(path); err == nil {
				t.Error("expected error")
			}
		})
	}

	if _, err := LoadFromFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		input string
		want  color.NRGBA
	}{
		{"#ffffff", color.NRGBA{255, 255, 255, 255}},
		{"000000b3", color.NRGBA{0, 0, 0, 179}},
		{"#1A2b3C", color.NRGBA{26, 43, 60, 255}},
		{"", color.NRGBA{0, 0, 0, 255}},
		{"#fff", color.NRGBA{0, 0, 0, 255}},
	}

	for _, tt := range tests {
		got := color.NRGBAModel.Convert(ParseColor(tt.input)).(color.NRGBA)
		if got != tt.want {
			t.Errorf("ParseColor(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestRenderBuilder(t *testing.T) {
	cfg := Defaults()
	cfg.Render.Ratio = "9:16"
	cfg.Render.RefreshMode = RefreshRealtime
	cfg.Render.FPS = 24

	rc := cfg.RenderBuilder().Build()
	if rc.AspectRatio != "9:16" || rc.FPS != 24 || !rc.Realtime {
		t.Errorf("unexpected render config %+v", rc)
	}
	if rc.FontSize != 22 {
		t.Errorf("expected portrait font size 22, got %v", rc.FontSize)
	}
	if got := color.NRGBAModel.Convert(rc.BandColor).(color.NRGBA); got != (color.NRGBA{0, 0, 0, 179}) {
		t.Errorf("unexpected band color %v", got)
	}

	cfg.Theme.FontSize = 30
	if rc := cfg.RenderBuilder().Build(); rc.FontSize != 30 {
		t.Errorf("expected explicit font size 30, got %v", rc.FontSize)
	}

	oc := cfg.RenderBuilder().Build().ToOrchestratorConfig()
	if oc.TextColor != [4]uint8{255, 255, 255, 255} {
		t.Errorf("unexpected text color %v", oc.TextColor)
	}
}
