// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"image/color"
	"os"
	"time"

	"github.com/user/storyreel/pkg/adapters/ffmpegencoder"
	"github.com/user/storyreel/pkg/adapters/osfilesystem"
	"github.com/user/storyreel/pkg/stages/narrate"
	"github.com/user/storyreel/pkg/storyboard"
	"github.com/user/storyreel/pkg/storyreel"
	"gopkg.in/yaml.v3"
)

// Config represents the full configuration for storyreel.
type Config struct {
	Paths   PathsConfig   `yaml:"paths"`
	Render  RenderConfig  `yaml:"render"`
	Theme   ThemeConfig   `yaml:"theme"`
	Gallery GalleryConfig `yaml:"gallery"`
	API     APIConfig     `yaml:"api"`

	// Debug
	Debug bool `yaml:"debug"`
}

// PathsConfig locates persisted state and outputs.
type PathsConfig struct {
	Database string `yaml:"database"`
	Output   string `yaml:"output"`    // File or directory for renders
	MediaDir string `yaml:"media_dir"` // Large gallery assets; empty keeps them in memory
	DebugDir string `yaml:"debug_dir"`
}

// RenderConfig holds render settings.
type RenderConfig struct {
	Ratio  string  `yaml:"ratio"`
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	FPS    float64 `yaml:"fps"`

	// RefreshMode is "virtual" (as fast as possible) or "realtime" (wall clock).
	RefreshMode string  `yaml:"refresh_mode"`
	RefreshHz   float64 `yaml:"refresh_hz"`

	Codec          string `yaml:"codec"`   // vp9 or h264
	Quality        int    `yaml:"quality"` // 0-63, lower is better
	Bitrate        int    `yaml:"bitrate"` // kbps, 0 for constant quality
	LoadTimeoutSec int    `yaml:"load_timeout_sec"`

	Overflow                 string `yaml:"narration_overflow"` // allow or cut
	SpeechLanguage           string `yaml:"speech_language"`
	SpeechVoice              string `yaml:"speech_voice"`
	SpeechRate               int    `yaml:"speech_rate"` // words per minute
	GenerateMissingNarration bool   `yaml:"generate_missing_narration"`
	AddToGallery             bool   `yaml:"add_to_gallery"`
}

// ThemeConfig represents theming options.
type ThemeConfig struct {
	BandColor string  `yaml:"band_color"`
	TextColor string  `yaml:"text_color"`
	FontSize  float64 `yaml:"font_size"` // 0 uses the ratio preset
	FontPath  string  `yaml:"font_path"`
}

// GalleryConfig configures the gallery store.
type GalleryConfig struct {
	InlineCeiling int `yaml:"inline_ceiling"`
}

// APIConfig configures the generative service.
type APIConfig struct {
	BaseURL    string `yaml:"base_url"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// Refresh modes.
const (
	RefreshVirtual  = "virtual"
	RefreshRealtime = "realtime"
)

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		Paths: PathsConfig{
			Database: "~/.storyreel/studio.db",
			Output:   ".",
			MediaDir: "~/.storyreel/media",
			DebugDir: "./debug",
		},
		Render: RenderConfig{
			Ratio:          "16:9",
			FPS:            30,
			RefreshMode:    RefreshVirtual,
			RefreshHz:      60,
			Codec:          "vp9",
			Quality:        32,
			LoadTimeoutSec: 30,
			Overflow:       string(narrate.OverflowAllow),
			SpeechLanguage: narrate.DefaultLanguage,
			AddToGallery:   true,
		},
		Theme: ThemeConfig{
			BandColor: "#000000b3",
			TextColor: "#ffffff",
		},
		Gallery: GalleryConfig{
			InlineCeiling: storyboard.DefaultInlineCeiling,
		},
		API: APIConfig{
			BaseURL:    "https://generativelanguage.googleapis.com/v1beta",
			TimeoutSec: 120,
		},
	}
}

// LoadFromFile loads configuration from a YAML file over the defaults.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, cfg.Validate()
}

// Validate reports settings that cannot be rendered.
func (c Config) Validate() error {
	if c.Render.FPS <= 0 {
		return fmt.Errorf("config: fps must be positive, got %v", c.Render.FPS)
	}
	if _, err := ffmpegencoder.ParseCodec(c.Render.Codec); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := narrate.ParseOverflowPolicy(c.Render.Overflow); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch c.Render.RefreshMode {
	case "", RefreshVirtual, RefreshRealtime:
	default:
		return fmt.Errorf("config: invalid refresh mode %q (want virtual or realtime)", c.Render.RefreshMode)
	}
	if (c.Render.Width > 0) != (c.Render.Height > 0) {
		return fmt.Errorf("config: width and height must be set together")
	}
	return nil
}

// LoadTimeout returns the media load timeout.
func (c Config) LoadTimeout() time.Duration {
	return time.Duration(c.Render.LoadTimeoutSec) * time.Second
}

// ParseColor parses a "#rrggbb" or "#rrggbbaa" hex string to color.Color.
// Malformed input yields opaque black.
func ParseColor(hex string) color.Color {
	if len(hex) > 0 && hex[0] == '#' {
		hex = hex[1:]
	}
	if len(hex) != 6 && len(hex) != 8 {
		return color.Black
	}

	c := color.NRGBA{A: 255}
	channels := []*uint8{&c.R, &c.G, &c.B, &c.A}
	for i := 0; i < len(hex)/2; i++ {
		*channels[i] = hexValue(hex[2*i])<<4 | hexValue(hex[2*i+1])
	}
	return c
}

func hexValue(c byte) uint8 {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	default:
		return 0
	}
}

// RenderBuilder returns a render config builder seeded from the file
// settings. The portrait preset is used for 9:16.
func (c Config) RenderBuilder() *storyreel.ConfigBuilder {
	b := storyreel.NewConfigBuilder()
	if c.Render.Ratio == "9:16" {
		b = storyreel.NewPortraitConfigBuilder()
	}
	b.WithAspectRatio(c.Render.Ratio).
		WithSize(c.Render.Width, c.Render.Height).
		WithCodec(c.Render.Codec).
		WithQuality(c.Render.Quality).
		WithBitrate(c.Render.Bitrate).
		WithFPS(c.Render.FPS).
		WithOverflow(c.Render.Overflow).
		WithLanguage(c.Render.SpeechLanguage).
		WithRealtime(c.Render.RefreshMode == RefreshRealtime)

	if c.Theme.BandColor != "" {
		b.WithBandColor(ParseColor(c.Theme.BandColor))
	}
	if c.Theme.TextColor != "" {
		b.WithTextColor(ParseColor(c.Theme.TextColor))
	}
	if c.Theme.FontSize > 0 {
		b.WithFontSize(c.Theme.FontSize)
	}
	if c.Theme.FontPath != "" {
		b.WithFontPath(osfilesystem.ExpandHome(c.Theme.FontPath))
	}
	return b
}
