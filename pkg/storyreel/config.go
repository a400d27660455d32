// Package storyreel provides a high-level API for configuring storyboard renders.
package storyreel

import (
	"image/color"

	"github.com/user/storyreel/pkg/orchestrator"
)

// QualityPreset represents a video quality preset name.
type QualityPreset string

const (
	QualityLow    QualityPreset = "low"
	QualityMedium QualityPreset = "medium"
	QualityHigh   QualityPreset = "high"
)

// QualitySettings contains quality parameters for video encoding.
type QualitySettings struct {
	Quality int     // Encoder quality (0-63, lower is better)
	FPS     float64 // Output frame rate
}

// GetQualitySettings returns quality settings for the given preset.
func GetQualitySettings(preset QualityPreset) QualitySettings {
	switch preset {
	case QualityLow:
		return QualitySettings{Quality: 40, FPS: 24}
	case QualityHigh:
		return QualitySettings{Quality: 24, FPS: 30}
	default: // medium
		return QualitySettings{Quality: 32, FPS: 30}
	}
}

// Config represents the configuration for a storyboard render.
type Config struct {
	// Video size
	AspectRatio string // "16:9" or "9:16"
	Width       int    // Explicit size; zero uses the ratio preset
	Height      int

	// Style
	BandColor color.Color // Subtitle band color
	TextColor color.Color // Subtitle text color
	FontSize  float64
	FontPath  string // Empty selects the embedded bold font

	// Encoding
	Codec   string // vp9 or h264
	Quality int    // 0-63, lower is better
	Bitrate int    // kbps, 0 for constant quality
	FPS     float64

	// Narration
	Overflow string // allow or cut
	Language string // Speech fallback language

	// Realtime paces the render by the wall clock instead of a virtual clock.
	Realtime bool
}

// ConfigBuilder provides a fluent interface for building Config.
type ConfigBuilder struct {
	config Config
}

// NewConfigBuilder creates a new ConfigBuilder with landscape preset defaults.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{
		config: landscapeDefaults(),
	}
}

// NewPortraitConfigBuilder creates a new ConfigBuilder with portrait preset defaults.
func NewPortraitConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{
		config: portraitDefaults(),
	}
}

// landscapeDefaults returns the 16:9 preset configuration.
func landscapeDefaults() Config {
	return Config{
		AspectRatio: "16:9",

		// Style
		BandColor: color.NRGBA{R: 0, G: 0, B: 0, A: 178}, // 70% black
		TextColor: color.White,
		FontSize:  24,

		// Encoding (medium quality preset)
		Codec:   "vp9",
		Quality: 32,
		FPS:     30,

		// Narration
		Overflow: "allow",
		Language: "pt-BR",
	}
}

// portraitDefaults returns the 9:16 preset configuration.
func portraitDefaults() Config {
	cfg := landscapeDefaults()
	cfg.AspectRatio = "9:16"
	// Narrower lines on a narrow canvas
	cfg.FontSize = 22
	return cfg
}

// Build returns the final Config, applying validation and constraints.
func (b *ConfigBuilder) Build() Config {
	cfg := b.config

	if cfg.FPS <= 0 {
		cfg.FPS = 30
	}
	if cfg.Quality < 0 {
		cfg.Quality = 0
	}
	if cfg.Quality > 63 {
		cfg.Quality = 63
	}
	// Both dimensions or neither
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = 0, 0
	}
	if cfg.Overflow != "cut" {
		cfg.Overflow = "allow"
	}

	return cfg
}

// WithAspectRatio sets the canvas ratio preset.
func (b *ConfigBuilder) WithAspectRatio(ratio string) *ConfigBuilder {
	b.config.AspectRatio = ratio
	return b
}

// WithSize sets an explicit canvas size.
func (b *ConfigBuilder) WithSize(width, height int) *ConfigBuilder {
	b.config.Width = width
	b.config.Height = height
	return b
}

// WithBandColor sets the subtitle band color.
func (b *ConfigBuilder) WithBandColor(c color.Color) *ConfigBuilder {
	b.config.BandColor = c
	return b
}

// WithTextColor sets the subtitle text color.
func (b *ConfigBuilder) WithTextColor(c color.Color) *ConfigBuilder {
	b.config.TextColor = c
	return b
}

// WithFontSize sets the subtitle font size.
func (b *ConfigBuilder) WithFontSize(size float64) *ConfigBuilder {
	b.config.FontSize = size
	return b
}

// WithFontPath sets a TrueType font file for subtitles.
func (b *ConfigBuilder) WithFontPath(path string) *ConfigBuilder {
	b.config.FontPath = path
	return b
}

// WithCodec sets the output codec (vp9 or h264).
func (b *ConfigBuilder) WithCodec(codec string) *ConfigBuilder {
	b.config.Codec = codec
	return b
}

// WithQuality sets the encoder quality (0-63, lower is better).
func (b *ConfigBuilder) WithQuality(quality int) *ConfigBuilder {
	b.config.Quality = quality
	return b
}

// WithBitrate sets a target bitrate in kbps.
func (b *ConfigBuilder) WithBitrate(kbps int) *ConfigBuilder {
	b.config.Bitrate = kbps
	return b
}

// WithFPS sets the output frame rate.
func (b *ConfigBuilder) WithFPS(fps float64) *ConfigBuilder {
	b.config.FPS = fps
	return b
}

// WithQualityPreset applies a quality preset (low, medium, high).
func (b *ConfigBuilder) WithQualityPreset(preset QualityPreset) *ConfigBuilder {
	settings := GetQualitySettings(preset)
	b.config.Quality = settings.Quality
	b.config.FPS = settings.FPS
	return b
}

// WithOverflow sets what happens to recorded narration longer than its scene.
func (b *ConfigBuilder) WithOverflow(policy string) *ConfigBuilder {
	b.config.Overflow = policy
	return b
}

// WithLanguage sets the speech fallback language.
func (b *ConfigBuilder) WithLanguage(lang string) *ConfigBuilder {
	b.config.Language = lang
	return b
}

// WithRealtime enables wall-clock pacing.
func (b *ConfigBuilder) WithRealtime(realtime bool) *ConfigBuilder {
	b.config.Realtime = realtime
	return b
}

// ToOrchestratorConfig converts Config to orchestrator.Config.
func (c Config) ToOrchestratorConfig() orchestrator.Config {
	return orchestrator.Config{
		AspectRatio: c.AspectRatio,
		Width:       c.Width,
		Height:      c.Height,

		// Style
		BandColor: colorToArray(c.BandColor),
		TextColor: colorToArray(c.TextColor),
		FontSize:  c.FontSize,
		FontPath:  c.FontPath,

		FPS: c.FPS,

		Codec:    c.Codec,
		Overflow: c.Overflow,
		Realtime: c.Realtime,
	}
}

// colorToArray converts color.Color to a non-premultiplied [4]uint8 array.
func colorToArray(c color.Color) [4]uint8 {
	if c == nil {
		return [4]uint8{}
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return [4]uint8{n.R, n.G, n.B, n.A}
}
