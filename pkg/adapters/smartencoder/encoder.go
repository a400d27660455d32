// Package smartencoder provides a video encoder that selects the best
// available codec with fallback support.
package smartencoder

import (
	"errors"

	"github.com/user/storyreel/pkg/adapters/ffmpegbin"
	"github.com/user/storyreel/pkg/adapters/ffmpegencoder"
	"github.com/user/storyreel/pkg/ports"
)

// Codec is re-exported so callers need only this package.
type Codec = ffmpegencoder.Codec

const (
	CodecVP9  = ffmpegencoder.CodecVP9
	CodecH264 = ffmpegencoder.CodecH264
)

// Info contains information about the selected encoder.
type Info struct {
	// Codec is the actual codec being used.
	Codec Codec
	// Library is the ffmpeg encoder library, e.g. "libvpx-vp9".
	Library string
	// RequestedCodec is the codec that was originally requested.
	RequestedCodec Codec
	// FallbackUsed indicates whether a fallback occurred.
	FallbackUsed bool
}

// Options configures the smart encoder behavior.
type Options struct {
	// FFmpegPath is an optional custom path to the ffmpeg binary.
	FFmpegPath string
	// DisableFallback makes New fail instead of switching codecs.
	DisableFallback bool
	// Logger is used to log fallback warnings.
	Logger ports.Logger
	// HasEncoder overrides the ffmpeg encoder probe. Used by tests.
	HasEncoder func(library string) bool
}

var (
	// ErrNoEncoderAvailable is returned when no encoder is available.
	ErrNoEncoderAvailable = errors.New("smartencoder: no encoder available")
)

var libraries = map[Codec]string{
	CodecVP9:  "libvpx-vp9",
	CodecH264: "libx264",
}

// Select picks the codec to use without creating an encoder.
//
// The requested codec wins when ffmpeg has its library. Otherwise the other
// codec is used unless DisableFallback is set.
func Select(preferred Codec, opts Options) (Info, error) {
	if opts.FFmpegPath != "" {
		ffmpegbin.SetFFmpegPath(opts.FFmpegPath)
	}
	if preferred == "" {
		preferred = CodecVP9
	}
	has := opts.HasEncoder
	if has == nil {
		if !ffmpegbin.IsAvailable() {
			return Info{}, ErrNoEncoderAvailable
		}
		has = ffmpegbin.HasEncoder
	}

	info := Info{Codec: preferred, Library: libraries[preferred], RequestedCodec: preferred}
	if has(info.Library) {
		return info, nil
	}
	if opts.DisableFallback {
		return Info{}, ErrNoEncoderAvailable
	}

	alt := CodecH264
	if preferred == CodecH264 {
		alt = CodecVP9
	}
	if !has(libraries[alt]) {
		return Info{}, ErrNoEncoderAvailable
	}

	if opts.Logger != nil {
		opts.Logger.Warn("%s encoder not available, falling back to %s", preferred, alt)
	}
	return Info{Codec: alt, Library: libraries[alt], RequestedCodec: preferred, FallbackUsed: true}, nil
}

// New creates a new video encoder with automatic codec selection.
func New(preferred Codec, opts Options) (ports.VideoEncoder, Info, error) {
	info, err := Select(preferred, opts)
	if err != nil {
		return nil, Info{}, err
	}
	enc, err := ffmpegencoder.New(info.Codec)
	if err != nil {
		return nil, Info{}, err
	}
	return enc, info, nil
}

// Factory selects a codec once and returns a constructor for fresh encoders.
func Factory(preferred Codec, opts Options) (func() (ports.VideoEncoder, error), Info, error) {
	info, err := Select(preferred, opts)
	if err != nil {
		return nil, Info{}, err
	}
	return func() (ports.VideoEncoder, error) {
		return ffmpegencoder.New(info.Codec)
	}, info, nil
}

// IsVP9Available checks if ffmpeg can encode VP9.
func IsVP9Available() bool {
	return ffmpegbin.IsAvailable() && ffmpegbin.HasEncoder(libraries[CodecVP9])
}

// IsH264Available checks if ffmpeg can encode H.264.
func IsH264Available() bool {
	return ffmpegbin.IsAvailable() && ffmpegbin.HasEncoder(libraries[CodecH264])
}
