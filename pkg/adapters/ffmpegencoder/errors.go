package ffmpegencoder

import "errors"

var (
	// ErrNotInitialized is returned when encoder methods are called before Begin.
	ErrNotInitialized = errors.New("ffmpegencoder: encoder not initialized")

	// ErrAlreadyStarted is returned when Begin is called twice.
	ErrAlreadyStarted = errors.New("ffmpegencoder: encoder already started")

	// ErrInvalidSize is returned for non-positive or odd frame dimensions.
	ErrInvalidSize = errors.New("ffmpegencoder: frame dimensions must be positive and even")

	// ErrUnsupportedCodec is returned for codecs other than vp9 and h264.
	ErrUnsupportedCodec = errors.New("ffmpegencoder: unsupported codec")
)
