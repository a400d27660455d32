package ports

import (
	"image"
)

// VideoEncoder abstracts video encoding operations.
type VideoEncoder interface {
	// Begin initializes the encoder with the specified dimensions and frame rate.
	Begin(width, height int, fps float64, opts EncoderOptions) error

	// EncodeFrame encodes a single frame at the specified timestamp.
	// Frames must arrive at the constant rate given to Begin.
	EncodeFrame(img image.Image, timestampMs int) error

	// End finalizes encoding and returns the container data.
	End() ([]byte, error)

	// Abort stops encoding and discards everything produced so far.
	Abort()

	// Format describes the container and codec this encoder produces.
	Format() VideoFormat
}

// EncoderOptions configures video encoding parameters.
type EncoderOptions struct {
	Bitrate int // Target bitrate in kbps
	Quality int // CRF value: 0-63 (lower is higher quality)
}

// VideoFormat describes an encoded video container.
type VideoFormat struct {
	Container string // "webm" or "mp4"; also the file extension
	Codec     string // "vp9" or "h264"
	MimeType  string
}

// Known output formats.
var (
	FormatWebM = VideoFormat{Container: "webm", Codec: "vp9", MimeType: "video/webm"}
	FormatMP4  = VideoFormat{Container: "mp4", Codec: "h264", MimeType: "video/mp4"}
)
