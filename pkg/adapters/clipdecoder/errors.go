package clipdecoder

import "errors"

var (
	// ErrNoVideoStream is returned when a file has no decodable video stream.
	ErrNoVideoStream = errors.New("clipdecoder: no video stream")

	// ErrClosed is returned by Next after Close.
	ErrClosed = errors.New("clipdecoder: stream closed")
)
