// Package wavfile wraps raw PCM in a RIFF/WAVE header and reads it back.
package wavfile

import (
	"encoding/binary"
	"errors"
	"time"
)

// ErrNotWAV is returned for data without a RIFF/WAVE header.
var ErrNotWAV = errors.New("wavfile: not a WAV file")

// Format describes linear PCM samples.
type Format struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
}

// DefaultFormat is the 24kHz mono 16-bit PCM the speech service returns.
var DefaultFormat = Format{SampleRate: 24000, Channels: 1, BitsPerSample: 16}

// Encode prepends a 44-byte WAV header to pcm.
func Encode(pcm []byte, f Format) []byte {
	if f.SampleRate <= 0 {
		f.SampleRate = DefaultFormat.SampleRate
	}
	if f.Channels <= 0 {
		f.Channels = 1
	}
	if f.BitsPerSample <= 0 {
		f.BitsPerSample = 16
	}
	blockAlign := f.Channels * f.BitsPerSample / 8

	out := make([]byte, 44+len(pcm))
	copy(out[0:], "RIFF")
	binary.LittleEndian.PutUint32(out[4:], uint32(36+len(pcm)))
	copy(out[8:], "WAVE")
	copy(out[12:], "fmt ")
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 1) // PCM
	binary.LittleEndian.PutUint16(out[22:], uint16(f.Channels))
	binary.LittleEndian.PutUint32(out[24:], uint32(f.SampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(f.SampleRate*blockAlign))
	binary.LittleEndian.PutUint16(out[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:], uint16(f.BitsPerSample))
	copy(out[36:], "data")
	binary.LittleEndian.PutUint32(out[40:], uint32(len(pcm)))
	copy(out[44:], pcm)
	return out
}

// Duration returns the play length of a WAV file by walking its chunks.
func Duration(data []byte) (time.Duration, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return 0, ErrNotWAV
	}

	var byteRate uint32
	pos := 12
	for pos+8 <= len(data) {
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4:]))
		body := pos + 8
		switch id {
		case "fmt ":
			if body+12 > len(data) {
				return 0, ErrNotWAV
			}
			byteRate = binary.LittleEndian.Uint32(data[body+8:])
		case "data":
			if byteRate == 0 {
				return 0, ErrNotWAV
			}
			// espeak writes 0x7fffffff sizes when streaming to stdout
			if body+size > len(data) || size < 0 {
				size = len(data) - body
			}
			return time.Duration(int64(size) * int64(time.Second) / int64(byteRate)), nil
		}
		pos = body + size + size%2
	}
	return 0, ErrNotWAV
}
