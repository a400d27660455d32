// Package codecdetect reads video codec, dimensions and duration from MP4
// headers without decoding any samples.
package codecdetect

import (
	"bytes"
	"fmt"
	"os"

	"github.com/Eyevinn/mp4ff/mp4"
)

// Codec represents a video codec type.
type Codec string

const (
	CodecH264    Codec = "h264"
	CodecHEVC    Codec = "hevc"
	CodecAV1     Codec = "av1"
	CodecVP9     Codec = "vp9"
	CodecUnknown Codec = "unknown"
)

// Info describes the first video track of an MP4 file.
type Info struct {
	Codec      Codec
	Width      int
	Height     int
	DurationMs int
}

// ProbeFile reads the video track info of an MP4 file.
func ProbeFile(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	mp4File, err := mp4.DecodeFile(f)
	if err != nil {
		return Info{}, fmt.Errorf("decode mp4: %w", err)
	}
	return probeMP4File(mp4File)
}

// ProbeBytes reads the video track info from MP4 data bytes.
func ProbeBytes(data []byte) (Info, error) {
	mp4File, err := mp4.DecodeFile(bytes.NewReader(data))
	if err != nil {
		return Info{}, fmt.Errorf("decode mp4: %w", err)
	}
	return probeMP4File(mp4File)
}

func probeMP4File(mp4File *mp4.File) (Info, error) {
	moov := mp4File.Moov
	if moov == nil && mp4File.Init != nil {
		moov = mp4File.Init.Moov
	}
	if moov == nil {
		return Info{}, fmt.Errorf("no moov box")
	}

	for _, trak := range moov.Traks {
		entry, codec := videoSampleEntry(trak)
		if entry == nil {
			continue
		}
		info := Info{Codec: codec, Width: int(entry.Width), Height: int(entry.Height)}
		if mvhd := moov.Mvhd; mvhd != nil && mvhd.Timescale > 0 {
			info.DurationMs = int(mvhd.Duration * 1000 / uint64(mvhd.Timescale))
		}
		if info.DurationMs == 0 && trak.Mdia.Mdhd != nil && trak.Mdia.Mdhd.Timescale > 0 {
			info.DurationMs = int(trak.Mdia.Mdhd.Duration * 1000 / uint64(trak.Mdia.Mdhd.Timescale))
		}
		if info.Width == 0 || info.Height == 0 {
			return Info{}, fmt.Errorf("video track has no dimensions")
		}
		return info, nil
	}
	return Info{}, fmt.Errorf("no video track found")
}

func videoSampleEntry(trak *mp4.TrakBox) (*mp4.VisualSampleEntryBox, Codec) {
	if trak.Mdia == nil || trak.Mdia.Hdlr == nil || trak.Mdia.Hdlr.HandlerType != "vide" {
		return nil, CodecUnknown
	}
	if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil || trak.Mdia.Minf.Stbl.Stsd == nil {
		return nil, CodecUnknown
	}
	for _, child := range trak.Mdia.Minf.Stbl.Stsd.Children {
		if entry, ok := child.(*mp4.VisualSampleEntryBox); ok {
			return entry, codecFromType(child.Type())
		}
	}
	return nil, CodecUnknown
}

func codecFromType(boxType string) Codec {
	switch boxType {
	case "avc1", "avc3":
		return CodecH264
	case "hvc1", "hev1":
		return CodecHEVC
	case "av01":
		return CodecAV1
	case "vp09":
		return CodecVP9
	}
	return CodecUnknown
}
