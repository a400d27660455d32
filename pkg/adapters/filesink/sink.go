// Package filesink provides a file-based debug sink implementation.
package filesink

import (
	"fmt"
	"image"
	"path/filepath"

	"github.com/user/storyreel/pkg/ports"
)

// Sink saves debug output to files.
type Sink struct {
	baseDir  string
	fs       ports.FileSystem
	renderer ports.Renderer
}

// New creates a new FileSink.
func New(baseDir string, fs ports.FileSystem, renderer ports.Renderer) *Sink {
	return &Sink{
		baseDir:  baseDir,
		fs:       fs,
		renderer: renderer,
	}
}

// Enabled returns true as this sink saves output.
func (s *Sink) Enabled() bool {
	return true
}

// SaveLayoutJSON saves the layout calculation result as JSON.
func (s *Sink) SaveLayoutJSON(data []byte) error {
	path := filepath.Join(s.baseDir, "layout.json")
	return s.fs.WriteFile(path, data)
}

// SaveTimelineJSON saves the per-scene render timeline as JSON.
func (s *Sink) SaveTimelineJSON(data []byte) error {
	path := filepath.Join(s.baseDir, "timeline.json")
	return s.fs.WriteFile(path, data)
}

// SaveSceneFrame saves the first composed frame of a scene as PNG.
func (s *Sink) SaveSceneFrame(index int, img image.Image) error {
	dir := filepath.Join(s.baseDir, "scenes")
	if err := s.fs.MkdirAll(dir); err != nil {
		return err
	}
	data, err := s.renderer.EncodeImage(img, ports.FormatPNG, 0)
	if err != nil {
		return fmt.Errorf("encode scene frame: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("scene-%03d.png", index+1))
	return s.fs.WriteFile(path, data)
}

// Ensure Sink implements ports.DebugSink
var _ ports.DebugSink = (*Sink)(nil)
