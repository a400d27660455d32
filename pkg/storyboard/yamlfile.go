package storyboard

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileVersion is written to exported storyboard files.
const FileVersion = "1"

// File is the on-disk YAML form of a storyboard.
type File struct {
	Version string  `yaml:"version"`
	Scenes  []Scene `yaml:"scenes"`
}

// Marshal encodes a storyboard as YAML.
func Marshal(sb *Storyboard) ([]byte, error) {
	return yaml.Marshal(File{Version: FileVersion, Scenes: sb.Snapshot()})
}

// Unmarshal decodes and validates a YAML storyboard.
// Scenes without an ID get a fresh one; durations are not clamped.
func Unmarshal(data []byte) (*Storyboard, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse storyboard: %w", err)
	}
	if f.Version != "" && f.Version != FileVersion {
		return nil, fmt.Errorf("storyboard: unsupported file version %q", f.Version)
	}

	sb := &Storyboard{}
	for i, s := range f.Scenes {
		if s.ID == "" {
			s.ID = NewScene().ID
		}
		if err := sb.Append(s); err != nil {
			return nil, fmt.Errorf("scene %d: %w", i+1, err)
		}
	}
	return sb, nil
}

// WriteFile writes a storyboard to a YAML file.
func WriteFile(sb *Storyboard, path string) error {
	data, err := Marshal(sb)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadFile reads a storyboard from a YAML file.
func ReadFile(path string) (*Storyboard, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data)
}
