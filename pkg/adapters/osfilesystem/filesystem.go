// Package osfilesystem provides a filesystem implementation using the os package.
package osfilesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/user/storyreel/pkg/ports"
)

// FileSystem implements ports.FileSystem on the local disk.
// Writes go through a temporary sibling file so readers never see a partial
// render or gallery asset.
type FileSystem struct {
	root string
}

// New creates a FileSystem that uses paths as given.
func New() *FileSystem {
	return &FileSystem{}
}

// NewRooted creates a FileSystem that resolves relative paths under root.
// A leading "~/" is expanded to the user's home directory.
func NewRooted(root string) *FileSystem {
	return &FileSystem{root: ExpandHome(root)}
}

// ExpandHome replaces a leading "~/" with the home directory.
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

func (f *FileSystem) resolve(path string) string {
	path = ExpandHome(path)
	if f.root == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(f.root, path)
}

// ReadFile reads the entire contents of a file.
func (f *FileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(f.resolve(path))
}

// WriteFile writes data atomically, creating parent directories.
func (f *FileSystem) WriteFile(path string, data []byte) error {
	path = f.resolve(path)
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

// MkdirAll creates a directory and all parent directories.
func (f *FileSystem) MkdirAll(path string) error {
	return os.MkdirAll(f.resolve(path), 0755)
}

// Exists checks if a file or directory exists.
func (f *FileSystem) Exists(path string) (bool, error) {
	_, err := os.Stat(f.resolve(path))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Remove deletes a file or empty directory.
func (f *FileSystem) Remove(path string) error {
	return os.Remove(f.resolve(path))
}

// Ensure FileSystem implements ports.FileSystem
var _ ports.FileSystem = (*FileSystem)(nil)
