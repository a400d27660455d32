// Package ffmpegbin locates the ffmpeg and ffprobe executables shared by the
// encoder, clip decoder and narration mixer.
package ffmpegbin

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

var (
	// ErrFFmpegNotFound is returned when ffmpeg is not installed.
	ErrFFmpegNotFound = errors.New("ffmpegbin: ffmpeg not found in PATH")

	// ErrFFprobeNotFound is returned when ffprobe is not installed.
	ErrFFprobeNotFound = errors.New("ffmpegbin: ffprobe not found in PATH")
)

var (
	mu         sync.RWMutex
	customPath string

	encodersOnce sync.Once
	encoders     string
)

// SetFFmpegPath sets a custom path to the ffmpeg binary.
// ffprobe is then looked up next to it.
func SetFFmpegPath(path string) {
	mu.Lock()
	defer mu.Unlock()
	customPath = path
}

// FindFFmpeg searches for ffmpeg.
// Priority: 1) SetFFmpegPath, 2) FFMPEG_PATH env, 3) PATH, 4) common locations
func FindFFmpeg() (string, error) {
	mu.RLock()
	custom := customPath
	mu.RUnlock()

	if custom != "" {
		if _, err := os.Stat(custom); err == nil {
			return custom, nil
		}
		return "", fmt.Errorf("%w: custom path %s not found", ErrFFmpegNotFound, custom)
	}

	if envPath := os.Getenv("FFMPEG_PATH"); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
		return "", fmt.Errorf("%w: FFMPEG_PATH %s not found", ErrFFmpegNotFound, envPath)
	}

	if path, ok := lookup("ffmpeg"); ok {
		return path, nil
	}
	return "", ErrFFmpegNotFound
}

// FindFFprobe searches for ffprobe, preferring the directory ffmpeg lives in.
func FindFFprobe() (string, error) {
	if ffmpeg, err := FindFFmpeg(); err == nil {
		sibling := filepath.Join(filepath.Dir(ffmpeg), exeName("ffprobe"))
		if _, err := os.Stat(sibling); err == nil {
			return sibling, nil
		}
	}
	if path, ok := lookup("ffprobe"); ok {
		return path, nil
	}
	return "", ErrFFprobeNotFound
}

// IsAvailable checks if ffmpeg is available on the system.
func IsAvailable() bool {
	_, err := FindFFmpeg()
	return err == nil
}

// HasEncoder reports whether the installed ffmpeg was built with the named
// encoder, e.g. "libvpx-vp9". The encoder list is read once per process.
func HasEncoder(name string) bool {
	encodersOnce.Do(func() {
		path, err := FindFFmpeg()
		if err != nil {
			return
		}
		var out bytes.Buffer
		cmd := exec.Command(path, "-hide_banner", "-encoders")
		cmd.Stdout = &out
		if cmd.Run() == nil {
			encoders = out.String()
		}
	})
	for _, line := range strings.Split(encoders, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == name {
			return true
		}
	}
	return false
}

func exeName(name string) string {
	if runtime.GOOS == "windows" {
		return name + ".exe"
	}
	return name
}

func lookup(name string) (string, bool) {
	if path, err := exec.LookPath(exeName(name)); err == nil {
		return path, true
	}

	var commonDirs []string
	switch runtime.GOOS {
	case "windows":
		commonDirs = []string{
			`C:\ffmpeg\bin`,
			`C:\Program Files\ffmpeg\bin`,
			`C:\Program Files (x86)\ffmpeg\bin`,
		}
	case "darwin":
		commonDirs = []string{"/opt/homebrew/bin", "/usr/local/bin", "/usr/bin"}
	default:
		commonDirs = []string{"/usr/bin", "/usr/local/bin", "/opt/homebrew/bin", "/snap/bin"}
	}

	for _, dir := range commonDirs {
		p := filepath.Join(dir, exeName(name))
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}
