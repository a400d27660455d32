// Package espeak synthesizes speech on the local device with espeak-ng.
package espeak

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/user/storyreel/pkg/ports"
	"github.com/user/storyreel/pkg/wavfile"
)

var (
	// ErrNotFound is returned when neither espeak-ng nor espeak is installed.
	ErrNotFound = errors.New("espeak: espeak-ng not found in PATH")

	// ErrEmptyText is returned when there is nothing to say.
	ErrEmptyText = errors.New("espeak: empty text")
)

// Synthesizer implements ports.SpeechSynthesizer.
type Synthesizer struct {
	path string
}

// New creates a synthesizer. path may be empty to search PATH.
func New(path string) *Synthesizer {
	return &Synthesizer{path: path}
}

// Find searches for espeak-ng, then espeak.
func Find() (string, error) {
	for _, name := range []string{"espeak-ng", "espeak"} {
		if p, err := exec.LookPath(name); err == nil {
			return p, nil
		}
	}
	return "", ErrNotFound
}

// IsAvailable checks if espeak-ng is installed.
func IsAvailable() bool {
	_, err := Find()
	return err == nil
}

// Synthesize returns WAV audio for text.
func (s *Synthesizer) Synthesize(ctx context.Context, text string, opts ports.SpeechOptions) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	path := s.path
	if path == "" {
		p, err := Find()
		if err != nil {
			return nil, err
		}
		path = p
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, Args(opts)...)
	cmd.Stdin = strings.NewReader(text)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("espeak failed: %w\nstderr: %s", err, stderr.String())
	}

	data := stdout.Bytes()
	if _, err := wavfile.Duration(data); err != nil {
		return nil, fmt.Errorf("espeak output: %w", err)
	}
	return data, nil
}

// Args returns the espeak command line for opts. Text is read from stdin.
func Args(opts ports.SpeechOptions) []string {
	voice := opts.Voice
	if voice == "" {
		voice = strings.ToLower(opts.Language)
	}
	if voice == "" {
		voice = "pt-br"
	}
	args := []string{"--stdout", "-v", voice}
	if opts.WordsPerMinute > 0 {
		args = append(args, "-s", strconv.Itoa(opts.WordsPerMinute))
	}
	return append(args, "--stdin")
}

// Ensure Synthesizer implements ports.SpeechSynthesizer
var _ ports.SpeechSynthesizer = (*Synthesizer)(nil)
