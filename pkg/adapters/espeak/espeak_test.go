package espeak

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/user/storyreel/pkg/ports"
	"github.com/user/storyreel/pkg/wavfile"
)

func TestArgs(t *testing.T) {
	tests := []struct {
		name string
		opts ports.SpeechOptions
		want []string
	}{
		{"default", ports.SpeechOptions{}, []string{"--stdout", "-v", "pt-br", "--stdin"}},
		{"language", ports.SpeechOptions{Language: "pt-BR", WordsPerMinute: 150}, []string{"--stdout", "-v", "pt-br", "-s", "150", "--stdin"}},
		{"voice wins", ports.SpeechOptions{Language: "pt-BR", Voice: "pt+f3"}, []string{"--stdout", "-v", "pt+f3", "--stdin"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Args(tt.opts); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Args() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSynthesize_EmptyText(t *testing.T) {
	s := New("")
	if _, err := s.Synthesize(context.Background(), "   ", ports.SpeechOptions{}); !errors.Is(err, ErrEmptyText) {
		t.Errorf("expected ErrEmptyText, got %v", err)
	}
}

func TestSynthesize_MissingBinary(t *testing.T) {
	s := New("/nonexistent/espeak-ng")
	if _, err := s.Synthesize(context.Background(), "olá", ports.SpeechOptions{}); err == nil {
		t.Error("expected error for missing binary")
	}
}

func TestSynthesize(t *testing.T) {
	if !IsAvailable() {
		t.Skip("espeak-ng not available")
	}

	s := New("")
	data, err := s.Synthesize(context.Background(), "Olá, mundo.", ports.SpeechOptions{Language: "pt-BR"})
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	d, err := wavfile.Duration(data)
	if err != nil {
		t.Fatalf("output is not WAV: %v", err)
	}
	if d <= 0 {
		t.Errorf("expected positive duration, got %v", d)
	}
}
