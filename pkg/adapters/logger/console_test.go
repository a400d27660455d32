package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/user/storyreel/pkg/ports"
)

func TestConsoleLogger_Levels(t *testing.T) {
	var out, errOut bytes.Buffer
	log := NewWriter(ports.LevelInfo, &out, &errOut)

	log.Debug("hidden %d", 1)
	log.Info("rendering %d scenes", 3)
	log.Warn("slow media")
	log.Error("failed: %s", "boom")

	if strings.Contains(out.String(), "hidden") {
		t.Error("debug message should be filtered at info level")
	}
	if !strings.Contains(out.String(), "rendering 3 scenes") {
		t.Errorf("expected info on stdout, got %q", out.String())
	}
	if strings.Contains(out.String(), "slow media") {
		t.Error("warnings should not go to stdout")
	}
	if !strings.Contains(errOut.String(), "slow media") || !strings.Contains(errOut.String(), "failed: boom") {
		t.Errorf("expected warn and error on stderr, got %q", errOut.String())
	}
}

func TestConsoleLogger_WithComponent(t *testing.T) {
	var out bytes.Buffer
	log := NewWriter(ports.LevelDebug, &out, &out)

	log.WithComponent("record").Debug("started")
	log.Info("plain")

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0] != "[record] started" {
		t.Errorf("unexpected component line %q", lines[0])
	}
	if lines[1] != "plain" {
		t.Errorf("parent logger should keep no component, got %q", lines[1])
	}
}

func TestNew(t *testing.T) {
	if _, ok := New(ports.LevelInfo, true).(*NoopLogger); !ok {
		t.Error("expected noop logger when quiet")
	}
	if _, ok := New(ports.LevelQuiet, false).(*NoopLogger); !ok {
		t.Error("expected noop logger at quiet level")
	}
	if _, ok := New(ports.LevelWarn, false).(*ConsoleLogger); !ok {
		t.Error("expected console logger")
	}
}
