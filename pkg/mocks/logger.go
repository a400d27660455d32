package mocks

import (
	"fmt"
	"sync"

	"github.com/user/storyreel/pkg/ports"
)

// LogEntry is one recorded log call.
type LogEntry struct {
	Level     ports.LogLevel
	Component string
	Message   string
}

// Logger is a ports.Logger that records formatted messages.
type Logger struct {
	component string
	shared    *logEntries
}

type logEntries struct {
	mu      sync.Mutex
	entries []LogEntry
}

// NewLogger creates a recording logger.
func NewLogger() *Logger {
	return &Logger{shared: &logEntries{}}
}

func (l *Logger) record(level ports.LogLevel, msg string, args []interface{}) {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	l.shared.mu.Lock()
	defer l.shared.mu.Unlock()
	l.shared.entries = append(l.shared.entries, LogEntry{Level: level, Component: l.component, Message: msg})
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.record(ports.LevelDebug, msg, args) }
func (l *Logger) Info(msg string, args ...interface{})  { l.record(ports.LevelInfo, msg, args) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.record(ports.LevelWarn, msg, args) }
func (l *Logger) Error(msg string, args ...interface{}) { l.record(ports.LevelError, msg, args) }

func (l *Logger) WithComponent(component string) ports.Logger {
	return &Logger{component: component, shared: l.shared}
}

// Entries returns recorded entries at or above level.
func (l *Logger) Entries(level ports.LogLevel) []LogEntry {
	l.shared.mu.Lock()
	defer l.shared.mu.Unlock()
	var out []LogEntry
	for _, e := range l.shared.entries {
		if e.Level >= level {
			out = append(out, e)
		}
	}
	return out
}

var _ ports.Logger = (*Logger)(nil)
