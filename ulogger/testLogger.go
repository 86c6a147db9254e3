package ulogger

import (
	"fmt"
	"strings"
	"sync"
)

// TestLogger discards everything. Use TestLogger{} wherever a Logger is required in tests.
type TestLogger struct{}

func (l TestLogger) LogLevel() int {
	return 0
}

func (l TestLogger) SetLogLevel(_ string) {}

func (l TestLogger) Debugf(_ string, _ ...interface{}) {}

func (l TestLogger) Infof(_ string, _ ...interface{}) {}

func (l TestLogger) Warnf(_ string, _ ...interface{}) {}

func (l TestLogger) Errorf(_ string, _ ...interface{}) {}

func (l TestLogger) Fatalf(_ string, _ ...interface{}) {}

func (l TestLogger) New(_ string, _ ...Option) Logger {
	return l
}

func (l TestLogger) Duplicate(_ ...Option) Logger {
	return l
}

// RecordingLogger keeps every formatted line in memory, prefixed with its level,
// so tests can assert on what was logged.
type RecordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func NewRecordingLogger() *RecordingLogger {
	return &RecordingLogger{}
}

func (l *RecordingLogger) record(level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.lines = append(l.lines, "["+level+"] "+fmt.Sprintf(format, args...))
}

// Lines returns a copy of everything logged so far.
func (l *RecordingLogger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	lines := make([]string, len(l.lines))
	copy(lines, l.lines)

	return lines
}

// Contains reports whether any recorded line contains substr.
func (l *RecordingLogger) Contains(substr string) bool {
	for _, line := range l.Lines() {
		if strings.Contains(line, substr) {
			return true
		}
	}

	return false
}

func (l *RecordingLogger) LogLevel() int {
	return 0
}

func (l *RecordingLogger) SetLogLevel(_ string) {}

func (l *RecordingLogger) Debugf(format string, args ...interface{}) {
	l.record("DEBUG", format, args...)
}

func (l *RecordingLogger) Infof(format string, args ...interface{}) {
	l.record("INFO", format, args...)
}

func (l *RecordingLogger) Warnf(format string, args ...interface{}) {
	l.record("WARN", format, args...)
}

func (l *RecordingLogger) Errorf(format string, args ...interface{}) {
	l.record("ERROR", format, args...)
}

func (l *RecordingLogger) Fatalf(format string, args ...interface{}) {
	l.record("FATAL", format, args...)
}

func (l *RecordingLogger) New(_ string, _ ...Option) Logger {
	return l
}

func (l *RecordingLogger) Duplicate(_ ...Option) Logger {
	return l
}
