package mocks

import (
	"strings"
	"sync"
)

// LogEntry is one recorded log call.
type LogEntry struct {
	Level   string
	Message string
}

// MockLogger implements executor.Logger and records every entry.
type MockLogger struct {
	mu      sync.Mutex
	Entries []LogEntry
}

func (l *MockLogger) Log(level, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Entries = append(l.Entries, LogEntry{Level: level, Message: message})
}

// Messages returns the logged messages at level, or all messages when level is "".
func (l *MockLogger) Messages(level string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	for _, e := range l.Entries {
		if level == "" || e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}

// HasPrefix reports whether any message starts with prefix.
func (l *MockLogger) HasPrefix(prefix string) bool {
	for _, msg := range l.Messages("") {
		if strings.HasPrefix(msg, prefix) {
			return true
		}
	}
	return false
}

// MockConsole implements executor.Console and records each notice as
// "kind: text".
type MockConsole struct {
	mu    sync.Mutex
	Lines []string
}

func (c *MockConsole) Warn(headline, detail string) { c.record("warn", headline+" - "+detail) }
func (c *MockConsole) Dim(msg string)               { c.record("dim", msg) }
func (c *MockConsole) DimError(line string)         { c.record("error", line) }
func (c *MockConsole) Step(description string)      { c.record("step", description) }

func (c *MockConsole) record(kind, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Lines = append(c.Lines, kind+": "+text)
}

// Recorded returns a snapshot of recorded notices.
func (c *MockConsole) Recorded() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.Lines...)
}
