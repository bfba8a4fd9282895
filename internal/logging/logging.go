// Package logging provides the durable log sink used by the execution engine.
// Every command line, streamed output line and failure is appended to a log
// file as one line-atomic event.
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Cyclone1070/rig/internal/config"
	"github.com/rs/zerolog"
)

const timeFormat = "2006-01-02 15:04:05"

// Sink is an append-only, line-oriented logger backed by zerolog.
// It is safe for concurrent use.
type Sink struct {
	logger zerolog.Logger
	file   *os.File
	path   string
}

// New creates a Sink writing to w at the given minimum level
// ("debug", "info", "warn" or "error").
func New(w io.Writer, level string) *Sink {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.DebugLevel
	}
	output := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    true,
		TimeFormat: timeFormat,
		FormatLevel: func(i any) string {
			return fmt.Sprintf("[%s]", strings.ToUpper(fmt.Sprint(i)))
		},
	}
	logger := zerolog.New(zerolog.SyncWriter(output)).Level(lvl).With().Timestamp().Logger()
	return &Sink{logger: logger}
}

// Open creates a Sink appending to the configured log file. When the file
// cannot be opened it falls back to cfg.FallbackFile, then to setup.log in the
// temp directory.
func Open(cfg config.LogConfig) (*Sink, error) {
	fs := config.ConfigFileReader{}
	candidates := []string{
		config.ExpandHome(fs, cfg.File),
		config.ExpandHome(fs, cfg.FallbackFile),
		filepath.Join(os.TempDir(), "setup.log"),
	}

	var errs []error
	for _, path := range candidates {
		if strings.TrimSpace(path) == "" {
			continue
		}
		file, err := openAppend(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		sink := New(file, cfg.Level)
		sink.file = file
		sink.path = path
		return sink, nil
	}
	return nil, fmt.Errorf("failed to open log file: %w", errors.Join(errs...))
}

func openAppend(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}

// Log records message at level. Unknown levels are logged as info.
func (s *Sink) Log(level, message string) {
	var event *zerolog.Event
	switch strings.ToLower(level) {
	case "debug":
		event = s.logger.Debug()
	case "warn", "warning":
		event = s.logger.Warn()
	case "error":
		event = s.logger.Error()
	default:
		event = s.logger.Info()
	}
	event.Msg(message)
}

// Path returns the file the sink writes to, or "" for writer-backed sinks.
func (s *Sink) Path() string {
	return s.path
}

// Close closes the underlying log file, if any.
func (s *Sink) Close() error {
	if s.file == nil {
		return nil
	}
	return s.file.Close()
}

// Nop returns a Sink that discards everything.
func Nop() *Sink {
	return &Sink{logger: zerolog.Nop()}
}
