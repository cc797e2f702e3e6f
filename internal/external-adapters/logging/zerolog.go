// Package logging adapts zerolog to the domain Logger interface.
package logging

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ochairo/setup-sonar-scanner/internal/domain/interfaces"
)

// Output formats
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Config selects the level, format and destination of log output
type Config struct {
	Level  string
	Format string
	Out    io.Writer
	// RunnerDebug forces debug level, set when the runner has step debugging enabled
	RunnerDebug bool
}

// ZerologLogger implements interfaces.Logger on top of zerolog
type ZerologLogger struct {
	logger zerolog.Logger
}

// NewZerologLogger creates a logger from cfg. Unknown levels fall back to info.
func NewZerologLogger(cfg Config) *ZerologLogger {
	lvl := ParseLevel(cfg.Level)
	if cfg.RunnerDebug {
		lvl = zerolog.DebugLevel
	}

	var out io.Writer = cfg.Out
	if !strings.EqualFold(cfg.Format, FormatJSON) {
		out = zerolog.ConsoleWriter{
			Out:        cfg.Out,
			TimeFormat: time.RFC3339,
		}
	}

	return &ZerologLogger{
		logger: zerolog.New(out).Level(lvl).With().Timestamp().Logger(),
	}
}

// ParseLevel parses a level name, defaulting to info
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// Level returns the effective minimum level
func (l *ZerologLogger) Level() zerolog.Level {
	return l.logger.GetLevel()
}

// Debug logs debug-level messages
func (l *ZerologLogger) Debug(msg string, fields ...interfaces.Field) {
	withFields(l.logger.Debug(), fields).Msg(msg)
}

// Info logs informational messages
func (l *ZerologLogger) Info(msg string, fields ...interfaces.Field) {
	withFields(l.logger.Info(), fields).Msg(msg)
}

// Warn logs warning messages
func (l *ZerologLogger) Warn(msg string, fields ...interfaces.Field) {
	withFields(l.logger.Warn(), fields).Msg(msg)
}

// Error logs error messages
func (l *ZerologLogger) Error(msg string, fields ...interfaces.Field) {
	withFields(l.logger.Error(), fields).Msg(msg)
}

func withFields(event *zerolog.Event, fields []interfaces.Field) *zerolog.Event {
	for _, f := range fields {
		if err, ok := f.Value.(error); ok {
			event = event.AnErr(f.Key, err)
			continue
		}
		event = event.Interface(f.Key, f.Value)
	}
	return event
}
