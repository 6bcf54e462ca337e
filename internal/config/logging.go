package config

import (
	"io"
	"log/slog"
	"strings"
)

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// SlogLevel maps the level to slog; unknown values mean info.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

// NewLogger builds a logger writing to w. verbose forces debug level.
func (l LoggingConfig) NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := l.Level.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// OutputFormat enumerates how parse results are printed.
type OutputFormat string

const (
	OutputJSON OutputFormat = "json"
	OutputYAML OutputFormat = "yaml"
	OutputNone OutputFormat = "none"
)

var (
	logLevels = map[string]LogLevel{
		"debug": LogLevelDebug, "info": LogLevelInfo,
		"warn": LogLevelWarn, "warning": LogLevelWarn, "error": LogLevelError,
	}
	logFormats    = map[string]LogFormat{"json": LogFormatJSON, "text": LogFormatText}
	outputFormats = map[string]OutputFormat{"json": OutputJSON, "yaml": OutputYAML, "yml": OutputYAML, "none": OutputNone}
)

func normalizeKey(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
