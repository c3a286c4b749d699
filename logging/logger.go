package logging

import (
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger provides structured logging capabilities for the mapper.
type Logger struct {
	*slog.Logger
	level slog.Level
}

// LogLevel represents different logging levels.
type LogLevel int

const (
	// LevelDebug provides detailed debugging information.
	LevelDebug LogLevel = iota
	// LevelInfo provides general informational messages.
	LevelInfo
	// LevelWarn provides warning messages for potentially problematic situations.
	LevelWarn
	// LevelError provides error messages for serious problems.
	LevelError
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ToSlogLevel converts LogLevel to slog.Level.
func (l LogLevel) ToSlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel parses a level name; unknown names fall back to INFO.
func ParseLevel(name string) LogLevel {
	switch name {
	case "DEBUG":
		return LevelDebug
	case "WARN":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

// LoggerConfig holds configuration for logger creation.
type LoggerConfig struct {
	// Level sets the minimum log level.
	Level LogLevel
	// Format specifies the output format ("json" or "text").
	Format string
	// Output specifies the output destination.
	Output io.Writer
	// IncludeSource adds source code information to log entries.
	IncludeSource bool
	// Component identifies the logging component.
	Component string
}

// NewLogger creates a new structured logger with the specified configuration.
func NewLogger(config LoggerConfig) *Logger {
	if config.Output == nil {
		config.Output = os.Stdout
	}

	if config.Format == "" {
		config.Format = "text"
	}

	if config.Component == "" {
		config.Component = "transit-network-mapper"
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{
		Level:     config.Level.ToSlogLevel(),
		AddSource: config.IncludeSource,
	}

	switch config.Format {
	case "json":
		handler = slog.NewJSONHandler(config.Output, opts)
	default:
		handler = slog.NewTextHandler(config.Output, opts)
	}

	// Add component context to all log entries
	logger := slog.New(handler).With("component", config.Component)

	return &Logger{
		Logger: logger,
		level:  config.Level.ToSlogLevel(),
	}
}

// NewDefaultLogger creates a logger with sensible defaults.
func NewDefaultLogger() *Logger {
	return NewLogger(LoggerConfig{
		Level:         LevelInfo,
		Format:        "text",
		Output:        os.Stdout,
		IncludeSource: false,
		Component:     "transit-network-mapper",
	})
}

// NewJSONLogger creates a logger that outputs JSON format.
func NewJSONLogger(level LogLevel) *Logger {
	return NewLogger(LoggerConfig{
		Level:         level,
		Format:        "json",
		Output:        os.Stdout,
		IncludeSource: false,
		Component:     "transit-network-mapper",
	})
}

// WithRoute returns a logger with transit route context.
func (l *Logger) WithRoute(lineID, routeID string) *Logger {
	return &Logger{
		l.With(
			"line", lineID,
			"route", routeID,
		),
		l.level,
	}
}

// WithMode returns a logger with schedule mode context.
func (l *Logger) WithMode(mode string) *Logger {
	return &Logger{
		l.With("mode", mode),
		l.level,
	}
}

// WithError returns a logger with error context.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{
		l.With("error", err.Error()),
		l.level,
	}
}

// WithDuration returns a logger with duration context.
func (l *Logger) WithDuration(operation string, duration time.Duration) *Logger {
	return &Logger{
		l.With(
			"operation", operation,
			"duration_ms", duration.Milliseconds(),
		),
		l.level,
	}
}

// MappingStart logs the start of a mapping batch.
func (l *Logger) MappingStart(lines, routes, networkLinks int) {
	l.Info("Starting schedule mapping",
		"lines", lines,
		"routes", routes,
		"network_links", networkLinks,
	)
}

// MappingComplete logs the completion of a mapping batch.
func (l *Logger) MappingComplete(duration time.Duration, mapped, unmappable, skipped int) {
	l.Info("Mapping completed",
		"duration_ms", duration.Milliseconds(),
		"routes_mapped", mapped,
		"routes_unmappable", unmappable,
		"routes_skipped", skipped,
	)
}

// RouteUnmappable logs a route that could not be mapped.
func (l *Logger) RouteUnmappable(lineID, routeID, reason string) {
	l.Warn("Route cannot be mapped",
		"line", lineID,
		"route", routeID,
		"reason", reason,
	)
}

// ArtificialLinkCreated logs the creation of an artificial link.
func (l *Logger) ArtificialLinkCreated(linkID, stopID string) {
	l.Debug("Created artificial link",
		"link", linkID,
		"stop", stopID,
	)
}

// FreespeedRaised logs a finalizer freespeed adjustment.
func (l *Logger) FreespeedRaised(linkID string, from, to float64) {
	l.Debug("Raised link freespeed",
		"link", linkID,
		"from", from,
		"to", to,
	)
}
