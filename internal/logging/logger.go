// Package logging provides structured logging for vrclog using zerolog.
// The TUI owns the terminal, so logs default to a file and stay disabled
// unless debugging is requested.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the process-wide logger
var Logger = zerolog.Nop()

// Config holds logging configuration
type Config struct {
	// Level is the minimum log level (trace, debug, info, warn, error, disabled)
	Level string

	// Format is the output format (json, console)
	Format string

	// Output is where logs are written
	Output io.Writer
}

// Init configures the global logger
func Init(cfg Config) {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))
	zerolog.TimeFieldFormat = time.RFC3339

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: "15:04:05",
			NoColor:    true,
		}
	}

	Logger = zerolog.New(output).With().Timestamp().Logger()
}

// InitFile sends console-formatted logs to a file, creating it on demand.
// The returned closer is the file handle.
func InitFile(path, level string) (io.Closer, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	Init(Config{Level: level, Format: "console", Output: f})
	return f, nil
}

// Disable silences all logging
func Disable() {
	Logger = zerolog.Nop()
	zerolog.SetGlobalLevel(zerolog.Disabled)
}

// Component creates a child logger tagged with a component field
func Component(name string) zerolog.Logger {
	return Logger.With().Str("component", name).Logger()
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
