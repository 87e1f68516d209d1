// Package logging builds the structured logger used across signupd.
//
// Example usage:
//
//	logger, err := logging.New(logging.Config{Level: "info", Format: "json"})
//	if err != nil {
//		return err
//	}
//	defer logger.Close()
//	logger.Info("signup accepted", "activity", "Chess Club", "email", email)
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"
)

const (
	defaultLevel  = "info"
	defaultFormat = "json"
	defaultOutput = "stderr"
)

var (
	validLevels  = []string{"debug", "info", "warn", "error"}
	validFormats = []string{"json", "text"}
)

// Config holds the configuration for the logger.
type Config struct {
	// Level sets the minimum log level. Valid values: debug, info, warn, error
	Level string `yaml:"level" env:"SIGNUPD_LOG_LEVEL"`
	// Format sets the output format. Valid values: json, text
	Format string `yaml:"format" env:"SIGNUPD_LOG_FORMAT"`
	// Output is stdout, stderr, or a file path to append to.
	Output string `yaml:"output" env:"SIGNUPD_LOG_OUTPUT"`
	// AddSource adds source code position to log records
	AddSource bool `yaml:"add_source" env:"SIGNUPD_LOG_ADD_SOURCE"`
}

// Logger is a slog.Logger whose level can be changed at runtime.
type Logger struct {
	*slog.Logger
	level  *slog.LevelVar
	closer io.Closer
}

// New creates a logger writing to the configured output.
func New(cfg Config) (*Logger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid logging config: %w", err)
	}
	cfg.SetDefaults()

	w, closer, err := openOutput(cfg.Output)
	if err != nil {
		return nil, err
	}
	l, err := NewWithWriter(cfg, w)
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, err
	}
	l.closer = closer
	return l, nil
}

// NewWithWriter creates a logger writing to w, ignoring cfg.Output.
func NewWithWriter(cfg Config, w io.Writer) (*Logger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid logging config: %w", err)
	}
	cfg.SetDefaults()

	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	levelVar := &slog.LevelVar{}
	levelVar.Set(level)

	opts := &slog.HandlerOptions{
		Level:     levelVar,
		AddSource: cfg.AddSource,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.String(slog.TimeKey, a.Value.Time().Format(time.RFC3339))
			}
			return a
		},
	}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	case "text":
		handler = slog.NewTextHandler(w, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
		level:  levelVar,
	}, nil
}

// SetLevel changes the minimum level at runtime.
func (l *Logger) SetLevel(level slog.Level) {
	l.level.Set(level)
}

// Close releases the log file, if one was opened.
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// Validate checks the level and format are supported. Empty values are allowed.
func (c *Config) Validate() error {
	if c.Level != "" && !slices.Contains(validLevels, strings.ToLower(c.Level)) {
		return fmt.Errorf("level must be one of: %s", strings.Join(validLevels, ", "))
	}
	if c.Format != "" && !slices.Contains(validFormats, c.Format) {
		return fmt.Errorf("format must be one of: %s", strings.Join(validFormats, ", "))
	}
	return nil
}

// SetDefaults fills in unset fields.
func (c *Config) SetDefaults() {
	if c.Level == "" {
		c.Level = defaultLevel
	}
	if c.Format == "" {
		c.Format = defaultFormat
	}
	if c.Output == "" {
		c.Output = defaultOutput
	}
}

// ParseLevel converts a level name to a slog.Level. Case insensitive.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown level: %s", level)
	}
}

// openOutput returns the writer for output and, for files, its closer.
func openOutput(output string) (io.Writer, io.Closer, error) {
	switch output {
	case "stdout":
		return os.Stdout, nil, nil
	case "stderr":
		return os.Stderr, nil, nil
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file %q: %w", output, err)
		}
		return f, f, nil
	}
}
