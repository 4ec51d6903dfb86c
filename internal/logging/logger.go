package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"captionforge/internal/config"
)

// LogFileName is the file written under paths.log_dir.
const LogFileName = "captionforge.log"

// Options describes logger construction parameters.
type Options struct {
	// Level is one of debug, info, warn or error. Unknown values mean info.
	Level string
	// Format is "console" (default) or "json".
	Format string
	// OutputPaths lists sinks: "stdout", "stderr" or file paths. Empty means stderr.
	OutputPaths []string
	// AddSource forces caller locations. They are always added at debug level.
	AddSource bool
}

// New constructs a slog logger from opts.
func New(opts Options) (*slog.Logger, error) {
	level := new(slog.LevelVar)
	level.Set(levelFromString(opts.Level))
	withSource := opts.AddSource || level.Level() <= slog.LevelDebug

	var build func(io.Writer, *slog.LevelVar, bool) slog.Handler
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "", "console", "text":
		build = newConsoleHandler
	case "json":
		build = newJSONHandler
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	sink, err := openSinks(opts.OutputPaths)
	if err != nil {
		return nil, err
	}
	return slog.New(build(sink, level, withSource)), nil
}

// NewFromConfig builds the application logger. Lines always go to stderr so
// stdout stays reserved for command output, and are mirrored to LogFileName
// when a log directory is configured.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	opts := Options{Level: "info", OutputPaths: []string{"stderr"}}
	if cfg != nil {
		opts.Level = cfg.Logging.Level
		opts.Format = cfg.Logging.Format
		if dir := strings.TrimSpace(cfg.Paths.LogDir); dir != "" {
			opts.OutputPaths = append(opts.OutputPaths, filepath.Join(dir, LogFileName))
		}
	}
	return New(opts)
}

func levelFromString(raw string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(raw))); err != nil {
		return slog.LevelInfo
	}
	return level
}

func openSinks(paths []string) (io.Writer, error) {
	if len(paths) == 0 {
		return os.Stderr, nil
	}
	var sinks []io.Writer
	opened := make(map[string]bool, len(paths))
	for _, raw := range paths {
		path := strings.TrimSpace(raw)
		if path == "" || opened[path] {
			continue
		}
		opened[path] = true
		w, err := openSink(path)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, w)
	}
	switch len(sinks) {
	case 0:
		return os.Stderr, nil
	case 1:
		return sinks[0], nil
	default:
		return io.MultiWriter(sinks...), nil
	}
}

func openSink(path string) (io.Writer, error) {
	switch path {
	case "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory for %s: %w", path, err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return f, nil
}
