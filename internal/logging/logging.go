// Package logging installs a charmbracelet/log handler behind log/slog.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// ParseLevel maps a config level name to a log level.
func ParseLevel(name string) (log.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return log.DebugLevel, nil
	case "", "info":
		return log.InfoLevel, nil
	case "warn", "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	default:
		return log.InfoLevel, fmt.Errorf("unknown log level %q", name)
	}
}

// New builds a slog.Logger writing to w at the given level.
// Verbose lowers the level by one step per count; quiet silences
// everything below errors.
func New(w io.Writer, level string, verbose int, quiet bool) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	lvl -= log.Level(verbose * 4)
	lvl = max(lvl, log.DebugLevel)
	if quiet {
		lvl = log.ErrorLevel
	}

	handler := log.NewWithOptions(w, log.Options{
		TimeFormat:      time.Kitchen,
		ReportTimestamp: true,
		Level:           lvl,
	})
	return slog.New(handler), nil
}

// Setup builds a logger with New and installs it as the slog default.
func Setup(w io.Writer, level string, verbose int, quiet bool) (*slog.Logger, error) {
	logger, err := New(w, level, verbose, quiet)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return logger, nil
}
