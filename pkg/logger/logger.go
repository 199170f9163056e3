// Package logger is the structured logger every squad-console component
// takes in its constructor. Output goes through log/slog; tests use Noop
// or a Recorder.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger logs key-value records at four levels.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})

	// With returns a child that adds keysAndValues to every record.
	With(keysAndValues ...interface{}) Logger

	// SetLevel changes the threshold of this logger and of every logger
	// derived from it with With. A config reload calls it.
	SetLevel(level string)
}

// Config mirrors the log section of the config file.
type Config struct {
	Level  string // debug, info, warn or error
	Output string // stdout, stderr or a file path
	Format string // text or json
}

type logger struct {
	slogger *slog.Logger
	level   *slog.LevelVar
}

// New builds a logger from cfg. An output file that cannot be opened
// falls back to stderr so that a bad path never stops the client.
func New(cfg Config) Logger {
	level := new(slog.LevelVar)
	level.Set(ParseLevel(cfg.Level))

	w, err := getWriter(cfg.Output)
	if err != nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler = slog.NewTextHandler(w, opts)
	if strings.EqualFold(cfg.Format, "json") {
		h = slog.NewJSONHandler(w, opts)
	}
	return &logger{slogger: slog.New(h), level: level}
}

// Default logs text at info level to stderr.
func Default() Logger {
	return New(Config{Level: "info", Output: "stderr", Format: "text"})
}

// Noop discards everything.
func Noop() Logger {
	level := new(slog.LevelVar)
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: level})
	return &logger{slogger: slog.New(h), level: level}
}

func (l *logger) Debug(msg string, kv ...interface{}) { l.slogger.Debug(msg, kv...) }
func (l *logger) Info(msg string, kv ...interface{})  { l.slogger.Info(msg, kv...) }
func (l *logger) Warn(msg string, kv ...interface{})  { l.slogger.Warn(msg, kv...) }
func (l *logger) Error(msg string, kv ...interface{}) { l.slogger.Error(msg, kv...) }

func (l *logger) With(kv ...interface{}) Logger {
	return &logger{slogger: l.slogger.With(kv...), level: l.level}
}

func (l *logger) SetLevel(level string) {
	l.level.Set(ParseLevel(level))
}

var levels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// ParseLevel maps a config level name to a slog level. Unknown names,
// including the empty string, mean info.
func ParseLevel(level string) slog.Level {
	if l, ok := levels[strings.ToLower(level)]; ok {
		return l
	}
	return slog.LevelInfo
}

// getWriter resolves Config.Output. Files are opened for appending.
func getWriter(output string) (io.Writer, error) {
	switch strings.ToLower(output) {
	case "stdout":
		return os.Stdout, nil
	case "stderr", "":
		return os.Stderr, nil
	}

	// #nosec G304: the path comes from the user's own config file
	f, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600) // nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", output, err)
	}
	return f, nil
}
