package logger

import (
	"context"
	"log/slog"
	"sync"
)

// Entry is a single record captured by a Recorder.
type Entry struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// Recorder is a Logger that keeps every record in memory.
//
// It is meant for tests that need to assert on what a component logged,
// for example the failure side channel of boolean-result operations.
type Recorder struct {
	Logger
	sink *recordSink
}

// NewRecorder creates a Recorder capturing all levels.
func NewRecorder() *Recorder {
	sink := &recordSink{}
	level := new(slog.LevelVar)
	level.Set(slog.LevelDebug)
	return &Recorder{
		Logger: &logger{
			slogger: slog.New(&recordHandler{sink: sink, level: level}),
			level:   level,
		},
		sink: sink,
	}
}

// Entries returns a copy of the captured records.
func (r *Recorder) Entries() []Entry {
	r.sink.mu.Lock()
	defer r.sink.mu.Unlock()

	out := make([]Entry, len(r.sink.entries))
	copy(out, r.sink.entries)
	return out
}

// Has reports whether a record with the given level and message was captured.
func (r *Recorder) Has(level slog.Level, msg string) bool {
	for _, e := range r.Entries() {
		if e.Level == level && e.Message == msg {
			return true
		}
	}
	return false
}

type recordSink struct {
	mu      sync.Mutex
	entries []Entry
}

// recordHandler is a slog.Handler appending to a shared sink.
type recordHandler struct {
	sink  *recordSink
	level *slog.LevelVar
	attrs []slog.Attr
}

func (h *recordHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *recordHandler) Handle(_ context.Context, rec slog.Record) error {
	attrs := make(map[string]any, len(h.attrs)+rec.NumAttrs())
	for _, a := range h.attrs {
		attrs[a.Key] = a.Value.Any()
	}
	rec.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	h.sink.mu.Lock()
	h.sink.entries = append(h.sink.entries, Entry{
		Level:   rec.Level,
		Message: rec.Message,
		Attrs:   attrs,
	})
	h.sink.mu.Unlock()
	return nil
}

func (h *recordHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &recordHandler{sink: h.sink, level: h.level, attrs: merged}
}

// WithGroup flattens groups; the recorder only needs keys for assertions.
func (h *recordHandler) WithGroup(_ string) slog.Handler {
	return h
}
