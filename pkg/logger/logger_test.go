package logger

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readLog(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path) // nolint:gosec
	require.NoError(t, err)
	return string(data)
}

func TestNewWritesToFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "console.log")

	log := New(Config{Level: "debug", Output: logFile, Format: "text"})
	log.Debug("debug message")
	log.Info("fetch issued", "resource", "players", "seq", 3)
	log.Error("fetch failed")

	content := readLog(t, logFile)
	assert.Contains(t, content, "debug message")
	assert.Contains(t, content, "resource=players")
	assert.Contains(t, content, "seq=3")
	assert.Contains(t, content, "fetch failed")
}

func TestLevelFiltering(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "console.log")

	log := New(Config{Level: "warn", Output: logFile, Format: "text"})
	log.Debug("debug message")
	log.Info("info message")
	log.Warn("warn message")

	content := readLog(t, logFile)
	assert.NotContains(t, content, "debug message")
	assert.NotContains(t, content, "info message")
	assert.Contains(t, content, "warn message")
}

func TestSetLevelAppliesToDerivedLoggers(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "console.log")

	base := New(Config{Level: "error", Output: logFile, Format: "text"})
	child := base.With("component", "query")

	child.Info("before reload")
	base.SetLevel("debug")
	child.Debug("after reload")

	content := readLog(t, logFile)
	assert.NotContains(t, content, "before reload")
	assert.Contains(t, content, "after reload")
	assert.Contains(t, content, "component=query")
}

func TestJSONOutput(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "console.json")

	log := New(Config{Level: "info", Output: logFile, Format: "json"})
	log.Info("session settled", "authenticated", true, "count", 2)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(readLog(t, logFile)), &entry))
	assert.Equal(t, "session settled", entry["msg"])
	assert.Equal(t, true, entry["authenticated"])
	assert.Equal(t, float64(2), entry["count"])
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"WaRn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestGetWriter(t *testing.T) {
	for _, out := range []string{"stdout", "stderr", "", "STDOUT"} {
		w, err := getWriter(out)
		require.NoError(t, err, out)
		assert.NotNil(t, w, out)
	}

	_, err := getWriter(filepath.Join(t.TempDir(), "missing", "dir", "x.log"))
	assert.Error(t, err)
}

func TestNoopAndDefault(t *testing.T) {
	for _, log := range []Logger{Noop(), Default()} {
		require.NotNil(t, log)
		log.With("k", "v").Debug("discarded")
		log.SetLevel("error")
	}
}

func TestRecorder(t *testing.T) {
	rec := NewRecorder()

	rec.With("component", "session").Error("profile update failed", "error", "boom")
	rec.Info("settled")

	entries := rec.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, slog.LevelError, entries[0].Level)
	assert.Equal(t, "session", entries[0].Attrs["component"])
	assert.Equal(t, "boom", entries[0].Attrs["error"])
	assert.True(t, rec.Has(slog.LevelInfo, "settled"))
	assert.False(t, rec.Has(slog.LevelWarn, "settled"))

	rec.SetLevel("error")
	rec.Info("filtered")
	assert.Len(t, rec.Entries(), 2)
}

func BenchmarkLogWithFields(b *testing.B) {
	log := Noop().With("component", "bench")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		log.Info("benchmark message", "key1", "value1", "key2", 42)
	}
}
