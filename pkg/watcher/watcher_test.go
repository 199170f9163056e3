package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xmhha/squad-console/pkg/config"
	"github.com/0xmhha/squad-console/pkg/debounce"
	"github.com/0xmhha/squad-console/pkg/logger"
)

// countingLoad returns Default() with the page size set to the call count.
type countingLoad struct {
	calls atomic.Int32
	fail  atomic.Bool
}

func (c *countingLoad) load(path string) (*config.Config, error) {
	n := c.calls.Add(1)
	if c.fail.Load() {
		return nil, config.ErrInvalidYAML
	}
	cfg := config.Default()
	cfg.Query.PageSize = int(n)
	return cfg, nil
}

func newTestWatcher(t *testing.T, cfg Config, load LoadFunc) (*watcher, string) {
	t.Helper()
	w, err := New(cfg, load, logger.Noop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() }) // nolint:errcheck

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, w.Start(context.Background(), path))
	return w.(*watcher), path
}

func TestNew(t *testing.T) {
	w, err := New(Config{}, config.LoadFromFile, logger.Noop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if closeErr := w.Close(); closeErr != nil {
		t.Errorf("Close() error = %v", closeErr)
	}
	if closeErr := w.Close(); closeErr != nil {
		t.Errorf("second Close() error = %v", closeErr)
	}
}

func TestNewNilLoad(t *testing.T) {
	if _, err := New(Config{}, nil, logger.Noop()); err == nil {
		t.Error("New(nil load) error = nil")
	}
}

func TestStartMissingDirectory(t *testing.T) {
	w, err := New(Config{}, config.LoadFromFile, logger.Noop())
	require.NoError(t, err)
	defer w.Close() // nolint:errcheck

	err = w.Start(context.Background(), filepath.Join(t.TempDir(), "missing", "config.yaml"))
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestStartStopLifecycle(t *testing.T) {
	w, err := New(Config{}, config.LoadFromFile, logger.Noop())
	require.NoError(t, err)

	assert.ErrorIs(t, w.Stop(), ErrNotStarted)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, w.Start(context.Background(), path))
	assert.ErrorIs(t, w.Start(context.Background(), path), ErrAlreadyStarted)
	assert.NoError(t, w.Stop())

	require.NoError(t, w.Close())
	assert.ErrorIs(t, w.Stop(), ErrWatcherClosed)
	assert.ErrorIs(t, w.Start(context.Background(), path), ErrWatcherClosed)

	_, open := <-w.Events()
	assert.False(t, open, "events channel should be closed")
}

func TestReloadOnWrite(t *testing.T) {
	w, err := New(Config{DebounceInterval: 20 * time.Millisecond}, config.LoadFromFile, logger.Noop())
	require.NoError(t, err)
	defer w.Close() // nolint:errcheck

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, w.Start(ctx, path))

	cfg := config.Default()
	cfg.Logging.Level = "debug"
	cfg.Query.DebounceInterval = 450 * time.Millisecond
	require.NoError(t, config.Save(cfg, path))

	select {
	case ev := <-w.Events():
		want, _ := filepath.Abs(path)
		assert.Equal(t, want, ev.Path)
		assert.Contains(t, []Op{OpCreate, OpWrite}, ev.Op)
		require.NotNil(t, ev.Config)
		assert.Equal(t, "debug", ev.Config.Logging.Level)
		assert.Equal(t, 450*time.Millisecond, ev.Config.Query.DebounceInterval)
	case err := <-w.Errors():
		t.Fatalf("unexpected error: %v", err)
	case <-ctx.Done():
		t.Fatal("timeout waiting for reload")
	}
}

func TestInvalidFileReported(t *testing.T) {
	w, err := New(Config{DebounceInterval: 20 * time.Millisecond}, config.LoadFromFile, logger.Noop())
	require.NoError(t, err)
	defer w.Close() // nolint:errcheck

	path := filepath.Join(t.TempDir(), "config.yaml")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, w.Start(ctx, path))

	require.NoError(t, os.WriteFile(path, []byte("display: [broken"), 0600))

	select {
	case err := <-w.Errors():
		assert.ErrorIs(t, err, config.ErrInvalidYAML)
	case ev := <-w.Events():
		t.Fatalf("unexpected reload: %+v", ev)
	case <-ctx.Done():
		t.Fatal("timeout waiting for error")
	}
}

func TestBurstCoalesced(t *testing.T) {
	t.Parallel()

	clock := debounce.NewManualClock(time.Unix(0, 0))
	cl := &countingLoad{}
	w, path := newTestWatcher(t, Config{DebounceInterval: 100 * time.Millisecond, Clock: clock}, cl.load)

	for i := 0; i < 5; i++ {
		w.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Write})
		clock.Advance(50 * time.Millisecond)
	}
	assert.Equal(t, int32(0), cl.calls.Load())

	clock.Advance(50 * time.Millisecond)
	assert.Equal(t, int32(1), cl.calls.Load())

	ev := <-w.Events()
	assert.Equal(t, OpWrite, ev.Op)
	assert.Equal(t, 1, ev.Config.Query.PageSize)
	assert.Equal(t, clock.Now(), ev.Timestamp)
}

func TestIgnoresOtherFilesAndRemovals(t *testing.T) {
	t.Parallel()

	clock := debounce.NewManualClock(time.Unix(0, 0))
	cl := &countingLoad{}
	w, path := newTestWatcher(t, Config{DebounceInterval: 10 * time.Millisecond, Clock: clock}, cl.load)

	w.handleEvent(fsnotify.Event{Name: filepath.Join(filepath.Dir(path), "other.yaml"), Op: fsnotify.Write})
	w.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Remove})
	w.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Rename})
	w.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Chmod})
	clock.Advance(time.Second)

	assert.Equal(t, int32(0), cl.calls.Load())
	assert.Equal(t, 0, clock.Pending())
}

func TestLoadFailureKeepsWatching(t *testing.T) {
	t.Parallel()

	clock := debounce.NewManualClock(time.Unix(0, 0))
	cl := &countingLoad{}
	cl.fail.Store(true)
	w, path := newTestWatcher(t, Config{DebounceInterval: 10 * time.Millisecond, Clock: clock}, cl.load)

	w.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Create})
	clock.Advance(10 * time.Millisecond)
	err := <-w.Errors()
	assert.ErrorIs(t, err, config.ErrInvalidYAML)

	cl.fail.Store(false)
	w.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Write})
	clock.Advance(10 * time.Millisecond)
	ev := <-w.Events()
	assert.Equal(t, 2, ev.Config.Query.PageSize)
}

func TestCircuitBreaker(t *testing.T) {
	t.Parallel()

	w, _ := newTestWatcher(t, Config{CircuitBreakerThreshold: 3}, (&countingLoad{}).load)

	boom := errors.New("boom")
	for i := 0; i < 6; i++ {
		w.handleError(boom)
	}

	var got []error
	for len(w.errors) > 0 {
		got = append(got, <-w.errors)
	}
	require.Len(t, got, 3)
	assert.ErrorIs(t, got[0], boom)
	assert.ErrorIs(t, got[1], boom)
	assert.ErrorIs(t, got[2], ErrCircuitBreakerOpen)
}

func TestCloseDuringReload(t *testing.T) {
	t.Parallel()

	clock := debounce.NewManualClock(time.Unix(0, 0))
	cl := &countingLoad{}
	w, path := newTestWatcher(t, Config{DebounceInterval: 10 * time.Millisecond, Clock: clock}, cl.load)

	w.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Write})
	require.NoError(t, w.Close())

	clock.Advance(10 * time.Millisecond)

	assert.Equal(t, int32(0), cl.calls.Load())
}

func TestOpString(t *testing.T) {
	tests := []struct {
		op   Op
		want string
	}{
		{OpCreate, "CREATE"},
		{OpWrite, "WRITE"},
		{OpRemove, "REMOVE"},
		{OpRename, "RENAME"},
		{OpChmod, "CHMOD"},
		{Op(999), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("Op(%d).String() = %s, want %s", tt.op, got, tt.want)
		}
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	if got := expandHome("~/x/config.yaml"); got != filepath.Join(home, "x", "config.yaml") {
		t.Errorf("expandHome() = %s", got)
	}
	if got := expandHome("/abs/config.yaml"); got != "/abs/config.yaml" {
		t.Errorf("expandHome() = %s", got)
	}
}
