package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/0xmhha/squad-console/pkg/debounce"
	"github.com/0xmhha/squad-console/pkg/logger"
)

// watcher implements the Watcher interface using fsnotify.
type watcher struct {
	fsw    *fsnotify.Watcher
	load   LoadFunc
	logger logger.Logger
	config Config
	clock  debounce.Clock

	events chan Event
	errors chan error

	mu       sync.RWMutex
	running  bool
	closed   bool
	path     string
	lastOp   Op
	stopChan chan struct{}

	deb *debounce.Debouncer

	// Circuit breaker state.
	failureCount int
}

// New creates a new configuration file watcher.
//
// Parameters:
//   - cfg: Watcher configuration
//   - load: Parses the file on every change
//   - log: Logger instance
//
// Returns:
//   - Configured Watcher
//   - Error if watcher cannot be created
func New(cfg Config, load LoadFunc, log logger.Logger) (Watcher, error) {
	if cfg.DebounceInterval == 0 {
		cfg.DebounceInterval = 100 * time.Millisecond
	}
	if cfg.CircuitBreakerThreshold == 0 {
		cfg.CircuitBreakerThreshold = 5
	}
	if cfg.Clock == nil {
		cfg.Clock = debounce.RealClock{}
	}
	if load == nil {
		return nil, fmt.Errorf("watcher: nil load function")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	w := &watcher{
		fsw:      fsw,
		load:     load,
		logger:   log,
		config:   cfg,
		clock:    cfg.Clock,
		events:   make(chan Event, 8),
		errors:   make(chan error, 8),
		stopChan: make(chan struct{}),
		deb:      debounce.New(cfg.Clock),
	}

	log.Debug("config watcher created",
		"debounce_interval", cfg.DebounceInterval)

	return w, nil
}

// Start implements Watcher.Start.
func (w *watcher) Start(ctx context.Context, path string) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrWatcherClosed
	}
	if w.running {
		w.mu.Unlock()
		return ErrAlreadyStarted
	}
	w.mu.Unlock()

	abs, err := filepath.Abs(expandHome(path))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}
	dir := filepath.Dir(abs)

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		w.logger.Warn("config directory does not exist", "path", dir)
		return fmt.Errorf("%w: %s", ErrInvalidPath, dir)
	}

	if err := w.fsw.Add(dir); err != nil {
		return fmt.Errorf("failed to add path %s: %w", dir, err)
	}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrWatcherClosed
	}
	w.path = abs
	w.running = true
	w.mu.Unlock()

	w.logger.Info("watching config file", "path", abs)

	go w.processEvents(ctx)

	return nil
}

// Stop implements Watcher.Stop.
func (w *watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	if !w.running {
		return ErrNotStarted
	}

	close(w.stopChan)
	w.running = false
	w.deb.Cancel()

	w.logger.Debug("config watcher stopped")
	return nil
}

// Events implements Watcher.Events.
func (w *watcher) Events() <-chan Event {
	return w.events
}

// Errors implements Watcher.Errors.
func (w *watcher) Errors() <-chan error {
	return w.errors
}

// Close implements Watcher.Close.
func (w *watcher) Close() error {
	w.deb.Stop()

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}

	w.closed = true

	if w.running {
		close(w.stopChan)
		w.running = false
	}

	close(w.events)
	close(w.errors)

	if err := w.fsw.Close(); err != nil {
		w.logger.Error("failed to close fsnotify watcher", "error", err)
		return fmt.Errorf("failed to close watcher: %w", err)
	}

	w.logger.Debug("config watcher closed")
	return nil
}

// processEvents handles events from fsnotify.
func (w *watcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.deb.Cancel()
			w.logger.Debug("event processing stopped", "reason", "context cancelled")
			return

		case <-w.stopChan:
			w.logger.Debug("event processing stopped", "reason", "stop signal")
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.handleError(err)
		}
	}
}

// handleEvent filters events down to the watched file and debounces them.
func (w *watcher) handleEvent(event fsnotify.Event) {
	w.mu.RLock()
	target := w.path
	w.mu.RUnlock()

	if filepath.Clean(event.Name) != target {
		return
	}

	var op Op
	switch {
	case event.Op&fsnotify.Create == fsnotify.Create:
		op = OpCreate
	case event.Op&fsnotify.Write == fsnotify.Write:
		op = OpWrite
	case event.Op&fsnotify.Remove == fsnotify.Remove:
		op = OpRemove
	case event.Op&fsnotify.Rename == fsnotify.Rename:
		op = OpRename
	default:
		return
	}

	if op == OpRemove || op == OpRename {
		// Editors that save by rename follow up with a Create.
		w.logger.Debug("config file moved away; keeping current settings",
			"path", target, "op", op)
		return
	}

	w.mu.Lock()
	w.lastOp = op
	w.failureCount = 0
	w.mu.Unlock()

	w.deb.Schedule(w.reload, w.config.DebounceInterval)
}

// reload parses the file and publishes the result.
func (w *watcher) reload() {
	w.mu.RLock()
	path, op := w.path, w.lastOp
	w.mu.RUnlock()

	cfg, err := w.load(path)
	if err != nil {
		w.logger.Warn("config reload failed", "path", path, "error", err)
		w.sendError(fmt.Errorf("reload %s: %w", path, err))
		return
	}

	w.logger.Info("config reloaded", "path", path, "op", op)
	w.send(Event{
		Path:      path,
		Op:        op,
		Timestamp: w.clock.Now(),
		Config:    cfg,
	})
}

// handleError processes fsnotify errors with circuit breaker pattern.
func (w *watcher) handleError(err error) {
	w.mu.Lock()
	w.failureCount++
	count := w.failureCount
	w.mu.Unlock()

	w.logger.Error("fsnotify error",
		"error", err,
		"failure_count", count)

	if count >= w.config.CircuitBreakerThreshold {
		if count == w.config.CircuitBreakerThreshold {
			w.logger.Error("circuit breaker opened",
				"threshold", w.config.CircuitBreakerThreshold)
			w.sendError(ErrCircuitBreakerOpen)
		}
		return
	}

	w.sendError(err)
}

// send delivers ev unless the watcher is closed or the reader is behind.
func (w *watcher) send(ev Event) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return
	}
	select {
	case w.events <- ev:
	default:
		w.logger.Warn("event channel full, dropping reload")
	}
}

func (w *watcher) sendError(err error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return
	}
	select {
	case w.errors <- err:
	default:
		w.logger.Warn("error channel full, dropping error")
	}
}

// expandHome expands ~ in file paths to the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	if path == "~" {
		return homeDir
	}

	return filepath.Join(homeDir, path[2:])
}
