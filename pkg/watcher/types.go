// Package watcher reloads the configuration file when it changes on disk.
//
// It uses fsnotify on the file's parent directory, so editors that save by
// writing a temporary file and renaming it over the original are seen too.
// Bursts of writes are coalesced by a debounce interval before the file is
// parsed again.
//
// Example usage:
//
//	w, err := watcher.New(watcher.Config{
//	    DebounceInterval: 100 * time.Millisecond,
//	}, config.LoadFromFile, logger.Default())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Close()
//
//	if err := w.Start(ctx, "~/.config/squad-console/config.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//
//	for ev := range w.Events() {
//	    log.SetLevel(ev.Config.Logging.Level)
//	}
package watcher

import (
	"context"
	"time"

	"github.com/0xmhha/squad-console/pkg/config"
	"github.com/0xmhha/squad-console/pkg/debounce"
)

// Op describes a file operation type.
type Op uint32

// File operation types.
const (
	OpCreate Op = 1 << iota // File created
	OpWrite                 // File modified
	OpRemove                // File deleted
	OpRename                // File renamed/moved
	OpChmod                 // File permissions changed
)

// String returns a human-readable operation name.
func (op Op) String() string {
	switch op {
	case OpCreate:
		return "CREATE"
	case OpWrite:
		return "WRITE"
	case OpRemove:
		return "REMOVE"
	case OpRename:
		return "RENAME"
	case OpChmod:
		return "CHMOD"
	default:
		return "UNKNOWN"
	}
}

// Event is a successful reload.
type Event struct {
	// Path is the configuration file that was reloaded.
	Path string

	// Op is the last operation seen before the debounce interval elapsed.
	Op Op

	// Timestamp is when the file was parsed.
	Timestamp time.Time

	// Config is the freshly loaded and validated configuration.
	Config *config.Config
}

// LoadFunc reads and validates a configuration file. config.LoadFromFile
// satisfies it.
type LoadFunc func(path string) (*config.Config, error)

// Watcher provides configuration file monitoring.
type Watcher interface {
	// Start begins watching the configuration file.
	//
	// Parameters:
	//   - ctx: Context for cancellation
	//   - path: Configuration file; it may not exist yet, but its directory must
	//
	// Returns error if watching cannot be started.
	Start(ctx context.Context, path string) error

	// Stop gracefully shuts down event processing.
	Stop() error

	// Events returns the channel of successful reloads.
	//
	// The channel is closed when the watcher is closed.
	Events() <-chan Event

	// Errors returns the channel for receiving reload and watcher errors.
	//
	// A file that fails to parse or validate is reported here; the
	// previous configuration stays in effect.
	Errors() <-chan error

	// Close closes the watcher and releases resources.
	Close() error
}

// Config contains watcher configuration.
type Config struct {
	// DebounceInterval is the quiet period after the last change before the
	// file is reloaded.
	// Default: 100ms.
	DebounceInterval time.Duration

	// CircuitBreakerThreshold is the number of consecutive fsnotify failures
	// after which only ErrCircuitBreakerOpen is reported.
	// Default: 5.
	CircuitBreakerThreshold int

	// Clock drives the debounce timer. Default: debounce.RealClock.
	Clock debounce.Clock
}
