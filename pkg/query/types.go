// Package query keeps one list screen in sync with a remote collection.
//
// A Controller owns the search term, the filter and the page. Every change
// to them goes through a debouncer, so a burst of keystrokes produces a
// single fetch carrying the final values. Fetches are numbered; only the
// most recently issued one may commit its result, and optimistic patches
// applied while it is in flight are replayed on top of it.
//
// Example usage:
//
//	c := query.New(ctx, query.Config{Name: "players"}, playersAPI, log)
//	defer c.Close()
//
//	c.Refresh()
//	c.SetSearchTerm("mes")
//	c.SetSearchTerm("messi")
//
//	for range c.Changed() {
//	    render(c.State())
//	}
package query

import (
	"context"
	"time"

	"github.com/0xmhha/squad-console/pkg/debounce"
	"github.com/0xmhha/squad-console/pkg/model"
	"github.com/0xmhha/squad-console/pkg/mutation"
)

// DefaultDebounce is the quiet period before a filter change is fetched.
const DefaultDebounce = 300 * time.Millisecond

// Lister fetches one page of a collection.
type Lister[T any] interface {
	// List returns the page selected by params.
	//
	// Parameters:
	//   - ctx: Cancelled when the controller closes
	//   - params: Search term, filter, page and page size
	List(ctx context.Context, params model.ListParams) (model.ListResult[T], error)
}

// ListerFunc adapts a function to Lister.
type ListerFunc[T any] func(ctx context.Context, params model.ListParams) (model.ListResult[T], error)

// List implements Lister.
func (f ListerFunc[T]) List(ctx context.Context, params model.ListParams) (model.ListResult[T], error) {
	return f(ctx, params)
}

// Config contains controller configuration.
type Config struct {
	// Name identifies the screen in logs.
	Name string

	// Debounce is the quiet period before a change is fetched.
	// Default: 300ms.
	Debounce time.Duration

	// Limit is the page size sent with every fetch. Zero lets the server decide.
	Limit int

	// FilterID is the initial filter, e.g. a team id on the team screen.
	FilterID string

	// Clock drives the debouncer. Default: debounce.RealClock.
	Clock debounce.Clock
}

// State is a snapshot of one list screen.
type State[T model.Entity] struct {
	// SearchTerm is what the user typed, updated on every keystroke.
	SearchTerm string

	// DebouncedTerm is the term the last issued fetch used.
	DebouncedTerm string

	// IsSearching is true between a keystroke and its debounce firing.
	IsSearching bool

	// Loading is true while the latest fetch is in flight.
	Loading bool

	// Err holds the last fetch failure; previous items are kept.
	Err string

	FilterID string
	Page     int
	Limit    int

	mutation.ListState[T]
}
