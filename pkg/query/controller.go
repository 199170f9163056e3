package query

import (
	"context"
	"sync"
	"time"

	"github.com/0xmhha/squad-console/pkg/debounce"
	"github.com/0xmhha/squad-console/pkg/logger"
	"github.com/0xmhha/squad-console/pkg/model"
	"github.com/0xmhha/squad-console/pkg/mutation"
)

type patchFunc[T model.Entity] func(mutation.ListState[T]) mutation.ListState[T]

// Controller is safe for concurrent use. It implements mutation.Target.
type Controller[T model.Entity] struct {
	config Config
	lister Lister[T]
	logger logger.Logger
	deb    *debounce.Debouncer

	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.Mutex
	state State[T]

	// seq numbers issued fetches; only a result carrying the current seq
	// commits.
	seq uint64

	// tick numbers scheduled debounces so a callback that raced a newer
	// Schedule is dropped.
	tick    uint64
	pending bool

	// journal holds patches applied while the latest fetch is in flight.
	journal []patchFunc[T]

	closed  bool
	changed chan struct{}
	waiters []chan struct{}
}

// New creates a controller. Nothing is fetched until Refresh or a
// filter change.
//
// Parameters:
//   - ctx: Parent context for every fetch
//   - cfg: Controller configuration
//   - lister: Collection collaborator
//   - log: Logger instance
func New[T model.Entity](ctx context.Context, cfg Config, lister Lister[T], log logger.Logger) *Controller[T] {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Clock == nil {
		cfg.Clock = debounce.RealClock{}
	}
	if cfg.Name == "" {
		cfg.Name = "list"
	}
	if log == nil {
		log = logger.Noop()
	}

	ctx, cancel := context.WithCancel(ctx)

	c := &Controller[T]{
		config:  cfg,
		lister:  lister,
		logger:  log.With("component", "query", "screen", cfg.Name),
		deb:     debounce.New(cfg.Clock),
		ctx:     ctx,
		cancel:  cancel,
		changed: make(chan struct{}, 1),
		state: State[T]{
			FilterID: cfg.FilterID,
			Page:     1,
			Limit:    cfg.Limit,
		},
	}

	c.logger.Debug("query controller created", "debounce", cfg.Debounce)
	return c
}

// State returns a snapshot. The returned slices and maps are copies.
func (c *Controller[T]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state
	s.ListState = c.state.ListState.Clone()
	return s
}

// Changed signals after every state change. Signals coalesce: a slow
// reader sees one pending signal, never a backlog.
func (c *Controller[T]) Changed() <-chan struct{} {
	return c.changed
}

// SetDebounce changes the quiet period for changes made from now on.
func (c *Controller[T]) SetDebounce(d time.Duration) {
	if d <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.config.Debounce = d
}

// SetSearchTerm records a keystroke and schedules a fetch. The page goes
// back to 1.
func (c *Controller[T]) SetSearchTerm(term string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.state.SearchTerm = term
	c.state.IsSearching = true
	c.state.Page = 1
	c.scheduleLocked()
}

// SetFilter changes the filter id and schedules a fetch. The page goes back to 1.
func (c *Controller[T]) SetFilter(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.state.FilterID = id
	c.state.Page = 1
	c.scheduleLocked()
}

// SetPage selects a page and schedules a fetch. Pages start at 1.
func (c *Controller[T]) SetPage(page int) {
	if page < 1 {
		page = 1
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.state.Page = page
	c.scheduleLocked()
}

// NextPage moves forward if the pagination reports another page.
func (c *Controller[T]) NextPage() bool {
	c.mu.Lock()
	p := c.state.Pagination
	page := c.state.Page
	c.mu.Unlock()

	if p != nil && page >= p.TotalPages {
		return false
	}
	c.SetPage(page + 1)
	return true
}

// PrevPage moves back unless already on the first page.
func (c *Controller[T]) PrevPage() bool {
	c.mu.Lock()
	page := c.state.Page
	c.mu.Unlock()

	if page <= 1 {
		return false
	}
	c.SetPage(page - 1)
	return true
}

// SetLimit changes the page size and schedules a fetch.
func (c *Controller[T]) SetLimit(limit int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.state.Limit = limit
	c.state.Page = 1
	c.scheduleLocked()
}

// Refresh cancels any pending debounce and fetches now with the current
// values. It is the retry action after a failed fetch.
func (c *Controller[T]) Refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.deb.Cancel()
	c.tick++
	c.pending = false
	c.state.IsSearching = false
	c.issueLocked()
}

// Patch applies fn to the list right away. If a fetch is in flight, fn is
// also replayed on that fetch's result when it commits.
func (c *Controller[T]) Patch(fn func(mutation.ListState[T]) mutation.ListState[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.state.ListState = fn(c.state.ListState)
	if c.state.Loading {
		c.journal = append(c.journal, fn)
	}
	c.notifyLocked()
}

// Wait blocks until no debounce is pending and no fetch is in flight.
func (c *Controller[T]) Wait(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.idleLocked() {
		c.mu.Unlock()
		return nil
	}
	ch := make(chan struct{})
	c.waiters = append(c.waiters, ch)
	c.mu.Unlock()

	select {
	case <-ch:
		c.mu.Lock()
		closed := c.closed
		c.mu.Unlock()
		if closed {
			return ErrClosed
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels the pending debounce and in-flight fetches. Results that
// arrive afterwards are dropped. Safe to call more than once.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.pending = false
	c.releaseWaitersLocked()
	c.mu.Unlock()

	c.deb.Stop()
	c.cancel()

	c.logger.Debug("query controller closed")
}

func (c *Controller[T]) scheduleLocked() {
	c.tick++
	tick := c.tick
	c.pending = true

	c.deb.Schedule(func() { c.fire(tick) }, c.config.Debounce)
	c.notifyLocked()
}

// fire runs when the debounce period elapses.
func (c *Controller[T]) fire(tick uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || tick != c.tick {
		return
	}
	c.pending = false
	c.state.IsSearching = false
	c.issueLocked()
}

func (c *Controller[T]) issueLocked() {
	c.seq++
	seq := c.seq

	c.state.DebouncedTerm = c.state.SearchTerm
	params := model.ListParams{
		Search:   c.state.DebouncedTerm,
		FilterID: c.state.FilterID,
		Page:     c.state.Page,
		Limit:    c.state.Limit,
	}

	c.state.Loading = true
	c.journal = nil
	c.notifyLocked()

	c.logger.Debug("fetch issued",
		"seq", seq,
		"search", params.Search,
		"filter", params.FilterID,
		"page", params.Page)

	go c.run(seq, params)
}

func (c *Controller[T]) run(seq uint64, params model.ListParams) {
	result, err := c.lister.List(c.ctx, params)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	if seq != c.seq {
		c.logger.Debug("discarding superseded result", "seq", seq, "latest", c.seq)
		return
	}

	c.state.Loading = false

	if err != nil {
		c.state.Err = err.Error()
		c.journal = nil
		c.logger.Warn("fetch failed", "seq", seq, "error", err)
		c.notifyLocked()
		return
	}

	next := mutation.ListState[T]{
		Items:      result.Items,
		Stats:      result.Stats,
		Pagination: result.Pagination,
	}
	for _, fn := range c.journal {
		next = fn(next)
	}
	c.journal = nil

	c.state.ListState = next
	c.state.Err = ""

	c.logger.Debug("fetch committed", "seq", seq, "items", len(next.Items))
	c.notifyLocked()
}

func (c *Controller[T]) idleLocked() bool {
	return !c.pending && !c.state.Loading
}

// notifyLocked signals consumers and releases waiters once idle.
func (c *Controller[T]) notifyLocked() {
	select {
	case c.changed <- struct{}{}:
	default:
	}

	if c.idleLocked() {
		c.releaseWaitersLocked()
	}
}

func (c *Controller[T]) releaseWaitersLocked() {
	for _, ch := range c.waiters {
		close(ch)
	}
	c.waiters = nil
}
