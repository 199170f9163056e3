package mutation

import (
	"context"
	"fmt"
	"sync"

	"github.com/0xmhha/squad-console/pkg/logger"
	"github.com/0xmhha/squad-console/pkg/model"
)

type validator interface {
	Validate() error
}

// Coordinator drives create/update/delete for one list screen.
// It is safe for concurrent use.
type Coordinator[T model.Entity, D any] struct {
	cfg    Config[T]
	res    Resource[T, D]
	target Target[T]
	notify Notifier
	logger logger.Logger

	mu      sync.Mutex
	form    Form[D]
	confirm Confirmation[T]
	busy    map[Op]bool

	// editing is the entity OpenEdit was given, kept while its form is open.
	editing    T
	hasEditing bool
}

// NewCoordinator creates a coordinator.
//
// Parameters:
//   - cfg: Coordinator configuration
//   - res: CRUD collaborator
//   - target: List state receiving optimistic patches
//   - notify: Toast sink; nil discards
//   - log: Logger instance
func NewCoordinator[T model.Entity, D any](cfg Config[T], res Resource[T, D], target Target[T], notify Notifier, log logger.Logger) *Coordinator[T, D] {
	if cfg.Noun == "" {
		cfg.Noun = "item"
	}
	if notify == nil {
		notify = NopNotifier{}
	}
	if log == nil {
		log = logger.Noop()
	}

	return &Coordinator[T, D]{
		cfg:    cfg,
		res:    res,
		target: target,
		notify: notify,
		logger: log.With("component", "mutation", "noun", cfg.Noun),
		busy:   make(map[Op]bool),
	}
}

// OpenCreate opens the creation form with initial values.
func (c *Coordinator[T, D]) OpenCreate(draft D) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.form = Form[D]{Mode: FormCreate, Draft: draft}
	c.clearEditingLocked()
}

// OpenEdit opens the edit form for item, prefilled with draft.
func (c *Coordinator[T, D]) OpenEdit(item T, draft D) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.form = Form[D]{Mode: FormEdit, EditID: item.Key(), Draft: draft}
	c.editing, c.hasEditing = item, true
}

// SetDraft records what the user typed into the open form.
func (c *Coordinator[T, D]) SetDraft(draft D) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.form.Mode != FormClosed {
		c.form.Draft = draft
	}
}

// CloseForm dismisses the form without submitting.
func (c *Coordinator[T, D]) CloseForm() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.form = Form[D]{}
	c.clearEditingLocked()
}

// Form returns the current form state.
func (c *Coordinator[T, D]) Form() Form[D] {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.form
}

// Busy reports whether op is in flight.
func (c *Coordinator[T, D]) Busy(op Op) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.busy[op]
}

// Create validates draft, calls the collaborator and inserts the returned
// entity into the list.
//
// On failure the list is untouched and the form stays open holding draft.
// Returns ErrBusy without calling the collaborator if a create is in flight.
func (c *Coordinator[T, D]) Create(ctx context.Context, draft D) (T, error) {
	var zero T

	if !c.begin(OpCreate) {
		return zero, ErrBusy
	}
	defer c.end(OpCreate)

	c.keepDraft(FormCreate, "", draft)

	if err := validate(draft); err != nil {
		c.fail(OpCreate, err)
		return zero, err
	}

	created, err := c.res.Create(ctx, draft)
	if err != nil {
		c.fail(OpCreate, err)
		return zero, fmt.Errorf("create %s: %w", c.cfg.Noun, err)
	}

	c.target.Patch(func(s ListState[T]) ListState[T] {
		return ApplyCreate(s, created, c.cfg.Policy, c.cfg.Prepend)
	})

	c.mu.Lock()
	if c.form.Mode == FormCreate {
		c.form = Form[D]{}
	}
	c.mu.Unlock()

	c.logger.Info("entity created", "id", created.Key())
	c.notify.Success(fmt.Sprintf("%s created", capitalize(c.cfg.Noun)))
	return created, nil
}

// Update validates draft, calls the collaborator and replaces the listed
// entity with the returned one.
//
// On failure the list is untouched and the edit form stays open.
func (c *Coordinator[T, D]) Update(ctx context.Context, id string, draft D) (T, error) {
	var zero T

	if !c.begin(OpUpdate) {
		return zero, ErrBusy
	}
	defer c.end(OpUpdate)

	c.keepDraft(FormEdit, id, draft)

	if err := validate(draft); err != nil {
		c.fail(OpUpdate, err)
		return zero, err
	}

	updated, err := c.res.Update(ctx, id, draft)
	if err != nil {
		c.fail(OpUpdate, err)
		return zero, fmt.Errorf("update %s: %w", c.cfg.Noun, err)
	}

	c.mu.Lock()
	before, known := c.editing, c.hasEditing && c.editing.Key() == id
	c.mu.Unlock()

	c.patchFirst(func(s ListState[T], first bool) ListState[T] {
		if first && known {
			s = ApplyUnlistedUpdate(s, before, updated, c.cfg.Policy)
		}
		return ApplyUpdate(s, updated, c.cfg.Policy)
	})

	c.mu.Lock()
	if c.form.Mode == FormEdit && c.form.EditID == id {
		c.form = Form[D]{}
		c.clearEditingLocked()
	}
	c.mu.Unlock()

	c.logger.Info("entity updated", "id", id)
	c.notify.Success(fmt.Sprintf("%s updated", capitalize(c.cfg.Noun)))
	return updated, nil
}

// RequestDelete opens the confirmation for item. Nothing is deleted yet.
func (c *Coordinator[T, D]) RequestDelete(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.confirm.Busy {
		return
	}
	c.confirm = Confirmation[T]{Open: true, Item: item}
}

// CancelDelete closes the confirmation. It returns false while the delete
// is in flight.
func (c *Coordinator[T, D]) CancelDelete() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.confirm.Busy {
		return false
	}
	c.confirm = Confirmation[T]{}
	return true
}

// Confirmation returns the delete confirmation state.
func (c *Coordinator[T, D]) Confirmation() Confirmation[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.confirm
}

// ConfirmDelete deletes the item awaiting confirmation and removes it from
// the list.
//
// On failure the list is untouched and the confirmation stays open, no
// longer busy, so the user can retry or cancel.
func (c *Coordinator[T, D]) ConfirmDelete(ctx context.Context) error {
	c.mu.Lock()
	if !c.confirm.Open {
		c.mu.Unlock()
		return ErrNoPendingDelete
	}
	if c.busy[OpDelete] {
		c.mu.Unlock()
		return ErrBusy
	}
	c.busy[OpDelete] = true
	c.confirm.Busy = true
	c.confirm.Err = nil
	item := c.confirm.Item
	id := item.Key()
	c.mu.Unlock()

	defer c.end(OpDelete)

	if err := c.res.Delete(ctx, id); err != nil {
		c.mu.Lock()
		c.confirm.Busy = false
		c.confirm.Err = err
		c.mu.Unlock()

		c.logger.Warn("delete failed", "id", id, "error", err)
		c.notify.Error(fmt.Sprintf("Failed to delete %s: %v", c.cfg.Noun, err))
		return fmt.Errorf("delete %s: %w", c.cfg.Noun, err)
	}

	c.patchFirst(func(s ListState[T], first bool) ListState[T] {
		if first {
			s = ApplyUnlistedDelete(s, item, c.cfg.Policy)
		}
		return ApplyDelete(s, id, c.cfg.Policy)
	})

	c.mu.Lock()
	c.confirm = Confirmation[T]{}
	c.mu.Unlock()

	c.logger.Info("entity deleted", "id", id)
	c.notify.Success(fmt.Sprintf("%s deleted", capitalize(c.cfg.Noun)))
	return nil
}

// patchFirst sends fn to the target. first is true only for the immediate
// application; replays onto an in-flight fetch see false, so adjustments
// for entities off the loaded page are applied once.
func (c *Coordinator[T, D]) patchFirst(fn func(s ListState[T], first bool) ListState[T]) {
	first := true
	c.target.Patch(func(s ListState[T]) ListState[T] {
		out := fn(s, first)
		first = false
		return out
	})
}

func (c *Coordinator[T, D]) clearEditingLocked() {
	var zero T
	c.editing, c.hasEditing = zero, false
}

func (c *Coordinator[T, D]) begin(op Op) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.busy[op] {
		return false
	}
	c.busy[op] = true
	return true
}

func (c *Coordinator[T, D]) end(op Op) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.busy, op)
}

// keepDraft makes sure the submitted values survive a failure, even when
// the caller submitted without opening the form first.
func (c *Coordinator[T, D]) keepDraft(mode FormMode, id string, draft D) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.form = Form[D]{Mode: mode, EditID: id, Draft: draft}
}

func (c *Coordinator[T, D]) fail(op Op, err error) {
	c.mu.Lock()
	c.form.Err = err
	c.mu.Unlock()

	c.logger.Warn("mutation failed", "op", op.String(), "error", err)
	c.notify.Error(fmt.Sprintf("Failed to %s %s: %v", op, c.cfg.Noun, err))
}

func validate(draft any) error {
	if v, ok := draft.(validator); ok {
		return v.Validate()
	}
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}
