// Package mutation applies create, update and delete results to a list
// screen without waiting for the next fetch.
//
// The reducers (ApplyCreate, ApplyUpdate, ApplyDelete) are pure functions
// over ListState. Coordinator wraps them with the interaction rules of a
// list screen: one form at a time, mandatory delete confirmation, and a busy
// flag per operation that rejects duplicate submissions.
//
// Example usage:
//
//	c := mutation.NewCoordinator(mutation.Config[model.Player]{
//	    Policy:  stats.Players,
//	    Prepend: true,
//	    Noun:    "player",
//	}, playersAPI, listController, notifier, log)
//
//	c.OpenCreate(model.PlayerDraft{})
//	if _, err := c.Create(ctx, draft); err != nil {
//	    // form is still open with draft intact
//	}
//
//	c.RequestDelete(player)
//	err := c.ConfirmDelete(ctx)
package mutation

import (
	"context"

	"github.com/0xmhha/squad-console/pkg/model"
	"github.com/0xmhha/squad-console/pkg/stats"
)

// Resource is the CRUD collaborator for one entity type.
type Resource[T model.Entity, D any] interface {
	// Create stores a new entity built from draft.
	//
	// Returns the entity as the server stored it.
	Create(ctx context.Context, draft D) (T, error)

	// Update replaces the entity identified by id.
	//
	// Returns the entity as the server stored it.
	Update(ctx context.Context, id string, draft D) (T, error)

	// Delete removes the entity identified by id.
	Delete(ctx context.Context, id string) error
}

// Target receives optimistic patches. query.Controller implements it.
type Target[T model.Entity] interface {
	// Patch applies fn to the current list state synchronously. Any later
	// call of fn replays it onto a list fetched in the meantime.
	Patch(fn func(ListState[T]) ListState[T])
}

// Notifier shows short-lived user feedback.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// NopNotifier discards notifications.
type NopNotifier struct{}

// Success implements Notifier.
func (NopNotifier) Success(string) {}

// Error implements Notifier.
func (NopNotifier) Error(string) {}

// Op identifies a mutation kind for busy tracking.
type Op int

// Mutation kinds.
const (
	OpCreate Op = iota
	OpUpdate
	OpDelete
)

// String returns a human-readable operation name.
func (op Op) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// FormMode says which form, if any, is open.
type FormMode int

// Form modes.
const (
	FormClosed FormMode = iota
	FormCreate
	FormEdit
)

// Form is the create/edit form state.
type Form[D any] struct {
	Mode FormMode

	// EditID is the key of the entity being edited in FormEdit mode.
	EditID string

	// Draft holds the values the user entered. It survives failed submits.
	Draft D

	// Err is the last submit failure, cleared when the form reopens.
	Err error
}

// Confirmation is the delete confirmation dialog state.
type Confirmation[T any] struct {
	Open bool
	Item T
	Busy bool
	Err  error
}

// Config contains coordinator configuration.
type Config[T model.Entity] struct {
	// Policy computes stats contributions. Nil leaves stats untouched.
	Policy stats.Policy[T]

	// Prepend puts created items first instead of last.
	Prepend bool

	// Noun names the entity in notifications, e.g. "player".
	// Default: "item".
	Noun string
}
