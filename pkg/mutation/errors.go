package mutation

import "errors"

// Common errors returned by the coordinator.
var (
	// ErrBusy is returned when the same operation is already in flight.
	ErrBusy = errors.New("operation already in progress")

	// ErrNoPendingDelete is returned by ConfirmDelete without a prior RequestDelete.
	ErrNoPendingDelete = errors.New("no delete awaiting confirmation")
)
