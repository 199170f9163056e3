package query

import "errors"

// ErrClosed is returned when waiting on a closed controller.
var ErrClosed = errors.New("query controller is closed")
