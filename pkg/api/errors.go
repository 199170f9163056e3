package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds. Every failure returned by this package matches one of them
// with errors.Is.
var (
	// ErrAuth means sign-in was refused: wrong username or password.
	ErrAuth = errors.New("invalid username or password")

	// ErrUnauthorized means the token is missing, invalid or expired.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden means the user lacks the role for the call.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation means the server rejected the payload.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound means the entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict means the entity clashes with an existing one.
	ErrConflict = errors.New("conflict")

	// ErrServer means the server failed or answered something unexpected.
	ErrServer = errors.New("server error")

	// ErrNetwork means the server could not be reached.
	ErrNetwork = errors.New("network error")
)

// Error is a non-2xx response.
type Error struct {
	Status  int
	Code    string
	Message string

	kind error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Code != "" {
		return fmt.Sprintf("%s (%d %s)", msg, e.Status, e.Code)
	}
	return fmt.Sprintf("%s (%d)", msg, e.Status)
}

// Unwrap returns the error kind.
func (e *Error) Unwrap() error {
	return e.kind
}

// errorBody is the JSON shape of error responses.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func newError(status int, body errorBody) *Error {
	e := &Error{
		Status:  status,
		Code:    body.Code,
		Message: body.Message,
		kind:    kindFor(status),
	}
	if e.Message == "" {
		e.Message = body.Error
	}
	return e
}

func kindFor(status int) error {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return ErrValidation
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	default:
		return ErrServer
	}
}
