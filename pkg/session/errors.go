package session

import (
	"errors"
	"fmt"
)

// ErrNotAuthenticated is recorded when an operation needs a signed-in user.
var ErrNotAuthenticated = errors.New("not signed in")

// PartialRegistrationError means the account was created but signing in
// with it afterwards failed. The user exists on the server and can log in
// manually.
type PartialRegistrationError struct {
	Username string
	Err      error
}

func (e *PartialRegistrationError) Error() string {
	return fmt.Sprintf("account %q created but sign-in failed: %v", e.Username, e.Err)
}

// Unwrap returns the sign-in error.
func (e *PartialRegistrationError) Unwrap() error {
	return e.Err
}
