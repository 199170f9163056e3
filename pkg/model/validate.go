package model

import (
	"errors"
	"fmt"
	"strings"
)

// MaxRating is the highest rating a comment may give.
const MaxRating = 3

// ErrInvalid is wrapped by every FieldError.
var ErrInvalid = errors.New("invalid input")

// FieldError reports which form field failed validation.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Unwrap lets callers match with errors.Is(err, ErrInvalid).
func (e *FieldError) Unwrap() error { return ErrInvalid }

func invalid(field, reason string) error {
	return &FieldError{Field: field, Reason: reason}
}

// Validate checks the sign-in form.
func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Username) == "" {
		return invalid("username", "required")
	}
	if c.Password == "" {
		return invalid("password", "required")
	}
	return nil
}

// Validate checks the sign-up form.
func (r Registration) Validate() error {
	if err := r.Credentials().Validate(); err != nil {
		return err
	}
	if len(r.Password) < 6 {
		return invalid("password", "must be at least 6 characters")
	}
	if strings.TrimSpace(r.Name) == "" {
		return invalid("name", "required")
	}
	if r.YOB < 1900 || r.YOB > 2100 {
		return invalid("YOB", "must be a plausible year")
	}
	return nil
}

// Validate checks a profile patch.
func (p ProfilePatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return invalid("name", "must not be blank")
	}
	if p.YOB != nil && (*p.YOB < 1900 || *p.YOB > 2100) {
		return invalid("YOB", "must be a plausible year")
	}
	return nil
}

// Validate checks a player form.
func (d PlayerDraft) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return invalid("playerName", "required")
	}
	if d.Cost < 0 {
		return invalid("cost", "must not be negative")
	}
	if d.TeamID == "" {
		return invalid("team", "required")
	}
	return nil
}

// Validate checks a team form.
func (d TeamDraft) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return invalid("teamName", "required")
	}
	return nil
}

// Validate checks a comment form.
func (d CommentDraft) Validate() error {
	if d.Rating < 1 || d.Rating > MaxRating {
		return invalid("rating", "must be between 1 and 3")
	}
	if strings.TrimSpace(d.Content) == "" {
		return invalid("content", "required")
	}
	return nil
}

// Validate checks the change-password form.
func (p PasswordChange) Validate() error {
	if p.CurrentPassword == "" {
		return invalid("currentPassword", "required")
	}
	if len(p.NewPassword) < 6 {
		return invalid("newPassword", "must be at least 6 characters")
	}
	return nil
}
