package user

import (
	"errors"
	"fmt"
)

// Sentinel errors for the user service layer.
var (
	ErrNotFound = errors.New("user not found")
)

// EmailInUseMessage is shown on the email field when another user owns the address.
const EmailInUseMessage = "This email address is already in use."

// ConflictError reports a uniqueness violation on a single field.
type ConflictError struct {
	Field   string
	Message string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s: %s", e.Field, e.Message)
}

// NewEmailConflict returns the conflict raised when an email is already taken.
func NewEmailConflict() *ConflictError {
	return &ConflictError{Field: "email", Message: EmailInUseMessage}
}

// IsConflict reports whether err is or wraps a *ConflictError.
func IsConflict(err error) (*ConflictError, bool) {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
