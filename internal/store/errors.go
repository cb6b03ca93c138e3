package store

import (
	"fmt"
	"net/http"
)

// Error is a persistence error with an HTTP-style status code.
type Error struct {
	Code    int    // HTTP status code
	Message string // Description of the violated constraint
	Err     error  // Underlying driver error (optional)
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error with the same code and message, so copies made
// by WithCause still satisfy errors.Is against the sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// HTTPCode returns the HTTP status code associated with this error.
func (e *Error) HTTPCode() int { return e.Code }

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Err:     err,
	}
}

// Sentinel errors.
var (
	ErrNotFound = &Error{
		Code:    http.StatusNotFound,
		Message: "resource not found",
	}

	// ErrAlreadyExists reports a unique index violation.
	ErrAlreadyExists = &Error{
		Code:    http.StatusConflict,
		Message: "resource already exists",
	}

	// ErrReferenceNotFound reports a foreign key violation: the row points
	// at a user or book that does not exist.
	ErrReferenceNotFound = &Error{
		Code:    http.StatusUnprocessableEntity,
		Message: "referenced resource not found",
	}
)
