// Package domainerr is the error taxonomy services return to handlers.
package domainerr

import "errors"

// Kinds, matched with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// Error carries a user-facing message for one of the kinds above.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func NotFound(message string) error { return &Error{Kind: ErrNotFound, Message: message} }

func Conflict(message string) error { return &Error{Kind: ErrConflict, Message: message} }

func Unauthorized(message string) error { return &Error{Kind: ErrUnauthorized, Message: message} }

func Forbidden(message string) error { return &Error{Kind: ErrForbidden, Message: message} }

// Message returns the user-facing message of a domain error, or fallback.
func Message(err error, fallback string) string {
	var de *Error
	if errors.As(err, &de) && de.Message != "" {
		return de.Message
	}
	return fallback
}
