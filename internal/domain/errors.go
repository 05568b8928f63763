package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Handlers map them to HTTP status codes with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("business rule violated")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// ErrDuplicate is returned by repositories when a unique index rejects a write.
	ErrDuplicate = errors.New("duplicate key")
)

// Error carries a client-facing message together with its kind.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func NewError(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *Error {
	return NewError(ErrValidation, format, args...)
}

func Conflict(format string, args ...any) *Error {
	return NewError(ErrConflict, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return NewError(ErrNotFound, format, args...)
}

func Unauthorized(format string, args ...any) *Error {
	return NewError(ErrUnauthorized, format, args...)
}

func Forbidden(format string, args ...any) *Error {
	return NewError(ErrForbidden, format, args...)
}
