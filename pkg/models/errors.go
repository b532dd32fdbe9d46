package models

import (
	"errors"
	"fmt"
)

// Error kinds. Callers match them with errors.Is.
var (
	ErrMalformedCatalogue = errors.New("malformed catalogue")
	ErrFetch              = errors.New("fetch failed")
	ErrNotFound           = errors.New("not found")
	ErrDataFormat         = errors.New("unexpected data format")
	ErrRankRowNotFound    = errors.New("rank row not found")
	ErrInvalidInput       = errors.New("invalid input")
)

// Error is a failure of one operation, classified by Kind.
type Error struct {
	Op      string // e.g. "catalogue.Load", "parser.Normalize"
	Kind    error  // one of the Err* kinds above
	Message string
	Err     error // underlying cause, optional
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.Op, e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Message)
}

// Unwrap returns the underlying cause, or the kind when there is none.
func (e *Error) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is reports whether target is the kind of e or matches its cause.
func (e *Error) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	return e.Err != nil && errors.Is(e.Err, target)
}

// NewError creates an Error without an underlying cause.
func NewError(op string, kind error, format string, args ...any) *Error {
	return &Error{Op: op, Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError creates an Error around err.
func WrapError(op string, kind error, err error, format string, args ...any) *Error {
	return &Error{Op: op, Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}
