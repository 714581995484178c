package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind represents the type of error
type Kind int

const (
	ErrInternal Kind = iota
	ErrConnection
	ErrFetch
	ErrParse
	ErrValidation
	ErrNotConnected
	ErrNotFound
)

func (k Kind) String() string {
	switch k {
	case ErrConnection:
		return "connection"
	case ErrFetch:
		return "fetch"
	case ErrParse:
		return "parse"
	case ErrValidation:
		return "validation"
	case ErrNotConnected:
		return "not_connected"
	case ErrNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Error is an application-level error with a kind for classification
type Error struct {
	Kind    Kind
	Message string
	Err     error // underlying error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Constructor functions for common error types

func Connection(msg string, err error) *Error {
	return &Error{Kind: ErrConnection, Message: msg, Err: err}
}

func Fetch(msg string, err error) *Error {
	return &Error{Kind: ErrFetch, Message: msg, Err: err}
}

func Fetchf(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrFetch, Message: fmt.Sprintf(format, args...)}
}

func Parse(msg string, err error) *Error {
	return &Error{Kind: ErrParse, Message: msg, Err: err}
}

func Validation(msg string) *Error {
	return &Error{Kind: ErrValidation, Message: msg}
}

func Validationf(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

func NotConnected(msg string) *Error {
	return &Error{Kind: ErrNotConnected, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: ErrNotFound, Message: msg}
}

func NotFoundf(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

func Internal(err error) *Error {
	return &Error{Kind: ErrInternal, Message: "internal error", Err: err}
}

// Wrap wraps an error with additional context
func Wrap(err error, kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or ErrInternal
func KindOf(err error) Kind {
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr.Kind
	}
	return ErrInternal
}

// IsKind reports whether err carries an *Error of the given kind
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return stderrors.As(err, &appErr) && appErr.Kind == kind
}
