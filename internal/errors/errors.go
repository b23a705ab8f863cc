package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind represents the type of error
type Kind int

const (
	ErrInternal Kind = iota
	ErrInvalidArgument
	ErrNotFound
	ErrInvalidState
)

func (k Kind) String() string {
	switch k {
	case ErrInvalidArgument:
		return "invalid argument"
	case ErrNotFound:
		return "not found"
	case ErrInvalidState:
		return "invalid state"
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

// InvalidArgument reports bad input to a pure function, e.g. a driver count
// larger than the catalog.
func InvalidArgument(msg string) *Error {
	return &Error{Kind: ErrInvalidArgument, Message: msg}
}

func InvalidArgumentf(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports a reference to an unknown race or season.
func NotFound(msg string) *Error {
	return &Error{Kind: ErrNotFound, Message: msg}
}

func NotFoundf(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

// InvalidState reports an operation that violates a state-machine guard.
func InvalidState(msg string) *Error {
	return &Error{Kind: ErrInvalidState, Message: msg}
}

func InvalidStatef(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrInvalidState, Message: fmt.Sprintf(format, args...)}
}

func Internal(err error) *Error {
	return &Error{Kind: ErrInternal, Message: "internal error", Err: err}
}

// Wrap wraps an error with additional context
func Wrap(err error, kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or ErrInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr.Kind
	}
	return ErrInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	var appErr *Error
	return stderrors.As(err, &appErr) && appErr.Kind == kind
}

func IsNotFound(err error) bool        { return IsKind(err, ErrNotFound) }
func IsInvalidState(err error) bool    { return IsKind(err, ErrInvalidState) }
func IsInvalidArgument(err error) bool { return IsKind(err, ErrInvalidArgument) }
