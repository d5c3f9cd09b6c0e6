package errorbank

import (
	"errors"
	"fmt"
)

// Kind enumerates supported application error categories.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindIO         Kind = "io"
	KindInternal   Kind = "internal"
)

// Process exit codes reported by the command surface.
const (
	ExitOK         = 0
	ExitFailure    = 1
	ExitValidation = 2
	ExitNotFound   = 3
)

// AppError captures rich error context shared across commands.
type AppError struct {
	kind    Kind
	message string
	details map[string]any
	cause   error
}

// Option mutates an AppError during construction.
type Option func(*AppError)

// WithCause attaches an underlying error.
func WithCause(err error) Option {
	return func(appErr *AppError) {
		appErr.cause = err
	}
}

// WithDetail adds a single named detail value.
func WithDetail(key string, value any) Option {
	return func(appErr *AppError) {
		if appErr.details == nil {
			appErr.details = make(map[string]any)
		}
		appErr.details[key] = value
	}
}

// New constructs a new AppError with the supplied kind and message.
func New(kind Kind, message string, opts ...Option) *AppError {
	if message == "" {
		message = string(kind)
	}
	appErr := &AppError{kind: kind, message: message}
	for _, opt := range opts {
		opt(appErr)
	}
	return appErr
}

// Error satisfies the error interface.
func (e *AppError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Kind returns the error category.
func (e *AppError) Kind() Kind {
	if e == nil {
		return KindInternal
	}
	return e.kind
}

// Details returns optional metadata about the error.
func (e *AppError) Details() map[string]any {
	if e == nil {
		return nil
	}
	return e.details
}

// ExitCode resolves the process exit status for the error kind.
func (e *AppError) ExitCode() int {
	if e == nil {
		return ExitOK
	}
	switch e.kind {
	case KindValidation:
		return ExitValidation
	case KindNotFound:
		return ExitNotFound
	default:
		return ExitFailure
	}
}

// Validation constructs an error for malformed or semantically invalid input.
func Validation(message string, opts ...Option) *AppError {
	return New(KindValidation, message, opts...)
}

// NotFound constructs an error for a missing file or record.
func NotFound(message string, opts ...Option) *AppError {
	return New(KindNotFound, message, opts...)
}

// IO constructs an error for storage read/write failures.
func IO(message string, opts ...Option) *AppError {
	return New(KindIO, message, opts...)
}

// Internal constructs a generic failure.
func Internal(message string, opts ...Option) *AppError {
	return New(KindInternal, message, opts...)
}

// Is reports whether err carries an AppError of the given kind.
func Is(err error, kind Kind) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Kind() == kind
}

// From returns an AppError for any error input, wrapping unexpected values.
func From(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("internal error", WithCause(err))
}
