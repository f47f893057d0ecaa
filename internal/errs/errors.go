package errs

import (
	stderrors "errors"
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a failure so transport layers can map it to a status code
// without inspecting message text.
type Kind string

const (
	KindUnauthorized        Kind = "UNAUTHORIZED"
	KindForbidden           Kind = "FORBIDDEN"
	KindNotFound            Kind = "NOT_FOUND"
	KindValidation          Kind = "VALIDATION_FAILED"
	KindMissingContext      Kind = "MISSING_CONTEXT"
	KindInsufficientCredits Kind = "INSUFFICIENT_CREDITS"
	KindAlreadyInProgress   Kind = "ALREADY_IN_PROGRESS"
	KindUpstreamGeneration  Kind = "UPSTREAM_GENERATION_FAILED"
	KindInternal            Kind = "INTERNAL_ERROR"
)

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a kind and message to an underlying cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: errors.WithStack(cause)}
}

// KindOf returns the kind of err, or KindInternal when unclassified.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the user-facing message of a classified error, or the
// plain error text when unclassified.
func MessageOf(err error) string {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

func Unauthorized(message string) *Error { return New(KindUnauthorized, message) }
func Forbidden(message string) *Error    { return New(KindForbidden, message) }
func NotFound(message string) *Error     { return New(KindNotFound, message) }
func Validation(message string) *Error   { return New(KindValidation, message) }

func MissingContext(message string) *Error {
	return New(KindMissingContext, message)
}

func InsufficientCredits(message string) *Error {
	return New(KindInsufficientCredits, message)
}

func AlreadyInProgress(message string) *Error {
	return New(KindAlreadyInProgress, message)
}

func UpstreamGeneration(message string, cause error) *Error {
	if cause == nil {
		return New(KindUpstreamGeneration, message)
	}
	return Wrap(KindUpstreamGeneration, message, cause)
}

func Internal(message string, cause error) *Error {
	if cause == nil {
		return New(KindInternal, message)
	}
	return Wrap(KindInternal, message, cause)
}
