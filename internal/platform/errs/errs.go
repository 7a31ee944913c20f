// Package errs defines the typed failures returned by the workspace and task services.
// Every operation returns either its result or exactly one *Error; store and infrastructure
// failures are wrapped as KindInternal.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind string

const (
	KindNotFound        Kind = "not_found"
	KindForbidden       Kind = "forbidden"
	KindInvalidArgument Kind = "invalid_argument"
	KindConflict        Kind = "conflict"
	KindUnauthenticated Kind = "unauthenticated"
	KindInternal        Kind = "internal"
)

// Error is a typed failure. Message is safe to show to callers except for KindInternal.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports that a referenced entity does not exist.
func NotFound(format string, args ...any) *Error { return newf(KindNotFound, format, args...) }

// Forbidden reports that the actor lacks the required role or relationship.
func Forbidden(format string, args ...any) *Error { return newf(KindForbidden, format, args...) }

// InvalidArgument reports malformed input.
func InvalidArgument(format string, args ...any) *Error {
	return newf(KindInvalidArgument, format, args...)
}

// Conflict reports a uniqueness violation such as a duplicate membership.
func Conflict(format string, args ...any) *Error { return newf(KindConflict, format, args...) }

// Unauthenticated reports missing or invalid credentials.
func Unauthenticated(format string, args ...any) *Error {
	return newf(KindUnauthenticated, format, args...)
}

// Internal wraps an infrastructure failure. The wrapped error is never shown to callers.
func Internal(err error, msg string) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf returns the kind of err, or KindInternal if err is not an *Error. Returns "" for nil.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
