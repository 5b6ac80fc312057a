// internal/app/system/apperr/apperr.go

// Package apperr defines the error kinds the engine reports to callers and
// their HTTP mappings. Every user-facing failure is one of these kinds; the
// interactive flow never returns an ambiguous outcome.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a user-facing failure.
type Kind string

const (
	// Unauthenticated: the caller has no verified identity.
	Unauthenticated Kind = "unauthenticated"
	// NotFound: the referenced profile or group does not exist. Read-only.
	NotFound Kind = "not-found"
	// FailedPrecondition: the request is well-formed but the current state
	// does not allow it (missing profile fields, candidate already consumed).
	FailedPrecondition Kind = "failed-precondition"
	// ResourceExhausted: transient contention (lock held); safe to retry.
	ResourceExhausted Kind = "resource-exhausted"
	// Aborted: an atomic attempt failed its re-verification; safe to retry.
	Aborted Kind = "aborted"
	// Internal: everything else.
	Internal Kind = "internal"
)

// Error carries a kind, a caller-safe message, and the wrapped cause.
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

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error of the given kind around a cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from err, or Internal for unclassified errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Internal
}

// MessageOf extracts the caller-safe message, or a generic one.
func MessageOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}
	return "internal error"
}

// HTTPStatus maps an error kind to a response status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case Unauthenticated:
		return http.StatusUnauthorized
	case NotFound:
		return http.StatusNotFound
	case FailedPrecondition:
		return http.StatusUnprocessableEntity
	case ResourceExhausted:
		return http.StatusTooManyRequests
	case Aborted:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
