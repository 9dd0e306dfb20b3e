// Package apierr defines the error kinds surfaced by the HTTP API and the
// single responder that renders them.
package apierr

import (
	"errors"
	"fmt"

	"github.com/samber/oops"
)

// Error kinds. Match them with errors.Is.
var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNotFound        = errors.New("not found")
	ErrBadRequest      = errors.New("bad request")
	ErrConflict        = errors.New("conflict")
	ErrTooManyRequests = errors.New("too many requests")
)

// Error carries a kind and a human-readable reason. The reason is sent to the
// client, so it must only contain what the caller already supplied.
type Error struct {
	Kind   error
	Reason string
}

func (e *Error) Error() string {
	if e.Reason == "" {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Reason
}

// Unwrap returns the kind.
func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(code string, kind error, reason string) error {
	return oops.
		Code(code).
		With("reason", reason).
		Wrap(&Error{Kind: kind, Reason: reason})
}

// Unauthorized is raised when an authorization predicate fails.
func Unauthorized(reason string) error {
	return newError("UNAUTHORIZED", ErrUnauthorized, reason)
}

// NotFound is raised when a referenced resource doesn't exist.
func NotFound(resource, id string) error {
	return oops.
		Code("NOT_FOUND").
		With("resource", resource).
		Wrap(&Error{Kind: ErrNotFound, Reason: fmt.Sprintf("%s %q not found", resource, id)})
}

// BadRequest is raised for malformed or invalid payloads.
func BadRequest(reason string) error {
	return newError("BAD_REQUEST", ErrBadRequest, reason)
}

// Conflict is raised when a resource already exists.
func Conflict(reason string) error {
	return newError("CONFLICT", ErrConflict, reason)
}

// TooManyRequests is raised by the rate limiter.
func TooManyRequests(reason string) error {
	return newError("TOO_MANY_REQUESTS", ErrTooManyRequests, reason)
}

// Reason returns the client-facing reason of err, or "" if err is not an *Error.
func Reason(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Reason
	}
	return ""
}
