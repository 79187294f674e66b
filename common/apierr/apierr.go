// Package apierr holds the failure taxonomy shared by every operation the
// service exposes.
package apierr

import (
	"fmt"
	"net/http"

	"github.com/juju/errors"
)

type Kind int

const (
	KindInternal Kind = iota
	KindBadRequest
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "BadRequest"
	case KindUnauthorized:
		return "Unauthorized"
	default:
		return "InternalError"
	}
}

// Status returns the HTTP status code a failure of this kind is reported with.
func (k Kind) Status() int {
	switch k {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil && e.Message == "" {
		return e.Cause.Error()
	}

	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

func (e *Error) Status() int { return e.Kind.Status() }

func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

func BadRequest(msg string) *Error {
	return &Error{Kind: KindBadRequest, Message: msg}
}

func BadRequestf(format string, args ...any) *Error {
	return BadRequest(fmt.Sprintf(format, args...))
}

// Internal wraps an unexpected collaborator failure. The message carries the
// cause so callers see what went wrong.
func Internal(cause error) *Error {
	msg := "error while performing operation"
	if cause != nil {
		msg = fmt.Sprintf("%s: %s", msg, cause.Error())
	}

	return &Error{Kind: KindInternal, Message: msg, Cause: cause}
}

// From returns err as an *Error, wrapping anything that is not one already
// as an internal failure.
func From(err error) *Error {
	if err == nil {
		return nil
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	return Internal(err)
}

// KindOf reports the Kind of err. Errors that are not *Error are internal.
func KindOf(err error) Kind {
	return From(err).Kind
}
