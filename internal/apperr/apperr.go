// Package apperr defines the error taxonomy shared by all services.
// Callers branch on Kind instead of parsing message strings.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for HTTP mapping and caller branching.
type Kind int

const (
	Internal Kind = iota
	Validation
	Auth
	RateLimit
	NotFound
	Delivery
	InvalidTrigger
)

// HTTPStatus returns the response status for a kind.
func (k Kind) HTTPStatus() int {
	switch k {
	case Validation, InvalidTrigger:
		return http.StatusBadRequest
	case Auth:
		return http.StatusUnauthorized
	case RateLimit:
		return http.StatusTooManyRequests
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case Auth:
		return "auth"
	case RateLimit:
		return "rate_limit"
	case NotFound:
		return "not_found"
	case Delivery:
		return "delivery"
	case InvalidTrigger:
		return "invalid_trigger"
	default:
		return "internal"
	}
}

// Error is a classified error with an optional wrapped cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a classified error with a static message.
func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf creates a classified error with a formatted message.
func Newf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap classifies an underlying error. Returns nil if err is nil.
func Wrap(kind Kind, msg string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf extracts the kind from an error chain. Unclassified errors are Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
