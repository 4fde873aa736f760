package tutor

import (
	"errors"
	"net/http"
)

// Kind classifies a request failure.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindRateLimit
	KindConfiguration
	KindInternal
)

// Sentinels matched by errors.Is against an *Error of the same kind.
var (
	ErrValidation    = errors.New("invalid request")
	ErrRateLimited   = errors.New("rate limited")
	ErrConfiguration = errors.New("server misconfigured")
	ErrInternal      = errors.New("internal error")
)

// Messages shown to callers.
const (
	MsgQueryRequired = "Query is required"
	MsgQueryTooLong  = "Query is too long"
	MsgRateLimited   = "Too many requests. Please try again later."
	MsgConfiguration = "Server configuration error"
	MsgInternal      = "Failed to process search query"
)

// Error is a failure with a caller-safe Message. Err holds the detail for
// logs and is never shown to callers.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

func (k Kind) sentinel() error {
	switch k {
	case KindValidation:
		return ErrValidation
	case KindRateLimit:
		return ErrRateLimited
	case KindConfiguration:
		return ErrConfiguration
	default:
		return ErrInternal
	}
}

// HTTPStatus maps the kind to a response status.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// AsError converts any error into an *Error, treating unknown errors as
// internal.
func AsError(err error) *Error {
	var te *Error
	if errors.As(err, &te) {
		return te
	}
	return &Error{Kind: KindInternal, Message: MsgInternal, Err: err}
}
