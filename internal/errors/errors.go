package errors

import (
	"errors"
	"net/http"
)

// Kind classifies an error for the client. Handlers never expose anything
// beyond Kind and Message.
type Kind string

const (
	KindValidation     Kind = "invalid_argument"
	KindAuthentication Kind = "unauthorized"
	KindAuthorization  Kind = "forbidden"
	KindNotFound       Kind = "not_found"
	KindConflict       Kind = "conflict"
	KindInternal       Kind = "internal"
)

// Error is a classified service error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Status returns the HTTP status code for the error kind.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func newErr(kind Kind, msg string) *Error { return &Error{Kind: kind, Message: msg} }

// InvalidArgument is for malformed or missing input.
func InvalidArgument(msg string) error { return newErr(KindValidation, msg) }

// Unauthorized never carries a reason; callers must not learn why a token failed.
func Unauthorized() error { return newErr(KindAuthentication, "Unauthorized") }

// Unauthenticated is a 401 with a caller-facing message, e.g. a failed login.
func Unauthenticated(msg string) error { return newErr(KindAuthentication, msg) }

func Forbidden(msg string) error { return newErr(KindAuthorization, msg) }

func NotFound(msg string) error { return newErr(KindNotFound, msg) }

func AlreadyExists(msg string) error { return newErr(KindConflict, msg) }

// Internal wraps an unexpected failure. The cause is kept for logging only.
func Internal(msg string, cause error) error {
	return &Error{Kind: KindInternal, Message: msg, Err: cause}
}

// Is reports whether err is a classified error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// HTTPStatus maps any error to the status code Write would use.
func HTTPStatus(err error) int {
	var e *Error
	if errors.As(Map(err), &e) {
		return e.Status()
	}
	return http.StatusInternalServerError
}
