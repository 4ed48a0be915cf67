// Package errors defines the coded domain errors returned by Arcana services.
//
// Services return *Error values; the API layer turns them into HTTP
// responses through Code.HTTPStatus:
//
//	if errors.Is(err, errors.ErrInvalidCredentials) { ... }
//
//	var de *errors.Error
//	if errors.As(err, &de) && de.Code == errors.CodeValidation { ... }
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-exported so callers only need one errors import.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code is a machine-readable error code.
type Code string

// Error codes.
const (
	CodeNotFound           Code = "NOT_FOUND"
	CodeAlreadyExists      Code = "ALREADY_EXISTS"
	CodeUnauthorized       Code = "UNAUTHORIZED"
	CodeForbidden          Code = "FORBIDDEN"
	CodeValidation         Code = "VALIDATION"
	CodeConflict           Code = "CONFLICT"
	CodeInternal           Code = "INTERNAL"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeTokenExpired       Code = "TOKEN_EXPIRED"
	CodeRateLimited        Code = "RATE_LIMITED"
	CodeUpstream           Code = "UPSTREAM"
	CodeUnavailable        Code = "UNAVAILABLE"
)

// HTTPStatus maps the code to a response status.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeAlreadyExists:
		return http.StatusConflict
	case CodeUnauthorized, CodeInvalidCredentials, CodeTokenExpired:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeValidation:
		return http.StatusBadRequest
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeUpstream:
		return http.StatusBadGateway
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, a user-facing message and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches any *Error carrying the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int { return e.Code.HTTPStatus() }

// GetStatus implements huma.StatusError.
func (e *Error) GetStatus() int { return e.HTTPStatus() }

// WithDetails returns a copy of e with details attached.
func (e *Error) WithDetails(details any) *Error {
	c := *e
	c.Details = details
	return &c
}

// WithCause returns a copy of e wrapping err.
func (e *Error) WithCause(err error) *Error {
	c := *e
	c.cause = err
	return &c
}

// Sentinels for errors.Is.
var (
	ErrNotFound           = New(CodeNotFound, "not found")
	ErrAlreadyExists      = New(CodeAlreadyExists, "already exists")
	ErrUnauthorized       = New(CodeUnauthorized, "unauthorized")
	ErrForbidden          = New(CodeForbidden, "forbidden")
	ErrValidation         = New(CodeValidation, "validation error")
	ErrConflict           = New(CodeConflict, "conflict")
	ErrInternal           = New(CodeInternal, "internal error")
	ErrInvalidCredentials = New(CodeInvalidCredentials, "invalid credentials")
	ErrTokenExpired       = New(CodeTokenExpired, "token expired")
	ErrRateLimited        = New(CodeRateLimited, "too many requests")
	ErrUpstream           = New(CodeUpstream, "upstream error")
	ErrUnavailable        = New(CodeUnavailable, "service unavailable")
)

// New creates an error with the given code and message.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Newf creates an error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps err with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// NotFound creates a not found error.
func NotFound(msg string) *Error { return New(CodeNotFound, msg) }

// Unauthorized creates an unauthorized error.
func Unauthorized(msg string) *Error { return New(CodeUnauthorized, msg) }

// Forbidden creates a forbidden error.
func Forbidden(msg string) *Error { return New(CodeForbidden, msg) }

// Validation creates a validation error.
func Validation(msg string) *Error { return New(CodeValidation, msg) }

// ValidationWithDetails creates a validation error with field details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// AlreadyExists creates an error for a duplicate submission.
func AlreadyExists(msg string) *Error { return New(CodeAlreadyExists, msg) }

// Conflict creates a conflict error.
func Conflict(msg string) *Error { return New(CodeConflict, msg) }

// Internal creates an internal error.
func Internal(msg string) *Error { return New(CodeInternal, msg) }

// InvalidCredentials creates an invalid credentials error.
func InvalidCredentials(msg string) *Error { return New(CodeInvalidCredentials, msg) }

// Upstream creates an error for a failed call to an external service.
func Upstream(msg string) *Error { return New(CodeUpstream, msg) }

// Unavailable creates an error for a feature whose backend is not configured.
func Unavailable(msg string) *Error { return New(CodeUnavailable, msg) }

// MessageOr returns err's domain message, or fallback when err carries none.
// Wrapped causes are left out so users see the message, not internals.
func MessageOr(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	var de *Error
	if errors.As(err, &de) && de.Message != "" {
		return de.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
