// Package apperr carries the error taxonomy shared by services and handlers.
// Services return *Error values; the HTTP layer maps Kind to a status code
// and renders the machine-readable code in the response envelope.
package apperr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

type Kind string

const (
	KindInvalidArgument    Kind = "invalid_argument"
	KindUnauthenticated    Kind = "unauthenticated"
	KindForbidden          Kind = "forbidden"
	KindNotFound           Kind = "not_found"
	KindConflict           Kind = "conflict"
	KindEditWindowClosed   Kind = "edit_window_closed"
	KindRateLimited        Kind = "rate_limited"
	KindStorageUnavailable Kind = "storage_unavailable"
	KindInternal           Kind = "internal"
)

// FieldError points a validation failure at a specific input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.err }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap keeps cause for errors.Is/As while presenting message under kind.
func Wrap(err error, kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, err: err}
}

func Invalid(message string, fields ...FieldError) *Error {
	return &Error{Kind: KindInvalidArgument, Message: message, Fields: fields}
}

func Unauthenticated(message string) *Error { return New(KindUnauthenticated, message) }

func Forbidden(message string) *Error { return New(KindForbidden, message) }

func NotFound(entity string) *Error { return Newf(KindNotFound, "%s not found", entity) }

func Conflict(message string) *Error { return New(KindConflict, message) }

func EditWindowClosed(message string) *Error { return New(KindEditWindowClosed, message) }

func RateLimited(message string) *Error { return New(KindRateLimited, message) }

func Unavailable(err error) *Error {
	return Wrap(err, KindStorageUnavailable, "storage temporarily unavailable")
}

func Internal(err error) *Error {
	return Wrap(err, KindInternal, "internal error")
}

// KindOf extracts the Kind; unknown errors count as internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps an error to the status code the API returns for it.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindInvalidArgument:
		return fiber.StatusBadRequest
	case KindUnauthenticated:
		return fiber.StatusUnauthorized
	case KindForbidden:
		return fiber.StatusForbidden
	case KindNotFound:
		return fiber.StatusNotFound
	case KindConflict, KindEditWindowClosed:
		return fiber.StatusConflict
	case KindRateLimited:
		return fiber.StatusTooManyRequests
	case KindStorageUnavailable:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// FieldsOf returns validation field errors when present.
func FieldsOf(err error) []FieldError {
	var e *Error
	if errors.As(err, &e) {
		return e.Fields
	}
	return nil
}
