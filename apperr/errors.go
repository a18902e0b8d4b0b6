// Package apperr carries the error taxonomy shared by the rules engine,
// the services and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
)

// Kinds. Match with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")
	ErrInvariant  = errors.New("invariant violated")
)

// Error is a business-rule rejection. Message is safe to show to clients.
type Error struct {
	Kind    error
	Code    string
	Message string
	Details []string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// WithDetails attaches individual problems behind a summary message.
func (e *Error) WithDetails(details []string) *Error {
	e.Details = details
	return e
}

func newError(kind error, code, format string, args ...any) *Error {
	return &Error{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

func Validation(code, format string, args ...any) *Error {
	return newError(ErrValidation, code, format, args...)
}

func NotFound(code, format string, args ...any) *Error {
	return newError(ErrNotFound, code, format, args...)
}

func Conflict(code, format string, args ...any) *Error {
	return newError(ErrConflict, code, format, args...)
}

func Forbidden(code, format string, args ...any) *Error {
	return newError(ErrForbidden, code, format, args...)
}

// Invariant reports a state that only a bug can produce.
func Invariant(code, format string, args ...any) *Error {
	return newError(ErrInvariant, code, format, args...)
}

// DetailsOf returns the attached problems of err, if any.
func DetailsOf(err error) []string {
	var e *Error
	if errors.As(err, &e) {
		return e.Details
	}
	return nil
}

// CodeOf returns the rule code of err, or "" for foreign errors.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
