/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package guessing

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the engine unwraps to exactly one of these.
var (
	ErrValidation           = errors.New("validation error")
	ErrNotFound             = errors.New("not found")
	ErrState                = errors.New("invalid state")
	ErrAuthorization        = errors.New("not authorized")
	ErrCapacity             = errors.New("room full")
	ErrConfirmationRequired = errors.New("confirmation required")
	ErrInvalidTarget        = errors.New("invalid target")
)

type gameError struct {
	kind error
	msg  string
}

func (e *gameError) Error() string {
	return e.msg
}

func (e *gameError) Unwrap() error {
	return e.kind
}

func newError(kind error, format string, args ...any) error {
	return &gameError{kind: kind, msg: fmt.Sprintf(format, args...)}
}

func validationf(format string, args ...any) error {
	return newError(ErrValidation, format, args...)
}

func notFoundf(format string, args ...any) error {
	return newError(ErrNotFound, format, args...)
}

func statef(format string, args ...any) error {
	return newError(ErrState, format, args...)
}

func unauthorizedf(format string, args ...any) error {
	return newError(ErrAuthorization, format, args...)
}

// ErrorKind names the kind of err for the client-facing error event.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrState):
		return "state"
	case errors.Is(err, ErrAuthorization):
		return "authorization"
	case errors.Is(err, ErrCapacity):
		return "capacity"
	case errors.Is(err, ErrConfirmationRequired):
		return "confirmation_required"
	case errors.Is(err, ErrInvalidTarget):
		return "invalid_target"
	default:
		return "internal"
	}
}
