// Buildforge - Project Lifecycle and Build Scheduler
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/buildforge/buildforge

// Package coreerr defines the semantic error kinds the Lifecycle
// Coordinator maps onto CLI/RPC status codes (spec §6, §7).
package coreerr

import (
	"errors"
	"fmt"
)

// Kind is one of the semantic error kinds from spec §7. It is not a Go
// error type itself; Error carries it alongside a message.
type Kind string

const (
	KindBadRequest     Kind = "BadRequest"
	KindNotFound       Kind = "NotFound"
	KindConflict       Kind = "Conflict"
	KindHandlerFailure Kind = "HandlerFailure"
	KindIOFailure      Kind = "IOFailure"
	KindInternal       Kind = "Internal"
)

// StatusCode maps a Kind onto the §6 return-code table.
func (k Kind) StatusCode() int {
	switch k {
	case KindBadRequest, KindConflict:
		return 400
	case KindNotFound:
		return 404
	case KindHandlerFailure, KindIOFailure, KindInternal:
		return 500
	default:
		return 500
	}
}

// Error pairs a Kind with a message and optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// StatusCode implements the same accessor on *Error for callers that only
// have the wrapped error in hand.
func (e *Error) StatusCode() int { return e.Kind.StatusCode() }

// New constructs an *Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap constructs an *Error of the given kind around an existing cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// BadRequest, NotFound, Conflict, HandlerFailure, IOFailure and Internal are
// small constructors mirroring the ancestor codebase's sentinel-error
// style (internal/api/errors.go) but parameterised since the Lifecycle
// Coordinator needs many distinct messages per kind rather than a fixed set
// of package-level sentinels.
func BadRequest(format string, args ...interface{}) *Error {
	return New(KindBadRequest, fmt.Sprintf(format, args...))
}

func NotFound(format string, args ...interface{}) *Error {
	return New(KindNotFound, fmt.Sprintf(format, args...))
}

func Conflict(format string, args ...interface{}) *Error {
	return New(KindConflict, fmt.Sprintf(format, args...))
}

func HandlerFailure(cause error, format string, args ...interface{}) *Error {
	return Wrap(KindHandlerFailure, fmt.Sprintf(format, args...), cause)
}

func IOFailure(cause error, format string, args ...interface{}) *Error {
	return Wrap(KindIOFailure, fmt.Sprintf(format, args...), cause)
}

func Internal(cause error, format string, args ...interface{}) *Error {
	return Wrap(KindInternal, fmt.Sprintf(format, args...), cause)
}

// StatusCode extracts the §6 HTTP-ish status code from any error, walking
// the Unwrap chain to find a *coreerr.Error; a plain error not produced by
// this package maps to 500.
func StatusCode(err error) int {
	if err == nil {
		return 200
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce.StatusCode()
	}
	return 500
}
