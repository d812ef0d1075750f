// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for hioload-mem library.

package api

import "fmt"

// Common errors used across the library. Every failure reported by a
// strategy, resource or the manager wraps exactly one of these, so
// callers can classify with errors.Is regardless of the added context.
var (
	ErrOutOfMemory      = fmt.Errorf("out of memory")
	ErrInvalidPointer   = fmt.Errorf("invalid pointer")
	ErrInvalidRequest   = fmt.Errorf("invalid request")
	ErrNameCollision    = fmt.Errorf("name already registered")
	ErrUnknownAllocator = fmt.Errorf("unknown allocator")
	ErrInvalidAdvice    = fmt.Errorf("unrecognized advice kind")
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeOutOfMemory
	ErrCodeInvalidPointer
	ErrCodeInvalidRequest
	ErrCodeNameCollision
	ErrCodeUnknownAllocator
	ErrCodeInvalidAdvice
	ErrCodeInternal
)

// sentinel maps a code to its package-level sentinel error.
func (c ErrorCode) sentinel() error {
	switch c {
	case ErrCodeOutOfMemory:
		return ErrOutOfMemory
	case ErrCodeInvalidPointer:
		return ErrInvalidPointer
	case ErrCodeInvalidRequest:
		return ErrInvalidRequest
	case ErrCodeNameCollision:
		return ErrNameCollision
	case ErrCodeUnknownAllocator:
		return ErrUnknownAllocator
	case ErrCodeInvalidAdvice:
		return ErrInvalidAdvice
	default:
		return nil
	}
}

// Error represents a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Context) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (context: %+v)", e.Message, e.Context)
}

// Unwrap exposes the sentinel for errors.Is classification.
func (e *Error) Unwrap() error {
	return e.Code.sentinel()
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Errorf creates a new structured error with a formatted message.
func Errorf(code ErrorCode, format string, args ...any) *Error {
	return NewError(code, fmt.Sprintf(format, args...))
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}
