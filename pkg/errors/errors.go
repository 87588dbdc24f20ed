// Package errors provides structured error types for stickerwall.
//
// Every failure that crosses the worker boundary is reported as a response
// message rather than a fault, so errors carry a machine-readable [Code] that
// survives the trip. The codes mirror the failure taxonomy of the renderer:
//   - ASSET_LOAD: a source image could not be retrieved or decoded
//   - SURFACE_NOT_READY: generate arrived before the surface or assets
//   - INTERNAL_SELECTION: the weighted selector found no category
//   - INVALID_INPUT: request parameters are out of range
//
// # Usage
//
//	err := errors.New(errors.ErrCodeSurfaceNotReady, "canvas not initialized")
//	if errors.Is(err, errors.ErrCodeSurfaceNotReady) {
//	    // caller may retry after ready
//	}
//
//	err := errors.Wrap(errors.ErrCodeAssetLoad, cause, "load %s", locator)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for the renderer's failure categories.
const (
	// Input validation errors
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidFormat  Code = "INVALID_FORMAT"
	ErrCodeInvalidBackend Code = "INVALID_BACKEND"
	ErrCodeInvalidColor   Code = "INVALID_COLOR"
	ErrCodeInvalidSource  Code = "INVALID_SOURCE"

	// Worker lifecycle errors
	ErrCodeAssetLoad       Code = "ASSET_LOAD"
	ErrCodeSurfaceNotReady Code = "SURFACE_NOT_READY"
	ErrCodeTransferred     Code = "TRANSFERRED"

	// Network errors
	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	// Internal errors
	ErrCodeInternalSelection Code = "INTERNAL_SELECTION"
	ErrCodeInternal          Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Cause)
		}
		return e.Message
	}
	return err.Error()
}

// IsClientError reports whether the code describes a problem with the request
// rather than with the renderer.
func IsClientError(code Code) bool {
	switch code {
	case ErrCodeInvalidInput, ErrCodeInvalidFormat, ErrCodeInvalidBackend,
		ErrCodeInvalidColor, ErrCodeInvalidSource:
		return true
	}
	return false
}
