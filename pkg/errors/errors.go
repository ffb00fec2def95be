// Package errors provides structured error types for wfrender.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the HTTP server and the library
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - MALFORMED_*: Structurally invalid documents
//   - *_NOT_FOUND: Resource not found
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeAssetNotFound, "asset not found: %s", name)
//	if errors.Is(err, errors.ErrCodeAssetNotFound) {
//	    // degrade gracefully
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeMalformedScene, origErr, "decode %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidTime      Code = "INVALID_TIME"
	ErrCodeInvalidAssetName Code = "INVALID_ASSET_NAME"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"

	// Structural errors in caller-supplied documents
	ErrCodeMalformedScene    Code = "MALFORMED_SCENE"
	ErrCodeMalformedGlyphSet Code = "MALFORMED_GLYPH_SET"

	// Resource not found errors
	ErrCodeNotFound      Code = "NOT_FOUND"
	ErrCodeAssetNotFound Code = "ASSET_NOT_FOUND"
	ErrCodeGlyphNotFound Code = "GLYPH_NOT_FOUND"
	ErrCodeSceneNotFound Code = "SCENE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
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
		return e.Message
	}
	return err.Error()
}

// IsSoft reports whether err is a per-element failure that renderers skip
// rather than propagate: a missing asset or a missing glyph.
func IsSoft(err error) bool {
	switch GetCode(err) {
	case ErrCodeAssetNotFound, ErrCodeGlyphNotFound:
		return true
	}
	return false
}

// HTTPStatus maps an error code to the HTTP status the preview server answers with.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidTime, ErrCodeInvalidAssetName,
		ErrCodeInvalidFormat, ErrCodeMalformedScene, ErrCodeMalformedGlyphSet:
		return 400
	case ErrCodeNotFound, ErrCodeAssetNotFound, ErrCodeGlyphNotFound, ErrCodeSceneNotFound:
		return 404
	case ErrCodeUnsupported:
		return 501
	default:
		return 500
	}
}
