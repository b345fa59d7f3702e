// Package errors provides structured error types for the plantuml client.
//
// This package defines error codes and types that enable:
//   - Distinguishing an unreachable server from a server that answered with an error
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The three codes callers usually care about are:
//   - CONNECTION_ERROR: the PlantUML server could not be reached
//   - HTTP_ERROR: the server answered with a non-success status (see [HTTPError])
//   - CONFIGURATION_ERROR: required settings, such as auth fields, are missing
//
// # Usage
//
//	err := errors.New(errors.ErrCodeConfiguration, "form auth requires a login url")
//	if errors.Is(err, errors.ErrCodeConfiguration) {
//	    // Handle configuration error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeConnection, origErr, "GET %s", url)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Transport errors
	ErrCodeConnection Code = "CONNECTION_ERROR"
	ErrCodeHTTP       Code = "HTTP_ERROR"

	// Setup errors
	ErrCodeConfiguration Code = "CONFIGURATION_ERROR"

	// Input errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"
	ErrCodeFileNotFound  Code = "FILE_NOT_FOUND"
	ErrCodeInvalidServer Code = "INVALID_SERVER"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// coder is implemented by error types that carry their own code.
type coder interface {
	Code() Code
}

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
// It unwraps the error chain looking for an *Error or [HTTPError] with a
// matching code.
func Is(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if nothing in the chain carries a code.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var c coder
	if errors.As(err, &c) {
		return c.Code()
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
			return fmt.Sprintf("%s: %s", e.Message, UserMessage(e.Cause))
		}
		return e.Message
	}
	var h *HTTPError
	if errors.As(err, &h) {
		return h.summary()
	}
	return err.Error()
}

// HTTPError reports a PlantUML server that was reached but answered with a
// non-success status. The response body is kept for diagnostics; PlantUML
// servers usually return an HTML page or an error image describing the
// syntax problem.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Status     string // e.g. "400 Bad Request"
	Body       []byte
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCodeHTTP, e.summary())
}

// Code returns the error code for this error type.
func (e *HTTPError) Code() Code {
	return ErrCodeHTTP
}

func (e *HTTPError) summary() string {
	status := e.Status
	if status == "" {
		status = fmt.Sprintf("%d", e.StatusCode)
	}
	method := e.Method
	if method == "" {
		method = "GET"
	}
	return fmt.Sprintf("%s %s: %s", method, e.URL, status)
}

// AsHTTP returns the [HTTPError] in err's chain, if any.
func AsHTTP(err error) (*HTTPError, bool) {
	var h *HTTPError
	if errors.As(err, &h) {
		return h, true
	}
	return nil, false
}
