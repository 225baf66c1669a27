// File: codes.go
// Title: Error Code Definitions
// Description: Stable error codes used by the engine, the journal and the
//              HTTP API to classify failures.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-18
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with core error codes
// - 2026-10-18 v0.2.0: Replaced platform codes with run and storage codes

package error

// Code represents a structured error code for categorizing errors
type Code string

const (
	// Generic codes
	CodeUnknown      Code = "UNKNOWN"
	CodeInternal     Code = "INTERNAL"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeNotFound     Code = "NOT_FOUND"

	// Run outcomes
	CodeNoActions      Code = "NO_ACTIONS"
	CodeOutOfBounds    Code = "OUT_OF_BOUNDS"
	CodeUnknownCommand Code = "UNKNOWN_COMMAND"

	// Infrastructure
	CodeInvalidConfig      Code = "INVALID_CONFIG"
	CodeStorageError       Code = "STORAGE_ERROR"
	CodeServiceUnavailable Code = "SERVICE_UNAVAILABLE"
)

// String returns the string representation of the error code
func (c Code) String() string {
	return string(c)
}

// IsValid reports whether the code is one of the known codes
func (c Code) IsValid() bool {
	switch c {
	case CodeUnknown, CodeInternal, CodeInvalidInput, CodeNotFound,
		CodeNoActions, CodeOutOfBounds, CodeUnknownCommand,
		CodeInvalidConfig, CodeStorageError, CodeServiceUnavailable:
		return true
	}
	return false
}

// Category groups codes for reporting
func (c Code) Category() string {
	switch c {
	case CodeNoActions, CodeOutOfBounds, CodeUnknownCommand:
		return "run"
	case CodeInvalidConfig:
		return "config"
	case CodeStorageError:
		return "storage"
	case CodeServiceUnavailable:
		return "service"
	default:
		return "generic"
	}
}

// HTTPStatus maps the code to the status the API answers with
func (c Code) HTTPStatus() int {
	switch c {
	case CodeInvalidInput, CodeNoActions, CodeOutOfBounds, CodeUnknownCommand:
		return 400
	case CodeNotFound:
		return 404
	case CodeServiceUnavailable:
		return 503
	default:
		return 500
	}
}
