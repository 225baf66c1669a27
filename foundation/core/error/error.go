// File: error.go
// Title: Core Error Type
// Description: Error type carrying a message, an optional cause, a code, a
//              severity and structured details. Builder methods return the
//              receiver so errors can be assembled fluently.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-18
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation
// - 2026-10-18 v0.2.0: Dropped request/user context, added errors.As lookup

package error

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"sync"
	"time"
)

// Error is the structured error used throughout RoboGrid
type Error struct {
	message   string
	cause     error
	code      Code
	severity  Severity
	timestamp time.Time
	operation string

	mu      sync.RWMutex
	details map[string]interface{}
}

// New creates a new error with the given message
func New(message string) *Error {
	return &Error{
		message:   message,
		code:      CodeUnknown,
		severity:  SeverityMedium,
		timestamp: time.Now(),
		details:   make(map[string]interface{}),
	}
}

// Newf creates a new error with a formatted message
func Newf(format string, args ...interface{}) *Error {
	return New(fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error with additional context. Wrapping nil yields nil.
// Code and severity are inherited from a wrapped *Error.
func Wrap(err error, message string) *Error {
	if err == nil {
		return nil
	}
	e := New(message)
	e.cause = err
	var inner *Error
	if stderrors.As(err, &inner) {
		e.code = inner.Code()
		e.severity = inner.Severity()
	}
	return e
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, format string, args ...interface{}) *Error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode sets the error code and derives the severity from it
func (e *Error) WithCode(code Code) *Error {
	e.code = code
	e.severity = GetSeverityFromCode(code)
	return e
}

// WithSeverity overrides the severity
func (e *Error) WithSeverity(severity Severity) *Error {
	e.severity = severity
	return e
}

// WithOperation records the operation that failed
func (e *Error) WithOperation(op string) *Error {
	e.operation = op
	return e
}

// WithDetail attaches a key/value detail
func (e *Error) WithDetail(key string, value interface{}) *Error {
	e.mu.Lock()
	e.details[key] = value
	e.mu.Unlock()
	return e
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Message returns the message without the cause chain
func (e *Error) Message() string { return e.message }

// Unwrap returns the wrapped cause
func (e *Error) Unwrap() error { return e.cause }

// Code returns the error code
func (e *Error) Code() Code { return e.code }

// Severity returns the severity
func (e *Error) Severity() Severity { return e.severity }

// Operation returns the failed operation, if recorded
func (e *Error) Operation() string { return e.operation }

// Timestamp returns the creation time
func (e *Error) Timestamp() time.Time { return e.timestamp }

// Details returns a copy of the attached details
func (e *Error) Details() map[string]interface{} {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(map[string]interface{}, len(e.details))
	for k, v := range e.details {
		out[k] = v
	}
	return out
}

// Is matches another *Error by code so errors.Is works against sentinels
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.code != CodeUnknown && t.code == e.code
}

// MarshalJSON renders the error for API responses and logs
func (e *Error) MarshalJSON() ([]byte, error) {
	out := map[string]interface{}{
		"message":   e.message,
		"code":      e.code,
		"severity":  e.severity.String(),
		"timestamp": e.timestamp.Format(time.RFC3339Nano),
	}
	if e.operation != "" {
		out["operation"] = e.operation
	}
	if d := e.Details(); len(d) > 0 {
		out["details"] = d
	}
	if e.cause != nil {
		out["cause"] = e.cause.Error()
	}
	return json.Marshal(out)
}

// HasCode reports whether any *Error in the chain carries code
func HasCode(err error, code Code) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.code == code {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// GetCode returns the code of the outermost *Error in the chain
func GetCode(err error) Code {
	var e *Error
	if stderrors.As(err, &e) {
		return e.code
	}
	return CodeUnknown
}

// GetSeverity returns the severity of the outermost *Error in the chain
func GetSeverity(err error) Severity {
	var e *Error
	if stderrors.As(err, &e) {
		return e.severity
	}
	return SeverityMedium
}
