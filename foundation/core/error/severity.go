// File: severity.go
// Title: Error Severity Levels
// Description: Severity levels used to pick the log level of an error.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-18

package error

// Severity represents the severity level of an error
type Severity int

const (
	// SeverityLow is recoverable without restarting anything (empty program)
	SeverityLow Severity = iota

	// SeverityMedium ends the current run (program defects)
	SeverityMedium

	// SeverityHigh affects the process (storage, config)
	SeverityHigh

	// SeverityCritical makes the process unusable
	SeverityCritical
)

// String returns the string representation of the severity level
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// ShouldAlert returns true if this severity level should trigger alerts
func (s Severity) ShouldAlert() bool {
	return s >= SeverityHigh
}

// GetSeverityFromCode determines appropriate severity level based on error code
func GetSeverityFromCode(code Code) Severity {
	switch code {
	case CodeNoActions, CodeInvalidInput, CodeNotFound:
		return SeverityLow
	case CodeOutOfBounds, CodeUnknownCommand:
		return SeverityMedium
	case CodeInvalidConfig, CodeStorageError, CodeServiceUnavailable:
		return SeverityHigh
	case CodeInternal:
		return SeverityCritical
	default:
		return SeverityMedium
	}
}
