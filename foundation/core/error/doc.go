// Package error provides coded, severity-aware errors for RoboGrid.
//
// Package: error
// Title: RoboGrid Error Handling Framework
// Description: Structured errors with a stable code, a severity and free-form
// details. Engine failures (out of bounds, unknown command, empty
// program) and infrastructure failures (config, storage) share
// this type so that callers can branch on the code instead of
// matching message text.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-18
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with contextual errors and codes
// - 2026-10-18 v0.2.0: Reduced to the RoboGrid code set, errors.As aware helpers
//
// Usage:
//
//	err := error.New("Robot is out of grid bounds!").
//		WithCode(error.CodeOutOfBounds).
//		WithDetail("x", 0)
//
//	if error.HasCode(err, error.CodeOutOfBounds) {
//		// fatal to the run
//	}
package error
