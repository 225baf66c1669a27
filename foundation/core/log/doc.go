// Package log provides structured logging for RoboGrid.
//
// Package: log
// Title: RoboGrid Structured Logging
// Description: Leveled, field-based logging with JSON, text, console and
// logfmt output. Loggers are immutable: With* methods return a
// derived copy, so a component can tag its logger once and hand
// it around freely. Entries may carry the id of the run they
// belong to.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-18
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with structured logging
// - 2026-10-18 v0.2.0: Run id context, sorted field output, async mode removed
//
// Usage:
//
//	logger := log.New().WithName("engine").WithRunID(id)
//	logger.Info("step", log.Fields{"command": "up", "x": 0, "y": 1})
//
//	timer := logger.StartTimer("journal.record")
//	defer timer.Stop()
package log
