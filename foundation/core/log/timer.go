// File: timer.go
// Title: Operation Timer
// Description: Measures an operation and logs its duration on Stop.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-18

package log

import (
	stderrors "errors"
	"time"

	rgerror "github.com/msto63/robogrid/foundation/core/error"
)

// Timer measures one operation
type Timer struct {
	logger    *Logger
	operation string
	start     time.Time
	level     Level
	fields    Fields
}

// NewTimer starts a timer for operation
func NewTimer(logger *Logger, operation string) *Timer {
	return &Timer{
		logger:    logger,
		operation: operation,
		start:     time.Now(),
		level:     LevelDebug,
		fields:    make(Fields),
	}
}

// WithLevel sets the level used on Stop
func (t *Timer) WithLevel(level Level) *Timer {
	t.level = level
	return t
}

// WithField adds a field to the completion entry
func (t *Timer) WithField(key string, value interface{}) *Timer {
	t.fields[key] = value
	return t
}

// Elapsed returns the time since start
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}

// Stop logs completion and returns the elapsed time
func (t *Timer) Stop() time.Duration {
	return t.finish(nil)
}

// StopWithError logs completion, at error level when err is non-nil
func (t *Timer) StopWithError(err error) time.Duration {
	return t.finish(err)
}

func (t *Timer) finish(err error) time.Duration {
	elapsed := t.Elapsed()
	level := t.level
	message := t.operation + " completed"
	if err != nil {
		level = LevelError
		message = t.operation + " failed"
	}

	entry, formatter, output, writeMu := t.logger.prepare(level, message, err, []Fields{t.fields})
	if entry == nil {
		return elapsed
	}
	entry.Duration = elapsed
	entry.Fields["operation"] = t.operation
	t.logger.write(entry, formatter, output, writeMu)
	return elapsed
}

func asRGError(err error, target **rgerror.Error) bool {
	return stderrors.As(err, target)
}
