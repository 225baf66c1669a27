// File: logger.go
// Title: Core Logger Implementation
// Description: Logger type providing leveled structured output with
//              contextual fields and integration with the RoboGrid error
//              type.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-18
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with structured logging
// - 2026-10-18 v0.2.0: Shared writer lock across derived loggers, run id

package log

import (
	"io"
	"os"
	"runtime"
	"strings"
	"sync"

	rgerror "github.com/msto63/robogrid/foundation/core/error"
)

// Logger represents a structured logger with contextual information
type Logger struct {
	level     Level
	formatter Formatter
	output    io.Writer
	name      string
	runID     string

	contextFields Fields

	enableCaller     bool
	callerSkipFrames int

	// writeMu is shared by all loggers derived from the same root so
	// concurrent lines on one writer never interleave.
	writeMu *sync.Mutex
	mutex   sync.RWMutex
}

// Config represents logger configuration
type Config struct {
	Level        Level
	Format       Format
	Output       io.Writer
	Name         string
	EnableCaller bool
}

// New creates a logger writing JSON at info level to stdout
func New() *Logger {
	return NewWithConfig(Config{Level: LevelInfo, Format: FormatJSON, Output: os.Stdout})
}

// NewWithConfig creates a logger from config
func NewWithConfig(config Config) *Logger {
	output := config.Output
	if output == nil {
		output = os.Stdout
	}
	return &Logger{
		level:         config.Level,
		formatter:     GetFormatter(config.Format),
		output:        output,
		name:          config.Name,
		enableCaller:  config.EnableCaller,
		contextFields: make(Fields),
		writeMu:       &sync.Mutex{},
	}
}

// Discard returns a logger that writes nothing
func Discard() *Logger {
	return NewWithConfig(Config{Level: LevelFatal + 1, Output: io.Discard})
}

// WithLevel returns a copy logging at level
func (l *Logger) WithLevel(level Level) *Logger {
	c := l.clone()
	c.level = level
	return c
}

// WithFormat returns a copy using format
func (l *Logger) WithFormat(format Format) *Logger {
	c := l.clone()
	c.formatter = GetFormatter(format)
	return c
}

// WithOutput returns a copy writing to output
func (l *Logger) WithOutput(output io.Writer) *Logger {
	c := l.clone()
	c.output = output
	c.writeMu = &sync.Mutex{}
	return c
}

// WithName returns a copy tagged with a component name
func (l *Logger) WithName(name string) *Logger {
	c := l.clone()
	c.name = name
	return c
}

// WithRunID returns a copy tagging entries with a run id
func (l *Logger) WithRunID(runID string) *Logger {
	c := l.clone()
	c.runID = runID
	return c
}

// WithField returns a copy with one extra context field
func (l *Logger) WithField(key string, value interface{}) *Logger {
	c := l.clone()
	c.contextFields[key] = value
	return c
}

// WithFields returns a copy with extra context fields
func (l *Logger) WithFields(fields Fields) *Logger {
	c := l.clone()
	for k, v := range fields {
		c.contextFields[k] = v
	}
	return c
}

// WithCaller returns a copy that records the calling site
func (l *Logger) WithCaller(skip int) *Logger {
	c := l.clone()
	c.enableCaller = true
	c.callerSkipFrames = skip
	return c
}

func (l *Logger) Trace(message string, fields ...Fields) { l.log(LevelTrace, message, nil, fields...) }
func (l *Logger) Debug(message string, fields ...Fields) { l.log(LevelDebug, message, nil, fields...) }
func (l *Logger) Info(message string, fields ...Fields)  { l.log(LevelInfo, message, nil, fields...) }
func (l *Logger) Warn(message string, fields ...Fields)  { l.log(LevelWarn, message, nil, fields...) }
func (l *Logger) Error(message string, fields ...Fields) { l.log(LevelError, message, nil, fields...) }

// Fatal logs and exits the process
func (l *Logger) Fatal(message string, fields ...Fields) {
	l.log(LevelFatal, message, nil, fields...)
	os.Exit(1)
}

// ErrorWithErr logs message at error level with err attached
func (l *Logger) ErrorWithErr(message string, err error, fields ...Fields) {
	l.log(LevelError, message, err, fields...)
}

// WarnWithErr logs message at warn level with err attached
func (l *Logger) WarnWithErr(message string, err error, fields ...Fields) {
	l.log(LevelWarn, message, err, fields...)
}

// LogError logs err at a level derived from its severity
func (l *Logger) LogError(err error) {
	if err == nil {
		return
	}
	level := LevelError
	fields := Fields{}
	var rgErr *rgerror.Error
	if asRGError(err, &rgErr) {
		switch rgErr.Severity() {
		case rgerror.SeverityLow:
			level = LevelInfo
		case rgerror.SeverityMedium:
			level = LevelWarn
		case rgerror.SeverityHigh, rgerror.SeverityCritical:
			level = LevelError
		}
		fields["code"] = rgErr.Code().String()
		if op := rgErr.Operation(); op != "" {
			fields["operation"] = op
		}
	}
	l.log(level, err.Error(), err, fields)
}

// StartTimer starts timing an operation
func (l *Logger) StartTimer(operation string) *Timer {
	return NewTimer(l, operation)
}

// IsLevelEnabled reports whether level would be written
func (l *Logger) IsLevelEnabled(level Level) bool {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return level.ShouldLog(l.level)
}

// GetLevel returns the current minimum level
func (l *Logger) GetLevel() Level {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return l.level
}

// SetLevel changes the minimum level in place
func (l *Logger) SetLevel(level Level) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.level = level
}

func (l *Logger) log(level Level, message string, err error, fields ...Fields) {
	entry, formatter, output, writeMu := l.prepare(level, message, err, fields)
	if entry == nil {
		return
	}
	l.write(entry, formatter, output, writeMu)
}

func (l *Logger) prepare(level Level, message string, err error, fields []Fields) (*Entry, Formatter, io.Writer, *sync.Mutex) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	if !level.ShouldLog(l.level) {
		return nil, nil, nil, nil
	}

	entry := NewEntry(level, message)
	entry.Logger = l.name
	entry.RunID = l.runID
	entry.Error = err
	for k, v := range l.contextFields {
		entry.Fields[k] = v
	}
	for _, set := range fields {
		for k, v := range set {
			entry.Fields[k] = v
		}
	}
	if l.enableCaller {
		if function, file, line, ok := l.getCaller(); ok {
			entry.Caller = &CallerInfo{Function: function, File: file, Line: line}
		}
	}
	return entry, l.formatter, l.output, l.writeMu
}

func (l *Logger) write(entry *Entry, formatter Formatter, output io.Writer, writeMu *sync.Mutex) {
	data, err := formatter.Format(entry)
	if err != nil {
		return
	}
	writeMu.Lock()
	_, _ = output.Write(data)
	writeMu.Unlock()
}

func (l *Logger) getCaller() (function, file string, line int, ok bool) {
	// getCaller, prepare, log, public method, user code
	pc, file, line, ok := runtime.Caller(4 + l.callerSkipFrames)
	if !ok {
		return "", "", 0, false
	}
	function = "unknown"
	if fn := runtime.FuncForPC(pc); fn != nil {
		function = fn.Name()
		if idx := strings.LastIndex(function, "."); idx != -1 {
			function = function[idx+1:]
		}
	}
	if idx := strings.LastIndex(file, "/"); idx != -1 {
		file = file[idx+1:]
	}
	return function, file, line, true
}

func (l *Logger) clone() *Logger {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	c := &Logger{
		level:            l.level,
		formatter:        l.formatter,
		output:           l.output,
		name:             l.name,
		runID:            l.runID,
		enableCaller:     l.enableCaller,
		callerSkipFrames: l.callerSkipFrames,
		contextFields:    make(Fields, len(l.contextFields)),
		writeMu:          l.writeMu,
	}
	for k, v := range l.contextFields {
		c.contextFields[k] = v
	}
	return c
}

var (
	defaultLogger = New()
	defaultMu     sync.RWMutex
)

// GetDefault returns the process-wide logger
func GetDefault() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetDefault replaces the process-wide logger
func SetDefault(logger *Logger) {
	if logger == nil {
		return
	}
	defaultMu.Lock()
	defaultLogger = logger
	defaultMu.Unlock()
}

func Debug(message string, fields ...Fields) { GetDefault().log(LevelDebug, message, nil, fields...) }
func Info(message string, fields ...Fields)  { GetDefault().log(LevelInfo, message, nil, fields...) }
func Warn(message string, fields ...Fields)  { GetDefault().log(LevelWarn, message, nil, fields...) }
func Error(message string, fields ...Fields) { GetDefault().log(LevelError, message, nil, fields...) }
