// ============================================================================
// RoboGrid - Roboter-Raster-Interpreter
// ============================================================================
//
// Package:     engine
// Description: Run state, outcomes and notification contracts
// Author:      Mike Stoffels
// Created:     2026-10-18
// License:     MIT
// ============================================================================

package engine

import (
	"time"

	rgerror "github.com/msto63/robogrid/foundation/core/error"
	"github.com/msto63/robogrid/internal/grid"
	"github.com/msto63/robogrid/internal/program"
)

// User-facing outcome messages
const (
	MessageNoActions   = "No actions to execute! Please add actions first."
	MessageComplete    = "Execution complete!"
	UnknownCommandText = "Unknown command: "
)

// Status is the lifecycle state of the engine
type Status int

const (
	StatusIdle Status = iota
	StatusRunning
	StatusStopped
	StatusCompleted
	StatusFailed
)

// String returns the status name
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	case StatusStopped:
		return "stopped"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status by name
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Terminal reports whether a run in this status has ended
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// PaintKind tells a renderer how to mark the cell the robot ends up on
type PaintKind int

const (
	PaintNone PaintKind = iota
	PaintTrail
	PaintColor
)

// String returns the paint kind name
func (k PaintKind) String() string {
	switch k {
	case PaintTrail:
		return "trail"
	case PaintColor:
		return "paint"
	default:
		return "none"
	}
}

// MarshalText encodes the paint kind by name
func (k PaintKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// OutcomeKind classifies how a run ended
type OutcomeKind int

const (
	OutcomeNoActions OutcomeKind = iota
	OutcomeSuccess
	OutcomeError
)

// String returns the outcome kind name
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeNoActions:
		return "no_actions"
	case OutcomeSuccess:
		return "success"
	case OutcomeError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText encodes the outcome kind by name
func (k OutcomeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ParseOutcomeKind is the inverse of OutcomeKind.String
func ParseOutcomeKind(s string) (OutcomeKind, bool) {
	switch s {
	case "no_actions":
		return OutcomeNoActions, true
	case "success":
		return OutcomeSuccess, true
	case "error":
		return OutcomeError, true
	default:
		return 0, false
	}
}

// Outcome is reported exactly once per run
type Outcome struct {
	RunID    string        `json:"run_id"`
	Kind     OutcomeKind   `json:"kind"`
	Message  string        `json:"message"`
	Code     rgerror.Code  `json:"code,omitempty"`
	Steps    int           `json:"steps"`
	Commands int           `json:"commands"`
	Position grid.Position `json:"position"`
	At       time.Time     `json:"at"`
}

// Snapshot is a copy of the engine state for presentation layers
type Snapshot struct {
	RunID      string          `json:"run_id,omitempty"`
	Status     Status          `json:"status"`
	Program    program.Program `json:"program"`
	Cursor     int             `json:"cursor"`
	Remaining  program.Program `json:"remaining"`
	Robot      grid.Position   `json:"robot"`
	StartedAt  time.Time       `json:"started_at,omitempty"`
	GridWidth  int             `json:"grid_width"`
	GridHeight int             `json:"grid_height"`
}

// ActiveLine returns the source line of the command at the cursor, or -1
func (s Snapshot) ActiveLine() int {
	if s.Cursor < 0 || s.Cursor >= len(s.Program) {
		return -1
	}
	return s.Program[s.Cursor].Line
}
