// ============================================================================
// RoboGrid - Roboter-Raster-Interpreter
// ============================================================================
//
// Package:     engine
// Description: Renderer and Reporter contracts and their fan-outs
// Author:      Mike Stoffels
// Created:     2026-10-18
// License:     MIT
// ============================================================================

package engine

import "github.com/msto63/robogrid/internal/grid"

// Renderer receives visual updates. Calls arrive in transition order from a
// single goroutine at a time; implementations may call Engine.Snapshot but
// must not call state-changing engine methods synchronously.
type Renderer interface {
	SetRobot(pos grid.Position, paint PaintKind)
	// HighlightLine marks the command at index as active
	HighlightLine(index int)
	// ClearHighlights drops the active line and all cell marks
	ClearHighlights()
	// ClearProgram drops the authored program
	ClearProgram()
}

// Reporter receives the terminal outcome of every run. The same rules as for
// Renderer apply.
type Reporter interface {
	OnOutcome(o Outcome)
}

// ReporterFunc adapts a function to Reporter
type ReporterFunc func(Outcome)

// OnOutcome calls f
func (f ReporterFunc) OnOutcome(o Outcome) { f(o) }

// NopRenderer ignores all updates
type NopRenderer struct{}

func (NopRenderer) SetRobot(grid.Position, PaintKind) {}
func (NopRenderer) HighlightLine(int)                 {}
func (NopRenderer) ClearHighlights()                  {}
func (NopRenderer) ClearProgram()                     {}

// Renderers fans every update out to each renderer in order
type Renderers []Renderer

// SetRobot forwards the robot position to every renderer
func (rs Renderers) SetRobot(pos grid.Position, paint PaintKind) {
	for _, r := range rs {
		r.SetRobot(pos, paint)
	}
}

// HighlightLine forwards the active index to every renderer
func (rs Renderers) HighlightLine(index int) {
	for _, r := range rs {
		r.HighlightLine(index)
	}
}

// ClearHighlights clears every renderer
func (rs Renderers) ClearHighlights() {
	for _, r := range rs {
		r.ClearHighlights()
	}
}

// ClearProgram forwards the program reset to every renderer
func (rs Renderers) ClearProgram() {
	for _, r := range rs {
		r.ClearProgram()
	}
}

// Reporters fans every outcome out to each reporter in order
type Reporters []Reporter

// OnOutcome forwards o to every reporter
func (rs Reporters) OnOutcome(o Outcome) {
	for _, r := range rs {
		r.OnOutcome(o)
	}
}
