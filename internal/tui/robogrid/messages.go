// ============================================================================
// RoboGrid - Roboter-Raster-Interpreter
// ============================================================================
//
// Package:     robogrid
// Description: Engine events delivered as Bubbletea messages
// Author:      Mike Stoffels
// Created:     2026-10-18
// License:     MIT
// ============================================================================

package robogrid

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/msto63/robogrid/internal/engine"
	"github.com/msto63/robogrid/internal/grid"
)

// robotMsg is sent when the robot moved or marked its cell
type robotMsg struct {
	pos   grid.Position
	paint engine.PaintKind
}

// highlightMsg is sent when a command becomes active
type highlightMsg struct {
	index int
}

// clearMsg is sent when highlights and marks are dropped
type clearMsg struct{}

// programClearedMsg is sent when the authored program must be emptied
type programClearedMsg struct{}

// outcomeMsg carries the terminal outcome of a run
type outcomeMsg struct {
	outcome engine.Outcome
}

// bridge turns renderer and reporter calls into messages for the program
// loop. Calls block while the buffer is full until the loop drains it or the
// bridge is closed.
type bridge struct {
	events chan tea.Msg
	done   chan struct{}
}

var (
	_ engine.Renderer = (*bridge)(nil)
	_ engine.Reporter = (*bridge)(nil)
)

func newBridge(size int) *bridge {
	return &bridge{
		events: make(chan tea.Msg, size),
		done:   make(chan struct{}),
	}
}

func (b *bridge) send(msg tea.Msg) {
	select {
	case b.events <- msg:
	case <-b.done:
	}
}

func (b *bridge) SetRobot(pos grid.Position, paint engine.PaintKind) {
	b.send(robotMsg{pos: pos, paint: paint})
}

func (b *bridge) HighlightLine(index int) { b.send(highlightMsg{index: index}) }
func (b *bridge) ClearHighlights()        { b.send(clearMsg{}) }
func (b *bridge) ClearProgram()           { b.send(programClearedMsg{}) }
func (b *bridge) OnOutcome(o engine.Outcome) {
	b.send(outcomeMsg{outcome: o})
}

// close releases any sender blocked on a full buffer
func (b *bridge) close() {
	select {
	case <-b.done:
	default:
		close(b.done)
	}
}

// wait returns a command that delivers the next engine event
func (b *bridge) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-b.events:
			return msg
		case <-b.done:
			return nil
		}
	}
}
