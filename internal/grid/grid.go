// ============================================================================
// RoboGrid - Roboter-Raster-Interpreter
// ============================================================================
//
// Package:     grid
// Description: Bounded 2D coordinate space the robot moves on
// Author:      Mike Stoffels
// Created:     2026-10-18
// License:     MIT
// ============================================================================

package grid

import (
	"fmt"

	rgerror "github.com/msto63/robogrid/foundation/core/error"
)

// DefaultSize is the width and height used when none is configured
const DefaultSize = 15

// OutOfBoundsMessage is the user-facing text for a rejected move
const OutOfBoundsMessage = "Robot is out of grid bounds!"

// Position is a cell on the grid. X grows to the right, Y grows downwards.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// String returns "(x,y)"
func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Direction is a unit move
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

// String returns the command token for the direction
func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// Delta returns the coordinate change of one step in d
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	default:
		return 0, 0
	}
}

// Grid is an immutable Width x Height coordinate space
type Grid struct {
	width  int
	height int
}

// New creates a grid. Non-positive dimensions are rejected.
func New(width, height int) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, rgerror.Newf("invalid grid size %dx%d", width, height).
			WithCode(rgerror.CodeInvalidConfig).
			WithDetail("width", width).
			WithDetail("height", height)
	}
	return &Grid{width: width, height: height}, nil
}

// Default returns a DefaultSize x DefaultSize grid
func Default() *Grid {
	return &Grid{width: DefaultSize, height: DefaultSize}
}

// Width returns the number of columns
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows
func (g *Grid) Height() int { return g.height }

// Origin is the top-left cell every run starts from
func (g *Grid) Origin() Position { return Position{} }

// Contains reports whether p lies inside the grid
func (g *Grid) Contains(p Position) bool {
	return p.X >= 0 && p.X < g.width && p.Y >= 0 && p.Y < g.height
}

// TryMove applies one step in d. A step leaving the grid is rejected with an
// OUT_OF_BOUNDS error and the original position is returned unchanged.
func (g *Grid) TryMove(p Position, d Direction) (Position, error) {
	dx, dy := d.Delta()
	next := Position{X: p.X + dx, Y: p.Y + dy}
	if !g.Contains(next) {
		return p, OutOfBounds(p, d)
	}
	return next, nil
}

// OutOfBounds builds the error returned for a rejected move
func OutOfBounds(from Position, d Direction) *rgerror.Error {
	return rgerror.New(OutOfBoundsMessage).
		WithCode(rgerror.CodeOutOfBounds).
		WithOperation("grid.move").
		WithDetail("x", from.X).
		WithDetail("y", from.Y).
		WithDetail("direction", d.String())
}
