// ============================================================================
// RoboGrid - Roboter-Raster-Interpreter
// ============================================================================
//
// Package:     board
// Description: Thread-safe board state and text rendering of the grid
// Author:      Mike Stoffels
// Created:     2026-10-18
// License:     MIT
// ============================================================================

package board

import (
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/msto63/robogrid/internal/engine"
	"github.com/msto63/robogrid/internal/grid"
)

// Cell glyphs
const (
	GlyphRobot = "@"
	GlyphTrail = "·"
	GlyphPaint = "█"
	GlyphEmpty = " "
)

// Cell names used by Cells
const (
	CellEmpty = ""
	CellTrail = "trail"
	CellPaint = "paint"
	CellRobot = "robot"
)

var (
	robotStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F8FAFC")).Bold(true)
	trailStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#A855F7"))
	paintStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FB6B25"))
	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#6B7280"))
)

// Board mirrors what the engine has drawn. It implements engine.Renderer.
type Board struct {
	mu         sync.RWMutex
	width      int
	height     int
	robot      grid.Position
	marks      map[grid.Position]engine.PaintKind
	activeLine int
	version    uint64
}

var _ engine.Renderer = (*Board)(nil)

// New creates an empty board for g with the robot at the origin
func New(g *grid.Grid) *Board {
	return &Board{
		width:      g.Width(),
		height:     g.Height(),
		robot:      g.Origin(),
		marks:      make(map[grid.Position]engine.PaintKind),
		activeLine: -1,
	}
}

// SetRobot moves the robot and marks its cell. Paint is never downgraded
// to trail.
func (b *Board) SetRobot(pos grid.Position, paint engine.PaintKind) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.robot = pos
	switch paint {
	case engine.PaintColor:
		b.marks[pos] = engine.PaintColor
	case engine.PaintTrail:
		if b.marks[pos] != engine.PaintColor {
			b.marks[pos] = engine.PaintTrail
		}
	}
	b.version++
}

// HighlightLine records the active command index
func (b *Board) HighlightLine(index int) {
	b.mu.Lock()
	b.activeLine = index
	b.version++
	b.mu.Unlock()
}

// ClearHighlights drops the active line and all marks
func (b *Board) ClearHighlights() {
	b.mu.Lock()
	b.activeLine = -1
	b.marks = make(map[grid.Position]engine.PaintKind)
	b.version++
	b.mu.Unlock()
}

// ClearProgram drops the active line; the board holds no program text
func (b *Board) ClearProgram() {
	b.mu.Lock()
	b.activeLine = -1
	b.version++
	b.mu.Unlock()
}

// Robot returns the robot position
func (b *Board) Robot() grid.Position {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.robot
}

// ActiveLine returns the highlighted command index, or -1
func (b *Board) ActiveLine() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.activeLine
}

// Mark returns the mark of a cell
func (b *Board) Mark(p grid.Position) engine.PaintKind {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.marks[p]
}

// Version increases on every change
func (b *Board) Version() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.version
}

// Cells returns the board row by row using the Cell* names
func (b *Board) Cells() [][]string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	rows := make([][]string, b.height)
	for y := 0; y < b.height; y++ {
		row := make([]string, b.width)
		for x := 0; x < b.width; x++ {
			row[x] = b.cellNameLocked(grid.Position{X: x, Y: y})
		}
		rows[y] = row
	}
	return rows
}

func (b *Board) cellNameLocked(p grid.Position) string {
	if p == b.robot {
		return CellRobot
	}
	switch b.marks[p] {
	case engine.PaintTrail:
		return CellTrail
	case engine.PaintColor:
		return CellPaint
	default:
		return CellEmpty
	}
}

// Render draws the board. With color the cells are styled and the grid is
// framed; without it the output is plain text, one row per line.
func (b *Board) Render(color bool) string {
	cells := b.Cells()
	lines := make([]string, len(cells))
	for y, row := range cells {
		glyphs := make([]string, len(row))
		for x, name := range row {
			glyphs[x] = glyph(name, color)
		}
		lines[y] = strings.Join(glyphs, " ")
	}
	out := strings.Join(lines, "\n")
	if color {
		return frameStyle.Render(out)
	}
	return out
}

func glyph(name string, color bool) string {
	var g string
	var style lipgloss.Style
	switch name {
	case CellRobot:
		g, style = GlyphRobot, robotStyle
	case CellTrail:
		g, style = GlyphTrail, trailStyle
	case CellPaint:
		g, style = GlyphPaint, paintStyle
	default:
		return GlyphEmpty
	}
	if !color {
		return g
	}
	return style.Render(g)
}
