// ============================================================================
// RoboGrid - Roboter-Raster-Interpreter
// ============================================================================
//
// Package:     program
// Description: Parser turning authored text into robot commands
// Author:      Mike Stoffels
// Created:     2026-10-18
// License:     MIT
// ============================================================================

package program

import (
	"strings"

	"github.com/msto63/robogrid/internal/grid"
)

// Kind is the closed set of command kinds
type Kind int

const (
	MoveUp Kind = iota
	MoveDown
	MoveLeft
	MoveRight
	Rotate
	Color
	Unknown
)

var tokens = map[string]Kind{
	"up":     MoveUp,
	"down":   MoveDown,
	"left":   MoveLeft,
	"right":  MoveRight,
	"rotate": Rotate,
	"color":  Color,
}

// Vocabulary lists the accepted tokens in display order
var Vocabulary = []string{"up", "down", "left", "right", "rotate", "color"}

// String returns the token of a known kind, "unknown" otherwise
func (k Kind) String() string {
	switch k {
	case MoveUp:
		return "up"
	case MoveDown:
		return "down"
	case MoveLeft:
		return "left"
	case MoveRight:
		return "right"
	case Rotate:
		return "rotate"
	case Color:
		return "color"
	default:
		return "unknown"
	}
}

// IsMove reports whether the kind changes the robot position
func (k Kind) IsMove() bool {
	return k <= MoveRight
}

// Direction returns the grid direction of a move kind
func (k Kind) Direction() (grid.Direction, bool) {
	switch k {
	case MoveUp:
		return grid.Up, true
	case MoveDown:
		return grid.Down, true
	case MoveLeft:
		return grid.Left, true
	case MoveRight:
		return grid.Right, true
	default:
		return 0, false
	}
}

// Command is one parsed line
type Command struct {
	Kind Kind `json:"kind"`
	// Text is the trimmed source line
	Text string `json:"text"`
	// Line is the 0-based line in the authored text
	Line int `json:"line"`
}

// String returns the command as it appears in source
func (c Command) String() string {
	if c.Kind == Unknown {
		return c.Text
	}
	return c.Kind.String()
}

// Program is the ordered command sequence of a run
type Program []Command

// Parse splits raw on newlines, trims every line and maps it to a command.
// Blank lines are skipped; unrecognised text becomes an Unknown command.
// Parse never fails.
func Parse(raw string) Program {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	lines := strings.Split(raw, "\n")
	prog := make(Program, 0, len(lines))
	for i, line := range lines {
		text := strings.TrimSpace(line)
		if text == "" {
			continue
		}
		kind, ok := tokens[text]
		if !ok {
			kind = Unknown
		}
		prog = append(prog, Command{Kind: kind, Text: text, Line: i})
	}
	return prog
}

// Len returns the number of commands
func (p Program) Len() int { return len(p) }

// Empty reports whether the program has no commands
func (p Program) Empty() bool { return len(p) == 0 }

// Remaining returns the commands not yet executed at cursor
func (p Program) Remaining(cursor int) Program {
	if cursor < 0 {
		cursor = 0
	}
	if cursor >= len(p) {
		return nil
	}
	return p[cursor:]
}

// Tokens returns the source token of every command
func (p Program) Tokens() []string {
	out := make([]string, len(p))
	for i, c := range p {
		out[i] = c.String()
	}
	return out
}

// String renders one token per line. Parse(p.String()) yields the same
// kinds and texts; line numbers are renumbered without blank lines.
func (p Program) String() string {
	return strings.Join(p.Tokens(), "\n")
}

// Validate returns the Unknown commands of p
func Validate(p Program) []Command {
	var bad []Command
	for _, c := range p {
		if c.Kind == Unknown {
			bad = append(bad, c)
		}
	}
	return bad
}
