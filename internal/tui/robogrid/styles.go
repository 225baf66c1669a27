// ============================================================================
// RoboGrid - Roboter-Raster-Interpreter
// ============================================================================
//
// Package:     robogrid
// Description: Styles for the RoboGrid TUI
// Author:      Mike Stoffels
// Created:     2026-10-18
// License:     MIT
// ============================================================================

package robogrid

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/msto63/robogrid/internal/engine"
)

// Color Palette
var (
	ColorPrimary   = lipgloss.Color("#8B5CF6") // Violet
	ColorSecondary = lipgloss.Color("#06B6D4") // Cyan
	ColorSuccess   = lipgloss.Color("#10B981") // Emerald
	ColorWarning   = lipgloss.Color("#F59E0B") // Amber
	ColorError     = lipgloss.Color("#EF4444") // Red
	ColorDimmed    = lipgloss.Color("#374151") // Dark Gray

	ColorBgPanel    = lipgloss.Color("#1E293B") // Slate 800
	ColorBgSelected = lipgloss.Color("#3B0764") // Purple 950

	ColorText      = lipgloss.Color("#F8FAFC") // Slate 50
	ColorTextMuted = lipgloss.Color("#94A3B8") // Slate 400
	ColorTextDim   = lipgloss.Color("#64748B") // Slate 500
)

// Header styles
var (
	LogoStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	TitlePanelStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 2)

	PanelTitleStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary).
			Bold(true)
)

// Panel styles
var (
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorDimmed).
			Padding(0, 1)

	FocusedPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorPrimary).
				Padding(0, 1)
)

// Program listing styles
var (
	LineNumberStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)

	CommandStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	UnknownCommandStyle = lipgloss.NewStyle().
				Foreground(ColorWarning)

	ActiveLineStyle = lipgloss.NewStyle().
			Background(ColorBgSelected).
			Foreground(ColorText).
			Bold(true)

	FailedLineStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#450A0A")).
			Foreground(ColorError).
			Bold(true)
)

// Status bar styles
var (
	StatusBarStyle = lipgloss.NewStyle().
			Background(ColorBgPanel).
			Foreground(ColorText).
			Padding(0, 1)

	StatusRunningStyle = lipgloss.NewStyle().
				Foreground(ColorSuccess).
				Bold(true)

	StatusStoppedStyle = lipgloss.NewStyle().
				Foreground(ColorWarning).
				Bold(true)

	StatusFailedStyle = lipgloss.NewStyle().
				Foreground(ColorError).
				Bold(true)

	StatusIdleStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)
)

// Modal styles
var (
	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			Padding(1, 4).
			Align(lipgloss.Center)

	ModalHintStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim).
			Italic(true)
)

// Logo
const Logo = "RoboGrid"

// statusLabel returns the German label for a status
func statusLabel(s engine.Status) string {
	switch s {
	case engine.StatusRunning:
		return "Läuft"
	case engine.StatusStopped:
		return "Angehalten"
	case engine.StatusCompleted:
		return "Abgeschlossen"
	case engine.StatusFailed:
		return "Fehler"
	default:
		return "Bereit"
	}
}

// RenderStatus renders a status badge
func RenderStatus(s engine.Status) string {
	label := statusLabel(s)
	switch s {
	case engine.StatusRunning, engine.StatusCompleted:
		return StatusRunningStyle.Render(label)
	case engine.StatusStopped:
		return StatusStoppedStyle.Render(label)
	case engine.StatusFailed:
		return StatusFailedStyle.Render(label)
	default:
		return StatusIdleStyle.Render(label)
	}
}

// modalColor picks the border color for an outcome
func modalColor(kind engine.OutcomeKind) lipgloss.Color {
	switch kind {
	case engine.OutcomeSuccess:
		return ColorSuccess
	case engine.OutcomeNoActions:
		return ColorWarning
	default:
		return ColorError
	}
}
