// ============================================================================
// RoboGrid - Roboter-Raster-Interpreter
// ============================================================================
//
// Package:     robogrid
// Description: Main Bubbletea model for the RoboGrid TUI
// Author:      Mike Stoffels
// Created:     2026-10-18
// License:     MIT
// ============================================================================

package robogrid

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	rglog "github.com/msto63/robogrid/foundation/core/log"
	"github.com/msto63/robogrid/internal/board"
	"github.com/msto63/robogrid/internal/engine"
	"github.com/msto63/robogrid/internal/grid"
	"github.com/msto63/robogrid/internal/journal"
	"github.com/msto63/robogrid/internal/program"
	"github.com/msto63/robogrid/pkg/core/version"
)

// eventBuffer bounds the engine events waiting for the program loop. Engine
// calls made from Update only block once it is full.
const eventBuffer = 1024

// Engine is the engine surface the TUI drives
type Engine interface {
	Start(raw string)
	Stop()
	Resume()
	Restart()
	Rerun()
	Reset()
	Snapshot() engine.Snapshot
}

// Model is the main Bubbletea model for the RoboGrid TUI
type Model struct {
	// State
	width         int
	height        int
	ready         bool
	editorFocused bool
	activeLine    int
	outcome       *engine.Outcome

	// Components
	editor  textarea.Model
	spinner spinner.Model
	help    help.Model
	keys    keyMap

	engine Engine
	board  *board.Board
	events *bridge
}

// Config holds TUI configuration
type Config struct {
	Grid      *grid.Grid
	StepDelay time.Duration
	// Program is loaded into the editor on start
	Program string
	// Journal records outcomes when set
	Journal journal.Store
	Logger  *rglog.Logger
}

func newModel(eng Engine, b *board.Board, events *bridge, text string) Model {
	ta := textarea.New()
	ta.Placeholder = "Eine Anweisung pro Zeile:\nup, down, left, right,\nrotate, color"
	ta.ShowLineNumbers = true
	ta.CharLimit = 0
	ta.SetWidth(30)
	ta.SetHeight(12)
	ta.SetValue(text)
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(ColorPrimary)

	return Model{
		editorFocused: true,
		activeLine:    -1,
		editor:        ta,
		spinner:       sp,
		help:          help.New(),
		keys:          defaultKeyMap(),
		engine:        eng,
		board:         b,
		events:        events,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
		m.events.wait(),
	)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		return m, nil

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case robotMsg:
		return m, m.events.wait()

	case highlightMsg:
		m.activeLine = msg.index
		return m, m.events.wait()

	case clearMsg:
		m.activeLine = -1
		return m, m.events.wait()

	case programClearedMsg:
		m.activeLine = -1
		m.editor.Reset()
		return m, m.events.wait()

	case outcomeMsg:
		o := msg.outcome
		m.outcome = &o
		return m, m.events.wait()
	}

	if m.editorFocused {
		m.editor, cmd = m.editor.Update(msg)
	}
	return m, cmd
}

// handleKeyPress handles keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	// The outcome modal swallows everything until dismissed
	if m.outcome != nil {
		if key.Matches(msg, m.keys.Dismiss) {
			m.outcome = nil
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Run):
		m.engine.Start(m.editor.Value())
		return m, nil
	case key.Matches(msg, m.keys.Stop):
		m.engine.Stop()
		return m, nil
	case key.Matches(msg, m.keys.Resume):
		m.engine.Resume()
		return m, nil
	case key.Matches(msg, m.keys.Restart):
		m.engine.Restart()
		return m, nil
	case key.Matches(msg, m.keys.Reset):
		m.engine.Reset()
		return m, nil
	case key.Matches(msg, m.keys.Rerun):
		m.engine.Rerun()
		return m, nil
	case key.Matches(msg, m.keys.Focus):
		m.editorFocused = !m.editorFocused
		if m.editorFocused {
			return m, m.editor.Focus()
		}
		m.editor.Blur()
		return m, nil
	}

	if m.editorFocused {
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		m.appendCommand(program.MoveUp)
	case key.Matches(msg, m.keys.Down):
		m.appendCommand(program.MoveDown)
	case key.Matches(msg, m.keys.Left):
		m.appendCommand(program.MoveLeft)
	case key.Matches(msg, m.keys.Right):
		m.appendCommand(program.MoveRight)
	case key.Matches(msg, m.keys.Rotate):
		m.appendCommand(program.Rotate)
	case key.Matches(msg, m.keys.Color):
		m.appendCommand(program.Color)
	}
	return m, nil
}

// appendCommand adds a command as a new last line of the editor
func (m *Model) appendCommand(kind program.Kind) {
	value := m.editor.Value()
	if value != "" && !strings.HasSuffix(value, "\n") {
		value += "\n"
	}
	m.editor.SetValue(value + kind.String())
}

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "Lade RoboGrid..."
	}
	if m.outcome != nil {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.renderModal())
	}

	snap := m.engine.Snapshot()

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	left := lipgloss.JoinVertical(lipgloss.Left,
		m.renderEditor(),
		m.renderListing(snap),
	)
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		left,
		" ",
		m.renderBoard(),
		" ",
		m.renderQueue(snap),
	)
	b.WriteString(body)
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar(snap))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return b.String()
}

// renderHeader renders the header with logo and version
func (m Model) renderHeader() string {
	header := lipgloss.JoinHorizontal(lipgloss.Center,
		LogoStyle.Render(Logo),
		strings.Repeat(" ", 3),
		HelpDescStyle.Render("v"+version.TUI),
	)
	return TitlePanelStyle.Render(header)
}

func (m Model) renderEditor() string {
	style := PanelStyle
	title := "Programm"
	if m.editorFocused {
		style = FocusedPanelStyle
	} else {
		title += " (↑↓←→ r c fügen hinzu)"
	}
	return style.Render(PanelTitleStyle.Render(title) + "\n" + m.editor.View())
}

// renderListing shows the parsed program with the active command marked
func (m Model) renderListing(snap engine.Snapshot) string {
	var b strings.Builder
	b.WriteString(PanelTitleStyle.Render("Ablauf"))
	if len(snap.Program) == 0 {
		b.WriteString("\n" + HelpDescStyle.Render("(kein Programm)"))
	}
	for i, cmd := range snap.Program {
		line := fmt.Sprintf("%s %s", LineNumberStyle.Render(fmt.Sprintf("%3d", cmd.Line+1)), cmd.String())
		switch {
		case i == m.activeLine && snap.Status == engine.StatusFailed:
			line = FailedLineStyle.Render(line)
		case i == m.activeLine:
			line = ActiveLineStyle.Render(line)
		case cmd.Kind == program.Unknown:
			line = UnknownCommandStyle.Render(line)
		default:
			line = CommandStyle.Render(line)
		}
		b.WriteString("\n" + line)
	}
	return PanelStyle.Render(b.String())
}

func (m Model) renderBoard() string {
	return PanelStyle.Render(PanelTitleStyle.Render("Raster") + "\n" + m.board.Render(true))
}

// renderQueue lists the commands still to execute
func (m Model) renderQueue(snap engine.Snapshot) string {
	var b strings.Builder
	b.WriteString(PanelTitleStyle.Render("Warteschlange"))

	var queue program.Program
	switch snap.Status {
	case engine.StatusRunning, engine.StatusStopped, engine.StatusFailed:
		queue = snap.Remaining
	}
	if len(queue) == 0 {
		b.WriteString("\n" + HelpDescStyle.Render("(leer)"))
	}
	for _, cmd := range queue {
		b.WriteString("\n" + CommandStyle.Render(cmd.String()))
	}
	return PanelStyle.Render(b.String())
}

// renderStatusBar renders the status bar
func (m Model) renderStatusBar(snap engine.Snapshot) string {
	leftPart := RenderStatus(snap.Status)
	if snap.Status == engine.StatusRunning {
		leftPart = m.spinner.View() + " " + leftPart
	}

	centerPart := HelpDescStyle.Render(fmt.Sprintf("Position (%d, %d)  Befehle: %d",
		snap.Robot.X, snap.Robot.Y, len(snap.Program)))

	rightPart := HelpDescStyle.Render("Lauf: -")
	if snap.RunID != "" {
		rightPart = HelpDescStyle.Render("Lauf: " + shortID(snap.RunID))
	}

	leftLen := lipgloss.Width(leftPart)
	centerLen := lipgloss.Width(centerPart)
	rightLen := lipgloss.Width(rightPart)
	availableSpace := m.width - leftLen - centerLen - rightLen - 4
	if availableSpace < 2 {
		availableSpace = 2
	}
	leftPadding := availableSpace / 2
	rightPadding := availableSpace - leftPadding

	content := leftPart + strings.Repeat(" ", leftPadding) + centerPart + strings.Repeat(" ", rightPadding) + rightPart
	return StatusBarStyle.Width(m.width - 2).Render(content)
}

func (m Model) renderModal() string {
	o := m.outcome
	var title string
	switch o.Kind {
	case engine.OutcomeSuccess:
		title = "Erfolg"
	case engine.OutcomeNoActions:
		title = "Hinweis"
	default:
		title = "Fehler"
	}
	content := lipgloss.JoinVertical(lipgloss.Center,
		lipgloss.NewStyle().Bold(true).Foreground(modalColor(o.Kind)).Render(title),
		"",
		o.Message,
		"",
		ModalHintStyle.Render("Enter zum Schließen"),
	)
	return ModalStyle.BorderForeground(modalColor(o.Kind)).Render(content)
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// Run starts the RoboGrid TUI
func Run(cfg Config) error {
	if cfg.Grid == nil {
		cfg.Grid = grid.Default()
	}
	if cfg.Logger == nil {
		cfg.Logger = rglog.Discard()
	}

	b := board.New(cfg.Grid)
	events := newBridge(eventBuffer)
	defer events.close()

	reporters := engine.Reporters{events}
	if cfg.Journal != nil {
		reporters = append(reporters, journal.NewReporter(cfg.Journal, cfg.Logger))
	}

	eng := engine.New(engine.Options{
		Grid:      cfg.Grid,
		StepDelay: cfg.StepDelay,
		Renderer:  engine.Renderers{b, events},
		Reporter:  reporters,
		Logger:    cfg.Logger,
	})
	defer eng.Stop()

	p := tea.NewProgram(newModel(eng, b, events, cfg.Program), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
