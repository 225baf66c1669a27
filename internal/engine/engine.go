// ============================================================================
// RoboGrid - Roboter-Raster-Interpreter
// ============================================================================
//
// Package:     engine
// Description: Paced command execution state machine
// Author:      Mike Stoffels
// Created:     2026-10-18
// License:     MIT
// ============================================================================

package engine

import (
	"sync"
	"time"

	"github.com/google/uuid"

	rgerror "github.com/msto63/robogrid/foundation/core/error"
	rglog "github.com/msto63/robogrid/foundation/core/log"
	"github.com/msto63/robogrid/internal/grid"
	"github.com/msto63/robogrid/internal/program"
)

// DefaultStepDelay is the pause between two commands
const DefaultStepDelay = 500 * time.Millisecond

// Options configures an Engine
type Options struct {
	Grid      *grid.Grid
	Scheduler Scheduler
	StepDelay time.Duration
	Renderer  Renderer
	Reporter  Reporter
	Logger    *rglog.Logger
}

// Engine steps a robot through a program, one command per tick.
// All methods return immediately; steps run on the scheduler.
type Engine struct {
	grid      *grid.Grid
	scheduler Scheduler
	delay     time.Duration
	renderer  Renderer
	reporter  Reporter
	logger    *rglog.Logger

	mu    sync.Mutex
	state runState
	// generation is bumped on every cancel; a callback scheduled under an
	// older generation does nothing.
	generation uint64
	cancel     CancelFunc

	// notifyMu is taken before mu is released so deliveries keep the
	// order of the transitions that produced them.
	notifyMu sync.Mutex
}

type runState struct {
	id        string
	program   program.Program
	cursor    int
	status    Status
	robot     grid.Position
	startedAt time.Time
}

// notification is a deferred call into the renderer or reporter
type notification func()

// New creates an Engine
func New(opts Options) *Engine {
	if opts.Grid == nil {
		opts.Grid = grid.Default()
	}
	if opts.Scheduler == nil {
		opts.Scheduler = TimerScheduler{}
	}
	if opts.StepDelay <= 0 {
		opts.StepDelay = DefaultStepDelay
	}
	if opts.Renderer == nil {
		opts.Renderer = NopRenderer{}
	}
	if opts.Reporter == nil {
		opts.Reporter = ReporterFunc(func(Outcome) {})
	}
	if opts.Logger == nil {
		opts.Logger = rglog.GetDefault()
	}

	return &Engine{
		grid:      opts.Grid,
		scheduler: opts.Scheduler,
		delay:     opts.StepDelay,
		renderer:  opts.Renderer,
		reporter:  opts.Reporter,
		logger:    opts.Logger.WithField("component", "engine"),
		state:     runState{robot: opts.Grid.Origin()},
	}
}

// Grid returns the grid the robot moves on
func (e *Engine) Grid() *grid.Grid { return e.grid }

// StepDelay returns the pause between two commands
func (e *Engine) StepDelay() time.Duration { return e.delay }

// Start parses raw and begins a new run from the robot's current position,
// cancelling any pending step. An empty program reports NoActions and
// leaves the state and a run in progress untouched.
func (e *Engine) Start(raw string) {
	prog := program.Parse(raw)
	e.mu.Lock()
	e.begin(prog)
}

// Rerun starts a new run over the retained program
func (e *Engine) Rerun() {
	e.mu.Lock()
	e.begin(e.state.program)
}

// begin is called with mu held and releases it. The pending step is only
// cancelled once a new run actually begins.
func (e *Engine) begin(prog program.Program) {
	if prog.Empty() {
		o := Outcome{
			RunID:    uuid.NewString(),
			Kind:     OutcomeNoActions,
			Message:  MessageNoActions,
			Code:     rgerror.CodeNoActions,
			Position: e.state.robot,
			At:       time.Now(),
		}
		e.logger.WithRunID(o.RunID).Info("nothing to run", rglog.Fields{"status": e.state.status.String()})
		e.deliver(func() { e.reporter.OnOutcome(o) })
		return
	}

	e.cancelLocked()
	e.state.id = uuid.NewString()
	e.state.program = prog
	e.state.cursor = 0
	e.state.status = StatusRunning
	e.state.startedAt = time.Now()
	robot := e.state.robot

	e.logger.WithRunID(e.state.id).Info("run started", rglog.Fields{
		"commands": prog.Len(),
		"x":        robot.X,
		"y":        robot.Y,
	})
	e.scheduleLocked()
	e.deliver(func() { e.renderer.SetRobot(robot, PaintNone) })
}

// Stop pauses a running program. It is a no-op in any other state.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.state.status != StatusRunning {
		e.mu.Unlock()
		return
	}
	e.cancelLocked()
	e.state.status = StatusStopped
	e.logger.WithRunID(e.state.id).Debug("run stopped", rglog.Fields{"cursor": e.state.cursor})
	e.mu.Unlock()
}

// Resume continues a stopped run from its cursor. It is a no-op in any
// other state.
func (e *Engine) Resume() {
	e.mu.Lock()
	if e.state.status != StatusStopped {
		e.mu.Unlock()
		return
	}
	e.cancelLocked()
	e.state.status = StatusRunning
	e.logger.WithRunID(e.state.id).Debug("run resumed", rglog.Fields{"cursor": e.state.cursor})
	e.scheduleLocked()
	e.mu.Unlock()
}

// Restart returns the robot to the origin and clears all marks. The
// program is kept for Rerun.
func (e *Engine) Restart() {
	e.mu.Lock()
	e.resetLocked()
	e.logger.Debug("restart")
	origin := e.state.robot
	e.deliver(func() {
		e.renderer.ClearHighlights()
		e.renderer.SetRobot(origin, PaintNone)
	})
}

// Reset is Restart plus discarding the program
func (e *Engine) Reset() {
	e.mu.Lock()
	e.resetLocked()
	e.state.program = nil
	e.logger.Debug("reset")
	origin := e.state.robot
	e.deliver(func() {
		e.renderer.ClearHighlights()
		e.renderer.SetRobot(origin, PaintNone)
		e.renderer.ClearProgram()
	})
}

func (e *Engine) resetLocked() {
	e.cancelLocked()
	e.state.id = ""
	e.state.cursor = 0
	e.state.status = StatusIdle
	e.state.robot = e.grid.Origin()
	e.state.startedAt = time.Time{}
}

// Snapshot returns a copy of the current state
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	prog := append(program.Program(nil), e.state.program...)
	return Snapshot{
		RunID:      e.state.id,
		Status:     e.state.status,
		Program:    prog,
		Cursor:     e.state.cursor,
		Remaining:  prog.Remaining(e.state.cursor),
		Robot:      e.state.robot,
		StartedAt:  e.state.startedAt,
		GridWidth:  e.grid.Width(),
		GridHeight: e.grid.Height(),
	}
}

// Status returns the current status
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.status
}

func (e *Engine) cancelLocked() {
	e.generation++
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

func (e *Engine) scheduleLocked() {
	gen := e.generation
	e.cancel = e.scheduler.Schedule(func() { e.step(gen) }, e.delay)
}

// step executes the command at the cursor
func (e *Engine) step(gen uint64) {
	e.mu.Lock()
	if gen != e.generation || e.state.status != StatusRunning {
		e.mu.Unlock()
		return
	}
	e.cancel = nil

	s := &e.state
	logger := e.logger.WithRunID(s.id)

	if s.cursor >= len(s.program) {
		s.status = StatusCompleted
		o := e.outcomeLocked(OutcomeSuccess, MessageComplete, "", len(s.program))
		s.cursor = 0
		logger.Info("run completed", rglog.Fields{"steps": o.Steps, "x": o.Position.X, "y": o.Position.Y})
		e.deliver(func() { e.reporter.OnOutcome(o) })
		return
	}

	index := s.cursor
	cmd := s.program[index]
	next, paint, err := e.apply(s.robot, cmd)
	if err != nil {
		s.status = StatusFailed
		o := e.outcomeLocked(OutcomeError, err.Error(), rgerror.GetCode(err), index)
		logger.LogError(rgerror.Wrapf(err, "command %d failed", index))
		e.deliver(func() {
			e.renderer.HighlightLine(index)
			e.reporter.OnOutcome(o)
		})
		return
	}

	s.robot = next
	s.cursor++
	logger.Trace("step", rglog.Fields{"index": index, "command": cmd.String(), "x": next.X, "y": next.Y})
	e.scheduleLocked()
	e.deliver(func() {
		e.renderer.HighlightLine(index)
		e.renderer.SetRobot(next, paint)
	})
}

// apply computes the effect of one command without touching state
func (e *Engine) apply(pos grid.Position, cmd program.Command) (grid.Position, PaintKind, error) {
	if dir, ok := cmd.Kind.Direction(); ok {
		next, err := e.grid.TryMove(pos, dir)
		if err != nil {
			return pos, PaintNone, err
		}
		return next, PaintTrail, nil
	}
	switch cmd.Kind {
	case program.Rotate:
		return pos, PaintNone, nil
	case program.Color:
		return pos, PaintColor, nil
	default:
		return pos, PaintNone, rgerror.New(UnknownCommandText+cmd.Text).
			WithCode(rgerror.CodeUnknownCommand).
			WithOperation("engine.step").
			WithDetail("line", cmd.Line)
	}
}

func (e *Engine) outcomeLocked(kind OutcomeKind, message string, code rgerror.Code, steps int) Outcome {
	return Outcome{
		RunID:    e.state.id,
		Kind:     kind,
		Message:  message,
		Code:     code,
		Steps:    steps,
		Commands: len(e.state.program),
		Position: e.state.robot,
		At:       time.Now(),
	}
}

// deliver is called with mu held. It hands over to notifyMu, releases mu
// and runs n.
func (e *Engine) deliver(n notification) {
	e.notifyMu.Lock()
	e.mu.Unlock()
	defer e.notifyMu.Unlock()
	n()
}
