package engine

import (
	"fmt"
	"sync"
	"testing"
	"time"

	rgerror "github.com/msto63/robogrid/foundation/core/error"
	rglog "github.com/msto63/robogrid/foundation/core/log"
	"github.com/msto63/robogrid/internal/grid"
)

// recorder captures renderer and reporter calls as strings
type recorder struct {
	mu       sync.Mutex
	events   []string
	outcomes []Outcome
}

func (r *recorder) add(s string) {
	r.mu.Lock()
	r.events = append(r.events, s)
	r.mu.Unlock()
}

func (r *recorder) SetRobot(p grid.Position, k PaintKind) { r.add(fmt.Sprintf("robot %v %s", p, k)) }
func (r *recorder) HighlightLine(i int)                   { r.add(fmt.Sprintf("highlight %d", i)) }
func (r *recorder) ClearHighlights()                      { r.add("clear") }
func (r *recorder) ClearProgram()                         { r.add("clear-program") }

func (r *recorder) OnOutcome(o Outcome) {
	r.mu.Lock()
	r.outcomes = append(r.outcomes, o)
	r.mu.Unlock()
	r.add("outcome " + o.Kind.String())
}

func (r *recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recorder) Outcomes() []Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Outcome(nil), r.outcomes...)
}

func newTestEngine(t *testing.T) (*Engine, *ManualScheduler, *recorder) {
	t.Helper()
	sched := NewManualScheduler()
	rec := &recorder{}
	e := New(Options{
		Scheduler: sched,
		StepDelay: 500 * time.Millisecond,
		Renderer:  rec,
		Reporter:  rec,
		Logger:    rglog.Discard(),
	})
	return e, sched, rec
}

func TestStartEmptyProgram(t *testing.T) {
	for _, raw := range []string{"", "   ", "\n\n"} {
		e, sched, rec := newTestEngine(t)
		e.Start(raw)

		outs := rec.Outcomes()
		if len(outs) != 1 || outs[0].Kind != OutcomeNoActions {
			t.Fatalf("Start(%q) outcomes = %+v, want one NoActions", raw, outs)
		}
		if outs[0].Code != rgerror.CodeNoActions {
			t.Errorf("Code = %v, want %v", outs[0].Code, rgerror.CodeNoActions)
		}
		if e.Status() != StatusIdle {
			t.Errorf("Status() = %v, want idle", e.Status())
		}
		if sched.Pending() != 0 {
			t.Errorf("Pending() = %d, want 0", sched.Pending())
		}
		if len(rec.Events()) != 1 {
			t.Errorf("events = %v, want only the outcome", rec.Events())
		}
	}
}

func TestRunToCompletion(t *testing.T) {
	e, sched, rec := newTestEngine(t)
	e.Start("right\nright\ndown")

	if e.Status() != StatusRunning {
		t.Fatalf("Status() = %v, want running", e.Status())
	}
	if sched.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", sched.Pending())
	}

	// three commands plus the completion tick
	if n := sched.RunAll(10); n != 4 {
		t.Errorf("ran %d callbacks, want 4", n)
	}
	if sched.Now() != 2*time.Second {
		t.Errorf("virtual time = %v, want 2s", sched.Now())
	}

	want := []string{
		"robot (0,0) none",
		"highlight 0", "robot (1,0) trail",
		"highlight 1", "robot (2,0) trail",
		"highlight 2", "robot (2,1) trail",
		"outcome success",
	}
	assertEvents(t, rec.Events(), want)

	snap := e.Snapshot()
	if snap.Status != StatusCompleted || snap.Cursor != 0 || snap.Robot != (grid.Position{X: 2, Y: 1}) {
		t.Errorf("Snapshot() = %+v", snap)
	}
	o := rec.Outcomes()[0]
	if o.Message != MessageComplete || o.Steps != 3 || o.Commands != 3 || o.RunID != snap.RunID {
		t.Errorf("outcome = %+v", o)
	}
}

func TestOutOfBounds(t *testing.T) {
	e, sched, rec := newTestEngine(t)
	e.Start("right\nright\nup")
	sched.RunAll(10)

	outs := rec.Outcomes()
	if len(outs) != 1 {
		t.Fatalf("outcomes = %d, want 1", len(outs))
	}
	o := outs[0]
	if o.Kind != OutcomeError || o.Message != grid.OutOfBoundsMessage || o.Code != rgerror.CodeOutOfBounds {
		t.Errorf("outcome = %+v", o)
	}
	if o.Steps != 2 {
		t.Errorf("Steps = %d, want 2", o.Steps)
	}

	snap := e.Snapshot()
	if snap.Status != StatusFailed {
		t.Errorf("Status = %v, want failed", snap.Status)
	}
	if snap.Cursor != 2 {
		t.Errorf("Cursor = %d, want 2", snap.Cursor)
	}
	if snap.Robot != (grid.Position{X: 2, Y: 0}) {
		t.Errorf("Robot = %v, want (2,0)", snap.Robot)
	}
	if sched.Pending() != 0 {
		t.Errorf("Pending() = %d after failure", sched.Pending())
	}
}

func TestUnknownCommand(t *testing.T) {
	e, sched, rec := newTestEngine(t)
	e.Start("down\njump\ndown")
	sched.RunAll(10)

	outs := rec.Outcomes()
	if len(outs) != 1 {
		t.Fatalf("outcomes = %d, want 1", len(outs))
	}
	if outs[0].Message != "Unknown command: jump" || outs[0].Code != rgerror.CodeUnknownCommand {
		t.Errorf("outcome = %+v", outs[0])
	}
	if got := e.Snapshot().Robot; got != (grid.Position{X: 0, Y: 1}) {
		t.Errorf("Robot = %v, want (0,1)", got)
	}
}

func TestRotateAndColor(t *testing.T) {
	e, sched, rec := newTestEngine(t)
	e.Start("rotate\ncolor")
	sched.RunAll(10)

	want := []string{
		"robot (0,0) none",
		"highlight 0", "robot (0,0) none",
		"highlight 1", "robot (0,0) paint",
		"outcome success",
	}
	assertEvents(t, rec.Events(), want)
}

func TestStopResume(t *testing.T) {
	e, sched, rec := newTestEngine(t)
	e.Start("right\nright\nright")
	sched.RunNext()
	e.Stop()

	if e.Status() != StatusStopped {
		t.Fatalf("Status() = %v, want stopped", e.Status())
	}
	if sched.Pending() != 0 {
		t.Fatalf("Pending() = %d after stop", sched.Pending())
	}
	e.Stop()
	if e.Status() != StatusStopped || len(rec.Outcomes()) != 0 {
		t.Error("second Stop changed state or reported")
	}

	e.Resume()
	if e.Snapshot().Cursor != 1 {
		t.Errorf("Cursor after resume = %d, want 1", e.Snapshot().Cursor)
	}
	sched.RunAll(10)

	if got := e.Snapshot().Robot; got != (grid.Position{X: 3, Y: 0}) {
		t.Errorf("Robot = %v, want (3,0)", got)
	}
	if outs := rec.Outcomes(); len(outs) != 1 || outs[0].Kind != OutcomeSuccess {
		t.Errorf("outcomes = %+v", outs)
	}
}

func TestStopResumeNoOpStates(t *testing.T) {
	e, sched, rec := newTestEngine(t)
	e.Stop()
	e.Resume()
	if e.Status() != StatusIdle || sched.Pending() != 0 || len(rec.Events()) != 0 {
		t.Errorf("Stop/Resume on idle engine had effects: %v", rec.Events())
	}

	e.Start("up")
	sched.RunAll(10)
	e.Resume()
	if e.Status() != StatusFailed || sched.Pending() != 0 {
		t.Errorf("Resume on failed run rescheduled: status %v", e.Status())
	}
}

func TestRestartAndRerun(t *testing.T) {
	e, sched, rec := newTestEngine(t)
	e.Start("down\ndown\nleft")
	sched.RunAll(10)
	first := rec.Outcomes()[0]

	e.Restart()
	snap := e.Snapshot()
	if snap.Status != StatusIdle || snap.Cursor != 0 || snap.Robot != (grid.Position{}) {
		t.Errorf("after Restart: %+v", snap)
	}
	if snap.Program.Len() != 3 {
		t.Errorf("Restart dropped the program")
	}
	events := rec.Events()
	assertEvents(t, events[len(events)-2:], []string{"clear", "robot (0,0) none"})

	e.Rerun()
	sched.RunAll(10)
	outs := rec.Outcomes()
	if len(outs) != 2 {
		t.Fatalf("outcomes = %d, want 2", len(outs))
	}
	second := outs[1]
	if second.Kind != first.Kind || second.Message != first.Message || second.Steps != first.Steps {
		t.Errorf("rerun outcome %+v differs from %+v", second, first)
	}
	if second.RunID == first.RunID {
		t.Error("rerun reused the run id")
	}
}

func TestResetClearsProgram(t *testing.T) {
	e, sched, rec := newTestEngine(t)
	e.Start("right\ncolor")
	sched.RunNext()
	e.Reset()

	events := rec.Events()
	assertEvents(t, events[len(events)-3:], []string{"clear", "robot (0,0) none", "clear-program"})

	snap := e.Snapshot()
	if snap.Program.Len() != 0 || snap.Status != StatusIdle {
		t.Errorf("after Reset: %+v", snap)
	}
	if sched.Pending() != 0 {
		t.Errorf("Pending() = %d after reset", sched.Pending())
	}

	e.Rerun()
	outs := rec.Outcomes()
	if len(outs) != 1 || outs[0].Kind != OutcomeNoActions {
		t.Errorf("Rerun after Reset outcomes = %+v, want NoActions", outs)
	}
}

func TestStartCancelsPendingStep(t *testing.T) {
	e, sched, rec := newTestEngine(t)
	e.Start("right\nright")
	sched.RunNext()
	e.Start("down")

	if sched.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", sched.Pending())
	}
	sched.RunAll(10)

	// second run continues from (1,0)
	if got := e.Snapshot().Robot; got != (grid.Position{X: 1, Y: 1}) {
		t.Errorf("Robot = %v, want (1,1)", got)
	}
	if outs := rec.Outcomes(); len(outs) != 1 || outs[0].Steps != 1 {
		t.Errorf("outcomes = %+v, want one success of the second run", outs)
	}
}

func TestEmptyStartKeepsRunGoing(t *testing.T) {
	for _, op := range []struct {
		name string
		call func(e *Engine)
	}{
		{"blank", func(e *Engine) { e.Start("   ") }},
		{"empty", func(e *Engine) { e.Start("") }},
		{"newlines", func(e *Engine) { e.Start("\n\n") }},
	} {
		t.Run(op.name, func(t *testing.T) {
			e, sched, rec := newTestEngine(t)
			e.Start("right\nright\nright")
			sched.RunNext()

			op.call(e)
			if e.Status() != StatusRunning {
				t.Errorf("Status() = %v, want running", e.Status())
			}
			if sched.Pending() != 1 {
				t.Fatalf("Pending() = %d, want 1", sched.Pending())
			}

			sched.RunAll(10)
			outs := rec.Outcomes()
			if len(outs) != 2 || outs[0].Kind != OutcomeNoActions || outs[1].Kind != OutcomeSuccess {
				t.Fatalf("outcomes = %+v, want NoActions then Success", outs)
			}
			if outs[1].Steps != 3 {
				t.Errorf("Steps = %d, want 3", outs[1].Steps)
			}
			snap := e.Snapshot()
			if snap.Status != StatusCompleted || snap.Robot != (grid.Position{X: 3, Y: 0}) {
				t.Errorf("Snapshot() = %+v", snap)
			}
			if snap.Program.Len() != 3 {
				t.Errorf("program len = %d, want 3", snap.Program.Len())
			}
		})
	}
}

// leakyScheduler never cancels, so every callback eventually fires
type leakyScheduler struct {
	fns []func()
}

func (s *leakyScheduler) Schedule(fn func(), _ time.Duration) CancelFunc {
	s.fns = append(s.fns, fn)
	return func() {}
}

func TestStaleCallbackIsNoOp(t *testing.T) {
	sched := &leakyScheduler{}
	rec := &recorder{}
	e := New(Options{Scheduler: sched, Renderer: rec, Reporter: rec, Logger: rglog.Discard()})

	e.Start("right\nright")
	e.Stop()
	sched.fns[0]()
	if got := e.Snapshot().Robot; got != (grid.Position{}) {
		t.Errorf("stale step after Stop moved robot to %v", got)
	}

	e.Resume()
	e.Restart()
	sched.fns[1]()
	if got := e.Snapshot().Robot; got != (grid.Position{}) {
		t.Errorf("stale step after Restart moved robot to %v", got)
	}
	if len(rec.Outcomes()) != 0 {
		t.Errorf("stale callbacks reported %+v", rec.Outcomes())
	}
}

func TestExactlyOneOutcomePerRun(t *testing.T) {
	programs := []string{"up", "right\nright", "x", "color\nrotate\ndown"}
	for _, raw := range programs {
		e, sched, rec := newTestEngine(t)
		e.Start(raw)
		sched.RunAll(100)
		e.Stop()
		e.Resume()
		sched.RunAll(100)
		if n := len(rec.Outcomes()); n != 1 {
			t.Errorf("Start(%q) produced %d outcomes, want 1", raw, n)
		}
	}
}

func TestSnapshotFromCallback(t *testing.T) {
	sched := NewManualScheduler()
	var e *Engine
	var seen []int
	e = New(Options{
		Scheduler: sched,
		Logger:    rglog.Discard(),
		Renderer:  &snapshotRenderer{onHighlight: func() { seen = append(seen, e.Snapshot().Cursor) }},
	})
	e.Start("right\ndown")
	sched.RunAll(10)

	// the cursor has already moved past the highlighted command
	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Errorf("cursors seen from callbacks = %v, want [1 2]", seen)
	}
}

type snapshotRenderer struct {
	NopRenderer
	onHighlight func()
}

func (r *snapshotRenderer) HighlightLine(int) { r.onHighlight() }

func TestFanout(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	sched := NewManualScheduler()
	e := New(Options{
		Scheduler: sched,
		Renderer:  Renderers{a, b},
		Reporter:  Reporters{a, b},
		Logger:    rglog.Discard(),
	})
	e.Start("left")
	sched.RunAll(10)

	assertEvents(t, b.Events(), a.Events())
	if len(a.Outcomes()) != 1 || len(b.Outcomes()) != 1 {
		t.Error("fanout did not deliver the outcome to both reporters")
	}
}

func TestTimerScheduler(t *testing.T) {
	done := make(chan Outcome, 1)
	e := New(Options{
		StepDelay: time.Millisecond,
		Reporter:  ReporterFunc(func(o Outcome) { done <- o }),
		Logger:    rglog.Discard(),
	})
	e.Start("right\ndown")

	select {
	case o := <-done:
		if o.Kind != OutcomeSuccess || o.Position != (grid.Position{X: 1, Y: 1}) {
			t.Errorf("outcome = %+v", o)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("run did not complete")
	}
}

func TestManualSchedulerAdvance(t *testing.T) {
	s := NewManualScheduler()
	var fired []string
	s.Schedule(func() { fired = append(fired, "b") }, 200*time.Millisecond)
	s.Schedule(func() { fired = append(fired, "a") }, 100*time.Millisecond)
	cancel := s.Schedule(func() { fired = append(fired, "c") }, 150*time.Millisecond)
	cancel()
	cancel()

	if n := s.Advance(150 * time.Millisecond); n != 1 {
		t.Errorf("Advance ran %d callbacks, want 1", n)
	}
	s.Advance(time.Second)
	if len(fired) != 2 || fired[0] != "a" || fired[1] != "b" {
		t.Errorf("fired = %v, want [a b]", fired)
	}
}

func assertEvents(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
