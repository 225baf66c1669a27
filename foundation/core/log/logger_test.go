package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	rgerror "github.com/msto63/robogrid/foundation/core/error"
)

func newTestLogger(format Format, level Level) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewWithConfig(Config{Level: level, Format: format, Output: &buf}), &buf
}

func TestLoggerLevelFilter(t *testing.T) {
	logger, buf := newTestLogger(FormatText, LevelWarn)

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line written at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("warn line missing: %q", out)
	}
}

func TestLoggerJSONFields(t *testing.T) {
	logger, buf := newTestLogger(FormatJSON, LevelDebug)
	logger.WithName("engine").WithRunID("abc").Info("step", Fields{"x": 1, "command": "up"})

	var got map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("Unmarshal(%q): %v", buf.String(), err)
	}
	checks := map[string]interface{}{
		"message": "step",
		"logger":  "engine",
		"run_id":  "abc",
		"command": "up",
		"x":       float64(1),
		"level":   "info",
	}
	for k, want := range checks {
		if got[k] != want {
			t.Errorf("%s = %v, want %v", k, got[k], want)
		}
	}
}

func TestWithFieldDoesNotMutateParent(t *testing.T) {
	parent, buf := newTestLogger(FormatLogfmt, LevelInfo)
	child := parent.WithField("component", "journal")

	parent.Info("from parent")
	if strings.Contains(buf.String(), "component") {
		t.Errorf("parent picked up child field: %q", buf.String())
	}
	buf.Reset()
	child.Info("from child")
	if !strings.Contains(buf.String(), `component="journal"`) {
		t.Errorf("child field missing: %q", buf.String())
	}
}

func TestTextFormatterSortsFields(t *testing.T) {
	logger, buf := newTestLogger(FormatText, LevelInfo)
	logger.Info("move", Fields{"y": 2, "x": 1, "a": "first"})

	line := buf.String()
	ia, ix, iy := strings.Index(line, "a="), strings.Index(line, "x="), strings.Index(line, "y=")
	if !(ia < ix && ix < iy) {
		t.Errorf("fields not sorted: %q", line)
	}
}

func TestLogErrorUsesSeverity(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"low", rgerror.New("Program has no actions").WithCode(rgerror.CodeNoActions), "[INFO]"},
		{"medium", rgerror.New("Robot is out of grid bounds!").WithCode(rgerror.CodeOutOfBounds), "[WARN]"},
		{"high", rgerror.New("db locked").WithCode(rgerror.CodeStorageError), "[EROR]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := newTestLogger(FormatText, LevelTrace)
			logger.LogError(tt.err)
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("LogError() = %q, want level %s", buf.String(), tt.want)
			}
		})
	}
}

func TestConcurrentWritesDoNotInterleave(t *testing.T) {
	logger, buf := newTestLogger(FormatLogfmt, LevelInfo)
	child := logger.WithName("a")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); logger.Info("parent") }()
		go func() { defer wg.Done(); child.Info("child") }()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 100 {
		t.Fatalf("got %d lines, want 100", len(lines))
	}
	for _, l := range lines {
		if !strings.HasPrefix(l, "ts=") {
			t.Errorf("interleaved line: %q", l)
		}
	}
}

func TestParseLevelAndFormat(t *testing.T) {
	if lvl, err := ParseLevel("WARNING"); err != nil || lvl != LevelWarn {
		t.Errorf("ParseLevel(WARNING) = %v, %v", lvl, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("ParseLevel(loud) should fail")
	}
	if f, err := ParseFormat("console"); err != nil || f != FormatConsole {
		t.Errorf("ParseFormat(console) = %v, %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat(xml) should fail")
	}
}

func TestTimerStop(t *testing.T) {
	logger, buf := newTestLogger(FormatLogfmt, LevelDebug)
	logger.StartTimer("journal.record").WithField("kind", "success").Stop()

	out := buf.String()
	for _, want := range []string{`msg="journal.record completed"`, "duration_ms=", `operation="journal.record"`} {
		if !strings.Contains(out, want) {
			t.Errorf("timer output %q missing %q", out, want)
		}
	}
}

func TestDiscard(t *testing.T) {
	l := Discard()
	if l.IsLevelEnabled(LevelFatal) {
		t.Error("Discard logger should not enable any level")
	}
	l.Error("nothing")
}
