package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	rglog "github.com/msto63/robogrid/foundation/core/log"
	"github.com/msto63/robogrid/internal/board"
	"github.com/msto63/robogrid/internal/engine"
	"github.com/msto63/robogrid/internal/grid"
	"github.com/msto63/robogrid/internal/journal"
	"github.com/msto63/robogrid/pkg/core/logging"
)

type fixture struct {
	engine *engine.Engine
	sched  *engine.ManualScheduler
	store  *journal.MemoryStore
	server *Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := logging.Wrap(rglog.Discard(), "test")
	g := grid.Default()
	b := board.New(g)
	hub := NewHub(logger)
	store := journal.NewMemoryStore()
	sched := engine.NewManualScheduler()

	eng := engine.New(engine.Options{
		Grid:      g,
		Scheduler: sched,
		StepDelay: 100 * time.Millisecond,
		Renderer:  engine.Renderers{b, hub},
		Reporter:  engine.Reporters{journal.NewReporter(store, rglog.Discard()), hub},
		Logger:    rglog.Discard(),
	})

	cfg := DefaultConfig()
	cfg.GRPCPort = 0
	srv, err := New(cfg, HandlerOptions{
		Engine:  eng,
		Board:   b,
		Journal: store,
		Hub:     hub,
		Logger:  logger,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return &fixture{engine: eng, sched: sched, store: store, server: srv}
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	f.server.Echo().ServeHTTP(rec, req)
	return rec
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) StateResponse {
	t.Helper()
	var raw struct {
		Snapshot struct {
			Status string `json:"status"`
			Cursor int    `json:"cursor"`
		} `json:"snapshot"`
		Cells       [][]string `json:"cells"`
		LastOutcome *struct {
			Kind    string `json:"kind"`
			Message string `json:"message"`
		} `json:"last_outcome"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	state := StateResponse{Cells: raw.Cells}
	switch raw.Snapshot.Status {
	case "running":
		state.Snapshot.Status = engine.StatusRunning
	case "stopped":
		state.Snapshot.Status = engine.StatusStopped
	case "completed":
		state.Snapshot.Status = engine.StatusCompleted
	case "failed":
		state.Snapshot.Status = engine.StatusFailed
	}
	state.Snapshot.Cursor = raw.Snapshot.Cursor
	if raw.LastOutcome != nil {
		kind, _ := engine.ParseOutcomeKind(raw.LastOutcome.Kind)
		state.LastOutcome = &engine.Outcome{Kind: kind, Message: raw.LastOutcome.Message}
	}
	return state
}

func TestNewRequiresEngine(t *testing.T) {
	if _, err := New(DefaultConfig(), HandlerOptions{}); err == nil {
		t.Fatal("New() without engine should fail")
	}
}

func TestRunToCompletion(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/run", `{"program":"right\ndown\ncolor"}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("POST /run status = %d, body %s", rec.Code, rec.Body.String())
	}
	if st := decodeState(t, rec); st.Snapshot.Status != engine.StatusRunning {
		t.Errorf("status after run = %v, want running", st.Snapshot.Status)
	}

	f.sched.RunAll(10)

	st := decodeState(t, f.do(t, http.MethodGet, "/api/v1/state", ""))
	if st.Snapshot.Status != engine.StatusCompleted {
		t.Errorf("status = %v, want completed", st.Snapshot.Status)
	}
	if st.LastOutcome == nil || st.LastOutcome.Message != engine.MessageComplete {
		t.Errorf("last outcome = %+v, want %q", st.LastOutcome, engine.MessageComplete)
	}
	if got := st.Cells[1][1]; got != "robot" {
		t.Errorf("cell (1,1) = %q, want robot", got)
	}
	if got := st.Cells[0][1]; got != "trail" {
		t.Errorf("cell (1,0) = %q, want trail", got)
	}
}

func TestRunEmptyProgram(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/run", `{"program":"   "}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d", rec.Code)
	}
	st := decodeState(t, rec)
	if st.LastOutcome == nil || st.LastOutcome.Kind != engine.OutcomeNoActions {
		t.Fatalf("last outcome = %+v, want no_actions", st.LastOutcome)
	}
	if f.sched.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", f.sched.Pending())
	}
}

func TestRunEmptyProgramDuringRun(t *testing.T) {
	f := newFixture(t)

	f.do(t, http.MethodPost, "/api/v1/run", `{"program":"right\nright"}`)
	f.sched.RunNext()

	rec := f.do(t, http.MethodPost, "/api/v1/run", `{"program":"  "}`)
	if st := decodeState(t, rec); st.Snapshot.Status != engine.StatusRunning {
		t.Fatalf("status after blank run = %v, want running", st.Snapshot.Status)
	}
	if f.sched.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", f.sched.Pending())
	}

	f.sched.RunAll(10)
	st := decodeState(t, f.do(t, http.MethodGet, "/api/v1/state", ""))
	if st.Snapshot.Status != engine.StatusCompleted {
		t.Errorf("status = %v, want completed", st.Snapshot.Status)
	}
	if st.LastOutcome == nil || st.LastOutcome.Kind != engine.OutcomeSuccess {
		t.Errorf("last outcome = %+v, want success", st.LastOutcome)
	}
}

func TestRunInvalidBody(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/run", `{"program":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var payload ErrorPayload
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatal(err)
	}
	if payload.Code != "INVALID_INPUT" {
		t.Errorf("code = %q, want INVALID_INPUT", payload.Code)
	}
}

func TestControlEndpoints(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodPost, "/api/v1/run", `{"program":"right\nright\nright"}`)
	f.sched.RunNext()

	tests := []struct {
		path string
		want engine.Status
	}{
		{"/api/v1/stop", engine.StatusStopped},
		{"/api/v1/resume", engine.StatusRunning},
		{"/api/v1/restart", engine.StatusIdle},
		{"/api/v1/rerun", engine.StatusRunning},
		{"/api/v1/reset", engine.StatusIdle},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, tt.path, "")
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			if got := f.engine.Status(); got != tt.want {
				t.Errorf("engine status = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHistory(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodPost, "/api/v1/run", `{"program":"up"}`)
	f.sched.RunAll(10)
	f.do(t, http.MethodPost, "/api/v1/run", `{"program":"right"}`)
	f.sched.RunAll(10)

	rec := f.do(t, http.MethodGet, "/api/v1/history?kind=error", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp HistoryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 1 || resp.Entries[0].Message != grid.OutOfBoundsMessage {
		t.Errorf("history = %+v, want one out-of-bounds entry", resp.Entries)
	}

	rec = f.do(t, http.MethodGet, "/api/v1/history/stats", "")
	var stats journal.Stats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatal(err)
	}
	if stats.Total != 2 {
		t.Errorf("Total = %d, want 2", stats.Total)
	}
}

func TestHistoryRejectsBadQuery(t *testing.T) {
	f := newFixture(t)
	for _, q := range []string{"limit=0", "limit=abc", "kind=bogus"} {
		if rec := f.do(t, http.MethodGet, "/api/v1/history?"+q, ""); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", q, rec.Code)
		}
	}
}

func TestHistoryWithoutJournal(t *testing.T) {
	eng := engine.New(engine.Options{Scheduler: engine.NewManualScheduler(), Logger: rglog.Discard()})
	cfg := DefaultConfig()
	cfg.GRPCPort = 0
	srv, err := New(cfg, HandlerOptions{Engine: eng, Logger: logging.Wrap(rglog.Discard(), "test")})
	if err != nil {
		t.Fatal(err)
	}
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/history", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var report struct {
		Status string `json:"status"`
		Checks []struct {
			Name string `json:"name"`
		} `json:"checks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatal(err)
	}
	if report.Status != "healthy" {
		t.Errorf("status = %q", report.Status)
	}
	names := make([]string, 0, len(report.Checks))
	for _, c := range report.Checks {
		names = append(names, c.Name)
	}
	if got := strings.Join(names, ","); got != "engine,journal,live_feed" {
		t.Errorf("checks = %s", got)
	}
}

func TestServerStartStop(t *testing.T) {
	f := newFixture(t)
	f.server.config.Host = "127.0.0.1"
	f.server.config.HTTPPort = 0

	if err := f.server.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	resp, err := http.Get("http://" + f.server.Address() + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /health = %d, want 200", resp.StatusCode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := f.server.Stop(ctx); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if f.server.Hub().Len() != 0 {
		t.Errorf("Hub().Len() = %d after Stop", f.server.Hub().Len())
	}
	// caches are already closed; a second Close must not panic
	f.server.Handler().Close()
}
