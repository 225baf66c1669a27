package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewChecker(t *testing.T) {
	checker := NewChecker("engine", func(ctx context.Context) CheckResult {
		return CheckResult{Status: StatusHealthy, Message: "idle"}
	})

	if checker.Name() != "engine" {
		t.Errorf("Name() = %v, want engine", checker.Name())
	}
	result := checker.Check(context.Background())
	if result.Status != StatusHealthy || result.Message != "idle" {
		t.Errorf("Check() = %+v", result)
	}
}

func TestRegistry_Check(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"empty", nil, StatusHealthy},
		{"all healthy", []Status{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"one degraded", []Status{StatusHealthy, StatusDegraded}, StatusDegraded},
		{"unhealthy wins", []Status{StatusDegraded, StatusUnhealthy, StatusHealthy}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry("robogrid", "1.0.0")
			for i, s := range tt.statuses {
				s := s
				r.RegisterFunc(string(rune('a'+i)), func(ctx context.Context) CheckResult {
					return CheckResult{Status: s}
				})
			}

			report := r.Check(context.Background())
			if report.Status != tt.want {
				t.Errorf("Status = %v, want %v", report.Status, tt.want)
			}
			if len(report.Checks) != len(tt.statuses) {
				t.Errorf("len(Checks) = %d, want %d", len(report.Checks), len(tt.statuses))
			}
		})
	}
}

func TestRegistry_ChecksSortedAndNamed(t *testing.T) {
	r := NewRegistry("robogrid", "1.0.0")
	r.Register(PingCheck("journal", func(ctx context.Context) error { return nil }))
	r.RegisterFunc("engine", func(ctx context.Context) CheckResult {
		return CheckResult{Status: StatusHealthy}
	})

	report := r.Check(context.Background())
	if len(report.Checks) != 2 {
		t.Fatalf("len(Checks) = %d, want 2", len(report.Checks))
	}
	if report.Checks[0].Name != "engine" || report.Checks[1].Name != "journal" {
		t.Errorf("names = %s, %s", report.Checks[0].Name, report.Checks[1].Name)
	}
	if report.Checks[0].Timestamp.IsZero() {
		t.Error("Timestamp not set")
	}
	if !report.Healthy() {
		t.Errorf("Healthy() = false, status %v", report.Status)
	}
}

func TestRegistry_RegisterReplaces(t *testing.T) {
	r := NewRegistry("robogrid", "1.0.0")
	r.Register(PingCheck("journal", func(ctx context.Context) error { return errors.New("closed") }))
	report := r.Check(context.Background())
	if report.Healthy() || report.Status != StatusUnhealthy {
		t.Fatalf("failing ping: Status = %v, want unhealthy", report.Status)
	}

	r.Register(PingCheck("journal", func(ctx context.Context) error { return nil }))
	report = r.Check(context.Background())
	if !report.Healthy() || len(report.Checks) != 1 {
		t.Errorf("after replace: Status = %v, checks = %d", report.Status, len(report.Checks))
	}
}

func TestPingCheck(t *testing.T) {
	ok := PingCheck("db", func(ctx context.Context) error { return nil }).Check(context.Background())
	if ok.Status != StatusHealthy {
		t.Errorf("Status = %v, want healthy", ok.Status)
	}
	bad := PingCheck("db", func(ctx context.Context) error { return errors.New("locked") }).Check(context.Background())
	if bad.Status != StatusUnhealthy || bad.Message != "locked" {
		t.Errorf("Check() = %+v", bad)
	}
}

func TestCheckHonoursContext(t *testing.T) {
	r := NewRegistry("robogrid", "1.0.0")
	r.RegisterFunc("slow", func(ctx context.Context) CheckResult {
		<-ctx.Done()
		return CheckResult{Status: StatusDegraded, Message: ctx.Err().Error()}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	start := time.Now()
	report := r.Check(ctx)
	if time.Since(start) > time.Second {
		t.Error("Check did not honour the context deadline")
	}
	if report.Status != StatusDegraded || report.Healthy() {
		t.Errorf("Status = %v, want degraded", report.Status)
	}
}
