package grid

import (
	"testing"

	rgerror "github.com/msto63/robogrid/foundation/core/error"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		w, h    int
		wantErr bool
	}{
		{"default", 15, 15, false},
		{"single cell", 1, 1, false},
		{"zero width", 0, 5, true},
		{"negative height", 5, -1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := New(tt.w, tt.h)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New(%d, %d) error = %v, wantErr %v", tt.w, tt.h, err, tt.wantErr)
			}
			if err != nil {
				if !rgerror.HasCode(err, rgerror.CodeInvalidConfig) {
					t.Errorf("error code = %v, want %v", rgerror.GetCode(err), rgerror.CodeInvalidConfig)
				}
				return
			}
			if g.Width() != tt.w || g.Height() != tt.h {
				t.Errorf("size = %dx%d, want %dx%d", g.Width(), g.Height(), tt.w, tt.h)
			}
		})
	}
}

func TestTryMove(t *testing.T) {
	g := Default()
	tests := []struct {
		name    string
		from    Position
		dir     Direction
		want    Position
		wantErr bool
	}{
		{"right from origin", Position{0, 0}, Right, Position{1, 0}, false},
		{"down from origin", Position{0, 0}, Down, Position{0, 1}, false},
		{"up from origin", Position{0, 0}, Up, Position{0, 0}, true},
		{"left from origin", Position{0, 0}, Left, Position{0, 0}, true},
		{"right at east edge", Position{14, 3}, Right, Position{14, 3}, true},
		{"down at south edge", Position{3, 14}, Down, Position{3, 14}, true},
		{"up inside", Position{3, 3}, Up, Position{3, 2}, false},
		{"left inside", Position{3, 3}, Left, Position{2, 3}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.TryMove(tt.from, tt.dir)
			if (err != nil) != tt.wantErr {
				t.Fatalf("TryMove() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("TryMove() = %v, want %v", got, tt.want)
			}
			if err != nil {
				if err.Error() != OutOfBoundsMessage {
					t.Errorf("error message = %q, want %q", err.Error(), OutOfBoundsMessage)
				}
				if !rgerror.HasCode(err, rgerror.CodeOutOfBounds) {
					t.Errorf("error code = %v, want OUT_OF_BOUNDS", rgerror.GetCode(err))
				}
			}
		})
	}
}

func TestTryMoveStaysInside(t *testing.T) {
	g, err := New(3, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for x := 0; x < 3; x++ {
		for y := 0; y < 2; y++ {
			for _, d := range []Direction{Up, Down, Left, Right} {
				p := Position{x, y}
				got, err := g.TryMove(p, d)
				if !g.Contains(got) {
					t.Errorf("TryMove(%v, %v) = %v outside grid", p, d, got)
				}
				if err != nil && got != p {
					t.Errorf("TryMove(%v, %v) moved despite error", p, d)
				}
			}
		}
	}
}

func TestTryMoveDefaultGrid(t *testing.T) {
	g := Default()
	if g.Width() != 15 || g.Height() != 15 {
		t.Fatalf("Default() = %dx%d, want 15x15", g.Width(), g.Height())
	}

	tests := []struct {
		dir     Direction
		dx, dy  int
		blocked func(p Position) bool
	}{
		{Up, 0, -1, func(p Position) bool { return p.Y == 0 }},
		{Down, 0, 1, func(p Position) bool { return p.Y == 14 }},
		{Left, -1, 0, func(p Position) bool { return p.X == 0 }},
		{Right, 1, 0, func(p Position) bool { return p.X == 14 }},
	}

	for _, tt := range tests {
		t.Run(tt.dir.String(), func(t *testing.T) {
			for x := 0; x < 15; x++ {
				for y := 0; y < 15; y++ {
					p := Position{X: x, Y: y}
					got, err := g.TryMove(p, tt.dir)
					if tt.blocked(p) {
						if !rgerror.HasCode(err, rgerror.CodeOutOfBounds) || got != p {
							t.Errorf("TryMove(%v) = %v, %v; want OUT_OF_BOUNDS", p, got, err)
						}
						continue
					}
					want := Position{X: x + tt.dx, Y: y + tt.dy}
					if err != nil || got != want {
						t.Errorf("TryMove(%v) = %v, %v; want %v", p, got, err, want)
					}
				}
			}
		})
	}

	// every corner blocks the two directions that point outward
	corners := map[Position][]Direction{
		{0, 0}:   {Up, Left},
		{14, 0}:  {Up, Right},
		{0, 14}:  {Down, Left},
		{14, 14}: {Down, Right},
	}
	for p, dirs := range corners {
		for _, d := range dirs {
			if _, err := g.TryMove(p, d); err == nil {
				t.Errorf("TryMove(%v, %v) succeeded at the corner", p, d)
			}
		}
	}
}

func TestDirectionString(t *testing.T) {
	want := map[Direction]string{Up: "up", Down: "down", Left: "left", Right: "right"}
	for d, s := range want {
		if d.String() != s {
			t.Errorf("Direction(%d).String() = %q, want %q", int(d), d.String(), s)
		}
	}
}
