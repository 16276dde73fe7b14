package mcpserver

import (
	"testing"

	"whiteboard/internal/domain"
)

func TestNextPosition_EmptyBoard(t *testing.T) {
	le := NewLayoutEngine()
	area := Area{X: 100, Y: 100, Width: 800, Height: 600}
	x, y := le.NextPosition(area, nil, 200, 100)
	if x != 100 || y != 100 {
		t.Errorf("expected board origin (100, 100), got (%.0f, %.0f)", x, y)
	}
}

func TestNextPosition_AvoidsExistingObject(t *testing.T) {
	le := NewLayoutEngine()
	area := Area{X: 100, Y: 100, Width: 800, Height: 600}
	existing := []domain.ObjectInfo{{X: 100, Y: 100, Width: 200, Height: 100}}

	x, y := le.NextPosition(area, existing, 100, 100)
	if x != 320 || y != 100 {
		t.Fatalf("expected (320, 100) right of the object, got (%.0f, %.0f)", x, y)
	}
	r := rect{x, y, 100, 100}
	o := existing[0]
	padded := rect{o.X - Padding, o.Y - Padding, o.Width + Padding*2, o.Height + Padding*2}
	if r.intersects(padded) {
		t.Errorf("position (%.0f, %.0f) overlaps the existing object", x, y)
	}
}

func TestNextPosition_FullBoardFallsBackToOrigin(t *testing.T) {
	le := NewLayoutEngine()
	area := Area{X: 0, Y: 0, Width: 100, Height: 100}
	existing := []domain.ObjectInfo{{X: 0, Y: 0, Width: 100, Height: 100}}
	x, y := le.NextPosition(area, existing, 50, 50)
	if x != 0 || y != 0 {
		t.Errorf("expected fallback (0, 0), got (%.0f, %.0f)", x, y)
	}
}

func TestNextPosition_UnboundedAreaGrowsDown(t *testing.T) {
	le := NewLayoutEngine()
	area := Area{Width: 100}
	existing := []domain.ObjectInfo{{X: 0, Y: 0, Width: 100, Height: 100}}
	x, y := le.NextPosition(area, existing, 100, 100)
	if x != 0 || y != 120 {
		t.Errorf("expected (0, 120) below the object, got (%.0f, %.0f)", x, y)
	}
}

func TestArrangeGrid(t *testing.T) {
	le := NewLayoutEngine()
	objects := []domain.ObjectInfo{
		{ID: "1", Width: 300, Height: 200},
		{ID: "2", Width: 300, Height: 200},
		{ID: "3", Width: 300, Height: 200},
	}

	got := le.ArrangeGrid(objects, 0, 0, 700)
	want := []Placement{{"1", 0, 0}, {"2", 320, 0}, {"3", 0, 220}}
	if len(got) != len(want) {
		t.Fatalf("expected %d placements, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("placement %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	for i := 0; i < len(got); i++ {
		for j := i + 1; j < len(got); j++ {
			a := rect{got[i].X, got[i].Y, 300, 200}
			b := rect{got[j].X, got[j].Y, 300, 200}
			if a.intersects(b) {
				t.Errorf("objects %d and %d overlap", i, j)
			}
		}
	}
}

func TestSnap(t *testing.T) {
	le := NewLayoutEngine()
	tests := []struct {
		input, want float64
	}{
		{0, 0},
		{9, 0},
		{10, 20},
		{29, 20},
		{31, 40},
		{100, 100},
	}
	for _, tt := range tests {
		got := le.snap(tt.input)
		if got != tt.want {
			t.Errorf("snap(%.0f) = %.0f, want %.0f", tt.input, got, tt.want)
		}
	}
}
