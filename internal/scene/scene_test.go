package scene

import (
	"errors"
	"math"
	"testing"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestAddAt_RejectsSecondParent(t *testing.T) {
	a := NewNode(TagGroup)
	b := NewNode(TagGroup)
	r := NewNode(TagRect)

	if err := a.Add(r); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := b.Add(r); !errors.Is(err, ErrHasParent) {
		t.Fatalf("expected ErrHasParent, got %v", err)
	}
	if r.Parent() != a {
		t.Fatalf("parent changed after failed attach")
	}
}

func TestAddAt_RejectsCycle(t *testing.T) {
	outer := NewNode(TagGroup)
	inner := NewNode(TagGroup)
	if err := outer.Add(inner); err != nil {
		t.Fatal(err)
	}
	outer.Detach()
	if err := inner.Add(outer); !errors.Is(err, ErrCycle) {
		t.Fatalf("expected ErrCycle, got %v", err)
	}
	if err := outer.Add(outer); !errors.Is(err, ErrCycle) {
		t.Fatalf("expected ErrCycle for self attach, got %v", err)
	}
}

func TestAddAt_NonContainer(t *testing.T) {
	r := NewNode(TagRect)
	if err := r.Add(NewNode(TagRect)); !errors.Is(err, ErrNotContainer) {
		t.Fatalf("expected ErrNotContainer, got %v", err)
	}
}

func TestAddAt_Order(t *testing.T) {
	g := NewNode(TagGroup)
	a, b, c := NewNode(TagRect), NewNode(TagRect), NewNode(TagRect)
	_ = g.Add(a)
	_ = g.Add(b)
	if err := g.AddAt(c, 1); err != nil {
		t.Fatal(err)
	}
	want := []*Node{a, c, b}
	for i, n := range g.Children() {
		if n != want[i] {
			t.Errorf("child %d = %s, want %s", i, n, want[i])
		}
	}
	if err := g.AddAt(NewNode(TagRect), 9); !errors.Is(err, ErrIndex) {
		t.Errorf("expected ErrIndex, got %v", err)
	}
}

func TestDetach_NotChild(t *testing.T) {
	g := NewNode(TagGroup)
	if err := Detach(g, NewNode(TagRect)); !errors.Is(err, ErrNotChild) {
		t.Fatalf("expected ErrNotChild, got %v", err)
	}
}

func TestMatrixInverse(t *testing.T) {
	m := Compose(10, 20, 30, 2, 0.5)
	inv, ok := m.Invert()
	if !ok {
		t.Fatal("expected invertible")
	}
	x, y := m.Apply(3, 4)
	bx, by := inv.Apply(x, y)
	if !near(bx, 3) || !near(by, 4) {
		t.Errorf("round trip = (%f, %f)", bx, by)
	}
	if _, ok := Compose(0, 0, 0, 0, 1).Invert(); ok {
		t.Error("zero scale should not invert")
	}
}

func TestWorldPosition_Nested(t *testing.T) {
	tree := NewTree()
	frame := NewNode(TagFrame)
	frame.X, frame.Y = 100, 50
	group := NewNode(TagGroup)
	group.X, group.Y = 10, 10
	r := NewNode(TagRect)
	r.X, r.Y, r.Width, r.Height = 5, 5, 20, 10

	_ = Attach(tree.Root(), frame)
	_ = Attach(frame, group)
	_ = Attach(group, r)

	x, y := r.WorldPosition()
	if x != 115 || y != 65 {
		t.Errorf("world = (%.0f, %.0f), want (115, 65)", x, y)
	}
	b := r.Bounds()
	if b.X != 115 || b.Y != 65 || b.Width != 20 || b.Height != 10 {
		t.Errorf("bounds = %+v", b)
	}
	if !tree.Contains(r) {
		t.Error("tree should contain nested rect")
	}
	if tree.Find(r.InnerID) != r {
		t.Error("find by inner id failed")
	}
}

func TestBounds_Rotated(t *testing.T) {
	r := NewNode(TagRect)
	r.Width, r.Height = 10, 20
	r.Rotation = 90
	b := r.Bounds()
	// rotating 90deg about the origin maps (10,20) box to x in [-20,0]
	if !near(b.X, -20) || !near(b.Y, 0) || !near(b.Width, 20) || !near(b.Height, 10) {
		t.Errorf("rotated bounds = %+v", b)
	}
}

func TestBounds_GroupUnionAndEmpty(t *testing.T) {
	g := NewNode(TagGroup)
	g.X, g.Y = 7, 8
	b := g.Bounds()
	if b.X != 7 || b.Y != 8 || b.Width != 0 || b.Height != 0 {
		t.Errorf("empty group bounds = %+v", b)
	}

	a := NewNode(TagRect)
	a.Width, a.Height = 10, 10
	c := NewNode(TagRect)
	c.X, c.Y, c.Width, c.Height = 20, 30, 5, 5
	_ = g.Add(a)
	_ = g.Add(c)
	b = g.Bounds()
	if b.X != 7 || b.Y != 8 || b.Width != 25 || b.Height != 35 {
		t.Errorf("group bounds = %+v", b)
	}
}

func TestReparent_PreservesWorld(t *testing.T) {
	tree := NewTree()
	f1 := NewNode(TagFrame)
	f1.X, f1.Y = 100, 100
	f2 := NewNode(TagFrame)
	f2.X, f2.Y = 500, -40
	_ = Attach(tree.Root(), f1)
	_ = Attach(tree.Root(), f2)

	r := NewNode(TagRect)
	r.X, r.Y = 30, 40
	_ = Attach(f1, r)

	if err := Reparent(r, f2); err != nil {
		t.Fatal(err)
	}
	x, y := r.WorldPosition()
	if !near(x, 130) || !near(y, 140) {
		t.Errorf("world after reparent = (%f, %f)", x, y)
	}
	if r.X != -370 || r.Y != 180 {
		t.Errorf("local after reparent = (%f, %f)", r.X, r.Y)
	}
}

func TestEditor_MoveSkipsLocked(t *testing.T) {
	e := NewEditor()
	a, b := NewNode(TagRect), NewNode(TagRect)
	b.Editable = false
	e.Select(a, b, a, nil)
	if e.Len() != 2 {
		t.Fatalf("selection len = %d, want 2", e.Len())
	}

	moves := 0
	off := e.On(EventMove, func(Event) { moves++ })
	e.Move(5, 6)
	off()
	e.Move(1, 1)

	if moves != 1 {
		t.Errorf("move events = %d, want 1", moves)
	}
	if a.X != 6 || a.Y != 7 {
		t.Errorf("a = (%f, %f)", a.X, a.Y)
	}
	if b.X != 0 || b.Y != 0 {
		t.Errorf("locked node moved to (%f, %f)", b.X, b.Y)
	}
}

func TestNode_DragAndDoubleTap(t *testing.T) {
	n := NewNode(TagLine)
	var drags, taps int
	n.On(EventDrag, func(ev Event) {
		if ev.Target != n {
			t.Errorf("wrong target")
		}
		drags++
	})
	n.On(EventDoubleTap, func(Event) { taps++ })

	n.Drag(0, 12)
	n.DoubleTap()
	n.Draggable = false
	if n.Drag(0, 1) {
		t.Error("drag should be refused when not draggable")
	}
	if drags != 1 || taps != 1 || n.Y != 12 {
		t.Errorf("drags=%d taps=%d y=%f", drags, taps, n.Y)
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	g := NewNode(TagGroup)
	g.X, g.Y = 3, 4
	r := NewNode(TagRect)
	r.X, r.Y, r.Width, r.Height = 1, 2, 30, 40
	r.Fill = "#ff0000"
	r.Editable = false
	r.ScaleX = 2
	_ = g.Add(r)

	c := NewCodec()
	out, err := c.Decode(Encode(g))
	if err != nil {
		t.Fatal(err)
	}
	if out == g || out.InnerID == g.InnerID {
		t.Fatal("decode must build a fresh node")
	}
	if out.ChildCount() != 1 {
		t.Fatalf("children = %d", out.ChildCount())
	}
	cr := out.Children()[0]
	if cr.Fill != "#ff0000" || cr.Editable || cr.ScaleX != 2 || cr.ScaleY != 1 || cr.Width != 30 {
		t.Errorf("child not restored: %+v", cr)
	}
}

func TestCodec_Errors(t *testing.T) {
	c := NewCodec()
	tests := []struct {
		name string
		raw  string
	}{
		{"unknown tag", `{"tag":"Star"}`},
		{"missing tag", `{"x":1}`},
		{"image without url", `{"tag":"Image","width":10}`},
		{"line with one point", `{"tag":"Line","points":[0,0]}`},
		{"children on rect", `{"tag":"Rect","children":[{"tag":"Rect"}]}`},
		{"bad json", `{"tag":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := c.DecodeJSON([]byte(tt.raw)); err == nil {
				t.Errorf("expected error for %s", tt.raw)
			}
		})
	}
}

func TestCodec_PartialPayload(t *testing.T) {
	n, _, err := NewCodec().DecodeJSON([]byte(`{"tag":"Rect","width":10}`))
	if err != nil {
		t.Fatal(err)
	}
	if n.X != 0 || n.Y != 0 || n.Height != 0 {
		t.Errorf("missing numerics should be zero: %+v", n)
	}
	if n.ScaleX != 1 || n.Opacity != 1 || !n.Editable || !n.Visible {
		t.Errorf("defaults not applied: %+v", n)
	}
}
