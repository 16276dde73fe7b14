package scene

// Editor holds the live selection and delivers move events for it.
// The editing core reads the selection; the host drives it.
type Editor struct {
	list   []*Node
	events emitter
}

func NewEditor() *Editor {
	return &Editor{}
}

// List returns the selection in selection order.
func (e *Editor) List() []*Node {
	out := make([]*Node, len(e.list))
	copy(out, e.list)
	return out
}

func (e *Editor) Len() int { return len(e.list) }

// Has reports whether n is selected.
func (e *Editor) Has(n *Node) bool {
	for _, s := range e.list {
		if s == n {
			return true
		}
	}
	return false
}

// Select replaces the selection. Duplicates and nil entries are dropped.
func (e *Editor) Select(nodes ...*Node) {
	list := make([]*Node, 0, len(nodes))
	seen := make(map[*Node]bool, len(nodes))
	for _, n := range nodes {
		if n == nil || seen[n] {
			continue
		}
		seen[n] = true
		list = append(list, n)
	}
	e.list = list
	e.events.emit(Event{Type: EventSelect})
}

// Cancel clears the selection.
func (e *Editor) Cancel() {
	if len(e.list) == 0 {
		return
	}
	e.list = nil
	e.events.emit(Event{Type: EventSelect})
}

// Move shifts every selected, unlocked, draggable node by (dx, dy) in its
// parent space, then emits EventMove once.
func (e *Editor) Move(dx, dy float64) {
	for _, n := range e.list {
		if !n.Editable || !n.Draggable {
			continue
		}
		n.X += dx
		n.Y += dy
	}
	e.events.emit(Event{Type: EventMove, DX: dx, DY: dy})
}

// On subscribes to editor events (EventMove, EventSelect).
func (e *Editor) On(t EventType, fn Handler) (off func()) {
	return e.events.on(t, fn)
}
