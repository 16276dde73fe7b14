package service

import "whiteboard/internal/scene"

// LayerControl reorders a node among the children of its current parent.
// Ordering is local to that container, not global.
type LayerControl struct {
	history History
}

func NewLayerControl(history History) *LayerControl {
	return &LayerControl{history: history}
}

// Index returns the node's position in its parent, or -1.
func (l *LayerControl) Index(n *scene.Node) int {
	if n == nil || n.Parent() == nil {
		return -1
	}
	return n.Parent().IndexOf(n)
}

// SiblingCount returns the number of children of the node's parent.
func (l *LayerControl) SiblingCount(n *scene.Node) int {
	if n == nil || n.Parent() == nil {
		return 0
	}
	return n.Parent().ChildCount()
}

func (l *LayerControl) CanBringForward(n *scene.Node) bool {
	i := l.Index(n)
	return i >= 0 && i < l.SiblingCount(n)-1
}

func (l *LayerControl) CanSendBackward(n *scene.Node) bool {
	return l.Index(n) > 0
}

func (l *LayerControl) BringForward(n *scene.Node) bool {
	if !l.CanBringForward(n) {
		return false
	}
	return l.move(n, l.Index(n)+1)
}

func (l *LayerControl) SendBackward(n *scene.Node) bool {
	if !l.CanSendBackward(n) {
		return false
	}
	return l.move(n, l.Index(n)-1)
}

func (l *LayerControl) BringToFront(n *scene.Node) bool {
	if !l.CanBringForward(n) {
		return false
	}
	return l.move(n, l.SiblingCount(n)-1)
}

func (l *LayerControl) SendToBack(n *scene.Node) bool {
	if !l.CanSendBackward(n) {
		return false
	}
	return l.move(n, 0)
}

// ReorderTo moves n to index among its siblings. Moving to the current
// index succeeds without touching the scene or history.
func (l *LayerControl) ReorderTo(n *scene.Node, index int) bool {
	cur := l.Index(n)
	if cur < 0 || index < 0 || index >= l.SiblingCount(n) {
		return false
	}
	if cur == index {
		return true
	}
	return l.move(n, index)
}

// move is remove-then-insert; index refers to the final position.
func (l *LayerControl) move(n *scene.Node, index int) bool {
	parent := n.Parent()
	parent.Remove(n)
	_ = parent.AddAt(n, index) // index < sibling count, valid after removal
	l.history.AddSnapshot()
	return true
}

func (l *LayerControl) IsVisible(n *scene.Node) bool { return n != nil && n.Visible }
func (l *LayerControl) IsLocked(n *scene.Node) bool  { return n != nil && !n.Editable }

// ToggleVisibility flips the visible flag and records one snapshot.
func (l *LayerControl) ToggleVisibility(n *scene.Node) bool {
	if n == nil {
		return false
	}
	n.Visible = !n.Visible
	l.history.AddSnapshot()
	return true
}

// ToggleLock flips the editable flag and records one snapshot.
func (l *LayerControl) ToggleLock(n *scene.Node) bool {
	if n == nil {
		return false
	}
	n.Editable = !n.Editable
	l.history.AddSnapshot()
	return true
}
