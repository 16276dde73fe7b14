package scene

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"
)

// Tag identifies the kind of a scene node.
type Tag string

const (
	TagLeafer  Tag = "Leafer" // tree root
	TagFrame   Tag = "Frame"  // board container
	TagGroup   Tag = "Group"
	TagRect    Tag = "Rect"
	TagEllipse Tag = "Ellipse"
	TagLine    Tag = "Line"
	TagPen     Tag = "Pen"
	TagPath    Tag = "Path"
	TagText    Tag = "Text"
	TagImage   Tag = "Image"
)

// DrawableTags lists every tag a user element can carry.
var DrawableTags = []Tag{
	TagGroup, TagRect, TagEllipse, TagLine, TagPen, TagPath, TagText, TagImage,
}

// IsContainer reports whether nodes with this tag may own children.
func (t Tag) IsContainer() bool {
	return t == TagLeafer || t == TagFrame || t == TagGroup
}

var (
	ErrHasParent    = errors.New("scene: node already has a parent")
	ErrNotContainer = errors.New("scene: parent cannot hold children")
	ErrCycle        = errors.New("scene: attach would create a cycle")
	ErrIndex        = errors.New("scene: index out of range")
	ErrNotChild     = errors.New("scene: node is not a child of parent")
)

var innerIDs atomic.Uint64

// Node is one element of the scene tree. A node has at most one parent
// and its X/Y are relative to that parent.
type Node struct {
	InnerID uint64
	Tag     Tag

	X, Y          float64
	Width, Height float64
	Rotation      float64
	ScaleX        float64
	ScaleY        float64

	Fill        string
	Stroke      string
	StrokeWidth float64
	DashPattern []float64
	Opacity     float64

	Points     []float64 // Line, Pen and Path vertices as x0,y0,x1,y1...
	Path       string
	StartArrow string
	EndArrow   string
	Text       string
	FontSize   float64
	URL        string

	Editable  bool
	Visible   bool
	Draggable bool
	Overflow  string

	parent   *Node
	children []*Node
	events   emitter
}

// NewNode creates a detached node with default transform and flags.
func NewNode(tag Tag) *Node {
	n := &Node{
		InnerID:   innerIDs.Add(1),
		Tag:       tag,
		ScaleX:    1,
		ScaleY:    1,
		Opacity:   1,
		Editable:  true,
		Visible:   true,
		Draggable: true,
	}
	if tag == TagFrame {
		n.Overflow = "hide"
	}
	return n
}

func (n *Node) String() string {
	return fmt.Sprintf("%s#%d", n.Tag, n.InnerID)
}

// Parent returns the owning container or nil.
func (n *Node) Parent() *Node { return n.parent }

// Children returns a copy of the ordered child list (back to front).
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// ChildCount returns the number of direct children.
func (n *Node) ChildCount() int { return len(n.children) }

// IndexOf returns the position of child among n's children, or -1.
func (n *Node) IndexOf(child *Node) int {
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}

// IsAncestorOf reports whether n is a strict ancestor of other.
func (n *Node) IsAncestorOf(other *Node) bool {
	for p := other.parent; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

// Add appends child as the top-most child of n.
func (n *Node) Add(child *Node) error {
	return n.AddAt(child, len(n.children))
}

// AddAt inserts child at index (0 = back-most).
func (n *Node) AddAt(child *Node, index int) error {
	if !n.Tag.IsContainer() {
		return ErrNotContainer
	}
	if child.parent != nil {
		return ErrHasParent
	}
	if child == n || child.IsAncestorOf(n) {
		return ErrCycle
	}
	if index < 0 || index > len(n.children) {
		return ErrIndex
	}
	n.children = append(n.children, nil)
	copy(n.children[index+1:], n.children[index:])
	n.children[index] = child
	child.parent = n
	return nil
}

// Remove detaches child from n. It returns false if child is not a
// direct child.
func (n *Node) Remove(child *Node) bool {
	i := n.IndexOf(child)
	if i < 0 {
		return false
	}
	n.children = append(n.children[:i], n.children[i+1:]...)
	child.parent = nil
	return true
}

// Detach removes n from its parent, if any.
func (n *Node) Detach() {
	if n.parent != nil {
		n.parent.Remove(n)
	}
}

// LocalMatrix returns the transform from n's space to its parent's.
func (n *Node) LocalMatrix() Matrix {
	return Compose(n.X, n.Y, n.Rotation, n.ScaleX, n.ScaleY)
}

// WorldMatrix returns the transform from n's space to world space.
func (n *Node) WorldMatrix() Matrix {
	m := n.LocalMatrix()
	for p := n.parent; p != nil; p = p.parent {
		m = p.LocalMatrix().Multiply(m)
	}
	return m
}

// parentWorld is the world matrix of n's parent (identity when detached).
func (n *Node) parentWorld() Matrix {
	if n.parent == nil {
		return Identity()
	}
	return n.parent.WorldMatrix()
}

// WorldPosition returns the world coordinates of n's origin.
func (n *Node) WorldPosition() (float64, float64) {
	return n.parentWorld().Apply(n.X, n.Y)
}

// SetWorldPosition rewrites X/Y so n's origin lands on (wx, wy) in world
// space under its current parent.
func (n *Node) SetWorldPosition(wx, wy float64) {
	inv, ok := n.parentWorld().Invert()
	if !ok {
		return
	}
	n.X, n.Y = inv.Apply(wx, wy)
}

// ToParentSpace converts a world point into parent's local space.
func ToParentSpace(parent *Node, wx, wy float64) (float64, float64) {
	if parent == nil {
		return wx, wy
	}
	inv, ok := parent.WorldMatrix().Invert()
	if !ok {
		return wx, wy
	}
	return inv.Apply(wx, wy)
}

// Bounds returns the rendered world-space AABB of n, after all ancestor
// and own transforms.
func (n *Node) Bounds() Bounds {
	if n.Tag == TagGroup || n.Tag == TagLeafer {
		boxes := make([]Bounds, 0, len(n.children))
		for _, c := range n.children {
			boxes = append(boxes, c.Bounds())
		}
		if u, ok := UnionAll(boxes); ok {
			return u
		}
		x, y := n.WorldPosition()
		return Bounds{X: x, Y: y}
	}
	return transformBox(n.WorldMatrix(), n.localBox())
}

// localBox is the untransformed box of n in its own space.
func (n *Node) localBox() Bounds {
	switch n.Tag {
	case TagLine, TagPen, TagPath:
		if len(n.Points) >= 2 {
			return pointsBox(n.Points)
		}
	case TagText:
		w, h := n.Width, n.Height
		size := n.FontSize
		if size == 0 {
			size = 16
		}
		if w == 0 {
			w = float64(len([]rune(n.Text))) * size * 0.6
		}
		if h == 0 {
			h = size * 1.2
		}
		return Bounds{Width: w, Height: h}
	}
	return Bounds{Width: n.Width, Height: n.Height}
}

func pointsBox(pts []float64) Bounds {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i := 0; i+1 < len(pts); i += 2 {
		minX = math.Min(minX, pts[i])
		maxX = math.Max(maxX, pts[i])
		minY = math.Min(minY, pts[i+1])
		maxY = math.Max(maxY, pts[i+1])
	}
	return Bounds{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Walk visits n and its descendants depth-first, back to front. Returning
// false from fn skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children() {
		c.Walk(fn)
	}
}

// On subscribes fn to events of type t emitted on this node.
func (n *Node) On(t EventType, fn Handler) (off func()) {
	return n.events.on(t, fn)
}

// Drag moves a draggable node by (dx, dy) and emits EventDrag on it.
func (n *Node) Drag(dx, dy float64) bool {
	if !n.Draggable {
		return false
	}
	n.X += dx
	n.Y += dy
	n.events.emit(Event{Type: EventDrag, Target: n, DX: dx, DY: dy})
	return true
}

// DoubleTap emits EventDoubleTap on n.
func (n *Node) DoubleTap() {
	n.events.emit(Event{Type: EventDoubleTap, Target: n})
}
