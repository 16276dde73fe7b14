package scene

// Tree owns the root container of a scene. Every node reachable from
// Root is part of the scene; detached nodes are not.
type Tree struct {
	root *Node
}

// NewTree creates an empty scene with a Leafer root.
func NewTree() *Tree {
	return &Tree{root: NewNode(TagLeafer)}
}

// Root returns the root container.
func (t *Tree) Root() *Node { return t.root }

// Attach appends node to parent.
func Attach(parent, node *Node) error {
	return parent.Add(node)
}

// AttachAt inserts node into parent at index.
func AttachAt(parent, node *Node, index int) error {
	return parent.AddAt(node, index)
}

// Detach removes node from parent.
func Detach(parent, node *Node) error {
	if !parent.Remove(node) {
		return ErrNotChild
	}
	return nil
}

// Reparent moves node under newParent at the top of its stack while
// keeping its world position.
func Reparent(node, newParent *Node) error {
	if node == newParent || node.IsAncestorOf(newParent) {
		return ErrCycle
	}
	if !newParent.Tag.IsContainer() {
		return ErrNotContainer
	}
	wx, wy := node.WorldPosition()
	node.Detach()
	if err := newParent.Add(node); err != nil {
		return err
	}
	node.SetWorldPosition(wx, wy)
	return nil
}

// Contains reports whether node is attached somewhere under the root.
func (t *Tree) Contains(node *Node) bool {
	return node != nil && t.root.IsAncestorOf(node)
}

// Find returns the attached node with the given inner id.
func (t *Tree) Find(innerID uint64) *Node {
	var found *Node
	t.root.Walk(func(n *Node) bool {
		if found != nil {
			return false
		}
		if n.InnerID == innerID {
			found = n
			return false
		}
		return true
	})
	return found
}

// Clear detaches every child of the root.
func (t *Tree) Clear() {
	for _, c := range t.root.Children() {
		t.root.Remove(c)
	}
}
