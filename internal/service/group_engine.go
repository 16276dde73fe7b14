package service

import (
	"whiteboard/internal/scene"
)

// GroupEditState records which group, if any, is open for editing its
// children. One instance is owned by the Workspace.
type GroupEditState struct {
	group *scene.Node
}

// GroupEngine folds a selection into a group node and back.
type GroupEngine struct {
	tree        *scene.Tree
	editor      *scene.Editor
	registry    *ObjectRegistry
	containment *Containment
	history     History
	edit        *GroupEditState
}

func NewGroupEngine(tree *scene.Tree, editor *scene.Editor, registry *ObjectRegistry, containment *Containment, history History, edit *GroupEditState) *GroupEngine {
	if edit == nil {
		edit = &GroupEditState{}
	}
	return &GroupEngine{
		tree:        tree,
		editor:      editor,
		registry:    registry,
		containment: containment,
		history:     history,
		edit:        edit,
	}
}

func IsGroup(n *scene.Node) bool {
	return n != nil && n.Tag == scene.TagGroup
}

// GroupDepth counts the group ancestors of n.
func GroupDepth(n *scene.Node) int {
	if n == nil {
		return 0
	}
	depth := 0
	for p := n.Parent(); p != nil; p = p.Parent() {
		if IsGroup(p) {
			depth++
		}
	}
	return depth
}

// ParentGroup returns n's parent when it is a group.
func ParentGroup(n *scene.Node) *scene.Node {
	if n == nil || !IsGroup(n.Parent()) {
		return nil
	}
	return n.Parent()
}

// CanGroup reports whether Group would succeed on the current selection.
func (g *GroupEngine) CanGroup() bool {
	return g.groupable(g.editor.List())
}

// CanUngroup reports whether Ungroup would succeed on the current selection.
func (g *GroupEngine) CanUngroup() bool {
	return g.ungroupable(g.editor.List()) != nil
}

func (g *GroupEngine) groupable(sel []*scene.Node) bool {
	if len(sel) < 2 {
		return false
	}
	for _, n := range sel {
		if n.Tag == scene.TagFrame || n.Tag == scene.TagLeafer {
			return false
		}
		if n.Parent() == nil || !g.tree.Contains(n) {
			return false
		}
		for _, other := range sel {
			if other != n && n.IsAncestorOf(other) {
				return false
			}
		}
	}
	return true
}

func (g *GroupEngine) ungroupable(sel []*scene.Node) *scene.Node {
	if len(sel) != 1 {
		return nil
	}
	grp := sel[0]
	if !IsGroup(grp) || grp.ChildCount() == 0 || grp.Parent() == nil {
		return nil
	}
	return grp
}

// Group wraps the selected nodes in a new group placed at the top-left of
// their combined rendered bounds. Members are re-origined to group space
// and leave the registry; the group is registered and selected. It
// returns nil without touching anything when the selection is not
// groupable.
func (g *GroupEngine) Group() *scene.Node {
	sel := g.editor.List()
	if !g.groupable(sel) {
		return nil
	}

	boxes := make([]scene.Bounds, len(sel))
	origins := make([][2]float64, len(sel))
	for i, n := range sel {
		boxes[i] = n.Bounds()
		origins[i][0], origins[i][1] = n.WorldPosition()
	}
	union, _ := scene.UnionAll(boxes)

	g.editor.Cancel()

	parent := sel[0].Parent()
	if parent == nil {
		parent = g.containment.InsertionContainer()
	}

	group := scene.NewNode(scene.TagGroup)
	group.X, group.Y = scene.ToParentSpace(parent, union.X, union.Y)
	_ = parent.Add(group)

	inv, _ := group.WorldMatrix().Invert()
	for i, n := range sel {
		n.Detach()
		n.X, n.Y = inv.Apply(origins[i][0], origins[i][1])
		_ = group.Add(n)
		g.registry.UnregisterNode(n)
	}

	if g.topLevel(parent) {
		g.registry.Register(group)
	}
	g.editor.Select(group)
	g.history.AddSnapshot()
	return group
}

// Ungroup dissolves the single selected group one level. Children move to
// the group's parent at the group's stacking position, keep their world
// position and are registered with fresh ids. It returns nil when the
// selection is not exactly one non-empty group.
func (g *GroupEngine) Ungroup() []*scene.Node {
	grp := g.ungroupable(g.editor.List())
	if grp == nil {
		return nil
	}

	g.editor.Cancel()

	target := grp.Parent()
	index := target.IndexOf(grp)
	children := grp.Children()

	worlds := make([][2]float64, len(children))
	for i, c := range children {
		worlds[i][0], worlds[i][1] = c.WorldPosition()
	}

	g.registry.UnregisterNode(grp)
	if g.edit.group == grp {
		g.edit.group = nil
	}

	for i, c := range children {
		grp.Remove(c)
		c.Rotation += grp.Rotation
		c.ScaleX *= grp.ScaleX
		c.ScaleY *= grp.ScaleY
		_ = target.AddAt(c, index+1+i)
		c.SetWorldPosition(worlds[i][0], worlds[i][1])
		if g.topLevel(target) {
			g.registry.Register(c)
		}
	}
	target.Remove(grp)

	g.editor.Select(children...)
	g.history.AddSnapshot()
	return children
}

// topLevel reports whether children of parent are registered elements:
// only direct children of the root and of board frames are.
func (g *GroupEngine) topLevel(parent *scene.Node) bool {
	return parent == g.tree.Root() || parent.Tag == scene.TagFrame
}

// EnterGroupEdit opens a group so its children can be edited in place.
func (g *GroupEngine) EnterGroupEdit(n *scene.Node) bool {
	if !IsGroup(n) {
		return false
	}
	g.edit.group = n
	return true
}

func (g *GroupEngine) ExitGroupEdit() {
	g.edit.group = nil
}

func (g *GroupEngine) IsEditingGroup() bool {
	return g.edit.group != nil
}

func (g *GroupEngine) EditingGroup() *scene.Node {
	return g.edit.group
}
