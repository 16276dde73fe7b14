package service

import (
	"whiteboard/internal/domain"
	"whiteboard/internal/scene"
)

// Containment resolves board membership and insertion targets from the
// live scene topology. Nothing here is cached.
type Containment struct {
	tree     *scene.Tree
	boards   *BoardService
	registry *ObjectRegistry
}

func NewContainment(tree *scene.Tree, boards *BoardService, registry *ObjectRegistry) *Containment {
	return &Containment{tree: tree, boards: boards, registry: registry}
}

// FindOwningBoard walks the ancestors of node until one is a board frame.
func (c *Containment) FindOwningBoard(node *scene.Node) *domain.Board {
	if node == nil {
		return nil
	}
	for p := node.Parent(); p != nil; p = p.Parent() {
		if p.Tag != scene.TagFrame {
			continue
		}
		if b := c.boards.ByFrame(p); b != nil {
			return b
		}
	}
	return nil
}

// IsInBoard reports whether node sits inside any board frame.
func (c *Containment) IsInBoard(node *scene.Node) bool {
	return c.FindOwningBoard(node) != nil
}

// InsertionContainer is the active board's frame, or the root.
func (c *Containment) InsertionContainer() *scene.Node {
	if b := c.boards.Active(); b != nil && b.Frame != nil {
		return b.Frame
	}
	return c.tree.Root()
}

// ToLocal converts a world point into the insertion container's space.
func (c *Containment) ToLocal(x, y float64) (float64, float64) {
	if b := c.boards.Active(); b != nil && b.Frame != nil {
		fx, fy := b.Frame.WorldPosition()
		return x - fx, y - fy
	}
	return x, y
}

// BoardObjects derives the registered objects owned by a board.
func (c *Containment) BoardObjects(boardID string) []*domain.Object {
	var out []*domain.Object
	for _, obj := range c.registry.All() {
		if b := c.FindOwningBoard(obj.Node); b != nil && b.ID == boardID {
			out = append(out, obj)
		}
	}
	return out
}
