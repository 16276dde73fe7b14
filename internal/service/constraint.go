package service

import (
	"math"

	"whiteboard/internal/domain"
	"whiteboard/internal/scene"
)

// ConstraintEngine keeps selected elements inside their owning board
// while they are dragged.
type ConstraintEngine struct {
	containment *Containment
}

func NewConstraintEngine(containment *Containment) *ConstraintEngine {
	return &ConstraintEngine{containment: containment}
}

// Attach clamps the selection on every editor move event until the
// returned function is called.
func (c *ConstraintEngine) Attach(editor *scene.Editor) (detach func()) {
	return editor.On(scene.EventMove, func(scene.Event) {
		c.ConstrainSelection(editor.List())
	})
}

// ConstrainSelection clamps every unlocked node that belongs to a board.
func (c *ConstraintEngine) ConstrainSelection(nodes []*scene.Node) {
	for _, n := range nodes {
		if !n.Editable {
			continue
		}
		if b := c.containment.FindOwningBoard(n); b != nil {
			c.Constrain(n, b)
		}
	}
}

// Constrain moves node so its rendered box stays within the board:
// 0 ≤ x ≤ max(0, boardWidth-width), same for y. An element larger than
// the board floors at 0 and overflows on the far side. It reports
// whether the node was moved.
func (c *ConstraintEngine) Constrain(node *scene.Node, b *domain.Board) bool {
	if b.Frame == nil {
		return false
	}
	box := node.Bounds()
	fx, fy := b.Frame.WorldPosition()
	lx, ly := box.X-fx, box.Y-fy

	cx := clamp(lx, 0, math.Max(0, b.Width-box.Width))
	cy := clamp(ly, 0, math.Max(0, b.Height-box.Height))
	if cx == lx && cy == ly {
		return false
	}

	wx, wy := node.WorldPosition()
	node.SetWorldPosition(wx+(cx-lx), wy+(cy-ly))
	return true
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
