package service

import (
	"fmt"

	"github.com/google/uuid"

	"whiteboard/internal/domain"
	"whiteboard/internal/scene"
)

const (
	guidelineColor  = "#00d4ff"
	guidelineOrigin = -100000
	guidelineLength = 200000
)

// Guidelines owns the reference lines drawn across the whole canvas. The
// visibility flag applies to all of them at once.
type Guidelines struct {
	tree    *scene.Tree
	lines   []*guideline
	visible bool
}

type guideline struct {
	domain.Guideline
	offs []func()
}

func NewGuidelines(tree *scene.Tree, visible bool) *Guidelines {
	return &Guidelines{tree: tree, visible: visible}
}

// Add draws a guideline at position and returns its id. Dragging the line
// updates the stored position; double tapping removes it.
func (g *Guidelines) Add(o domain.Orientation, position float64) (string, error) {
	if !o.Valid() {
		return "", fmt.Errorf("add guideline: invalid orientation %q", o)
	}
	node := scene.NewNode(scene.TagLine)
	node.Stroke = guidelineColor
	node.StrokeWidth = 1
	node.DashPattern = []float64{4, 4}
	node.Editable = false
	node.Visible = g.visible
	if o == domain.Horizontal {
		node.X, node.Y = guidelineOrigin, position
		node.Points = []float64{0, 0, guidelineLength, 0}
	} else {
		node.X, node.Y = position, guidelineOrigin
		node.Points = []float64{0, 0, 0, guidelineLength}
	}
	if err := g.tree.Root().Add(node); err != nil {
		return "", fmt.Errorf("add guideline: %w", err)
	}

	gl := &guideline{Guideline: domain.Guideline{
		ID:          uuid.New().String(),
		Orientation: o,
		Position:    position,
		Node:        node,
	}}
	id := gl.ID
	gl.offs = append(gl.offs,
		node.On(scene.EventDrag, func(ev scene.Event) {
			if o == domain.Horizontal {
				node.X = guidelineOrigin
				gl.Position = node.Y
			} else {
				node.Y = guidelineOrigin
				gl.Position = node.X
			}
		}),
		node.On(scene.EventDoubleTap, func(scene.Event) {
			g.Remove(id)
		}),
	)
	g.lines = append(g.lines, gl)
	return id, nil
}

// Remove deletes the guideline and its line node.
func (g *Guidelines) Remove(id string) bool {
	for i, gl := range g.lines {
		if gl.ID != id {
			continue
		}
		g.drop(gl)
		g.lines = append(g.lines[:i], g.lines[i+1:]...)
		return true
	}
	return false
}

func (g *Guidelines) drop(gl *guideline) {
	for _, off := range gl.offs {
		off()
	}
	gl.Node.Detach()
}

func (g *Guidelines) Clear() {
	for _, gl := range g.lines {
		g.drop(gl)
	}
	g.lines = nil
}

func (g *Guidelines) Toggle() bool {
	g.SetVisible(!g.visible)
	return g.visible
}

func (g *Guidelines) SetVisible(v bool) {
	g.visible = v
	for _, gl := range g.lines {
		gl.Node.Visible = v
	}
}

func (g *Guidelines) Visible() bool { return g.visible }

// UpdatePosition moves a guideline along its axis.
func (g *Guidelines) UpdatePosition(id string, position float64) bool {
	gl := g.find(id)
	if gl == nil {
		return false
	}
	gl.Position = position
	if gl.Orientation == domain.Horizontal {
		gl.Node.Y = position
	} else {
		gl.Node.X = position
	}
	return true
}

// Drag feeds a pointer drag to the guideline's line node.
func (g *Guidelines) Drag(id string, dx, dy float64) bool {
	gl := g.find(id)
	if gl == nil {
		return false
	}
	return gl.Node.Drag(dx, dy)
}

// DoubleTap feeds a double tap to the guideline's line node.
func (g *Guidelines) DoubleTap(id string) bool {
	gl := g.find(id)
	if gl == nil {
		return false
	}
	gl.Node.DoubleTap()
	return true
}

func (g *Guidelines) find(id string) *guideline {
	for _, gl := range g.lines {
		if gl.ID == id {
			return gl
		}
	}
	return nil
}

// List returns copies of the guidelines in creation order.
func (g *Guidelines) List() []domain.Guideline {
	out := make([]domain.Guideline, 0, len(g.lines))
	for _, gl := range g.lines {
		out = append(out, gl.Guideline)
	}
	return out
}

// SnapPositions returns guideline coordinates by axis; empty while the
// guidelines are hidden.
func (g *Guidelines) SnapPositions() domain.SnapPositions {
	out := domain.SnapPositions{Horizontal: []float64{}, Vertical: []float64{}}
	if !g.visible {
		return out
	}
	for _, gl := range g.lines {
		if gl.Orientation == domain.Horizontal {
			out.Horizontal = append(out.Horizontal, gl.Position)
		} else {
			out.Vertical = append(out.Vertical, gl.Position)
		}
	}
	return out
}

// Raise moves every guideline node back on top of the root stack.
func (g *Guidelines) Raise() {
	root := g.tree.Root()
	for _, gl := range g.lines {
		gl.Node.Detach()
		_ = root.Add(gl.Node)
	}
}
