package mcpserver

import (
	"math"

	"whiteboard/internal/domain"
)

const (
	GridSize = 20.0
	Padding  = 20.0
	MaxRowW  = 1800.0 // row width used when placing outside any board
)

// LayoutEngine picks positions for agent-created elements so they don't
// land on top of existing objects.
type LayoutEngine struct {
	gridSize float64
	padding  float64
	maxRowW  float64
}

func NewLayoutEngine() *LayoutEngine {
	return &LayoutEngine{
		gridSize: GridSize,
		padding:  Padding,
		maxRowW:  MaxRowW,
	}
}

// Area is the region a placement scan covers, in world coordinates.
type Area struct {
	X, Y, Width, Height float64
}

// BoardArea returns the area covered by b.
func BoardArea(b domain.Board) Area {
	return Area{X: b.X, Y: b.Y, Width: b.Width, Height: b.Height}
}

func (le *LayoutEngine) snap(v float64) float64 {
	return math.Round(v/le.gridSize) * le.gridSize
}

type rect struct {
	x, y, w, h float64
}

func (a rect) intersects(b rect) bool {
	return a.x < b.x+b.w && a.x+a.w > b.x &&
		a.y < b.y+b.h && a.y+a.h > b.y
}

// NextPosition scans area row by row for the first grid point where a
// (w, h) element clears every existing object by the padding. A zero
// height area is unbounded downwards. When nothing fits it falls back to
// the area origin, or just below the lowest object.
func (le *LayoutEngine) NextPosition(area Area, existing []domain.ObjectInfo, w, h float64) (float64, float64) {
	rowW := area.Width
	if rowW <= 0 {
		rowW = le.maxRowW
	}
	maxY := area.Height
	if maxY <= 0 {
		maxY = 100000
	}

	occupied := make([]rect, len(existing))
	for i, o := range existing {
		occupied[i] = rect{
			x: o.X - area.X - le.padding,
			y: o.Y - area.Y - le.padding,
			w: o.Width + le.padding*2,
			h: o.Height + le.padding*2,
		}
	}

	candidate := rect{w: w, h: h}
	for y := 0.0; y+h <= maxY; y += le.gridSize {
		for x := 0.0; x+w <= rowW; x += le.gridSize {
			candidate.x = le.snap(x)
			candidate.y = le.snap(y)
			overlaps := false
			for _, occ := range occupied {
				if candidate.intersects(occ) {
					overlaps = true
					break
				}
			}
			if !overlaps {
				return area.X + candidate.x, area.Y + candidate.y
			}
		}
	}

	if area.Height > 0 {
		return area.X, area.Y
	}
	bottom := 0.0
	for _, o := range existing {
		if o.Y-area.Y+o.Height > bottom {
			bottom = o.Y - area.Y + o.Height
		}
	}
	return area.X, area.Y + le.snap(bottom+le.padding)
}

// Placement is a computed target position for one object.
type Placement struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// ArrangeGrid lays objects out left to right from (startX, startY),
// wrapping when a row would exceed rowW.
func (le *LayoutEngine) ArrangeGrid(objects []domain.ObjectInfo, startX, startY, rowW float64) []Placement {
	if rowW <= 0 {
		rowW = le.maxRowW
	}
	x := le.snap(startX)
	y := le.snap(startY)
	rowHeight := 0.0

	out := make([]Placement, 0, len(objects))
	for _, o := range objects {
		if x > le.snap(startX) && x+o.Width > startX+rowW {
			x = le.snap(startX)
			y += le.snap(rowHeight + le.padding)
			rowHeight = 0
		}
		out = append(out, Placement{ID: o.ID, X: x, Y: y})
		if o.Height > rowHeight {
			rowHeight = o.Height
		}
		x += le.snap(o.Width + le.padding)
	}
	return out
}
