package domain

import "whiteboard/internal/scene"

type Orientation string

const (
	Horizontal Orientation = "horizontal"
	Vertical   Orientation = "vertical"
)

func (o Orientation) Valid() bool {
	return o == Horizontal || o == Vertical
}

// Guideline is a reference line spanning the canvas at one coordinate.
type Guideline struct {
	ID          string      `json:"id"`
	Orientation Orientation `json:"orientation"`
	Position    float64     `json:"position"`
	Node        *scene.Node `json:"-"`
}

// SnapPositions groups guideline coordinates by axis.
type SnapPositions struct {
	Horizontal []float64 `json:"horizontal"`
	Vertical   []float64 `json:"vertical"`
}
