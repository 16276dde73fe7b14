package domain

import (
	"time"

	"whiteboard/internal/scene"
)

type Board struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Width           float64     `json:"width"`
	Height          float64     `json:"height"`
	X               float64     `json:"x"`
	Y               float64     `json:"y"`
	BackgroundColor string      `json:"backgroundColor"`
	Frame           *scene.Node `json:"-"` // owned by the scene tree
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// TransparentBackground leaves the board frame unfilled.
const TransparentBackground = "transparent"

type CreateBoardOptions struct {
	Name            string   `json:"name"`
	Width           float64  `json:"width"`
	Height          float64  `json:"height"`
	X               *float64 `json:"x,omitempty"`
	Y               *float64 `json:"y,omitempty"`
	BackgroundColor string   `json:"backgroundColor,omitempty"`
}

// UpdateBoardOptions is a partial update; nil fields are left alone.
type UpdateBoardOptions struct {
	Name            *string  `json:"name,omitempty"`
	Width           *float64 `json:"width,omitempty"`
	Height          *float64 `json:"height,omitempty"`
	X               *float64 `json:"x,omitempty"`
	Y               *float64 `json:"y,omitempty"`
	BackgroundColor *string  `json:"backgroundColor,omitempty"`
}

type BoardPreset struct {
	Name   string  `json:"name"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

var DefaultBoardSize = BoardPreset{Name: "800x600", Width: 800, Height: 600}

// BoardPresets are the canvas sizes offered when creating a board. The
// custom entry has zero size and falls back to the default.
var BoardPresets = []BoardPreset{
	{Name: "A4 Portrait", Width: 595, Height: 842},
	{Name: "A4 Landscape", Width: 842, Height: 595},
	{Name: "1920x1080", Width: 1920, Height: 1080},
	{Name: "1280x720", Width: 1280, Height: 720},
	DefaultBoardSize,
	{Name: "Custom", Width: 0, Height: 0},
}
