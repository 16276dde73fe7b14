package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"whiteboard/internal/domain"
	"whiteboard/internal/scene"
)

var ErrNoImage = errors.New("no image selected")

// PolygonCloseDistance is how near to the first vertex a new point must
// land to close the polygon.
const PolygonCloseDistance = 15

const defaultText = "Double-click to edit"

// ToolStyle is the current drawing style applied to new elements.
type ToolStyle struct {
	Fill        string  `json:"fill"`
	Stroke      string  `json:"stroke"`
	StrokeWidth float64 `json:"strokeWidth"`
	TextColor   string  `json:"textColor"`
	FontSize    float64 `json:"fontSize"`
}

var DefaultToolStyle = ToolStyle{
	Fill:        "#3B82F6",
	Stroke:      "#3B82F6",
	StrokeWidth: 2,
	TextColor:   "#1F2937",
	FontSize:    16,
}

// ElementSpec describes an element to insert. X and Y are world
// coordinates; Points are relative to them.
type ElementSpec struct {
	Type        domain.ElementType `json:"type"`
	X           float64            `json:"x"`
	Y           float64            `json:"y"`
	Width       float64            `json:"width,omitempty"`
	Height      float64            `json:"height,omitempty"`
	Points      []float64          `json:"points,omitempty"`
	Text        string             `json:"text,omitempty"`
	FontSize    float64            `json:"fontSize,omitempty"`
	URL         string             `json:"url,omitempty"`
	Fill        string             `json:"fill,omitempty"`
	Stroke      string             `json:"stroke,omitempty"`
	StrokeWidth float64            `json:"strokeWidth,omitempty"`
	StartArrow  string             `json:"startArrow,omitempty"`
	EndArrow    string             `json:"endArrow,omitempty"`
}

// ImageFile is what an image picker hands back.
type ImageFile struct {
	URL    string
	Width  float64
	Height float64
}

// ImagePicker asks the user for an image. It may block until the user
// answers and returns ErrNoImage when they cancel.
type ImagePicker interface {
	PickImage(ctx context.Context) (ImageFile, error)
}

// ElementTools turns finished tool input into registered elements placed
// in the insertion container.
type ElementTools struct {
	editor      *scene.Editor
	registry    *ObjectRegistry
	containment *Containment
	history     History
	style       ToolStyle

	polygon     *scene.Node
	polygonPts  []float64 // container-local x,y pairs
	polygonHome *scene.Node
}

func NewElementTools(editor *scene.Editor, registry *ObjectRegistry, containment *Containment, history History, style ToolStyle) *ElementTools {
	return &ElementTools{
		editor:      editor,
		registry:    registry,
		containment: containment,
		history:     history,
		style:       style,
	}
}

func (t *ElementTools) Style() ToolStyle         { return t.style }
func (t *ElementTools) SetStyle(style ToolStyle) { t.style = style }

// Insert builds an element from spec, places it and selects it.
func (t *ElementTools) Insert(spec ElementSpec) (*domain.Object, error) {
	if !spec.Type.Valid() {
		return nil, fmt.Errorf("insert: unknown element type %q", spec.Type)
	}
	n := scene.NewNode(spec.Type.Tag())
	n.Width, n.Height = spec.Width, spec.Height
	n.Fill = firstNonEmpty(spec.Fill, t.style.Fill)
	n.Stroke = firstNonEmpty(spec.Stroke, t.style.Stroke)
	n.StrokeWidth = spec.StrokeWidth
	if n.StrokeWidth == 0 {
		n.StrokeWidth = t.style.StrokeWidth
	}

	switch spec.Type {
	case domain.ElementRect, domain.ElementCircle:
		if n.Width <= 0 || n.Height <= 0 {
			return nil, fmt.Errorf("insert %s: width and height must be positive", spec.Type)
		}
	case domain.ElementLine, domain.ElementArrow, domain.ElementPen, domain.ElementPolygon:
		if len(spec.Points) < 4 || len(spec.Points)%2 != 0 {
			return nil, fmt.Errorf("insert %s: need at least two x,y points", spec.Type)
		}
		n.Fill = ""
		n.Points = append([]float64(nil), spec.Points...)
		if spec.Type == domain.ElementPolygon {
			n.Fill = firstNonEmpty(spec.Fill, t.style.Fill)
			n.Path = pointsPath(spec.Points, true)
		}
		if spec.Type == domain.ElementArrow {
			n.StartArrow = firstNonEmpty(spec.StartArrow, "none")
			n.EndArrow = firstNonEmpty(spec.EndArrow, "arrow")
		}
	case domain.ElementText:
		n.Text = firstNonEmpty(spec.Text, defaultText)
		n.Fill = firstNonEmpty(spec.Fill, t.style.TextColor)
		n.Stroke = ""
		n.StrokeWidth = 0
		n.FontSize = spec.FontSize
		if n.FontSize <= 0 {
			n.FontSize = t.style.FontSize
		}
	case domain.ElementImage:
		if spec.URL == "" {
			return nil, fmt.Errorf("insert image: url required")
		}
		n.URL = spec.URL
		n.Fill, n.Stroke, n.StrokeWidth = "", "", 0
	case domain.ElementGroup:
		return nil, fmt.Errorf("insert: groups are created by grouping a selection")
	}

	return t.place(n, spec.X, spec.Y), nil
}

// PlaceText inserts a text element at a world point.
func (t *ElementTools) PlaceText(x, y float64, text string) *domain.Object {
	obj, _ := t.Insert(ElementSpec{Type: domain.ElementText, X: x, Y: y, Text: text})
	return obj
}

// InsertImage inserts an already chosen image at a world point.
func (t *ElementTools) InsertImage(x, y float64, img ImageFile) (*domain.Object, error) {
	return t.Insert(ElementSpec{
		Type:   domain.ElementImage,
		X:      x,
		Y:      y,
		Width:  img.Width,
		Height: img.Height,
		URL:    img.URL,
	})
}

// place converts the world point to container space, attaches, registers,
// selects and records one snapshot.
func (t *ElementTools) place(n *scene.Node, x, y float64) *domain.Object {
	container := t.containment.InsertionContainer()
	n.X, n.Y = scene.ToParentSpace(container, x, y)
	_ = container.Add(n)
	obj := t.registry.Register(n)
	t.editor.Select(n)
	t.history.AddSnapshot()
	return obj
}

// ── Polygon ──

// AddPolygonPoint extends the polygon being drawn with a world point. A
// point close to the first vertex of a polygon with at least three
// vertices closes and finishes it, returning the registered object.
func (t *ElementTools) AddPolygonPoint(x, y float64) *domain.Object {
	if t.polygon == nil {
		container := t.containment.InsertionContainer()
		lx, ly := scene.ToParentSpace(container, x, y)
		n := scene.NewNode(scene.TagPath)
		n.Fill = t.style.Fill
		n.Stroke = t.style.Stroke
		n.StrokeWidth = t.style.StrokeWidth
		_ = container.Add(n)
		t.polygon = n
		t.polygonHome = container
		t.polygonPts = []float64{lx, ly}
		t.syncPolygon()
		return nil
	}

	lx, ly := scene.ToParentSpace(t.polygonHome, x, y)
	if len(t.polygonPts) >= 6 && math.Hypot(lx-t.polygonPts[0], ly-t.polygonPts[1]) < PolygonCloseDistance {
		return t.FinishPolygon(true)
	}
	t.polygonPts = append(t.polygonPts, lx, ly)
	t.syncPolygon()
	return nil
}

// PolygonPoints returns the vertices placed so far in container space.
func (t *ElementTools) PolygonPoints() []float64 {
	return append([]float64(nil), t.polygonPts...)
}

func (t *ElementTools) DrawingPolygon() bool { return t.polygon != nil }

// FinishPolygon registers the polygon. Fewer than two vertices cancels
// instead. closePath adds the closing segment when there are at least
// three vertices.
func (t *ElementTools) FinishPolygon(closePath bool) *domain.Object {
	if t.polygon == nil || len(t.polygonPts) < 4 {
		t.CancelPolygon()
		return nil
	}
	n := t.polygon
	n.Path = pointsPath(t.polygonPts, closePath && len(t.polygonPts) >= 6)
	t.resetPolygon()

	obj := t.registry.Register(n)
	t.editor.Select(n)
	t.history.AddSnapshot()
	return obj
}

// CancelPolygon drops the polygon in progress.
func (t *ElementTools) CancelPolygon() {
	if t.polygon != nil {
		t.polygon.Detach()
	}
	t.resetPolygon()
}

func (t *ElementTools) resetPolygon() {
	t.polygon = nil
	t.polygonHome = nil
	t.polygonPts = nil
}

func (t *ElementTools) syncPolygon() {
	t.polygon.Points = append([]float64(nil), t.polygonPts...)
	t.polygon.Path = pointsPath(t.polygonPts, false)
}

// pointsPath renders "M x y L x y ..." with an optional closing " Z".
func pointsPath(pts []float64, closed bool) string {
	if len(pts) < 2 {
		return ""
	}
	var b strings.Builder
	for i := 0; i+1 < len(pts); i += 2 {
		if i == 0 {
			b.WriteString("M ")
		} else {
			b.WriteString(" L ")
		}
		b.WriteString(fmtCoord(pts[i]))
		b.WriteByte(' ')
		b.WriteString(fmtCoord(pts[i+1]))
	}
	if closed {
		b.WriteString(" Z")
	}
	return b.String()
}

func fmtCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
