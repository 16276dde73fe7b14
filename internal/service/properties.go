package service

import (
	"errors"

	"whiteboard/internal/domain"
	"whiteboard/internal/scene"
)

var ErrUnsupportedProperty = errors.New("property not supported by element")

type Property string

const (
	PropFill        Property = "fill"
	PropStroke      Property = "stroke"
	PropStrokeWidth Property = "strokeWidth"
	PropDashPattern Property = "dashPattern"
	PropStartArrow  Property = "startArrow"
	PropEndArrow    Property = "endArrow"
	PropTextColor   Property = "textColor"
	PropFontSize    Property = "fontSize"
	PropWidth       Property = "width"
	PropHeight      Property = "height"
	PropURL         Property = "url"
)

// PropertyUpdate is a partial style change. Nil fields are left alone.
// DashPattern set to an empty slice clears the dash.
type PropertyUpdate struct {
	Fill            *string    `json:"fill,omitempty"`
	Stroke          *string    `json:"stroke,omitempty"`
	StrokeWidth     *float64   `json:"strokeWidth,omitempty"`
	DashPattern     *[]float64 `json:"dashPattern,omitempty"`
	StartArrow      *string    `json:"startArrow,omitempty"`
	EndArrow        *string    `json:"endArrow,omitempty"`
	TextColor       *string    `json:"textColor,omitempty"`
	FontSize        *float64   `json:"fontSize,omitempty"`
	Width           *float64   `json:"width,omitempty"`
	Height          *float64   `json:"height,omitempty"`
	KeepAspectRatio bool       `json:"keepAspectRatio,omitempty"`
	URL             *string    `json:"url,omitempty"`
}

// propertyHandler applies the fields its element kind understands and
// returns the ones it changed.
type propertyHandler func(n *scene.Node, u PropertyUpdate) []Property

// propertyHandlers has one entry per drawable tag.
var propertyHandlers = map[scene.Tag]propertyHandler{
	scene.TagRect:    applyShape,
	scene.TagEllipse: applyShape,
	scene.TagPath:    applyShape,
	scene.TagPen:     applyStroke,
	scene.TagLine:    applyLine,
	scene.TagText:    applyText,
	scene.TagImage:   applyImage,
	scene.TagGroup:   func(*scene.Node, PropertyUpdate) []Property { return nil },
}

func applyStroke(n *scene.Node, u PropertyUpdate) []Property {
	var done []Property
	if u.Stroke != nil {
		n.Stroke = *u.Stroke
		done = append(done, PropStroke)
	}
	if u.StrokeWidth != nil {
		n.StrokeWidth = *u.StrokeWidth
		done = append(done, PropStrokeWidth)
	}
	if u.DashPattern != nil {
		n.DashPattern = nil
		if len(*u.DashPattern) > 0 {
			n.DashPattern = append([]float64(nil), (*u.DashPattern)...)
		}
		done = append(done, PropDashPattern)
	}
	return done
}

func applyShape(n *scene.Node, u PropertyUpdate) []Property {
	done := applyStroke(n, u)
	if u.Fill != nil {
		n.Fill = *u.Fill
		done = append(done, PropFill)
	}
	return done
}

// applyLine sets arrowheads only on lines that are already arrows.
func applyLine(n *scene.Node, u PropertyUpdate) []Property {
	done := applyStroke(n, u)
	if domain.ElementTypeOf(n) != domain.ElementArrow {
		return done
	}
	if u.StartArrow != nil {
		n.StartArrow = *u.StartArrow
		done = append(done, PropStartArrow)
	}
	if u.EndArrow != nil {
		n.EndArrow = *u.EndArrow
		done = append(done, PropEndArrow)
	}
	return done
}

func applyText(n *scene.Node, u PropertyUpdate) []Property {
	var done []Property
	if u.TextColor != nil {
		n.Fill = *u.TextColor
		done = append(done, PropTextColor)
	}
	if u.FontSize != nil && *u.FontSize > 0 {
		n.FontSize = *u.FontSize
		done = append(done, PropFontSize)
	}
	return done
}

func applyImage(n *scene.Node, u PropertyUpdate) []Property {
	var done []Property
	switch {
	case u.Width != nil:
		w := *u.Width
		if u.KeepAspectRatio && n.Width != 0 && n.Height != 0 {
			n.Height = w * (n.Height / n.Width)
			done = append(done, PropHeight)
		}
		n.Width = w
		done = append(done, PropWidth)
		if u.Height != nil && !u.KeepAspectRatio {
			n.Height = *u.Height
			done = append(done, PropHeight)
		}
	case u.Height != nil:
		h := *u.Height
		if u.KeepAspectRatio && n.Width != 0 && n.Height != 0 {
			n.Width = h * (n.Width / n.Height)
			done = append(done, PropWidth)
		}
		n.Height = h
		done = append(done, PropHeight)
	}
	if u.URL != nil && *u.URL != "" {
		n.URL = *u.URL
		done = append(done, PropURL)
	}
	return done
}

// PropertyEditor applies style updates through the per-tag handler table.
type PropertyEditor struct {
	history History
}

func NewPropertyEditor(history History) *PropertyEditor {
	return &PropertyEditor{history: history}
}

// Supports reports whether the node's kind has a property handler.
func (p *PropertyEditor) Supports(n *scene.Node) bool {
	_, ok := propertyHandlers[n.Tag]
	return ok
}

// Update applies u to n. One snapshot is recorded when anything changed;
// ErrUnsupportedProperty is returned when nothing applied.
func (p *PropertyEditor) Update(n *scene.Node, u PropertyUpdate) ([]Property, error) {
	h, ok := propertyHandlers[n.Tag]
	if !ok {
		return nil, ErrUnsupportedProperty
	}
	done := h(n, u)
	if len(done) == 0 {
		return nil, ErrUnsupportedProperty
	}
	p.history.AddSnapshot()
	return done, nil
}

func (p *PropertyEditor) SetFill(n *scene.Node, color string) bool {
	return p.ok(p.Update(n, PropertyUpdate{Fill: &color}))
}

func (p *PropertyEditor) SetStroke(n *scene.Node, color string) bool {
	return p.ok(p.Update(n, PropertyUpdate{Stroke: &color}))
}

// SetStrokeWidth changes the width and, when dash is non-nil, the dash.
func (p *PropertyEditor) SetStrokeWidth(n *scene.Node, width float64, dash []float64) bool {
	u := PropertyUpdate{StrokeWidth: &width}
	if dash != nil {
		u.DashPattern = &dash
	}
	return p.ok(p.Update(n, u))
}

func (p *PropertyEditor) SetDashPattern(n *scene.Node, pattern []float64) bool {
	if pattern == nil {
		pattern = []float64{}
	}
	return p.ok(p.Update(n, PropertyUpdate{DashPattern: &pattern}))
}

func (p *PropertyEditor) SetStartArrow(n *scene.Node, arrow string) bool {
	return p.ok(p.Update(n, PropertyUpdate{StartArrow: &arrow}))
}

func (p *PropertyEditor) SetEndArrow(n *scene.Node, arrow string) bool {
	return p.ok(p.Update(n, PropertyUpdate{EndArrow: &arrow}))
}

func (p *PropertyEditor) SetTextColor(n *scene.Node, color string) bool {
	return p.ok(p.Update(n, PropertyUpdate{TextColor: &color}))
}

func (p *PropertyEditor) SetFontSize(n *scene.Node, size float64) bool {
	return p.ok(p.Update(n, PropertyUpdate{FontSize: &size}))
}

func (p *PropertyEditor) SetImageWidth(n *scene.Node, width float64, keepAspect bool) bool {
	return p.ok(p.Update(n, PropertyUpdate{Width: &width, KeepAspectRatio: keepAspect}))
}

func (p *PropertyEditor) SetImageHeight(n *scene.Node, height float64, keepAspect bool) bool {
	return p.ok(p.Update(n, PropertyUpdate{Height: &height, KeepAspectRatio: keepAspect}))
}

func (p *PropertyEditor) ReplaceImageSource(n *scene.Node, url string) bool {
	return p.ok(p.Update(n, PropertyUpdate{URL: &url}))
}

func (p *PropertyEditor) ok(_ []Property, err error) bool { return err == nil }
