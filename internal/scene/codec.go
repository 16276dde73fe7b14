package scene

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrUnknownTag = errors.New("scene: unknown tag")

// NodeData is the plain-data form of a node. Missing numeric fields
// decode as zero; missing scale, opacity and flags take node defaults.
type NodeData struct {
	Tag Tag `json:"tag"`

	// ID and BoardID carry registry identity in snapshots. Clipboard
	// payloads never set them.
	ID      string `json:"id,omitempty"`
	BoardID string `json:"boardId,omitempty"`

	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Width    float64  `json:"width,omitempty"`
	Height   float64  `json:"height,omitempty"`
	Rotation float64  `json:"rotation,omitempty"`
	ScaleX   *float64 `json:"scaleX,omitempty"`
	ScaleY   *float64 `json:"scaleY,omitempty"`

	Fill        string    `json:"fill,omitempty"`
	Stroke      string    `json:"stroke,omitempty"`
	StrokeWidth float64   `json:"strokeWidth,omitempty"`
	DashPattern []float64 `json:"dashPattern,omitempty"`
	Opacity     *float64  `json:"opacity,omitempty"`

	Points     []float64 `json:"points,omitempty"`
	Path       string    `json:"path,omitempty"`
	StartArrow string    `json:"startArrow,omitempty"`
	EndArrow   string    `json:"endArrow,omitempty"`
	Text       string    `json:"text,omitempty"`
	FontSize   float64   `json:"fontSize,omitempty"`
	URL        string    `json:"url,omitempty"`

	Editable  *bool  `json:"editable,omitempty"`
	Visible   *bool  `json:"visible,omitempty"`
	Draggable *bool  `json:"draggable,omitempty"`
	Overflow  string `json:"overflow,omitempty"`

	Children []NodeData `json:"children,omitempty"`
}

// Encode captures n and its descendants as plain data.
func Encode(n *Node) NodeData {
	d := NodeData{
		Tag:         n.Tag,
		X:           n.X,
		Y:           n.Y,
		Width:       n.Width,
		Height:      n.Height,
		Rotation:    n.Rotation,
		Fill:        n.Fill,
		Stroke:      n.Stroke,
		StrokeWidth: n.StrokeWidth,
		DashPattern: cloneFloats(n.DashPattern),
		Points:      cloneFloats(n.Points),
		Path:        n.Path,
		StartArrow:  n.StartArrow,
		EndArrow:    n.EndArrow,
		Text:        n.Text,
		FontSize:    n.FontSize,
		URL:         n.URL,
		Overflow:    n.Overflow,
	}
	if n.ScaleX != 1 {
		d.ScaleX = floatPtr(n.ScaleX)
	}
	if n.ScaleY != 1 {
		d.ScaleY = floatPtr(n.ScaleY)
	}
	if n.Opacity != 1 {
		d.Opacity = floatPtr(n.Opacity)
	}
	if !n.Editable {
		d.Editable = boolPtr(false)
	}
	if !n.Visible {
		d.Visible = boolPtr(false)
	}
	if !n.Draggable {
		d.Draggable = boolPtr(false)
	}
	for _, c := range n.children {
		d.Children = append(d.Children, Encode(c))
	}
	return d
}

// Factory builds a node of one tag from plain data.
type Factory func(d NodeData) (*Node, error)

// Codec reconstructs nodes through a tag-keyed factory table.
type Codec struct {
	factories map[Tag]Factory
}

// NewCodec returns a codec that knows every drawable tag plus frames.
func NewCodec() *Codec {
	c := &Codec{factories: make(map[Tag]Factory)}
	for _, tag := range DrawableTags {
		c.factories[tag] = basicFactory(tag)
	}
	c.factories[TagFrame] = basicFactory(TagFrame)
	c.factories[TagLine] = pointsFactory(TagLine)
	c.factories[TagPen] = pointsFactory(TagPen)
	c.factories[TagImage] = imageFactory
	return c
}

// Register installs or replaces the factory for tag.
func (c *Codec) Register(tag Tag, f Factory) {
	c.factories[tag] = f
}

// Decode rebuilds a detached node (with children) from d.
func (c *Codec) Decode(d NodeData) (*Node, error) {
	if d.Tag == "" {
		return nil, fmt.Errorf("decode: missing tag: %w", ErrUnknownTag)
	}
	f, ok := c.factories[d.Tag]
	if !ok {
		return nil, fmt.Errorf("decode %q: %w", d.Tag, ErrUnknownTag)
	}
	n, err := f(d)
	if err != nil {
		return nil, fmt.Errorf("decode %q: %w", d.Tag, err)
	}
	if len(d.Children) > 0 && !n.Tag.IsContainer() {
		return nil, fmt.Errorf("decode %q: %w", d.Tag, ErrNotContainer)
	}
	for _, cd := range d.Children {
		child, err := c.Decode(cd)
		if err != nil {
			return nil, err
		}
		if err := n.Add(child); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// DecodeJSON unmarshals raw and decodes it.
func (c *Codec) DecodeJSON(raw []byte) (*Node, NodeData, error) {
	var d NodeData
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, d, fmt.Errorf("decode: %w", err)
	}
	n, err := c.Decode(d)
	return n, d, err
}

func basicFactory(tag Tag) Factory {
	return func(d NodeData) (*Node, error) {
		return apply(NewNode(tag), d), nil
	}
}

func pointsFactory(tag Tag) Factory {
	return func(d NodeData) (*Node, error) {
		if len(d.Points) < 4 || len(d.Points)%2 != 0 {
			return nil, fmt.Errorf("need an even number of at least 4 point values, got %d", len(d.Points))
		}
		return apply(NewNode(tag), d), nil
	}
}

func imageFactory(d NodeData) (*Node, error) {
	if d.URL == "" {
		return nil, errors.New("image without url")
	}
	return apply(NewNode(TagImage), d), nil
}

func apply(n *Node, d NodeData) *Node {
	n.X, n.Y = d.X, d.Y
	n.Width, n.Height = d.Width, d.Height
	n.Rotation = d.Rotation
	if d.ScaleX != nil {
		n.ScaleX = *d.ScaleX
	}
	if d.ScaleY != nil {
		n.ScaleY = *d.ScaleY
	}
	n.Fill = d.Fill
	n.Stroke = d.Stroke
	n.StrokeWidth = d.StrokeWidth
	n.DashPattern = cloneFloats(d.DashPattern)
	if d.Opacity != nil {
		n.Opacity = *d.Opacity
	}
	n.Points = cloneFloats(d.Points)
	n.Path = d.Path
	n.StartArrow = d.StartArrow
	n.EndArrow = d.EndArrow
	n.Text = d.Text
	n.FontSize = d.FontSize
	n.URL = d.URL
	if d.Editable != nil {
		n.Editable = *d.Editable
	}
	if d.Visible != nil {
		n.Visible = *d.Visible
	}
	if d.Draggable != nil {
		n.Draggable = *d.Draggable
	}
	if d.Overflow != "" {
		n.Overflow = d.Overflow
	}
	return n
}

func cloneFloats(in []float64) []float64 {
	if in == nil {
		return nil
	}
	out := make([]float64, len(in))
	copy(out, in)
	return out
}

func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool        { return &v }
