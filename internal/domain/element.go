package domain

import "whiteboard/internal/scene"

type ElementType string

const (
	ElementRect    ElementType = "rect"
	ElementCircle  ElementType = "circle"
	ElementLine    ElementType = "line"
	ElementArrow   ElementType = "arrow"
	ElementPen     ElementType = "pen"
	ElementText    ElementType = "text"
	ElementImage   ElementType = "image"
	ElementPolygon ElementType = "polygon"
	ElementGroup   ElementType = "group"
)

// ElementTypes lists every valid element type.
var ElementTypes = []ElementType{
	ElementRect, ElementCircle, ElementLine, ElementArrow, ElementPen,
	ElementText, ElementImage, ElementPolygon, ElementGroup,
}

func (t ElementType) Valid() bool {
	for _, v := range ElementTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Tag returns the scene tag that renders this element type.
func (t ElementType) Tag() scene.Tag {
	switch t {
	case ElementRect:
		return scene.TagRect
	case ElementCircle:
		return scene.TagEllipse
	case ElementLine, ElementArrow:
		return scene.TagLine
	case ElementPen:
		return scene.TagPen
	case ElementText:
		return scene.TagText
	case ElementImage:
		return scene.TagImage
	case ElementPolygon:
		return scene.TagPath
	case ElementGroup:
		return scene.TagGroup
	}
	return ""
}

// ElementTypeOf derives the element type of a node from its tag. A line
// with an arrowhead on either end is an arrow.
func ElementTypeOf(n *scene.Node) ElementType {
	switch n.Tag {
	case scene.TagRect:
		return ElementRect
	case scene.TagEllipse:
		return ElementCircle
	case scene.TagLine:
		if hasArrow(n.StartArrow) || hasArrow(n.EndArrow) {
			return ElementArrow
		}
		return ElementLine
	case scene.TagPen:
		return ElementPen
	case scene.TagText:
		return ElementText
	case scene.TagImage:
		return ElementImage
	case scene.TagPath:
		return ElementPolygon
	case scene.TagGroup:
		return ElementGroup
	}
	return ""
}

func hasArrow(s string) bool {
	return s != "" && s != "none"
}

// Object is a registered element: an application id bound to exactly one
// scene node.
type Object struct {
	ID   string
	Type ElementType
	Node *scene.Node
}

// ObjectInfo is the read model of an Object handed to UIs and tools.
type ObjectInfo struct {
	ID       string      `json:"id"`
	Type     ElementType `json:"type"`
	BoardID  string      `json:"boardId,omitempty"`
	X        float64     `json:"x"`
	Y        float64     `json:"y"`
	Width    float64     `json:"width"`
	Height   float64     `json:"height"`
	Index    int         `json:"index"`
	Locked   bool        `json:"locked"`
	Visible  bool        `json:"visible"`
	Children int         `json:"children,omitempty"`
}
