package document

import (
	"strings"

	"github.com/vectral/vectral/backend-go/internal/geometry"
)

type ElementType string

const (
	ElementShape ElementType = "shape"
	ElementText  ElementType = "text"
	ElementPath  ElementType = "path"
	ElementGroup ElementType = "group"
)

type ShapeKind string

const (
	ShapeRectangle ShapeKind = "rectangle"
	ShapeCircle    ShapeKind = "circle"
	ShapeEllipse   ShapeKind = "ellipse"
	ShapePolygon   ShapeKind = "polygon"
	ShapeStar      ShapeKind = "star"
)

// ShapeData parametrizes the shape kinds. Width/Height/CornerRadius describe
// rectangles, Radius circles, RadiusX/RadiusY ellipses, Points polygons, and
// Sides/OuterRadius/InnerRadius stars. Fields not used by Kind stay zero.
type ShapeData struct {
	Kind         ShapeKind        `json:"kind"`
	Width        float64          `json:"width,omitempty"`
	Height       float64          `json:"height,omitempty"`
	CornerRadius float64          `json:"cornerRadius,omitempty"`
	Radius       float64          `json:"radius,omitempty"`
	RadiusX      float64          `json:"radiusX,omitempty"`
	RadiusY      float64          `json:"radiusY,omitempty"`
	Points       []geometry.Point `json:"points,omitempty"`
	Sides        int              `json:"sides,omitempty"`
	OuterRadius  float64          `json:"outerRadius,omitempty"`
	InnerRadius  float64          `json:"innerRadius,omitempty"`
}

// Path returns the shape outline in local coordinates. Rectangles anchor
// their top-left corner at the local origin; radial shapes center on it.
func (s ShapeData) Path() geometry.VectorPath {
	switch s.Kind {
	case ShapeRectangle:
		if s.CornerRadius > 0 {
			return geometry.RoundedRectangle(0, 0, s.Width, s.Height, s.CornerRadius, s.CornerRadius)
		}
		return geometry.Rectangle(0, 0, s.Width, s.Height)
	case ShapeCircle:
		return geometry.Circle(0, 0, s.Radius)
	case ShapeEllipse:
		return geometry.Ellipse(0, 0, s.RadiusX, s.RadiusY)
	case ShapePolygon:
		return polygonPath(s.Points)
	case ShapeStar:
		return geometry.Star(0, 0, s.OuterRadius, s.InnerRadius, s.Sides)
	default:
		return geometry.VectorPath{}
	}
}

func polygonPath(points []geometry.Point) geometry.VectorPath {
	if len(points) < 3 {
		return geometry.VectorPath{}
	}
	segs := make([]geometry.PathSegment, 0, len(points)+1)
	segs = append(segs, geometry.MoveSegment(points[0]))
	for _, p := range points[1:] {
		segs = append(segs, geometry.LineSegment(p))
	}
	segs = append(segs, geometry.CloseSegment())
	return geometry.VectorPath{Segments: segs, Closed: true}
}

type FontWeight string

const (
	FontWeightNormal FontWeight = "normal"
	FontWeightBold   FontWeight = "bold"
)

type FontStyle string

const (
	FontStyleNormal FontStyle = "normal"
	FontStyleItalic FontStyle = "italic"
)

type TextAlign string

const (
	TextAlignLeft    TextAlign = "left"
	TextAlignCenter  TextAlign = "center"
	TextAlignRight   TextAlign = "right"
	TextAlignJustify TextAlign = "justify"
)

// TextData is an opaque content span. There is no shaping here: rendering
// hosts measure the laid-out text and write the result into MeasuredWidth
// and MeasuredHeight. Until they do, LocalBounds falls back to a fixed
// average-glyph estimate so bounds are never empty.
type TextData struct {
	Content        string     `json:"content"`
	FontFamily     string     `json:"fontFamily"`
	FontSize       float64    `json:"fontSize"`
	FontWeight     FontWeight `json:"fontWeight,omitempty"`
	FontStyle      FontStyle  `json:"fontStyle,omitempty"`
	TextAlign      TextAlign  `json:"textAlign,omitempty"`
	LetterSpacing  float64    `json:"letterSpacing,omitempty"`
	LineHeight     float64    `json:"lineHeight,omitempty"`
	MeasuredWidth  float64    `json:"measuredWidth,omitempty"`
	MeasuredHeight float64    `json:"measuredHeight,omitempty"`
}

// glyphAspect approximates the width of one glyph as a fraction of the font
// size when no host measurement is available.
const glyphAspect = 0.6

func (t TextData) LocalBounds() geometry.BoundingBox {
	if t.MeasuredWidth > 0 && t.MeasuredHeight > 0 {
		return geometry.BoundingBox{Width: t.MeasuredWidth, Height: t.MeasuredHeight}
	}
	lineHeight := t.LineHeight
	if lineHeight <= 0 {
		lineHeight = 1.2
	}
	lines := strings.Split(t.Content, "\n")
	longest := 0
	for _, line := range lines {
		if n := len([]rune(line)); n > longest {
			longest = n
		}
	}
	return geometry.BoundingBox{
		Width:  float64(longest) * t.FontSize * glyphAspect,
		Height: float64(len(lines)) * t.FontSize * lineHeight,
	}
}

// Element is the single node type a document is made of. Type selects which
// variant payload is set: Shape, Text, Path, or Children for groups. Bounds
// caches the world-space box and must be recomputed whenever the transform
// or the variant payload changes.
type Element struct {
	ID        string               `json:"id"`
	Type      ElementType          `json:"type"`
	Name      string               `json:"name,omitempty"`
	Transform geometry.Transform   `json:"transform"`
	Style     Style                `json:"style"`
	Bounds    geometry.BoundingBox `json:"boundingBox"`
	Visible   bool                 `json:"visible"`
	Locked    bool                 `json:"locked"`
	ZIndex    int                  `json:"zIndex"`

	Shape    *ShapeData           `json:"shape,omitempty"`
	Text     *TextData            `json:"text,omitempty"`
	Path     *geometry.VectorPath `json:"path,omitempty"`
	Children []string             `json:"children,omitempty"`
}

// NewElement returns a visible element with an identity transform and the
// default style. The caller fills in the variant payload.
func NewElement(id string, t ElementType) *Element {
	return &Element{
		ID:        id,
		Type:      t,
		Transform: geometry.IdentityTransform(),
		Style:     DefaultStyle(),
		Visible:   true,
	}
}

// LocalPath returns the element outline before its transform is applied.
// Groups have no outline of their own; their bounds derive from members.
func (e *Element) LocalPath() geometry.VectorPath {
	switch e.Type {
	case ElementShape:
		if e.Shape != nil {
			return e.Shape.Path()
		}
	case ElementPath:
		if e.Path != nil {
			return *e.Path
		}
	case ElementText:
		if e.Text != nil {
			box := e.Text.LocalBounds()
			return geometry.Rectangle(box.X, box.Y, box.Width, box.Height)
		}
	}
	return geometry.VectorPath{}
}

// RecomputeBounds refreshes the cached world-space bounds from the local
// outline and the current transform. Group bounds are maintained by the
// owning Document since they depend on other elements.
func (e *Element) RecomputeBounds() {
	if e.Type == ElementGroup {
		return
	}
	e.Bounds = e.LocalPath().Transformed(e.Transform).Bounds()
}

// Clone returns a deep copy. History snapshots and collaboration replays
// rely on clones never sharing mutable state with the original.
func (e *Element) Clone() *Element {
	c := *e
	c.Style = e.Style.Clone()
	if e.Shape != nil {
		shape := *e.Shape
		shape.Points = append([]geometry.Point(nil), e.Shape.Points...)
		c.Shape = &shape
	}
	if e.Text != nil {
		text := *e.Text
		c.Text = &text
	}
	if e.Path != nil {
		path := e.Path.Clone()
		c.Path = &path
	}
	if e.Children != nil {
		c.Children = append([]string(nil), e.Children...)
	}
	return &c
}
