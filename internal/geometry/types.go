package geometry

import "math"

// Point is a plain 2D coordinate in scene space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p + q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Mul returns p scaled by s.
func (p Point) Mul(s float64) Point {
	return Point{X: p.X * s, Y: p.Y * s}
}

// Distance returns the euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// IsFinite reports whether both coordinates are finite numbers.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Transform is an affine transform descriptor. Rotation and skew angles are
// in radians. How incremental transforms compose around a pivot origin is
// defined by the transform engine.
type Transform struct {
	TranslateX float64 `json:"translateX"`
	TranslateY float64 `json:"translateY"`
	ScaleX     float64 `json:"scaleX"`
	ScaleY     float64 `json:"scaleY"`
	Rotation   float64 `json:"rotation"`
	SkewX      float64 `json:"skewX"`
	SkewY      float64 `json:"skewY"`
}

// IdentityTransform returns the identity descriptor: translate 0, scale 1,
// rotation 0, skew 0.
func IdentityTransform() Transform {
	return Transform{ScaleX: 1, ScaleY: 1}
}

// IsIdentity checks whether t is the identity descriptor (within epsilon).
func (t Transform) IsIdentity() bool {
	const eps = 1e-10
	return math.Abs(t.TranslateX) < eps &&
		math.Abs(t.TranslateY) < eps &&
		math.Abs(t.ScaleX-1) < eps &&
		math.Abs(t.ScaleY-1) < eps &&
		math.Abs(t.Rotation) < eps &&
		math.Abs(t.SkewX) < eps &&
		math.Abs(t.SkewY) < eps
}

// Matrix converts the descriptor to a concrete affine matrix, composing
// Translate * Rotate * Skew * Scale about the local origin.
func (t Transform) Matrix() Matrix2D {
	m := Translate(t.TranslateX, t.TranslateY).Multiply(Rotate(t.Rotation))
	if t.SkewX != 0 || t.SkewY != 0 {
		m = m.Multiply(Skew(t.SkewX, t.SkewY))
	}
	return m.Multiply(Scale(t.ScaleX, t.ScaleY))
}

// Apply transforms a point by the descriptor's matrix.
func (t Transform) Apply(p Point) Point {
	x, y := t.Matrix().TransformPoint(p.X, p.Y)
	return Point{X: x, Y: y}
}

// BoundingBox is an axis-aligned box in scene coordinates.
// Width and height are never negative; a 0x0 box is valid and represents an
// empty selection.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// IsEmpty reports whether the box has no area.
func (b BoundingBox) IsEmpty() bool {
	return b.Width <= 0 || b.Height <= 0
}

// Center returns the midpoint of the box.
func (b BoundingBox) Center() Point {
	return Point{X: b.X + b.Width/2, Y: b.Y + b.Height/2}
}

// MaxX returns the right edge.
func (b BoundingBox) MaxX() float64 { return b.X + b.Width }

// MaxY returns the bottom edge.
func (b BoundingBox) MaxY() float64 { return b.Y + b.Height }

// Contains reports whether the point lies inside the box (inclusive).
func (b BoundingBox) Contains(p Point) bool {
	return p.X >= b.X && p.X <= b.X+b.Width &&
		p.Y >= b.Y && p.Y <= b.Y+b.Height
}

// Union returns the smallest box containing both b and other.
// An empty box does not grow the result.
func (b BoundingBox) Union(other BoundingBox) BoundingBox {
	if b.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return b
	}
	minX := math.Min(b.X, other.X)
	minY := math.Min(b.Y, other.Y)
	maxX := math.Max(b.MaxX(), other.MaxX())
	maxY := math.Max(b.MaxY(), other.MaxY())
	return BoundingBox{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Corners returns the four corners in clockwise order from top-left.
func (b BoundingBox) Corners() [4]Point {
	return [4]Point{
		{X: b.X, Y: b.Y},
		{X: b.X + b.Width, Y: b.Y},
		{X: b.X + b.Width, Y: b.Y + b.Height},
		{X: b.X, Y: b.Y + b.Height},
	}
}

// SnapPoints returns the nine canonical snap positions of the box:
// four corners, four edge midpoints, and the center. The order is fixed
// because snap matching is first-match-wins.
func (b BoundingBox) SnapPoints() [9]Point {
	midX := b.X + b.Width/2
	midY := b.Y + b.Height/2
	return [9]Point{
		{X: b.X, Y: b.Y},
		{X: b.MaxX(), Y: b.Y},
		{X: b.MaxX(), Y: b.MaxY()},
		{X: b.X, Y: b.MaxY()},
		{X: midX, Y: b.Y},
		{X: b.MaxX(), Y: midY},
		{X: midX, Y: b.MaxY()},
		{X: b.X, Y: midY},
		{X: midX, Y: midY},
	}
}

// BoxFromPoints returns the axis-aligned bounding box of a point set.
func BoxFromPoints(points []Point) BoundingBox {
	if len(points) == 0 {
		return BoundingBox{}
	}
	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points[1:] {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	return BoundingBox{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
