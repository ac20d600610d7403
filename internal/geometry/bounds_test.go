package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathBoundsIncludesControlPoints(t *testing.T) {
	p := VectorPath{Segments: []PathSegment{
		MoveSegment(Point{X: 0, Y: 0}),
		CurveSegment(Point{X: 50, Y: -100}, Point{X: 60, Y: 100}, Point{X: 100, Y: 0}),
	}}

	b := p.Bounds()
	// Control points are included even though the curve never reaches them.
	assert.Equal(t, -100.0, b.Y)
	assert.Equal(t, 200.0, b.Height)
	assert.Equal(t, 100.0, b.Width)
}

func TestPathBoundsArc(t *testing.T) {
	p := VectorPath{Segments: []PathSegment{
		MoveSegment(Point{X: 10, Y: 0}),
		ArcSegment(Point{X: 0, Y: 0}, 10, 0, math.Pi/2, true),
	}}

	b := p.Bounds()
	// Arcs contribute their full center±radius box.
	assert.Equal(t, BoundingBox{X: -10, Y: -10, Width: 20, Height: 20}, b)
}

func TestPathBoundsEmpty(t *testing.T) {
	assert.Equal(t, BoundingBox{}, VectorPath{}.Bounds())
}

func TestTransformedPurePoints(t *testing.T) {
	p := Rectangle(0, 0, 10, 10)
	tr := IdentityTransform()
	tr.TranslateX = 5
	tr.TranslateY = -5

	moved := p.Transformed(tr)
	assert.Equal(t, BoundingBox{X: 5, Y: -5, Width: 10, Height: 10}, moved.Bounds())
	// Pure function: the input path is untouched.
	assert.Equal(t, BoundingBox{X: 0, Y: 0, Width: 10, Height: 10}, p.Bounds())
}

func TestBoundsNeverShrinkUnderScaleUp(t *testing.T) {
	paths := []VectorPath{
		Rectangle(3, 4, 20, 10),
		Circle(0, 0, 15),
		Star(5, 5, 30, 12, 7),
		{Segments: []PathSegment{
			MoveSegment(Point{X: -4, Y: 2}),
			CurveSegment(Point{X: 10, Y: 40}, Point{X: 20, Y: -30}, Point{X: 35, Y: 8}),
			LineSegment(Point{X: 50, Y: 50}),
		}},
	}

	for _, scale := range []float64{1.0, 1.25, 2, 7.5} {
		tr := IdentityTransform()
		tr.ScaleX = scale
		tr.ScaleY = scale

		for _, p := range paths {
			before := p.Bounds()
			after := p.Transformed(tr).Bounds()
			assert.GreaterOrEqual(t, after.Width, before.Width)
			assert.GreaterOrEqual(t, after.Height, before.Height)
		}
	}
}

func TestTransformedRotation(t *testing.T) {
	p := Rectangle(0, 0, 10, 0.001)
	tr := IdentityTransform()
	tr.Rotation = math.Pi / 2

	rotated := p.Transformed(tr).Bounds()
	assert.InDelta(t, 10, rotated.Height, 0.01)
	assert.InDelta(t, 0, rotated.Width, 0.01)
}

func TestTransformedArc(t *testing.T) {
	p := VectorPath{Segments: []PathSegment{
		MoveSegment(Point{X: 10, Y: 0}),
		ArcSegment(Point{X: 0, Y: 0}, 10, 0, math.Pi, true),
	}}
	tr := IdentityTransform()
	tr.ScaleX = 2
	tr.ScaleY = 2
	tr.TranslateX = 100

	out := p.Transformed(tr)
	require.Equal(t, SegArc, out.Segments[1].Kind)
	arc := out.Segments[1]
	assert.InDelta(t, 20, arc.Radius, 1e-9)
	assert.InDelta(t, 100, arc.Center.X, 1e-9)
}

func TestAnchoredMatrixPivots(t *testing.T) {
	tr := IdentityTransform()
	tr.ScaleX = 2
	tr.ScaleY = 2

	anchor := Point{X: 10, Y: 10}
	m := AnchoredMatrix(tr, anchor)

	// The anchor itself stays fixed under the anchored composition.
	got := m.Apply(anchor)
	assert.InDelta(t, anchor.X, got.X, 1e-9)
	assert.InDelta(t, anchor.Y, got.Y, 1e-9)

	far := m.Apply(Point{X: 20, Y: 10})
	assert.InDelta(t, 30, far.X, 1e-9)
}

func TestMatrixInvertRoundTrip(t *testing.T) {
	m := Translate(4, -2).Multiply(Rotate(0.7)).Multiply(Scale(2, 3))
	inv := m.Invert()

	p := Point{X: 12.5, Y: -8}
	back := inv.Apply(m.Apply(p))
	assert.InDelta(t, p.X, back.X, 1e-9)
	assert.InDelta(t, p.Y, back.Y, 1e-9)

	assert.True(t, Identity().IsIdentity())
	assert.Equal(t, Identity(), Matrix2D{0, 0, 0, 0, 0, 0}.Invert())
}
