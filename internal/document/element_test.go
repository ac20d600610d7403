package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vectral/vectral/backend-go/internal/geometry"
)

func TestShapePathDispatch(t *testing.T) {
	cases := []struct {
		name  string
		shape ShapeData
		box   geometry.BoundingBox
	}{
		{
			name:  "rectangle",
			shape: ShapeData{Kind: ShapeRectangle, Width: 100, Height: 50},
			box:   geometry.BoundingBox{X: 0, Y: 0, Width: 100, Height: 50},
		},
		{
			name:  "circle",
			shape: ShapeData{Kind: ShapeCircle, Radius: 30},
			box:   geometry.BoundingBox{X: -30, Y: -30, Width: 60, Height: 60},
		},
		{
			name:  "ellipse",
			shape: ShapeData{Kind: ShapeEllipse, RadiusX: 40, RadiusY: 20},
			box:   geometry.BoundingBox{X: -40, Y: -20, Width: 80, Height: 40},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := tc.shape.Path()
			require.False(t, path.IsEmpty())
			assert.True(t, path.Closed)
			got := path.Bounds()
			assert.InDelta(t, tc.box.X, got.X, 1e-9)
			assert.InDelta(t, tc.box.Y, got.Y, 1e-9)
			assert.InDelta(t, tc.box.Width, got.Width, 1e-9)
			assert.InDelta(t, tc.box.Height, got.Height, 1e-9)
		})
	}
}

func TestShapePolygonFromPoints(t *testing.T) {
	shape := ShapeData{Kind: ShapePolygon, Points: []geometry.Point{
		{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 5, Y: 8},
	}}
	path := shape.Path()
	require.Len(t, path.Segments, 4)
	assert.Equal(t, geometry.SegMove, path.Segments[0].Kind)
	assert.Equal(t, geometry.SegClose, path.Segments[3].Kind)

	// Fewer than three vertices cannot form an outline.
	degenerate := ShapeData{Kind: ShapePolygon, Points: []geometry.Point{{X: 0, Y: 0}, {X: 1, Y: 1}}}
	assert.True(t, degenerate.Path().IsEmpty())
}

func TestTextLocalBoundsEstimate(t *testing.T) {
	text := TextData{Content: "hi\nworld", FontSize: 10}
	box := text.LocalBounds()
	assert.InDelta(t, 5*10*glyphAspect, box.Width, 1e-9)
	assert.InDelta(t, 2*10*1.2, box.Height, 1e-9)
}

func TestTextLocalBoundsMeasuredWins(t *testing.T) {
	text := TextData{Content: "hi", FontSize: 10, MeasuredWidth: 123, MeasuredHeight: 45}
	box := text.LocalBounds()
	assert.Equal(t, geometry.BoundingBox{Width: 123, Height: 45}, box)
}

func TestElementRecomputeBounds(t *testing.T) {
	el := NewElement("elem_a", ElementShape)
	el.Shape = &ShapeData{Kind: ShapeRectangle, Width: 10, Height: 10}
	el.Transform.TranslateX = 5
	el.Transform.TranslateY = 5
	el.Transform.ScaleX = 2
	el.Transform.ScaleY = 2

	el.RecomputeBounds()

	assert.Equal(t, geometry.BoundingBox{X: 5, Y: 5, Width: 20, Height: 20}, el.Bounds)
}

func TestElementCloneIsDeep(t *testing.T) {
	el := NewElement("elem_a", ElementShape)
	el.Shape = &ShapeData{Kind: ShapePolygon, Points: []geometry.Point{
		{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 5, Y: 8},
	}}
	el.Style.Stroke = &Stroke{Color: "#111111", Width: 1, DashArray: []float64{4, 2}}
	el.Children = []string{"elem_b"}

	clone := el.Clone()

	el.Shape.Points[0].X = 99
	el.Style.Stroke.Color = "#ff0000"
	el.Style.Stroke.DashArray[0] = 9
	el.Children[0] = "elem_z"

	assert.Equal(t, 0.0, clone.Shape.Points[0].X)
	assert.Equal(t, "#111111", clone.Style.Stroke.Color)
	assert.Equal(t, 4.0, clone.Style.Stroke.DashArray[0])
	assert.Equal(t, "elem_b", clone.Children[0])
}

func TestStyleCloneIsDeep(t *testing.T) {
	style := Style{
		Fill: &Fill{Type: FillGradient, Gradient: &Gradient{
			Kind:  GradientLinear,
			Stops: []GradientStop{{Offset: 0, Color: "#000"}, {Offset: 1, Color: "#fff"}},
		}},
		Opacity: 0.5,
	}

	clone := style.Clone()
	style.Fill.Gradient.Stops[0].Color = "#123456"

	assert.Equal(t, "#000", clone.Fill.Gradient.Stops[0].Color)
}

func TestSelectionMembership(t *testing.T) {
	sel := NewSelection()

	assert.True(t, sel.Add("elem_a"))
	assert.False(t, sel.Add("elem_a"))
	sel.Toggle("elem_b")
	assert.Equal(t, []string{"elem_a", "elem_b"}, sel.IDs)

	sel.Toggle("elem_a")
	assert.Equal(t, []string{"elem_b"}, sel.IDs)
	assert.True(t, sel.Contains("elem_b"))

	sel.Clear()
	assert.True(t, sel.IsEmpty())
	assert.True(t, sel.Transform.IsIdentity())
}

func TestSelectionRefresh(t *testing.T) {
	doc := NewDocument()
	doc.AddElement(rectElement("elem_a", 0, 0, 10, 10))
	doc.AddElement(rectElement("elem_b", 40, 20, 10, 10))

	sel := NewSelection()
	sel.Add("elem_a")
	sel.Add("elem_b")
	sel.Add("elem_ghost")
	sel.Refresh(doc)

	assert.Equal(t, []string{"elem_a", "elem_b"}, sel.IDs)
	assert.Equal(t, geometry.BoundingBox{X: 0, Y: 0, Width: 50, Height: 30}, sel.Bounds)

	doc.RemoveElement("elem_b")
	sel.Refresh(doc)
	assert.Equal(t, []string{"elem_a"}, sel.IDs)
	assert.Equal(t, geometry.BoundingBox{X: 0, Y: 0, Width: 10, Height: 10}, sel.Bounds)
}
