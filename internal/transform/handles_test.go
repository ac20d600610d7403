package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vectral/vectral/backend-go/internal/geometry"
)

func TestSelectionHandlesLayout(t *testing.T) {
	e := NewEngine()
	bounds := geometry.BoundingBox{X: 0, Y: 0, Width: 100, Height: 50}

	handles := e.SelectionHandles(bounds)
	require.Len(t, handles, 10)

	order := make([]string, 0, len(handles))
	for _, h := range handles {
		order = append(order, h.ID)
	}
	assert.Equal(t, []string{"nw", "ne", "sw", "se", "n", "s", "w", "e", "rotation", "center"}, order)

	nw := handles[0]
	assert.Equal(t, HandleCorner, nw.Kind)
	assert.Equal(t, geometry.Point{X: 0, Y: 0}, nw.Position)
	assert.Equal(t, "nw-resize", nw.Cursor)
	assert.Equal(t, geometry.BoundingBox{X: -4, Y: -4, Width: 8, Height: 8}, nw.Bounds)
	assert.Equal(t, geometry.Point{X: 100, Y: 50}, nw.Anchor)

	n := handles[4]
	assert.Equal(t, HandleEdge, n.Kind)
	assert.Equal(t, geometry.Point{X: 50, Y: 0}, n.Position)
	assert.Equal(t, geometry.Point{X: 50, Y: 50}, n.Anchor)

	rotation := handles[8]
	assert.Equal(t, HandleRotation, rotation.Kind)
	assert.Equal(t, geometry.Point{X: 50, Y: -20}, rotation.Position)
	assert.Equal(t, "grab", rotation.Cursor)
	assert.Equal(t, geometry.Point{X: 50, Y: 25}, rotation.Anchor)

	center := handles[9]
	assert.Equal(t, HandleCenter, center.Kind)
	assert.Equal(t, geometry.Point{X: 50, Y: 25}, center.Position)
	assert.Equal(t, "move", center.Cursor)
}

func TestSelectionHandlesScaleWithZoom(t *testing.T) {
	e := NewEngine()
	e.SetZoom(2)
	bounds := geometry.BoundingBox{X: 0, Y: 0, Width: 100, Height: 50}

	handles := e.SelectionHandles(bounds)
	require.Len(t, handles, 10)

	// Handle boxes halve in world units so they hold their screen size.
	assert.InDelta(t, 4, handles[0].Bounds.Width, 1e-9)
	assert.InDelta(t, -2, handles[0].Bounds.X, 1e-9)

	// The rotation handle rides closer at higher zoom.
	assert.Equal(t, geometry.Point{X: 50, Y: -10}, handles[8].Position)
}

func TestHandleAtFirstMatch(t *testing.T) {
	e := NewEngine()
	bounds := geometry.BoundingBox{X: 0, Y: 0, Width: 100, Height: 50}
	handles := e.SelectionHandles(bounds)

	h, ok := HandleAt(handles, geometry.Point{X: 1, Y: 1})
	require.True(t, ok)
	assert.Equal(t, "nw", h.ID)

	h, ok = HandleAt(handles, geometry.Point{X: 50, Y: 25})
	require.True(t, ok)
	assert.Equal(t, "center", h.ID)

	h, ok = HandleAt(handles, geometry.Point{X: 50, Y: -20})
	require.True(t, ok)
	assert.Equal(t, "rotation", h.ID)

	_, ok = HandleAt(handles, geometry.Point{X: 500, Y: 500})
	assert.False(t, ok)
}

func TestHandleAtOverlapPrefersDeclarationOrder(t *testing.T) {
	e := NewEngine()
	// A box smaller than the handle size makes neighboring hit areas
	// overlap; the earliest declared handle wins.
	handles := e.SelectionHandles(geometry.BoundingBox{X: 0, Y: 0, Width: 6, Height: 6})

	h, ok := HandleAt(handles, geometry.Point{X: 2, Y: 0})
	require.True(t, ok)
	assert.Equal(t, "nw", h.ID)
}
