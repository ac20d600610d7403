package document

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vectral/vectral/backend-go/internal/geometry"
)

func TestViewportPanAndConversion(t *testing.T) {
	vp := NewViewport(800, 600)
	vp.Pan(100, 50)

	world := vp.ScreenToWorld(geometry.Point{X: 0, Y: 0})
	assert.Equal(t, geometry.Point{X: 100, Y: 50}, world)

	p := geometry.Point{X: 160, Y: 90}
	back := vp.ScreenToWorld(vp.WorldToScreen(p))
	assert.InDelta(t, p.X, back.X, 1e-9)
	assert.InDelta(t, p.Y, back.Y, 1e-9)
}

func TestViewportZoomAtKeepsFocusFixed(t *testing.T) {
	vp := NewViewport(800, 600)
	vp.Pan(20, 30)
	focus := geometry.Point{X: 100, Y: 100}
	before := vp.WorldToScreen(focus)

	vp.ZoomAt(2, focus)

	after := vp.WorldToScreen(focus)
	assert.InDelta(t, before.X, after.X, 1e-9)
	assert.InDelta(t, before.Y, after.Y, 1e-9)
	assert.InDelta(t, 2, vp.Zoom, 1e-9)
}

func TestViewportZoomClamped(t *testing.T) {
	vp := NewViewport(800, 600)

	vp.ZoomAt(1000, geometry.Point{})
	assert.Equal(t, MaxZoom, vp.Zoom)

	vp.ZoomAt(1e-6, geometry.Point{})
	assert.Equal(t, MinZoom, vp.Zoom)
}

func TestViewportVisibleBounds(t *testing.T) {
	vp := NewViewport(800, 600)
	vp.Pan(10, 20)
	vp.ZoomAt(2, vp.ScreenToWorld(geometry.Point{}))

	box := vp.VisibleBounds()
	assert.InDelta(t, 400, box.Width, 1e-9)
	assert.InDelta(t, 300, box.Height, 1e-9)
}

func TestGridSettingsDefaults(t *testing.T) {
	grid := DefaultGridSettings()
	assert.Equal(t, 20.0, grid.Size)
	assert.False(t, grid.Enabled)
	assert.False(t, grid.Snap)
}
