package document

import "github.com/vectral/vectral/backend-go/internal/geometry"

// Zoom limits for ZoomAt. Wheel deltas arrive as multiplicative factors, so
// without a clamp a few seconds of scrolling reaches absurd magnifications.
const (
	MinZoom = 0.1
	MaxZoom = 10.0
)

// Viewport maps between world coordinates and screen pixels. X and Y are the
// world coordinates visible at the screen origin; Zoom is pixels per world
// unit.
type Viewport struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Zoom   float64 `json:"zoom"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func NewViewport(width, height float64) Viewport {
	return Viewport{Zoom: 1, Width: width, Height: height}
}

func (v *Viewport) Pan(dx, dy float64) {
	v.X += dx
	v.Y += dy
}

// ZoomAt scales the zoom by factor, clamped to [MinZoom, MaxZoom], and
// shifts the origin so the world point under center stays put on screen.
func (v *Viewport) ZoomAt(factor float64, center geometry.Point) {
	oldZoom := v.Zoom
	newZoom := oldZoom * factor
	if newZoom < MinZoom {
		newZoom = MinZoom
	}
	if newZoom > MaxZoom {
		newZoom = MaxZoom
	}
	v.Zoom = newZoom
	v.X = center.X - (center.X-v.X)*(oldZoom/newZoom)
	v.Y = center.Y - (center.Y-v.Y)*(oldZoom/newZoom)
}

func (v Viewport) ScreenToWorld(p geometry.Point) geometry.Point {
	return geometry.Point{
		X: p.X/v.Zoom + v.X,
		Y: p.Y/v.Zoom + v.Y,
	}
}

func (v Viewport) WorldToScreen(p geometry.Point) geometry.Point {
	return geometry.Point{
		X: (p.X - v.X) * v.Zoom,
		Y: (p.Y - v.Y) * v.Zoom,
	}
}

// VisibleBounds returns the world-space rectangle currently on screen.
func (v Viewport) VisibleBounds() geometry.BoundingBox {
	return geometry.BoundingBox{
		X:      v.X,
		Y:      v.Y,
		Width:  v.Width / v.Zoom,
		Height: v.Height / v.Zoom,
	}
}

// GridSettings controls the canvas grid and grid snapping.
type GridSettings struct {
	Enabled bool    `json:"enabled"`
	Size    float64 `json:"size"`
	Color   string  `json:"color"`
	Opacity float64 `json:"opacity"`
	Snap    bool    `json:"snap"`
}

func DefaultGridSettings() GridSettings {
	return GridSettings{
		Enabled: false,
		Size:    20,
		Color:   "#cccccc",
		Opacity: 0.5,
		Snap:    false,
	}
}

// CursorState is one collaborator's pointer as shown to everyone else.
// LastUpdate is unix milliseconds; stale cursors are evicted by the
// collaboration engine.
type CursorState struct {
	UserID     string         `json:"userId"`
	UserName   string         `json:"userName,omitempty"`
	Color      string         `json:"color,omitempty"`
	Position   geometry.Point `json:"position"`
	Tool       string         `json:"tool,omitempty"`
	Visible    bool           `json:"visible"`
	LastUpdate int64          `json:"lastUpdate"`
}
