package transform

import "github.com/vectral/vectral/backend-go/internal/geometry"

// HandleKind groups the selection handles by role.
type HandleKind string

const (
	HandleCorner   HandleKind = "corner"
	HandleEdge     HandleKind = "edge"
	HandleRotation HandleKind = "rotation"
	HandleCenter   HandleKind = "center"
)

const (
	handleSize     = 8.0
	rotationOffset = 20.0
)

// Handle is one grab point on the selection box. Position is its visual
// center, Bounds its hit area, and Anchor the pivot a drag on this handle
// transforms around: the opposite corner or edge for resizes, the box
// center for rotate and move.
type Handle struct {
	ID       string               `json:"id"`
	Kind     HandleKind           `json:"kind"`
	Position geometry.Point       `json:"position"`
	Cursor   string               `json:"cursor"`
	Bounds   geometry.BoundingBox `json:"bounds"`
	Anchor   geometry.Point       `json:"anchor"`
}

// SelectionHandles lays out the handles for a selection box: four corners,
// four edge midpoints, a rotation handle above the top edge, and a center
// move handle. Sizes divide by zoom so handles keep a constant screen size.
func (e *Engine) SelectionHandles(bounds geometry.BoundingBox) []Handle {
	e.mu.Lock()
	zoom := e.zoom
	e.mu.Unlock()
	return selectionHandles(bounds, zoom)
}

func selectionHandles(b geometry.BoundingBox, zoom float64) []Handle {
	size := handleSize / zoom
	rot := rotationOffset / zoom

	minX, minY := b.X, b.Y
	maxX, maxY := b.MaxX(), b.MaxY()
	midX, midY := b.X+b.Width/2, b.Y+b.Height/2

	mk := func(id string, kind HandleKind, pos geometry.Point, cursor string, anchor geometry.Point) Handle {
		return Handle{
			ID:       id,
			Kind:     kind,
			Position: pos,
			Cursor:   cursor,
			Bounds: geometry.BoundingBox{
				X:      pos.X - size/2,
				Y:      pos.Y - size/2,
				Width:  size,
				Height: size,
			},
			Anchor: anchor,
		}
	}

	return []Handle{
		mk("nw", HandleCorner, geometry.Point{X: minX, Y: minY}, "nw-resize", geometry.Point{X: maxX, Y: maxY}),
		mk("ne", HandleCorner, geometry.Point{X: maxX, Y: minY}, "ne-resize", geometry.Point{X: minX, Y: maxY}),
		mk("sw", HandleCorner, geometry.Point{X: minX, Y: maxY}, "sw-resize", geometry.Point{X: maxX, Y: minY}),
		mk("se", HandleCorner, geometry.Point{X: maxX, Y: maxY}, "se-resize", geometry.Point{X: minX, Y: minY}),
		mk("n", HandleEdge, geometry.Point{X: midX, Y: minY}, "n-resize", geometry.Point{X: midX, Y: maxY}),
		mk("s", HandleEdge, geometry.Point{X: midX, Y: maxY}, "s-resize", geometry.Point{X: midX, Y: minY}),
		mk("w", HandleEdge, geometry.Point{X: minX, Y: midY}, "w-resize", geometry.Point{X: maxX, Y: midY}),
		mk("e", HandleEdge, geometry.Point{X: maxX, Y: midY}, "e-resize", geometry.Point{X: minX, Y: midY}),
		mk("rotation", HandleRotation, geometry.Point{X: midX, Y: minY - rot}, "grab", geometry.Point{X: midX, Y: midY}),
		mk("center", HandleCenter, geometry.Point{X: midX, Y: midY}, "move", geometry.Point{X: midX, Y: midY}),
	}
}

// HandleAt returns the first handle whose hit bounds contain the point,
// scanning in layout order.
func HandleAt(handles []Handle, p geometry.Point) (Handle, bool) {
	for _, h := range handles {
		if h.Bounds.Contains(p) {
			return h, true
		}
	}
	return Handle{}, false
}
