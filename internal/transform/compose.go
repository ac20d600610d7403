package transform

import (
	"math"

	"github.com/vectral/vectral/backend-go/internal/geometry"
)

// Compose accumulates two incremental deltas into one: translations add,
// scales multiply, rotations and skews add. It is the inverse-free algebra
// drags run on, not full matrix multiplication.
func Compose(a, b geometry.Transform) geometry.Transform {
	return geometry.Transform{
		TranslateX: a.TranslateX + b.TranslateX,
		TranslateY: a.TranslateY + b.TranslateY,
		ScaleX:     a.ScaleX * b.ScaleX,
		ScaleY:     a.ScaleY * b.ScaleY,
		Rotation:   a.Rotation + b.Rotation,
		SkewX:      a.SkewX + b.SkewX,
		SkewY:      a.SkewY + b.SkewY,
	}
}

// Combine applies an accumulated delta to a base transform about a pivot
// origin. Scale and rotation act around the origin, with the origin-induced
// offset folded into translation:
//
//	t' = origin + delta.t + R(delta.rotation)·S(delta.scale)·(base.t − origin)
//
// so the element visually pivots on origin instead of its own local (0,0).
func Combine(base, delta geometry.Transform, origin geometry.Point) geometry.Transform {
	moved := pivotPoint(delta, origin, geometry.Point{X: base.TranslateX, Y: base.TranslateY})
	return geometry.Transform{
		TranslateX: moved.X,
		TranslateY: moved.Y,
		ScaleX:     base.ScaleX * delta.ScaleX,
		ScaleY:     base.ScaleY * delta.ScaleY,
		Rotation:   base.Rotation + delta.Rotation,
		SkewX:      base.SkewX + delta.SkewX,
		SkewY:      base.SkewY + delta.SkewY,
	}
}

// pivotPoint moves a single point by the delta anchored at origin.
func pivotPoint(delta geometry.Transform, origin, p geometry.Point) geometry.Point {
	cos := math.Cos(delta.Rotation)
	sin := math.Sin(delta.Rotation)
	x := (p.X - origin.X) * delta.ScaleX
	y := (p.Y - origin.Y) * delta.ScaleY
	return geometry.Point{
		X: origin.X + delta.TranslateX + x*cos - y*sin,
		Y: origin.Y + delta.TranslateY + x*sin + y*cos,
	}
}

// pivotBox returns the axis-aligned box of the four corners of b moved by
// the delta anchored at origin.
func pivotBox(delta geometry.Transform, origin geometry.Point, b geometry.BoundingBox) geometry.BoundingBox {
	corners := b.Corners()
	moved := make([]geometry.Point, len(corners))
	for i, c := range corners {
		moved[i] = pivotPoint(delta, origin, c)
	}
	return geometry.BoxFromPoints(moved)
}

// TranslateDelta builds a pure-translation delta.
func TranslateDelta(dx, dy float64) geometry.Transform {
	t := geometry.IdentityTransform()
	t.TranslateX = dx
	t.TranslateY = dy
	return t
}

// ScaleDelta builds a pure-scale delta.
func ScaleDelta(sx, sy float64) geometry.Transform {
	t := geometry.IdentityTransform()
	t.ScaleX = sx
	t.ScaleY = sy
	return t
}

// RotateDelta builds a pure-rotation delta in radians.
func RotateDelta(angle float64) geometry.Transform {
	t := geometry.IdentityTransform()
	t.Rotation = angle
	return t
}
