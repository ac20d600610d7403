package geometry

import "math"

// Bounds computes the axis-aligned bounding box over all segment points,
// control points included. This over-estimates curve extents but is fast and
// deterministic; it is not an exact curve bound. Arc segments contribute
// their full center±radius box.
func (p VectorPath) Bounds() BoundingBox {
	if len(p.Segments) == 0 {
		return BoundingBox{}
	}

	var minX, minY, maxX, maxY float64
	first := true

	grow := func(x, y float64) {
		if first {
			minX, maxX = x, x
			minY, maxY = y, y
			first = false
			return
		}
		minX = math.Min(minX, x)
		maxX = math.Max(maxX, x)
		minY = math.Min(minY, y)
		maxY = math.Max(maxY, y)
	}

	for _, seg := range p.Segments {
		switch seg.Kind {
		case SegMove, SegLine:
			grow(seg.Point.X, seg.Point.Y)
		case SegCurve:
			grow(seg.Control1.X, seg.Control1.Y)
			grow(seg.Control2.X, seg.Control2.Y)
			grow(seg.Point.X, seg.Point.Y)
		case SegArc:
			grow(seg.Center.X-seg.Radius, seg.Center.Y-seg.Radius)
			grow(seg.Center.X+seg.Radius, seg.Center.Y+seg.Radius)
		case SegClose:
			// no new points
		}
	}

	if first {
		return BoundingBox{}
	}
	return BoundingBox{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Transformed returns a copy of the path with the affine descriptor applied
// to every point. Arc segments keep their center parameterization: the
// center is transformed, the radius scales by the mean of |scaleX| and
// |scaleY|, and the angles shift by the rotation. That is exact for uniform
// scale plus rotation and a documented approximation otherwise.
func (p VectorPath) Transformed(t Transform) VectorPath {
	m := t.Matrix()
	out := p.Clone()
	radiusScale := (math.Abs(t.ScaleX) + math.Abs(t.ScaleY)) / 2

	for i, seg := range out.Segments {
		switch seg.Kind {
		case SegMove, SegLine:
			seg.Point = m.Apply(seg.Point)
		case SegCurve:
			seg.Control1 = m.Apply(seg.Control1)
			seg.Control2 = m.Apply(seg.Control2)
			seg.Point = m.Apply(seg.Point)
		case SegArc:
			seg.Center = m.Apply(seg.Center)
			seg.Radius *= radiusScale
			seg.StartAngle += t.Rotation
			seg.EndAngle += t.Rotation
		}
		out.Segments[i] = seg
	}
	return out
}
