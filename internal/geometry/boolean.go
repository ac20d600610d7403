package geometry

import (
	"math"

	polyclip "github.com/ctessum/polyclip-go"
)

const (
	// flattenSegments is the fixed subdivision count used to approximate
	// curves and arcs as polylines before polygon clipping.
	flattenSegments = 20

	// clipScale quantizes coordinates to fixed point (3 decimal places)
	// before clipping, bounding float accumulation error inside the
	// clipping library. Output is divided back down.
	clipScale = 1000
)

// Union returns the combined area of the two paths as zero or more disjoint
// closed paths.
func Union(a, b VectorPath) []VectorPath {
	return clip(a, b, polyclip.UNION)
}

// Subtract returns the area of a with b removed.
func Subtract(a, b VectorPath) []VectorPath {
	return clip(a, b, polyclip.DIFFERENCE)
}

// Intersect returns the area common to both paths.
func Intersect(a, b VectorPath) []VectorPath {
	return clip(a, b, polyclip.INTERSECTION)
}

// clip flattens both paths, quantizes them, and runs the polygon clipper.
// Boolean ops fail soft: degenerate or self-intersecting input yields an
// empty result, never a panic.
func clip(a, b VectorPath, op polyclip.Op) (out []VectorPath) {
	defer func() {
		if recover() != nil {
			out = nil
		}
	}()

	subject, ok := toPolygon(a)
	if !ok || len(subject) == 0 {
		return nil
	}
	clipping, ok := toPolygon(b)
	if !ok || len(clipping) == 0 {
		return nil
	}

	result := subject.Construct(op, clipping)
	return fromPolygon(result)
}

// toPolygon converts a path into quantized clipper contours, one per
// sub-path. Reports ok=false on non-finite coordinates; contours with fewer
// than three distinct vertices are dropped.
func toPolygon(p VectorPath) (polyclip.Polygon, bool) {
	var poly polyclip.Polygon
	for _, pts := range flattenSubpaths(p, flattenSegments) {
		var contour polyclip.Contour
		var last polyclip.Point
		for i, pt := range pts {
			if !pt.IsFinite() {
				return nil, false
			}
			q := polyclip.Point{
				X: math.Round(pt.X * clipScale),
				Y: math.Round(pt.Y * clipScale),
			}
			if i > 0 && q == last {
				continue
			}
			contour = append(contour, q)
			last = q
		}
		// Drop a trailing vertex that duplicates the first; the clipper
		// treats contours as implicitly closed.
		if len(contour) > 1 && contour[0] == contour[len(contour)-1] {
			contour = contour[:len(contour)-1]
		}
		if len(contour) >= 3 {
			poly = append(poly, contour)
		}
	}
	return poly, true
}

// fromPolygon converts clipper output back into closed vector paths, one per
// contour, dividing the fixed-point quantization back out.
func fromPolygon(poly polyclip.Polygon) []VectorPath {
	var out []VectorPath
	for _, contour := range poly {
		if len(contour) < 3 {
			continue
		}
		segs := make([]PathSegment, 0, len(contour)+1)
		for i, q := range contour {
			pt := Point{X: q.X / clipScale, Y: q.Y / clipScale}
			if i == 0 {
				segs = append(segs, MoveSegment(pt))
			} else {
				segs = append(segs, LineSegment(pt))
			}
		}
		segs = append(segs, CloseSegment())
		out = append(out, VectorPath{Segments: segs, Closed: true})
	}
	return out
}

// flattenSubpaths approximates each sub-path as a polyline, sampling curves
// and arcs at n segments each.
func flattenSubpaths(p VectorPath, n int) [][]Point {
	var subpaths [][]Point
	var current []Point
	var pen Point

	flush := func() {
		if len(current) >= 2 {
			subpaths = append(subpaths, current)
		}
		current = nil
	}

	for _, seg := range p.Segments {
		switch seg.Kind {
		case SegMove:
			flush()
			pen = seg.Point
			current = []Point{pen}

		case SegLine:
			pen = seg.Point
			current = append(current, pen)

		case SegCurve:
			c := CubicBezier{Start: pen, Control1: seg.Control1, Control2: seg.Control2, End: seg.Point}
			current = append(current, c.Flatten(n)...)
			pen = seg.Point

		case SegArc:
			start := seg.arcPoint(seg.StartAngle)
			if len(current) == 0 {
				current = []Point{start}
			} else if start.Distance(pen) > 1e-9 {
				current = append(current, start)
			}
			delta := seg.EndAngle - seg.StartAngle
			if seg.Clockwise && delta < 0 {
				delta += 2 * math.Pi
			} else if !seg.Clockwise && delta > 0 {
				delta -= 2 * math.Pi
			}
			for i := 1; i <= n; i++ {
				angle := seg.StartAngle + delta*float64(i)/float64(n)
				current = append(current, seg.arcPoint(angle))
			}
			pen = seg.arcPoint(seg.EndAngle)

		case SegClose:
			flush()
		}
	}
	flush()
	return subpaths
}
