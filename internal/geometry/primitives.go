package geometry

import "math"

// kappa is the control-point offset factor for approximating a quarter
// circle with a cubic Bézier: k = 4 * (sqrt(2) - 1) / 3 ≈ 0.5522847498.
// Keeps the radial error under ~0.03% of the radius.
const kappa = 0.5522847498

// Rectangle returns a closed rectangular path with corner at (x, y).
func Rectangle(x, y, w, h float64) VectorPath {
	return VectorPath{
		Segments: []PathSegment{
			MoveSegment(Point{X: x, Y: y}),
			LineSegment(Point{X: x + w, Y: y}),
			LineSegment(Point{X: x + w, Y: y + h}),
			LineSegment(Point{X: x, Y: y + h}),
			CloseSegment(),
		},
		Closed: true,
	}
}

// RoundedRectangle returns a rectangle with elliptical corners of radii
// rx, ry (clamped to half the side lengths). Zero radii degrade to a plain
// rectangle.
func RoundedRectangle(x, y, w, h, rx, ry float64) VectorPath {
	rx = clamp(rx, 0, w/2)
	ry = clamp(ry, 0, h/2)
	if rx == 0 || ry == 0 {
		return Rectangle(x, y, w, h)
	}

	kx := rx * kappa
	ky := ry * kappa
	right := x + w
	bottom := y + h

	return VectorPath{
		Segments: []PathSegment{
			MoveSegment(Point{X: x + rx, Y: y}),
			LineSegment(Point{X: right - rx, Y: y}),
			CurveSegment(
				Point{X: right - rx + kx, Y: y},
				Point{X: right, Y: y + ry - ky},
				Point{X: right, Y: y + ry},
			),
			LineSegment(Point{X: right, Y: bottom - ry}),
			CurveSegment(
				Point{X: right, Y: bottom - ry + ky},
				Point{X: right - rx + kx, Y: bottom},
				Point{X: right - rx, Y: bottom},
			),
			LineSegment(Point{X: x + rx, Y: bottom}),
			CurveSegment(
				Point{X: x + rx - kx, Y: bottom},
				Point{X: x, Y: bottom - ry + ky},
				Point{X: x, Y: bottom - ry},
			),
			LineSegment(Point{X: x, Y: y + ry}),
			CurveSegment(
				Point{X: x, Y: y + ry - ky},
				Point{X: x + rx - kx, Y: y},
				Point{X: x + rx, Y: y},
			),
			CloseSegment(),
		},
		Closed: true,
	}
}

// Circle returns a closed circular path approximated by four Bézier arcs.
func Circle(cx, cy, r float64) VectorPath {
	return Ellipse(cx, cy, r, r)
}

// Ellipse returns a closed elliptical path approximated by four Bézier arcs
// using the kappa control-point offsets.
func Ellipse(cx, cy, rx, ry float64) VectorPath {
	kx := rx * kappa
	ky := ry * kappa

	return VectorPath{
		Segments: []PathSegment{
			MoveSegment(Point{X: cx + rx, Y: cy}),
			CurveSegment(
				Point{X: cx + rx, Y: cy + ky},
				Point{X: cx + kx, Y: cy + ry},
				Point{X: cx, Y: cy + ry},
			),
			CurveSegment(
				Point{X: cx - kx, Y: cy + ry},
				Point{X: cx - rx, Y: cy + ky},
				Point{X: cx - rx, Y: cy},
			),
			CurveSegment(
				Point{X: cx - rx, Y: cy - ky},
				Point{X: cx - kx, Y: cy - ry},
				Point{X: cx, Y: cy - ry},
			),
			CurveSegment(
				Point{X: cx + kx, Y: cy - ry},
				Point{X: cx + rx, Y: cy - ky},
				Point{X: cx + rx, Y: cy},
			),
			CloseSegment(),
		},
		Closed: true,
	}
}

// Polygon returns a closed regular polygon with the given vertex count
// (minimum 3), starting from the top vertex.
func Polygon(cx, cy, r float64, sides int) VectorPath {
	if sides < 3 {
		sides = 3
	}

	segs := make([]PathSegment, 0, sides+1)
	for i := 0; i < sides; i++ {
		angle := -math.Pi/2 + 2*math.Pi*float64(i)/float64(sides)
		p := Point{X: cx + r*math.Cos(angle), Y: cy + r*math.Sin(angle)}
		if i == 0 {
			segs = append(segs, MoveSegment(p))
		} else {
			segs = append(segs, LineSegment(p))
		}
	}
	segs = append(segs, CloseSegment())
	return VectorPath{Segments: segs, Closed: true}
}

// Star returns a closed star path alternating between the outer and inner
// radius, with the given point count (minimum 3), starting from the top.
func Star(cx, cy, rOuter, rInner float64, points int) VectorPath {
	if points < 3 {
		points = 3
	}

	total := points * 2
	segs := make([]PathSegment, 0, total+1)
	for i := 0; i < total; i++ {
		r := rOuter
		if i%2 == 1 {
			r = rInner
		}
		angle := -math.Pi/2 + math.Pi*float64(i)/float64(points)
		p := Point{X: cx + r*math.Cos(angle), Y: cy + r*math.Sin(angle)}
		if i == 0 {
			segs = append(segs, MoveSegment(p))
		} else {
			segs = append(segs, LineSegment(p))
		}
	}
	segs = append(segs, CloseSegment())
	return VectorPath{Segments: segs, Closed: true}
}
