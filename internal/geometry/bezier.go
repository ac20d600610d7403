package geometry

import "math"

// lengthSteps is the uniform sample count used for numeric arc-length
// approximation.
const lengthSteps = 64

// CubicBezier is a cubic Bézier curve defined by two endpoints and two
// control points.
type CubicBezier struct {
	Start    Point `json:"start"`
	Control1 Point `json:"control1"`
	Control2 Point `json:"control2"`
	End      Point `json:"end"`
}

// PointAt evaluates the curve at parameter t using the Bernstein form.
// Values of t outside [0,1] extrapolate along the polynomial; callers that
// want clamped behavior must clamp t themselves.
func (c CubicBezier) PointAt(t float64) Point {
	u := 1 - t
	b0 := u * u * u
	b1 := 3 * u * u * t
	b2 := 3 * u * t * t
	b3 := t * t * t
	return Point{
		X: b0*c.Start.X + b1*c.Control1.X + b2*c.Control2.X + b3*c.End.X,
		Y: b0*c.Start.Y + b1*c.Control1.Y + b2*c.Control2.Y + b3*c.End.Y,
	}
}

// TangentAt returns the first derivative of the curve at t.
// The vector is not normalized.
func (c CubicBezier) TangentAt(t float64) Point {
	u := 1 - t
	d0 := 3 * u * u
	d1 := 6 * u * t
	d2 := 3 * t * t
	return Point{
		X: d0*(c.Control1.X-c.Start.X) + d1*(c.Control2.X-c.Control1.X) + d2*(c.End.X-c.Control2.X),
		Y: d0*(c.Control1.Y-c.Start.Y) + d1*(c.Control2.Y-c.Control1.Y) + d2*(c.End.Y-c.Control2.Y),
	}
}

// Split subdivides the curve at t with de Casteljau's algorithm.
// The concatenation of the two returned halves reproduces the original
// curve within floating-point tolerance.
func (c CubicBezier) Split(t float64) (left, right CubicBezier) {
	p01 := lerp(c.Start, c.Control1, t)
	p12 := lerp(c.Control1, c.Control2, t)
	p23 := lerp(c.Control2, c.End, t)
	p012 := lerp(p01, p12, t)
	p123 := lerp(p12, p23, t)
	mid := lerp(p012, p123, t)

	left = CubicBezier{Start: c.Start, Control1: p01, Control2: p012, End: mid}
	right = CubicBezier{Start: mid, Control1: p123, Control2: p23, End: c.End}
	return left, right
}

// Length approximates the arc length of the curve by summing chord lengths
// over a uniform sampling. The result is non-negative and monotonic in the
// curve's extent.
func (c CubicBezier) Length() float64 {
	total := 0.0
	prev := c.Start
	for i := 1; i <= lengthSteps; i++ {
		t := float64(i) / lengthSteps
		p := c.PointAt(t)
		total += prev.Distance(p)
		prev = p
	}
	return total
}

// Flatten samples the curve into n line segments, returning n points that
// exclude the curve's start point (the caller already holds it).
func (c CubicBezier) Flatten(n int) []Point {
	if n < 1 {
		n = 1
	}
	pts := make([]Point, 0, n)
	for i := 1; i <= n; i++ {
		pts = append(pts, c.PointAt(float64(i)/float64(n)))
	}
	return pts
}

func lerp(a, b Point, t float64) Point {
	return Point{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
