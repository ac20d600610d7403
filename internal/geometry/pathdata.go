package geometry

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseError reports malformed SVG path data with enough context for a
// user-facing message: byte offset, the offending token, and the reason.
type ParseError struct {
	Pos    int
	Token  string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("svg path: %s at offset %d near %q", e.Reason, e.Pos, e.Token)
	}
	return fmt.Sprintf("svg path: %s at offset %d", e.Reason, e.Pos)
}

// ParsePath parses SVG path data into a VectorPath. The supported command
// set is M, L, C, A and Z in absolute or relative form, with standard
// separator and implicit-repetition rules. Elliptical arcs with rx == ry
// become arc segments; true ellipses fall back to cubic approximation.
func ParsePath(d string) (VectorPath, error) {
	s := pathScanner{data: d}
	var path VectorPath

	var pen, subpathStart Point
	open := false
	prevCmd := byte(0)

	for {
		s.skipSeparators()
		if s.eof() {
			break
		}

		cmdPos := s.pos
		cmd, implicit := s.command()
		if cmd == 0 && !implicit {
			return VectorPath{}, &ParseError{Pos: cmdPos, Token: s.tokenAt(cmdPos), Reason: "expected command letter"}
		}
		if implicit {
			if prevCmd == 0 {
				return VectorPath{}, &ParseError{Pos: cmdPos, Token: s.tokenAt(cmdPos), Reason: "path data must begin with a command"}
			}
			cmd = prevCmd
			// After a moveto, implicit coordinate pairs are linetos.
			switch cmd {
			case 'M':
				cmd = 'L'
			case 'm':
				cmd = 'l'
			case 'Z', 'z':
				return VectorPath{}, &ParseError{Pos: cmdPos, Token: s.tokenAt(cmdPos), Reason: "coordinates after close"}
			}
		}

		relative := cmd >= 'a' && cmd <= 'z'
		upper := cmd
		if relative {
			upper = cmd - 'a' + 'A'
		}

		switch upper {
		case 'M':
			p, err := s.point()
			if err != nil {
				return VectorPath{}, err
			}
			if relative {
				p = pen.Add(p)
			}
			path.Segments = append(path.Segments, MoveSegment(p))
			path.Closed = false
			pen, subpathStart = p, p
			open = true

		case 'L':
			if !open {
				return VectorPath{}, &ParseError{Pos: cmdPos, Token: string(cmd), Reason: "lineto before moveto"}
			}
			p, err := s.point()
			if err != nil {
				return VectorPath{}, err
			}
			if relative {
				p = pen.Add(p)
			}
			path.Segments = append(path.Segments, LineSegment(p))
			pen = p

		case 'C':
			if !open {
				return VectorPath{}, &ParseError{Pos: cmdPos, Token: string(cmd), Reason: "curveto before moveto"}
			}
			c1, err := s.point()
			if err != nil {
				return VectorPath{}, err
			}
			c2, err := s.point()
			if err != nil {
				return VectorPath{}, err
			}
			p, err := s.point()
			if err != nil {
				return VectorPath{}, err
			}
			if relative {
				c1, c2, p = pen.Add(c1), pen.Add(c2), pen.Add(p)
			}
			path.Segments = append(path.Segments, CurveSegment(c1, c2, p))
			pen = p

		case 'A':
			if !open {
				return VectorPath{}, &ParseError{Pos: cmdPos, Token: string(cmd), Reason: "arc before moveto"}
			}
			rx, err := s.number()
			if err != nil {
				return VectorPath{}, err
			}
			ry, err := s.number()
			if err != nil {
				return VectorPath{}, err
			}
			xrot, err := s.number()
			if err != nil {
				return VectorPath{}, err
			}
			largeArc, err := s.flag()
			if err != nil {
				return VectorPath{}, err
			}
			sweep, err := s.flag()
			if err != nil {
				return VectorPath{}, err
			}
			end, err := s.point()
			if err != nil {
				return VectorPath{}, err
			}
			if relative {
				end = pen.Add(end)
			}
			segs := arcToSegments(pen, rx, ry, xrot, largeArc, sweep, end)
			path.Segments = append(path.Segments, segs...)
			pen = end

		case 'Z':
			if !open {
				return VectorPath{}, &ParseError{Pos: cmdPos, Token: string(cmd), Reason: "close before moveto"}
			}
			path.Segments = append(path.Segments, CloseSegment())
			path.Closed = true
			pen = subpathStart
			open = false

		default:
			return VectorPath{}, &ParseError{Pos: cmdPos, Token: string(cmd), Reason: "unsupported command"}
		}

		prevCmd = cmd
	}

	return path, nil
}

// SVG serializes the path back to SVG path data using absolute M/L/C/A/Z
// commands. ParsePath(p.SVG()) resolves to the same segment sequence within
// floating-point tolerance.
func (p VectorPath) SVG() string {
	var sb strings.Builder
	var pen, subpathStart Point

	emit := func(parts ...string) {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strings.Join(parts, " "))
	}

	for _, seg := range p.Segments {
		switch seg.Kind {
		case SegMove:
			emit("M", fmtCoord(seg.Point.X), fmtCoord(seg.Point.Y))
			pen, subpathStart = seg.Point, seg.Point

		case SegLine:
			emit("L", fmtCoord(seg.Point.X), fmtCoord(seg.Point.Y))
			pen = seg.Point

		case SegCurve:
			emit("C",
				fmtCoord(seg.Control1.X), fmtCoord(seg.Control1.Y),
				fmtCoord(seg.Control2.X), fmtCoord(seg.Control2.Y),
				fmtCoord(seg.Point.X), fmtCoord(seg.Point.Y))
			pen = seg.Point

		case SegArc:
			start := seg.arcPoint(seg.StartAngle)
			if start.Distance(pen) > 1e-9 {
				emit("L", fmtCoord(start.X), fmtCoord(start.Y))
			}
			end := seg.arcPoint(seg.EndAngle)
			delta := seg.EndAngle - seg.StartAngle
			largeArc := "0"
			if math.Abs(delta) > math.Pi {
				largeArc = "1"
			}
			sweep := "0"
			if delta > 0 {
				sweep = "1"
			}
			emit("A",
				fmtCoord(seg.Radius), fmtCoord(seg.Radius), "0",
				largeArc, sweep,
				fmtCoord(end.X), fmtCoord(end.Y))
			pen = end

		case SegClose:
			emit("Z")
			pen = subpathStart
		}
	}
	return sb.String()
}

func fmtCoord(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// arcToSegments converts an SVG endpoint-parameterized arc to center
// parameterization (SVG implementation notes F.6.5). Circular arcs map to a
// single arc segment; elliptical ones are approximated by cubic Béziers per
// quarter turn.
func arcToSegments(pen Point, rx, ry, xrotDeg float64, largeArc, sweep bool, end Point) []PathSegment {
	// Zero radii degrade to a straight line per the SVG spec.
	if rx == 0 || ry == 0 {
		return []PathSegment{LineSegment(end)}
	}
	if pen.Distance(end) < 1e-12 {
		return nil
	}
	rx, ry = math.Abs(rx), math.Abs(ry)
	phi := xrotDeg * math.Pi / 180

	cosPhi := math.Cos(phi)
	sinPhi := math.Sin(phi)
	dx2 := (pen.X - end.X) / 2
	dy2 := (pen.Y - end.Y) / 2
	x1p := cosPhi*dx2 + sinPhi*dy2
	y1p := -sinPhi*dx2 + cosPhi*dy2

	// Scale radii up if the endpoints are too far apart for them.
	lambda := (x1p*x1p)/(rx*rx) + (y1p*y1p)/(ry*ry)
	if lambda > 1 {
		s := math.Sqrt(lambda)
		rx *= s
		ry *= s
	}

	num := rx*rx*ry*ry - rx*rx*y1p*y1p - ry*ry*x1p*x1p
	den := rx*rx*y1p*y1p + ry*ry*x1p*x1p
	if den == 0 {
		return []PathSegment{LineSegment(end)}
	}
	coef := math.Sqrt(math.Max(num/den, 0))
	if largeArc == sweep {
		coef = -coef
	}
	cxp := coef * rx * y1p / ry
	cyp := -coef * ry * x1p / rx

	center := Point{
		X: cosPhi*cxp - sinPhi*cyp + (pen.X+end.X)/2,
		Y: sinPhi*cxp + cosPhi*cyp + (pen.Y+end.Y)/2,
	}

	theta1 := math.Atan2((y1p-cyp)/ry, (x1p-cxp)/rx)
	ux, uy := (x1p-cxp)/rx, (y1p-cyp)/ry
	vx, vy := (-x1p-cxp)/rx, (-y1p-cyp)/ry
	dtheta := math.Atan2(ux*vy-uy*vx, ux*vx+uy*vy)
	if !sweep && dtheta > 0 {
		dtheta -= 2 * math.Pi
	} else if sweep && dtheta < 0 {
		dtheta += 2 * math.Pi
	}

	// Circular arc: the x-axis rotation collapses into the angles.
	if math.Abs(rx-ry) < 1e-9*math.Max(rx, ry) {
		start := theta1 + phi
		return []PathSegment{ArcSegment(center, rx, start, start+dtheta, dtheta > 0)}
	}

	return ellipticalArcCurves(center, rx, ry, phi, theta1, dtheta)
}

// ellipticalArcCurves approximates an elliptical arc with one cubic Bézier
// per arc span of at most 90 degrees.
func ellipticalArcCurves(center Point, rx, ry, phi, theta1, dtheta float64) []PathSegment {
	n := int(math.Ceil(math.Abs(dtheta) / (math.Pi / 2)))
	if n < 1 {
		n = 1
	}
	step := dtheta / float64(n)

	cosPhi := math.Cos(phi)
	sinPhi := math.Sin(phi)
	pointAt := func(theta float64) Point {
		x := rx * math.Cos(theta)
		y := ry * math.Sin(theta)
		return Point{
			X: center.X + cosPhi*x - sinPhi*y,
			Y: center.Y + sinPhi*x + cosPhi*y,
		}
	}
	derivAt := func(theta float64) Point {
		x := -rx * math.Sin(theta)
		y := ry * math.Cos(theta)
		return Point{X: cosPhi*x - sinPhi*y, Y: sinPhi*x + cosPhi*y}
	}

	segs := make([]PathSegment, 0, n)
	for i := 0; i < n; i++ {
		t0 := theta1 + step*float64(i)
		t1 := t0 + step
		// Standard tangent-length factor for a Bézier arc span.
		alpha := math.Sin(t1-t0) * (math.Sqrt(4+3*math.Pow(math.Tan((t1-t0)/2), 2)) - 1) / 3

		p0 := pointAt(t0)
		p3 := pointAt(t1)
		d0 := derivAt(t0)
		d1 := derivAt(t1)
		c1 := Point{X: p0.X + alpha*d0.X, Y: p0.Y + alpha*d0.Y}
		c2 := Point{X: p3.X - alpha*d1.X, Y: p3.Y - alpha*d1.Y}
		segs = append(segs, CurveSegment(c1, c2, p3))
	}
	return segs
}

// pathScanner is a minimal rune scanner over SVG path data.
type pathScanner struct {
	data string
	pos  int
}

func (s *pathScanner) eof() bool {
	return s.pos >= len(s.data)
}

func (s *pathScanner) skipSeparators() {
	for !s.eof() {
		switch s.data[s.pos] {
		case ' ', '\t', '\n', '\r', ',':
			s.pos++
		default:
			return
		}
	}
}

// command consumes the next command letter. If the next token is a number,
// it reports an implicit command repetition instead.
func (s *pathScanner) command() (cmd byte, implicit bool) {
	c := s.data[s.pos]
	if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') {
		s.pos++
		return c, false
	}
	if c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9') {
		return 0, true
	}
	return 0, false
}

// number scans one coordinate value: optional sign, digits, optional
// fraction, optional exponent. A second decimal point starts a new number,
// matching SVG lexing rules.
func (s *pathScanner) number() (float64, error) {
	s.skipSeparators()
	start := s.pos
	if s.eof() {
		return 0, &ParseError{Pos: start, Reason: "unexpected end of path data, expected number"}
	}

	i := s.pos
	n := len(s.data)
	if i < n && (s.data[i] == '+' || s.data[i] == '-') {
		i++
	}
	digits := false
	for i < n && s.data[i] >= '0' && s.data[i] <= '9' {
		i++
		digits = true
	}
	if i < n && s.data[i] == '.' {
		i++
		for i < n && s.data[i] >= '0' && s.data[i] <= '9' {
			i++
			digits = true
		}
	}
	if !digits {
		end := i + 1
		if end > n {
			end = n
		}
		return 0, &ParseError{Pos: start, Token: s.data[start:end], Reason: "expected number"}
	}
	if i < n && (s.data[i] == 'e' || s.data[i] == 'E') {
		j := i + 1
		if j < n && (s.data[j] == '+' || s.data[j] == '-') {
			j++
		}
		expDigits := false
		for j < n && s.data[j] >= '0' && s.data[j] <= '9' {
			j++
			expDigits = true
		}
		if expDigits {
			i = j
		}
	}

	tok := s.data[start:i]
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, &ParseError{Pos: start, Token: tok, Reason: "invalid number"}
	}
	s.pos = i
	return v, nil
}

// flag scans a single 0/1 arc flag, which may be packed against the next
// number without separators.
func (s *pathScanner) flag() (bool, error) {
	s.skipSeparators()
	if s.eof() {
		return false, &ParseError{Pos: s.pos, Reason: "unexpected end of path data, expected arc flag"}
	}
	switch s.data[s.pos] {
	case '0':
		s.pos++
		return false, nil
	case '1':
		s.pos++
		return true, nil
	default:
		return false, &ParseError{Pos: s.pos, Token: string(s.data[s.pos]), Reason: "arc flag must be 0 or 1"}
	}
}

func (s *pathScanner) point() (Point, error) {
	x, err := s.number()
	if err != nil {
		return Point{}, err
	}
	y, err := s.number()
	if err != nil {
		return Point{}, err
	}
	return Point{X: x, Y: y}, nil
}

func (s *pathScanner) tokenAt(pos int) string {
	if pos >= len(s.data) {
		return ""
	}
	end := pos + 8
	if end > len(s.data) {
		end = len(s.data)
	}
	return s.data[pos:end]
}
