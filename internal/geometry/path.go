package geometry

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// SegmentKind discriminates the path segment variants.
type SegmentKind string

const (
	SegMove  SegmentKind = "move"
	SegLine  SegmentKind = "line"
	SegCurve SegmentKind = "curve"
	SegArc   SegmentKind = "arc"
	SegClose SegmentKind = "close"
)

var (
	// ErrPathClosed is returned when Close is called on an empty or
	// already-closed path. The path is left unchanged.
	ErrPathClosed = errors.New("path already closed")

	// ErrPathNotStarted is returned when a segment is appended before any
	// MoveTo opened a sub-path.
	ErrPathNotStarted = errors.New("path has no open sub-path")
)

// PathSegment is one entry of a vector path. Exactly the fields relevant to
// its kind are meaningful:
//
//	move, line: Point
//	curve:      Control1, Control2, Point (endpoint)
//	arc:        Center, Radius, StartAngle, EndAngle, Clockwise
//	close:      none
type PathSegment struct {
	Kind       SegmentKind
	Point      Point
	Control1   Point
	Control2   Point
	Center     Point
	Radius     float64
	StartAngle float64
	EndAngle   float64
	Clockwise  bool
}

// MoveSegment starts a new sub-path at p.
func MoveSegment(p Point) PathSegment {
	return PathSegment{Kind: SegMove, Point: p}
}

// LineSegment draws a straight line to p.
func LineSegment(p Point) PathSegment {
	return PathSegment{Kind: SegLine, Point: p}
}

// CurveSegment draws a cubic Bézier to end through the two control points.
func CurveSegment(c1, c2, end Point) PathSegment {
	return PathSegment{Kind: SegCurve, Control1: c1, Control2: c2, Point: end}
}

// ArcSegment draws a circular arc around center from startAngle to endAngle
// (radians). Clockwise follows screen coordinates: a positive sweep with the
// y axis pointing down.
func ArcSegment(center Point, radius, startAngle, endAngle float64, clockwise bool) PathSegment {
	return PathSegment{
		Kind:       SegArc,
		Center:     center,
		Radius:     radius,
		StartAngle: startAngle,
		EndAngle:   endAngle,
		Clockwise:  clockwise,
	}
}

// CloseSegment terminates the current sub-path.
func CloseSegment() PathSegment {
	return PathSegment{Kind: SegClose}
}

type segmentJSON struct {
	Type       SegmentKind `json:"type"`
	Point      *Point      `json:"point,omitempty"`
	Control1   *Point      `json:"control1,omitempty"`
	Control2   *Point      `json:"control2,omitempty"`
	Center     *Point      `json:"center,omitempty"`
	Radius     *float64    `json:"radius,omitempty"`
	StartAngle *float64    `json:"startAngle,omitempty"`
	EndAngle   *float64    `json:"endAngle,omitempty"`
	Clockwise  *bool       `json:"clockwise,omitempty"`
}

// MarshalJSON encodes only the fields relevant to the segment kind.
func (s PathSegment) MarshalJSON() ([]byte, error) {
	out := segmentJSON{Type: s.Kind}
	switch s.Kind {
	case SegMove, SegLine:
		p := s.Point
		out.Point = &p
	case SegCurve:
		c1, c2, p := s.Control1, s.Control2, s.Point
		out.Control1, out.Control2, out.Point = &c1, &c2, &p
	case SegArc:
		center, r, sa, ea, cw := s.Center, s.Radius, s.StartAngle, s.EndAngle, s.Clockwise
		out.Center, out.Radius = &center, &r
		out.StartAngle, out.EndAngle, out.Clockwise = &sa, &ea, &cw
	case SegClose:
	default:
		return nil, fmt.Errorf("unknown path segment kind %q", s.Kind)
	}
	return json.Marshal(out)
}

// UnmarshalJSON resolves the tagged segment once at the boundary; unknown
// kinds are rejected.
func (s *PathSegment) UnmarshalJSON(data []byte) error {
	var in segmentJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	seg := PathSegment{Kind: in.Type}
	switch in.Type {
	case SegMove, SegLine:
		if in.Point == nil {
			return fmt.Errorf("%s segment missing point", in.Type)
		}
		seg.Point = *in.Point
	case SegCurve:
		if in.Point == nil || in.Control1 == nil || in.Control2 == nil {
			return errors.New("curve segment missing point or control points")
		}
		seg.Control1, seg.Control2, seg.Point = *in.Control1, *in.Control2, *in.Point
	case SegArc:
		if in.Center == nil || in.Radius == nil || in.StartAngle == nil || in.EndAngle == nil {
			return errors.New("arc segment missing center, radius, or angles")
		}
		seg.Center, seg.Radius = *in.Center, *in.Radius
		seg.StartAngle, seg.EndAngle = *in.StartAngle, *in.EndAngle
		if in.Clockwise != nil {
			seg.Clockwise = *in.Clockwise
		}
	case SegClose:
	default:
		return fmt.Errorf("unknown path segment kind %q", in.Type)
	}
	*s = seg
	return nil
}

// startPoint returns where the segment begins drawing given the current pen
// position. Arcs define their own start independent of the pen.
func (s PathSegment) startPoint(pen Point) Point {
	if s.Kind == SegArc {
		return s.arcPoint(s.StartAngle)
	}
	return pen
}

// endPoint returns the pen position after the segment.
func (s PathSegment) endPoint(pen Point) Point {
	switch s.Kind {
	case SegMove, SegLine, SegCurve:
		return s.Point
	case SegArc:
		return s.arcPoint(s.EndAngle)
	default:
		return pen
	}
}

func (s PathSegment) arcPoint(angle float64) Point {
	return Point{
		X: s.Center.X + s.Radius*math.Cos(angle),
		Y: s.Center.Y + s.Radius*math.Sin(angle),
	}
}

// VectorPath is an ordered segment sequence plus a closed flag.
// Invariant: the first segment of a non-empty path is a move, and close
// segments only terminate a path or sub-path.
type VectorPath struct {
	Segments []PathSegment `json:"segments"`
	Closed   bool          `json:"closed"`
}

// IsEmpty reports whether the path has no segments.
func (p VectorPath) IsEmpty() bool { return len(p.Segments) == 0 }

// Clone returns a deep copy of the path.
func (p VectorPath) Clone() VectorPath {
	out := VectorPath{Closed: p.Closed}
	if len(p.Segments) > 0 {
		out.Segments = make([]PathSegment, len(p.Segments))
		copy(out.Segments, p.Segments)
	}
	return out
}

// Validate checks the structural path invariants on a boundary-decoded path.
func (p VectorPath) Validate() error {
	for i, seg := range p.Segments {
		switch seg.Kind {
		case SegMove:
		case SegLine, SegCurve, SegArc:
			if i == 0 {
				return fmt.Errorf("path starts with %q segment, want move", seg.Kind)
			}
		case SegClose:
			if i == 0 {
				return errors.New("path starts with close segment")
			}
			if p.Segments[i-1].Kind == SegClose {
				return errors.New("consecutive close segments")
			}
		default:
			return fmt.Errorf("unknown path segment kind %q", seg.Kind)
		}
	}
	return nil
}

// PathBuilder accumulates segments under the path invariants. A zero builder
// is ready to use.
type PathBuilder struct {
	path VectorPath
	open bool
}

// NewPathBuilder returns an empty builder.
func NewPathBuilder() *PathBuilder {
	return &PathBuilder{}
}

// MoveTo starts a new sub-path at p. Calling MoveTo on a closed path reopens
// it with a fresh sub-path.
func (b *PathBuilder) MoveTo(p Point) {
	b.path.Segments = append(b.path.Segments, MoveSegment(p))
	b.path.Closed = false
	b.open = true
}

// LineTo appends a line segment to the current sub-path.
func (b *PathBuilder) LineTo(p Point) error {
	if !b.open {
		return ErrPathNotStarted
	}
	b.path.Segments = append(b.path.Segments, LineSegment(p))
	return nil
}

// CurveTo appends a cubic Bézier segment to the current sub-path.
func (b *PathBuilder) CurveTo(c1, c2, end Point) error {
	if !b.open {
		return ErrPathNotStarted
	}
	b.path.Segments = append(b.path.Segments, CurveSegment(c1, c2, end))
	return nil
}

// ArcTo appends a circular arc segment to the current sub-path.
func (b *PathBuilder) ArcTo(center Point, radius, startAngle, endAngle float64, clockwise bool) error {
	if !b.open {
		return ErrPathNotStarted
	}
	b.path.Segments = append(b.path.Segments, ArcSegment(center, radius, startAngle, endAngle, clockwise))
	return nil
}

// Close terminates the current sub-path. Closing an empty or already-closed
// path returns ErrPathClosed and leaves the path unchanged.
func (b *PathBuilder) Close() error {
	if !b.open {
		return ErrPathClosed
	}
	b.path.Segments = append(b.path.Segments, CloseSegment())
	b.path.Closed = true
	b.open = false
	return nil
}

// Path returns a copy of the accumulated path.
func (b *PathBuilder) Path() VectorPath {
	return b.path.Clone()
}
