package geometry

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePathBasic(t *testing.T) {
	p, err := ParsePath("M 0 0 L 10 0 L 10 10 Z")
	require.NoError(t, err)

	require.Len(t, p.Segments, 4)
	assert.Equal(t, SegMove, p.Segments[0].Kind)
	assert.Equal(t, Point{X: 10, Y: 10}, p.Segments[2].Point)
	assert.Equal(t, SegClose, p.Segments[3].Kind)
	assert.True(t, p.Closed)
}

func TestParsePathRelativeAndImplicit(t *testing.T) {
	// Implicit repetition: coordinate pairs after a moveto are linetos.
	p, err := ParsePath("m 10 10 5 0 l 0 5 z")
	require.NoError(t, err)

	require.Len(t, p.Segments, 4)
	assert.Equal(t, Point{X: 10, Y: 10}, p.Segments[0].Point)
	assert.Equal(t, SegLine, p.Segments[1].Kind)
	assert.Equal(t, Point{X: 15, Y: 10}, p.Segments[1].Point)
	assert.Equal(t, Point{X: 15, Y: 15}, p.Segments[2].Point)
}

func TestParsePathCurve(t *testing.T) {
	p, err := ParsePath("M0,0 C 1,2 3,4 5,6")
	require.NoError(t, err)

	require.Len(t, p.Segments, 2)
	c := p.Segments[1]
	assert.Equal(t, SegCurve, c.Kind)
	assert.Equal(t, Point{X: 1, Y: 2}, c.Control1)
	assert.Equal(t, Point{X: 3, Y: 4}, c.Control2)
	assert.Equal(t, Point{X: 5, Y: 6}, c.Point)
}

func TestParsePathCompactNumbers(t *testing.T) {
	// SVG lexing: "1.5.5" is two numbers, "-1-2" is two numbers.
	p, err := ParsePath("M1.5.5L-1-2")
	require.NoError(t, err)

	require.Len(t, p.Segments, 2)
	assert.Equal(t, Point{X: 1.5, Y: 0.5}, p.Segments[0].Point)
	assert.Equal(t, Point{X: -1, Y: -2}, p.Segments[1].Point)
}

func TestParsePathCircularArc(t *testing.T) {
	p, err := ParsePath("M 0 0 A 10 10 0 0 1 20 0")
	require.NoError(t, err)

	require.Len(t, p.Segments, 2)
	arc := p.Segments[1]
	require.Equal(t, SegArc, arc.Kind)
	assert.InDelta(t, 10, arc.Center.X, 1e-9)
	assert.InDelta(t, 0, arc.Center.Y, 1e-9)
	assert.InDelta(t, 10, arc.Radius, 1e-9)
	assert.True(t, arc.Clockwise)

	start := arc.startPoint(Point{})
	end := arc.endPoint(Point{})
	assert.InDelta(t, 0, start.X, 1e-9)
	assert.InDelta(t, 0, start.Y, 1e-9)
	assert.InDelta(t, 20, end.X, 1e-9)
	assert.InDelta(t, 0, end.Y, 1e-9)
}

func TestParsePathArcFlagsPacked(t *testing.T) {
	p, err := ParsePath("M 0 0 A 10 10 0 0110 10")
	require.NoError(t, err)

	require.Len(t, p.Segments, 2)
	arc := p.Segments[1]
	require.Equal(t, SegArc, arc.Kind)
	end := arc.endPoint(Point{})
	assert.InDelta(t, 10, end.X, 1e-6)
	assert.InDelta(t, 10, end.Y, 1e-6)
}

func TestParsePathEllipticalArcFallsBackToCurves(t *testing.T) {
	p, err := ParsePath("M 0 0 A 20 10 0 0 1 40 0")
	require.NoError(t, err)

	require.Greater(t, len(p.Segments), 1)
	for _, seg := range p.Segments[1:] {
		assert.Equal(t, SegCurve, seg.Kind)
	}
	last := p.Segments[len(p.Segments)-1]
	assert.InDelta(t, 40, last.Point.X, 1e-6)
	assert.InDelta(t, 0, last.Point.Y, 1e-6)
}

func TestPathSVGRoundTrip(t *testing.T) {
	b := NewPathBuilder()
	b.MoveTo(Point{X: 0.5, Y: -3})
	require.NoError(t, b.LineTo(Point{X: 100, Y: 0}))
	require.NoError(t, b.CurveTo(Point{X: 110, Y: 40}, Point{X: 150, Y: 40}, Point{X: 160, Y: 0}))
	require.NoError(t, b.LineTo(Point{X: 80, Y: 80}))
	require.NoError(t, b.Close())
	p := b.Path()

	back, err := ParsePath(p.SVG())
	require.NoError(t, err)

	require.Len(t, back.Segments, len(p.Segments))
	for i, want := range p.Segments {
		got := back.Segments[i]
		assert.Equal(t, want.Kind, got.Kind)
		assert.InDelta(t, want.Point.X, got.Point.X, 1e-9)
		assert.InDelta(t, want.Point.Y, got.Point.Y, 1e-9)
		assert.InDelta(t, want.Control1.X, got.Control1.X, 1e-9)
		assert.InDelta(t, want.Control1.Y, got.Control1.Y, 1e-9)
		assert.InDelta(t, want.Control2.X, got.Control2.X, 1e-9)
		assert.InDelta(t, want.Control2.Y, got.Control2.Y, 1e-9)
	}
	assert.Equal(t, p.Closed, back.Closed)
}

func TestArcSVGRoundTrip(t *testing.T) {
	p := VectorPath{Segments: []PathSegment{
		MoveSegment(Point{X: 10, Y: 0}),
		ArcSegment(Point{X: 0, Y: 0}, 10, 0, math.Pi/2, true),
	}}

	back, err := ParsePath(p.SVG())
	require.NoError(t, err)

	require.Len(t, back.Segments, 2)
	arc := back.Segments[1]
	require.Equal(t, SegArc, arc.Kind)
	assert.InDelta(t, 0, arc.Center.X, 1e-6)
	assert.InDelta(t, 0, arc.Center.Y, 1e-6)
	assert.InDelta(t, 10, arc.Radius, 1e-6)

	wantEnd := p.Segments[1].endPoint(Point{})
	gotEnd := arc.endPoint(Point{})
	assert.InDelta(t, wantEnd.X, gotEnd.X, 1e-6)
	assert.InDelta(t, wantEnd.Y, gotEnd.Y, 1e-6)
}

func TestParsePathErrors(t *testing.T) {
	cases := []struct {
		name string
		d    string
	}{
		{"missing coordinate", "M 0"},
		{"non numeric", "M a b"},
		{"unsupported command", "M 0 0 H 10"},
		{"quadratic unsupported", "M 0 0 Q 1 1 2 2"},
		{"lineto before moveto", "L 1 1"},
		{"bad arc flag", "M 0 0 A 5 5 0 2 0 10 10"},
		{"coordinates after close", "M 0 0 L 1 1 Z 5 5"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParsePath(tc.d)
			require.Error(t, err)

			var perr *ParseError
			require.True(t, errors.As(err, &perr), "want *ParseError, got %T", err)
			assert.NotEmpty(t, perr.Reason)
		})
	}

	// Empty input is an empty path, not an error.
	p, err := ParsePath("   ")
	require.NoError(t, err)
	assert.True(t, p.IsEmpty())
}
