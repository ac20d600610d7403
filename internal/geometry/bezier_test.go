package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBezierEvaluateEndpoints(t *testing.T) {
	c := CubicBezier{
		Start:    Point{X: 0, Y: 0},
		Control1: Point{X: 10, Y: 20},
		Control2: Point{X: 30, Y: 20},
		End:      Point{X: 40, Y: 0},
	}

	assert.Equal(t, c.Start, c.PointAt(0))
	assert.Equal(t, c.End, c.PointAt(1))

	mid := c.PointAt(0.5)
	assert.InDelta(t, 20, mid.X, 1e-9)
	assert.InDelta(t, 15, mid.Y, 1e-9)
}

func TestBezierEvaluateExtrapolates(t *testing.T) {
	c := CubicBezier{
		Start:    Point{X: 0, Y: 0},
		Control1: Point{X: 1, Y: 0},
		Control2: Point{X: 2, Y: 0},
		End:      Point{X: 3, Y: 0},
	}

	// No clamping: t beyond 1 continues along the polynomial.
	p := c.PointAt(2)
	assert.Greater(t, p.X, c.End.X)

	q := c.PointAt(-1)
	assert.Less(t, q.X, c.Start.X)
}

func TestBezierTangent(t *testing.T) {
	c := CubicBezier{
		Start:    Point{X: 0, Y: 0},
		Control1: Point{X: 10, Y: 5},
		Control2: Point{X: 20, Y: 5},
		End:      Point{X: 30, Y: 0},
	}

	// At the endpoints the derivative is three times the leg vector.
	t0 := c.TangentAt(0)
	assert.InDelta(t, 3*(c.Control1.X-c.Start.X), t0.X, 1e-9)
	assert.InDelta(t, 3*(c.Control1.Y-c.Start.Y), t0.Y, 1e-9)

	t1 := c.TangentAt(1)
	assert.InDelta(t, 3*(c.End.X-c.Control2.X), t1.X, 1e-9)
	assert.InDelta(t, 3*(c.End.Y-c.Control2.Y), t1.Y, 1e-9)
}

func TestBezierSplitReproducesCurve(t *testing.T) {
	c := CubicBezier{
		Start:    Point{X: -5, Y: 12},
		Control1: Point{X: 14, Y: 33},
		Control2: Point{X: 80, Y: -20},
		End:      Point{X: 100, Y: 41},
	}

	for _, split := range []float64{0.1, 0.25, 0.5, 0.73, 0.9} {
		left, right := c.Split(split)

		require.Equal(t, c.Start, left.Start)
		require.Equal(t, c.End, right.End)
		assert.InDelta(t, left.End.X, right.Start.X, 1e-9)
		assert.InDelta(t, left.End.Y, right.Start.Y, 1e-9)

		// Re-evaluating the halves must reproduce the original curve.
		const samples = 100
		for i := 0; i <= samples; i++ {
			u := float64(i) / samples
			want := c.PointAt(u)

			var got Point
			if u <= split {
				got = left.PointAt(u / split)
			} else {
				got = right.PointAt((u - split) / (1 - split))
			}
			assert.InDelta(t, want.X, got.X, 1e-6)
			assert.InDelta(t, want.Y, got.Y, 1e-6)
		}
	}
}

func TestBezierLength(t *testing.T) {
	line := CubicBezier{
		Start:    Point{X: 0, Y: 0},
		Control1: Point{X: 10, Y: 0},
		Control2: Point{X: 20, Y: 0},
		End:      Point{X: 30, Y: 0},
	}
	assert.InDelta(t, 30, line.Length(), 1e-6)

	curved := CubicBezier{
		Start:    Point{X: 0, Y: 0},
		Control1: Point{X: 10, Y: 40},
		Control2: Point{X: 20, Y: 40},
		End:      Point{X: 30, Y: 0},
	}
	// A bent curve between the same endpoints is strictly longer than the chord.
	assert.Greater(t, curved.Length(), 30.0)
	assert.GreaterOrEqual(t, CubicBezier{}.Length(), 0.0)
}
