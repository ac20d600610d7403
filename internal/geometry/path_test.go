package geometry

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathBuilder(t *testing.T) {
	b := NewPathBuilder()
	b.MoveTo(Point{X: 0, Y: 0})
	require.NoError(t, b.LineTo(Point{X: 10, Y: 0}))
	require.NoError(t, b.CurveTo(Point{X: 12, Y: 4}, Point{X: 14, Y: 4}, Point{X: 16, Y: 0}))
	require.NoError(t, b.Close())

	p := b.Path()
	require.Len(t, p.Segments, 4)
	assert.Equal(t, SegMove, p.Segments[0].Kind)
	assert.Equal(t, SegLine, p.Segments[1].Kind)
	assert.Equal(t, SegCurve, p.Segments[2].Kind)
	assert.Equal(t, SegClose, p.Segments[3].Kind)
	assert.True(t, p.Closed)
	assert.NoError(t, p.Validate())
}

func TestPathBuilderCloseTwice(t *testing.T) {
	b := NewPathBuilder()
	b.MoveTo(Point{X: 0, Y: 0})
	require.NoError(t, b.LineTo(Point{X: 5, Y: 5}))
	require.NoError(t, b.Close())

	before := b.Path()
	err := b.Close()
	assert.ErrorIs(t, err, ErrPathClosed)
	assert.Equal(t, before, b.Path(), "failed close must not mutate the path")
}

func TestPathBuilderSegmentBeforeMove(t *testing.T) {
	b := NewPathBuilder()
	assert.ErrorIs(t, b.LineTo(Point{X: 1, Y: 1}), ErrPathNotStarted)
	assert.ErrorIs(t, b.CurveTo(Point{}, Point{}, Point{X: 1, Y: 1}), ErrPathNotStarted)
	assert.ErrorIs(t, b.ArcTo(Point{}, 5, 0, 1, true), ErrPathNotStarted)
	assert.ErrorIs(t, b.Close(), ErrPathClosed)
	assert.True(t, b.Path().IsEmpty())
}

func TestPathBuilderReopenAfterClose(t *testing.T) {
	b := NewPathBuilder()
	b.MoveTo(Point{X: 0, Y: 0})
	require.NoError(t, b.LineTo(Point{X: 10, Y: 10}))
	require.NoError(t, b.Close())

	// A later MoveTo starts a fresh sub-path on the same path.
	b.MoveTo(Point{X: 20, Y: 20})
	require.NoError(t, b.LineTo(Point{X: 30, Y: 20}))

	p := b.Path()
	assert.False(t, p.Closed)
	assert.NoError(t, p.Validate())
}

func TestPathSegmentJSONTaggedUnion(t *testing.T) {
	p := VectorPath{
		Segments: []PathSegment{
			MoveSegment(Point{X: 1, Y: 2}),
			CurveSegment(Point{X: 3, Y: 4}, Point{X: 5, Y: 6}, Point{X: 7, Y: 8}),
			ArcSegment(Point{X: 0, Y: 0}, 5, 0, 1.5, true),
			CloseSegment(),
		},
		Closed: true,
	}

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var back VectorPath
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, p, back)

	var bad PathSegment
	err = json.Unmarshal([]byte(`{"type":"wobble"}`), &bad)
	assert.Error(t, err, "unknown segment kinds are rejected at the boundary")
}

func TestPathValidate(t *testing.T) {
	invalid := VectorPath{Segments: []PathSegment{LineSegment(Point{X: 1, Y: 1})}}
	assert.Error(t, invalid.Validate())

	doubleClose := VectorPath{Segments: []PathSegment{
		MoveSegment(Point{}),
		CloseSegment(),
		CloseSegment(),
	}}
	assert.Error(t, doubleClose.Validate())

	assert.NoError(t, VectorPath{}.Validate())
}
