package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vectral/vectral/backend-go/internal/document"
	"github.com/vectral/vectral/backend-go/internal/geometry"
)

func squareState(id string, x, y, side float64) ElementState {
	tr := geometry.IdentityTransform()
	tr.TranslateX = x
	tr.TranslateY = y
	return ElementState{
		ID:        id,
		Transform: tr,
		Bounds:    geometry.BoundingBox{X: x, Y: y, Width: side, Height: side},
	}
}

func TestEngineLifecycle(t *testing.T) {
	e := NewEngine()

	assert.False(t, e.Active())
	assert.Nil(t, e.TransformingIDs())

	// Idle update is a no-op.
	moved, guides := e.Update(TranslateDelta(5, 5), nil)
	assert.Nil(t, moved)
	assert.Nil(t, guides)

	// Idle end fails, idle cancel does not.
	_, err := e.End()
	var se *StateError
	require.ErrorAs(t, err, &se)
	e.Cancel()

	require.NoError(t, e.Start([]ElementState{squareState("a", 0, 0, 10)}, geometry.Point{}))
	assert.True(t, e.Active())
	assert.Equal(t, []string{"a"}, e.TransformingIDs())

	// A second start while active fails.
	err = e.Start([]ElementState{squareState("b", 0, 0, 10)}, geometry.Point{})
	require.ErrorAs(t, err, &se)
	assert.Contains(t, se.Error(), "start")

	_, err = e.End()
	require.NoError(t, err)
	assert.False(t, e.Active())
}

func TestEngineStartRequiresElements(t *testing.T) {
	e := NewEngine()
	var se *StateError
	require.ErrorAs(t, e.Start(nil, geometry.Point{}), &se)
}

func TestEngineUpdateTranslates(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.Start([]ElementState{squareState("a", 0, 0, 10)}, geometry.Point{}))

	moved, guides := e.Update(TranslateDelta(5, 7), nil)
	require.Len(t, moved, 1)
	assert.Empty(t, guides)
	assert.InDelta(t, 5, moved[0].Transform.TranslateX, 1e-9)
	assert.InDelta(t, 7, moved[0].Transform.TranslateY, 1e-9)
	assert.InDelta(t, 5, moved[0].Bounds.X, 1e-9)
	assert.InDelta(t, 7, moved[0].Bounds.Y, 1e-9)
}

func TestEngineScalesAboutOrigin(t *testing.T) {
	e := NewEngine()
	st := squareState("a", 0, 0, 10)
	origin := geometry.Point{X: 5, Y: 5}
	require.NoError(t, e.Start([]ElementState{st}, origin))

	moved, _ := e.Update(ScaleDelta(2, 2), nil)
	require.Len(t, moved, 1)

	// The pivot stays fixed, so the box grows symmetrically around it.
	assert.InDelta(t, -5, moved[0].Bounds.X, 1e-9)
	assert.InDelta(t, -5, moved[0].Bounds.Y, 1e-9)
	assert.InDelta(t, 20, moved[0].Bounds.Width, 1e-9)
	assert.InDelta(t, 20, moved[0].Bounds.Height, 1e-9)
}

func TestEngineUpdatesAccumulate(t *testing.T) {
	// Two engines over the same element: one takes the drag in two steps,
	// the other in a single composed step. They must land identically.
	split := NewEngine()
	whole := NewEngine()

	st := squareState("a", 10, 10, 20)
	origin := geometry.Point{X: 20, Y: 20}
	require.NoError(t, split.Start([]ElementState{st}, origin))
	require.NoError(t, whole.Start([]ElementState{st}, origin))

	d1 := TranslateDelta(5, 0)
	d2 := RotateDelta(0.3)

	split.Update(d1, nil)
	gotSplit, _ := split.Update(d2, nil)
	gotWhole, _ := whole.Update(Compose(d1, d2), nil)

	require.Len(t, gotSplit, 1)
	require.Len(t, gotWhole, 1)
	assert.InDelta(t, gotWhole[0].Transform.TranslateX, gotSplit[0].Transform.TranslateX, 1e-9)
	assert.InDelta(t, gotWhole[0].Transform.TranslateY, gotSplit[0].Transform.TranslateY, 1e-9)
	assert.InDelta(t, gotWhole[0].Transform.Rotation, gotSplit[0].Transform.Rotation, 1e-12)
	assert.InDelta(t, gotWhole[0].Bounds.X, gotSplit[0].Bounds.X, 1e-9)
	assert.InDelta(t, gotWhole[0].Bounds.Y, gotSplit[0].Bounds.Y, 1e-9)
}

func TestEngineAccumulationSurvivesConstraints(t *testing.T) {
	// Constraints are applied to the raw accumulated delta on every update,
	// never to an already-constrained one. With maintain-aspect on, scaling
	// x then y must match scaling both at once.
	split := NewEngine()
	whole := NewEngine()
	split.SetConstraint(ConstraintMaintainAspect, true)
	whole.SetConstraint(ConstraintMaintainAspect, true)

	st := squareState("a", 0, 0, 10)
	require.NoError(t, split.Start([]ElementState{st}, geometry.Point{}))
	require.NoError(t, whole.Start([]ElementState{st}, geometry.Point{}))

	split.Update(ScaleDelta(2, 1), nil)
	gotSplit, _ := split.Update(ScaleDelta(1, 3), nil)
	gotWhole, _ := whole.Update(ScaleDelta(2, 3), nil)

	require.Len(t, gotSplit, 1)
	require.Len(t, gotWhole, 1)
	assert.Equal(t, 3.0, gotSplit[0].Transform.ScaleX)
	assert.Equal(t, 3.0, gotSplit[0].Transform.ScaleY)
	assert.Equal(t, gotWhole[0].Transform, gotSplit[0].Transform)
}

func TestEngineEndReportsAction(t *testing.T) {
	e := NewEngine()
	origin := geometry.Point{X: 2, Y: 3}
	require.NoError(t, e.Start([]ElementState{squareState("a", 0, 0, 10)}, origin))

	moved, _ := e.Update(TranslateDelta(5, 5), nil)
	require.Len(t, moved, 1)

	action, err := e.End()
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, action.IDs)
	assert.Equal(t, origin, action.Origin)
	assert.InDelta(t, 5, action.Delta.TranslateX, 1e-9)
	assert.Equal(t, moved[0].Transform, action.Transforms["a"])
	assert.False(t, e.Active())
}

func TestEngineEndWithoutUpdate(t *testing.T) {
	e := NewEngine()
	st := squareState("a", 4, 4, 10)
	require.NoError(t, e.Start([]ElementState{st}, geometry.Point{}))

	action, err := e.End()
	require.NoError(t, err)
	assert.Equal(t, geometry.IdentityTransform(), action.Delta)
	assert.Equal(t, st.Transform, action.Transforms["a"])
}

func TestEngineCancelDiscards(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.Start([]ElementState{squareState("a", 0, 0, 10)}, geometry.Point{}))
	e.Update(TranslateDelta(100, 100), nil)

	e.Cancel()
	assert.False(t, e.Active())
	_, err := e.End()
	var se *StateError
	require.ErrorAs(t, err, &se)

	// A fresh session starts clean.
	require.NoError(t, e.Start([]ElementState{squareState("a", 0, 0, 10)}, geometry.Point{}))
	moved, _ := e.Update(TranslateDelta(1, 1), nil)
	require.Len(t, moved, 1)
	assert.InDelta(t, 1, moved[0].Transform.TranslateX, 1e-9)
}

func TestEngineMultiElementShareOrigin(t *testing.T) {
	e := NewEngine()
	a := squareState("a", 0, 0, 10)
	b := squareState("b", 30, 0, 10)
	origin := geometry.Point{X: 20, Y: 5}
	require.NoError(t, e.Start([]ElementState{a, b}, origin))

	moved, _ := e.Update(ScaleDelta(2, 2), nil)
	require.Len(t, moved, 2)

	// Both elements scale about the shared pivot.
	assert.InDelta(t, -20, moved[0].Bounds.X, 1e-9)
	assert.InDelta(t, 40, moved[1].Bounds.X, 1e-9)
	assert.InDelta(t, 20, moved[0].Bounds.Width, 1e-9)
	assert.InDelta(t, 20, moved[1].Bounds.Width, 1e-9)
}

func TestEngineGridSyncsConstraint(t *testing.T) {
	e := NewEngine()
	assert.False(t, e.ConstraintEnabled(ConstraintSnapToGrid))

	grid := document.DefaultGridSettings()
	grid.Snap = true
	e.SetGrid(grid)
	assert.True(t, e.ConstraintEnabled(ConstraintSnapToGrid))

	grid.Snap = false
	e.SetGrid(grid)
	assert.False(t, e.ConstraintEnabled(ConstraintSnapToGrid))
}
