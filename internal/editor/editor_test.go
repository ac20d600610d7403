package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vectral/vectral/backend-go/internal/document"
	"github.com/vectral/vectral/backend-go/internal/geometry"
	"github.com/vectral/vectral/backend-go/internal/transform"
)

func newEditor(t *testing.T) *Editor {
	t.Helper()
	return New(Options{UserID: "user_test"})
}

func TestCreateRectangleMirrorsLayer(t *testing.T) {
	ed := newEditor(t)

	el, err := ed.CreateRectangle(10, 20, 100, 50)
	require.NoError(t, err)
	require.NotNil(t, el)

	got, ok := ed.Document().Get(el.ID)
	require.True(t, ok)
	assert.Equal(t, document.ElementShape, got.Type)
	assert.Equal(t, geometry.BoundingBox{X: 10, Y: 20, Width: 100, Height: 50}, got.Bounds)

	layerID, ok := ed.LayerFor(el.ID)
	require.True(t, ok)
	layer, ok := ed.Tree().Get(layerID)
	require.True(t, ok)
	assert.Equal(t, el.ID, layer.ElementID)
}

func TestCreateEmitsEvents(t *testing.T) {
	ed := newEditor(t)

	var types []EventType
	unsubscribe := ed.Subscribe(func(ev Event) { types = append(types, ev.Type) })
	defer unsubscribe()

	_, err := ed.CreateCircle(0, 0, 10)
	require.NoError(t, err)

	assert.Contains(t, types, EventElementsChanged)
	assert.Contains(t, types, EventSceneChanged)
	assert.Contains(t, types, EventHistoryChanged)
}

func TestSubscribeUnsubscribe(t *testing.T) {
	ed := newEditor(t)

	calls := 0
	unsubscribe := ed.Subscribe(func(Event) { calls++ })
	_, err := ed.CreateCircle(0, 0, 10)
	require.NoError(t, err)
	require.Positive(t, calls)

	unsubscribe()
	before := calls
	_, err = ed.CreateCircle(50, 50, 10)
	require.NoError(t, err)
	assert.Equal(t, before, calls)
}

func TestCompletePenBuildsPathElement(t *testing.T) {
	ed := newEditor(t)

	points := []geometry.Point{{X: 0, Y: 0}, {X: 50, Y: 0}, {X: 50, Y: 50}}
	el, err := ed.CompletePen(points, true)
	require.NoError(t, err)

	require.Equal(t, document.ElementPath, el.Type)
	require.NotNil(t, el.Path)
	assert.True(t, el.Path.Closed)
	// move + 2 lines + close
	assert.Len(t, el.Path.Segments, 4)
	assert.Equal(t, geometry.BoundingBox{X: 0, Y: 0, Width: 50, Height: 50}, el.Bounds)
}

func TestCompletePenTooFewPoints(t *testing.T) {
	ed := newEditor(t)
	_, err := ed.CompletePen([]geometry.Point{{X: 1, Y: 1}}, false)
	assert.ErrorIs(t, err, ErrNotEnoughPoints)
}

func TestDragLifecycle(t *testing.T) {
	ed := newEditor(t)
	el, err := ed.CreateRectangle(0, 0, 100, 50)
	require.NoError(t, err)
	require.NoError(t, ed.Select(el.ID))

	require.NoError(t, ed.BeginDrag(geometry.Point{X: 0, Y: 0}))
	states, _ := ed.Drag(transform.TranslateDelta(30, 40))
	require.Len(t, states, 1)

	require.NoError(t, ed.EndDrag())

	got, ok := ed.Document().Get(el.ID)
	require.True(t, ok)
	assert.InDelta(t, 30.0, got.Transform.TranslateX, 1e-9)
	assert.InDelta(t, 40.0, got.Transform.TranslateY, 1e-9)
	assert.InDelta(t, 30.0, got.Bounds.X, 1e-9)
}

func TestCancelDragLeavesDocumentUntouched(t *testing.T) {
	ed := newEditor(t)
	el, err := ed.CreateRectangle(0, 0, 100, 50)
	require.NoError(t, err)
	require.NoError(t, ed.Select(el.ID))

	require.NoError(t, ed.BeginDrag(geometry.Point{}))
	ed.Drag(transform.TranslateDelta(500, 500))
	ed.CancelDrag()

	got, _ := ed.Document().Get(el.ID)
	assert.Zero(t, got.Transform.TranslateX)
	assert.Zero(t, got.Transform.TranslateY)
}

func TestBeginDragEmptySelection(t *testing.T) {
	ed := newEditor(t)
	assert.ErrorIs(t, ed.BeginDrag(geometry.Point{}), ErrEmptySelection)
}

func TestGroupUngroupLeavesGeometryUntouched(t *testing.T) {
	ed := newEditor(t)

	rect, err := ed.CreateRectangle(0, 0, 100, 50)
	require.NoError(t, err)
	circle, err := ed.CreateCircle(200, 200, 30)
	require.NoError(t, err)

	rectBounds := rect.Bounds
	circleBounds := circle.Bounds

	group, err := ed.Group([]string{rect.ID, circle.ID}, "Pair")
	require.NoError(t, err)

	childIDs, err := ed.Ungroup(group.ID)
	require.NoError(t, err)
	assert.Len(t, childIDs, 2)

	for _, id := range []string{rect.ID, circle.ID} {
		layerID, ok := ed.LayerFor(id)
		require.True(t, ok)
		layer, ok := ed.Tree().Get(layerID)
		require.True(t, ok)
		assert.Equal(t, ed.Tree().RootID(), layer.ParentID)
	}

	gotRect, _ := ed.Document().Get(rect.ID)
	gotCircle, _ := ed.Document().Get(circle.ID)
	assert.Equal(t, rectBounds, gotRect.Bounds)
	assert.Equal(t, circleBounds, gotCircle.Bounds)
}

func TestDeleteRemovesElementAndLayer(t *testing.T) {
	ed := newEditor(t)
	el, err := ed.CreateRectangle(0, 0, 10, 10)
	require.NoError(t, err)

	require.NoError(t, ed.Delete(el.ID))

	assert.False(t, ed.Document().Has(el.ID))
	_, ok := ed.LayerFor(el.ID)
	assert.False(t, ok)
}

func TestDeleteGroupCascades(t *testing.T) {
	ed := newEditor(t)
	a, err := ed.CreateRectangle(0, 0, 10, 10)
	require.NoError(t, err)
	b, err := ed.CreateRectangle(20, 0, 10, 10)
	require.NoError(t, err)

	group, err := ed.Group([]string{a.ID, b.ID}, "Pair")
	require.NoError(t, err)

	require.NoError(t, ed.DeleteLayer(group.ID))

	assert.False(t, ed.Document().Has(a.ID))
	assert.False(t, ed.Document().Has(b.ID))
	assert.Equal(t, 1, ed.Tree().Len())
}

func TestUndoRedo(t *testing.T) {
	ed := newEditor(t)
	el, err := ed.CreateRectangle(0, 0, 10, 10)
	require.NoError(t, err)
	require.True(t, ed.CanUndo())

	require.True(t, ed.Undo())
	assert.False(t, ed.Document().Has(el.ID))
	assert.Equal(t, 1, ed.Tree().Len())

	require.True(t, ed.Redo())
	assert.True(t, ed.Document().Has(el.ID))

	assert.False(t, ed.Redo())
}

func TestUndoAtBaselineIsNoOp(t *testing.T) {
	ed := newEditor(t)
	assert.False(t, ed.Undo())
}

func TestAlignAlreadyAlignedIsNoOp(t *testing.T) {
	ed := newEditor(t)
	a, err := ed.CreateRectangle(10, 0, 50, 20)
	require.NoError(t, err)
	b, err := ed.CreateRectangle(10, 100, 30, 20)
	require.NoError(t, err)
	require.NoError(t, ed.Select(a.ID, b.ID))

	var elementEvents int
	defer ed.Subscribe(func(ev Event) {
		if ev.Type == EventElementsChanged {
			elementEvents++
		}
	})()

	require.NoError(t, ed.Align(transform.AlignLeft))

	gotA, _ := ed.Document().Get(a.ID)
	gotB, _ := ed.Document().Get(b.ID)
	assert.Equal(t, 10.0, gotA.Bounds.X)
	assert.Equal(t, 10.0, gotB.Bounds.X)
	assert.Zero(t, elementEvents)
}

func TestAlignMovesTrailingElement(t *testing.T) {
	ed := newEditor(t)
	a, err := ed.CreateRectangle(0, 0, 50, 20)
	require.NoError(t, err)
	b, err := ed.CreateRectangle(80, 100, 30, 20)
	require.NoError(t, err)
	require.NoError(t, ed.Select(a.ID, b.ID))

	require.NoError(t, ed.Align(transform.AlignLeft))

	gotA, _ := ed.Document().Get(a.ID)
	gotB, _ := ed.Document().Get(b.ID)
	assert.Equal(t, 0.0, gotA.Bounds.X)
	assert.Equal(t, 0.0, gotB.Bounds.X)
}

func TestHitTestTopmostWins(t *testing.T) {
	ed := newEditor(t)
	bottom, err := ed.CreateRectangle(0, 0, 100, 100)
	require.NoError(t, err)
	top, err := ed.CreateRectangle(50, 50, 100, 100)
	require.NoError(t, err)

	id, ok := ed.HitTest(geometry.Point{X: 75, Y: 75})
	require.True(t, ok)
	assert.Equal(t, top.ID, id)

	id, ok = ed.HitTest(geometry.Point{X: 10, Y: 10})
	require.True(t, ok)
	assert.Equal(t, bottom.ID, id)

	_, ok = ed.HitTest(geometry.Point{X: 500, Y: 500})
	assert.False(t, ok)
}

func TestHitTestSkipsLockedAndHidden(t *testing.T) {
	ed := newEditor(t)
	under, err := ed.CreateRectangle(0, 0, 100, 100)
	require.NoError(t, err)
	over, err := ed.CreateRectangle(0, 0, 100, 100)
	require.NoError(t, err)

	locked := true
	require.NoError(t, ed.UpdateElement(over.ID, document.UpdatePayload{Locked: &locked}))

	id, ok := ed.HitTest(geometry.Point{X: 50, Y: 50})
	require.True(t, ok)
	assert.Equal(t, under.ID, id)
}

func TestZOrderThroughEditor(t *testing.T) {
	ed := newEditor(t)
	a, err := ed.CreateRectangle(0, 0, 100, 100)
	require.NoError(t, err)
	_, err = ed.CreateRectangle(0, 0, 100, 100)
	require.NoError(t, err)

	require.NoError(t, ed.BringToFront(a.ID))
	id, ok := ed.HitTest(geometry.Point{X: 50, Y: 50})
	require.True(t, ok)
	assert.Equal(t, a.ID, id)
}

func TestSaveLoadSceneRoundTrip(t *testing.T) {
	ed := newEditor(t)
	rect, err := ed.CreateRectangle(5, 5, 40, 40)
	require.NoError(t, err)
	star, err := ed.CreateStar(100, 100, 30, 12, 5)
	require.NoError(t, err)
	require.NoError(t, ed.Select(star.ID))

	saved := ed.SaveScene()
	require.Len(t, saved.Layers, 3) // root + two layers

	other := New(Options{UserID: "user_other"})
	require.NoError(t, other.LoadScene(saved))

	assert.True(t, other.Document().Has(rect.ID))
	assert.True(t, other.Document().Has(star.ID))
	assert.Equal(t, []string{star.ID}, other.Selection())

	loadedRect, _ := other.Document().Get(rect.ID)
	assert.Equal(t, geometry.BoundingBox{X: 5, Y: 5, Width: 40, Height: 40}, loadedRect.Bounds)
}

func TestExportSVGSmoke(t *testing.T) {
	ed := newEditor(t)
	_, err := ed.CreateRectangle(0, 0, 100, 50)
	require.NoError(t, err)

	out, err := ed.ExportSVG()
	require.NoError(t, err)
	assert.Contains(t, string(out), "<svg")
	assert.Contains(t, string(out), "<rect")
}

func TestImportSVGAddsElements(t *testing.T) {
	ed := newEditor(t)

	els, err := ed.ImportSVG([]byte(`<svg xmlns="http://www.w3.org/2000/svg"><rect x="1" y="2" width="30" height="40"/></svg>`))
	require.NoError(t, err)
	require.Len(t, els, 1)

	assert.True(t, ed.Document().Has(els[0].ID))
	_, ok := ed.LayerFor(els[0].ID)
	assert.True(t, ok)
}
