// Package editor is the orchestrator the host UI talks to: it owns the
// document, the layer tree, the transform engine, selection, history, and
// (when a collaborative session is live) funnels every document mutation
// through the same operation pipeline remote peers use.
package editor

import (
	"errors"
	"sync"

	"github.com/vectral/vectral/backend-go/internal/collab"
	"github.com/vectral/vectral/backend-go/internal/document"
	"github.com/vectral/vectral/backend-go/internal/geometry"
	"github.com/vectral/vectral/backend-go/internal/scene"
	"github.com/vectral/vectral/backend-go/internal/transform"
)

var (
	ErrEmptySelection  = errors.New("selection is empty")
	ErrUnknownElement  = errors.New("unknown element")
	ErrNotEnoughPoints = errors.New("pen needs at least two points")
)

// Options configures a new editor. Zero values fall back to the engine
// defaults.
type Options struct {
	UserID        string
	CanvasWidth   float64
	CanvasHeight  float64
	HistoryLimit  int
	SnapThreshold float64
	Grid          document.GridSettings
}

// Editor is the explicit context object the entry point constructs once and
// hands to the host; no engine behind it relies on globals.
type Editor struct {
	mu        sync.Mutex
	userID    string
	doc       *document.Document
	tree      *scene.Tree
	engine    *transform.Engine
	history   *scene.History
	docRing   *docRing
	selection *document.Selection
	viewport  document.Viewport
	session   *collab.Session
	layerOf   map[string]string // element id -> layer id

	subMu   sync.Mutex
	subs    map[int]func(Event)
	nextSub int
}

func New(opts Options) *Editor {
	if opts.CanvasWidth <= 0 {
		opts.CanvasWidth = 1920
	}
	if opts.CanvasHeight <= 0 {
		opts.CanvasHeight = 1080
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = scene.DefaultHistoryLimit
	}

	eng := transform.NewEngine()
	if opts.SnapThreshold > 0 {
		eng.SetSnapThreshold(opts.SnapThreshold)
	}
	if opts.Grid.Size > 0 {
		eng.SetGrid(opts.Grid)
	}

	e := &Editor{
		userID:    opts.UserID,
		doc:       document.NewDocument(),
		tree:      scene.NewTree(),
		engine:    eng,
		history:   scene.NewHistory(opts.HistoryLimit),
		docRing:   newDocRing(opts.HistoryLimit),
		selection: document.NewSelection(),
		viewport:  document.NewViewport(opts.CanvasWidth, opts.CanvasHeight),
		layerOf:   make(map[string]string),
		subs:      make(map[int]func(Event)),
	}
	// Baseline checkpoint: the state the first Undo lands on.
	e.checkpointLocked()
	return e
}

// Document exposes the shared element map so a collaboration session can be
// built over the same instance the editor mutates.
func (e *Editor) Document() *document.Document { return e.doc }

// Tree exposes the layer structure for rendering reads (paint order).
func (e *Editor) Tree() *scene.Tree { return e.tree }

// AttachSession routes subsequent document mutations through the session's
// operation pipeline. The session must have been constructed over this
// editor's Document.
func (e *Editor) AttachSession(s *collab.Session) {
	e.mu.Lock()
	e.session = s
	e.mu.Unlock()
}

// Subscribe registers a change listener and returns its unsubscribe func.
func (e *Editor) Subscribe(fn func(Event)) func() {
	e.subMu.Lock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn
	e.subMu.Unlock()
	return func() {
		e.subMu.Lock()
		delete(e.subs, id)
		e.subMu.Unlock()
	}
}

func (e *Editor) notify(events ...Event) {
	e.subMu.Lock()
	fns := make([]func(Event), 0, len(e.subs))
	for _, fn := range e.subs {
		fns = append(fns, fn)
	}
	e.subMu.Unlock()
	for _, ev := range events {
		for _, fn := range fns {
			fn(ev)
		}
	}
}

// dispatch is the single exit point for document mutations: through the
// collaboration pipeline when a session is attached, directly into the
// document funnel otherwise. Both paths end in document.Apply.
func (e *Editor) dispatch(op document.Operation) error {
	if e.session != nil {
		e.session.Submit(op)
		return nil
	}
	return e.doc.Apply(op)
}

// checkpointLocked saves the scene snapshot and the document clone as one
// undo step. Both rings see the identical save/undo/redo call sequence, so
// their positions never drift apart.
func (e *Editor) checkpointLocked() {
	e.history.Save(e.tree.Snapshot(e.selection.IDs))
	e.docRing.save(e.doc)
}

// Undo steps the scene and the document back one checkpoint.
func (e *Editor) Undo() bool {
	e.mu.Lock()
	snap, ok := e.history.Undo()
	if !ok {
		e.mu.Unlock()
		return false
	}
	docSnap := e.docRing.undo()
	e.restoreLocked(snap, docSnap)
	e.mu.Unlock()

	e.notify(Event{Type: EventHistoryChanged}, Event{Type: EventElementsChanged}, Event{Type: EventSceneChanged})
	return true
}

// Redo reapplies the checkpoint Undo stepped away from.
func (e *Editor) Redo() bool {
	e.mu.Lock()
	snap, ok := e.history.Redo()
	if !ok {
		e.mu.Unlock()
		return false
	}
	docSnap := e.docRing.redo()
	e.restoreLocked(snap, docSnap)
	e.mu.Unlock()

	e.notify(Event{Type: EventHistoryChanged}, Event{Type: EventElementsChanged}, Event{Type: EventSceneChanged})
	return true
}

func (e *Editor) CanUndo() bool { return e.history.CanUndo() }
func (e *Editor) CanRedo() bool { return e.history.CanRedo() }

func (e *Editor) restoreLocked(snap scene.Snapshot, docSnap *document.Document) {
	// Snapshots came from a live tree, so Restore cannot fail on them.
	_ = e.tree.Restore(snap)
	if docSnap != nil {
		e.replaceDocumentLocked(docSnap)
	}
	e.selection.Clear()
	for _, id := range snap.Selected {
		e.selection.Add(id)
	}
	e.selection.Refresh(e.doc)
	e.rebuildLayerIndexLocked()
}

// replaceDocumentLocked swaps the document contents in place. The Document
// pointer never changes: a collaboration session and the rendering layer
// both hold references to it.
func (e *Editor) replaceDocumentLocked(from *document.Document) {
	for _, id := range e.doc.IDs() {
		e.doc.RemoveElement(id)
	}
	for _, el := range from.Elements() {
		e.doc.AddElement(el.Clone())
	}
}

func (e *Editor) rebuildLayerIndexLocked() {
	e.layerOf = make(map[string]string)
	for _, l := range e.tree.LayerOrder() {
		if l.ElementID != "" {
			e.layerOf[l.ElementID] = l.ID
		}
	}
}

// --- selection ---

func (e *Editor) Select(ids ...string) error {
	e.mu.Lock()
	for _, id := range ids {
		if !e.doc.Has(id) {
			e.mu.Unlock()
			return ErrUnknownElement
		}
	}
	e.selection.Clear()
	for _, id := range ids {
		e.selection.Add(id)
	}
	e.selection.Refresh(e.doc)
	e.mu.Unlock()

	e.notify(Event{Type: EventSelectionChanged, ElementIDs: ids})
	return nil
}

func (e *Editor) ToggleSelect(id string) error {
	e.mu.Lock()
	if !e.doc.Has(id) {
		e.mu.Unlock()
		return ErrUnknownElement
	}
	e.selection.Toggle(id)
	e.selection.Refresh(e.doc)
	e.mu.Unlock()

	e.notify(Event{Type: EventSelectionChanged, ElementIDs: []string{id}})
	return nil
}

func (e *Editor) ClearSelection() {
	e.mu.Lock()
	e.selection.Clear()
	e.mu.Unlock()
	e.notify(Event{Type: EventSelectionChanged})
}

func (e *Editor) Selection() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.selection.IDs...)
}

func (e *Editor) SelectionBounds() geometry.BoundingBox {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selection.Bounds
}

// Handles returns the selection handle layout for the current selection box
// at the current zoom.
func (e *Editor) Handles() []transform.Handle {
	e.mu.Lock()
	bounds := e.selection.Bounds
	empty := e.selection.IsEmpty()
	e.mu.Unlock()
	if empty {
		return nil
	}
	return e.engine.SelectionHandles(bounds)
}

// --- viewport ---

func (e *Editor) Viewport() document.Viewport {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewport
}

func (e *Editor) Pan(dx, dy float64) {
	e.mu.Lock()
	e.viewport.Pan(dx, dy)
	e.mu.Unlock()
}

// ZoomAt zooms the viewport about a screen point and keeps the transform
// engine's zoom (handle sizes, snap thresholds) in step.
func (e *Editor) ZoomAt(factor float64, center geometry.Point) {
	e.mu.Lock()
	e.viewport.ZoomAt(factor, center)
	e.engine.SetZoom(e.viewport.Zoom)
	e.mu.Unlock()
}

func (e *Editor) SetConstraint(c transform.Constraint, enabled bool) {
	e.engine.SetConstraint(c, enabled)
}

func (e *Editor) SetGrid(grid document.GridSettings) {
	e.engine.SetGrid(grid)
}

// --- drag lifecycle ---

// BeginDrag starts an interactive transform of the selection about origin
// (usually the grabbed handle's anchor). Locked elements do not move.
func (e *Editor) BeginDrag(origin geometry.Point) error {
	e.mu.Lock()
	states := e.statesForLocked(e.selection.IDs, true)
	e.mu.Unlock()

	if len(states) == 0 {
		return ErrEmptySelection
	}
	return e.engine.Start(states, origin)
}

// Drag previews the accumulated delta against the initial states, with
// constraints and object snapping applied. The document stays untouched
// until EndDrag.
func (e *Editor) Drag(delta geometry.Transform) ([]transform.ElementState, []transform.AlignmentGuide) {
	e.mu.Lock()
	exclude := make(map[string]bool, len(e.selection.IDs))
	for _, id := range e.selection.IDs {
		exclude[id] = true
	}
	var candidates []transform.ElementState
	for _, el := range e.doc.Elements() {
		if exclude[el.ID] || !el.Visible || el.Type == document.ElementGroup {
			continue
		}
		candidates = append(candidates, transform.ElementState{
			ID: el.ID, Transform: el.Transform, Bounds: el.Bounds,
		})
	}
	e.mu.Unlock()

	return e.engine.Update(delta, candidates)
}

// EndDrag commits the final per-element transforms through the document
// funnel (and the collaboration pipeline when attached).
func (e *Editor) EndDrag() error {
	action, err := e.engine.End()
	if err != nil {
		return err
	}

	e.mu.Lock()
	for _, id := range action.IDs {
		op, err := document.NewTransformOperation(id, action.Transforms[id], e.userID, e.doc.Version())
		if err != nil {
			e.mu.Unlock()
			return err
		}
		if err := e.dispatch(op); err != nil {
			e.mu.Unlock()
			return err
		}
	}
	e.selection.Refresh(e.doc)
	e.checkpointLocked()
	e.mu.Unlock()

	e.notify(Event{Type: EventElementsChanged, ElementIDs: action.IDs}, Event{Type: EventHistoryChanged})
	return nil
}

// CancelDrag discards the accumulated delta without touching the document.
func (e *Editor) CancelDrag() {
	e.engine.Cancel()
}

// --- align / distribute ---

func (e *Editor) Align(alignment transform.Alignment) error {
	return e.rearrange(func(states []transform.ElementState) []transform.ElementState {
		return transform.Align(states, alignment)
	})
}

func (e *Editor) Distribute(axis transform.Axis) error {
	return e.rearrange(func(states []transform.ElementState) []transform.ElementState {
		return transform.Distribute(states, axis)
	})
}

func (e *Editor) rearrange(fn func([]transform.ElementState) []transform.ElementState) error {
	e.mu.Lock()
	states := e.statesForLocked(e.selection.IDs, true)
	if len(states) == 0 {
		e.mu.Unlock()
		return ErrEmptySelection
	}

	before := make(map[string]geometry.Transform, len(states))
	for _, st := range states {
		before[st.ID] = st.Transform
	}

	var touched []string
	for _, st := range fn(states) {
		if st.Transform == before[st.ID] {
			continue
		}
		op, err := document.NewTransformOperation(st.ID, st.Transform, e.userID, e.doc.Version())
		if err != nil {
			e.mu.Unlock()
			return err
		}
		if err := e.dispatch(op); err != nil {
			e.mu.Unlock()
			return err
		}
		touched = append(touched, st.ID)
	}

	if len(touched) == 0 {
		e.mu.Unlock()
		return nil
	}
	e.selection.Refresh(e.doc)
	e.checkpointLocked()
	e.mu.Unlock()

	e.notify(Event{Type: EventElementsChanged, ElementIDs: touched}, Event{Type: EventHistoryChanged})
	return nil
}

func (e *Editor) statesForLocked(ids []string, skipLocked bool) []transform.ElementState {
	var states []transform.ElementState
	for _, id := range ids {
		el, ok := e.doc.Get(id)
		if !ok || (skipLocked && el.Locked) {
			continue
		}
		bounds, _ := e.doc.BoundsOf(id)
		states = append(states, transform.ElementState{
			ID: id, Transform: el.Transform, Bounds: bounds,
		})
	}
	return states
}

// --- hit testing ---

// HitTest returns the topmost visible, unlocked element whose bounds
// contain p, walking the canonical paint order back to front.
func (e *Editor) HitTest(p geometry.Point) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	order := e.tree.LayerOrder()
	for i := len(order) - 1; i >= 0; i-- {
		l := order[i]
		if !l.Visible || l.Locked || l.ElementID == "" {
			continue
		}
		el, ok := e.doc.Get(l.ElementID)
		if !ok || !el.Visible || el.Locked {
			continue
		}
		if bounds, ok := e.doc.BoundsOf(el.ID); ok && bounds.Contains(p) {
			return el.ID, true
		}
	}
	return "", false
}

// --- cursors ---

// PublishCursor forwards a live cursor to the session, bypassing the
// operation queue. A no-op without a session.
func (e *Editor) PublishCursor(cur collab.Cursor) {
	e.mu.Lock()
	s := e.session
	e.mu.Unlock()
	if s != nil {
		s.PublishCursor(cur)
	}
}

// --- doc history ring ---

// docRing pairs with scene.History: same capacity, same truncate-on-save
// semantics, driven by the identical call sequence, holding the document
// side of each checkpoint.
type docRing struct {
	entries []*document.Document
	pos     int
	limit   int
}

func newDocRing(limit int) *docRing {
	return &docRing{pos: -1, limit: limit}
}

func (r *docRing) save(d *document.Document) {
	r.entries = append(r.entries[:r.pos+1], d.Clone())
	if len(r.entries) > r.limit {
		r.entries = r.entries[1:]
	}
	r.pos = len(r.entries) - 1
}

func (r *docRing) undo() *document.Document {
	if r.pos <= 0 {
		return nil
	}
	r.pos--
	return r.entries[r.pos]
}

func (r *docRing) redo() *document.Document {
	if r.pos < 0 || r.pos >= len(r.entries)-1 {
		return nil
	}
	r.pos++
	return r.entries[r.pos]
}
