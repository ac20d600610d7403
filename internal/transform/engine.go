package transform

import (
	"fmt"
	"sync"

	"github.com/vectral/vectral/backend-go/internal/document"
	"github.com/vectral/vectral/backend-go/internal/geometry"
)

// ElementState is the minimal element view the engine operates on: identity,
// transform, and world-space bounds. The engine never touches the document;
// it previews states and reports the final transforms to commit at End.
type ElementState struct {
	ID        string               `json:"id"`
	Transform geometry.Transform   `json:"transform"`
	Bounds    geometry.BoundingBox `json:"bounds"`
}

// StateError reports a lifecycle call made in the wrong state, such as
// ending a transform that was never started.
type StateError struct {
	Call   string
	Reason string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("transform %s: %s", e.Call, e.Reason)
}

// Constraint names the toggleable transform constraints.
type Constraint string

const (
	ConstraintSnapToGrid     Constraint = "snap-to-grid"
	ConstraintSnapToObject   Constraint = "snap-to-object"
	ConstraintMaintainAspect Constraint = "maintain-aspect"
	ConstraintLockRotation   Constraint = "lock-rotation"
	ConstraintLockScale      Constraint = "lock-scale"
)

// DefaultSnapThreshold is in screen pixels; world-space comparisons divide
// it by the current zoom.
const DefaultSnapThreshold = 5.0

// Action summarizes a finished drag: the accumulated delta and the final
// per-element transforms as last previewed.
type Action struct {
	IDs        []string
	Origin     geometry.Point
	Delta      geometry.Transform
	Transforms map[string]geometry.Transform
}

type session struct {
	ids     []string
	origin  geometry.Point
	raw     geometry.Transform // accumulated, unconstrained
	initial map[string]ElementState
	last    map[string]geometry.Transform
	lastFix geometry.Transform // raw after constraints and snapping
}

// Engine drives interactive transforms: one drag session at a time,
// constraint and snap application per update, handle geometry for the
// selection box. All methods are safe for concurrent use.
type Engine struct {
	mu            sync.Mutex
	grid          document.GridSettings
	constraints   map[Constraint]bool
	snapThreshold float64
	zoom          float64
	guides        []AlignmentGuide
	session       *session
}

func NewEngine() *Engine {
	return &Engine{
		grid: document.DefaultGridSettings(),
		constraints: map[Constraint]bool{
			ConstraintSnapToGrid:     false,
			ConstraintSnapToObject:   true,
			ConstraintMaintainAspect: false,
			ConstraintLockRotation:   false,
			ConstraintLockScale:      false,
		},
		snapThreshold: DefaultSnapThreshold,
		zoom:          1,
	}
}

func (e *Engine) SetZoom(zoom float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if zoom > 0 {
		e.zoom = zoom
	}
}

// SetGrid replaces the grid settings. The snap-to-grid constraint follows
// the Snap flag so there is a single source of truth.
func (e *Engine) SetGrid(grid document.GridSettings) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.grid = grid
	e.constraints[ConstraintSnapToGrid] = grid.Snap
}

func (e *Engine) SetConstraint(c Constraint, enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.constraints[c] = enabled
}

func (e *Engine) ConstraintEnabled(c Constraint) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.constraints[c]
}

func (e *Engine) SetSnapThreshold(threshold float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.snapThreshold = threshold
}

// Active reports whether a drag session is in progress.
func (e *Engine) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session != nil
}

// TransformingIDs returns the element ids of the active session, nil when
// idle.
func (e *Engine) TransformingIDs() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return nil
	}
	return append([]string(nil), e.session.ids...)
}

// Start opens a drag session over the given element states, pivoting on
// origin. The states are captured as the immutable base every subsequent
// Update applies its accumulated delta to. Starting while a session is
// active is a StateError.
func (e *Engine) Start(states []ElementState, origin geometry.Point) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session != nil {
		return &StateError{Call: "start", Reason: "session already active"}
	}
	if len(states) == 0 {
		return &StateError{Call: "start", Reason: "no elements to transform"}
	}

	s := &session{
		ids:     make([]string, 0, len(states)),
		origin:  origin,
		raw:     geometry.IdentityTransform(),
		initial: make(map[string]ElementState, len(states)),
		last:    make(map[string]geometry.Transform, len(states)),
		lastFix: geometry.IdentityTransform(),
	}
	for _, st := range states {
		s.ids = append(s.ids, st.ID)
		s.initial[st.ID] = st
		s.last[st.ID] = st.Transform
	}
	e.session = s
	return nil
}

// Update folds an incremental delta into the session and returns the
// previewed element states plus any alignment guides the snap pass emitted.
// Constraints and snapping always apply to the raw accumulated delta, never
// to an already-constrained one, so update(d1) then update(d2) lands exactly
// where a single update(Compose(d1,d2)) would. While idle, Update does
// nothing and returns nil.
func (e *Engine) Update(delta geometry.Transform, candidates []ElementState) ([]ElementState, []AlignmentGuide) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.session
	if s == nil {
		return nil, nil
	}

	s.raw = Compose(s.raw, delta)
	working := e.applyConstraints(s.raw)

	// Preview boxes under the constrained delta feed the object snap pass.
	moved := make([]ElementState, 0, len(s.ids))
	for _, id := range s.ids {
		init := s.initial[id]
		moved = append(moved, ElementState{
			ID:        id,
			Transform: Combine(init.Transform, working, s.origin),
			Bounds:    pivotBox(working, s.origin, init.Bounds),
		})
	}

	snap := e.applySnapping(moved, candidates)
	if snap.snapped {
		working.TranslateX += snap.offset.X
		working.TranslateY += snap.offset.Y
		for i := range moved {
			moved[i].Transform.TranslateX += snap.offset.X
			moved[i].Transform.TranslateY += snap.offset.Y
			moved[i].Bounds.X += snap.offset.X
			moved[i].Bounds.Y += snap.offset.Y
		}
	}

	s.lastFix = working
	for _, st := range moved {
		s.last[st.ID] = st.Transform
	}

	e.guides = keepPersistentGuides(e.guides)
	e.guides = append(e.guides, snap.guides...)

	return moved, snap.guides
}

// End closes the session and returns the final transforms to commit.
// Ending while idle is a StateError.
func (e *Engine) End() (*Action, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.session
	if s == nil {
		return nil, &StateError{Call: "end", Reason: "no active session"}
	}

	action := &Action{
		IDs:        append([]string(nil), s.ids...),
		Origin:     s.origin,
		Delta:      s.lastFix,
		Transforms: make(map[string]geometry.Transform, len(s.last)),
	}
	for id, tr := range s.last {
		action.Transforms[id] = tr
	}

	e.session = nil
	e.guides = keepPersistentGuides(e.guides)
	return action, nil
}

// Cancel discards the session without touching anything. Cancelling while
// idle is a harmless no-op.
func (e *Engine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.session = nil
	e.guides = keepPersistentGuides(e.guides)
}

// Guides returns the current alignment guides, persistent ones first.
func (e *Engine) Guides() []AlignmentGuide {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]AlignmentGuide(nil), e.guides...)
}

// AddGuide installs a persistent guide that object snapping respects until
// removed.
func (e *Engine) AddGuide(g AlignmentGuide) {
	e.mu.Lock()
	defer e.mu.Unlock()
	g.Temporary = false
	e.guides = append(e.guides, g)
}

func (e *Engine) RemoveGuide(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	kept := e.guides[:0]
	for _, g := range e.guides {
		if g.ID != id {
			kept = append(kept, g)
		}
	}
	e.guides = kept
}

func keepPersistentGuides(guides []AlignmentGuide) []AlignmentGuide {
	kept := guides[:0]
	for _, g := range guides {
		if !g.Temporary {
			kept = append(kept, g)
		}
	}
	return kept
}
