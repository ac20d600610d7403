package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/vectral/vectral/backend-go/internal/geometry"
)

// ErrElementNotFound is returned when an update or transform references an
// element id that is not in the document.
var ErrElementNotFound = errors.New("element not found")

// Document holds the shared element map. Every mutation, whether it starts
// locally or arrives from a collaborator, funnels through the same locked
// apply helpers, so local edits and replayed operations cannot diverge.
type Document struct {
	mu       sync.RWMutex
	elements map[string]*Element
	version  int64
}

func NewDocument() *Document {
	return &Document{elements: make(map[string]*Element)}
}

// Version returns the mutation counter. Every successful mutation bumps it.
func (d *Document) Version() int64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.version
}

func (d *Document) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.elements)
}

func (d *Document) Has(id string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.elements[id]
	return ok
}

// Get returns the live element. Callers must treat it as read-only; all
// mutation goes through the Document methods.
func (d *Document) Get(id string) (*Element, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	el, ok := d.elements[id]
	return el, ok
}

// Elements returns the elements sorted by z-index, ties broken by id so the
// order is stable across calls.
func (d *Document) Elements() []*Element {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]*Element, 0, len(d.elements))
	for _, el := range d.elements {
		out = append(out, el)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ZIndex != out[j].ZIndex {
			return out[i].ZIndex < out[j].ZIndex
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// IDs returns the element ids in the same order as Elements.
func (d *Document) IDs() []string {
	els := d.Elements()
	ids := make([]string, len(els))
	for i, el := range els {
		ids[i] = el.ID
	}
	return ids
}

// NextZIndex returns a z-index above every current element, so new elements
// land on top.
func (d *Document) NextZIndex() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	next := 0
	for _, el := range d.elements {
		if el.ZIndex >= next {
			next = el.ZIndex + 1
		}
	}
	return next
}

// AddElement inserts or replaces an element and refreshes its bounds.
func (d *Document) AddElement(el *Element) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.addLocked(el)
	d.version++
}

// UpdateElement applies a partial update to an existing element.
func (d *Document) UpdateElement(id string, upd UpdatePayload) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.updateLocked(id, upd); err != nil {
		return err
	}
	d.version++
	return nil
}

// RemoveElement deletes an element, cascading into group children. Removing
// an id that is not present is a no-op: concurrent deletes of the same
// element are routine in a collaborative session.
func (d *Document) RemoveElement(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.removeLocked(id) {
		return
	}
	d.version++
}

// ApplyTransform replaces the element transform and refreshes its bounds.
func (d *Document) ApplyTransform(id string, tr geometry.Transform) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.transformLocked(id, tr); err != nil {
		return err
	}
	d.version++
	return nil
}

// Apply routes an operation through the same locked helpers the direct
// methods use. Update and transform against a missing element return
// ErrElementNotFound; the collaboration engine logs and drops those without
// halting its queue.
func (d *Document) Apply(op Operation) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch op.Type {
	case OpCreate:
		el, err := op.DecodeCreate()
		if err != nil {
			return err
		}
		d.addLocked(el)
	case OpUpdate:
		upd, err := op.DecodeUpdate()
		if err != nil {
			return err
		}
		if err := d.updateLocked(op.ElementID, upd); err != nil {
			return err
		}
	case OpDelete:
		if !d.removeLocked(op.ElementID) {
			return nil
		}
	case OpTransform:
		tr, err := op.DecodeTransform()
		if err != nil {
			return err
		}
		if err := d.transformLocked(op.ElementID, tr); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown operation type: %s", op.Type)
	}

	d.version++
	return nil
}

func (d *Document) addLocked(el *Element) {
	el.RecomputeBounds()
	d.elements[el.ID] = el
}

func (d *Document) updateLocked(id string, upd UpdatePayload) error {
	el, ok := d.elements[id]
	if !ok {
		return fmt.Errorf("update %s: %w", id, ErrElementNotFound)
	}
	if upd.Name != nil {
		el.Name = *upd.Name
	}
	if upd.Style != nil {
		el.Style = upd.Style.Clone()
	}
	if upd.Visible != nil {
		el.Visible = *upd.Visible
	}
	if upd.Locked != nil {
		el.Locked = *upd.Locked
	}
	if upd.ZIndex != nil {
		el.ZIndex = *upd.ZIndex
	}
	if upd.Shape != nil {
		shape := *upd.Shape
		el.Shape = &shape
	}
	if upd.Text != nil {
		text := *upd.Text
		el.Text = &text
	}
	if upd.Path != nil {
		path := upd.Path.Clone()
		el.Path = &path
	}
	el.RecomputeBounds()
	return nil
}

func (d *Document) removeLocked(id string) bool {
	el, ok := d.elements[id]
	if !ok {
		return false
	}
	if el.Type == ElementGroup {
		for _, childID := range el.Children {
			d.removeLocked(childID)
		}
	}
	delete(d.elements, id)
	return true
}

func (d *Document) transformLocked(id string, tr geometry.Transform) error {
	el, ok := d.elements[id]
	if !ok {
		return fmt.Errorf("transform %s: %w", id, ErrElementNotFound)
	}
	el.Transform = tr
	el.RecomputeBounds()
	return nil
}

// BoundsOf returns the world-space bounds of an element. Group bounds are
// the union of member bounds, computed on demand so they are never stale.
func (d *Document) BoundsOf(id string) (geometry.BoundingBox, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	el, ok := d.elements[id]
	if !ok {
		return geometry.BoundingBox{}, false
	}
	return d.boundsLocked(el, map[string]bool{}), true
}

func (d *Document) boundsLocked(el *Element, seen map[string]bool) geometry.BoundingBox {
	if el.Type != ElementGroup {
		return el.Bounds
	}
	if seen[el.ID] {
		return el.Bounds
	}
	seen[el.ID] = true
	var union geometry.BoundingBox
	first := true
	for _, childID := range el.Children {
		child, ok := d.elements[childID]
		if !ok {
			continue
		}
		box := d.boundsLocked(child, seen)
		if first {
			union = box
			first = false
		} else {
			union = union.Union(box)
		}
	}
	return union
}

// Clone deep-copies the document. History snapshots depend on clones being
// fully detached from the live state.
func (d *Document) Clone() *Document {
	d.mu.RLock()
	defer d.mu.RUnlock()
	c := NewDocument()
	c.version = d.version
	for id, el := range d.elements {
		c.elements[id] = el.Clone()
	}
	return c
}

type documentJSON struct {
	Elements map[string]*Element `json:"elements"`
	Version  int64               `json:"version"`
}

func (d *Document) MarshalJSON() ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return json.Marshal(documentJSON{Elements: d.elements, Version: d.version})
}

func (d *Document) UnmarshalJSON(data []byte) error {
	var raw documentJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.elements = raw.Elements
	if d.elements == nil {
		d.elements = make(map[string]*Element)
	}
	d.version = raw.Version
	return nil
}
