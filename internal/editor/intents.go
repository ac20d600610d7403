package editor

import (
	"fmt"
	"math"

	"github.com/vectral/vectral/backend-go/internal/document"
	"github.com/vectral/vectral/backend-go/internal/geometry"
	"github.com/vectral/vectral/backend-go/internal/scene"
	"github.com/vectral/vectral/backend-go/internal/svg"
	"github.com/vectral/vectral/backend-go/internal/typeid"
)

// --- element creation ---

func (e *Editor) CreateRectangle(x, y, w, h float64) (*document.Element, error) {
	el := document.NewElement(typeid.NewElementID(), document.ElementShape)
	el.Name = "Rectangle"
	el.Shape = &document.ShapeData{Kind: document.ShapeRectangle, Width: w, Height: h}
	el.Transform.TranslateX = x
	el.Transform.TranslateY = y
	return e.addElement(el)
}

func (e *Editor) CreateCircle(cx, cy, r float64) (*document.Element, error) {
	el := document.NewElement(typeid.NewElementID(), document.ElementShape)
	el.Name = "Circle"
	el.Shape = &document.ShapeData{Kind: document.ShapeCircle, Radius: r}
	el.Transform.TranslateX = cx
	el.Transform.TranslateY = cy
	return e.addElement(el)
}

func (e *Editor) CreateEllipse(cx, cy, rx, ry float64) (*document.Element, error) {
	el := document.NewElement(typeid.NewElementID(), document.ElementShape)
	el.Name = "Ellipse"
	el.Shape = &document.ShapeData{Kind: document.ShapeEllipse, RadiusX: rx, RadiusY: ry}
	el.Transform.TranslateX = cx
	el.Transform.TranslateY = cy
	return e.addElement(el)
}

// CreatePolygon builds a regular polygon centered on the local origin with
// the first vertex pointing up; the shape carries its literal points.
func (e *Editor) CreatePolygon(cx, cy, r float64, sides int) (*document.Element, error) {
	if sides < 3 {
		return nil, fmt.Errorf("polygon needs at least 3 sides, got %d", sides)
	}
	points := make([]geometry.Point, sides)
	for i := range points {
		angle := 2*math.Pi*float64(i)/float64(sides) - math.Pi/2
		points[i] = geometry.Point{X: r * math.Cos(angle), Y: r * math.Sin(angle)}
	}

	el := document.NewElement(typeid.NewElementID(), document.ElementShape)
	el.Name = "Polygon"
	el.Shape = &document.ShapeData{Kind: document.ShapePolygon, Points: points}
	el.Transform.TranslateX = cx
	el.Transform.TranslateY = cy
	return e.addElement(el)
}

func (e *Editor) CreateStar(cx, cy, rOuter, rInner float64, points int) (*document.Element, error) {
	if points < 3 {
		return nil, fmt.Errorf("star needs at least 3 points, got %d", points)
	}
	el := document.NewElement(typeid.NewElementID(), document.ElementShape)
	el.Name = "Star"
	el.Shape = &document.ShapeData{
		Kind:        document.ShapeStar,
		Sides:       points,
		OuterRadius: rOuter,
		InnerRadius: rInner,
	}
	el.Transform.TranslateX = cx
	el.Transform.TranslateY = cy
	return e.addElement(el)
}

func (e *Editor) CreateText(x, y float64, content string) (*document.Element, error) {
	el := document.NewElement(typeid.NewElementID(), document.ElementText)
	el.Name = "Text"
	el.Text = &document.TextData{Content: content, FontFamily: "sans-serif", FontSize: 16}
	el.Transform.TranslateX = x
	el.Transform.TranslateY = y
	return e.addElement(el)
}

func (e *Editor) CreatePath(path geometry.VectorPath) (*document.Element, error) {
	if err := path.Validate(); err != nil {
		return nil, err
	}
	el := document.NewElement(typeid.NewElementID(), document.ElementPath)
	el.Name = "Path"
	p := path.Clone()
	el.Path = &p
	return e.addElement(el)
}

// CompletePen turns the pen tool's clicked points into a real Path element:
// straight segments through the points, optionally closed.
func (e *Editor) CompletePen(points []geometry.Point, closed bool) (*document.Element, error) {
	if len(points) < 2 {
		return nil, ErrNotEnoughPoints
	}

	b := geometry.NewPathBuilder()
	b.MoveTo(points[0])
	for _, p := range points[1:] {
		if err := b.LineTo(p); err != nil {
			return nil, err
		}
	}
	if closed {
		if err := b.Close(); err != nil {
			return nil, err
		}
	}
	return e.CreatePath(b.Path())
}

// addElement runs the shared creation path: z-index assignment, bounds,
// the create operation through the mutation funnel, the mirroring layer,
// and a history checkpoint.
func (e *Editor) addElement(el *document.Element) (*document.Element, error) {
	e.mu.Lock()
	el.ZIndex = e.doc.NextZIndex()
	el.RecomputeBounds()

	op, err := document.NewCreateOperation(el, e.userID, e.doc.Version())
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	if err := e.dispatch(op); err != nil {
		e.mu.Unlock()
		return nil, err
	}

	layer, err := e.tree.CreateLayer(el.Name, el.ID, "")
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	e.layerOf[el.ID] = layer.ID
	e.checkpointLocked()
	e.mu.Unlock()

	e.notify(Event{Type: EventElementsChanged, ElementIDs: []string{el.ID}},
		Event{Type: EventSceneChanged}, Event{Type: EventHistoryChanged})

	created, _ := e.doc.Get(el.ID)
	return created, nil
}

// --- update / delete ---

// UpdateElement applies a partial update (name, style, visibility, lock,
// text) through the mutation funnel.
func (e *Editor) UpdateElement(id string, upd document.UpdatePayload) error {
	e.mu.Lock()
	if !e.doc.Has(id) {
		e.mu.Unlock()
		return ErrUnknownElement
	}
	op, err := document.NewUpdateOperation(id, upd, e.userID, e.doc.Version())
	if err != nil {
		e.mu.Unlock()
		return err
	}
	if err := e.dispatch(op); err != nil {
		e.mu.Unlock()
		return err
	}
	e.selection.Refresh(e.doc)
	e.checkpointLocked()
	e.mu.Unlock()

	e.notify(Event{Type: EventElementsChanged, ElementIDs: []string{id}}, Event{Type: EventHistoryChanged})
	return nil
}

// Delete removes elements and their mirroring layers. A group layer deletes
// its whole subtree; every element referenced by the subtree is deleted from
// the document too.
func (e *Editor) Delete(ids ...string) error {
	e.mu.Lock()

	var removed []string
	for _, id := range ids {
		if !e.doc.Has(id) {
			continue
		}
		if layerID, ok := e.layerOf[id]; ok {
			for _, elID := range e.subtreeElementsLocked(layerID) {
				if elID != id {
					removed = append(removed, elID)
				}
			}
			if err := e.tree.DeleteLayer(layerID); err != nil {
				e.mu.Unlock()
				return err
			}
		}
		removed = append(removed, id)
	}

	for _, id := range removed {
		op := document.NewDeleteOperation(id, e.userID, e.doc.Version())
		if err := e.dispatch(op); err != nil {
			e.mu.Unlock()
			return err
		}
		delete(e.layerOf, id)
		e.selection.Remove(id)
	}

	if len(removed) == 0 {
		e.mu.Unlock()
		return nil
	}
	e.selection.Refresh(e.doc)
	e.rebuildLayerIndexLocked()
	e.checkpointLocked()
	e.mu.Unlock()

	e.notify(Event{Type: EventElementsChanged, ElementIDs: removed},
		Event{Type: EventSceneChanged}, Event{Type: EventHistoryChanged})
	return nil
}

// DeleteLayer removes a layer subtree and every element it references.
// This is how a scene group (which mirrors no element of its own) is
// deleted with its members cascading.
func (e *Editor) DeleteLayer(layerID string) error {
	e.mu.Lock()
	removed := e.subtreeElementsLocked(layerID)
	if err := e.tree.DeleteLayer(layerID); err != nil {
		e.mu.Unlock()
		return err
	}
	for _, id := range removed {
		op := document.NewDeleteOperation(id, e.userID, e.doc.Version())
		if err := e.dispatch(op); err != nil {
			e.mu.Unlock()
			return err
		}
		delete(e.layerOf, id)
		e.selection.Remove(id)
	}
	e.selection.Refresh(e.doc)
	e.rebuildLayerIndexLocked()
	e.checkpointLocked()
	e.mu.Unlock()

	e.notify(Event{Type: EventElementsChanged, ElementIDs: removed},
		Event{Type: EventSceneChanged}, Event{Type: EventHistoryChanged})
	return nil
}

func (e *Editor) subtreeElementsLocked(layerID string) []string {
	var out []string
	l, ok := e.tree.Get(layerID)
	if !ok {
		return nil
	}
	if l.ElementID != "" {
		out = append(out, l.ElementID)
	}
	for _, childID := range l.Children {
		out = append(out, e.subtreeElementsLocked(childID)...)
	}
	return out
}

// --- grouping ---

// Group wraps the layers of the given elements in a scene group under their
// deepest common ancestor. Element geometry is untouched.
func (e *Editor) Group(elementIDs []string, name string) (*scene.Layer, error) {
	e.mu.Lock()
	layerIDs := make([]string, 0, len(elementIDs))
	for _, id := range elementIDs {
		layerID, ok := e.layerOf[id]
		if !ok {
			e.mu.Unlock()
			return nil, ErrUnknownElement
		}
		layerIDs = append(layerIDs, layerID)
	}

	group, err := e.tree.GroupLayers(layerIDs, name)
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	e.checkpointLocked()
	e.mu.Unlock()

	e.notify(Event{Type: EventSceneChanged}, Event{Type: EventHistoryChanged})
	return group, nil
}

// Ungroup dissolves a scene group, re-parenting its children to the former
// parent. Element geometry is untouched.
func (e *Editor) Ungroup(groupLayerID string) ([]string, error) {
	e.mu.Lock()
	childIDs, err := e.tree.UngroupLayer(groupLayerID)
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	e.checkpointLocked()
	e.mu.Unlock()

	e.notify(Event{Type: EventSceneChanged}, Event{Type: EventHistoryChanged})
	return childIDs, nil
}

// LayerFor returns the layer mirroring an element.
func (e *Editor) LayerFor(elementID string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	layerID, ok := e.layerOf[elementID]
	return layerID, ok
}

// --- z-order ---

func (e *Editor) BringToFront(elementID string) error {
	return e.zorder(elementID, e.tree.MoveToFront)
}

func (e *Editor) SendToBack(elementID string) error {
	return e.zorder(elementID, e.tree.MoveToBack)
}

func (e *Editor) MoveUp(elementID string) error {
	return e.zorder(elementID, e.tree.MoveUp)
}

func (e *Editor) MoveDown(elementID string) error {
	return e.zorder(elementID, e.tree.MoveDown)
}

func (e *Editor) zorder(elementID string, move func(string) error) error {
	e.mu.Lock()
	layerID, ok := e.layerOf[elementID]
	if !ok {
		e.mu.Unlock()
		return ErrUnknownElement
	}
	if err := move(layerID); err != nil {
		e.mu.Unlock()
		return err
	}
	e.checkpointLocked()
	e.mu.Unlock()

	e.notify(Event{Type: EventSceneChanged}, Event{Type: EventHistoryChanged})
	return nil
}

// --- SVG interop ---

// ImportSVG parses an SVG document and adds every imported element to the
// document and the layer tree.
func (e *Editor) ImportSVG(data []byte) ([]*document.Element, error) {
	els, err := svg.Import(data)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	var ids []string
	for _, el := range els {
		el.ZIndex = e.doc.NextZIndex()
		op, err := document.NewCreateOperation(el, e.userID, e.doc.Version())
		if err != nil {
			e.mu.Unlock()
			return nil, err
		}
		if err := e.dispatch(op); err != nil {
			e.mu.Unlock()
			return nil, err
		}
		layer, err := e.tree.CreateLayer(el.Name, el.ID, "")
		if err != nil {
			e.mu.Unlock()
			return nil, err
		}
		e.layerOf[el.ID] = layer.ID
		ids = append(ids, el.ID)
	}
	e.checkpointLocked()
	e.mu.Unlock()

	e.notify(Event{Type: EventElementsChanged, ElementIDs: ids},
		Event{Type: EventSceneChanged}, Event{Type: EventHistoryChanged})
	return els, nil
}

// ExportSVG serializes the document to a standalone SVG sized to the
// viewport.
func (e *Editor) ExportSVG() ([]byte, error) {
	e.mu.Lock()
	els := e.doc.Elements()
	width, height := e.viewport.Width, e.viewport.Height
	e.mu.Unlock()

	return svg.Export(els, width, height)
}

// --- scene persistence ---

// SaveScene captures the layer tree with element payloads inlined. The
// scene format records selection as layer ids.
func (e *Editor) SaveScene() scene.SceneDocument {
	e.mu.Lock()
	defer e.mu.Unlock()

	var selected []string
	for _, id := range e.selection.IDs {
		if layerID, ok := e.layerOf[id]; ok {
			selected = append(selected, layerID)
		}
	}
	return e.tree.Serialize(selected, e.doc.Get)
}

// LoadScene replaces the live scene and document with a serialized one.
func (e *Editor) LoadScene(sd scene.SceneDocument) error {
	tree, els, err := scene.LoadTree(sd)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.tree = tree
	for _, id := range e.doc.IDs() {
		e.doc.RemoveElement(id)
	}
	for _, el := range els {
		e.doc.AddElement(el)
	}
	e.rebuildLayerIndexLocked()
	e.selection.Clear()
	for _, layerID := range sd.SelectedLayers {
		if l, ok := e.tree.Get(layerID); ok && l.ElementID != "" {
			e.selection.Add(l.ElementID)
		}
	}
	e.selection.Refresh(e.doc)
	e.checkpointLocked()
	e.mu.Unlock()

	e.notify(Event{Type: EventElementsChanged}, Event{Type: EventSceneChanged}, Event{Type: EventHistoryChanged})
	return nil
}
