package scene

import (
	"fmt"

	"github.com/vectral/vectral/backend-go/internal/document"
)

// FormatVersion is the scene persistence format revision.
const FormatVersion = 1

// ElementResolver returns the element a layer references so serialization
// can inline its payload.
type ElementResolver func(elementID string) (*document.Element, bool)

// SerializedLayer is a layer with its element inlined, keeping the document
// self-contained: loading needs no external element store.
type SerializedLayer struct {
	Layer
	Element *document.Element `json:"element,omitempty"`
}

// SceneDocument is the persistence format: every layer in paint order plus
// the selection.
type SceneDocument struct {
	Root           string            `json:"root"`
	Layers         []SerializedLayer `json:"layers"`
	SelectedLayers []string          `json:"selectedLayers,omitempty"`
	Version        int               `json:"version"`
}

// Serialize captures the tree in paint order. resolve may be nil to emit
// the layer structure without element payloads.
func (t *Tree) Serialize(selected []string, resolve ElementResolver) SceneDocument {
	t.mu.RLock()
	defer t.mu.RUnlock()

	doc := SceneDocument{
		Root:    t.rootID,
		Version: FormatVersion,
	}
	if selected != nil {
		doc.SelectedLayers = append([]string(nil), selected...)
	}

	var order []*Layer
	t.appendOrderLocked(t.layers[t.rootID], &order)
	doc.Layers = make([]SerializedLayer, 0, len(order))
	for _, l := range order {
		sl := SerializedLayer{Layer: *l.Clone()}
		if l.ElementID != "" && resolve != nil {
			if el, ok := resolve(l.ElementID); ok {
				sl.Element = el.Clone()
			}
		}
		doc.Layers = append(doc.Layers, sl)
	}
	return doc
}

// LoadTree rebuilds a tree from a serialized scene, checking structural
// integrity and effect payloads before returning. Inline elements come back
// separately for the caller to feed its element store.
func LoadTree(doc SceneDocument) (*Tree, []*document.Element, error) {
	if doc.Root == "" {
		return nil, nil, &IntegrityError{Op: "load", Reason: "missing root id"}
	}
	if doc.Version > FormatVersion {
		return nil, nil, fmt.Errorf("unsupported scene version %d", doc.Version)
	}

	t := &Tree{
		rootID: doc.Root,
		layers: make(map[string]*Layer, len(doc.Layers)),
	}
	var elements []*document.Element
	for i := range doc.Layers {
		sl := doc.Layers[i]
		if sl.ID == "" {
			return nil, nil, &IntegrityError{Op: "load", Reason: "layer without id"}
		}
		if _, dup := t.layers[sl.ID]; dup {
			return nil, nil, &IntegrityError{Op: "load", LayerID: sl.ID, Reason: "duplicate layer id"}
		}
		for _, fx := range sl.Effects {
			if err := fx.Validate(); err != nil {
				return nil, nil, fmt.Errorf("layer %s: %w", sl.ID, err)
			}
		}
		t.layers[sl.ID] = sl.Layer.Clone()
		if sl.Element != nil {
			elements = append(elements, sl.Element.Clone())
		}
	}

	if err := t.validateLocked(); err != nil {
		return nil, nil, err
	}
	return t, elements, nil
}
