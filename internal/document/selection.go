package document

import "github.com/vectral/vectral/backend-go/internal/geometry"

// Selection is the ordered set of selected element ids plus the derived
// union of their bounds. Transform accumulates the working delta of an
// in-progress drag and resets to identity when the drag commits.
type Selection struct {
	IDs       []string             `json:"elements"`
	Bounds    geometry.BoundingBox `json:"bounds"`
	Transform geometry.Transform   `json:"transform"`
}

func NewSelection() *Selection {
	return &Selection{Transform: geometry.IdentityTransform()}
}

func (s *Selection) IsEmpty() bool { return len(s.IDs) == 0 }

func (s *Selection) Len() int { return len(s.IDs) }

func (s *Selection) Contains(id string) bool {
	for _, existing := range s.IDs {
		if existing == id {
			return true
		}
	}
	return false
}

// Add appends id to the selection. Adding an id twice is a no-op; order of
// first insertion is preserved.
func (s *Selection) Add(id string) bool {
	if s.Contains(id) {
		return false
	}
	s.IDs = append(s.IDs, id)
	return true
}

func (s *Selection) Remove(id string) bool {
	for i, existing := range s.IDs {
		if existing == id {
			s.IDs = append(s.IDs[:i], s.IDs[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Selection) Toggle(id string) {
	if !s.Add(id) {
		s.Remove(id)
	}
}

func (s *Selection) Clear() {
	s.IDs = nil
	s.Bounds = geometry.BoundingBox{}
	s.Transform = geometry.IdentityTransform()
}

// Refresh prunes ids that left the document and recomputes the union
// bounds. Call it after any membership change and after any geometry change
// to a member.
func (s *Selection) Refresh(d *Document) {
	kept := s.IDs[:0]
	var union geometry.BoundingBox
	first := true
	for _, id := range s.IDs {
		box, ok := d.BoundsOf(id)
		if !ok {
			continue
		}
		kept = append(kept, id)
		if first {
			union = box
			first = false
		} else {
			union = union.Union(box)
		}
	}
	s.IDs = kept
	s.Bounds = union
}
