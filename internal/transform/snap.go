package transform

import (
	"math"

	"github.com/google/uuid"
	"github.com/vectral/vectral/backend-go/internal/geometry"
)

// GuideOrientation is the axis an alignment guide runs along.
type GuideOrientation string

const (
	GuideVertical   GuideOrientation = "vertical"
	GuideHorizontal GuideOrientation = "horizontal"
)

// AlignmentGuide marks a shared edge or center between elements. Guides
// emitted by object snapping are temporary and live until the next update;
// user-placed guides persist until removed.
type AlignmentGuide struct {
	ID          string           `json:"id"`
	Orientation GuideOrientation `json:"orientation"`
	Position    float64          `json:"position"`
	ElementIDs  []string         `json:"elements"`
	Temporary   bool             `json:"temporary"`
}

type snapResult struct {
	snapped bool
	offset  geometry.Point
	guides  []AlignmentGuide
}

type snapAxis int

const (
	snapAxisX snapAxis = iota
	snapAxisY
)

type snapMatch struct {
	elementID   string
	candidateID string
	position    float64
	correction  float64
}

// applySnapping compares the nine canonical snap points of every moved
// element against those of the candidates. Each axis snaps independently to
// its first match within threshold, so at most one x and one y correction
// apply per update and no averaging happens across candidates.
func (e *Engine) applySnapping(moved, candidates []ElementState) snapResult {
	var res snapResult
	if !e.constraints[ConstraintSnapToObject] || len(moved) == 0 || len(candidates) == 0 {
		return res
	}

	threshold := e.snapThreshold / e.zoom
	skip := make(map[string]struct{}, len(moved))
	for _, st := range moved {
		skip[st.ID] = struct{}{}
	}

	if m, ok := findSnap(moved, candidates, skip, snapAxisX, threshold); ok {
		res.snapped = true
		res.offset.X = m.correction
		res.guides = append(res.guides, AlignmentGuide{
			ID:          uuid.NewString(),
			Orientation: GuideVertical,
			Position:    m.position,
			ElementIDs:  []string{m.elementID, m.candidateID},
			Temporary:   true,
		})
	}
	if m, ok := findSnap(moved, candidates, skip, snapAxisY, threshold); ok {
		res.snapped = true
		res.offset.Y = m.correction
		res.guides = append(res.guides, AlignmentGuide{
			ID:          uuid.NewString(),
			Orientation: GuideHorizontal,
			Position:    m.position,
			ElementIDs:  []string{m.elementID, m.candidateID},
			Temporary:   true,
		})
	}
	return res
}

// findSnap scans moved elements, their snap points, candidates, and the
// candidates' snap points in that fixed order and returns the first pair
// within threshold on the given axis.
func findSnap(moved, candidates []ElementState, skip map[string]struct{}, axis snapAxis, threshold float64) (snapMatch, bool) {
	for _, st := range moved {
		for _, p := range st.Bounds.SnapPoints() {
			for _, cand := range candidates {
				if _, ok := skip[cand.ID]; ok {
					continue
				}
				for _, cp := range cand.Bounds.SnapPoints() {
					a, b := p.X, cp.X
					if axis == snapAxisY {
						a, b = p.Y, cp.Y
					}
					if math.Abs(b-a) <= threshold {
						return snapMatch{
							elementID:   st.ID,
							candidateID: cand.ID,
							position:    b,
							correction:  b - a,
						}, true
					}
				}
			}
		}
	}
	return snapMatch{}, false
}
