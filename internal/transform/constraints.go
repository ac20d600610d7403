package transform

import (
	"math"

	"github.com/vectral/vectral/backend-go/internal/geometry"
)

// applyConstraints rewrites the accumulated delta under the enabled
// constraints, in a fixed order: maintain-aspect, lock-rotation, lock-scale,
// snap-to-grid. The input is always the raw accumulation, so the result is
// independent of how the drag was sliced into updates.
func (e *Engine) applyConstraints(delta geometry.Transform) geometry.Transform {
	out := delta

	if e.constraints[ConstraintMaintainAspect] {
		out = maintainAspect(out)
	}
	if e.constraints[ConstraintLockRotation] {
		out.Rotation = 0
	}
	if e.constraints[ConstraintLockScale] {
		out.ScaleX = 1
		out.ScaleY = 1
	}
	if e.constraints[ConstraintSnapToGrid] && e.grid.Size > 0 {
		out.TranslateX = math.Round(out.TranslateX/e.grid.Size) * e.grid.Size
		out.TranslateY = math.Round(out.TranslateY/e.grid.Size) * e.grid.Size
	}

	return out
}

// maintainAspect forces uniform scaling: whichever axis has the larger
// magnitude wins and its value applies to both.
func maintainAspect(t geometry.Transform) geometry.Transform {
	scale := t.ScaleY
	if math.Abs(t.ScaleX) > math.Abs(t.ScaleY) {
		scale = t.ScaleX
	}
	t.ScaleX = scale
	t.ScaleY = scale
	return t
}
