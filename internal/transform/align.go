package transform

import (
	"math"
	"sort"
)

// Alignment names the edge or center line elements align to.
type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
	AlignTop    Alignment = "top"
	AlignMiddle Alignment = "middle"
	AlignBottom Alignment = "bottom"
)

// Axis selects the direction elements are distributed along.
type Axis string

const (
	AxisHorizontal Axis = "horizontal"
	AxisVertical   Axis = "vertical"
)

func translated(st ElementState, dx, dy float64) ElementState {
	st.Transform.TranslateX += dx
	st.Transform.TranslateY += dy
	st.Bounds.X += dx
	st.Bounds.Y += dy
	return st
}

// Align translates every state so its chosen edge or center sits on the
// selection's shared line: the extreme edge for left/right/top/bottom, the
// midpoint of the combined extent for center/middle. A single pass suffices
// and already-aligned input comes back unchanged. Fewer than two states is
// a no-op.
func Align(states []ElementState, alignment Alignment) []ElementState {
	if len(states) < 2 {
		return states
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, st := range states {
		minX = math.Min(minX, st.Bounds.X)
		maxX = math.Max(maxX, st.Bounds.MaxX())
		minY = math.Min(minY, st.Bounds.Y)
		maxY = math.Max(maxY, st.Bounds.MaxY())
	}

	out := make([]ElementState, 0, len(states))
	for _, st := range states {
		var dx, dy float64
		switch alignment {
		case AlignLeft:
			dx = minX - st.Bounds.X
		case AlignCenter:
			dx = (minX+maxX)/2 - (st.Bounds.X + st.Bounds.Width/2)
		case AlignRight:
			dx = maxX - st.Bounds.MaxX()
		case AlignTop:
			dy = minY - st.Bounds.Y
		case AlignMiddle:
			dy = (minY+maxY)/2 - (st.Bounds.Y + st.Bounds.Height/2)
		case AlignBottom:
			dy = maxY - st.Bounds.MaxY()
		}
		out = append(out, translated(st, dx, dy))
	}
	return out
}

// Distribute spaces elements evenly along the axis: sorted by leading edge,
// the first and last stay fixed and the middles move so every gap between
// neighbors is (span - sum of sizes) / (n-1). Fewer than three states is a
// no-op. Output preserves input order.
func Distribute(states []ElementState, axis Axis) []ElementState {
	if len(states) < 3 {
		return states
	}

	lead := func(st ElementState) float64 {
		if axis == AxisVertical {
			return st.Bounds.Y
		}
		return st.Bounds.X
	}
	size := func(st ElementState) float64 {
		if axis == AxisVertical {
			return st.Bounds.Height
		}
		return st.Bounds.Width
	}

	order := make([]int, len(states))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return lead(states[order[a]]) < lead(states[order[b]])
	})

	first := states[order[0]]
	last := states[order[len(order)-1]]
	span := lead(last) + size(last) - lead(first)

	var total float64
	for _, st := range states {
		total += size(st)
	}
	gap := (span - total) / float64(len(states)-1)

	out := append([]ElementState(nil), states...)
	cursor := lead(first) + size(first) + gap
	for _, idx := range order[1 : len(order)-1] {
		st := states[idx]
		if axis == AxisVertical {
			out[idx] = translated(st, 0, cursor-lead(st))
		} else {
			out[idx] = translated(st, cursor-lead(st), 0)
		}
		cursor += size(st) + gap
	}
	return out
}
