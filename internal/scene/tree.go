package scene

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vectral/vectral/backend-go/internal/geometry"
	"github.com/vectral/vectral/backend-go/internal/typeid"
)

// IntegrityError reports a mutation the tree rejected because it would
// orphan a layer, close a cycle, or touch an unknown id. Every mutation
// validates before changing anything, so a failed call leaves the tree
// exactly as it was.
type IntegrityError struct {
	Op      string
	LayerID string
	Reason  string
}

func (e *IntegrityError) Error() string {
	if e.LayerID == "" {
		return fmt.Sprintf("scene %s: %s", e.Op, e.Reason)
	}
	return fmt.Sprintf("scene %s %s: %s", e.Op, e.LayerID, e.Reason)
}

// GroupingError reports group/ungroup preconditions that do not hold.
type GroupingError struct {
	Reason string
}

func (e *GroupingError) Error() string {
	return "grouping: " + e.Reason
}

// BoundsResolver reports the world bounds of the element a layer references.
type BoundsResolver func(elementID string) (geometry.BoundingBox, bool)

// Tree owns the layer hierarchy: one root, every other layer attached to
// exactly one parent. All access goes through its methods.
type Tree struct {
	mu     sync.RWMutex
	rootID string
	layers map[string]*Layer
}

// NewTree builds a tree holding only the protected root group.
func NewTree() *Tree {
	root := &Layer{
		ID:        typeid.NewLayerID(),
		Name:      "Root",
		Type:      LayerTypeGroup,
		Visible:   true,
		Opacity:   1,
		BlendMode: BlendNormal,
	}
	return &Tree{
		rootID: root.ID,
		layers: map[string]*Layer{root.ID: root},
	}
}

func (t *Tree) RootID() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.rootID
}

func (t *Tree) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.layers)
}

func (t *Tree) Has(id string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.layers[id]
	return ok
}

// Get returns the live layer. Callers must treat it as read-only; mutations
// go through the tree methods.
func (t *Tree) Get(id string) (*Layer, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	l, ok := t.layers[id]
	return l, ok
}

// CreateLayer appends a leaf layer under parentID (empty means root) with a
// z-index one above the current sibling maximum.
func (t *Tree) CreateLayer(name, elementID, parentID string) (*Layer, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	parent, err := t.insertParentLocked("create", parentID)
	if err != nil {
		return nil, err
	}

	layer := &Layer{
		ID:        typeid.NewLayerID(),
		Name:      name,
		Type:      LayerTypeLayer,
		ElementID: elementID,
		Visible:   true,
		Opacity:   1,
		BlendMode: BlendNormal,
		ZIndex:    t.nextZLocked(parent),
		ParentID:  parent.ID,
	}
	t.layers[layer.ID] = layer
	parent.Children = append(parent.Children, layer.ID)
	return layer, nil
}

// CreateGroup makes a group under parentID (empty means root) and re-parents
// the given members into it in order. Members keep their z-indexes, so their
// relative paint order survives the move.
func (t *Tree) CreateGroup(name string, memberIDs []string, parentID string) (*Layer, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.createGroupLocked(name, memberIDs, parentID)
}

func (t *Tree) createGroupLocked(name string, memberIDs []string, parentID string) (*Layer, error) {
	parent, err := t.insertParentLocked("group", parentID)
	if err != nil {
		return nil, err
	}

	members := make([]*Layer, 0, len(memberIDs))
	seen := make(map[string]struct{}, len(memberIDs))
	for _, id := range memberIDs {
		m, ok := t.layers[id]
		if !ok {
			return nil, &IntegrityError{Op: "group", LayerID: id, Reason: "unknown layer"}
		}
		if id == t.rootID {
			return nil, &IntegrityError{Op: "group", LayerID: id, Reason: "cannot group the root layer"}
		}
		if _, dup := seen[id]; dup {
			return nil, &IntegrityError{Op: "group", LayerID: id, Reason: "duplicate member"}
		}
		seen[id] = struct{}{}
		members = append(members, m)
	}

	// Re-parenting a member under a group that lives inside that member
	// would close a cycle. Reject before mutating.
	for _, m := range members {
		if parent.ID == m.ID || t.isInsideLocked(parent.ID, m.ID) {
			return nil, &IntegrityError{Op: "group", LayerID: m.ID, Reason: "target parent is inside a grouped layer"}
		}
	}

	group := &Layer{
		ID:        typeid.NewLayerID(),
		Name:      name,
		Type:      LayerTypeGroup,
		Visible:   true,
		Opacity:   1,
		BlendMode: BlendNormal,
		ZIndex:    t.nextZLocked(parent),
		ParentID:  parent.ID,
	}
	t.layers[group.ID] = group
	parent.Children = append(parent.Children, group.ID)

	for _, m := range members {
		t.detachLocked(m)
		m.ParentID = group.ID
		group.Children = append(group.Children, m.ID)
	}
	return group, nil
}

// GroupLayers groups at least two layers under their deepest common
// ancestor.
func (t *Tree) GroupLayers(ids []string, name string) (*Layer, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(ids) < 2 {
		return nil, &GroupingError{Reason: "need at least two layers"}
	}
	for _, id := range ids {
		if _, ok := t.layers[id]; !ok {
			return nil, &GroupingError{Reason: fmt.Sprintf("unknown layer %s", id)}
		}
		if id == t.rootID {
			return nil, &GroupingError{Reason: "cannot group the root layer"}
		}
	}

	return t.createGroupLocked(name, ids, t.commonAncestorLocked(ids))
}

// UngroupLayer dissolves a non-root group: its children move to the former
// parent keeping their relative paint order, then the empty group goes away.
// Returns the re-parented child ids in that order.
func (t *Tree) UngroupLayer(id string) ([]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	group, ok := t.layers[id]
	if !ok {
		return nil, &GroupingError{Reason: fmt.Sprintf("unknown layer %s", id)}
	}
	if id == t.rootID {
		return nil, &GroupingError{Reason: "cannot ungroup the root layer"}
	}
	if !group.IsGroup() {
		return nil, &GroupingError{Reason: fmt.Sprintf("layer %s is not a group", id)}
	}

	parent := t.layers[group.ParentID]
	children := t.childrenByZLocked(group)
	base := t.nextZLocked(parent)

	out := make([]string, 0, len(children))
	for i, child := range children {
		child.ParentID = parent.ID
		child.ZIndex = base + i
		parent.Children = append(parent.Children, child.ID)
		out = append(out, child.ID)
	}
	group.Children = nil
	t.detachLocked(group)
	delete(t.layers, group.ID)
	return out, nil
}

// DeleteLayer removes the layer and all its descendants. The root is
// protected and deleting an already absent id is a no-op.
func (t *Tree) DeleteLayer(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if id == t.rootID {
		return nil
	}
	l, ok := t.layers[id]
	if !ok {
		return nil
	}
	t.detachLocked(l)
	t.deleteSubtreeLocked(l)
	return nil
}

func (t *Tree) deleteSubtreeLocked(l *Layer) {
	delete(t.layers, l.ID)
	for _, childID := range l.Children {
		if child, ok := t.layers[childID]; ok {
			t.deleteSubtreeLocked(child)
		}
	}
}

// MoveToFront raises the layer above every sibling.
func (t *Tree) MoveToFront(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	l, siblings, err := t.zOrderContextLocked("move-to-front", id)
	if err != nil || len(siblings) < 2 {
		return err
	}
	top := siblings[len(siblings)-1]
	if top.ID != l.ID {
		l.ZIndex = top.ZIndex + 1
	}
	return nil
}

// MoveToBack lowers the layer below every sibling.
func (t *Tree) MoveToBack(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	l, siblings, err := t.zOrderContextLocked("move-to-back", id)
	if err != nil || len(siblings) < 2 {
		return err
	}
	bottom := siblings[0]
	if bottom.ID != l.ID {
		l.ZIndex = bottom.ZIndex - 1
	}
	return nil
}

// MoveUp swaps z with the next sibling above; a no-op at the top.
func (t *Tree) MoveUp(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	l, siblings, err := t.zOrderContextLocked("move-up", id)
	if err != nil {
		return err
	}
	for i, s := range siblings {
		if s.ID == l.ID {
			if i < len(siblings)-1 {
				next := siblings[i+1]
				l.ZIndex, next.ZIndex = next.ZIndex, l.ZIndex
			}
			break
		}
	}
	return nil
}

// MoveDown swaps z with the next sibling below; a no-op at the bottom.
func (t *Tree) MoveDown(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	l, siblings, err := t.zOrderContextLocked("move-down", id)
	if err != nil {
		return err
	}
	for i, s := range siblings {
		if s.ID == l.ID {
			if i > 0 {
				prev := siblings[i-1]
				l.ZIndex, prev.ZIndex = prev.ZIndex, l.ZIndex
			}
			break
		}
	}
	return nil
}

// AddEffect appends an effect to the layer's list. A blank effect id gets
// generated.
func (t *Tree) AddEffect(layerID string, fx Effect) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	l, ok := t.layers[layerID]
	if !ok {
		return &IntegrityError{Op: "add-effect", LayerID: layerID, Reason: "unknown layer"}
	}
	if fx.ID == "" {
		fx.ID = typeid.NewEffectID()
	}
	if err := fx.Validate(); err != nil {
		return err
	}
	l.Effects = append(l.Effects, fx.Clone())
	return nil
}

// RemoveEffect drops the effect from the layer's list; removing an absent
// effect is a no-op.
func (t *Tree) RemoveEffect(layerID, effectID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	l, ok := t.layers[layerID]
	if !ok {
		return &IntegrityError{Op: "remove-effect", LayerID: layerID, Reason: "unknown layer"}
	}
	kept := l.Effects[:0]
	for _, fx := range l.Effects {
		if fx.ID != effectID {
			kept = append(kept, fx)
		}
	}
	l.Effects = kept
	return nil
}

// UpdateEffect replaces the effect with the same id.
func (t *Tree) UpdateEffect(layerID string, fx Effect) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	l, ok := t.layers[layerID]
	if !ok {
		return &IntegrityError{Op: "update-effect", LayerID: layerID, Reason: "unknown layer"}
	}
	if err := fx.Validate(); err != nil {
		return err
	}
	for i, existing := range l.Effects {
		if existing.ID == fx.ID {
			l.Effects[i] = fx.Clone()
			return nil
		}
	}
	return &IntegrityError{Op: "update-effect", LayerID: layerID, Reason: fmt.Sprintf("unknown effect %s", fx.ID)}
}

// Rename sets the layer's display name.
func (t *Tree) Rename(id, name string) error {
	return t.mutate("rename", id, func(l *Layer) { l.Name = name })
}

func (t *Tree) SetVisible(id string, visible bool) error {
	return t.mutate("set-visible", id, func(l *Layer) { l.Visible = visible })
}

func (t *Tree) SetLocked(id string, locked bool) error {
	return t.mutate("set-locked", id, func(l *Layer) { l.Locked = locked })
}

// SetOpacity clamps to [0, 1].
func (t *Tree) SetOpacity(id string, opacity float64) error {
	if opacity < 0 {
		opacity = 0
	} else if opacity > 1 {
		opacity = 1
	}
	return t.mutate("set-opacity", id, func(l *Layer) { l.Opacity = opacity })
}

func (t *Tree) SetBlendMode(id string, mode BlendMode) error {
	if !ValidBlendMode(mode) {
		return &IntegrityError{Op: "set-blend-mode", LayerID: id, Reason: fmt.Sprintf("unknown blend mode %q", mode)}
	}
	return t.mutate("set-blend-mode", id, func(l *Layer) { l.BlendMode = mode })
}

// AttachElement points a layer at the element it mirrors; used when a group
// layer gets a backing group element.
func (t *Tree) AttachElement(layerID, elementID string) error {
	return t.mutate("attach-element", layerID, func(l *Layer) { l.ElementID = elementID })
}

func (t *Tree) mutate(op, id string, apply func(*Layer)) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	l, ok := t.layers[id]
	if !ok {
		return &IntegrityError{Op: op, LayerID: id, Reason: "unknown layer"}
	}
	apply(l)
	return nil
}

// LayerOrder returns the canonical paint order: pre-order from root with
// children visited in ascending z. Later entries draw on top.
func (t *Tree) LayerOrder() []*Layer {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]*Layer, 0, len(t.layers))
	t.appendOrderLocked(t.layers[t.rootID], &out)
	return out
}

func (t *Tree) appendOrderLocked(l *Layer, out *[]*Layer) {
	if l == nil {
		return
	}
	*out = append(*out, l)
	for _, child := range t.childrenByZLocked(l) {
		t.appendOrderLocked(child, out)
	}
}

// SubtreeBounds unions the resolved bounds of every element referenced at
// or under id.
func (t *Tree) SubtreeBounds(id string, resolve BoundsResolver) (geometry.BoundingBox, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	l, ok := t.layers[id]
	if !ok {
		return geometry.BoundingBox{}, &IntegrityError{Op: "bounds", LayerID: id, Reason: "unknown layer"}
	}

	var box geometry.BoundingBox
	t.unionBoundsLocked(l, resolve, &box)
	return box, nil
}

func (t *Tree) unionBoundsLocked(l *Layer, resolve BoundsResolver, box *geometry.BoundingBox) {
	if l.ElementID != "" && resolve != nil {
		if b, ok := resolve(l.ElementID); ok {
			*box = box.Union(b)
		}
	}
	for _, id := range l.Children {
		if child, ok := t.layers[id]; ok {
			t.unionBoundsLocked(child, resolve, box)
		}
	}
}

// Validate walks the whole structure and reports the first inconsistency:
// missing root, dangling child reference, parent/child mismatch, a cycle,
// or layers unreachable from root.
func (t *Tree) Validate() error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.validateLocked()
}

func (t *Tree) validateLocked() error {
	root, ok := t.layers[t.rootID]
	if !ok {
		return &IntegrityError{Op: "validate", LayerID: t.rootID, Reason: "missing root"}
	}
	if root.ParentID != "" {
		return &IntegrityError{Op: "validate", LayerID: t.rootID, Reason: "root has a parent"}
	}

	seen := make(map[string]bool, len(t.layers))
	if err := t.validateSubtreeLocked(root, seen); err != nil {
		return err
	}
	if len(seen) != len(t.layers) {
		return &IntegrityError{Op: "validate", Reason: fmt.Sprintf("%d layers unreachable from root", len(t.layers)-len(seen))}
	}
	return nil
}

func (t *Tree) validateSubtreeLocked(l *Layer, seen map[string]bool) error {
	if seen[l.ID] {
		return &IntegrityError{Op: "validate", LayerID: l.ID, Reason: "cycle detected"}
	}
	seen[l.ID] = true

	for _, childID := range l.Children {
		child, ok := t.layers[childID]
		if !ok {
			return &IntegrityError{Op: "validate", LayerID: l.ID, Reason: fmt.Sprintf("references missing child %s", childID)}
		}
		if child.ParentID != l.ID {
			return &IntegrityError{Op: "validate", LayerID: childID, Reason: "parent back-reference mismatch"}
		}
		if err := t.validateSubtreeLocked(child, seen); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tree) insertParentLocked(op, parentID string) (*Layer, error) {
	if parentID == "" {
		return t.layers[t.rootID], nil
	}
	parent, ok := t.layers[parentID]
	if !ok {
		return nil, &IntegrityError{Op: op, LayerID: parentID, Reason: "unknown parent"}
	}
	if !parent.IsGroup() {
		return nil, &IntegrityError{Op: op, LayerID: parentID, Reason: "parent is not a group"}
	}
	return parent, nil
}

// nextZLocked is one above the current sibling maximum, 0 for an empty
// parent.
func (t *Tree) nextZLocked(parent *Layer) int {
	next := 0
	for i, id := range parent.Children {
		c, ok := t.layers[id]
		if !ok {
			continue
		}
		if i == 0 || c.ZIndex+1 > next {
			next = c.ZIndex + 1
		}
	}
	return next
}

// childrenByZLocked returns the resolved children sorted ascending by
// z-index, ties keeping slice order.
func (t *Tree) childrenByZLocked(l *Layer) []*Layer {
	out := make([]*Layer, 0, len(l.Children))
	for _, id := range l.Children {
		if c, ok := t.layers[id]; ok {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ZIndex < out[j].ZIndex })
	return out
}

// zOrderContextLocked resolves the layer and its z-sorted siblings
// (including itself). The root has no siblings, so z moves on it are
// no-ops.
func (t *Tree) zOrderContextLocked(op, id string) (*Layer, []*Layer, error) {
	l, ok := t.layers[id]
	if !ok {
		return nil, nil, &IntegrityError{Op: op, LayerID: id, Reason: "unknown layer"}
	}
	if l.ParentID == "" {
		return l, nil, nil
	}
	return l, t.childrenByZLocked(t.layers[l.ParentID]), nil
}

// isInsideLocked reports whether id sits strictly below ancestorID.
func (t *Tree) isInsideLocked(id, ancestorID string) bool {
	cur, ok := t.layers[id]
	for ok && cur.ParentID != "" {
		if cur.ParentID == ancestorID {
			return true
		}
		cur, ok = t.layers[cur.ParentID]
	}
	return false
}

// commonAncestorLocked finds the deepest layer that is a proper ancestor of
// every id: the longest shared prefix of the members' root-to-parent paths.
func (t *Tree) commonAncestorLocked(ids []string) string {
	paths := make([][]string, 0, len(ids))
	for _, id := range ids {
		paths = append(paths, t.rootPathLocked(t.layers[id].ParentID))
	}

	deepest := t.rootID
	for i := 0; i < len(paths[0]); i++ {
		candidate := paths[0][i]
		for _, p := range paths[1:] {
			if i >= len(p) || p[i] != candidate {
				return deepest
			}
		}
		deepest = candidate
	}
	return deepest
}

// rootPathLocked builds the root-to-id path, id included.
func (t *Tree) rootPathLocked(id string) []string {
	var rev []string
	cur, ok := t.layers[id]
	for ok {
		rev = append(rev, cur.ID)
		if cur.ParentID == "" {
			break
		}
		cur, ok = t.layers[cur.ParentID]
	}
	for i, j := 0, len(rev)-1; i < j; i, j = i+1, j-1 {
		rev[i], rev[j] = rev[j], rev[i]
	}
	return rev
}

func (t *Tree) detachLocked(l *Layer) {
	parent, ok := t.layers[l.ParentID]
	if !ok {
		return
	}
	kept := parent.Children[:0]
	for _, id := range parent.Children {
		if id != l.ID {
			kept = append(kept, id)
		}
	}
	parent.Children = kept
}
