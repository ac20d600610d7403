package scene

import "sync"

// DefaultHistoryLimit caps undo depth. Snapshots are whole-structure clones,
// cheap at typical scene sizes.
const DefaultHistoryLimit = 50

// Snapshot is a frozen copy of the scene at one point: the full layer map
// plus the selection. Snapshots never share layer pointers with the live
// tree or with each other.
type Snapshot struct {
	RootID   string
	Layers   map[string]*Layer
	Selected []string
}

func (s Snapshot) clone() Snapshot {
	out := Snapshot{RootID: s.RootID}
	if s.Layers != nil {
		out.Layers = make(map[string]*Layer, len(s.Layers))
		for id, l := range s.Layers {
			out.Layers[id] = l.Clone()
		}
	}
	if s.Selected != nil {
		out.Selected = append([]string(nil), s.Selected...)
	}
	return out
}

// Snapshot deep-copies the current structure for the history ring.
func (t *Tree) Snapshot(selected []string) Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s := Snapshot{
		RootID: t.rootID,
		Layers: make(map[string]*Layer, len(t.layers)),
	}
	for id, l := range t.layers {
		s.Layers[id] = l.Clone()
	}
	if selected != nil {
		s.Selected = append([]string(nil), selected...)
	}
	return s
}

// Restore swaps a snapshot in as the live structure. The snapshot is
// validated first and cloned, so the history copy stays frozen.
func (t *Tree) Restore(s Snapshot) error {
	replacement := &Tree{rootID: s.RootID, layers: s.clone().Layers}
	if err := replacement.validateLocked(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.rootID = replacement.rootID
	t.layers = replacement.layers
	return nil
}

// History is a bounded undo ring over scene snapshots. entries[pos] is the
// state currently live; Save after Undo drops the redo tail.
type History struct {
	mu      sync.Mutex
	entries []Snapshot
	pos     int
	limit   int
}

func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{pos: -1, limit: limit}
}

// Save records a snapshot as the new current state, truncating anything
// that was undone and evicting the oldest entry once the ring is full.
func (h *History) Save(s Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries[:h.pos+1], s.clone())
	if len(h.entries) > h.limit {
		h.entries = h.entries[1:]
	}
	h.pos = len(h.entries) - 1
}

// Undo steps back one snapshot. The second return is false when there is
// nothing earlier.
func (h *History) Undo() (Snapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.pos <= 0 {
		return Snapshot{}, false
	}
	h.pos--
	return h.entries[h.pos].clone(), true
}

// Redo steps forward one snapshot. The second return is false when nothing
// was undone.
func (h *History) Redo() (Snapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.pos < 0 || h.pos >= len(h.entries)-1 {
		return Snapshot{}, false
	}
	h.pos++
	return h.entries[h.pos].clone(), true
}

func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pos > 0
}

func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pos >= 0 && h.pos < len(h.entries)-1
}

// Len reports how many snapshots the ring holds.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
