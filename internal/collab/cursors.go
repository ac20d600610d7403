package collab

import (
	"sort"
	"sync"
	"time"
)

// DefaultCursorTTL is how long a remote cursor survives without a refresh.
const DefaultCursorTTL = 5 * time.Second

type cursorEntry struct {
	cursor Cursor
	timer  *time.Timer
	gen    uint64
}

// CursorRegistry tracks remote cursors by user id. Every observation arms a
// fresh eviction timer for that user; a cursor that is not refreshed within
// the TTL is removed and the eviction callback fires exactly once.
type CursorRegistry struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]*cursorEntry
	onEvict func(userID string)
}

// NewCursorRegistry builds a registry. ttl <= 0 falls back to
// DefaultCursorTTL; onEvict may be nil.
func NewCursorRegistry(ttl time.Duration, onEvict func(userID string)) *CursorRegistry {
	if ttl <= 0 {
		ttl = DefaultCursorTTL
	}
	return &CursorRegistry{
		ttl:     ttl,
		entries: make(map[string]*cursorEntry),
		onEvict: onEvict,
	}
}

// Observe records a cursor update and resets the user's eviction timer.
func (r *CursorRegistry) Observe(cur Cursor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[cur.UserID]
	if !ok {
		entry = &cursorEntry{}
		r.entries[cur.UserID] = entry
	} else {
		entry.timer.Stop()
	}

	entry.cursor = cur
	entry.gen++
	gen := entry.gen
	entry.timer = time.AfterFunc(r.ttl, func() { r.evict(cur.UserID, gen) })
}

// evict removes the user's cursor if the timer that fired is still the
// current one. A refresh between the fire and the lock bumps the generation
// and the stale eviction is ignored, so eviction fires at most once per
// expiry.
func (r *CursorRegistry) evict(userID string, gen uint64) {
	r.mu.Lock()
	entry, ok := r.entries[userID]
	if !ok || entry.gen != gen {
		r.mu.Unlock()
		return
	}
	delete(r.entries, userID)
	onEvict := r.onEvict
	r.mu.Unlock()

	if onEvict != nil {
		onEvict(userID)
	}
}

// Remove drops a user's cursor without firing the eviction callback, for
// explicit departures.
func (r *CursorRegistry) Remove(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.entries[userID]; ok {
		entry.timer.Stop()
		delete(r.entries, userID)
	}
}

// Get returns the current cursor for a user.
func (r *CursorRegistry) Get(userID string) (Cursor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[userID]
	if !ok {
		return Cursor{}, false
	}
	return entry.cursor, true
}

// Cursors returns a snapshot of all live cursors sorted by user id.
func (r *CursorRegistry) Cursors() []Cursor {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Cursor, 0, len(r.entries))
	for _, entry := range r.entries {
		out = append(out, entry.cursor)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

// Clear stops every timer and empties the registry without eviction events.
func (r *CursorRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, entry := range r.entries {
		entry.timer.Stop()
		delete(r.entries, id)
	}
}
