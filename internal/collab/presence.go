package collab

import (
	"sort"
	"sync"
)

// PresenceManager tracks who is in a room. One per Room, keyed by user id.
type PresenceManager struct {
	mu        sync.RWMutex
	presences map[string]Presence
}

func NewPresenceManager() *PresenceManager {
	return &PresenceManager{
		presences: make(map[string]Presence),
	}
}

func (pm *PresenceManager) Update(p Presence) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.presences[p.UserID] = p
}

func (pm *PresenceManager) Remove(userID string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	delete(pm.presences, userID)
}

// All returns the current roster sorted by user id.
func (pm *PresenceManager) All() []Presence {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	out := make([]Presence, 0, len(pm.presences))
	for _, p := range pm.presences {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

// StateMessage builds the full-roster frame sent to a client on join.
func (pm *PresenceManager) StateMessage(projectID string) Message {
	return Message{
		Type:      MessagePresenceState,
		ProjectID: projectID,
		Presences: pm.All(),
	}
}
