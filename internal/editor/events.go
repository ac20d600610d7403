package editor

// EventType names the closed set of change notifications the editor emits.
// The rendering layer subscribes and decides when to repaint; the editor
// never knows about rendering.
type EventType string

const (
	EventElementsChanged  EventType = "elements-changed"
	EventSelectionChanged EventType = "selection-changed"
	EventSceneChanged     EventType = "scene-changed"
	EventHistoryChanged   EventType = "history-changed"
)

// Event carries one change notification. ElementIDs lists the elements a
// mutation touched, when that is cheap to know; a nil slice means "anything
// may have changed" (undo, scene load).
type Event struct {
	Type       EventType
	ElementIDs []string
}
