package collab

import (
	"log/slog"
	"sync"
	"time"

	"github.com/vectral/vectral/backend-go/internal/document"
)

// saveDelay debounces room persistence: edits inside the window collapse
// into one write.
const saveDelay = 2 * time.Second

// DocumentLoader fetches the persisted document when a room first opens.
// DocumentSaver persists a room's document; the hub calls it debounced after
// edits and once more when the room empties.
type (
	DocumentLoader func(projectID string) (*document.Document, error)
	DocumentSaver  func(projectID string, doc *document.Document) error
)

// Room holds everyone editing one project plus the authoritative document.
type Room struct {
	projectID string
	clients   map[string]*Client // clientID -> client
	presence  *PresenceManager
	state     *DocumentState

	saveMu    sync.Mutex
	saveTimer *time.Timer
}

// Hub routes clients into rooms and relays their traffic. One per process.
type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]*Room // projectID -> room
	register   chan *Client
	unregister chan *Client
	loader     DocumentLoader
	saver      DocumentSaver
	quit       chan struct{}
	stopOnce   sync.Once
}

func NewHub(loader DocumentLoader, saver DocumentSaver) *Hub {
	return &Hub{
		rooms:      make(map[string]*Room),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		loader:     loader,
		saver:      saver,
		quit:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-h.quit:
			return
		}
	}
}

// Stop flushes every open room to storage and ends the Run loop. Called
// once during graceful shutdown; further calls are no-ops.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		h.mu.RLock()
		rooms := make([]*Room, 0, len(h.rooms))
		for _, room := range h.rooms {
			rooms = append(rooms, room)
		}
		h.mu.RUnlock()

		for _, room := range rooms {
			room.stopSaveTimer()
			h.saveRoom(room)
		}
		close(h.quit)
	})
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) addClient(client *Client) {
	h.mu.RLock()
	room := h.rooms[client.ProjectID]
	h.mu.RUnlock()

	if room == nil {
		// Run serializes add/remove, so a room opens exactly once.
		room = h.openRoom(client.ProjectID)
		h.mu.Lock()
		h.rooms[client.ProjectID] = room
		h.mu.Unlock()
	}

	h.mu.Lock()
	room.clients[client.ClientID] = client
	h.mu.Unlock()

	joined := Presence{UserID: client.UserID, DisplayName: client.UserName, Color: client.Color}
	room.presence.Update(joined)

	// The newcomer gets the full document first, then the roster.
	if data, err := room.state.Snapshot(); err == nil {
		client.Send(Message{
			Type:      MessageSync,
			ProjectID: room.projectID,
			Seq:       room.state.Seq(),
			Document:  data,
		})
	} else {
		slog.Error("snapshot for sync", "project", room.projectID, "error", err)
	}
	client.Send(room.presence.StateMessage(room.projectID))

	h.broadcastToRoom(client.ProjectID, Message{
		Type:      MessagePresenceJoin,
		ProjectID: client.ProjectID,
		UserID:    client.UserID,
		Presence:  &joined,
	}, client.ClientID)

	slog.Info("client joined", "user", client.UserID, "project", client.ProjectID)
}

func (h *Hub) openRoom(projectID string) *Room {
	var doc *document.Document
	if h.loader != nil {
		loaded, err := h.loader(projectID)
		if err != nil {
			slog.Error("load document, starting empty", "project", projectID, "error", err)
		} else {
			doc = loaded
		}
	}
	return &Room{
		projectID: projectID,
		clients:   make(map[string]*Client),
		presence:  NewPresenceManager(),
		state:     NewDocumentState(doc),
	}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.ProjectID]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, ok := room.clients[client.ClientID]; !ok {
		h.mu.Unlock()
		return
	}

	delete(room.clients, client.ClientID)
	close(client.send)
	room.presence.Remove(client.UserID)

	empty := len(room.clients) == 0
	if empty {
		delete(h.rooms, client.ProjectID)
	}
	h.mu.Unlock()

	if empty {
		room.stopSaveTimer()
		h.saveRoom(room)
	} else {
		h.broadcastToRoom(client.ProjectID, Message{
			Type:      MessagePresenceLeave,
			ProjectID: client.ProjectID,
			UserID:    client.UserID,
		}, "")
	}

	slog.Info("client left", "user", client.UserID, "project", client.ProjectID)
}

func (h *Hub) handleMessage(sender *Client, msg Message) {
	switch msg.Type {
	case MessageOperation:
		h.handleOperation(sender, msg)
	case MessageCursor:
		h.handleCursor(sender, msg)
	default:
		slog.Warn("unknown message type", "type", msg.Type, "user", sender.UserID)
	}
}

// handleOperation applies an edit to the authoritative document and relays
// it to the rest of the room. Rejected operations go back to the sender as
// an error frame and are not relayed.
func (h *Hub) handleOperation(sender *Client, msg Message) {
	if msg.Operation == nil {
		return
	}
	room := h.room(sender.ProjectID)
	if room == nil {
		return
	}

	op := *msg.Operation
	op.UserID = sender.UserID
	if op.Timestamp == 0 {
		op.Timestamp = serverTimestamp()
	}

	seq, err := room.state.Apply(op)
	if err != nil {
		slog.Warn("operation rejected", "op", op.ID, "user", sender.UserID, "error", err)
		sender.Send(Message{Type: MessageError, ProjectID: room.projectID, Error: err.Error()})
		return
	}

	out := operationMessage(room.projectID, op)
	out.Seq = seq
	h.broadcastToRoom(room.projectID, out, sender.ClientID)
	h.scheduleSave(room)
}

// handleCursor relays a cursor frame to the rest of the room. Cursors never
// touch the document state.
func (h *Hub) handleCursor(sender *Client, msg Message) {
	if msg.Cursor == nil {
		return
	}

	cur := *msg.Cursor
	cur.UserID = sender.UserID
	cur.UserName = sender.UserName
	if cur.LastUpdate == 0 {
		cur.LastUpdate = serverTimestamp()
	}
	h.broadcastToRoom(sender.ProjectID, cursorMessage(sender.ProjectID, cur), sender.ClientID)
}

func (h *Hub) room(projectID string) *Room {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rooms[projectID]
}

func (h *Hub) scheduleSave(room *Room) {
	if h.saver == nil {
		return
	}
	room.saveMu.Lock()
	defer room.saveMu.Unlock()
	if room.saveTimer != nil {
		room.saveTimer.Stop()
	}
	room.saveTimer = time.AfterFunc(saveDelay, func() { h.saveRoom(room) })
}

func (h *Hub) saveRoom(room *Room) {
	if h.saver == nil {
		return
	}
	if err := h.saver(room.projectID, room.state.Document()); err != nil {
		slog.Error("save document", "project", room.projectID, "error", err)
		return
	}
	slog.Debug("document saved", "project", room.projectID, "seq", room.state.Seq())
}

func (r *Room) stopSaveTimer() {
	r.saveMu.Lock()
	defer r.saveMu.Unlock()
	if r.saveTimer != nil {
		r.saveTimer.Stop()
		r.saveTimer = nil
	}
}

func (h *Hub) broadcastToRoom(projectID string, msg Message, excludeClientID string) {
	h.mu.RLock()
	room, ok := h.rooms[projectID]
	if !ok {
		h.mu.RUnlock()
		return
	}

	clients := make([]*Client, 0, len(room.clients))
	for _, c := range room.clients {
		if c.ClientID != excludeClientID {
			clients = append(clients, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.Send(msg)
	}
}
