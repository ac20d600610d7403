package collab

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/vectral/vectral/backend-go/internal/document"
	"github.com/vectral/vectral/backend-go/internal/typeid"
)

// SessionState tracks the lifecycle of the primary connection.
type SessionState string

const (
	StateDisconnected SessionState = "disconnected"
	StateConnecting   SessionState = "connecting"
	StateConnected    SessionState = "connected"
)

// PeerState tracks the lifecycle of a direct peer channel.
type PeerState string

const (
	PeerSignaling PeerState = "signaling"
	PeerConnected PeerState = "connected"
	PeerClosed    PeerState = "closed"
)

// conflictWindow bounds how far apart two timestamps can be and still count
// as racing edits of the same element.
const conflictWindow = 1000 * time.Millisecond

// Hooks is the closed set of session callbacks. Any field may be nil.
// Callbacks run on the goroutine that drained the triggering message, so
// they should return quickly and must not block on the session.
type Hooks struct {
	OnConnected        func()
	OnDisconnected     func()
	OnOperationApplied func(op document.Operation)
	OnConflictResolved func(c document.Conflict)
	OnRemoteCursor     func(cur Cursor)
	OnCursorEvicted    func(userID string)
	OnError            func(err error)
}

type queuedOp struct {
	op     document.Operation
	remote bool
}

type peerLink struct {
	transport Transport
	state     PeerState
}

// Session is one user's seat in a shared project. It owns the local document
// replica, the FIFO operation queue with conflict detection, the broadcast
// fan-out to the socket and any direct peer channels, and the remote cursor
// registry.
type Session struct {
	ID        string
	userID    string
	userName  string
	projectID string

	doc       *document.Document
	transport Transport
	hooks     Hooks
	cursors   *CursorRegistry

	mu         sync.Mutex
	state      SessionState
	queue      []queuedOp
	processing bool
	pending    []document.Operation
	peers      map[string]*peerLink
	roster     map[string]Presence
}

// NewSession wires a session around a local document replica and a
// transport. The transport handler is registered immediately; traffic
// starts flowing after Connect.
func NewSession(doc *document.Document, transport Transport, projectID, userID, userName string, hooks Hooks) *Session {
	s := &Session{
		ID:        typeid.NewSessionID(),
		userID:    userID,
		userName:  userName,
		projectID: projectID,
		doc:       doc,
		transport: transport,
		hooks:     hooks,
		state:     StateDisconnected,
		peers:     make(map[string]*peerLink),
		roster:    make(map[string]Presence),
	}
	s.cursors = NewCursorRegistry(DefaultCursorTTL, s.onCursorEvicted)
	transport.OnMessage(s.handleMessage)
	return s
}

func (s *Session) UserID() string { return s.userID }

func (s *Session) ProjectID() string { return s.projectID }

// Document returns the session's local replica.
func (s *Session) Document() *document.Document { return s.doc }

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Connect dials the primary transport. Only a disconnected session may
// connect; a failed dial puts the session back to disconnected.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateDisconnected {
		state := s.state
		s.mu.Unlock()
		return &ConnectionError{Stage: "connect", Err: fmt.Errorf("session is %s", state)}
	}
	s.state = StateConnecting
	s.mu.Unlock()

	if err := s.transport.Connect(ctx); err != nil {
		s.mu.Lock()
		s.state = StateDisconnected
		s.mu.Unlock()
		var ce *ConnectionError
		if errors.As(err, &ce) {
			return err
		}
		return &ConnectionError{Stage: "connect", Err: err}
	}

	s.mu.Lock()
	s.state = StateConnected
	s.mu.Unlock()

	if s.hooks.OnConnected != nil {
		s.hooks.OnConnected()
	}
	return nil
}

// Disconnect closes the primary transport and every open peer channel.
// Disconnecting twice is a no-op. Operations still queued keep draining
// against the local replica; they are no longer broadcast.
func (s *Session) Disconnect() error {
	s.mu.Lock()
	if s.state == StateDisconnected {
		s.mu.Unlock()
		return nil
	}
	s.state = StateDisconnected
	var open []*peerLink
	for _, p := range s.peers {
		if p.state == PeerConnected {
			p.state = PeerClosed
			open = append(open, p)
		}
	}
	s.mu.Unlock()

	for _, p := range open {
		if err := p.transport.Disconnect(); err != nil {
			slog.Debug("peer close failed", "error", err)
		}
	}
	err := s.transport.Disconnect()

	s.cursors.Clear()
	if s.hooks.OnDisconnected != nil {
		s.hooks.OnDisconnected()
	}
	return err
}

// OpenPeer attaches a direct channel to another participant. The channel
// starts in signaling and joins the broadcast fan-out once connected.
func (s *Session) OpenPeer(ctx context.Context, peerID string, t Transport) error {
	s.mu.Lock()
	if s.state != StateConnected {
		state := s.state
		s.mu.Unlock()
		return &ConnectionError{Stage: "peer", Err: fmt.Errorf("session is %s", state)}
	}
	if _, ok := s.peers[peerID]; ok {
		s.mu.Unlock()
		return &ConnectionError{Stage: "peer", Err: fmt.Errorf("peer %s already open", peerID)}
	}
	link := &peerLink{transport: t, state: PeerSignaling}
	s.peers[peerID] = link
	s.mu.Unlock()

	t.OnMessage(s.handleMessage)
	if err := t.Connect(ctx); err != nil {
		s.mu.Lock()
		delete(s.peers, peerID)
		s.mu.Unlock()
		return &ConnectionError{Stage: "peer", Err: err}
	}

	s.mu.Lock()
	link.state = PeerConnected
	s.mu.Unlock()
	return nil
}

// ClosePeer tears down one direct channel. Unknown peers are a no-op.
func (s *Session) ClosePeer(peerID string) error {
	s.mu.Lock()
	link, ok := s.peers[peerID]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	delete(s.peers, peerID)
	link.state = PeerClosed
	s.mu.Unlock()
	return link.transport.Disconnect()
}

// PeerStatus reports the state of one direct channel.
func (s *Session) PeerStatus(peerID string) (PeerState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	link, ok := s.peers[peerID]
	if !ok {
		return PeerClosed, false
	}
	return link.state, true
}

// Submit queues a locally issued operation. Operations drain strictly in
// FIFO order and the drain survives operations that fail to apply.
func (s *Session) Submit(op document.Operation) {
	s.enqueue(queuedOp{op: op})
}

func (s *Session) enqueue(q queuedOp) {
	s.mu.Lock()
	s.queue = append(s.queue, q)
	if s.processing {
		s.mu.Unlock()
		return
	}
	s.processing = true
	s.mu.Unlock()

	s.drain()
}

func (s *Session) drain() {
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.processing = false
			s.mu.Unlock()
			return
		}
		q := s.queue[0]
		s.queue = s.queue[1:]
		rivals := s.takeRivalsLocked(q.op)
		s.mu.Unlock()

		s.process(q, rivals)
	}
}

// takeRivalsLocked prunes applied operations that have aged out of the
// conflict window, then removes and returns the ones racing op: same
// element, different user, timestamps within the window.
func (s *Session) takeRivalsLocked(op document.Operation) []document.Operation {
	window := conflictWindow.Milliseconds()
	kept := s.pending[:0]
	var rivals []document.Operation
	for _, p := range s.pending {
		if op.Timestamp-p.Timestamp > window {
			continue
		}
		if p.ElementID == op.ElementID && p.UserID != op.UserID && abs64(op.Timestamp-p.Timestamp) <= window {
			rivals = append(rivals, p)
			continue
		}
		kept = append(kept, p)
	}
	s.pending = kept
	return rivals
}

func (s *Session) process(q queuedOp, rivals []document.Operation) {
	if len(rivals) > 0 {
		s.resolveConflict(q, rivals)
	} else if s.apply(q.op) {
		s.mu.Lock()
		s.pending = append(s.pending, q.op)
		s.mu.Unlock()
		if s.hooks.OnOperationApplied != nil {
			s.hooks.OnOperationApplied(q.op)
		}
	}

	// Local operations go out regardless of how they fared here: every
	// replica runs the same resolution and converges on the same winner.
	if !q.remote {
		s.broadcast(operationMessage(s.projectID, q.op))
	}
}

func (s *Session) resolveConflict(q queuedOp, rivals []document.Operation) {
	ops := append(append([]document.Operation(nil), rivals...), q.op)
	conflict := document.NewConflict(Classify(ops), ops...)
	conflict, winner := Resolve(conflict)

	// The rivals were applied when they drained, so only a winning incoming
	// operation needs applying. A losing one is discarded wholesale.
	if winner.ID == q.op.ID {
		s.apply(q.op)
	}
	if s.hooks.OnConflictResolved != nil {
		s.hooks.OnConflictResolved(conflict)
	}
}

// apply funnels one operation into the replica. A failed apply is reported
// and dropped; it never halts the queue.
func (s *Session) apply(op document.Operation) bool {
	if err := s.doc.Apply(op); err != nil {
		opErr := &OperationError{OpID: op.ID, ElementID: op.ElementID, Err: err}
		slog.Warn("operation dropped", "op", op.ID, "element", op.ElementID, "error", err)
		if s.hooks.OnError != nil {
			s.hooks.OnError(opErr)
		}
		return false
	}
	return true
}

// PublishCursor stamps and broadcasts the local cursor. Cursor traffic never
// rides the operation queue.
func (s *Session) PublishCursor(cur Cursor) {
	cur.UserID = s.userID
	cur.UserName = s.userName
	cur.LastUpdate = time.Now().UnixMilli()
	s.broadcast(cursorMessage(s.projectID, cur))
}

// Cursors lists the live remote cursors.
func (s *Session) Cursors() []Cursor {
	return s.cursors.Cursors()
}

// Roster lists the known remote participants sorted by user id.
func (s *Session) Roster() []Presence {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Presence, 0, len(s.roster))
	for _, p := range s.roster {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

// broadcast fans a message out to the socket and every connected peer
// channel. Send failures are reported but do not stop the fan-out.
func (s *Session) broadcast(msg Message) {
	s.mu.Lock()
	if s.state != StateConnected {
		s.mu.Unlock()
		return
	}
	targets := make([]Transport, 0, 1+len(s.peers))
	targets = append(targets, s.transport)
	for _, p := range s.peers {
		if p.state == PeerConnected {
			targets = append(targets, p.transport)
		}
	}
	s.mu.Unlock()

	for _, t := range targets {
		if err := t.Send(msg); err != nil {
			slog.Warn("send failed", "type", msg.Type, "error", err)
			if s.hooks.OnError != nil {
				s.hooks.OnError(err)
			}
		}
	}
}

// handleMessage receives every inbound frame from the socket and the peer
// channels. Frames echoing the local user are dropped; remote operations
// feed the same queue as local ones.
func (s *Session) handleMessage(msg Message) {
	if msg.UserID == s.userID {
		return
	}

	switch msg.Type {
	case MessageOperation:
		if msg.Operation == nil {
			return
		}
		s.enqueue(queuedOp{op: *msg.Operation, remote: true})
	case MessageCursor:
		if msg.Cursor == nil {
			return
		}
		s.cursors.Observe(*msg.Cursor)
		if s.hooks.OnRemoteCursor != nil {
			s.hooks.OnRemoteCursor(*msg.Cursor)
		}
	case MessageSync:
		if len(msg.Document) == 0 {
			return
		}
		if err := json.Unmarshal(msg.Document, s.doc); err != nil {
			slog.Warn("bad sync payload", "error", err)
			if s.hooks.OnError != nil {
				s.hooks.OnError(fmt.Errorf("decode sync: %w", err))
			}
		}
	case MessagePresenceJoin:
		if msg.Presence == nil {
			return
		}
		s.mu.Lock()
		s.roster[msg.Presence.UserID] = *msg.Presence
		s.mu.Unlock()
	case MessagePresenceLeave:
		s.mu.Lock()
		delete(s.roster, msg.UserID)
		s.mu.Unlock()
		// A leaving user's cursor goes away without an eviction event.
		s.cursors.Remove(msg.UserID)
	case MessagePresenceState:
		s.mu.Lock()
		s.roster = make(map[string]Presence, len(msg.Presences))
		for _, p := range msg.Presences {
			if p.UserID != s.userID {
				s.roster[p.UserID] = p
			}
		}
		s.mu.Unlock()
	case MessageError:
		if msg.Error != "" && s.hooks.OnError != nil {
			s.hooks.OnError(errors.New(msg.Error))
		}
	}
}

func (s *Session) onCursorEvicted(userID string) {
	if s.hooks.OnCursorEvicted != nil {
		s.hooks.OnCursorEvicted(userID)
	}
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
