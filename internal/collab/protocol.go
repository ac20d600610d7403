package collab

import (
	"encoding/json"

	"github.com/vectral/vectral/backend-go/internal/document"
	"github.com/vectral/vectral/backend-go/internal/geometry"
)

// MessageType tags the wire envelope. Every frame on the socket and on
// direct peer channels is one Message.
type MessageType string

const (
	// Document operations, the only path that mutates shared state.
	MessageOperation MessageType = "operation"

	// Ephemeral cursor broadcast; never queued, never persisted.
	MessageCursor MessageType = "cursor"

	// Presence roster.
	MessagePresenceJoin  MessageType = "presence-join"
	MessagePresenceLeave MessageType = "presence-leave"
	MessagePresenceState MessageType = "presence-state"

	// Full document snapshot, sent to a client when it joins a room.
	MessageSync MessageType = "sync"

	MessageError MessageType = "error"
)

// Message is the wire envelope. Exactly one payload field is set, chosen by
// Type; receivers ignore types they do not know so the format can grow.
type Message struct {
	Type      MessageType         `json:"type"`
	ProjectID string              `json:"projectId,omitempty"`
	UserID    string              `json:"userId,omitempty"`
	ClientID  string              `json:"clientId,omitempty"`
	Seq       int64               `json:"seq,omitempty"`
	Operation *document.Operation `json:"operation,omitempty"`
	Cursor    *Cursor             `json:"cursor,omitempty"`
	Presence  *Presence           `json:"presence,omitempty"`
	Presences []Presence          `json:"presences,omitempty"`
	Document  json.RawMessage     `json:"document,omitempty"`
	Error     string              `json:"error,omitempty"`
}

// Cursor is one user's live pointer state. LastUpdate is a unix-milli
// timestamp refreshed on every broadcast.
type Cursor struct {
	UserID     string         `json:"userId"`
	UserName   string         `json:"userName"`
	Color      string         `json:"color"`
	Position   geometry.Point `json:"position"`
	Tool       string         `json:"tool,omitempty"`
	Visible    bool           `json:"isVisible"`
	LastUpdate int64          `json:"lastUpdate"`
}

// Presence is one entry in a room's roster.
type Presence struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Color       string `json:"color,omitempty"`
}

func operationMessage(projectID string, op document.Operation) Message {
	return Message{
		Type:      MessageOperation,
		ProjectID: projectID,
		UserID:    op.UserID,
		Operation: &op,
	}
}

func cursorMessage(projectID string, cur Cursor) Message {
	return Message{
		Type:      MessageCursor,
		ProjectID: projectID,
		UserID:    cur.UserID,
		Cursor:    &cur,
	}
}
