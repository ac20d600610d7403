package collab

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/vectral/vectral/backend-go/internal/document"
)

// DocumentState is the server-side authority for one project's document. It
// applies operations in arrival order, stamps each with a server sequence,
// and keeps the operation log so late joiners can catch up past a snapshot.
type DocumentState struct {
	mu  sync.RWMutex
	doc *document.Document
	seq int64
	log []document.Operation
}

func NewDocumentState(doc *document.Document) *DocumentState {
	if doc == nil {
		doc = document.NewDocument()
	}
	return &DocumentState{doc: doc}
}

// Apply runs one operation against the authoritative document and records it
// in the log. The returned sequence orders operations for every client.
func (st *DocumentState) Apply(op document.Operation) (int64, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if err := st.doc.Apply(op); err != nil {
		return 0, &OperationError{OpID: op.ID, ElementID: op.ElementID, Err: err}
	}
	st.seq++
	op.Version = st.seq
	st.log = append(st.log, op)
	return st.seq, nil
}

// Seq returns the latest server sequence.
func (st *DocumentState) Seq() int64 {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.seq
}

// Snapshot marshals the current document for a sync frame.
func (st *DocumentState) Snapshot() (json.RawMessage, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	data, err := json.Marshal(st.doc)
	if err != nil {
		return nil, fmt.Errorf("snapshot document: %w", err)
	}
	return data, nil
}

// OpsSince returns the logged operations stamped after seq, oldest first.
func (st *DocumentState) OpsSince(seq int64) []document.Operation {
	st.mu.RLock()
	defer st.mu.RUnlock()

	var out []document.Operation
	for _, op := range st.log {
		if op.Version > seq {
			out = append(out, op)
		}
	}
	return out
}

// Document returns a deep copy of the authoritative document.
func (st *DocumentState) Document() *document.Document {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.doc.Clone()
}

// serverTimestamp is the authoritative clock used to stamp relayed frames.
func serverTimestamp() int64 {
	return time.Now().UnixMilli()
}
