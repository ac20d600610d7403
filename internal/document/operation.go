package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/vectral/vectral/backend-go/internal/geometry"
	"github.com/vectral/vectral/backend-go/internal/typeid"
)

type OperationType string

const (
	OpCreate    OperationType = "create"
	OpUpdate    OperationType = "update"
	OpDelete    OperationType = "delete"
	OpTransform OperationType = "transform"
)

// Operation is one document mutation as it travels between collaborators.
// Data carries the type-specific payload and is decoded exactly once, at the
// boundary, via DecodeCreate/DecodeUpdate/DecodeTransform.
type Operation struct {
	ID        string          `json:"id"`
	Type      OperationType   `json:"type"`
	ElementID string          `json:"elementId"`
	Data      json.RawMessage `json:"data,omitempty"`
	UserID    string          `json:"userId"`
	Timestamp int64           `json:"timestamp"`
	Version   int64           `json:"version"`
}

// CreatePayload carries the full element being inserted.
type CreatePayload struct {
	Element *Element `json:"element"`
}

// UpdatePayload is a partial update: nil fields are left untouched.
type UpdatePayload struct {
	Name    *string              `json:"name,omitempty"`
	Style   *Style               `json:"style,omitempty"`
	Visible *bool                `json:"visible,omitempty"`
	Locked  *bool                `json:"locked,omitempty"`
	ZIndex  *int                 `json:"zIndex,omitempty"`
	Shape   *ShapeData           `json:"shape,omitempty"`
	Text    *TextData            `json:"text,omitempty"`
	Path    *geometry.VectorPath `json:"path,omitempty"`
}

// TransformPayload replaces the element transform wholesale.
type TransformPayload struct {
	Transform geometry.Transform `json:"transform"`
}

func newOperation(t OperationType, elementID, userID string, version int64) Operation {
	return Operation{
		ID:        typeid.NewOpID(),
		Type:      t,
		ElementID: elementID,
		UserID:    userID,
		Timestamp: time.Now().UnixMilli(),
		Version:   version,
	}
}

func NewCreateOperation(el *Element, userID string, version int64) (Operation, error) {
	op := newOperation(OpCreate, el.ID, userID, version)
	data, err := json.Marshal(CreatePayload{Element: el})
	if err != nil {
		return Operation{}, fmt.Errorf("encode create payload: %w", err)
	}
	op.Data = data
	return op, nil
}

func NewUpdateOperation(elementID string, upd UpdatePayload, userID string, version int64) (Operation, error) {
	op := newOperation(OpUpdate, elementID, userID, version)
	data, err := json.Marshal(upd)
	if err != nil {
		return Operation{}, fmt.Errorf("encode update payload: %w", err)
	}
	op.Data = data
	return op, nil
}

func NewDeleteOperation(elementID, userID string, version int64) Operation {
	return newOperation(OpDelete, elementID, userID, version)
}

func NewTransformOperation(elementID string, tr geometry.Transform, userID string, version int64) (Operation, error) {
	op := newOperation(OpTransform, elementID, userID, version)
	data, err := json.Marshal(TransformPayload{Transform: tr})
	if err != nil {
		return Operation{}, fmt.Errorf("encode transform payload: %w", err)
	}
	op.Data = data
	return op, nil
}

func (op Operation) DecodeCreate() (*Element, error) {
	var p CreatePayload
	if err := json.Unmarshal(op.Data, &p); err != nil {
		return nil, fmt.Errorf("decode create payload: %w", err)
	}
	if p.Element == nil {
		return nil, errors.New("create payload missing element")
	}
	return p.Element, nil
}

func (op Operation) DecodeUpdate() (UpdatePayload, error) {
	var p UpdatePayload
	if err := json.Unmarshal(op.Data, &p); err != nil {
		return UpdatePayload{}, fmt.Errorf("decode update payload: %w", err)
	}
	return p, nil
}

func (op Operation) DecodeTransform() (geometry.Transform, error) {
	var p TransformPayload
	if err := json.Unmarshal(op.Data, &p); err != nil {
		return geometry.Transform{}, fmt.Errorf("decode transform payload: %w", err)
	}
	return p.Transform, nil
}

type ConflictType string

const (
	ConflictConcurrentEdit ConflictType = "concurrent-edit"
	ConflictDeleteEdit     ConflictType = "delete-edit"
	ConflictTransform      ConflictType = "transform-conflict"
)

// Conflict groups operations that touched the same element close enough in
// time to clash. WinnerID names the operation that survived resolution.
type Conflict struct {
	ID       string       `json:"id"`
	Type     ConflictType `json:"type"`
	Ops      []Operation  `json:"operations"`
	Resolved bool         `json:"resolved"`
	WinnerID string       `json:"winnerId,omitempty"`
}

func NewConflict(t ConflictType, ops ...Operation) Conflict {
	return Conflict{
		ID:   typeid.NewConflictID(),
		Type: t,
		Ops:  ops,
	}
}
