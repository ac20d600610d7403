package document

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vectral/vectral/backend-go/internal/geometry"
	"github.com/vectral/vectral/backend-go/internal/typeid"
)

func TestOperationPayloadRoundTrip(t *testing.T) {
	el := rectElement("elem_a", 1, 2, 3, 4)
	create, err := NewCreateOperation(el, "user_1", 7)
	require.NoError(t, err)
	require.NoError(t, typeid.Validate(create.ID, typeid.PrefixOp))
	assert.Equal(t, OpCreate, create.Type)
	assert.Equal(t, "elem_a", create.ElementID)
	assert.Equal(t, int64(7), create.Version)

	decoded, err := create.DecodeCreate()
	require.NoError(t, err)
	assert.Equal(t, el.ID, decoded.ID)
	assert.Equal(t, el.Shape.Width, decoded.Shape.Width)

	name := "Hero"
	update, err := NewUpdateOperation("elem_a", UpdatePayload{Name: &name}, "user_1", 8)
	require.NoError(t, err)
	upd, err := update.DecodeUpdate()
	require.NoError(t, err)
	require.NotNil(t, upd.Name)
	assert.Equal(t, "Hero", *upd.Name)
	assert.Nil(t, upd.Style)

	tr := geometry.IdentityTransform()
	tr.Rotation = 1.5
	transform, err := NewTransformOperation("elem_a", tr, "user_1", 9)
	require.NoError(t, err)
	got, err := transform.DecodeTransform()
	require.NoError(t, err)
	assert.Equal(t, tr, got)
}

func TestOperationWireShape(t *testing.T) {
	del := NewDeleteOperation("elem_a", "user_1", 3)
	data, err := json.Marshal(del)
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(data, &wire))
	assert.Equal(t, "delete", wire["type"])
	assert.Equal(t, "elem_a", wire["elementId"])
	assert.Equal(t, "user_1", wire["userId"])
	assert.NotContains(t, wire, "data")
}

func TestOperationDecodeErrors(t *testing.T) {
	op := Operation{Type: OpCreate, Data: json.RawMessage(`{}`)}
	_, err := op.DecodeCreate()
	require.Error(t, err)

	op = Operation{Type: OpUpdate, Data: json.RawMessage(`not json`)}
	_, err = op.DecodeUpdate()
	require.Error(t, err)

	op = Operation{Type: OpTransform, Data: json.RawMessage(`[1,2]`)}
	_, err = op.DecodeTransform()
	require.Error(t, err)
}

func TestNewConflict(t *testing.T) {
	a := NewDeleteOperation("elem_a", "user_1", 1)
	b := NewDeleteOperation("elem_a", "user_2", 1)

	conflict := NewConflict(ConflictDeleteEdit, a, b)

	require.NoError(t, typeid.Validate(conflict.ID, typeid.PrefixConflict))
	assert.Equal(t, ConflictDeleteEdit, conflict.Type)
	assert.Len(t, conflict.Ops, 2)
	assert.False(t, conflict.Resolved)
}
