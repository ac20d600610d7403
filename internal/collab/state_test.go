package collab

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vectral/vectral/backend-go/internal/document"
)

func stateElement(id string) *document.Element {
	el := document.NewElement(id, document.ElementShape)
	el.Shape = &document.ShapeData{Kind: document.ShapeRectangle, Width: 120, Height: 80}
	return el
}

func TestDocumentStateAppliesAndLogs(t *testing.T) {
	st := NewDocumentState(nil)

	create, err := document.NewCreateOperation(stateElement("elem_rect"), "user_a", 1)
	require.NoError(t, err)
	name := "Hero"
	update, err := document.NewUpdateOperation("elem_rect", document.UpdatePayload{Name: &name}, "user_b", 1)
	require.NoError(t, err)

	seq, err := st.Apply(create)
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq)

	seq, err = st.Apply(update)
	require.NoError(t, err)
	assert.Equal(t, int64(2), seq)
	assert.Equal(t, int64(2), st.Seq())

	log := st.OpsSince(0)
	require.Len(t, log, 2)
	assert.Equal(t, create.ID, log[0].ID)
	assert.Equal(t, int64(1), log[0].Version)
	assert.Equal(t, update.ID, log[1].ID)
	assert.Equal(t, int64(2), log[1].Version)

	tail := st.OpsSince(1)
	require.Len(t, tail, 1)
	assert.Equal(t, update.ID, tail[0].ID)

	doc := st.Document()
	el, ok := doc.Get("elem_rect")
	require.True(t, ok)
	assert.Equal(t, "Hero", el.Name)
}

func TestDocumentStateRejectsMissingElement(t *testing.T) {
	st := NewDocumentState(nil)

	name := "Ghost"
	update, err := document.NewUpdateOperation("elem_ghost", document.UpdatePayload{Name: &name}, "user_a", 1)
	require.NoError(t, err)

	_, err = st.Apply(update)
	require.Error(t, err)

	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, update.ID, opErr.OpID)
	assert.True(t, errors.Is(err, document.ErrElementNotFound))

	assert.Equal(t, int64(0), st.Seq())
	assert.Empty(t, st.OpsSince(0))
}

func TestDocumentStateSnapshotRoundTrip(t *testing.T) {
	st := NewDocumentState(nil)

	create, err := document.NewCreateOperation(stateElement("elem_rect"), "user_a", 1)
	require.NoError(t, err)
	_, err = st.Apply(create)
	require.NoError(t, err)

	data, err := st.Snapshot()
	require.NoError(t, err)

	restored := document.NewDocument()
	require.NoError(t, json.Unmarshal(data, restored))
	assert.True(t, restored.Has("elem_rect"))
}

func TestDocumentStateDocumentReturnsCopy(t *testing.T) {
	st := NewDocumentState(nil)

	create, err := document.NewCreateOperation(stateElement("elem_rect"), "user_a", 1)
	require.NoError(t, err)
	_, err = st.Apply(create)
	require.NoError(t, err)

	copy1 := st.Document()
	copy1.RemoveElement("elem_rect")

	assert.True(t, st.Document().Has("elem_rect"), "mutating a returned copy must not touch the authoritative document")
}
