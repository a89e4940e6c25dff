package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataEditorRows(t *testing.T) {
	ed := NewMetadataEditor(map[string]string{"b": "2", "a": "1"})
	assert.Equal(t, []MetadataRow{{Key: "a", Value: "1"}, {Key: "b", Value: "2"}}, ed.Rows())
	assert.Equal(t, 2, ed.Len())
}

func TestMetadataEditorEmptyKeySentinel(t *testing.T) {
	ed := NewMetadataEditor(map[string]string{"a": "1"})

	require.NoError(t, ed.InsertRow(1))
	assert.Equal(t, MetadataRow{Key: "", Value: ""}, ed.Rows()[1])
	assert.Equal(t, map[string]string{"a": "1"}, ed.Metadata(), "unfilled rows are dropped")

	assert.ErrorIs(t, ed.InsertRow(0), ErrInvalidOperation, "only one unfilled row at a time")

	require.NoError(t, ed.SetValue(1, "pending"))
	require.NoError(t, ed.SetKey(1, "c"))
	assert.Equal(t, map[string]string{"a": "1", "c": "pending"}, ed.Metadata())

	require.NoError(t, ed.SetKey(1, ""))
	assert.Equal(t, map[string]string{"a": "1"}, ed.Metadata())
	_, hasEmpty := ed.Metadata()[""]
	assert.False(t, hasEmpty)
}

func TestMetadataEditorDuplicateKey(t *testing.T) {
	ed := NewMetadataEditor(map[string]string{"a": "1", "b": "2"})

	err := ed.SetKey(1, "a")
	assert.ErrorIs(t, err, ErrInvalidOperation)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, ed.Metadata())

	require.NoError(t, ed.SetKey(1, "A"), "keys are case-sensitive")
	require.NoError(t, ed.SetKey(0, "a"), "keeping a row's own key is fine")
}

func TestMetadataEditorRemoveRow(t *testing.T) {
	ed := NewMetadataEditor(map[string]string{"a": "1", "b": "2"})
	require.NoError(t, ed.RemoveRow(0))
	assert.Equal(t, map[string]string{"b": "2"}, ed.Metadata())

	assert.ErrorIs(t, ed.RemoveRow(1), ErrInvalidOperation)
	assert.ErrorIs(t, ed.SetValue(3, "x"), ErrInvalidOperation)
	assert.ErrorIs(t, ed.SetKey(-1, "x"), ErrInvalidOperation)
	assert.ErrorIs(t, ed.InsertRow(5), ErrInvalidOperation)
}

func TestMetadataEditorRoundTripThroughDocument(t *testing.T) {
	doc := loadDoc(t, `[{"title":"A","dataType":"Text","metadata":{"k":"v"}}]`)
	a := doc.Items()[0]

	ed := NewMetadataEditor(a.Metadata())
	require.NoError(t, ed.InsertRow(0))
	require.NoError(t, ed.SetKey(0, "new"))
	require.NoError(t, ed.SetValue(0, "x"))
	require.NoError(t, doc.SetMetadata(a, ed.Metadata()))

	assert.Equal(t, map[string]string{"k": "v", "new": "x"}, a.Metadata())
	assert.True(t, a.Modified())
}
