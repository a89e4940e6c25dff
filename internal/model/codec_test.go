package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

const sampleDoc = `[{"title":"A","dataType":"Folder","children":[{"title":"B","dataType":"Text","varId":"v1"}]}]`

func loadDoc(t *testing.T, data string) *Document {
	t.Helper()
	doc := NewDocument()
	require.NoError(t, doc.Load([]byte(data)))
	return doc
}

func TestLoadSample(t *testing.T) {
	doc := loadDoc(t, sampleDoc)

	require.Equal(t, 1, doc.Len())
	a := doc.Items()[0]
	assert.Equal(t, "A", a.Title())
	assert.Equal(t, Folder, a.DataType())
	require.Equal(t, 1, a.ChildCount())

	b := a.Child(0)
	assert.Equal(t, "B", b.Title())
	assert.Equal(t, Text, b.DataType())
	assert.Equal(t, "v1", b.VarID())
	assert.Equal(t, "A/B", b.FullPath())
	assert.Same(t, a, b.Parent())
	assert.False(t, b.Modified())
	assert.False(t, b.NewlyAdded())
}

func TestSaveSample(t *testing.T) {
	doc := loadDoc(t, sampleDoc)

	out, err := doc.Save()
	require.NoError(t, err)

	assert.JSONEq(t, `[{"title":"A","varId":null,"dataType":"Folder","children":[
		{"title":"B","varId":"v1","dataType":"Text"}]}]`, string(out))
	assert.NotContains(t, string(out), `"sources"`)
	assert.NotContains(t, string(out), `"metadata"`)
}

func TestSaveIsFixedPoint(t *testing.T) {
	input := `[
		{"title":"Root","varId":"r","dataType":"KeyedList","metadata":{"k":"v","a":"b"},"children":[
			{"title":"Amount","varId":"amt","dataType":"Currency","sources":["s1","s2"]},
			{"title":"Nested","varId":"n","dataType":"List","children":[
				{"title":"When","varId":"w","dataType":"Date"}
			]}
		]},
		{"title":"Second","varId":"s","dataType":"Integer"}
	]`
	doc := loadDoc(t, input)

	out, err := doc.Save()
	require.NoError(t, err)
	assert.JSONEq(t, input, string(out))

	again := loadDoc(t, string(out))
	out2, err := again.Save()
	require.NoError(t, err)
	assert.Equal(t, string(out), string(out2))
}

func TestRepeatedSavesAreIdentical(t *testing.T) {
	doc := loadDoc(t, `[{"title":"R","varId":"r","dataType":"KeyedList",
		"metadata":{"z":"1","m":"2","a":"3","q":"4","b":"5"},
		"children":[{"title":"L","varId":"l","dataType":"Text","sources":["s"],"metadata":{"y":"1","x":"2"}}]}]`)

	first, err := doc.Save()
	require.NoError(t, err)
	for range 20 {
		out, err := doc.Save()
		require.NoError(t, err)
		require.Equal(t, string(first), string(out))
	}
	assert.Less(t, strings.Index(string(first), `"a": "3"`), strings.Index(string(first), `"z": "1"`))
}

func TestSaveIsIndented(t *testing.T) {
	doc := loadDoc(t, `[{"title":"A","varId":"a","dataType":"Text"}]`)
	out, err := doc.Save()
	require.NoError(t, err)
	assert.Equal(t, "[\n  {\n    \"title\": \"A\",\n    \"varId\": \"a\",\n    \"dataType\": \"Text\"\n  }\n]", string(out))
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "not json", input: `{{`},
		{name: "object instead of array", input: `{"title":"A"}`},
		{name: "null document", input: `null`},
		{name: "element not an object", input: `[1]`},
		{name: "missing title", input: `[{"dataType":"Text"}]`},
		{name: "empty title", input: `[{"title":"","dataType":"Text"}]`},
		{name: "title not a string", input: `[{"title":3,"dataType":"Text"}]`},
		{name: "nested missing title", input: `[{"title":"A","dataType":"Folder","children":[{"dataType":"Text"}]}]`},
		{name: "unknown data type", input: `[{"title":"A","dataType":"Blob"}]`},
		{name: "children on a leaf", input: `[{"title":"A","dataType":"Text","children":[{"title":"B"}]}]`},
		{name: "sources on a container", input: `[{"title":"A","dataType":"Folder","sources":["x"]}]`},
		{name: "empty metadata key", input: `[{"title":"A","dataType":"Text","metadata":{"":"v"}}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := NewDocument()
			err := doc.Load([]byte(tt.input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedDocument), "got %v", err)
		})
	}
}

func TestLoadAcceptsRepeatedVarIDs(t *testing.T) {
	doc := loadDoc(t, `[
		{"title":"A","varId":"i_folder_randon_id","dataType":"Folder"},
		{"title":"B","varId":"i_folder_randon_id","dataType":"Folder"},
		{"title":"C","varId":"c","dataType":"Text"}]`)

	assert.Equal(t, []string{"i_folder_randon_id"}, doc.DuplicateVarIDs())
	assert.Same(t, doc.FindByPath("A"), doc.FindByVarID("i_folder_randon_id"))

	err := doc.SetVarID(doc.FindByPath("C"), "i_folder_randon_id")
	assert.True(t, errors.Is(err, ErrInvalidOperation), "got %v", err)
	err = doc.AppendChild(nil, NewItem("D", Text).WithVarID("c"))
	assert.True(t, errors.Is(err, ErrInvalidOperation), "got %v", err)

	require.NoError(t, doc.SetVarID(doc.FindByPath("B"), "b"))
	assert.Empty(t, doc.DuplicateVarIDs())
}

func TestFailedLoadKeepsPreviousTree(t *testing.T) {
	doc := loadDoc(t, sampleDoc)

	err := doc.Load([]byte(`[{"title":"X","dataType":"Folder"},{"dataType":"Text"}]`))
	require.ErrorIs(t, err, ErrMalformedDocument)

	require.Equal(t, 1, doc.Len())
	assert.Equal(t, "A", doc.Items()[0].Title())
	assert.Equal(t, 1, doc.Items()[0].ChildCount())
}

func TestLoadAbsentOptionalFields(t *testing.T) {
	doc := loadDoc(t, `[{"title":"A","dataType":"Folder"},{"title":"B"},{"title":"C","children":[{"title":"D","dataType":"Date"}]}]`)

	items := doc.Items()
	require.Len(t, items, 3)
	assert.Empty(t, items[0].Children())
	assert.Empty(t, items[0].Metadata())
	assert.Equal(t, "", items[0].VarID())
	assert.Equal(t, Text, items[1].DataType(), "missing type without children loads as a leaf")
	assert.Empty(t, items[1].Sources())
	assert.Equal(t, Folder, items[2].DataType(), "missing type with children loads as a folder")
}

func TestLoadReplacesForest(t *testing.T) {
	doc := loadDoc(t, sampleDoc)
	old := doc.Items()[0]

	require.NoError(t, doc.Load([]byte(`[{"title":"Z","dataType":"Text"}]`)))
	require.Equal(t, 1, doc.Len())
	assert.Equal(t, "Z", doc.Items()[0].Title())
	assert.Nil(t, old.Parent())
	assert.False(t, doc.Contains(old))
}

func TestMarshalItem(t *testing.T) {
	item := NewItem("T", Text).WithVarID("t").WithSources("a").WithMetadata(map[string]string{"k": "v"})
	data, err := item.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"T","varId":"t","dataType":"Text","sources":["a"],"metadata":{"k":"v"}}`, string(data))
}
