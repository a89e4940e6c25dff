package app

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/pstuifzand/jsontree/internal/config"
	"github.com/pstuifzand/jsontree/internal/history"
	"github.com/pstuifzand/jsontree/internal/model"
	"github.com/pstuifzand/jsontree/internal/search"
)

const sessionDoc = `[
	{"title":"Customer","varId":"customer","dataType":"Folder","children":[
		{"title":"Name","varId":"name","dataType":"Text"}
	]},
	{"title":"Orders","varId":"orders","dataType":"List"}
]`

var errDisk = errors.Base("disk unavailable")

// memStore keeps the document in memory. Setting readErr or writeErr makes
// the next calls fail.
type memStore struct {
	data     []byte
	writes   int
	readErr  error
	writeErr error
}

func (m *memStore) Read() ([]byte, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	return bytes.Clone(m.data), nil
}

func (m *memStore) Write(data []byte) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.data = bytes.Clone(data)
	m.writes++
	return nil
}

type fixture struct {
	s      *Session
	store  *memStore
	prompt *StaticPrompter
	out    *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:  &memStore{data: []byte(sessionDoc)},
		prompt: &StaticPrompter{Answer: true},
		out:    &bytes.Buffer{},
	}
	s, err := NewSession(Options{Store: f.store, Prompter: f.prompt, Out: f.out})
	require.NoError(t, err)
	t.Cleanup(s.Close)
	f.s = s
	return f
}

func (f *fixture) exec(t *testing.T, lines ...string) {
	t.Helper()
	for _, line := range lines {
		require.NoError(t, f.s.Execute(context.Background(), line), line)
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "simple command",
			input:    "w",
			expected: []string{"w"},
		},
		{
			name:     "command with arguments",
			input:    "select Customer/Name",
			expected: []string{"select", "Customer/Name"},
		},
		{
			name:     "double quoted string",
			input:    `export markdown "my file.md"`,
			expected: []string{"export", "markdown", "my file.md"},
		},
		{
			name:     "single quoted string",
			input:    "export markdown 'my file.md'",
			expected: []string{"export", "markdown", "my file.md"},
		},
		{
			name:     "mixed quotes",
			input:    `rename "Hello World" and more`,
			expected: []string{"rename", "Hello World", "and", "more"},
		},
		{
			name:     "escaped quotes",
			input:    `meta set key "value with \"quotes\""`,
			expected: []string{"meta", "set", "key", `value with "quotes"`},
		},
		{
			name:     "escaped backslash",
			input:    `source add "C:\\Users\\test"`,
			expected: []string{"source", "add", `C:\Users\test`},
		},
		{
			name:     "single quotes keep backslashes",
			input:    `rename 'a\b'`,
			expected: []string{"rename", `a\b`},
		},
		{
			name:     "multiple spaces",
			input:    "command    with    spaces",
			expected: []string{"command", "with", "spaces"},
		},
		{
			name:     "tabs and spaces",
			input:    "command\twith\t  mixed",
			expected: []string{"command", "with", "mixed"},
		},
		{
			name:     "empty quoted string",
			input:    `varid ""`,
			expected: []string{"varid", ""},
		},
		{
			name:     "quoted string with special characters",
			input:    `meta set url "https://example.com/path?query=value&other=123"`,
			expected: []string{"meta", "set", "url", "https://example.com/path?query=value&other=123"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseCommand(tt.input)
			if len(result) != len(tt.expected) {
				t.Errorf("Expected %d parts, got %d. Input: %q", len(tt.expected), len(result), tt.input)
				return
			}
			for i, part := range result {
				if part != tt.expected[i] {
					t.Errorf("Part %d: expected %q, got %q. Input: %q", i, tt.expected[i], part, tt.input)
				}
			}
		})
	}
}

func TestAddWithoutSelectionAppendsAtTopLevel(t *testing.T) {
	f := newFixture(t)

	sel, err := f.s.AddContainer(Selection{})
	require.NoError(t, err)
	item := sel.Item()

	items := f.s.Document().Items()
	require.Len(t, items, 3)
	assert.Same(t, item, items[2])
	assert.Equal(t, "New Folder", item.Title())
	assert.Equal(t, model.Folder, item.DataType())
	assert.True(t, strings.HasPrefix(item.VarID(), "i_folder_"))
	assert.Equal(t, model.StateNew, item.State())
	assert.Nil(t, f.s.Selected(), "the view follows only when told to")
}

func TestAddUnderSelectedContainerInsertsFirst(t *testing.T) {
	f := newFixture(t)
	f.exec(t, "select Customer")

	sel, err := f.s.AddPrimitive(f.s.Selection())
	require.NoError(t, err)
	item := sel.Item()
	assert.Equal(t, "Customer/New Primitive", item.FullPath())
	assert.Equal(t, 0, item.ChildIndex())
	assert.Equal(t, model.Text, item.DataType())
	assert.True(t, strings.HasPrefix(item.VarID(), "i_text_"))

	other, err := f.s.AddPrimitive(sel)
	require.Error(t, err, "a leaf cannot take children")
	assert.Same(t, item, other.Item(), "a failed edit keeps the selection")
	assert.ErrorIs(t, err, model.ErrInvalidOperation)
}

func TestEditsNeedASelection(t *testing.T) {
	f := newFixture(t)

	none := f.s.Selection()
	assert.True(t, none.Empty())

	_, err := f.s.Delete(none)
	assert.ErrorIs(t, err, ErrNoSelection)
	assert.ErrorIs(t, f.s.Rename(none, "x"), ErrNoSelection)
	_, err = f.s.Duplicate(none)
	assert.ErrorIs(t, err, ErrNoSelection)
	_, err = f.s.Details(none)
	assert.ErrorIs(t, err, ErrNoSelection)
	assert.ErrorIs(t, f.s.Execute(context.Background(), "delete"), ErrNoSelection)
}

func TestDeleteAndDuplicate(t *testing.T) {
	f := newFixture(t)
	f.exec(t, "select Customer", "duplicate")

	dup := f.s.Selected()
	assert.Equal(t, "Copy of Customer", dup.Title())
	assert.Equal(t, "copy_of_customer", dup.VarID())
	assert.Equal(t, "copy_of_name", dup.Child(0).VarID())
	assert.Equal(t, 1, dup.ChildIndex())

	f.exec(t, "delete")
	assert.Len(t, f.s.Document().Items(), 2)
	assert.Equal(t, "Orders", f.s.Selected().Title())
}

func TestEditsActOnTheGivenSelection(t *testing.T) {
	f := newFixture(t)
	f.exec(t, "select Orders")

	name := SelectionOf(f.s.Document().FindByPath("Customer/Name"))
	require.NoError(t, f.s.Rename(name, "Full name"))
	assert.Equal(t, "Customer/Full name", name.Item().FullPath())
	assert.Equal(t, "Orders", f.s.Selected().Title(), "the view selection is untouched")

	detached := SelectionOf(model.NewItem("Loose", model.Text))
	assert.ErrorIs(t, f.s.Rename(detached, "x"), model.ErrInvalidOperation)
	assert.ErrorIs(t, f.s.Select(detached), model.ErrInvalidOperation)
}

func TestDeleteSelectsNeighbour(t *testing.T) {
	doc := `[
		{"title":"P","dataType":"Folder","children":[
			{"title":"A","dataType":"Text"},
			{"title":"B","dataType":"Text"},
			{"title":"C","dataType":"Text"}
		]},
		{"title":"Q","dataType":"Folder"}
	]`
	f := newFixture(t)
	f.store.data = []byte(doc)
	f.exec(t, "revert")
	d := f.s.Document()

	next, err := f.s.Delete(SelectionOf(d.FindByPath("P/B")))
	require.NoError(t, err)
	assert.Equal(t, "P/C", next.Item().FullPath(), "next sibling first")

	next, err = f.s.Delete(next)
	require.NoError(t, err)
	assert.Equal(t, "P/A", next.Item().FullPath(), "then the previous one")

	next, err = f.s.Delete(next)
	require.NoError(t, err)
	assert.Equal(t, "P", next.Item().FullPath(), "then the parent")

	next, err = f.s.Delete(SelectionOf(d.FindByPath("Q")))
	require.NoError(t, err)
	assert.Equal(t, "P", next.Item().FullPath())

	next, err = f.s.Delete(next)
	require.NoError(t, err)
	assert.True(t, next.Empty(), "nothing left to select")
}

func TestSetVarIDAsksForConfirmation(t *testing.T) {
	f := newFixture(t)
	f.exec(t, "select Customer/Name")

	f.prompt.Answer = false
	f.exec(t, "varid full_name")
	assert.Equal(t, "name", f.s.Selected().VarID())
	assert.Equal(t, []string{"Confirm"}, f.prompt.Asked)

	f.prompt.Answer = true
	f.exec(t, "varid full_name")
	assert.Equal(t, "full_name", f.s.Selected().VarID())
	assert.True(t, f.s.Selected().Modified())

	f.prompt.Asked = nil
	f.exec(t, "varid full_name")
	assert.Empty(t, f.prompt.Asked, "no question when nothing changes")

	err := f.s.Execute(context.Background(), "varid customer")
	assert.ErrorIs(t, err, model.ErrInvalidOperation, "ids stay unique")
}

func TestSetTypeFollowsAllowedTypes(t *testing.T) {
	f := newFixture(t)
	f.exec(t, "select Customer", "type KeyedList")
	assert.Equal(t, model.KeyedList, f.s.Selected().DataType())

	err := f.s.Execute(context.Background(), "type Text")
	assert.ErrorIs(t, err, model.ErrInvalidOperation)

	err = f.s.Execute(context.Background(), "type Blob")
	assert.ErrorIs(t, err, model.ErrInvalidOperation)

	f.exec(t, "select Orders", "type Date")
	assert.Equal(t, model.Date, f.s.Selected().DataType())
}

func TestSourcesAndMetadataCommands(t *testing.T) {
	f := newFixture(t)
	f.exec(t,
		"select Customer/Name",
		"source add s1",
		"source add s0 0",
		"source add s2",
		"source remove 2",
		"meta set unit chars",
		"meta set lang en",
		"meta rename lang language",
		"meta set unit words",
	)
	name := f.s.Selected()
	assert.Equal(t, []string{"s0", "s1"}, name.Sources())
	assert.Equal(t, map[string]string{"unit": "words", "language": "en"}, name.Metadata())

	f.exec(t, "meta remove unit")
	assert.Equal(t, map[string]string{"language": "en"}, name.Metadata())

	err := f.s.Execute(context.Background(), "meta rename language language2 extra")
	assert.ErrorIs(t, err, model.ErrInvalidOperation)
	err = f.s.Execute(context.Background(), "meta remove missing")
	assert.ErrorIs(t, err, model.ErrInvalidOperation)

	f.exec(t, "meta set other 1")
	err = f.s.Execute(context.Background(), "meta rename other language")
	assert.ErrorIs(t, err, model.ErrInvalidOperation)
	assert.Equal(t, map[string]string{"language": "en", "other": "1"}, name.Metadata())

	f.exec(t, "select Customer")
	err = f.s.Execute(context.Background(), "source add s1")
	assert.ErrorIs(t, err, model.ErrInvalidOperation, "containers have no sources")
}

func TestMoveCommand(t *testing.T) {
	f := newFixture(t)
	f.exec(t, "select Orders", "move Customer 1")

	moved := f.s.Selected()
	assert.Equal(t, "Customer/Orders", moved.FullPath())
	assert.Equal(t, 1, moved.ChildIndex())

	f.exec(t, "move / 0")
	assert.Equal(t, "Orders", f.s.Selected().FullPath())
	assert.Equal(t, 0, f.s.Selected().ChildIndex())

	f.exec(t, "select Customer")
	err := f.s.Execute(context.Background(), "move Customer/Name")
	assert.ErrorIs(t, err, model.ErrInvalidOperation)
	err = f.s.Execute(context.Background(), "move Customer")
	assert.ErrorIs(t, err, model.ErrInvalidOperation, "no move into itself")
}

func TestSearchUsesConfiguredMode(t *testing.T) {
	f := newFixture(t)

	count, err := f.s.Search("Nam")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.True(t, f.s.Document().FindByPath("Orders").Hidden())

	count, err = f.s.Search("nme")
	require.NoError(t, err)
	assert.Equal(t, 0, count, "substring search is case-sensitive")

	f.s.cfg.Set(config.SettingSearch, "fuzzy")
	count, err = f.s.Search("nme")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	f.s.cfg.Set(config.SettingSearch, "regex")
	_, err = f.s.Search("([")
	assert.ErrorIs(t, err, search.ErrInvalidQuery)

	count, err = f.s.Search("")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestSaveWritesAndClearsFlags(t *testing.T) {
	f := newFixture(t)
	f.exec(t, "select Customer/Name", `rename "Full name"`)
	assert.True(t, f.s.Dirty())

	f.prompt.Answer = false
	f.exec(t, "w")
	assert.Equal(t, 0, f.store.writes)
	assert.True(t, f.s.Dirty())

	f.prompt.Answer = true
	f.exec(t, "w")
	assert.Equal(t, 1, f.store.writes)
	assert.False(t, f.s.Dirty())
	assert.Equal(t, "Saved", f.s.Status())
	assert.False(t, f.s.Selected().Modified())

	saved := model.NewDocument()
	require.NoError(t, saved.Load(f.store.data))
	assert.NotNil(t, saved.FindByPath("Customer/Full name"))
}

func TestFailedWriteKeepsChanges(t *testing.T) {
	f := newFixture(t)
	f.exec(t, "select Customer/Name", `rename "Full name"`)
	f.store.writeErr = errDisk

	saved, err := f.s.Save(context.Background())
	assert.ErrorIs(t, err, errDisk)
	assert.False(t, saved)

	err = f.s.Execute(context.Background(), "wq")
	assert.ErrorIs(t, err, errDisk)
	assert.False(t, f.s.Quitting())

	assert.Equal(t, 0, f.store.writes)
	assert.Equal(t, sessionDoc, string(f.store.data))
	assert.True(t, f.s.Dirty())
	assert.True(t, f.s.Selected().Modified())
	assert.Equal(t, "Full name", f.s.Selected().Title())
	assert.NotNil(t, f.s.Document().FindByPath("Customer/Full name"))

	f.store.writeErr = nil
	f.exec(t, "w")
	assert.False(t, f.s.Dirty())
	assert.False(t, f.s.Selected().Modified())
}

func TestFailedReadOnRevertKeepsTree(t *testing.T) {
	f := newFixture(t)
	f.exec(t, "select Orders", "rename Changed")
	f.store.readErr = errDisk

	reverted, err := f.s.Revert(context.Background())
	assert.ErrorIs(t, err, errDisk)
	assert.False(t, reverted)

	assert.NotNil(t, f.s.Document().FindByPath("Changed"))
	assert.Nil(t, f.s.Document().FindByPath("Orders"))
	assert.True(t, f.s.Dirty())
	assert.Equal(t, "Changed", f.s.Selected().Title())
}

func TestRevert(t *testing.T) {
	f := newFixture(t)
	f.exec(t, "select Orders", "rename Changed")

	f.store.data = []byte(`[{"title":"Broken"`)
	err := f.s.Execute(context.Background(), "revert")
	assert.ErrorIs(t, err, model.ErrMalformedDocument)
	assert.NotNil(t, f.s.Document().FindByPath("Changed"), "previous tree kept")

	f.store.data = []byte(sessionDoc)
	f.prompt.Answer = false
	f.exec(t, "revert")
	assert.NotNil(t, f.s.Document().FindByPath("Changed"))

	f.prompt.Answer = true
	f.exec(t, "revert")
	assert.NotNil(t, f.s.Document().FindByPath("Orders"))
	assert.Nil(t, f.s.Selected())
	assert.False(t, f.s.Dirty())
}

func TestQuit(t *testing.T) {
	f := newFixture(t)

	err := f.s.Run(context.Background(), strings.NewReader("select Orders\nrename X\nq\n"))
	require.NoError(t, err)
	assert.False(t, f.s.Quitting())
	assert.Contains(t, f.s.Status(), "Unsaved changes")

	err = f.s.Run(context.Background(), strings.NewReader("q!\nrename Y\n"))
	require.NoError(t, err)
	assert.True(t, f.s.Quitting())
	assert.Equal(t, "X", f.s.Selected().Title(), "nothing runs after quitting")
}

func TestRunReportsFailingLine(t *testing.T) {
	f := newFixture(t)

	err := f.s.Run(context.Background(), strings.NewReader("# comment\n\nselect Orders\nfrobnicate\n"))
	require.ErrorIs(t, err, ErrUnknownCommand)
	assert.Contains(t, err.Error(), "line 4")
}

func TestScriptedEditingSession(t *testing.T) {
	f := newFixture(t)
	script := `
select Customer
add-primitive
rename "Phone number"
type Integer
source add s1
meta set unit digits
select Orders
move Customer 1
wq
`
	require.NoError(t, f.s.Run(context.Background(), strings.NewReader(script)))
	assert.True(t, f.s.Quitting())

	saved := model.NewDocument()
	require.NoError(t, saved.Load(f.store.data))
	customer := saved.FindByPath("Customer")
	require.NotNil(t, customer)

	var titles []string
	for _, c := range customer.Children() {
		titles = append(titles, c.Title())
	}
	assert.Equal(t, []string{"Phone number", "Orders", "Name"}, titles)

	phone := customer.Child(0)
	assert.Equal(t, model.Integer, phone.DataType())
	assert.Equal(t, []string{"s1"}, phone.Sources())
	assert.Equal(t, map[string]string{"unit": "digits"}, phone.Metadata())
}

func TestOutputCommands(t *testing.T) {
	f := newFixture(t)

	f.exec(t, "show")
	assert.Equal(t, "▾ Customer Folder $customer\n  • Name Text $name\n▾ Orders List $orders\n", f.out.String())

	f.out.Reset()
	f.exec(t, "select $name", "details")
	assert.Contains(t, f.out.String(), "Customer/Name")

	f.out.Reset()
	f.exec(t, "debug")
	assert.Contains(t, f.out.String(), `"Customer/Name"`)

	f.out.Reset()
	f.exec(t, "set search fuzzy", "set search")
	assert.Equal(t, "search=fuzzy\n", f.out.String())

	f.out.Reset()
	f.exec(t, "help")
	assert.Contains(t, f.out.String(), "rename <title>")
}

func TestNavigationCommands(t *testing.T) {
	f := newFixture(t)
	selected := func() string {
		if item := f.s.Selected(); item != nil {
			return item.FullPath()
		}
		return ""
	}

	f.exec(t, "next")
	assert.Equal(t, "Customer", selected())
	f.exec(t, "next", "next", "next")
	assert.Equal(t, "Orders", selected(), "stays on the last row")
	f.exec(t, "prev")
	assert.Equal(t, "Customer/Name", selected())

	f.exec(t, "collapse Customer")
	assert.Equal(t, "Customer", selected(), "selection leaves the collapsed subtree")
	assert.Len(t, f.s.Tree().Rows(), 2)
	f.exec(t, "next")
	assert.Equal(t, "Orders", selected())

	f.out.Reset()
	f.exec(t, "show")
	assert.Equal(t, "▸ Customer Folder $customer\n▾ Orders List $orders\n", f.out.String())

	f.exec(t, "toggle Customer")
	assert.Equal(t, "Expanded Customer", f.s.Status())
	assert.Len(t, f.s.Tree().Rows(), 3)
	f.exec(t, "toggle $customer")
	assert.Equal(t, "Collapsed Customer", f.s.Status())
	f.exec(t, "expand Customer")
	assert.True(t, f.s.Tree().Expanded(f.s.Document().FindByPath("Customer")))

	f.exec(t, "collapse")
	assert.False(t, f.s.Tree().Expanded(f.s.Document().FindByPath("Orders")))
	assert.False(t, f.s.Dirty(), "folding is not an edit")

	f.exec(t, "select Customer/Name")
	err := f.s.Execute(context.Background(), "collapse")
	assert.ErrorIs(t, err, model.ErrInvalidOperation)

	f.exec(t, "select")
	err = f.s.Execute(context.Background(), "toggle")
	assert.ErrorIs(t, err, ErrNoSelection)
}

func TestFindRanksFuzzyMatches(t *testing.T) {
	f := newFixture(t)

	f.exec(t, "find e")
	assert.Equal(t, "Customer\nCustomer/Name\nOrders\n", f.out.String(), "document order")
	assert.Equal(t, "Customer", f.s.Selected().FullPath())

	f.out.Reset()
	f.exec(t, "set search fuzzy", "find e")
	assert.Equal(t, "Customer/Name\nOrders\nCustomer\n", f.out.String(), "closest first")
	assert.Equal(t, "Customer/Name", f.s.Selected().FullPath())
	assert.Equal(t, "3 matches, selected Customer/Name", f.s.Status())

	f.out.Reset()
	f.exec(t, "find zzz")
	assert.Empty(t, f.out.String())
	assert.Equal(t, "No matches", f.s.Status())
	assert.False(t, f.s.Document().FindByPath("Orders").Hidden(), "find does not filter")
}

func TestHistoryIsRecorded(t *testing.T) {
	hist, err := history.NewManagerIn(t.TempDir(), 10)
	require.NoError(t, err)

	s, err := NewSession(Options{
		Store:    &memStore{data: []byte(sessionDoc)},
		Prompter: &StaticPrompter{Answer: true},
		History:  hist,
	})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Execute(context.Background(), "select Orders"))
	require.NoError(t, s.Execute(context.Background(), `rename "New name"`))

	entries, err := s.History()
	require.NoError(t, err)
	assert.Equal(t, []string{"select Orders", `rename "New name"`}, entries)
}
