package theme

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pstuifzand/jsontree/internal/model"
)

func TestHexToColor(t *testing.T) {
	tests := []struct {
		input string
		want  tcell.Color
	}{
		{"#ff0000", tcell.NewRGBColor(255, 0, 0)},
		{"#0f0", tcell.NewRGBColor(0, 255, 0)},
		{"7aa2f7", tcell.NewRGBColor(0x7a, 0xa2, 0xf7)},
		{"#12345", tcell.ColorDefault},
		{"#zzzzzz", tcell.ColorDefault},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HexToColor(tt.input), tt.input)
	}
}

func TestParseColor(t *testing.T) {
	assert.Equal(t, tcell.NewRGBColor(1, 2, 3), ParseColor(" rgb(1, 2, 3) "))
	assert.Equal(t, tcell.ColorDefault, ParseColor("rgb(1,2)"))
	assert.Equal(t, tcell.ColorDefault, ParseColor("rgb(300,0,0)"))
	assert.Equal(t, HexToColor("#7aa2f7"), ParseColor("#7aa2f7"))
	assert.Equal(t, tcell.ColorBlue, ParseColor("Blue"))
	assert.Equal(t, tcell.ColorDefault, ParseColor("no-such-color"))
}

func TestColorToHex(t *testing.T) {
	assert.Equal(t, "#7aa2f7", ColorToHex(HexToColor("#7aa2f7")))
	assert.Equal(t, "", ColorToHex(tcell.ColorDefault))
}

func TestNodeStyle(t *testing.T) {
	th := Default()

	fg, _, _ := th.NodeStyle(model.StateModified).Decompose()
	assert.Equal(t, tcell.ColorBlue, fg)
	fg, _, _ = th.NodeStyle(model.StateNew).Decompose()
	assert.Equal(t, tcell.ColorGreen, fg)
	fg, _, _ = th.NodeStyle(model.StateDefault).Decompose()
	assert.Equal(t, tcell.ColorDefault, fg)

	tn := TokyoNight()
	fg, _, _ = tn.TypeStyle(model.Folder).Decompose()
	assert.Equal(t, tn.Colors.ContainerType, fg)
	fg, _, _ = tn.TypeStyle(model.Date).Decompose()
	assert.Equal(t, tn.Colors.LeafType, fg)
}

func TestLoadThemeFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mine.toml")
	require.NoError(t, os.WriteFile(path, []byte("name = \"mine\"\n\n[colors]\nnode_modified = \"#010203\"\n"), 0o644))

	found, err := findThemeFile("mine", []string{filepath.Join(dir, "nope"), dir})
	require.NoError(t, err)
	assert.Equal(t, path, found)

	th, err := LoadThemeFromFile(found)
	require.NoError(t, err)
	assert.Equal(t, "mine", th.Name)
	assert.Equal(t, tcell.NewRGBColor(1, 2, 3), th.Colors.NodeModified)
	assert.Equal(t, TokyoNight().Colors.NodeNew, th.Colors.NodeNew, "unset colors fall back")

	_, err = findThemeFile("absent", []string{dir})
	assert.Error(t, err)
}

func TestLoadThemeOrDefault(t *testing.T) {
	assert.Equal(t, "default", LoadThemeOrDefault("default").Name)
	assert.Equal(t, "tokyo-night", LoadThemeOrDefault("").Name)
	assert.Equal(t, "tokyo-night", LoadThemeOrDefault("no-such-theme-here").Name)
}
