// Package theme defines the colors used to draw the document tree.
package theme

import (
	"github.com/gdamore/tcell/v2"

	"github.com/pstuifzand/jsontree/internal/model"
)

// Colors holds all the color definitions for the theme
type Colors struct {
	// Tree node colors, one per display state
	NodeNormal   tcell.Color
	NodeModified tcell.Color
	NodeNew      tcell.Color

	// Tree decorations
	TreeGuide     tcell.Color
	ContainerType tcell.Color
	LeafType      tcell.Color
	VarID         tcell.Color

	// Details view
	DetailLabel tcell.Color
	DetailValue tcell.Color
	Path        tcell.Color

	// Status line colors
	StatusMessage tcell.Color
	StatusError   tcell.Color
}

// Theme represents a complete color theme
type Theme struct {
	Name   string
	Colors Colors
}

// NodeStyle returns the style a node is drawn with in the given state.
func (t *Theme) NodeStyle(state model.DisplayState) tcell.Style {
	switch state {
	case model.StateModified:
		return ColorToStyle(t.Colors.NodeModified)
	case model.StateNew:
		return ColorToStyle(t.Colors.NodeNew)
	default:
		return ColorToStyle(t.Colors.NodeNormal)
	}
}

// TypeStyle returns the style of the data type label.
func (t *Theme) TypeStyle(dt model.DataType) tcell.Style {
	if dt.IsContainer() {
		return ColorToStyle(t.Colors.ContainerType)
	}
	return ColorToStyle(t.Colors.LeafType)
}

// Default uses terminal defaults except for the state colors: modified
// nodes are blue and new nodes green.
func Default() *Theme {
	return &Theme{
		Name: "default",
		Colors: Colors{
			NodeNormal:    tcell.ColorDefault,
			NodeModified:  tcell.ColorBlue,
			NodeNew:       tcell.ColorGreen,
			TreeGuide:     tcell.ColorDefault,
			ContainerType: tcell.ColorDefault,
			LeafType:      tcell.ColorDefault,
			VarID:         tcell.ColorDefault,
			DetailLabel:   tcell.ColorDefault,
			DetailValue:   tcell.ColorDefault,
			Path:          tcell.ColorDefault,
			StatusMessage: tcell.ColorDefault,
			StatusError:   tcell.ColorRed,
		},
	}
}

// TokyoNight returns the Tokyo Night theme
func TokyoNight() *Theme {
	return &Theme{
		Name: "tokyo-night",
		Colors: Colors{
			NodeNormal:    HexToColor("#c0caf5"), // Light gray-blue
			NodeModified:  HexToColor("#7aa2f7"), // Blue
			NodeNew:       HexToColor("#9ece6a"), // Green
			TreeGuide:     HexToColor("#565f89"), // Comment gray
			ContainerType: HexToColor("#bb9af7"), // Magenta
			LeafType:      HexToColor("#7dcfff"), // Cyan
			VarID:         HexToColor("#e0af68"), // Yellow
			DetailLabel:   HexToColor("#bb9af7"),
			DetailValue:   HexToColor("#c0caf5"),
			Path:          HexToColor("#565f89"),
			StatusMessage: HexToColor("#9ece6a"),
			StatusError:   HexToColor("#f7768e"), // Red
		},
	}
}
