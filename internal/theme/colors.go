package theme

import (
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// HexToColor converts #RRGGBB or #RGB to a color. Anything else yields the
// terminal default.
func HexToColor(hex string) tcell.Color {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return tcell.ColorDefault
	}
	c, err := colorful.Hex("#" + hex)
	if err != nil {
		return tcell.ColorDefault
	}
	r, g, b := c.RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// ParseColor reads a theme color: #RRGGBB, #RGB, rgb(r,g,b) or a color
// name such as "blue" or "darkorange".
func ParseColor(s string) tcell.Color {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "#"):
		return HexToColor(s)
	case strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")"):
		parts := strings.Split(s[len("rgb("):len(s)-1], ",")
		if len(parts) != 3 {
			return tcell.ColorDefault
		}
		var rgb [3]int32
		for i, p := range parts {
			v, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil || v < 0 || v > 255 {
				return tcell.ColorDefault
			}
			rgb[i] = int32(v)
		}
		return tcell.NewRGBColor(rgb[0], rgb[1], rgb[2])
	}
	return tcell.GetColor(strings.ToLower(s))
}

// ColorToHex formats a color as #rrggbb. Colors without an RGB value,
// such as the terminal default, yield "".
func ColorToHex(c tcell.Color) string {
	if c == tcell.ColorDefault || !c.Valid() {
		return ""
	}
	r, g, b := c.RGB()
	if r < 0 {
		return ""
	}
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}.Hex()
}

// ColorToStyle creates a style with a specific foreground color
func ColorToStyle(fg tcell.Color) tcell.Style {
	return tcell.StyleDefault.Foreground(fg)
}
