package ui

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/gdamore/tcell/v2"

	"github.com/pstuifzand/jsontree/internal/theme"
)

const (
	arrowExpanded  = "▾ "
	arrowCollapsed = "▸ "
	leafMarker     = "• "
	indentUnit     = "  "
)

// Renderer draws tree views and details with a theme. Styling is dropped
// automatically when the output is not a terminal.
type Renderer struct {
	Theme *theme.Theme
	// Width limits each line, in columns. Zero means unlimited.
	Width int

	lg *lipgloss.Renderer
}

// NewRenderer creates a renderer writing styled text meant for out.
func NewRenderer(th *theme.Theme, out io.Writer) *Renderer {
	if th == nil {
		th = theme.Default()
	}
	return &Renderer{Theme: th, lg: lipgloss.NewRenderer(out)}
}

// style converts a tcell style from the theme into a lipgloss style.
func (r *Renderer) style(s tcell.Style) lipgloss.Style {
	fg, bg, attr := s.Decompose()
	st := r.lg.NewStyle()
	if hex := theme.ColorToHex(fg); hex != "" {
		st = st.Foreground(lipgloss.Color(hex))
	}
	if hex := theme.ColorToHex(bg); hex != "" {
		st = st.Background(lipgloss.Color(hex))
	}
	if attr&tcell.AttrBold != 0 {
		st = st.Bold(true)
	}
	if attr&tcell.AttrUnderline != 0 {
		st = st.Underline(true)
	}
	return st
}

func (r *Renderer) color(c tcell.Color) lipgloss.Style {
	return r.style(theme.ColorToStyle(c))
}

// RenderTree renders every displayed row of tv, one per line. The selected
// row is drawn reversed.
func (r *Renderer) RenderTree(tv *TreeView) string {
	var sb strings.Builder
	selected := tv.Selected()
	for _, row := range tv.Rows() {
		sb.WriteString(r.renderRow(tv, row, row.Item == selected))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (r *Renderer) renderRow(tv *TreeView, row Row, selected bool) string {
	item := row.Item

	marker := leafMarker
	if item.IsContainer() {
		marker = arrowCollapsed
		if tv.Expanded(item) {
			marker = arrowExpanded
		}
	}
	prefix := strings.Repeat(indentUnit, row.Depth) + marker

	suffix := " " + item.DataType().String()
	if id := item.VarID(); id != "" {
		suffix += " $" + id
	}

	title := item.Title()
	if r.Width > 0 {
		room := r.Width - StringWidth(prefix) - StringWidth(suffix)
		if room < 1 {
			room = 1
		}
		title = TruncateToWidth(title, room)
	}

	titleStyle := r.style(r.Theme.NodeStyle(item.State()))
	if selected {
		titleStyle = titleStyle.Reverse(true)
	}

	var sb strings.Builder
	sb.WriteString(r.color(r.Theme.Colors.TreeGuide).Render(prefix))
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString(r.style(r.Theme.TypeStyle(item.DataType())).Render(" " + item.DataType().String()))
	if id := item.VarID(); id != "" {
		sb.WriteString(r.color(r.Theme.Colors.VarID).Render(" $" + id))
	}
	return sb.String()
}
