package ui

import (
	"fmt"
	"strings"

	"github.com/pstuifzand/jsontree/internal/model"
)

// RenderDetails renders the details panel of an item as labeled lines.
func (r *Renderer) RenderDetails(d model.Details) string {
	label := r.color(r.Theme.Colors.DetailLabel)
	value := r.color(r.Theme.Colors.DetailValue)

	var sb strings.Builder
	line := func(name, v string) {
		sb.WriteString(label.Render(fmt.Sprintf("%-9s", name+":")))
		sb.WriteString(" ")
		sb.WriteString(value.Render(v))
		sb.WriteString("\n")
	}

	line("Title", d.Title)
	line("VarId", d.VarID)
	sb.WriteString(label.Render(fmt.Sprintf("%-9s", "Path:")))
	sb.WriteString(" ")
	sb.WriteString(r.color(r.Theme.Colors.Path).Render(d.Path))
	sb.WriteString("\n")
	line("Type", d.DataType.String())
	line("State", d.State.String())

	if d.DataType.IsContainer() {
		line("Children", fmt.Sprint(d.ChildCount))
	} else {
		sb.WriteString(label.Render("Sources:"))
		sb.WriteString("\n")
		for idx, s := range d.Sources {
			sb.WriteString(value.Render(fmt.Sprintf("  %d. %s", idx+1, s)))
			sb.WriteString("\n")
		}
	}

	sb.WriteString(label.Render("Metadata:"))
	sb.WriteString("\n")
	for _, row := range d.Metadata {
		sb.WriteString(value.Render(fmt.Sprintf("  %s = %s", row.Key, row.Value)))
		sb.WriteString("\n")
	}

	allowed := make([]string, len(d.AllowedTypes))
	for idx, t := range d.AllowedTypes {
		allowed[idx] = t.String()
	}
	line("Types", strings.Join(allowed, ", "))
	return sb.String()
}
