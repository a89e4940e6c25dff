package diff

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// BuildDiffLines converts a DiffResult into formatted display lines.
// Verbose output lists the sources of new items.
func BuildDiffLines(result *DiffResult, verbose bool) []DiffLine {
	var lines []DiffLine

	// New items section
	if len(result.NewItems) > 0 {
		lines = append(lines, DiffLine{Type: DiffTypeNewSection, Content: "New Items:"})
		lines = append(lines, DiffLine{Type: DiffTypeBlank})

		for _, id := range sortedIDs(result.NewItems) {
			lines = append(lines, formatNewItem(result.NewItems[id], verbose)...)
		}
	}

	// Deleted items section
	if len(result.DeletedItems) > 0 {
		lines = append(lines, DiffLine{Type: DiffTypeDeletedSection, Content: "Deleted Items:"})
		lines = append(lines, DiffLine{Type: DiffTypeBlank})

		for _, id := range sortedIDs(result.DeletedItems) {
			lines = append(lines, formatDeletedItem(result.DeletedItems[id])...)
		}
	}

	// Modified items section
	if len(result.ModifiedItems) > 0 {
		lines = append(lines, DiffLine{Type: DiffTypeModifiedSection, Content: "Modified Items:"})
		lines = append(lines, DiffLine{Type: DiffTypeBlank})

		for _, id := range sortedIDs(result.ModifiedItems) {
			lines = append(lines, formatModifiedItem(result.ModifiedItems[id])...)
		}
	}

	if !result.Empty() {
		lines = append(lines, DiffLine{Type: DiffTypeSummary, Content: "=== Summary ==="})
		lines = append(lines, DiffLine{
			Type: DiffTypeSummary,
			Content: fmt.Sprintf("  %d modified, %d added, %d deleted",
				len(result.ModifiedItems), len(result.NewItems), len(result.DeletedItems)),
		})
	}

	return lines
}

// Render joins lines as plain text, two spaces per indent level.
func Render(lines []DiffLine) string {
	var sb strings.Builder
	for _, line := range lines {
		if line.Type != DiffTypeBlank {
			sb.WriteString(strings.Repeat("  ", line.Indent))
			sb.WriteString(line.Content)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatNewItem(item *ItemData, verbose bool) []DiffLine {
	var lines []DiffLine

	lines = append(lines, DiffLine{
		Type:    DiffTypeNewItem,
		Content: fmt.Sprintf("%s: %s (%s)", item.ID, truncateText(item.Title, 60), item.DataType),
		Indent:  1,
	})

	if item.ParentID != "" {
		lines = append(lines, detail("PARENT: %s at position %d", item.ParentID, item.Position))
	} else {
		lines = append(lines, detail("POSITION: root position %d", item.Position))
	}

	if verbose {
		for _, src := range item.Sources {
			lines = append(lines, detail("SOURCE: %s", src))
		}
		for _, key := range slices.Sorted(maps.Keys(item.Metadata)) {
			lines = append(lines, detail("META: %s = %s", key, item.Metadata[key]))
		}
	}

	lines = append(lines, DiffLine{Type: DiffTypeBlank})
	return lines
}

func formatDeletedItem(item *ItemData) []DiffLine {
	return []DiffLine{
		{
			Type:    DiffTypeDeletedItem,
			Content: fmt.Sprintf("%s: %s (%s)", item.ID, truncateText(item.Title, 60), item.DataType),
			Indent:  1,
		},
		{Type: DiffTypeBlank},
	}
}

func formatModifiedItem(change *ItemChange) []DiffLine {
	var lines []DiffLine

	lines = append(lines, DiffLine{
		Type:    DiffTypeModifiedItem,
		Content: fmt.Sprintf("%s: %s", change.Item.ID, truncateText(change.Item.Title, 60)),
		Indent:  1,
	})

	if change.TitleChanged {
		lines = append(lines, detail("TITLE: %s → %s",
			truncateText(change.OldItem.Title, 40), truncateText(change.Item.Title, 40)))
	}
	if change.TypeChanged {
		lines = append(lines, detail("TYPE: %s → %s", change.OldItem.DataType, change.Item.DataType))
	}

	if change.StructureChanged {
		oldParent := orRoot(change.OldItem.ParentID)
		newParent := orRoot(change.Item.ParentID)
		if oldParent != newParent {
			lines = append(lines, detail("MOVED: from parent %s to parent %s", oldParent, newParent))
		}
		if change.OldItem.Position != change.Item.Position {
			lines = append(lines, detail("POSITION: %d → %d", change.OldItem.Position, change.Item.Position))
		}
	}

	if change.SourcesChanged {
		lines = append(lines, detail("SOURCES: [%s] → [%s]",
			strings.Join(change.OldItem.Sources, ", "), strings.Join(change.Item.Sources, ", ")))
	}

	for _, key := range slices.Sorted(maps.Keys(change.MetaAdded)) {
		lines = append(lines, detail("META added: %s = %s", key, change.MetaAdded[key]))
	}
	for _, key := range slices.Sorted(maps.Keys(change.MetaChanged)) {
		values := change.MetaChanged[key]
		lines = append(lines, detail("META changed: %s: %s → %s", key, values[0], values[1]))
	}
	for _, key := range slices.Sorted(maps.Keys(change.MetaRemoved)) {
		lines = append(lines, detail("META removed: %s (was: %s)", key, change.MetaRemoved[key]))
	}

	lines = append(lines, DiffLine{Type: DiffTypeBlank})
	return lines
}

func detail(format string, args ...any) DiffLine {
	return DiffLine{Type: DiffTypeItemDetail, Content: fmt.Sprintf(format, args...), Indent: 2}
}

func orRoot(id string) string {
	if id == "" {
		return "root"
	}
	return id
}

// truncateText limits text length for display
func truncateText(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) > maxLen {
		return string(runes[:maxLen]) + "..."
	}
	return text
}

func sortedIDs[T any](items map[string]T) []string {
	return slices.Sorted(maps.Keys(items))
}
