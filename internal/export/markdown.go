// Package export writes documents in formats meant for reading.
package export

import (
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/pstuifzand/jsontree/internal/model"
)

// ExportToMarkdown exports a document to a markdown file as an unordered
// list.
func ExportToMarkdown(doc *model.Document, filePath string) error {
	return writeFile(filePath, func(w io.Writer) error { return WriteMarkdown(w, doc) })
}

// WriteMarkdown writes every item as a bullet, indented two spaces per
// level, followed by its type and varId. Metadata entries follow as
// ": key = value" lines in key order, then sources as "> source" lines.
func WriteMarkdown(w io.Writer, doc *model.Document) error {
	var sb strings.Builder
	for _, item := range doc.Items() {
		writeItemAsMarkdown(&sb, item, 0)
	}
	_, err := io.WriteString(w, sb.String())
	return errors.WithStack(err)
}

func writeItemAsMarkdown(sb *strings.Builder, item *model.Item, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString("- ")
	sb.WriteString(item.Title())
	sb.WriteString(" _")
	sb.WriteString(item.DataType().String())
	sb.WriteString("_")
	if id := item.VarID(); id != "" {
		sb.WriteString(" `")
		sb.WriteString(id)
		sb.WriteString("`")
	}
	sb.WriteString("\n")

	md := item.Metadata()
	for _, key := range slices.Sorted(maps.Keys(md)) {
		sb.WriteString(strings.Repeat("  ", depth+1))
		sb.WriteString(": ")
		sb.WriteString(key)
		sb.WriteString(" = ")
		sb.WriteString(md[key])
		sb.WriteString("\n")
	}

	for _, source := range item.Sources() {
		sb.WriteString(strings.Repeat("  ", depth+1))
		sb.WriteString("> ")
		sb.WriteString(source)
		sb.WriteString("\n")
	}

	for _, child := range item.Children() {
		writeItemAsMarkdown(sb, child, depth+1)
	}
}

func writeFile(filePath string, write func(io.Writer) error) error {
	f, err := os.Create(filePath)
	if err != nil {
		return errors.Errorf("failed to create export file: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return errors.Errorf("failed to write export file: %w", err)
	}
	return errors.WithStack(f.Close())
}
