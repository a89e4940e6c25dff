// Package importer turns plain outlines into document items.
package importer

import (
	"path/filepath"
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/pstuifzand/jsontree/internal/model"
)

// Format names an outline format that can be imported.
type Format string

const (
	FormatMarkdown     Format = "markdown"
	FormatIndentedText Format = "indented"
	FormatAuto         Format = "auto" // detect from the file extension
)

// Parser reads outline entries from text.
type Parser interface {
	Parse(content string) ([]Entry, error)
	Name() string
}

// Entry is one outline line. An empty DataType is decided by Build: Folder
// when the entry has children, Text otherwise.
type Entry struct {
	Depth    int
	Title    string
	DataType model.DataType
	VarID    string
	Sources  []string
	Metadata map[string]string
}

// ImportFile parses content and builds detached items from it.
func ImportFile(content string, format Format) ([]*model.Item, error) {
	var parser Parser

	switch format {
	case FormatMarkdown:
		parser = &MarkdownParser{}
	case FormatIndentedText:
		parser = &IndentedTextParser{}
	default:
		return nil, errors.Errorf("unsupported import format: %s", format)
	}

	entries, err := parser.Parse(content)
	if err != nil {
		return nil, errors.Errorf("parse error (%s): %w", parser.Name(), err)
	}
	return Build(entries)
}

// DetectFormat picks a format from the file extension. Anything that is not
// Markdown is read as indented text.
func DetectFormat(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".md", ".markdown":
		return FormatMarkdown
	default:
		return FormatIndentedText
	}
}

// ParseFormat resolves a format name, detecting auto from filename.
func ParseFormat(name, filename string) (Format, error) {
	switch Format(strings.ToLower(name)) {
	case "", FormatAuto:
		return DetectFormat(filename), nil
	case FormatMarkdown, "md":
		return FormatMarkdown, nil
	case FormatIndentedText, "txt", "text":
		return FormatIndentedText, nil
	}
	return "", errors.Errorf("unsupported import format: %s", name)
}

type node struct {
	entry    Entry
	children []*node
}

// Build assembles entries into item trees. An entry nested deeper than one
// level below the previous entry becomes a child of that entry.
func Build(entries []Entry) ([]*model.Item, error) {
	var roots []*node
	var stack []*node

	for _, e := range entries {
		if e.Title == "" {
			continue
		}
		depth := min(max(e.Depth, 0), len(stack))
		stack = stack[:depth]

		n := &node{entry: e}
		if depth == 0 {
			roots = append(roots, n)
		} else {
			parent := stack[depth-1]
			parent.children = append(parent.children, n)
		}
		stack = append(stack, n)
	}

	items := make([]*model.Item, 0, len(roots))
	for _, n := range roots {
		item, err := n.item()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (n *node) item() (*model.Item, error) {
	dt := n.entry.DataType
	if dt == "" {
		dt = model.Text
		if len(n.children) > 0 {
			dt = model.Folder
		}
	}
	if len(n.children) > 0 && !dt.IsContainer() {
		return nil, errors.Errorf("%w: %q is a %s item and cannot hold children", model.ErrMalformedDocument, n.entry.Title, dt)
	}
	if len(n.entry.Sources) > 0 && dt.IsContainer() {
		return nil, errors.Errorf("%w: %q is a %s item and cannot carry sources", model.ErrMalformedDocument, n.entry.Title, dt)
	}

	item := model.NewItem(n.entry.Title, dt).WithVarID(n.entry.VarID).WithSources(n.entry.Sources...).
		WithMetadata(n.entry.Metadata)
	for _, c := range n.children {
		child, err := c.item()
		if err != nil {
			return nil, err
		}
		item.WithChildren(child)
	}
	return item, nil
}

// Append attaches items at the end of the document root.
func Append(doc *model.Document, items []*model.Item) error {
	for _, item := range items {
		if err := doc.AppendChild(nil, item); err != nil {
			return err
		}
	}
	return nil
}

// indentLevel counts leading whitespace, a tab being two spaces, and
// returns it in levels of two spaces.
func indentLevel(line string) int {
	indent := 0
	for i := 0; i < len(line); i++ {
		if line[i] == '\t' {
			indent += 2
		} else if line[i] == ' ' {
			indent++
		} else {
			break
		}
	}
	return indent / 2
}
