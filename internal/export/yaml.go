package export

import (
	"io"
	"maps"
	"slices"

	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"

	"github.com/pstuifzand/jsontree/internal/model"
)

// ExportToYAML exports a document to a YAML file.
func ExportToYAML(doc *model.Document, filePath string) error {
	return writeFile(filePath, func(w io.Writer) error { return WriteYAML(w, doc) })
}

// WriteYAML writes the forest as a YAML sequence with the same fields and
// field order as the JSON document.
func WriteYAML(w io.Writer, doc *model.Document) error {
	root := &yaml.Node{Kind: yaml.SequenceNode}
	for _, item := range doc.Items() {
		root.Content = append(root.Content, itemNode(item))
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(enc.Close())
}

func itemNode(item *model.Item) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode}
	n.Content = append(n.Content, scalar("title"), scalar(item.Title()))
	if id := item.VarID(); id != "" {
		n.Content = append(n.Content, scalar("varId"), scalar(id))
	} else {
		n.Content = append(n.Content, scalar("varId"), &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"})
	}
	n.Content = append(n.Content, scalar("dataType"), scalar(item.DataType().String()))

	if sources := item.Sources(); len(sources) > 0 {
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for _, s := range sources {
			seq.Content = append(seq.Content, scalar(s))
		}
		n.Content = append(n.Content, scalar("sources"), seq)
	}

	if metadata := item.Metadata(); len(metadata) > 0 {
		m := &yaml.Node{Kind: yaml.MappingNode}
		for _, k := range slices.Sorted(maps.Keys(metadata)) {
			m.Content = append(m.Content, scalar(k), scalar(metadata[k]))
		}
		n.Content = append(n.Content, scalar("metadata"), m)
	}

	if children := item.Children(); len(children) > 0 {
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for _, child := range children {
			seq.Content = append(seq.Content, itemNode(child))
		}
		n.Content = append(n.Content, scalar("children"), seq)
	}
	return n
}

func scalar(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}
