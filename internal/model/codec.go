package model

import (
	"bytes"

	"github.com/goccy/go-json"
	"gitlab.com/tozd/go/errors"
)

// itemJSON is the persisted shape of an item. Sources, metadata and children
// are omitted when empty; title, varId and dataType are always written.
type itemJSON struct {
	Title    *string           `json:"title"`
	VarID    *string           `json:"varId"`
	DataType *string           `json:"dataType"`
	Sources  []string          `json:"sources,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Children []json.RawMessage `json:"children,omitempty"`
}

type itemOut struct {
	Title    string            `json:"title"`
	VarID    *string           `json:"varId"`
	DataType string            `json:"dataType"`
	Sources  []string          `json:"sources,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Children []*itemOut        `json:"children,omitempty"`
}

// MarshalJSON encodes the item and its subtree in the persisted format.
func (i *Item) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.toJSON())
}

func (i *Item) toJSON() *itemOut {
	out := &itemOut{
		Title:    i.title,
		DataType: string(i.dataType),
	}
	if i.varID != "" {
		id := i.varID
		out.VarID = &id
	}
	if len(i.metadata) > 0 {
		out.Metadata = i.Metadata()
	}
	switch body := i.body.(type) {
	case *LeafBody:
		if len(body.sources) > 0 {
			out.Sources = i.Sources()
		}
	case *ContainerBody:
		for _, child := range body.children {
			out.Children = append(out.Children, child.toJSON())
		}
	}
	return out
}

// decodeForest parses a JSON array of items into detached top-level items.
func decodeForest(data []byte) ([]*Item, error) {
	var elements []json.RawMessage
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, malformedf("document is not a JSON array: %s", err)
	}
	if elements == nil {
		return nil, malformedf("document is not a JSON array")
	}

	items := make([]*Item, 0, len(elements))
	for idx, raw := range elements {
		item, err := decodeItem(raw, nil, "")
		if err != nil {
			return nil, wrapPosition(err, idx)
		}
		items = append(items, item)
	}
	return items, nil
}

func wrapPosition(err error, idx int) error {
	return malformedf("element %d: %s", idx, trimKind(err))
}

func decodeItem(raw json.RawMessage, parent *Item, parentPath string) (*Item, error) {
	if !isObject(raw) {
		return nil, malformedf("not an object")
	}
	var in itemJSON
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, malformedf("%s", err)
	}
	if in.Title == nil {
		return nil, malformedf("missing title")
	}
	if *in.Title == "" {
		return nil, malformedf("empty title")
	}
	path := *in.Title
	if parentPath != "" {
		path = parentPath + "/" + path
	}

	dataType, err := decodeDataType(in, path)
	if err != nil {
		return nil, err
	}

	item := newItem(*in.Title, dataType)
	item.parent = parent
	if in.VarID != nil {
		item.varID = *in.VarID
	}
	for k, v := range in.Metadata {
		if k == "" {
			return nil, malformedf("%s: empty metadata key", path)
		}
		item.metadata[k] = v
	}

	switch body := item.body.(type) {
	case *LeafBody:
		if len(in.Children) > 0 {
			return nil, malformedf("%s: %s item cannot have children", path, dataType)
		}
		body.sources = append(body.sources, in.Sources...)
	case *ContainerBody:
		if len(in.Sources) > 0 {
			return nil, malformedf("%s: %s item cannot have sources", path, dataType)
		}
		for _, rawChild := range in.Children {
			child, err := decodeItem(rawChild, item, path)
			if err != nil {
				return nil, err
			}
			body.children = append(body.children, child)
		}
	}
	return item, nil
}

// decodeDataType resolves the type tag. A missing tag is inferred from the
// presence of children.
func decodeDataType(in itemJSON, path string) (DataType, error) {
	if in.DataType == nil {
		if len(in.Children) > 0 {
			return Folder, nil
		}
		return Text, nil
	}
	t := DataType(*in.DataType)
	if !t.Valid() {
		return "", malformedf("%s: unknown data type %q", path, *in.DataType)
	}
	return t, nil
}

func isObject(raw json.RawMessage) bool {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		case '{':
			return true
		default:
			return false
		}
	}
	return false
}

// trimKind strips the sentinel prefix so nested messages read naturally.
func trimKind(err error) string {
	msg := err.Error()
	prefix := ErrMalformedDocument.Error() + ": "
	if len(msg) >= len(prefix) && msg[:len(prefix)] == prefix {
		return msg[len(prefix):]
	}
	return msg
}

func encodeForest(items []*Item) ([]byte, error) {
	out := make([]*itemOut, 0, len(items))
	for _, item := range items {
		out = append(out, item.toJSON())
	}
	raw, err := json.Marshal(out)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, errors.WithStack(err)
	}
	return buf.Bytes(), nil
}
