package model

import "slices"

// AllowedTypes returns the types item may be changed to. A container with
// children stays a container and a leaf with sources stays a leaf; an empty
// item may take any type.
func AllowedTypes(item *Item) []DataType {
	switch body := item.body.(type) {
	case *ContainerBody:
		if len(body.children) > 0 {
			return slices.Clone(ContainerTypes)
		}
	case *LeafBody:
		if len(body.sources) > 0 {
			return slices.Clone(LeafTypes)
		}
	}
	return AllTypes()
}

// Details is a snapshot of everything shown about a single item.
type Details struct {
	Title        string
	VarID        string
	Path         string
	DataType     DataType
	State        DisplayState
	ChildCount   int
	Sources      []string
	Metadata     []MetadataRow
	AllowedTypes []DataType
}

// Details returns a snapshot of the item. Metadata rows are sorted by key.
func (i *Item) Details() Details {
	return Details{
		Title:        i.title,
		VarID:        i.varID,
		Path:         i.FullPath(),
		DataType:     i.dataType,
		State:        i.State(),
		ChildCount:   i.ChildCount(),
		Sources:      i.Sources(),
		Metadata:     NewMetadataEditor(i.metadata).Rows(),
		AllowedTypes: AllowedTypes(i),
	}
}
