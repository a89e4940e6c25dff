// Package model contains the editable tree document: typed items, their
// structural links, and the document that owns and mutates them.
package model

import (
	"maps"
	"slices"
	"strings"
)

// Body is the kind-specific part of an item. It is either a *ContainerBody
// or a *LeafBody.
type Body interface {
	isBody()
}

// ContainerBody holds the ordered children of a container item.
type ContainerBody struct {
	children []*Item
}

// LeafBody holds the source references of a leaf item.
type LeafBody struct {
	sources []string
}

func (*ContainerBody) isBody() {}
func (*LeafBody) isBody()      {}

// DisplayState selects how a view styles an item.
type DisplayState int

const (
	StateDefault DisplayState = iota
	StateModified
	StateNew
)

func (s DisplayState) String() string {
	switch s {
	case StateModified:
		return "modified"
	case StateNew:
		return "new"
	default:
		return "default"
	}
}

// Item represents a single node in the document tree
type Item struct {
	title    string
	varID    string
	dataType DataType
	metadata map[string]string
	body     Body

	parent *Item

	modified   bool // changed since load or last save
	newlyAdded bool // created in this session
	hidden     bool // filtered out by the last search
}

// NewItem creates a detached item created by a user action. The item is
// flagged as newly added.
func NewItem(title string, dataType DataType) *Item {
	item := newItem(title, dataType)
	item.newlyAdded = true
	return item
}

func newItem(title string, dataType DataType) *Item {
	item := &Item{
		title:    title,
		dataType: dataType,
		metadata: make(map[string]string),
	}
	item.body = bodyFor(dataType)
	return item
}

func bodyFor(t DataType) Body {
	if t.IsContainer() {
		return &ContainerBody{children: make([]*Item, 0)}
	}
	return &LeafBody{sources: make([]string, 0)}
}

func (i *Item) Title() string      { return i.title }
func (i *Item) VarID() string      { return i.varID }
func (i *Item) DataType() DataType { return i.dataType }
func (i *Item) Parent() *Item      { return i.parent }
func (i *Item) Body() Body         { return i.body }
func (i *Item) Modified() bool     { return i.modified }
func (i *Item) NewlyAdded() bool   { return i.newlyAdded }
func (i *Item) Hidden() bool       { return i.hidden }

// IsContainer reports whether the item may hold children.
func (i *Item) IsContainer() bool {
	_, ok := i.body.(*ContainerBody)
	return ok
}

// Sources returns a copy of the source references. Containers have none.
func (i *Item) Sources() []string {
	if leaf, ok := i.body.(*LeafBody); ok {
		return slices.Clone(leaf.sources)
	}
	return nil
}

// Metadata returns a copy of the metadata map.
func (i *Item) Metadata() map[string]string {
	return maps.Clone(i.metadata)
}

// Children returns a copy of the child slice. Leaves have none.
func (i *Item) Children() []*Item {
	if c, ok := i.body.(*ContainerBody); ok {
		return slices.Clone(c.children)
	}
	return nil
}

// ChildCount returns the number of children.
func (i *Item) ChildCount() int {
	if c, ok := i.body.(*ContainerBody); ok {
		return len(c.children)
	}
	return 0
}

// Child returns the child at row, or nil when row is out of range.
func (i *Item) Child(row int) *Item {
	c, ok := i.body.(*ContainerBody)
	if !ok || row < 0 || row >= len(c.children) {
		return nil
	}
	return c.children[row]
}

// ChildIndex returns the position of the item within its parent's children.
// The root and detached items report 0.
func (i *Item) ChildIndex() int {
	if i.parent == nil {
		return 0
	}
	if idx := slices.Index(i.parent.childSlice(), i); idx >= 0 {
		return idx
	}
	return 0
}

// FullPath returns the titles from the top-level ancestor down to this item
// joined with '/'. The synthetic root is not part of the path.
func (i *Item) FullPath() string {
	var parts []string
	for n := i; n != nil && n.parent != nil; n = n.parent {
		parts = append(parts, n.title)
	}
	if i.parent == nil {
		// Detached items and the root have only their own title.
		parts = []string{i.title}
	}
	slices.Reverse(parts)
	return strings.Join(parts, "/")
}

// State returns the display state used for styling. A modified item wins
// over a newly added one.
func (i *Item) State() DisplayState {
	switch {
	case i.modified:
		return StateModified
	case i.newlyAdded:
		return StateNew
	default:
		return StateDefault
	}
}

// IsAncestorOf reports whether i is n or one of n's ancestors.
func (i *Item) IsAncestorOf(n *Item) bool {
	for p := n; p != nil; p = p.parent {
		if p == i {
			return true
		}
	}
	return false
}

// Depth returns the number of ancestors below the synthetic root.
func (i *Item) Depth() int {
	depth := 0
	for p := i.parent; p != nil && p.parent != nil; p = p.parent {
		depth++
	}
	return depth
}

// Clone returns a detached deep copy of the item and its subtree. The
// transient flags of the copy are cleared; callers set them as needed.
func (i *Item) Clone() *Item {
	clone := newItem(i.title, i.dataType)
	clone.varID = i.varID
	clone.metadata = maps.Clone(i.metadata)
	switch body := i.body.(type) {
	case *LeafBody:
		clone.body = &LeafBody{sources: slices.Clone(body.sources)}
	case *ContainerBody:
		cb := &ContainerBody{children: make([]*Item, 0, len(body.children))}
		for _, child := range body.children {
			c := child.Clone()
			c.parent = clone
			cb.children = append(cb.children, c)
		}
		clone.body = cb
	}
	return clone
}

// Walk calls fn for the item and every descendant in depth-first order.
// Returning false from fn skips the item's subtree.
func (i *Item) Walk(fn func(*Item) bool) {
	if !fn(i) {
		return
	}
	for _, child := range i.childSlice() {
		child.Walk(fn)
	}
}

func (i *Item) childSlice() []*Item {
	if c, ok := i.body.(*ContainerBody); ok {
		return c.children
	}
	return nil
}

func (i *Item) container() (*ContainerBody, bool) {
	c, ok := i.body.(*ContainerBody)
	return c, ok
}

// copyFlags copies modified/newlyAdded from src onto dst, pairing nodes by
// position. Both trees must have the same shape.
func copyFlags(dst, src *Item) {
	dst.modified = src.modified
	dst.newlyAdded = src.newlyAdded
	dk, sk := dst.childSlice(), src.childSlice()
	for idx := range dk {
		if idx < len(sk) {
			copyFlags(dk[idx], sk[idx])
		}
	}
}

// SetNewlyAdded sets the newly added flag on an item that is not yet part
// of a document, e.g. a clone about to be inserted.
func (i *Item) SetNewlyAdded(flag bool) {
	i.newlyAdded = flag
}

// The With* builders fill in a detached item before it is inserted into a
// document. They do not emit events or set the modified flag.

// WithVarID sets the variable id.
func (i *Item) WithVarID(id string) *Item {
	i.varID = id
	return i
}

// WithSources sets the source references. Ignored for container kinds.
func (i *Item) WithSources(sources ...string) *Item {
	if leaf, ok := i.body.(*LeafBody); ok {
		leaf.sources = slices.Clone(sources)
	}
	return i
}

// WithMetadata merges kv into the metadata map. Empty keys are dropped.
func (i *Item) WithMetadata(kv map[string]string) *Item {
	for k, v := range kv {
		if k != "" {
			i.metadata[k] = v
		}
	}
	return i
}

// WithChildren appends detached children. Ignored for leaf kinds.
func (i *Item) WithChildren(children ...*Item) *Item {
	c, ok := i.container()
	if !ok {
		return i
	}
	for _, child := range children {
		child.parent = i
		c.children = append(c.children, child)
	}
	return i
}
