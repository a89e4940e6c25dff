package model

import (
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Document owns a forest of items under a synthetic root. All structural
// edits go through the document so listeners only ever observe a consistent
// tree. A Document is not safe for concurrent use.
type Document struct {
	root *Item
	notifier
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	return &Document{root: newRoot()}
}

func newRoot() *Item {
	return newItem("", Folder)
}

// Root returns the synthetic root. It is never serialized.
func (d *Document) Root() *Item {
	return d.root
}

// Items returns the top-level items.
func (d *Document) Items() []*Item {
	return d.root.Children()
}

// Len returns the number of top-level items.
func (d *Document) Len() int {
	return d.root.ChildCount()
}

// Subscribe registers fn for every change notification. The returned
// function removes the subscription.
func (d *Document) Subscribe(fn Listener) func() {
	return d.subscribe(fn)
}

// Index resolves a (parent, row) address. A nil parent means the root.
func (d *Document) Index(parent *Item, row int) (*Item, error) {
	parent = d.resolve(parent)
	child := parent.Child(row)
	if child == nil {
		return nil, invalidf("no row %d under %q", row, parent.FullPath())
	}
	return child, nil
}

// ItemAt follows a chain of row numbers from the root.
func (d *Document) ItemAt(rows ...int) (*Item, error) {
	item := d.root
	for _, row := range rows {
		next, err := d.Index(item, row)
		if err != nil {
			return nil, err
		}
		item = next
	}
	return item, nil
}

// Contains reports whether item is currently attached to this document.
func (d *Document) Contains(item *Item) bool {
	return item != nil && d.root.IsAncestorOf(item)
}

// Walk visits every item below the root depth-first.
func (d *Document) Walk(fn func(*Item) bool) {
	for _, item := range d.root.childSlice() {
		item.Walk(fn)
	}
}

// AllItems returns every item in depth-first order.
func (d *Document) AllItems() []*Item {
	var items []*Item
	d.Walk(func(i *Item) bool {
		items = append(items, i)
		return true
	})
	return items
}

// FindByVarID returns the item with the given variable id, or nil.
func (d *Document) FindByVarID(id string) *Item {
	if id == "" {
		return nil
	}
	var found *Item
	d.Walk(func(i *Item) bool {
		if found != nil {
			return false
		}
		if i.varID == id {
			found = i
		}
		return true
	})
	return found
}

// FindByPath returns the first item whose FullPath equals path.
func (d *Document) FindByPath(path string) *Item {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	segments := strings.Split(path, "/")
	return findPath(d.root.childSlice(), segments)
}

func findPath(items []*Item, segments []string) *Item {
	for _, item := range items {
		if item.title != segments[0] {
			continue
		}
		if len(segments) == 1 {
			return item
		}
		if found := findPath(item.childSlice(), segments[1:]); found != nil {
			return found
		}
	}
	return nil
}

// Load replaces the forest with the items parsed from data. On error the
// current forest is left untouched. Repeated varIds are accepted; see
// DuplicateVarIDs.
func (d *Document) Load(data []byte) error {
	items, err := decodeForest(data)
	if err != nil {
		return err
	}

	d.Clear()
	if len(items) == 0 {
		d.emit(Event{Kind: Reset, Phase: PhaseEnd, Parent: d.root})
		return nil
	}
	d.bracket(Event{Kind: RowsInserted, Parent: d.root, First: 0, Last: len(items) - 1}, func() {
		d.root.WithChildren(items...)
	})
	d.emit(Event{Kind: Reset, Phase: PhaseEnd, Parent: d.root})
	return nil
}

// Save serializes the forest. The tree is not modified.
func (d *Document) Save() ([]byte, error) {
	return encodeForest(d.root.childSlice())
}

// MarkSaved clears the modified and newly added flags of every item.
func (d *Document) MarkSaved() {
	d.Walk(func(i *Item) bool {
		i.modified = false
		i.newlyAdded = false
		return true
	})
	d.emit(Event{Kind: LayoutChanged, Phase: PhaseEnd, Parent: d.root})
}

// Clear removes the top-level items last to first, one removal at a time.
func (d *Document) Clear() {
	for n := d.root.ChildCount(); n > 0; n-- {
		_ = d.RemoveChildren(d.root, n-1, 1)
	}
}

// InsertChild attaches a detached item under parent at position. A nil
// parent means the root.
func (d *Document) InsertChild(parent *Item, position int, item *Item) error {
	parent = d.resolve(parent)
	if item == nil {
		return invalidf("nil item")
	}
	if item.parent != nil || item == d.root {
		return invalidf("item %q is already attached", item.title)
	}
	if !d.Contains(parent) {
		return invalidf("parent %q is not part of the document", parent.FullPath())
	}
	c, ok := parent.container()
	if !ok {
		return invalidf("%q is a %s item and cannot hold children", parent.FullPath(), parent.dataType)
	}
	if position < 0 || position > len(c.children) {
		return invalidf("position %d out of range [0, %d]", position, len(c.children))
	}
	if err := d.checkVarIDs(item); err != nil {
		return err
	}

	d.bracket(Event{Kind: RowsInserted, Parent: parent, First: position, Last: position}, func() {
		item.parent = parent
		c.children = slices.Insert(c.children, position, item)
	})
	return nil
}

// AppendChild inserts item as the last child of parent.
func (d *Document) AppendChild(parent *Item, item *Item) error {
	return d.InsertChild(parent, d.resolve(parent).ChildCount(), item)
}

// RemoveChildren removes count consecutive children of parent starting at
// position, together with their subtrees.
func (d *Document) RemoveChildren(parent *Item, position, count int) error {
	parent = d.resolve(parent)
	c, ok := parent.container()
	if !ok {
		return invalidf("%q has no children", parent.FullPath())
	}
	if position < 0 || count < 0 || position+count > len(c.children) {
		return invalidf("cannot remove %d children at %d from %q with %d children",
			count, position, parent.FullPath(), len(c.children))
	}
	if count == 0 {
		return nil
	}

	d.bracket(Event{Kind: RowsRemoved, Parent: parent, First: position, Last: position + count - 1}, func() {
		for _, removed := range c.children[position : position+count] {
			removed.parent = nil
		}
		c.children = slices.Delete(c.children, position, position+count)
	})
	return nil
}

// Remove detaches item and its subtree from the document.
func (d *Document) Remove(item *Item) error {
	if item == nil || item == d.root || !d.Contains(item) {
		return invalidf("item is not part of the document")
	}
	return d.RemoveChildren(item.parent, item.ChildIndex(), 1)
}

// Move re-parents item under newParent at position. The subtree is cloned
// under the new parent and the original is removed, so the returned item
// replaces the old reference, which is left detached. A position outside the
// new parent's children, after the original has been removed, appends.
func (d *Document) Move(item, newParent *Item, position int) (*Item, error) {
	newParent = d.resolve(newParent)
	if item == nil || item == d.root || !d.Contains(item) {
		return nil, invalidf("item is not part of the document")
	}
	if !d.Contains(newParent) {
		return nil, invalidf("target %q is not part of the document", newParent.FullPath())
	}
	target, ok := newParent.container()
	if !ok {
		return nil, invalidf("%q is a %s item and cannot hold children", newParent.FullPath(), newParent.dataType)
	}
	if item.IsAncestorOf(newParent) {
		return nil, invalidf("cannot move %q into its own subtree", item.FullPath())
	}

	oldParent := item.parent
	oldRow := item.ChildIndex()
	clone := item.Clone()
	copyFlags(clone, item)

	ev := Event{
		Kind:       RowsMoved,
		Item:       item,
		Parent:     oldParent,
		First:      oldRow,
		Last:       oldRow,
		DestParent: newParent,
	}
	ev.Phase = PhaseBegin
	d.emit(ev)

	old, _ := oldParent.container()
	item.parent = nil
	old.children = slices.Delete(old.children, oldRow, oldRow+1)

	if position < 0 || position > len(target.children) {
		position = len(target.children)
	}
	clone.parent = newParent
	target.children = slices.Insert(target.children, position, clone)

	ev.Phase = PhaseEnd
	ev.Item = clone
	ev.DestRow = position
	d.emit(ev)
	return clone, nil
}

// Duplicate inserts a copy of item right after it. The copy is titled
// "Copy of <title>", its variable ids are prefixed with "copy_of_" and made
// unique, and it is flagged as newly added.
func (d *Document) Duplicate(item *Item) (*Item, error) {
	if item == nil || item == d.root || !d.Contains(item) {
		return nil, invalidf("item is not part of the document")
	}
	dup := item.Clone()
	dup.title = "Copy of " + item.title
	taken := d.varIDs()
	dup.Walk(func(n *Item) bool {
		if n.varID != "" {
			n.varID = uniqueVarID("copy_of_"+n.varID, taken)
			taken[n.varID] = true
		}
		return true
	})
	dup.newlyAdded = true
	if err := d.InsertChild(item.parent, item.ChildIndex()+1, dup); err != nil {
		return nil, err
	}
	return dup, nil
}

// Rename sets the title. An empty title is rejected.
func (d *Document) Rename(item *Item, title string) error {
	if err := d.checkEditable(item); err != nil {
		return err
	}
	if title == "" {
		return invalidf("title cannot be empty")
	}
	if item.title == title {
		return nil
	}
	d.changed(item, func() { item.title = title })
	return nil
}

// ChangeDataType sets the type tag. Crossing between container and leaf
// kinds is only allowed while the item holds no children or sources.
func (d *Document) ChangeDataType(item *Item, t DataType) error {
	if err := d.checkEditable(item); err != nil {
		return err
	}
	if !t.Valid() {
		return invalidf("unknown data type %q", t)
	}
	if item.dataType == t {
		return nil
	}
	if item.IsContainer() != t.IsContainer() {
		switch body := item.body.(type) {
		case *ContainerBody:
			if len(body.children) > 0 {
				return invalidf("%q still has %d children", item.FullPath(), len(body.children))
			}
		case *LeafBody:
			if len(body.sources) > 0 {
				return invalidf("%q still has %d sources", item.FullPath(), len(body.sources))
			}
		}
	}
	d.changed(item, func() {
		if item.IsContainer() != t.IsContainer() {
			item.body = bodyFor(t)
		}
		item.dataType = t
	})
	return nil
}

// SetVarID replaces the variable id. Ids are unique within the document;
// an empty id unsets it.
func (d *Document) SetVarID(item *Item, id string) error {
	if err := d.checkEditable(item); err != nil {
		return err
	}
	if item.varID == id {
		return nil
	}
	if other := d.FindByVarID(id); other != nil && other != item {
		return invalidf("varId %q is already used by %q", id, other.FullPath())
	}
	d.changed(item, func() { item.varID = id })
	return nil
}

// SetSources replaces the source references of a leaf item.
func (d *Document) SetSources(item *Item, sources []string) error {
	leaf, err := d.leafBody(item)
	if err != nil {
		return err
	}
	d.changed(item, func() { leaf.sources = slices.Clone(sources) })
	return nil
}

// InsertSource inserts a source reference at position.
func (d *Document) InsertSource(item *Item, position int, source string) error {
	leaf, err := d.leafBody(item)
	if err != nil {
		return err
	}
	if position < 0 || position > len(leaf.sources) {
		return invalidf("source position %d out of range [0, %d]", position, len(leaf.sources))
	}
	d.changed(item, func() { leaf.sources = slices.Insert(leaf.sources, position, source) })
	return nil
}

// RemoveSource removes the source reference at position.
func (d *Document) RemoveSource(item *Item, position int) error {
	leaf, err := d.leafBody(item)
	if err != nil {
		return err
	}
	if position < 0 || position >= len(leaf.sources) {
		return invalidf("no source at position %d", position)
	}
	d.changed(item, func() { leaf.sources = slices.Delete(leaf.sources, position, position+1) })
	return nil
}

func (d *Document) leafBody(item *Item) (*LeafBody, error) {
	if err := d.checkEditable(item); err != nil {
		return nil, err
	}
	leaf, ok := item.body.(*LeafBody)
	if !ok {
		return nil, invalidf("%q is a %s item and has no sources", item.FullPath(), item.dataType)
	}
	return leaf, nil
}

// SetMetadata replaces the metadata map. Empty keys are rejected.
func (d *Document) SetMetadata(item *Item, metadata map[string]string) error {
	if err := d.checkEditable(item); err != nil {
		return err
	}
	if _, ok := metadata[""]; ok {
		return invalidf("metadata keys cannot be empty")
	}
	d.changed(item, func() {
		item.metadata = maps.Clone(metadata)
		if item.metadata == nil {
			item.metadata = make(map[string]string)
		}
	})
	return nil
}

// AddMetadata adds a new metadata entry. An existing key is rejected.
func (d *Document) AddMetadata(item *Item, key, value string) error {
	if err := d.checkEditable(item); err != nil {
		return err
	}
	if key == "" {
		return invalidf("metadata keys cannot be empty")
	}
	if _, exists := item.metadata[key]; exists {
		return invalidf("metadata key %q already exists", key)
	}
	d.changed(item, func() { item.metadata[key] = value })
	return nil
}

// UpdateMetadata changes the value of an existing metadata entry.
func (d *Document) UpdateMetadata(item *Item, key, value string) error {
	if err := d.checkEditable(item); err != nil {
		return err
	}
	old, exists := item.metadata[key]
	if !exists {
		return invalidf("metadata key %q does not exist", key)
	}
	if old == value {
		return nil
	}
	d.changed(item, func() { item.metadata[key] = value })
	return nil
}

// RemoveMetadata deletes a metadata entry.
func (d *Document) RemoveMetadata(item *Item, key string) error {
	if err := d.checkEditable(item); err != nil {
		return err
	}
	if _, exists := item.metadata[key]; !exists {
		return invalidf("metadata key %q does not exist", key)
	}
	d.changed(item, func() { delete(item.metadata, key) })
	return nil
}

func (d *Document) resolve(parent *Item) *Item {
	if parent == nil {
		return d.root
	}
	return parent
}

func (d *Document) checkEditable(item *Item) error {
	if item == nil || item == d.root {
		return invalidf("the root item cannot be edited")
	}
	if !d.Contains(item) {
		return invalidf("item %q is not part of the document", item.title)
	}
	return nil
}

// changed applies a payload edit, marks the item modified and notifies.
func (d *Document) changed(item *Item, apply func()) {
	apply()
	item.modified = true
	d.emit(Event{Kind: NodeChanged, Phase: PhaseEnd, Item: item, Parent: item.parent,
		First: item.ChildIndex(), Last: item.ChildIndex()})
}

func (d *Document) varIDs() map[string]bool {
	ids := make(map[string]bool)
	d.Walk(func(i *Item) bool {
		if i.varID != "" {
			ids[i.varID] = true
		}
		return true
	})
	return ids
}

// checkVarIDs rejects a subtree whose variable ids collide with each other
// or with the document.
func (d *Document) checkVarIDs(subtree *Item) error {
	taken := d.varIDs()
	var err error
	subtree.Walk(func(i *Item) bool {
		if err != nil || i.varID == "" {
			return err == nil
		}
		if taken[i.varID] {
			err = invalidf("varId %q is already used", i.varID)
			return false
		}
		taken[i.varID] = true
		return true
	})
	return err
}

// DuplicateVarIDs returns the sorted variable ids used by more than one item.
// Edits never create duplicates, but loaded files may contain them.
func (d *Document) DuplicateVarIDs() []string {
	seen := make(map[string]int)
	d.Walk(func(i *Item) bool {
		if i.varID != "" {
			seen[i.varID]++
		}
		return true
	})
	var dups []string
	for id, n := range seen {
		if n > 1 {
			dups = append(dups, id)
		}
	}
	slices.Sort(dups)
	return dups
}

func uniqueVarID(base string, taken map[string]bool) string {
	if !taken[base] {
		return base
	}
	for n := 2; ; n++ {
		candidate := base + "_" + strconv.Itoa(n)
		if !taken[candidate] {
			return candidate
		}
	}
}
