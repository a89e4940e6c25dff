// Package ui keeps a display model of the document tree in sync with
// document events and renders it for the terminal.
package ui

import (
	"github.com/pstuifzand/jsontree/internal/model"
)

// Row is one displayed line of the tree.
type Row struct {
	Item  *model.Item
	Depth int
}

// TreeView tracks the displayed rows, expansion state and selection of a
// document. It follows document events, so edits made through the document
// show up without explicit refreshes.
type TreeView struct {
	doc       *model.Document
	rows      []Row
	collapsed map[*model.Item]bool
	selected  *model.Item

	// set while a move is in flight, relative to the moved item
	movingSelection []int
	movingCollapsed [][]int

	unsubscribe func()
}

// NewTreeView creates a TreeView showing doc.
func NewTreeView(doc *model.Document) *TreeView {
	tv := &TreeView{
		doc:       doc,
		collapsed: make(map[*model.Item]bool),
	}
	tv.unsubscribe = doc.Subscribe(tv.handle)
	tv.rebuildView()
	return tv
}

// Close stops following the document.
func (tv *TreeView) Close() {
	if tv.unsubscribe != nil {
		tv.unsubscribe()
		tv.unsubscribe = nil
	}
}

func (tv *TreeView) handle(ev model.Event) {
	switch ev.Kind {
	case model.RowsRemoved:
		if ev.Phase == model.PhaseBegin {
			tv.selectionLeaving(ev.Parent, ev.First, ev.Last)
			return
		}
	case model.RowsMoved:
		if ev.Phase == model.PhaseBegin {
			tv.rememberMoved(ev.Item)
			return
		}
		tv.restoreMoved(ev.Item)
	case model.Reset:
		tv.collapsed = make(map[*model.Item]bool)
		tv.selected = nil
	}
	if ev.Phase == model.PhaseEnd {
		tv.rebuildView()
	}
}

// selectionLeaving moves the selection off children first..last of parent
// before they are removed: to the next sibling, else the previous one, else
// the parent.
func (tv *TreeView) selectionLeaving(parent *model.Item, first, last int) {
	if tv.selected == nil {
		return
	}
	leaving := false
	for row := first; row <= last; row++ {
		if parent.Child(row).IsAncestorOf(tv.selected) {
			leaving = true
			break
		}
	}
	if !leaving {
		return
	}
	switch {
	case last+1 < parent.ChildCount():
		tv.selected = parent.Child(last + 1)
	case first > 0:
		tv.selected = parent.Child(first - 1)
	case parent != tv.doc.Root():
		tv.selected = parent
	default:
		tv.selected = nil
	}
}

// rememberMoved records the selection and collapsed items inside a subtree
// about to be moved, as child index paths relative to its root.
func (tv *TreeView) rememberMoved(item *model.Item) {
	tv.movingSelection = nil
	tv.movingCollapsed = nil
	if tv.selected != nil && item.IsAncestorOf(tv.selected) {
		tv.movingSelection = relPath(item, tv.selected)
	}
	for c := range tv.collapsed {
		if item.IsAncestorOf(c) {
			tv.movingCollapsed = append(tv.movingCollapsed, relPath(item, c))
		}
	}
}

// restoreMoved maps the recorded state onto the moved copy.
func (tv *TreeView) restoreMoved(moved *model.Item) {
	if tv.movingSelection != nil {
		tv.selected = resolveRel(moved, tv.movingSelection)
	}
	for _, path := range tv.movingCollapsed {
		if c := resolveRel(moved, path); c != nil {
			tv.collapsed[c] = true
		}
	}
	tv.movingSelection = nil
	tv.movingCollapsed = nil
}

func relPath(ancestor, item *model.Item) []int {
	path := []int{}
	for it := item; it != ancestor; it = it.Parent() {
		path = append([]int{it.ChildIndex()}, path...)
	}
	return path
}

func resolveRel(root *model.Item, path []int) *model.Item {
	it := root
	for _, row := range path {
		it = it.Child(row)
		if it == nil {
			return nil
		}
	}
	return it
}

// rebuildView recomputes the displayed rows. Hidden items and the
// children of collapsed items are left out.
func (tv *TreeView) rebuildView() {
	for c := range tv.collapsed {
		if !tv.doc.Contains(c) {
			delete(tv.collapsed, c)
		}
	}
	if tv.selected != nil && !tv.doc.Contains(tv.selected) {
		tv.selected = nil
	}
	tv.rows = tv.buildDisplayItems(tv.doc.Items(), 0, nil)
}

func (tv *TreeView) buildDisplayItems(items []*model.Item, depth int, result []Row) []Row {
	for _, item := range items {
		if item.Hidden() {
			continue
		}
		result = append(result, Row{Item: item, Depth: depth})
		if !tv.collapsed[item] {
			result = tv.buildDisplayItems(item.Children(), depth+1, result)
		}
	}
	return result
}

// Rows returns the displayed rows.
func (tv *TreeView) Rows() []Row {
	return tv.rows
}

// Selected returns the selected item, or nil.
func (tv *TreeView) Selected() *model.Item {
	return tv.selected
}

// SelectedIndex returns the row of the selected item, or -1 when the
// selection is empty or not displayed.
func (tv *TreeView) SelectedIndex() int {
	for idx, row := range tv.rows {
		if row.Item == tv.selected {
			return idx
		}
	}
	return -1
}

// Select selects item and expands its ancestors. A nil item clears the
// selection. Items outside the document are refused.
func (tv *TreeView) Select(item *model.Item) bool {
	if item == nil {
		tv.selected = nil
		return true
	}
	if item == tv.doc.Root() || !tv.doc.Contains(item) {
		return false
	}
	changed := false
	for p := item.Parent(); p != nil; p = p.Parent() {
		if tv.collapsed[p] {
			delete(tv.collapsed, p)
			changed = true
		}
	}
	tv.selected = item
	if changed {
		tv.rebuildView()
	}
	return true
}

// SelectItem selects the displayed row idx.
func (tv *TreeView) SelectItem(idx int) {
	if idx >= 0 && idx < len(tv.rows) {
		tv.selected = tv.rows[idx].Item
	}
}

// SelectNext moves selection down
func (tv *TreeView) SelectNext() {
	idx := tv.SelectedIndex()
	if idx < len(tv.rows)-1 {
		tv.SelectItem(idx + 1)
	}
}

// SelectPrev moves selection up
func (tv *TreeView) SelectPrev() {
	if idx := tv.SelectedIndex(); idx > 0 {
		tv.SelectItem(idx - 1)
	}
}

// Expanded reports whether the children of item are displayed.
func (tv *TreeView) Expanded(item *model.Item) bool {
	return item.IsContainer() && !tv.collapsed[item]
}

// Collapse hides the children of item. If the selection was inside, the
// item itself becomes selected.
func (tv *TreeView) Collapse(item *model.Item) {
	if item == nil || !item.IsContainer() {
		return
	}
	tv.collapsed[item] = true
	if tv.selected != nil && tv.selected != item && item.IsAncestorOf(tv.selected) {
		tv.selected = item
	}
	tv.rebuildView()
}

// Expand shows the children of item.
func (tv *TreeView) Expand(item *model.Item) {
	if item == nil {
		return
	}
	delete(tv.collapsed, item)
	tv.rebuildView()
}

// ExpandAll shows every item.
func (tv *TreeView) ExpandAll() {
	clear(tv.collapsed)
	tv.rebuildView()
}

// Toggle flips the expansion of item.
func (tv *TreeView) Toggle(item *model.Item) {
	if tv.Expanded(item) {
		tv.Collapse(item)
	} else {
		tv.Expand(item)
	}
}
