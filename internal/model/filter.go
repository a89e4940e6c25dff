package model

import "strings"

// MatchFunc decides whether an item title matches a search.
type MatchFunc func(title string) bool

// Contains returns a case-sensitive substring matcher. An empty query
// matches everything.
func Contains(query string) MatchFunc {
	return func(title string) bool {
		return strings.Contains(title, query)
	}
}

// Visibility computes which items are visible under match: an item is
// visible when its title matches or any descendant is visible. A nil match
// shows everything. The tree is not modified.
func (d *Document) Visibility(match MatchFunc) map[*Item]bool {
	visible := make(map[*Item]bool)
	for _, item := range d.root.childSlice() {
		markVisible(item, match, visible)
	}
	return visible
}

func markVisible(item *Item, match MatchFunc, visible map[*Item]bool) bool {
	shown := match == nil || match(item.title)
	for _, child := range item.childSlice() {
		if markVisible(child, match, visible) {
			shown = true
		}
	}
	visible[item] = shown
	return shown
}

// Search hides every item that neither matches query nor has a matching
// descendant. An empty query shows all items. It returns the number of
// visible items.
func (d *Document) Search(query string) int {
	if query == "" {
		return d.Filter(nil)
	}
	return d.Filter(Contains(query))
}

// Filter applies a visibility decision to the hidden flags. Only display
// state changes; listeners get a single LayoutChanged event.
func (d *Document) Filter(match MatchFunc) int {
	visible := d.Visibility(match)
	count := 0
	for item, shown := range visible {
		item.hidden = !shown
		if shown {
			count++
		}
	}
	d.emit(Event{Kind: LayoutChanged, Phase: PhaseEnd, Parent: d.root})
	return count
}
