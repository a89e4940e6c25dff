package model

import "slices"

// EventKind identifies a change notification.
type EventKind int

const (
	// NodeChanged reports a payload change on Event.Item.
	NodeChanged EventKind = iota
	// RowsInserted reports children First..Last added under Event.Parent.
	RowsInserted
	// RowsRemoved reports children First..Last removed from Event.Parent.
	RowsRemoved
	// RowsMoved reports Event.Item moved from Event.Parent/First to
	// Event.DestParent/DestRow. The End event carries the new item.
	RowsMoved
	// LayoutChanged reports a change of display flags only.
	LayoutChanged
	// Reset reports that the whole forest was replaced.
	Reset
)

func (k EventKind) String() string {
	switch k {
	case NodeChanged:
		return "node-changed"
	case RowsInserted:
		return "rows-inserted"
	case RowsRemoved:
		return "rows-removed"
	case RowsMoved:
		return "rows-moved"
	case LayoutChanged:
		return "layout-changed"
	case Reset:
		return "reset"
	}
	return "unknown"
}

// Phase tells whether the tree is about to change or has changed. Listeners
// see a consistent tree in both phases.
type Phase int

const (
	PhaseBegin Phase = iota
	PhaseEnd
)

// Event is delivered to listeners for every change to the document.
// NodeChanged and LayoutChanged are only sent with PhaseEnd.
type Event struct {
	Kind  EventKind
	Phase Phase

	Item   *Item
	Parent *Item
	First  int
	Last   int

	DestParent *Item
	DestRow    int
}

// Listener receives document events.
type Listener func(Event)

type subscription struct {
	id int
	fn Listener
}

type notifier struct {
	nextID    int
	listeners []subscription
}

func (n *notifier) subscribe(fn Listener) func() {
	n.nextID++
	id := n.nextID
	n.listeners = append(n.listeners, subscription{id: id, fn: fn})
	return func() {
		for idx, s := range n.listeners {
			if s.id == id {
				n.listeners = append(n.listeners[:idx], n.listeners[idx+1:]...)
				return
			}
		}
	}
}

// emit walks a snapshot so listeners may unsubscribe while being notified.
func (n *notifier) emit(ev Event) {
	for _, s := range slices.Clone(n.listeners) {
		s.fn(ev)
	}
}

// bracket sends the Begin event, applies the change, then sends the End
// event. apply must not fail half way.
func (n *notifier) bracket(ev Event, apply func()) {
	ev.Phase = PhaseBegin
	n.emit(ev)
	apply()
	ev.Phase = PhaseEnd
	n.emit(ev)
}
