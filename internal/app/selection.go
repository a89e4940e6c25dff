package app

import (
	"gitlab.com/tozd/go/errors"

	"github.com/pstuifzand/jsontree/internal/model"
)

// ErrNoSelection is returned by edits that need a selected item.
var ErrNoSelection = errors.Base("nothing selected")

// Selection names the item an edit acts on. The zero value selects
// nothing. Edits take a Selection and return the one that should follow
// them; the session never edits "whatever is selected" behind the
// caller's back.
type Selection struct {
	item *model.Item
}

// SelectionOf selects item. A nil item gives the empty selection.
func SelectionOf(item *model.Item) Selection {
	return Selection{item: item}
}

// Item returns the selected item, or nil.
func (sel Selection) Item() *model.Item { return sel.item }

// Empty reports whether nothing is selected.
func (sel Selection) Empty() bool { return sel.item == nil }

func (sel Selection) require() (*model.Item, error) {
	if sel.item == nil {
		return nil, errors.WithStack(ErrNoSelection)
	}
	return sel.item, nil
}

// afterRemoval is the selection that follows removing item: the next
// sibling, else the previous one, else the parent.
func afterRemoval(item *model.Item) Selection {
	parent := item.Parent()
	if parent == nil {
		return Selection{}
	}
	idx := item.ChildIndex()
	if next := parent.Child(idx + 1); next != nil {
		return SelectionOf(next)
	}
	if prev := parent.Child(idx - 1); prev != nil {
		return SelectionOf(prev)
	}
	if parent.Parent() == nil {
		return Selection{}
	}
	return SelectionOf(parent)
}
