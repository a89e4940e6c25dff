package app

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gitlab.com/tozd/go/errors"

	"github.com/pstuifzand/jsontree/internal/model"
	"github.com/pstuifzand/jsontree/internal/search"
)

// Selection returns what the tree view has selected.
func (s *Session) Selection() Selection {
	return SelectionOf(s.tree.Selected())
}

// Selected returns the selected item, or nil.
func (s *Session) Selected() *model.Item {
	return s.tree.Selected()
}

// Select shows sel as the selection in the tree view.
func (s *Session) Select(sel Selection) error {
	if !s.tree.Select(sel.Item()) {
		return errors.Errorf("%w: item is not part of the document", model.ErrInvalidOperation)
	}
	return nil
}

func newVarID(prefix string) string {
	return prefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// AddContainer adds a "New Folder" item. With a container selected it
// becomes its first child, with nothing selected the last top-level item.
// The new item is the next selection.
func (s *Session) AddContainer(sel Selection) (Selection, error) {
	return s.add(sel, model.NewItem("New Folder", model.Folder).WithVarID(newVarID("i_folder_")))
}

// AddPrimitive adds a "New Primitive" text item, placed like AddContainer.
func (s *Session) AddPrimitive(sel Selection) (Selection, error) {
	return s.add(sel, model.NewItem("New Primitive", model.Text).WithVarID(newVarID("i_text_")))
}

func (s *Session) add(sel Selection, item *model.Item) (Selection, error) {
	var err error
	if parent := sel.Item(); parent != nil {
		err = s.doc.InsertChild(parent, 0, item)
	} else {
		err = s.doc.AppendChild(nil, item)
	}
	if err != nil {
		return sel, err
	}
	s.log.Debug("added item", "path", item.FullPath(), "type", item.DataType())
	return SelectionOf(item), nil
}

// Delete removes the selected item and its subtree. The next selection is
// a neighbour or the parent.
func (s *Session) Delete(sel Selection) (Selection, error) {
	item, err := sel.require()
	if err != nil {
		return sel, err
	}
	next := afterRemoval(item)
	path := item.FullPath()
	if err := s.doc.Remove(item); err != nil {
		return sel, err
	}
	s.log.Debug("deleted item", "path", path)
	return next, nil
}

// Duplicate inserts a copy of the selected item right after it. The copy
// is the next selection.
func (s *Session) Duplicate(sel Selection) (Selection, error) {
	item, err := sel.require()
	if err != nil {
		return sel, err
	}
	dup, err := s.doc.Duplicate(item)
	if err != nil {
		return sel, err
	}
	return SelectionOf(dup), nil
}

// Rename changes the title of the selected item.
func (s *Session) Rename(sel Selection, title string) error {
	item, err := sel.require()
	if err != nil {
		return err
	}
	return s.doc.Rename(item, title)
}

// SetType changes the data type of the selected item. Only the types in
// model.AllowedTypes are accepted.
func (s *Session) SetType(sel Selection, name string) error {
	item, err := sel.require()
	if err != nil {
		return err
	}
	dt, err := model.ParseDataType(name)
	if err != nil {
		return err
	}
	return s.doc.ChangeDataType(item, dt)
}

// SetVarID changes the varId of the selected item after confirmation. It
// reports whether the change was made.
func (s *Session) SetVarID(ctx context.Context, sel Selection, id string) (bool, error) {
	item, err := sel.require()
	if err != nil {
		return false, err
	}
	if id == item.VarID() {
		return false, nil
	}
	ok, err := s.prompter.Confirm(ctx, "Confirm", "Are you sure you want to change VarId?")
	if err != nil || !ok {
		return false, err
	}
	if err := s.doc.SetVarID(item, id); err != nil {
		return false, err
	}
	return true, nil
}

// InsertSource inserts a source reference at position of the selected leaf.
// A negative position appends.
func (s *Session) InsertSource(sel Selection, position int, source string) error {
	item, err := sel.require()
	if err != nil {
		return err
	}
	if position < 0 {
		position = len(item.Sources())
	}
	return s.doc.InsertSource(item, position, source)
}

// RemoveSource removes the source reference at position.
func (s *Session) RemoveSource(sel Selection, position int) error {
	item, err := sel.require()
	if err != nil {
		return err
	}
	return s.doc.RemoveSource(item, position)
}

// EditMetadata runs edit on a metadata editor over the selected item and
// stores the result. Nothing is stored when edit fails.
func (s *Session) EditMetadata(sel Selection, edit func(*model.MetadataEditor) error) error {
	item, err := sel.require()
	if err != nil {
		return err
	}
	ed := model.NewMetadataEditor(item.Metadata())
	if err := edit(ed); err != nil {
		return err
	}
	return s.doc.SetMetadata(item, ed.Metadata())
}

// Move moves the selected item under target at position; nil target means
// the top level. The moved copy is the next selection.
func (s *Session) Move(sel Selection, target *model.Item, position int) (Selection, error) {
	item, err := sel.require()
	if err != nil {
		return sel, err
	}
	moved, err := s.doc.Move(item, target, position)
	if err != nil {
		return sel, err
	}
	s.log.Debug("moved item", "to", moved.FullPath(), "row", moved.ChildIndex())
	return SelectionOf(moved), nil
}

// Search filters the tree with the configured search mode and expands
// everything so matches are visible. An empty query shows all items.
func (s *Session) Search(query string) (int, error) {
	mode, err := search.ParseMode(s.cfg.SearchMode())
	if err != nil {
		return 0, err
	}
	match, err := search.Compile(mode, query)
	if err != nil {
		return 0, err
	}
	s.tree.ExpandAll()
	count := s.doc.Filter(match)
	s.log.Debug("search", "mode", mode, "query", query, "visible", count)
	return count, nil
}

// Details describes the selected item.
func (s *Session) Details(sel Selection) (model.Details, error) {
	item, err := sel.require()
	if err != nil {
		return model.Details{}, err
	}
	return item.Details(), nil
}
