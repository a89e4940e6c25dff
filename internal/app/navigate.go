package app

import (
	"gitlab.com/tozd/go/errors"

	"github.com/pstuifzand/jsontree/internal/model"
	"github.com/pstuifzand/jsontree/internal/search"
)

// Next selects the displayed row below the selection, or the first row when
// nothing is selected, and returns the new selection.
func (s *Session) Next() Selection {
	s.tree.SelectNext()
	return s.Selection()
}

// Prev selects the displayed row above the selection.
func (s *Session) Prev() Selection {
	s.tree.SelectPrev()
	return s.Selection()
}

// Collapse hides the children of the selected container. A selection
// inside it moves up to the container.
func (s *Session) Collapse(sel Selection) error {
	item, err := containerOf(sel)
	if err != nil {
		return err
	}
	s.tree.Collapse(item)
	return nil
}

// Expand shows the children of the selected container.
func (s *Session) Expand(sel Selection) error {
	item, err := containerOf(sel)
	if err != nil {
		return err
	}
	s.tree.Expand(item)
	return nil
}

// Toggle flips the expansion of the selected container and reports whether
// it is expanded afterwards.
func (s *Session) Toggle(sel Selection) (bool, error) {
	item, err := containerOf(sel)
	if err != nil {
		return false, err
	}
	s.tree.Toggle(item)
	return s.tree.Expanded(item), nil
}

func containerOf(sel Selection) (*model.Item, error) {
	item, err := sel.require()
	if err != nil {
		return nil, err
	}
	if !item.IsContainer() {
		return nil, errors.Errorf("%w: %s is a %s item and has no children",
			model.ErrInvalidOperation, item.FullPath(), item.DataType())
	}
	return item, nil
}

// Find lists the items whose title matches query in the configured search
// mode. Fuzzy matches come closest first; other modes keep document order.
// The tree filter is left alone.
func (s *Session) Find(query string) ([]*model.Item, error) {
	mode, err := search.ParseMode(s.cfg.SearchMode())
	if err != nil {
		return nil, err
	}
	expr, err := search.Parse(mode, query)
	if err != nil {
		return nil, err
	}
	items := s.doc.AllItems()

	var found []*model.Item
	if fuzzy, ok := expr.(*search.FuzzyExpr); ok {
		titles := make([]string, len(items))
		for idx, item := range items {
			titles[idx] = item.Title()
		}
		for _, idx := range fuzzy.Rank(titles) {
			found = append(found, items[idx])
		}
	} else {
		for _, item := range items {
			if expr.Matches(item.Title()) {
				found = append(found, item)
			}
		}
	}
	s.log.Debug("find", "mode", mode, "query", query, "found", len(found))
	return found, nil
}
