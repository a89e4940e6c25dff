// Package diff compares two documents item by item.
package diff

import (
	"maps"
	"slices"

	"github.com/pstuifzand/jsontree/internal/model"
)

// ComputeDiff compares two documents and returns a DiffResult
func ComputeDiff(before, after *model.Document) *DiffResult {
	return analyzeChanges(collect(before), collect(after))
}

// itemID identifies an item across documents.
func itemID(item *model.Item) string {
	if id := item.VarID(); id != "" {
		return id
	}
	return "@" + item.FullPath()
}

func collect(doc *model.Document) map[string]*ItemData {
	items := make(map[string]*ItemData)
	doc.Walk(func(item *model.Item) bool {
		data := &ItemData{
			ID:       itemID(item),
			Title:    item.Title(),
			DataType: item.DataType(),
			Position: item.ChildIndex(),
			Sources:  item.Sources(),
			Metadata: item.Metadata(),
		}
		if parent := item.Parent(); parent != nil && parent != doc.Root() {
			data.ParentID = itemID(parent)
		}
		items[data.ID] = data
		return true
	})
	return items
}

// analyzeChanges compares two sets of item data
func analyzeChanges(data1, data2 map[string]*ItemData) *DiffResult {
	result := &DiffResult{
		NewItems:      make(map[string]*ItemData),
		DeletedItems:  make(map[string]*ItemData),
		ModifiedItems: make(map[string]*ItemChange),
	}

	// Find new and modified items
	for id, item2 := range data2 {
		if item1, exists := data1[id]; !exists {
			result.NewItems[id] = item2
		} else if change := compareItems(item1, item2); change != nil {
			result.ModifiedItems[id] = change
		}
	}

	// Find deleted items
	for id, item1 := range data1 {
		if _, exists := data2[id]; !exists {
			result.DeletedItems[id] = item1
		}
	}

	return result
}

// compareItems checks if an item changed and returns the changes
func compareItems(old, new *ItemData) *ItemChange {
	change := &ItemChange{
		Item:        new,
		OldItem:     old,
		MetaAdded:   make(map[string]string),
		MetaRemoved: make(map[string]string),
		MetaChanged: make(map[string][2]string),
	}

	change.TitleChanged = old.Title != new.Title
	change.TypeChanged = old.DataType != new.DataType
	change.StructureChanged = old.ParentID != new.ParentID || old.Position != new.Position
	change.SourcesChanged = !slices.Equal(old.Sources, new.Sources)

	for key, newVal := range new.Metadata {
		if oldVal, exists := old.Metadata[key]; !exists {
			change.MetaAdded[key] = newVal
		} else if oldVal != newVal {
			change.MetaChanged[key] = [2]string{oldVal, newVal}
		}
	}
	for key, oldVal := range old.Metadata {
		if _, exists := new.Metadata[key]; !exists {
			change.MetaRemoved[key] = oldVal
		}
	}

	if !change.TitleChanged && !change.TypeChanged && !change.StructureChanged && !change.SourcesChanged &&
		maps.Equal(old.Metadata, new.Metadata) {
		return nil
	}
	return change
}
