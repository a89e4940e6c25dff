package diff

import "github.com/pstuifzand/jsontree/internal/model"

// ItemData is the comparable state of a single item. Items are identified
// by varId, or by "@" and their path when they have none.
type ItemData struct {
	ID       string
	Title    string
	DataType model.DataType
	ParentID string
	Position int
	Sources  []string
	Metadata map[string]string
}

// DiffResult contains the analysis of changes between two documents
type DiffResult struct {
	NewItems      map[string]*ItemData
	DeletedItems  map[string]*ItemData
	ModifiedItems map[string]*ItemChange
}

// Empty reports whether the documents were equal.
func (r *DiffResult) Empty() bool {
	return len(r.NewItems) == 0 && len(r.DeletedItems) == 0 && len(r.ModifiedItems) == 0
}

// ItemChange describes what changed for an item
type ItemChange struct {
	Item             *ItemData
	OldItem          *ItemData
	TitleChanged     bool
	TypeChanged      bool
	StructureChanged bool
	SourcesChanged   bool
	MetaAdded        map[string]string
	MetaRemoved      map[string]string
	MetaChanged      map[string][2]string // key -> [oldValue, newValue]
}

// DiffLineType indicates the type of diff line for rendering
type DiffLineType int

const (
	DiffTypeNewSection DiffLineType = iota
	DiffTypeDeletedSection
	DiffTypeModifiedSection
	DiffTypeNewItem
	DiffTypeDeletedItem
	DiffTypeModifiedItem
	DiffTypeItemDetail
	DiffTypeSummary
	DiffTypeBlank
)

// DiffLine represents a rendered line in diff output
type DiffLine struct {
	Type    DiffLineType
	Content string
	Indent  int // Indentation level
}
