package model

import (
	"maps"
	"slices"
)

// EmptyKey stands for a metadata row whose key has not been filled in yet.
// It never appears in an extracted map.
const EmptyKey = "\x00empty"

// MetadataRow is one editable key/value pair.
type MetadataRow struct {
	Key   string
	Value string
}

// MetadataEditor is a row-oriented editing buffer for an item's metadata,
// as shown in a two-column table. Keys stay unique while editing.
type MetadataEditor struct {
	rows []MetadataRow
}

// NewMetadataEditor creates an editor over a copy of metadata, with rows
// sorted by key.
func NewMetadataEditor(metadata map[string]string) *MetadataEditor {
	keys := slices.Sorted(maps.Keys(metadata))
	rows := make([]MetadataRow, 0, len(keys))
	for _, k := range keys {
		if k == "" {
			continue
		}
		rows = append(rows, MetadataRow{Key: k, Value: metadata[k]})
	}
	return &MetadataEditor{rows: rows}
}

// Rows returns a copy of the rows. Unfilled keys are reported as "".
func (e *MetadataEditor) Rows() []MetadataRow {
	rows := slices.Clone(e.rows)
	for idx := range rows {
		if rows[idx].Key == EmptyKey {
			rows[idx].Key = ""
		}
	}
	return rows
}

// Len returns the number of rows.
func (e *MetadataEditor) Len() int {
	return len(e.rows)
}

// InsertRow inserts a blank row at position.
func (e *MetadataEditor) InsertRow(position int) error {
	if position < 0 || position > len(e.rows) {
		return invalidf("row %d out of range [0, %d]", position, len(e.rows))
	}
	if e.hasKey(EmptyKey) {
		return invalidf("fill in the empty key before adding another row")
	}
	e.rows = slices.Insert(e.rows, position, MetadataRow{Key: EmptyKey})
	return nil
}

// RemoveRow deletes the row at position.
func (e *MetadataEditor) RemoveRow(position int) error {
	if position < 0 || position >= len(e.rows) {
		return invalidf("no row %d", position)
	}
	e.rows = slices.Delete(e.rows, position, position+1)
	return nil
}

// SetKey renames the key of a row. A key already used by another row is
// rejected and the row keeps its old key.
func (e *MetadataEditor) SetKey(position int, key string) error {
	if position < 0 || position >= len(e.rows) {
		return invalidf("no row %d", position)
	}
	if key == "" {
		key = EmptyKey
	}
	for idx, row := range e.rows {
		if idx != position && row.Key == key {
			if key == EmptyKey {
				return invalidf("another row already has an empty key")
			}
			return invalidf("metadata key %q already exists", key)
		}
	}
	e.rows[position].Key = key
	return nil
}

// SetValue changes the value of a row.
func (e *MetadataEditor) SetValue(position int, value string) error {
	if position < 0 || position >= len(e.rows) {
		return invalidf("no row %d", position)
	}
	e.rows[position].Value = value
	return nil
}

// Metadata extracts the edited map. Rows with an unfilled key are dropped.
func (e *MetadataEditor) Metadata() map[string]string {
	out := make(map[string]string, len(e.rows))
	for _, row := range e.rows {
		if row.Key == EmptyKey {
			continue
		}
		out[row.Key] = row.Value
	}
	return out
}

func (e *MetadataEditor) hasKey(key string) bool {
	for _, row := range e.rows {
		if row.Key == key {
			return true
		}
	}
	return false
}
