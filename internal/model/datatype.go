package model

import (
	"gitlab.com/tozd/go/errors"
)

// DataType is the type tag of an item. Container kinds may own children,
// leaf kinds carry source references instead.
type DataType string

const (
	Folder    DataType = "Folder"
	List      DataType = "List"
	KeyedList DataType = "KeyedList"

	Text     DataType = "Text"
	Integer  DataType = "Integer"
	Float    DataType = "Float"
	Decimal  DataType = "Decimal"
	Currency DataType = "Currency"
	Date     DataType = "Date"
	Unary    DataType = "Unary"
	Binary   DataType = "Binary"
)

// ContainerTypes lists the container kinds in display order.
var ContainerTypes = []DataType{Folder, List, KeyedList}

// LeafTypes lists the leaf kinds in display order.
var LeafTypes = []DataType{Text, Integer, Float, Decimal, Currency, Date, Unary, Binary}

// AllTypes returns every data type, containers first.
func AllTypes() []DataType {
	all := make([]DataType, 0, len(ContainerTypes)+len(LeafTypes))
	all = append(all, ContainerTypes...)
	return append(all, LeafTypes...)
}

// IsContainer reports whether items of this type may hold children.
func (t DataType) IsContainer() bool {
	switch t {
	case Folder, List, KeyedList:
		return true
	}
	return false
}

// Valid reports whether t is one of the known tags.
func (t DataType) Valid() bool {
	for _, known := range AllTypes() {
		if t == known {
			return true
		}
	}
	return false
}

func (t DataType) String() string {
	return string(t)
}

// ParseDataType converts a tag as found in a document into a DataType.
func ParseDataType(s string) (DataType, error) {
	t := DataType(s)
	if !t.Valid() {
		return "", errors.Errorf("%w: unknown data type %q", ErrInvalidOperation, s)
	}
	return t, nil
}
