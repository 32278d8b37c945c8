package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind classifies a column's value type.
type Kind int

const (
	KindText Kind = iota
	KindNumber
	KindDate
)

// String returns the kind name used in error messages.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	}
	return "unknown"
}

// Synthetic column names added by the engine itself. ID is assigned by the
// record store; Kategorie/KategorieIdx by the category matcher.
const (
	ColID            = "ID"
	ColCategory      = "Kategorie"
	ColCategoryIndex = "KategorieIdx"
)

// Column describes one column of a statement schema.
type Column struct {
	Name   string
	Kind   Kind
	Layout string // date layout, set for KindDate columns only
}

// Schema is the ordered column set shared by all records in a store.
// TextColumn names the column the category matcher searches.
type Schema struct {
	Columns    []Column
	TextColumn string
}

// Index returns the position of the named column, or -1.
func (s Schema) Index(name string) int {
	for i, c := range s.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Value is a single typed cell. Exactly the field matching Kind is set.
type Value struct {
	Kind   Kind
	Text   string
	Number decimal.Decimal
	Date   time.Time
	Layout string // date layout, KindDate only
}

// TextValue returns a text Value.
func TextValue(s string) Value {
	return Value{Kind: KindText, Text: s}
}

// NumberValue returns a numeric Value.
func NumberValue(d decimal.Decimal) Value {
	return Value{Kind: KindNumber, Number: d}
}

// DateValue returns a date Value rendered with the given layout.
func DateValue(t time.Time, layout string) Value {
	return Value{Kind: KindDate, Date: t, Layout: layout}
}

// String renders the value the way the renderers and the containment
// operators see it.
func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		return v.Number.String()
	case KindDate:
		return v.Date.Format(v.Layout)
	}
	return v.Text
}

// Record is one statement row, with Values aligned to the store schema.
type Record struct {
	Values []Value
}
