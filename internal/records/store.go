// Package records holds the ordered, typed record store produced from a
// parsed bank statement. Row identity (the synthetic ID column) is assigned
// here and stays stable through filtering.
package records

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/burrima/bank-statement-analysis/internal/model"
)

// SchemaError reports a row that does not fit the declared schema.
type SchemaError struct {
	Row    int // 1-based source row
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

// Store is an ordered sequence of records sharing one schema.
type Store struct {
	schema  model.Schema
	records []model.Record
}

// New validates rows against the schema, prepends the sequential ID column
// and returns a Store. IDs are 1-based in source order.
func New(schema model.Schema, rows []model.Record) (*Store, error) {
	for i, row := range rows {
		if len(row.Values) != len(schema.Columns) {
			return nil, &SchemaError{
				Row:    i + 1,
				Reason: fmt.Sprintf("expected %d columns, got %d", len(schema.Columns), len(row.Values)),
			}
		}
		for j, v := range row.Values {
			if v.Kind != schema.Columns[j].Kind {
				return nil, &SchemaError{
					Row:    i + 1,
					Reason: fmt.Sprintf("column %s: expected %s, got %s", schema.Columns[j].Name, schema.Columns[j].Kind, v.Kind),
				}
			}
		}
	}

	full := model.Schema{
		Columns:    append([]model.Column{{Name: model.ColID, Kind: model.KindNumber}}, schema.Columns...),
		TextColumn: schema.TextColumn,
	}

	out := make([]model.Record, len(rows))
	for i, row := range rows {
		values := make([]model.Value, 0, len(full.Columns))
		values = append(values, model.NumberValue(decimal.NewFromInt(int64(i+1))))
		values = append(values, row.Values...)
		out[i] = model.Record{Values: values}
	}

	return &Store{schema: full, records: out}, nil
}

// Schema returns the store schema (including synthetic columns).
func (s *Store) Schema() model.Schema {
	return s.schema
}

// Records returns all records in ID order.
func (s *Store) Records() []model.Record {
	return s.records
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.records)
}

// Value returns the cell at the given column index of a record.
func (s *Store) Value(rec model.Record, col int) model.Value {
	return rec.Values[col]
}

// SetColumn appends the column to the schema, or replaces its values if a
// column of that name already exists. values must have one entry per record.
func (s *Store) SetColumn(col model.Column, values []model.Value) error {
	if len(values) != len(s.records) {
		return fmt.Errorf("column %s: expected %d values, got %d", col.Name, len(s.records), len(values))
	}

	idx := s.schema.Index(col.Name)
	if idx < 0 {
		s.schema.Columns = append(s.schema.Columns, col)
		for i := range s.records {
			s.records[i].Values = append(s.records[i].Values, values[i])
		}
		return nil
	}

	s.schema.Columns[idx] = col
	for i := range s.records {
		s.records[i].Values[idx] = values[i]
	}
	return nil
}

// Select returns a new Store containing the records for which keep returns
// true, preserving ID order. The schema is shared.
func (s *Store) Select(keep func(model.Record) (bool, error)) (*Store, error) {
	var out []model.Record
	for _, rec := range s.records {
		ok, err := keep(rec)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, rec)
		}
	}
	return &Store{schema: s.schema, records: out}, nil
}
