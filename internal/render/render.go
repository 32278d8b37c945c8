// Package render produces the table, summary and CSV views of a classified
// record store.
package render

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/burrima/bank-statement-analysis/internal/category"
	"github.com/burrima/bank-statement-analysis/internal/model"
	"github.com/burrima/bank-statement-analysis/internal/records"
)

// displayColumns are the statement columns shown by Table and CSV, in order.
var displayColumns = []string{"Buchung", "Belastung", "Gutschrift", model.ColCategory, "Buchungstext"}

// columnIndexes resolves the display columns plus ID against the schema.
func columnIndexes(schema model.Schema) (id int, cols []int, err error) {
	id = schema.Index(model.ColID)
	if id < 0 {
		return 0, nil, &records.UnknownColumnError{Selector: model.ColID}
	}
	for _, name := range displayColumns {
		i := schema.Index(name)
		if i < 0 {
			return 0, nil, &records.UnknownColumnError{Selector: name}
		}
		cols = append(cols, i)
	}
	return id, cols, nil
}

// Table writes an aligned, human-readable listing.
func Table(w io.Writer, store *records.Store) error {
	id, cols, err := columnIndexes(store.Schema())
	if err != nil {
		return err
	}

	for _, rec := range store.Records() {
		_, err := fmt.Fprintf(w, "%-5s %11s %10s %10s %-15s %s\n",
			rec.Values[id].String(),
			rec.Values[cols[0]].String(),
			rec.Values[cols[1]].String(),
			rec.Values[cols[2]].String(),
			rec.Values[cols[3]].String(),
			rec.Values[cols[4]].String())
		if err != nil {
			return err
		}
	}
	return nil
}

// CSV writes a semicolon-separated listing with a header row.
func CSV(w io.Writer, store *records.Store) error {
	_, cols, err := columnIndexes(store.Schema())
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	cw.Comma = ';'
	defer cw.Flush()

	if err := cw.Write(displayColumns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	row := make([]string, len(cols))
	for i, rec := range store.Records() {
		for j, c := range cols {
			row[j] = rec.Values[c].String()
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}
	return cw.Error()
}

// categorySums accumulates the debit/credit totals of one category.
type categorySums struct {
	belastungen  decimal.Decimal
	gutschriften decimal.Decimal
}

// Summary writes per-category debit and credit totals, in table label order
// with unknown last. Categories without records are omitted.
func Summary(w io.Writer, store *records.Store, table *category.Table) error {
	schema := store.Schema()
	catCol := schema.Index(model.ColCategory)
	belCol := schema.Index("Belastung")
	gutCol := schema.Index("Gutschrift")
	for name, idx := range map[string]int{model.ColCategory: catCol, "Belastung": belCol, "Gutschrift": gutCol} {
		if idx < 0 {
			return &records.UnknownColumnError{Selector: name}
		}
	}

	sums := make(map[string]*categorySums)
	for _, rec := range store.Records() {
		label := rec.Values[catCol].Text
		s, ok := sums[label]
		if !ok {
			s = &categorySums{belastungen: decimal.Zero, gutschriften: decimal.Zero}
			sums[label] = s
		}
		s.belastungen = s.belastungen.Add(rec.Values[belCol].Number)
		s.gutschriften = s.gutschriften.Add(rec.Values[gutCol].Number)
	}

	order := table.Labels()
	if _, ok := table.IndexOf(category.Unknown); !ok {
		order = append(order, category.Unknown)
	}
	for _, label := range order {
		s, ok := sums[label]
		if !ok {
			continue
		}
		_, err := fmt.Fprintf(w, "%-20s Belastungen: %12s  Gutschriften: %12s\n",
			label, s.belastungen.StringFixed(2), s.gutschriften.StringFixed(2))
		if err != nil {
			return err
		}
	}
	return nil
}
