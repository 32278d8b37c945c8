package category

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/burrima/bank-statement-analysis/internal/model"
	"github.com/burrima/bank-statement-analysis/internal/records"
)

// Unknown is the label assigned when no pattern matches.
const Unknown = "unknown"

// UnknownIndex is the KategorieIdx sentinel for unclassified records.
const UnknownIndex = -1

// Classify returns the label and 0-based table index of the first category
// (in table order) with a pattern contained in text. Matching is
// case-sensitive substring containment; first label order wins, not longest
// pattern.
func Classify(text string, t *Table) (string, int) {
	for i, e := range t.entries {
		for _, p := range e.Patterns {
			if strings.Contains(text, p) {
				return e.Label, i
			}
		}
	}
	return Unknown, UnknownIndex
}

// Apply classifies every record in the store and sets the synthetic
// Kategorie and KategorieIdx columns, replacing them if already present.
func Apply(store *records.Store, t *Table) error {
	schema := store.Schema()
	textCol := schema.Index(schema.TextColumn)
	if textCol < 0 {
		return &records.UnknownColumnError{Selector: schema.TextColumn}
	}

	recs := store.Records()
	labels := make([]model.Value, len(recs))
	indexes := make([]model.Value, len(recs))
	for i, rec := range recs {
		label, idx := Classify(rec.Values[textCol].String(), t)
		labels[i] = model.TextValue(label)
		indexes[i] = model.NumberValue(decimal.NewFromInt(int64(idx)))
	}

	if err := store.SetColumn(model.Column{Name: model.ColCategory, Kind: model.KindText}, labels); err != nil {
		return err
	}
	return store.SetColumn(model.Column{Name: model.ColCategoryIndex, Kind: model.KindNumber}, indexes)
}
