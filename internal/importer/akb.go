package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/burrima/bank-statement-analysis/internal/model"
)

// AKBParser parses Aargauische Kantonalbank statement CSV exports.
type AKBParser struct{}

const (
	akbDateLayout = "02.01.2006"
	akbNumFields  = 6
	akbColBuchung = 0
	akbColValuta  = 1
	akbColText    = 2
	akbColSoll    = 3
	akbColHaben   = 4
	akbColSaldo   = 5
)

// Format returns the parser name.
func (p *AKBParser) Format() string { return "akb" }

// Schema returns the normalized statement schema.
func (p *AKBParser) Schema() model.Schema {
	return statementSchema(akbDateLayout)
}

// Parse reads an AKB CSV and returns records.
func (p *AKBParser) Parse(r io.Reader) ([]model.Record, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = akbNumFields
	cr.LazyQuotes = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading AKB CSV: %w", err)
	}

	if len(rows) <= 1 {
		return nil, nil
	}

	var out []model.Record
	for i, rec := range rows[1:] {
		parsed, err := parseAKBRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		out = append(out, parsed)
	}
	return out, nil
}

func parseAKBRow(rec []string) (model.Record, error) {
	buchung, err := time.Parse(akbDateLayout, strings.TrimSpace(rec[akbColBuchung]))
	if err != nil {
		return model.Record{}, fmt.Errorf("parsing booking date %q: %w", rec[akbColBuchung], err)
	}
	valuta, err := time.Parse(akbDateLayout, strings.TrimSpace(rec[akbColValuta]))
	if err != nil {
		return model.Record{}, fmt.Errorf("parsing value date %q: %w", rec[akbColValuta], err)
	}

	text := strings.TrimSpace(strings.ReplaceAll(rec[akbColText], `"`, ""))

	belastung, err := parseAmount(rec[akbColSoll])
	if err != nil {
		return model.Record{}, err
	}
	gutschrift, err := parseAmount(rec[akbColHaben])
	if err != nil {
		return model.Record{}, err
	}
	saldo, err := parseAmount(rec[akbColSaldo])
	if err != nil {
		return model.Record{}, err
	}

	return model.Record{Values: []model.Value{
		model.DateValue(buchung, akbDateLayout),
		model.DateValue(valuta, akbDateLayout),
		model.TextValue(text),
		model.NumberValue(belastung),
		model.NumberValue(gutschrift),
		model.NumberValue(saldo),
	}}, nil
}

// statementSchema is the column set both bank adapters normalize to.
// Buchungstext is the designated categorization text column.
func statementSchema(dateLayout string) model.Schema {
	return model.Schema{
		Columns: []model.Column{
			{Name: "Buchung", Kind: model.KindDate, Layout: dateLayout},
			{Name: "Valuta", Kind: model.KindDate, Layout: dateLayout},
			{Name: "Buchungstext", Kind: model.KindText},
			{Name: "Belastung", Kind: model.KindNumber},
			{Name: "Gutschrift", Kind: model.KindNumber},
			{Name: "Saldo", Kind: model.KindNumber},
		},
		TextColumn: "Buchungstext",
	}
}
