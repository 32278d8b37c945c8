package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"

	"github.com/burrima/bank-statement-analysis/internal/model"
)

// RaiffeisenParser parses Raiffeisen statement CSV exports. The export is
// Latin-1 encoded, carries a footer row, and splits collective bookings
// (Sammelzahlung, Dauerauftrag) over continuation rows without a booking
// date.
type RaiffeisenParser struct{}

const (
	raiffDateLayout = "2006-01-02"
	raiffNumFields  = 6
	raiffColBooked  = 1
	raiffColText    = 2
	raiffColAmount  = 3
	raiffColSaldo   = 4
	raiffColValuta  = 5
)

// raiffRow is a statement row before continuation-row merging.
type raiffRow struct {
	buchung    string // booking date token, empty on continuation rows
	valuta     string
	text       string
	belastung  decimal.Decimal
	gutschrift decimal.Decimal
	saldo      decimal.Decimal
}

// Format returns the parser name.
func (p *RaiffeisenParser) Format() string { return "raiffeisen" }

// Schema returns the normalized statement schema.
func (p *RaiffeisenParser) Schema() model.Schema {
	return statementSchema(raiffDateLayout)
}

// Parse reads a Raiffeisen CSV and returns records.
func (p *RaiffeisenParser) Parse(r io.Reader) ([]model.Record, error) {
	cr := csv.NewReader(charmap.ISO8859_1.NewDecoder().Reader(r))
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading Raiffeisen CSV: %w", err)
	}

	// Skip the header and the trailing balance footer.
	if len(rows) <= 2 {
		return nil, nil
	}
	rows = rows[1 : len(rows)-1]

	parsed := make([]raiffRow, 0, len(rows))
	for i, rec := range rows {
		row, err := parseRaiffeisenRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		parsed = append(parsed, row)
	}

	merged, err := mergeCollectiveRows(parsed)
	if err != nil {
		return nil, err
	}

	out := make([]model.Record, 0, len(merged))
	for i, row := range merged {
		rec, err := row.record()
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func parseRaiffeisenRow(rec []string) (raiffRow, error) {
	if len(rec) < raiffNumFields {
		return raiffRow{}, fmt.Errorf("expected %d fields, got %d", raiffNumFields, len(rec))
	}

	text := strings.TrimSpace(strings.ReplaceAll(rec[raiffColText], `"`, ""))

	amount, err := parseAmount(rec[raiffColAmount])
	if err != nil {
		return raiffRow{}, err
	}
	saldo, err := parseAmount(rec[raiffColSaldo])
	if err != nil {
		return raiffRow{}, err
	}

	row := raiffRow{
		// "Booked At" cells carry a time of day; only the date matters.
		buchung: strings.SplitN(strings.TrimSpace(rec[raiffColBooked]), " ", 2)[0],
		valuta:  strings.TrimSpace(rec[raiffColValuta]),
		text:    text,
		saldo:   saldo,
	}
	if amount.IsNegative() {
		row.belastung = amount.Neg()
	} else if amount.IsPositive() {
		row.gutschrift = amount
	}
	return row, nil
}

// mergeCollectiveRows folds continuation rows (no booking date) into full
// bookings: a continuation row inherits dates and text from the previous
// full row and takes its amount from the last token of its own text. The
// collective row itself is dropped when it directly precedes its first
// continuation row.
func mergeCollectiveRows(rows []raiffRow) ([]raiffRow, error) {
	var out []raiffRow
	var prevFull raiffRow
	havePrevFull := false
	prevFullAt := -1

	for i, row := range rows {
		if i > 0 && row.buchung == "" {
			if !havePrevFull {
				return nil, fmt.Errorf("row %d: continuation row without preceding booking", i+2)
			}

			tokens := strings.Fields(row.text)
			if len(tokens) == 0 {
				return nil, fmt.Errorf("row %d: continuation row without amount", i+2)
			}
			amount, err := parseAmount(tokens[len(tokens)-1])
			if err != nil {
				return nil, fmt.Errorf("row %d: continuation amount: %w", i+2, err)
			}

			row.text = prevFull.text + " " + row.text
			row.buchung = prevFull.buchung
			row.valuta = prevFull.valuta
			row.saldo = prevFull.saldo.Sub(amount)
			if !prevFull.belastung.IsZero() {
				row.belastung = amount
			} else {
				row.belastung = decimal.Zero
			}
			if !prevFull.gutschrift.IsZero() {
				row.gutschrift = amount
			} else {
				row.gutschrift = decimal.Zero
			}

			// Drop the collective row it details.
			if prevFullAt == i-1 {
				out = out[:len(out)-1]
			}
		} else {
			prevFull = row
			havePrevFull = true
			prevFullAt = i
		}

		out = append(out, row)
	}
	return out, nil
}

func (r raiffRow) record() (model.Record, error) {
	buchung, err := time.Parse(raiffDateLayout, r.buchung)
	if err != nil {
		return model.Record{}, fmt.Errorf("parsing booking date %q: %w", r.buchung, err)
	}
	valuta, err := time.Parse(raiffDateLayout, r.valuta)
	if err != nil {
		return model.Record{}, fmt.Errorf("parsing value date %q: %w", r.valuta, err)
	}

	return model.Record{Values: []model.Value{
		model.DateValue(buchung, raiffDateLayout),
		model.DateValue(valuta, raiffDateLayout),
		model.TextValue(r.text),
		model.NumberValue(r.belastung),
		model.NumberValue(r.gutschrift),
		model.NumberValue(r.saldo),
	}}, nil
}
