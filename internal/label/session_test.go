package label

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/burrima/bank-statement-analysis/internal/category"
	"github.com/burrima/bank-statement-analysis/internal/model"
	"github.com/burrima/bank-statement-analysis/internal/records"
)

// sessionStore builds a classified store over the given booking texts.
func sessionStore(t *testing.T, table *category.Table, texts ...string) *records.Store {
	t.Helper()
	schema := model.Schema{
		Columns: []model.Column{
			{Name: "Buchungstext", Kind: model.KindText},
			{Name: "Belastung", Kind: model.KindNumber},
		},
		TextColumn: "Buchungstext",
	}
	rows := make([]model.Record, len(texts))
	for i, text := range texts {
		rows[i] = model.Record{Values: []model.Value{
			model.TextValue(text),
			model.NumberValue(decimal.NewFromInt(10)),
		}}
	}
	store, err := records.New(schema, rows)
	require.NoError(t, err)
	require.NoError(t, category.Apply(store, table))
	return store
}

// countingSave records each persisted table state.
func countingSave(saves *[]category.Table) SaveFunc {
	return func(t *category.Table) error {
		*saves = append(*saves, *t)
		return nil
	}
}

func TestRunLabelsByNumberAndName(t *testing.T) {
	table := category.NewTable()
	table.AppendPattern("Essen", "COOP")

	store := sessionStore(t, table, "Garage Muster AG", "Kino Aarau")

	// First record: new category by name. Second: existing category by number.
	input := "Fahrzeug\nGarage\n1\nKino\n"
	var saves []category.Table
	var out bytes.Buffer
	session := NewSession(table, countingSave(&saves), strings.NewReader(input), &out)

	state, err := session.Run(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, StateDone, state)
	assert.Equal(t, 2, session.Confirmed())
	assert.Len(t, saves, 2, "one save per confirmed pattern")

	assert.Equal(t, []string{"Essen", "Fahrzeug"}, table.Labels(), "new label appended at the end")

	essen, ok := table.IndexOf("Essen")
	require.True(t, ok)
	assert.Contains(t, table.Entries()[essen].Patterns, "Kino")

	fahrzeug, ok := table.IndexOf("Fahrzeug")
	require.True(t, ok)
	assert.Equal(t, []string{"Garage"}, table.Entries()[fahrzeug].Patterns)
}

func TestRunSkipsClassifiedRecords(t *testing.T) {
	table := category.NewTable()
	table.AppendPattern("Essen", "COOP")

	store := sessionStore(t, table, "COOP Aarau", "Unbekannt")

	input := "Sonstiges\nUnbekannt\n"
	var saves []category.Table
	var out bytes.Buffer
	session := NewSession(table, countingSave(&saves), strings.NewReader(input), &out)

	state, err := session.Run(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, StateDone, state)
	assert.Equal(t, 1, session.Confirmed(), "only the unknown record is prompted")
}

func TestRunEmptyCategorySkipsRecord(t *testing.T) {
	table := category.NewTable()
	store := sessionStore(t, table, "eins", "zwei")

	// Skip the first record, label the second.
	input := "\nDiverses\nzwei\n"
	var saves []category.Table
	var out bytes.Buffer
	session := NewSession(table, countingSave(&saves), strings.NewReader(input), &out)

	state, err := session.Run(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, StateDone, state)
	assert.Equal(t, 1, session.Confirmed())
	assert.Len(t, saves, 1)
}

func TestRunEmptyPatternConfirmsNothing(t *testing.T) {
	table := category.NewTable()
	store := sessionStore(t, table, "eins")

	input := "Diverses\n\n"
	var saves []category.Table
	var out bytes.Buffer
	session := NewSession(table, countingSave(&saves), strings.NewReader(input), &out)

	state, err := session.Run(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, StateDone, state)
	assert.Equal(t, 0, session.Confirmed())
	assert.Empty(t, saves, "no pattern, no persistence")
}

func TestRunEndOfInputAborts(t *testing.T) {
	table := category.NewTable()
	store := sessionStore(t, table, "eins", "zwei")

	// One full confirmation, then the input ends mid-prompt.
	input := "Diverses\neins\nDiverses\n"
	var saves []category.Table
	var out bytes.Buffer
	session := NewSession(table, countingSave(&saves), strings.NewReader(input), &out)

	state, err := session.Run(context.Background(), store)
	require.NoError(t, err, "abort is not an error")
	assert.Equal(t, StateAborted, state)
	assert.Equal(t, 1, session.Confirmed())
	assert.Len(t, saves, 1, "confirmed mutation stays persisted")
}

func TestRunContextCancelAborts(t *testing.T) {
	table := category.NewTable()
	store := sessionStore(t, table, "eins")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	session := NewSession(table, countingSave(&[]category.Table{}), strings.NewReader("Diverses\neins\n"), &out)

	state, err := session.Run(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, StateAborted, state)
	assert.Equal(t, 0, session.Confirmed())
}

func TestRunInvalidNumberReprompts(t *testing.T) {
	table := category.NewTable()
	table.AppendPattern("Essen", "COOP")
	store := sessionStore(t, table, "eins")

	input := "7\n1\neins\n"
	var saves []category.Table
	var out bytes.Buffer
	session := NewSession(table, countingSave(&saves), strings.NewReader(input), &out)

	state, err := session.Run(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, StateDone, state)
	assert.Equal(t, 1, session.Confirmed())
	assert.Contains(t, out.String(), "no category number 7")
}

func TestRunSaveFailureIsFatal(t *testing.T) {
	table := category.NewTable()
	store := sessionStore(t, table, "eins")

	failing := func(*category.Table) error { return fmt.Errorf("disk full") }
	var out bytes.Buffer
	session := NewSession(table, failing, strings.NewReader("Diverses\neins\n"), &out)

	_, err := session.Run(context.Background(), store)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestResumeAfterAbort(t *testing.T) {
	table := category.NewTable()
	store := sessionStore(t, table, "eins", "zwei", "drei")

	// First session confirms one record, then input ends.
	var saves []category.Table
	var out bytes.Buffer
	first := NewSession(table, countingSave(&saves), strings.NewReader("Eins\neins\n"), &out)
	state, err := first.Run(context.Background(), store)
	require.NoError(t, err)
	require.Equal(t, StateAborted, state)
	require.Equal(t, 1, first.Confirmed())

	// A rerun restricted to IDs after the last confirmed one sees exactly
	// the remaining records.
	idIdx := store.Schema().Index(model.ColID)
	rest, err := store.Select(func(rec model.Record) (bool, error) {
		return rec.Values[idIdx].Number.IntPart() > 1, nil
	})
	require.NoError(t, err)
	require.NoError(t, category.Apply(rest, table))

	second := NewSession(table, countingSave(&saves), strings.NewReader("Zwei\nzwei\nDrei\ndrei\n"), &out)
	state, err = second.Run(context.Background(), rest)
	require.NoError(t, err)
	assert.Equal(t, StateDone, state)
	assert.Equal(t, 2, second.Confirmed())
	assert.Len(t, saves, 3)
	assert.Equal(t, []string{"Eins", "Zwei", "Drei"}, table.Labels())
}
