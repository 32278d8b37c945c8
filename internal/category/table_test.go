package category

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAndAppendPattern(t *testing.T) {
	table := NewTable()

	assert.Equal(t, 0, table.Add("Fahrzeug"))
	assert.Equal(t, 1, table.Add("Essen"))
	assert.Equal(t, 0, table.Add("Fahrzeug"), "existing label keeps its index")

	table.AppendPattern("Essen", "COOP")
	table.AppendPattern("Essen", "MIGROS")
	table.AppendPattern("Wohnen", "Miete")

	assert.Equal(t, []string{"Fahrzeug", "Essen", "Wohnen"}, table.Labels())
	assert.Equal(t, []string{"COOP", "MIGROS"}, table.Entries()[1].Patterns)

	idx, ok := table.IndexOf("Wohnen")
	require.True(t, ok)
	assert.Equal(t, 2, idx)
}

func TestLoadMissingFileIsEmptyTable(t *testing.T) {
	table, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())
}

func TestLoadPreservesDocumentOrder(t *testing.T) {
	// Deliberately not alphabetical; label order drives classification.
	doc := "Wohnen:\n  - Miete\nAuto:\n  - Garage AG\n  - Tankstelle\nEssen:\n  - COOP\n"
	path := filepath.Join(t.TempDir(), "categories.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	table, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"Wohnen", "Auto", "Essen"}, table.Labels())
	assert.Equal(t, []string{"Garage AG", "Tankstelle"}, table.Entries()[1].Patterns)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	table := NewTable()
	table.AppendPattern("Zulu", "z1")
	table.AppendPattern("Alpha", "a1")
	table.AppendPattern("Zulu", "z2")
	table.Add("Leer")

	path := filepath.Join(t.TempDir(), "categories.yaml")
	require.NoError(t, Save(path, table))

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, table.Labels(), got.Labels())
	require.Equal(t, len(table.Entries()), len(got.Entries()))
	for i, e := range table.Entries() {
		if len(e.Patterns) == 0 {
			assert.Empty(t, got.Entries()[i].Patterns, "patterns of %s", e.Label)
			continue
		}
		assert.Equal(t, e.Patterns, got.Entries()[i].Patterns, "patterns of %s", e.Label)
	}
}

func TestEmptyTableRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.yaml")
	require.NoError(t, Save(path, NewTable()))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())
}

func TestLoadRejectsDuplicateLabels(t *testing.T) {
	doc := "A:\n  - x\nA:\n  - y\n"
	path := filepath.Join(t.TempDir(), "categories.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsNonMapping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- just\n- a list\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mapping")
}
