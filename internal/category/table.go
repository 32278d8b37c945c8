// Package category holds the label→patterns table and the substring
// classifier that assigns a category to each statement record.
package category

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Entry is one category: a label and its ordered pattern list.
type Entry struct {
	Label    string
	Patterns []string
}

// Table is an ordered label→patterns mapping. Label order is significant:
// classification picks the first label with a matching pattern, and the
// order is preserved on save.
type Table struct {
	entries []Entry
	index   map[string]int
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{index: make(map[string]int)}
}

// Entries returns the categories in table order.
func (t *Table) Entries() []Entry {
	return t.entries
}

// Len returns the number of categories.
func (t *Table) Len() int {
	return len(t.entries)
}

// Labels returns the labels in table order.
func (t *Table) Labels() []string {
	labels := make([]string, len(t.entries))
	for i, e := range t.entries {
		labels[i] = e.Label
	}
	return labels
}

// IndexOf returns the 0-based position of a label.
func (t *Table) IndexOf(label string) (int, bool) {
	i, ok := t.index[label]
	return i, ok
}

// Add appends a new label with no patterns and returns its index. If the
// label already exists its index is returned unchanged.
func (t *Table) Add(label string) int {
	if i, ok := t.index[label]; ok {
		return i
	}
	t.entries = append(t.entries, Entry{Label: label})
	t.index[label] = len(t.entries) - 1
	return len(t.entries) - 1
}

// AppendPattern adds a pattern to a label, creating the label if needed.
func (t *Table) AppendPattern(label, pattern string) {
	i := t.Add(label)
	t.entries[i].Patterns = append(t.entries[i].Patterns, pattern)
}

// UnmarshalYAML decodes a mapping of label to pattern list, keeping the
// document's label order.
func (t *Table) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("categories: expected a mapping, got %s", nodeKind(node))
	}

	t.entries = nil
	t.index = make(map[string]int)
	for i := 0; i < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]

		var patterns []string
		if val.Kind != yaml.ScalarNode || val.Value != "" { // allow empty value as no patterns
			if err := val.Decode(&patterns); err != nil {
				return fmt.Errorf("category %s: %w", key.Value, err)
			}
		}

		if _, ok := t.index[key.Value]; ok {
			return fmt.Errorf("duplicate category %s", key.Value)
		}
		t.entries = append(t.entries, Entry{Label: key.Value, Patterns: patterns})
		t.index[key.Value] = len(t.entries) - 1
	}
	return nil
}

// MarshalYAML encodes the table as a mapping in table order.
func (t *Table) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range t.entries {
		key := &yaml.Node{Kind: yaml.ScalarNode, Value: e.Label}
		val := &yaml.Node{}
		if err := val.Encode(e.Patterns); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, key, val)
	}
	return node, nil
}

func nodeKind(n *yaml.Node) string {
	switch n.Kind {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.MappingNode:
		return "mapping"
	}
	return fmt.Sprintf("kind %d", n.Kind)
}

// Load reads a category table from a YAML file. A missing file is an empty
// table, so a first run needs no setup.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewTable(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading categories: %w", err)
	}

	t := NewTable()
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("parsing categories: %w", err)
	}
	return t, nil
}

// Save writes the table to a YAML file, preserving label and pattern order.
// The write is a full open-write-close so an interrupt never leaves a
// half-applied mutation from an earlier run.
func Save(path string, t *Table) error {
	data, err := yaml.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshaling categories: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing categories: %w", err)
	}
	return nil
}
